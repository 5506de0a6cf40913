package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/downfa11-org/escapebridge/pkg/config"
	"github.com/downfa11-org/escapebridge/pkg/failover"
	"github.com/downfa11-org/escapebridge/pkg/metrics"
	"github.com/downfa11-org/escapebridge/pkg/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	fmt.Printf("🚀 Starting broker node %s-%d\n", cfg.BrokerName, cfg.BrokerID)
	fmt.Printf("🔀 SlaveActingMaster: %v | Escape: %v | 📊 Exporter: %v\n",
		cfg.EnableSlaveActingMaster, cfg.EnableRemoteEscape, cfg.EnableExporter)

	locator := store.NewClusterLocator()
	local := store.NewMemoryStore(cfg.BrokerName)
	locator.RegisterStore(cfg.BrokerName, local)
	if !cfg.EnableSlaveActingMaster {
		// Node holds the master role itself; all traffic stays local.
		locator.SetMaster(local)
	}

	bridge := failover.New(cfg, locator)
	if err := bridge.Start(); err != nil {
		log.Fatalf("❌ Escape bridge failed to start: %v", err)
	}

	if cfg.EnableExporter {
		metrics.StartMetricsServer(cfg.ExporterPort)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	fmt.Println("⏹ Shutting down")
	bridge.Shutdown()
}
