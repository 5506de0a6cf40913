package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/downfa11-org/escapebridge/util"
)

// Config is the broker-node surface the escape bridge reads. All fields
// are owned by the surrounding broker process; the bridge treats them as
// read-only.
type Config struct {
	BrokerName string `yaml:"broker_name" json:"broker.name"`
	BrokerID   int    `yaml:"broker_id" json:"broker.id"`

	// Escape switches. Both must be on for the bridge to start its
	// inner clients.
	EnableSlaveActingMaster bool `yaml:"enable_slave_acting_master" json:"enable.slave.acting.master"`
	EnableRemoteEscape      bool `yaml:"enable_remote_escape" json:"enable.remote.escape"`

	NameServerAddrs []string `yaml:"name_server_addrs" json:"name.server.addrs"`

	SendTimeoutMS int `yaml:"send_timeout_ms" json:"send.timeout.ms"`
	PullTimeoutMS int `yaml:"pull_timeout_ms" json:"pull.timeout.ms"`

	EnableExporter bool `yaml:"enable_exporter" json:"enable.exporter"`
	ExporterPort   int  `yaml:"exporter_port" json:"exporter.port"`

	LogLevel util.LogLevel `yaml:"log_level" json:"log_level"`
}

// Normalize fills zero-valued fields with defaults.
func (cfg *Config) Normalize() {
	if cfg.BrokerName == "" {
		cfg.BrokerName = "broker-a"
	}
	if cfg.SendTimeoutMS <= 0 {
		cfg.SendTimeoutMS = 3000
	}
	if cfg.PullTimeoutMS <= 0 {
		cfg.PullTimeoutMS = 5000
	}
	if cfg.ExporterPort == 0 {
		cfg.ExporterPort = 9100
	}
}

// LoadConfig builds a Config from flags, an optional YAML/JSON file
// (-config or CONFIG_PATH) and defaults, in that order of precedence.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	configPath := flag.String("config", "", "Path to YAML/JSON config file")
	brokerNameStr := flag.String("broker-name", "broker-a", "Broker name of this node")
	brokerIDStr := flag.String("broker-id", "0", "Broker id of this node")
	slaveActingMasterStr := flag.String("slave-acting-master", "false", "Allow this node to serve writes without the master role")
	remoteEscapeStr := flag.String("remote-escape", "false", "Allow forwarding writes/reads to a remote broker")
	nameServersStr := flag.String("name-servers", "", "Comma-separated name server addresses")
	sendTimeoutStr := flag.String("send-timeout", "3000", "Remote send timeout (ms)")
	pullTimeoutStr := flag.String("pull-timeout", "5000", "Remote pull timeout (ms)")
	exporterStr := flag.String("exporter", "true", "Enable Prometheus exporter")
	exporterPortStr := flag.String("exporter-port", "9100", "Exporter port")
	logLevelStr := flag.String("log-level", "info", "Log Level (debug, info, warn, error)")

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" && *configPath == "" {
		*configPath = envPath
	}

	flag.Parse()

	applyFlags(cfg, brokerNameStr, brokerIDStr, slaveActingMasterStr, remoteEscapeStr,
		nameServersStr, sendTimeoutStr, pullTimeoutStr, exporterStr, exporterPortStr, logLevelStr)

	if *configPath != "" {
		if err := loadFile(cfg, *configPath); err != nil {
			return nil, err
		}
	}

	cfg.Normalize()
	util.SetLevel(cfg.LogLevel)

	if cfg.EnableRemoteEscape && !cfg.EnableSlaveActingMaster {
		return nil, fmt.Errorf("remote escape requires slave-acting-master to be enabled")
	}

	return cfg, nil
}

func applyFlags(cfg *Config, brokerNameStr, brokerIDStr, slaveActingMasterStr, remoteEscapeStr,
	nameServersStr, sendTimeoutStr, pullTimeoutStr, exporterStr, exporterPortStr, logLevelStr *string) {

	cfg.BrokerName = *brokerNameStr
	cfg.BrokerID = util.ParseInt(*brokerIDStr, 0)
	cfg.EnableSlaveActingMaster = util.ParseBool(*slaveActingMasterStr, false)
	cfg.EnableRemoteEscape = util.ParseBool(*remoteEscapeStr, false)
	cfg.NameServerAddrs = SplitAddrs(*nameServersStr)
	cfg.SendTimeoutMS = util.ParseInt(*sendTimeoutStr, 3000)
	cfg.PullTimeoutMS = util.ParseInt(*pullTimeoutStr, 5000)
	cfg.EnableExporter = util.ParseBool(*exporterStr, true)
	cfg.ExporterPort = util.ParseInt(*exporterPortStr, 9100)

	switch strings.ToLower(*logLevelStr) {
	case "debug":
		cfg.LogLevel = util.LogLevelDebug
	case "info":
		cfg.LogLevel = util.LogLevelInfo
	case "warn", "warning":
		cfg.LogLevel = util.LogLevelWarn
	case "error":
		cfg.LogLevel = util.LogLevelError
	default:
		cfg.LogLevel = util.LogLevelInfo
	}
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// SplitAddrs parses a comma-separated address list, dropping blanks.
func SplitAddrs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	addrs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			addrs = append(addrs, p)
		}
	}
	return addrs
}
