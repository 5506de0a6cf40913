package config_test

import (
	"testing"

	"github.com/downfa11-org/escapebridge/pkg/config"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &config.Config{}
	cfg.Normalize()

	if cfg.BrokerName != "broker-a" {
		t.Errorf("BrokerName default incorrect: %s", cfg.BrokerName)
	}
	if cfg.SendTimeoutMS != 3000 {
		t.Errorf("SendTimeoutMS default incorrect: %d", cfg.SendTimeoutMS)
	}
	if cfg.PullTimeoutMS != 5000 {
		t.Errorf("PullTimeoutMS default incorrect: %d", cfg.PullTimeoutMS)
	}
	if cfg.ExporterPort != 9100 {
		t.Errorf("ExporterPort default incorrect: %d", cfg.ExporterPort)
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	cfg := &config.Config{BrokerName: "broker-x", SendTimeoutMS: 100}
	cfg.Normalize()

	if cfg.BrokerName != "broker-x" {
		t.Errorf("Explicit BrokerName overwritten: %s", cfg.BrokerName)
	}
	if cfg.SendTimeoutMS != 100 {
		t.Errorf("Explicit SendTimeoutMS overwritten: %d", cfg.SendTimeoutMS)
	}
}

func TestSplitAddrs(t *testing.T) {
	addrs := config.SplitAddrs(" 10.0.0.1:9876, ,10.0.0.2:9876 ")

	if len(addrs) != 2 {
		t.Fatalf("Expected 2 addresses, got %v", addrs)
	}
	if addrs[0] != "10.0.0.1:9876" || addrs[1] != "10.0.0.2:9876" {
		t.Errorf("Addresses not trimmed: %v", addrs)
	}
}

func TestSplitAddrsEmpty(t *testing.T) {
	if addrs := config.SplitAddrs("  "); addrs != nil {
		t.Errorf("Expected nil for blank input, got %v", addrs)
	}
}
