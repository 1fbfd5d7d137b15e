package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	for _, key := range []string{"NEAR_OUTPUT", "NEAR_TIMEOUT", "NEAR_RETRIES", "NEAR_LOG_LEVEL", "NEAR_NETWORK", "NEAR_NO_HISTORY", "NEAR_HISTORY_PATH", "NEAR_HISTORY_LOCK_PATH", "NEAR_KEY_SOURCE", "NO_COLOR"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	settings, err := Load(GlobalFlags{Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.OutputMode != "plain" || settings.Retries != 0 || settings.DefaultNetwork != "testnet" {
		t.Fatalf("unexpected defaults: %#v", settings)
	}
	if !settings.HistoryEnabled || filepath.Base(settings.HistoryPath) != "history.db" {
		t.Fatalf("unexpected history defaults: %#v", settings)
	}
	if settings.Timeout != 30*time.Second || settings.LogLevel != "warn" {
		t.Fatalf("unexpected defaults: %#v", settings)
	}
}

func TestLoadPrecedenceFlagsOverEnvOverFile(t *testing.T) {
	isolate(t)
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(configPath, []byte("output: json\nretries: 1\nlog_level: info\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("NEAR_OUTPUT", "json")
	t.Setenv("NEAR_LOG_LEVEL", "debug")
	flags := GlobalFlags{ConfigPath: configPath, Plain: true, Retries: 5}
	settings, err := Load(flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.OutputMode != "plain" {
		t.Fatalf("expected flag to win, got output=%s", settings.OutputMode)
	}
	if settings.Retries != 5 {
		t.Fatalf("expected retries from flags, got %d", settings.Retries)
	}
	if settings.LogLevel != "debug" {
		t.Fatalf("expected env to win over file, got %s", settings.LogLevel)
	}
}

func TestLoadMutuallyExclusiveOutputFlags(t *testing.T) {
	isolate(t)
	_, err := Load(GlobalFlags{JSON: true, Plain: true})
	if err == nil {
		t.Fatal("expected error with --json and --plain")
	}
}

func TestLoadCustomNetworkFromFile(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	body := "network: localnet\nnetworks:\n  localnet:\n    rpc_url: http://127.0.0.1:3030\n  testnet:\n    rpc_url: https://rpc.example.org\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	settings, err := Load(GlobalFlags{ConfigPath: configPath, Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	local, err := settings.ResolveNetwork("")
	if err != nil {
		t.Fatalf("ResolveNetwork failed: %v", err)
	}
	if local.RPCURL != "http://127.0.0.1:3030" || local.Explorer != "localnet" {
		t.Fatalf("unexpected localnet: %#v", local)
	}
	testnet := settings.Networks["testnet"]
	if testnet.RPCURL != "https://rpc.example.org" || testnet.ArchivalRPCURL != "https://archival-rpc.testnet.near.org" {
		t.Fatalf("expected override merged over builtin, got %#v", testnet)
	}
	if names := settings.NetworkNames(); names[0] != "localnet" || len(names) != 3 {
		t.Fatalf("unexpected network names %v", names)
	}
}

func TestLoadUnknownDefaultNetwork(t *testing.T) {
	isolate(t)
	t.Setenv("NEAR_NETWORK", "betanet")
	if _, err := Load(GlobalFlags{Retries: -1}); err == nil {
		t.Fatal("expected unknown default network error")
	}
}

func TestResolveNetworkURLAndArchival(t *testing.T) {
	isolate(t)
	settings, err := Load(GlobalFlags{Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	n, err := settings.ResolveNetwork("https://rpc.custom.example")
	if err != nil {
		t.Fatalf("ResolveNetwork failed: %v", err)
	}
	if n.RPCURL != "https://rpc.custom.example" || n.Explorer != "testnet" {
		t.Fatalf("unexpected network %#v", n)
	}
	if _, err := settings.ResolveNetwork("not a network"); err == nil {
		t.Fatal("expected unknown network error")
	}
	mainnet, err := settings.ResolveNetwork("MAINNET")
	if err != nil {
		t.Fatalf("ResolveNetwork failed: %v", err)
	}
	if mainnet.RPCFor(true) != "https://archival-rpc.mainnet.near.org" || mainnet.RPCFor(false) != "https://rpc.mainnet.near.org" {
		t.Fatalf("unexpected rpc selection %#v", mainnet)
	}
}

func TestNoHistoryEnv(t *testing.T) {
	isolate(t)
	t.Setenv("NEAR_NO_HISTORY", "true")
	settings, err := Load(GlobalFlags{Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.HistoryEnabled {
		t.Fatal("expected history disabled")
	}
}
