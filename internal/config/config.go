package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type GlobalFlags struct {
	ConfigPath     string
	JSON           bool
	Plain          bool
	NoPrompt       bool
	NoColor        bool
	Select         string
	ResultsOnly    bool
	EnableCommands string
	Timeout        string
	Retries        int
	LogLevel       string
	NoHistory      bool
	KeySource      string
	PrivateKey     string
}

type Settings struct {
	OutputMode      string
	NoPrompt        bool
	NoColor         bool
	SelectFields    []string
	ResultsOnly     bool
	EnableCommands  []string
	Timeout         time.Duration
	Retries         int
	LogLevel        string
	DefaultNetwork  string
	Networks        map[string]Network
	HistoryEnabled  bool
	HistoryPath     string
	HistoryLockPath string
	KeySource       string
	PrivateKey      string
}

// Network is a named NEAR deployment. Explorer is the subdomain used in
// explorer links.
type Network struct {
	Name           string `json:"name"`
	RPCURL         string `json:"rpc_url"`
	ArchivalRPCURL string `json:"archival_rpc_url"`
	Explorer       string `json:"explorer"`
}

// RPCFor returns the archival endpoint when a query targets a historical
// block and one is configured.
func (n Network) RPCFor(historical bool) string {
	if historical && n.ArchivalRPCURL != "" {
		return n.ArchivalRPCURL
	}
	return n.RPCURL
}

func builtinNetworks() map[string]Network {
	return map[string]Network{
		"testnet": {
			Name:           "testnet",
			RPCURL:         "https://rpc.testnet.near.org",
			ArchivalRPCURL: "https://archival-rpc.testnet.near.org",
			Explorer:       "testnet",
		},
		"mainnet": {
			Name:           "mainnet",
			RPCURL:         "https://rpc.mainnet.near.org",
			ArchivalRPCURL: "https://archival-rpc.mainnet.near.org",
			Explorer:       "mainnet",
		},
	}
}

type fileConfig struct {
	Output   string `yaml:"output"`
	Timeout  string `yaml:"timeout"`
	Retries  *int   `yaml:"retries"`
	LogLevel string `yaml:"log_level"`
	Network  string `yaml:"network"`
	Networks map[string]struct {
		RPCURL         string `yaml:"rpc_url"`
		ArchivalRPCURL string `yaml:"archival_rpc_url"`
		Explorer       string `yaml:"explorer"`
	} `yaml:"networks"`
	History struct {
		Enabled  *bool  `yaml:"enabled"`
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"history"`
	KeySource string `yaml:"key_source"`
}

func Load(flags GlobalFlags) (Settings, error) {
	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}

	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	applyEnv(&settings)

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.OutputMode == "" {
		settings.OutputMode = "plain"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	if settings.Retries < 0 {
		settings.Retries = 0
	}
	if _, ok := settings.Networks[settings.DefaultNetwork]; !ok {
		return Settings{}, fmt.Errorf("default network %q is not configured", settings.DefaultNetwork)
	}

	return settings, nil
}

func defaultSettings() (Settings, error) {
	historyPath, lockPath, err := defaultHistoryPaths()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		OutputMode:      "plain",
		Timeout:         30 * time.Second,
		Retries:         0,
		LogLevel:        "warn",
		DefaultNetwork:  "testnet",
		Networks:        builtinNetworks(),
		HistoryEnabled:  true,
		HistoryPath:     historyPath,
		HistoryLockPath: lockPath,
		KeySource:       "auto",
	}, nil
}

func resolveConfigPath(input string) (string, error) {
	if strings.TrimSpace(input) != "" {
		return input, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "near", "config.yaml"), nil
}

func defaultHistoryPaths() (string, string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	dir := filepath.Join(base, "near")
	return filepath.Join(dir, "history.db"), filepath.Join(dir, "history.lock"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.Retries != nil {
		settings.Retries = *cfg.Retries
	}
	if cfg.LogLevel != "" {
		settings.LogLevel = strings.ToLower(cfg.LogLevel)
	}
	if cfg.Network != "" {
		settings.DefaultNetwork = cfg.Network
	}
	for name, n := range cfg.Networks {
		merged := settings.Networks[name]
		merged.Name = name
		if n.RPCURL != "" {
			merged.RPCURL = n.RPCURL
		}
		if n.ArchivalRPCURL != "" {
			merged.ArchivalRPCURL = n.ArchivalRPCURL
		}
		if n.Explorer != "" {
			merged.Explorer = n.Explorer
		}
		if merged.RPCURL == "" {
			return fmt.Errorf("config networks.%s.rpc_url is required", name)
		}
		if merged.Explorer == "" {
			merged.Explorer = name
		}
		settings.Networks[name] = merged
	}
	if cfg.History.Enabled != nil {
		settings.HistoryEnabled = *cfg.History.Enabled
	}
	if cfg.History.Path != "" {
		settings.HistoryPath = cfg.History.Path
	}
	if cfg.History.LockPath != "" {
		settings.HistoryLockPath = cfg.History.LockPath
	}
	if cfg.KeySource != "" {
		settings.KeySource = cfg.KeySource
	}

	return nil
}

func applyEnv(settings *Settings) {
	if v := os.Getenv("NEAR_OUTPUT"); v != "" {
		settings.OutputMode = strings.ToLower(v)
	}
	if v := os.Getenv("NEAR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv("NEAR_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			settings.Retries = n
		}
	}
	if v := os.Getenv("NEAR_LOG_LEVEL"); v != "" {
		settings.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("NEAR_NETWORK"); v != "" {
		settings.DefaultNetwork = v
	}
	if v := os.Getenv("NEAR_NO_HISTORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.HistoryEnabled = !b
		}
	}
	if v := os.Getenv("NEAR_HISTORY_PATH"); v != "" {
		settings.HistoryPath = v
	}
	if v := os.Getenv("NEAR_HISTORY_LOCK_PATH"); v != "" {
		settings.HistoryLockPath = v
	}
	if v := os.Getenv("NEAR_KEY_SOURCE"); v != "" {
		settings.KeySource = v
	}
	if v := os.Getenv("NO_COLOR"); v != "" {
		settings.NoColor = true
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON && flags.Plain {
		return fmt.Errorf("cannot use --json and --plain together")
	}
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if flags.Plain {
		settings.OutputMode = "plain"
	}
	settings.NoPrompt = flags.NoPrompt
	if flags.NoColor {
		settings.NoColor = true
	}

	if fields := splitList(flags.Select); len(fields) > 0 {
		settings.SelectFields = fields
	}
	settings.ResultsOnly = flags.ResultsOnly
	if allowed := splitList(flags.EnableCommands); len(allowed) > 0 {
		settings.EnableCommands = allowed
	}

	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if flags.Retries >= 0 {
		settings.Retries = flags.Retries
	}
	if flags.LogLevel != "" {
		settings.LogLevel = strings.ToLower(flags.LogLevel)
	}
	if flags.NoHistory {
		settings.HistoryEnabled = false
	}
	if flags.KeySource != "" {
		settings.KeySource = flags.KeySource
	}
	settings.PrivateKey = strings.TrimSpace(flags.PrivateKey)

	if settings.OutputMode != "json" && settings.OutputMode != "plain" {
		return fmt.Errorf("output must be json or plain")
	}

	return nil
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// NetworkNames lists configured networks in a stable order, default first.
func (s Settings) NetworkNames() []string {
	names := make([]string, 0, len(s.Networks))
	for name := range s.Networks {
		if name != s.DefaultNetwork {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := s.Networks[s.DefaultNetwork]; ok {
		names = append([]string{s.DefaultNetwork}, names...)
	}
	return names
}

// ResolveNetwork accepts a configured network name or an http(s) RPC URL.
// A bare URL uses itself for archival queries and links to the default
// network's explorer.
func (s Settings) ResolveNetwork(nameOrURL string) (Network, error) {
	v := strings.TrimSpace(nameOrURL)
	if v == "" {
		v = s.DefaultNetwork
	}
	if n, ok := s.Networks[strings.ToLower(v)]; ok {
		return n, nil
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Network{}, fmt.Errorf("unknown network %q (expected one of %s or an http(s) RPC URL)", v, strings.Join(s.NetworkNames(), ", "))
	}
	explorer := s.Networks[s.DefaultNetwork].Explorer
	return Network{Name: u.Host, RPCURL: v, ArchivalRPCURL: v, Explorer: explorer}, nil
}
