// Package config exposes strongly typed client configuration loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Cluster describes the RPC endpoints and the funding/confirmation knobs.
type Cluster struct {
	RpcURL               string `yaml:"rpc_url"`
	WsURL                string `yaml:"ws_url"`
	Commitment           string `yaml:"commitment"`   // processed|confirmed|finalized
	ConfirmMode          string `yaml:"confirm_mode"` // poll|ws
	ConfirmTimeoutMs     int    `yaml:"confirm_timeout_ms"`
	AccountSize          uint64 `yaml:"account_size"`
	LamportsPerSignature uint64 `yaml:"lamports_per_signature"`
	MaxAirdropLamports   uint64 `yaml:"max_airdrop_lamports"`
}

// Programs lists the base58 ids of the deployed programs.
type Programs struct {
	Ecom    string `yaml:"ecom"`
	Address string `yaml:"address"`
	Profile string `yaml:"profile"`
}

// Wallet points at the payer signing material.
type Wallet struct {
	PrivateKeyBase58 string `yaml:"private_key_base58"`
	KeypairPath      string `yaml:"keypair_path"`
	AllowEphemeral   bool   `yaml:"allow_ephemeral"`
}

// Journal configures where submission receipts are appended.
type Journal struct {
	Path string `yaml:"path"`
}

// Profile is the input for the profile update step.
type Profile struct {
	Name  string `yaml:"name"`
	Date  uint32 `yaml:"date"`
	Month uint32 `yaml:"month"`
	Year  uint32 `yaml:"year"`
}

// Steps toggles the optional stages of a run.
type Steps struct {
	InitAddress   bool    `yaml:"init_address"`
	UpdateAddress bool    `yaml:"update_address"`
	ReadAddress   bool    `yaml:"read_address"`
	Address       string  `yaml:"address"`
	SetupProfile  bool    `yaml:"setup_profile"`
	InitProfile   bool    `yaml:"init_profile"`
	UpdateProfile bool    `yaml:"update_profile"`
	ReadProfile   bool    `yaml:"read_profile"`
	Profile       Profile `yaml:"profile"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Cluster  Cluster  `yaml:"cluster"`
	Programs Programs `yaml:"programs"`
	Wallet   Wallet   `yaml:"wallet"`
	Journal  Journal  `yaml:"journal"`
	Steps    Steps    `yaml:"steps"`
}

const (
	DefaultRpcURL               = "http://127.0.0.1:8899"
	DefaultAccountSize          = 1000
	DefaultLamportsPerSignature = 5000
	DefaultConfirmTimeoutMs     = 30000
)

// Load reads a YAML file from disk and hydrates a Config struct with defaults applied.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.applyDefaults()
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Cluster.RpcURL == "" {
		c.Cluster.RpcURL = DefaultRpcURL
	}
	if c.Cluster.Commitment == "" {
		c.Cluster.Commitment = "confirmed"
	}
	if c.Cluster.ConfirmMode == "" {
		c.Cluster.ConfirmMode = "poll"
	}
	if c.Cluster.ConfirmTimeoutMs <= 0 {
		c.Cluster.ConfirmTimeoutMs = DefaultConfirmTimeoutMs
	}
	if c.Cluster.AccountSize == 0 {
		c.Cluster.AccountSize = DefaultAccountSize
	}
	if c.Cluster.LamportsPerSignature == 0 {
		c.Cluster.LamportsPerSignature = DefaultLamportsPerSignature
	}
}

// Validate reports missing or malformed settings that would make a run fail later.
func (c *Config) Validate() error {
	var errs []error
	if c.Programs.Ecom == "" {
		errs = append(errs, errors.New("programs.ecom is required"))
	}
	if c.Programs.Address == "" {
		errs = append(errs, errors.New("programs.address is required"))
	}
	if c.Steps.SetupProfile && c.Programs.Profile == "" {
		errs = append(errs, errors.New("programs.profile is required when steps.setup_profile is set"))
	}
	switch strings.ToLower(c.Cluster.Commitment) {
	case "", "processed", "confirmed", "finalized":
	default:
		errs = append(errs, fmt.Errorf("cluster.commitment %q is not processed|confirmed|finalized", c.Cluster.Commitment))
	}
	switch strings.ToLower(c.Cluster.ConfirmMode) {
	case "", "poll":
	case "ws":
		if c.Cluster.WsURL == "" {
			errs = append(errs, errors.New("cluster.ws_url is required for confirm_mode ws"))
		}
	default:
		errs = append(errs, fmt.Errorf("cluster.confirm_mode %q is not poll|ws", c.Cluster.ConfirmMode))
	}
	return errors.Join(errs...)
}

// ApplyEnv overrides cluster endpoints from SOLANA_RPC_URL, SOLANA_WS_URL and SOLANA_COMMITMENT.
func (c *Config) ApplyEnv() {
	c.Cluster.RpcURL = getEnv("SOLANA_RPC_URL", c.Cluster.RpcURL)
	c.Cluster.WsURL = getEnv("SOLANA_WS_URL", c.Cluster.WsURL)
	c.Cluster.Commitment = getEnv("SOLANA_COMMITMENT", c.Cluster.Commitment)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
