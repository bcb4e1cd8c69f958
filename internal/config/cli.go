package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SolanaCLI mirrors the fields we need from the solana command line tool config.
type SolanaCLI struct {
	JsonRpcURL   string `yaml:"json_rpc_url"`
	WebsocketURL string `yaml:"websocket_url"`
	KeypairPath  string `yaml:"keypair_path"`
	Commitment   string `yaml:"commitment"`
}

// DefaultSolanaCLIPath returns ~/.config/solana/cli/config.yml.
func DefaultSolanaCLIPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "solana", "cli", "config.yml"), nil
}

// LoadSolanaCLI parses a solana CLI config file.
func LoadSolanaCLI(path string) (*SolanaCLI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read solana cli config: %w", err)
	}
	var cli SolanaCLI
	if err := yaml.Unmarshal(data, &cli); err != nil {
		return nil, fmt.Errorf("decode solana cli config: %w", err)
	}
	return &cli, nil
}

// MergeSolanaCLI fills cluster and wallet settings left at their defaults from the CLI config.
func (c *Config) MergeSolanaCLI(cli *SolanaCLI) {
	if cli == nil {
		return
	}
	if (c.Cluster.RpcURL == "" || c.Cluster.RpcURL == DefaultRpcURL) && cli.JsonRpcURL != "" {
		c.Cluster.RpcURL = cli.JsonRpcURL
	}
	if c.Cluster.WsURL == "" && cli.WebsocketURL != "" {
		c.Cluster.WsURL = cli.WebsocketURL
	}
	if c.Wallet.KeypairPath == "" && cli.KeypairPath != "" {
		c.Wallet.KeypairPath = cli.KeypairPath
	}
}

// Resolve loads path, fills gaps from the solana CLI config when one exists under $HOME,
// then applies environment overrides. Both binaries load their settings through it.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if cliPath, err := DefaultSolanaCLIPath(); err == nil {
		cli, err := LoadSolanaCLI(cliPath)
		switch {
		case err == nil:
			cfg.MergeSolanaCLI(cli)
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}
