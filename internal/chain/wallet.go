package chain

import (
	"errors"
	"fmt"
	"os"

	solana "github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/config"
)

const privateKeyEnv = "SOLANA_PRIVATE_KEY_BASE58"

var (
	ErrNoPayer   = errors.New("chain: no payer key configured")
	ErrKeyNotSet = errors.New("chain: " + privateKeyEnv + " not set")
)

// LoadPrivateKeyFromEnv returns ErrKeyNotSet when the variable is empty and a wrapped
// decode error when it is set but malformed.
func LoadPrivateKeyFromEnv() (solana.PrivateKey, error) {
	_ = godotenv.Load() // best-effort
	b58 := os.Getenv(privateKeyEnv)
	if b58 == "" {
		return nil, ErrKeyNotSet
	}
	key, err := solana.PrivateKeyFromBase58(b58)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", privateKeyEnv, err)
	}
	return key, nil
}

// LoadKeypairFile reads a solana-keygen JSON keypair.
func LoadKeypairFile(path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keypair %s: %w", path, err)
	}
	return key, nil
}

// LoadPayer picks the payer key from, in order: the environment, the configured base58 key,
// the keypair file, and finally a fresh key when ephemeral payers are allowed.
func LoadPayer(cfg config.Wallet, log zerolog.Logger) (solana.PrivateKey, error) {
	key, err := LoadPrivateKeyFromEnv()
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, ErrKeyNotSet) {
		return nil, err
	}
	if cfg.PrivateKeyBase58 != "" {
		key, err := solana.PrivateKeyFromBase58(cfg.PrivateKeyBase58)
		if err != nil {
			return nil, fmt.Errorf("decode wallet.private_key_base58: %w", err)
		}
		return key, nil
	}
	if cfg.KeypairPath != "" {
		if _, err := os.Stat(cfg.KeypairPath); err == nil || !cfg.AllowEphemeral {
			return LoadKeypairFile(cfg.KeypairPath)
		}
	}
	if cfg.AllowEphemeral {
		wallet := solana.NewWallet()
		log.Warn().Str("payer", wallet.PublicKey().String()).Msg("using ephemeral payer")
		return wallet.PrivateKey, nil
	}
	return nil, ErrNoPayer
}
