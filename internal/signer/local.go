package signer

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"

	"github.com/ggonzalez94/near-cli/internal/near"
)

const (
	EnvPrivateKey           = "NEAR_PRIVATE_KEY"
	EnvPrivateKeyFile       = "NEAR_PRIVATE_KEY_FILE"
	EnvKeystorePath         = "NEAR_KEYSTORE_PATH"
	EnvKeystorePassword     = "NEAR_KEYSTORE_PASSWORD"
	EnvKeystorePasswordFile = "NEAR_KEYSTORE_PASSWORD_FILE"

	KeySourceAuto     = "auto"
	KeySourceEnv      = "env"
	KeySourceFile     = "file"
	KeySourceKeystore = "keystore"

	defaultPrivateKeyRelativePath = "near/key.json"
	defaultPrivateKeyHintPath     = "~/.config/" + defaultPrivateKeyRelativePath
)

type LocalSigner struct {
	privateKey ed25519.PrivateKey
	publicKey  near.PublicKey
}

func (s *LocalSigner) PublicKey() near.PublicKey {
	return s.publicKey
}

func (s *LocalSigner) Sign(message []byte) (near.Signature, error) {
	if s == nil || s.privateKey == nil {
		return near.Signature{}, errors.New("local signer is not initialized")
	}
	return near.SignatureFromBytes(ed25519.Sign(s.privateKey, message))
}

func NewLocalSignerFromEnv(source string) (*LocalSigner, error) {
	return NewLocalSignerFromInputs(source, "")
}

func NewLocalSignerFromInputs(source, privateKeyOverride string) (*LocalSigner, error) {
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" {
		source = KeySourceAuto
	}
	cfg := LocalSignerConfig{
		PrivateKey:           strings.TrimSpace(os.Getenv(EnvPrivateKey)),
		PrivateKeyFile:       strings.TrimSpace(os.Getenv(EnvPrivateKeyFile)),
		KeystorePath:         strings.TrimSpace(os.Getenv(EnvKeystorePath)),
		KeystorePassword:     strings.TrimSpace(os.Getenv(EnvKeystorePassword)),
		KeystorePasswordFile: strings.TrimSpace(os.Getenv(EnvKeystorePasswordFile)),
	}
	if cfg.PrivateKeyFile == "" {
		cfg.PrivateKeyFile = discoverDefaultPrivateKeyFile()
	}

	switch source {
	case KeySourceAuto:
		// loadPrivateKey applies precedence over everything that is set.
	case KeySourceEnv:
		cfg = LocalSignerConfig{PrivateKey: cfg.PrivateKey}
	case KeySourceFile:
		cfg = LocalSignerConfig{PrivateKeyFile: cfg.PrivateKeyFile}
	case KeySourceKeystore:
		cfg.PrivateKey = ""
		cfg.PrivateKeyFile = ""
	default:
		return nil, fmt.Errorf("unsupported key source %q (expected %s|%s|%s|%s)", source, KeySourceAuto, KeySourceEnv, KeySourceFile, KeySourceKeystore)
	}
	if override := strings.TrimSpace(privateKeyOverride); override != "" {
		cfg = LocalSignerConfig{PrivateKey: override}
	}
	return NewLocalSigner(cfg)
}

type LocalSignerConfig struct {
	PrivateKey           string
	PrivateKeyFile       string
	KeystorePath         string
	KeystorePassword     string
	KeystorePasswordFile string
}

func NewLocalSigner(cfg LocalSignerConfig) (*LocalSigner, error) {
	priv, err := loadPrivateKey(cfg)
	if err != nil {
		return nil, err
	}
	pair, err := keyPairFromPrivate(priv)
	if err != nil {
		return nil, err
	}
	return &LocalSigner{privateKey: priv, publicKey: pair.PublicKey}, nil
}

// credentialsFile is the JSON layout written by generate-key and by the
// NEAR wallet tooling. A bare "ed25519:..." string is also accepted.
type credentialsFile struct {
	AccountID  string `json:"account_id,omitempty"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// keystoreFile wraps a Web3 secret-storage crypto section whose plaintext is
// the 32-byte ed25519 seed.
type keystoreFile struct {
	PublicKey string              `json:"public_key"`
	Crypto    keystore.CryptoJSON `json:"crypto"`
}

func loadPrivateKey(cfg LocalSignerConfig) (ed25519.PrivateKey, error) {
	if strings.TrimSpace(cfg.PrivateKey) != "" {
		return ParseSecretKey(cfg.PrivateKey)
	}
	if strings.TrimSpace(cfg.PrivateKeyFile) != "" {
		buf, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read private key file: %w", err)
		}
		return parseKeyFile(buf)
	}
	if strings.TrimSpace(cfg.KeystorePath) != "" {
		password := cfg.KeystorePassword
		if strings.TrimSpace(password) == "" && strings.TrimSpace(cfg.KeystorePasswordFile) != "" {
			buf, err := os.ReadFile(cfg.KeystorePasswordFile)
			if err != nil {
				return nil, fmt.Errorf("read keystore password file: %w", err)
			}
			password = strings.TrimSpace(string(buf))
		}
		if strings.TrimSpace(password) == "" {
			return nil, fmt.Errorf("keystore password is required")
		}
		buf, err := os.ReadFile(cfg.KeystorePath)
		if err != nil {
			return nil, fmt.Errorf("read keystore file: %w", err)
		}
		return decryptKeystore(buf, password)
	}
	return nil, fmt.Errorf("missing signing key: set %s, %s, %s, pass --private-key, or write %s", EnvPrivateKey, EnvPrivateKeyFile, EnvKeystorePath, defaultPrivateKeyHintPath)
}

func parseKeyFile(buf []byte) (ed25519.PrivateKey, error) {
	trimmed := strings.TrimSpace(string(buf))
	if !strings.HasPrefix(trimmed, "{") {
		return ParseSecretKey(trimmed)
	}
	var creds credentialsFile
	if err := json.Unmarshal([]byte(trimmed), &creds); err != nil {
		return nil, fmt.Errorf("parse private key file: %w", err)
	}
	priv, err := ParseSecretKey(creds.PrivateKey)
	if err != nil {
		return nil, err
	}
	if err := checkPublicKey(priv, creds.PublicKey); err != nil {
		return nil, err
	}
	return priv, nil
}

func decryptKeystore(buf []byte, password string) (ed25519.PrivateKey, error) {
	var file keystoreFile
	if err := json.Unmarshal(buf, &file); err != nil {
		return nil, fmt.Errorf("parse keystore file: %w", err)
	}
	seed, err := keystore.DecryptDataV3(file.Crypto, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt keystore: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("decrypt keystore: expected %d-byte seed, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	if err := checkPublicKey(priv, file.PublicKey); err != nil {
		return nil, err
	}
	return priv, nil
}

// EncryptKeystore produces the keystore file format read by the keystore key
// source.
func EncryptKeystore(pair KeyPair, password string, scryptN, scryptP int) ([]byte, error) {
	if pair.private == nil {
		return nil, errors.New("key pair has no private key")
	}
	crypto, err := keystore.EncryptDataV3(pair.private.Seed(), []byte(password), scryptN, scryptP)
	if err != nil {
		return nil, fmt.Errorf("encrypt keystore: %w", err)
	}
	return json.MarshalIndent(keystoreFile{PublicKey: pair.PublicKey.String(), Crypto: crypto}, "", "  ")
}

func checkPublicKey(priv ed25519.PrivateKey, declared string) error {
	if strings.TrimSpace(declared) == "" {
		return nil
	}
	want, err := near.ParsePublicKey(declared)
	if err != nil {
		return fmt.Errorf("parse declared public key: %w", err)
	}
	got, err := near.PublicKeyFromBytes(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return err
	}
	if !got.Equal(want) {
		return fmt.Errorf("declared public key %s does not match private key (%s)", want, got)
	}
	return nil
}

func defaultPrivateKeyPath() string {
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, defaultPrivateKeyRelativePath)
}

func discoverDefaultPrivateKeyFile() string {
	path := defaultPrivateKeyPath()
	if path == "" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}

// CredentialsJSON renders the key file layout accepted by the file key source.
func CredentialsJSON(pair KeyPair, accountID string) ([]byte, error) {
	return json.MarshalIndent(credentialsFile{AccountID: accountID, PublicKey: pair.PublicKey.String(), PrivateKey: pair.SecretKey}, "", "  ")
}
