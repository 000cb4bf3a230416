package config

import (
	"fmt"
	"os"
	"strings"

	"placementprep/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	// Secret paths
	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets lists the KVv2 paths read at startup. An empty path is skipped.
type VaultSecrets struct {
	APIKeys    string `mapstructure:"apiKeys"`    // key "keys": comma-separated server API keys
	HistoryDSN string `mapstructure:"historyDSN"` // key "dsn": Postgres history connection string
	TLSCerts   string `mapstructure:"tlsCerts"`   // keys "cert" and "key": PEM content
}

// secretReader returns the data map of a KVv2 secret
type secretReader interface {
	ReadSecret(path string) (map[string]any, error)
}

// VaultClient reads KVv2 secrets
type VaultClient struct {
	client *api.Client
	logger *errors.Logger
}

// NewVaultClient connects to Vault and checks its health
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}

	apiConfig := api.DefaultConfig()
	if config.Address != "" {
		apiConfig.Address = config.Address
	}
	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to create vault client", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeSecretUnavailable, "failed to connect to vault", err).
			WithContext("address", apiConfig.Address)
	}
	logger.Info("Connected to Vault",
		"address", apiConfig.Address,
		"version", health.Version,
		"sealed", health.Sealed)

	return &VaultClient{client: client, logger: logger}, nil
}

// resolveVaultToken takes the token from config, falling back to the token file
func resolveVaultToken(config VaultConfig) (string, error) {
	token := config.Token
	if token == "" && config.TokenFile != "" {
		data, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to read vault token file", err).
				WithContext("file", config.TokenFile)
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "vault token is required when vault is enabled", nil)
	}
	return token, nil
}

// ReadSecret returns the data map of the KVv2 secret at path
func (vc *VaultClient) ReadSecret(path string) (map[string]any, error) {
	if vc == nil {
		return nil, errors.NewInternalError(errors.ErrCodeSecretUnavailable, "vault client not initialized", nil)
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeSecretUnavailable, "failed to read secret", err).
			WithContext("path", path)
	}
	return kvData(secret, path)
}

// kvData unwraps the "data" map of a KVv2 response
func kvData(secret *api.Secret, path string) (map[string]any, error) {
	if secret == nil || secret.Data == nil {
		return nil, errors.NewConfigError(errors.ErrCodeSecretUnavailable, "secret not found", nil).
			WithContext("path", path)
	}
	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, errors.NewConfigError(errors.ErrCodeSecretUnavailable, "secret is not in KVv2 format", nil).
			WithContext("path", path)
	}
	return data, nil
}

// secretBinding copies the fields of one secret into the config
type secretBinding struct {
	name  string
	path  string
	apply func(data map[string]any) error
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return strings.TrimSpace(value)
}

func requiredField(data map[string]any, key string) (string, error) {
	value, ok := data[key].(string)
	if !ok {
		return "", fmt.Errorf("key %q missing or not a string", key)
	}
	return value, nil
}

// secretBindings lists every secret the config can take from Vault
func secretBindings(config *Config) []secretBinding {
	paths := config.Vault.Secrets
	return []secretBinding{
		{
			name: "api_keys",
			path: paths.APIKeys,
			apply: func(data map[string]any) error {
				raw, err := requiredField(data, "keys")
				if err != nil {
					return err
				}
				if keys := splitAndTrim(raw); len(keys) > 0 {
					config.Server.APIKeys = keys
				}
				return nil
			},
		},
		{
			name: "history_dsn",
			path: paths.HistoryDSN,
			apply: func(data map[string]any) error {
				raw, err := requiredField(data, "dsn")
				if err != nil {
					return err
				}
				if dsn := strings.TrimSpace(raw); dsn != "" {
					config.History.DSN = dsn
				}
				return nil
			},
		},
		{
			name: "tls_certs",
			path: paths.TLSCerts,
			apply: func(data map[string]any) error {
				// PEM content takes precedence over file paths
				if cert := stringField(data, "cert"); cert != "" {
					config.Server.TLS.CertContent = cert
					config.Server.TLS.CertFile = ""
				}
				if key := stringField(data, "key"); key != "" {
					config.Server.TLS.KeyContent = key
					config.Server.TLS.KeyFile = ""
				}
				return nil
			},
		},
	}
}

// applySecrets reads every configured secret path and applies it to config
func applySecrets(reader secretReader, config *Config, logger *errors.Logger) error {
	applied := 0
	for _, b := range secretBindings(config) {
		if b.path == "" {
			continue
		}

		data, err := reader.ReadSecret(b.path)
		if err != nil {
			return fmt.Errorf("failed to load %s from vault: %w", b.name, err)
		}
		if err := b.apply(data); err != nil {
			return errors.NewConfigError(errors.ErrCodeSecretUnavailable,
				fmt.Sprintf("invalid %s secret", b.name), err).WithContext("path", b.path)
		}

		applied++
		logger.Debug("Secret applied from Vault", "secret", b.name, "path", b.path)
	}

	logger.Info("Vault secrets applied", "count", applied)
	return nil
}

// ApplyVaultSecrets overrides API keys, the history DSN and TLS material
// with values stored in Vault
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		return nil
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return err
	}
	return applySecrets(client, config, logger)
}
