package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"placementprep/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSecrets serves KVv2 data from memory
type fakeSecrets map[string]map[string]any

func (f fakeSecrets) ReadSecret(path string) (map[string]any, error) {
	data, ok := f[path]
	if !ok {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	return data, nil
}

func TestResolveVaultToken(t *testing.T) {
	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"})
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile})
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"})
		assert.ErrorContains(t, err, "failed to read vault token file")
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{})
		assert.ErrorContains(t, err, "vault token is required")
	})
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{Vault: VaultConfig{Enabled: false}}
	assert.NoError(t, ApplyVaultSecrets(config, errors.NewDiscardLogger()))
}

func TestApplySecrets(t *testing.T) {
	secrets := fakeSecrets{
		"secret/data/placementprep/api": {"keys": "alpha, beta ,gamma"},
		"secret/data/placementprep/db":  {"dsn": "postgres://prep@db/prep"},
		"secret/data/placementprep/tls": {"cert": "CERT-PEM", "key": "KEY-PEM"},
	}

	config := &Config{
		Server: ServerConfig{TLS: TLSConfig{Mode: "server", CertFile: "/etc/cert.pem", KeyFile: "/etc/key.pem"}},
		Vault: VaultConfig{
			Enabled: true,
			Secrets: VaultSecrets{
				APIKeys:    "secret/data/placementprep/api",
				HistoryDSN: "secret/data/placementprep/db",
				TLSCerts:   "secret/data/placementprep/tls",
			},
		},
	}

	require.NoError(t, applySecrets(secrets, config, errors.NewDiscardLogger()))
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, config.Server.APIKeys)
	assert.Equal(t, "postgres://prep@db/prep", config.History.DSN)
	assert.Equal(t, "CERT-PEM", config.Server.TLS.CertContent)
	assert.Equal(t, "KEY-PEM", config.Server.TLS.KeyContent)
	assert.Empty(t, config.Server.TLS.CertFile)
	assert.Empty(t, config.Server.TLS.KeyFile)
	assert.NoError(t, config.ValidateTLSConfig())
}

func TestApplySecretsSkipsUnsetPaths(t *testing.T) {
	config := &Config{
		Server:  ServerConfig{APIKeys: []string{"from-file"}},
		History: HistoryConfig{DSN: "postgres://local"},
		Vault:   VaultConfig{Enabled: true},
	}

	require.NoError(t, applySecrets(fakeSecrets{}, config, errors.NewDiscardLogger()))
	assert.Equal(t, []string{"from-file"}, config.Server.APIKeys)
	assert.Equal(t, "postgres://local", config.History.DSN)
}

func TestApplySecretsKeepsConfigOnBlankValues(t *testing.T) {
	secrets := fakeSecrets{
		"api": {"keys": " , "},
		"db":  {"dsn": "  "},
		"tls": {"cert": "", "key": 123},
	}
	config := &Config{
		Server: ServerConfig{
			APIKeys: []string{"from-file"},
			TLS:     TLSConfig{CertFile: "/etc/cert.pem", KeyFile: "/etc/key.pem"},
		},
		History: HistoryConfig{DSN: "postgres://local"},
		Vault:   VaultConfig{Enabled: true, Secrets: VaultSecrets{APIKeys: "api", HistoryDSN: "db", TLSCerts: "tls"}},
	}

	require.NoError(t, applySecrets(secrets, config, errors.NewDiscardLogger()))
	assert.Equal(t, []string{"from-file"}, config.Server.APIKeys)
	assert.Equal(t, "postgres://local", config.History.DSN)
	assert.Equal(t, "/etc/cert.pem", config.Server.TLS.CertFile)
	assert.Equal(t, "/etc/key.pem", config.Server.TLS.KeyFile)
	assert.Empty(t, config.Server.TLS.CertContent)
}

func TestApplySecretsErrors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		config := &Config{
			Vault: VaultConfig{Enabled: true, Secrets: VaultSecrets{HistoryDSN: "secret/data/missing"}},
		}
		err := applySecrets(fakeSecrets{}, config, errors.NewDiscardLogger())
		assert.ErrorContains(t, err, "failed to load history_dsn from vault")
	})

	t.Run("missing key", func(t *testing.T) {
		config := &Config{
			Vault: VaultConfig{Enabled: true, Secrets: VaultSecrets{APIKeys: "api"}},
		}
		err := applySecrets(fakeSecrets{"api": {"other": "value"}}, config, errors.NewDiscardLogger())
		assert.True(t, errors.HasCode(err, errors.ErrCodeSecretUnavailable), "got %v", err)
		assert.ErrorContains(t, err, `key "keys" missing`)
	})
}

func TestKVData(t *testing.T) {
	data, err := kvData(&api.Secret{Data: map[string]any{
		"data":     map[string]any{"dsn": "postgres://x"},
		"metadata": map[string]any{"version": 3},
	}}, "secret/test")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"dsn": "postgres://x"}, data)

	_, err = kvData(&api.Secret{Data: map[string]any{"data": "not-a-map"}}, "secret/test")
	assert.True(t, errors.HasCode(err, errors.ErrCodeSecretUnavailable))

	_, err = kvData(nil, "secret/test")
	assert.ErrorContains(t, err, "secret not found")
}

func TestNilVaultClient(t *testing.T) {
	var vc *VaultClient
	_, err := vc.ReadSecret("secret/test")
	assert.ErrorContains(t, err, "vault client not initialized")
}
