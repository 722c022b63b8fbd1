package creds

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchvalid/benchvalid/server/benchvalid"
	"github.com/benchvalid/benchvalid/server/config"
)

var testSpec = benchvalid.CredentialSpec{
	Benchmark: "CIS",
	OS:        "RHEL",
	Version:   "9",
	Type:      "compliance",
	Service:   "server",
}

const credentialJSON = `{
  "CIS": {
    "RHEL": {
      "9": {
        "compliance": {
          "server": {"ip": "10.0.0.5", "username": "scanner", "password": "hunter2"}
        }
      }
    }
  }
}`

func TestSecretPath(t *testing.T) {
	assert.Equal(t, "vm-credentials/CIS/RHEL/9/compliance/server", secretPath(testSpec))
}

func TestEnvKeyPrefix(t *testing.T) {
	assert.Equal(t, "VM_CIS_RHEL_9_COMPLIANCE_SERVER", envKeyPrefix(testSpec))
}

func TestEnvStoreSpecific(t *testing.T) {
	t.Setenv("VM_CIS_RHEL_9_COMPLIANCE_SERVER_IP", "10.0.0.5")
	t.Setenv("VM_CIS_RHEL_9_COMPLIANCE_SERVER_USERNAME", "scanner")
	t.Setenv("VM_CIS_RHEL_9_COMPLIANCE_SERVER_PASSWORD", "hunter2")

	store, err := NewStore(config.CredsConfig{Backend: BackendEnv}, nil)
	require.NoError(t, err)

	cred, err := store.VMCredentials(context.Background(), testSpec)
	require.NoError(t, err)
	assert.Equal(t, benchvalid.Credential{Host: "10.0.0.5", Username: "scanner", Password: "hunter2"}, cred)
}

func TestEnvStoreGenericFallback(t *testing.T) {
	t.Setenv("VM_CIS_RHEL_IP", "10.0.0.6")
	t.Setenv("VM_CIS_RHEL_PASSWORD", "hunter3")

	store, err := NewStore(config.CredsConfig{}, nil)
	require.NoError(t, err)

	cred, err := store.VMCredentials(context.Background(), testSpec)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.6", cred.Host)
	// Username falls back to the default when no variable sets it.
	assert.Equal(t, "root", cred.Username)
	assert.Equal(t, "hunter3", cred.Password)
}

func TestEnvStoreSpecificWinsOverGeneric(t *testing.T) {
	t.Setenv("VM_CIS_RHEL_9_COMPLIANCE_SERVER_IP", "10.0.0.5")
	t.Setenv("VM_CIS_RHEL_9_COMPLIANCE_SERVER_USERNAME", "scanner")
	t.Setenv("VM_CIS_RHEL_9_COMPLIANCE_SERVER_PASSWORD", "hunter2")
	t.Setenv("VM_CIS_RHEL_IP", "10.0.0.99")
	t.Setenv("VM_CIS_RHEL_PASSWORD", "other")

	store, err := NewStore(config.CredsConfig{Backend: BackendEnv}, nil)
	require.NoError(t, err)

	cred, err := store.VMCredentials(context.Background(), testSpec)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cred.Host)
	assert.Equal(t, "hunter2", cred.Password)
}

func TestEnvStoreNotFound(t *testing.T) {
	store, err := NewStore(config.CredsConfig{Backend: BackendEnv}, nil)
	require.NoError(t, err)

	_, err = store.VMCredentials(context.Background(), benchvalid.CredentialSpec{
		Benchmark: "NOPE", OS: "NONE", Version: "0", Type: "compliance", Service: "server",
	})
	var notFound *benchvalid.CredentialsNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.True(t, notFound.IsNotFound())
}

func TestJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(credentialJSON), 0o600))

	store, err := NewStore(config.CredsConfig{Backend: BackendJSON, JSONFile: path}, nil)
	require.NoError(t, err)

	cred, err := store.VMCredentials(context.Background(), testSpec)
	require.NoError(t, err)
	assert.Equal(t, benchvalid.Credential{Host: "10.0.0.5", Username: "scanner", Password: "hunter2"}, cred)
}

func TestJSONStoreNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(credentialJSON), 0o600))

	store, err := NewStore(config.CredsConfig{Backend: BackendJSON, JSONFile: path}, nil)
	require.NoError(t, err)

	missing := testSpec
	missing.Service = "workstation"
	_, err = store.VMCredentials(context.Background(), missing)
	var notFound *benchvalid.CredentialsNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, notFound.Key, "workstation")
}

func TestEncryptedStore(t *testing.T) {
	var key fernet.Key
	require.NoError(t, key.Generate())

	token, err := fernet.EncryptAndSign([]byte(credentialJSON), &key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "creds.json.enc")
	require.NoError(t, os.WriteFile(path, token, 0o600))

	store, err := NewStore(config.CredsConfig{
		Backend:       BackendEncrypted,
		EncryptedFile: path,
		EncryptionKey: key.Encode(),
	}, nil)
	require.NoError(t, err)

	cred, err := store.VMCredentials(context.Background(), testSpec)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cred.Host)
}

func TestEncryptedStoreWrongKey(t *testing.T) {
	var key, other fernet.Key
	require.NoError(t, key.Generate())
	require.NoError(t, other.Generate())

	token, err := fernet.EncryptAndSign([]byte(credentialJSON), &key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "creds.json.enc")
	require.NoError(t, os.WriteFile(path, token, 0o600))

	store, err := NewStore(config.CredsConfig{
		Backend:       BackendEncrypted,
		EncryptedFile: path,
		EncryptionKey: other.Encode(),
	}, nil)
	require.NoError(t, err)

	_, err = store.VMCredentials(context.Background(), testSpec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot decrypt")
}

func TestEncryptedStoreMissingKey(t *testing.T) {
	_, err := NewStore(config.CredsConfig{Backend: BackendEncrypted}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encryption key not set")
}

func TestUnsupportedBackend(t *testing.T) {
	_, err := NewStore(config.CredsConfig{Backend: "keychain"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported credential backend")
}
