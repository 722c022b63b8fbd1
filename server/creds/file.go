package creds

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/fernet/fernet-go"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/benchvalid/benchvalid/server/benchvalid"
	"github.com/benchvalid/benchvalid/server/config"
)

// fileCredential is one leaf of the credential file tree.
type fileCredential struct {
	IP       string `json:"ip"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// credentialTree is the nested layout of the credential files:
// benchmark -> os -> version -> type -> service -> credential.
type credentialTree map[string]map[string]map[string]map[string]map[string]fileCredential

// fileStore resolves credentials from a plain JSON file. Kept for legacy
// setups; NewStore logs a warning when it is selected.
type fileStore struct {
	path   string
	logger kitlog.Logger
}

func (s *fileStore) VMCredentials(_ context.Context, spec benchvalid.CredentialSpec) (benchvalid.Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return benchvalid.Credential{}, errors.Wrapf(err, "read credential file %s", s.path)
	}
	return lookupTree(data, s.path, spec)
}

// encryptedStore resolves credentials from a fernet-encrypted JSON file
// with the same layout as the plain file backend.
type encryptedStore struct {
	path   string
	keys   []*fernet.Key
	logger kitlog.Logger
}

func newEncryptedStore(cfg config.CredsConfig, logger kitlog.Logger) (*encryptedStore, error) {
	if cfg.EncryptionKey == "" {
		return nil, errors.New("encryption key not set")
	}
	keys, err := fernet.DecodeKeys(cfg.EncryptionKey)
	if err != nil {
		return nil, errors.Wrap(err, "decode encryption key")
	}
	return &encryptedStore{
		path:   cfg.EncryptedFile,
		keys:   keys,
		logger: logger,
	}, nil
}

func (s *encryptedStore) VMCredentials(_ context.Context, spec benchvalid.CredentialSpec) (benchvalid.Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return benchvalid.Credential{}, errors.Wrapf(err, "read encrypted credential file %s", s.path)
	}

	// Negative ttl disables token expiry; credential files are long-lived.
	plaintext := fernet.VerifyAndDecrypt(data, -1, s.keys)
	if plaintext == nil {
		return benchvalid.Credential{}, errors.Errorf("cannot decrypt credential file %s: invalid token or wrong key", s.path)
	}

	level.Debug(s.logger).Log("msg", "decrypted credential file", "path", s.path)
	return lookupTree(plaintext, s.path, spec)
}

func lookupTree(data []byte, path string, spec benchvalid.CredentialSpec) (benchvalid.Credential, error) {
	var tree credentialTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return benchvalid.Credential{}, errors.Wrapf(err, "decode credential file %s", path)
	}

	key := strings.Join([]string{spec.Benchmark, spec.OS, spec.Version, spec.Type, spec.Service}, "/")
	cred, ok := tree[spec.Benchmark][spec.OS][spec.Version][spec.Type][spec.Service]
	if !ok {
		return benchvalid.Credential{}, &benchvalid.CredentialsNotFoundError{Key: key}
	}

	return benchvalid.Credential{
		Host:     cred.IP,
		Username: cred.Username,
		Password: cred.Password,
	}, nil
}
