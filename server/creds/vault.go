package creds

import (
	"context"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	vaultapi "github.com/hashicorp/vault/api"
	"github.com/pkg/errors"

	"github.com/benchvalid/benchvalid/server/benchvalid"
	"github.com/benchvalid/benchvalid/server/config"
)

// vaultMount is the KV v2 mount holding the vm-credentials tree.
const vaultMount = "secret"

// vaultStore resolves credentials from a HashiCorp Vault KV v2 store at
// secret/vm-credentials/<benchmark>/<os>/<version>/<type>/<service>.
type vaultStore struct {
	client *vaultapi.Client
	logger kitlog.Logger
}

func newVaultStore(cfg config.CredsConfig, logger kitlog.Logger) (*vaultStore, error) {
	if cfg.VaultToken == "" {
		return nil, errors.New("vault token not set")
	}

	conf := vaultapi.DefaultConfig()
	if cfg.VaultAddress != "" {
		conf.Address = cfg.VaultAddress
	}
	client, err := vaultapi.NewClient(conf)
	if err != nil {
		return nil, errors.Wrap(err, "create vault client")
	}
	client.SetToken(cfg.VaultToken)

	return &vaultStore{client: client, logger: logger}, nil
}

func (s *vaultStore) VMCredentials(ctx context.Context, spec benchvalid.CredentialSpec) (benchvalid.Credential, error) {
	path := secretPath(spec)

	secret, err := s.client.KVv2(vaultMount).Get(ctx, path)
	if err != nil {
		if errors.Is(err, vaultapi.ErrSecretNotFound) {
			return benchvalid.Credential{}, &benchvalid.CredentialsNotFoundError{Key: path}
		}
		return benchvalid.Credential{}, errors.Wrapf(err, "read vault secret %s", path)
	}

	cred := benchvalid.Credential{
		Host:     stringField(secret.Data, "ip"),
		Username: stringField(secret.Data, "username"),
		Password: stringField(secret.Data, "password"),
	}
	if cred.Host == "" || cred.Username == "" || cred.Password == "" {
		return benchvalid.Credential{}, &benchvalid.CredentialsNotFoundError{Key: path}
	}

	level.Debug(s.logger).Log("msg", "resolved credentials from vault", "path", path)
	return cred, nil
}

func stringField(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}
