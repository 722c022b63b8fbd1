// Package creds resolves scan-target VM credentials from one of several
// secret backends. The backend is selected by configuration when the store
// is constructed; every backend resolves the same lookup key shape to a
// host/username/password triple or reports CredentialsNotFoundError.
package creds

import (
	"context"
	"fmt"
	"strings"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/benchvalid/benchvalid/server/benchvalid"
	"github.com/benchvalid/benchvalid/server/config"
)

// Supported backend names for config.CredsConfig.Backend.
const (
	BackendEnv       = "env"
	BackendAWS       = "aws"
	BackendVault     = "vault"
	BackendEncrypted = "encrypted"
	BackendJSON      = "json"
)

// Store resolves credentials for scan-target VMs.
type Store interface {
	// VMCredentials resolves the credentials for the VM identified by spec.
	// It returns a CredentialsNotFoundError when no value resolves for the
	// key.
	VMCredentials(ctx context.Context, spec benchvalid.CredentialSpec) (benchvalid.Credential, error)
}

// NewStore builds the Store selected by cfg.Backend. An empty backend
// selects the environment-variable backend.
func NewStore(cfg config.CredsConfig, logger kitlog.Logger) (Store, error) {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	logger = kitlog.With(logger, "component", "creds", "backend", cfg.Backend)

	switch cfg.Backend {
	case "", BackendEnv:
		return &envStore{logger: logger}, nil
	case BackendAWS:
		return newAWSStore(cfg, logger)
	case BackendVault:
		return newVaultStore(cfg, logger)
	case BackendEncrypted:
		return newEncryptedStore(cfg, logger)
	case BackendJSON:
		level.Warn(logger).Log("msg", "plain JSON credential backend is not recommended for production")
		return &fileStore{path: cfg.JSONFile, logger: logger}, nil
	default:
		return nil, errors.Errorf("unsupported credential backend: %s", cfg.Backend)
	}
}

// secretPath is the slash-separated lookup key used by the secret-manager
// backends, e.g. vm-credentials/CIS/RHEL/9/compliance/server.
func secretPath(spec benchvalid.CredentialSpec) string {
	return fmt.Sprintf("vm-credentials/%s/%s/%s/%s/%s",
		spec.Benchmark, spec.OS, spec.Version, spec.Type, spec.Service)
}

// envKeyPrefix is the environment-variable prefix for a spec, e.g.
// VM_CIS_RHEL_9_COMPLIANCE_SERVER.
func envKeyPrefix(spec benchvalid.CredentialSpec) string {
	return strings.ToUpper(fmt.Sprintf("VM_%s_%s_%s_%s_%s",
		spec.Benchmark, spec.OS, spec.Version, spec.Type, spec.Service))
}
