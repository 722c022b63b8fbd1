package creds

import (
	"context"
	"os"
	"strings"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/benchvalid/benchvalid/server/benchvalid"
)

// fallbackUsername is used when the generic fallback path resolves no
// username at all.
const fallbackUsername = "root"

// envStore resolves credentials from environment variables of the form
// VM_<BENCHMARK>_<OS>_<VERSION>_<TYPE>_<SERVICE>_{IP,USERNAME,PASSWORD}.
// When any piece is missing it falls back to the generic
// VM_<BENCHMARK>_<OS>_* variables; the fallback is logged so a
// misconfigured specific prefix is visible.
type envStore struct {
	logger kitlog.Logger
}

func (s *envStore) VMCredentials(_ context.Context, spec benchvalid.CredentialSpec) (benchvalid.Credential, error) {
	prefix := envKeyPrefix(spec)

	host := os.Getenv(prefix + "_IP")
	username := os.Getenv(prefix + "_USERNAME")
	password := os.Getenv(prefix + "_PASSWORD")

	if host == "" || username == "" || password == "" {
		generic := strings.ToUpper("VM_" + spec.Benchmark + "_" + spec.OS)
		level.Warn(s.logger).Log(
			"msg", "specific credentials not set, falling back to generic variables",
			"prefix", prefix,
			"generic", generic,
		)
		if host == "" {
			host = os.Getenv(generic + "_IP")
		}
		if username == "" {
			username = os.Getenv(generic + "_USERNAME")
			if username == "" {
				level.Warn(s.logger).Log(
					"msg", "no username variable set, using default",
					"username", fallbackUsername,
				)
				username = fallbackUsername
			}
		}
		if password == "" {
			password = os.Getenv(generic + "_PASSWORD")
		}
	}

	if host == "" || password == "" {
		return benchvalid.Credential{}, &benchvalid.CredentialsNotFoundError{Key: prefix}
	}

	return benchvalid.Credential{Host: host, Username: username, Password: password}, nil
}
