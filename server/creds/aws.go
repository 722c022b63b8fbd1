package creds

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/credentials/stscreds"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/benchvalid/benchvalid/server/benchvalid"
	"github.com/benchvalid/benchvalid/server/config"
)

// awsStore resolves credentials from AWS Secrets Manager. Secrets are named
// vm-credentials/<benchmark>/<os>/<version>/<type>/<service> and hold a
// JSON body with ip, username, and password fields.
type awsStore struct {
	client secretsmanageriface.SecretsManagerAPI
	logger kitlog.Logger
}

func newAWSStore(cfg config.CredsConfig, logger kitlog.Logger) (*awsStore, error) {
	conf := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
	}

	// Only provide static credentials if we have them
	// otherwise use the default credentials provider chain
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		conf.Credentials = credentials.NewStaticCredentials(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")
	}

	sess, err := session.NewSession(conf)
	if err != nil {
		return nil, errors.Wrap(err, "create Secrets Manager client")
	}

	if cfg.AWSStsAssumeRoleArn != "" {
		conf.Credentials = stscreds.NewCredentials(sess, cfg.AWSStsAssumeRoleArn)
		sess, err = session.NewSession(conf)
		if err != nil {
			return nil, errors.Wrap(err, "create Secrets Manager client")
		}
	}

	return &awsStore{
		client: secretsmanager.New(sess),
		logger: logger,
	}, nil
}

func (s *awsStore) VMCredentials(ctx context.Context, spec benchvalid.CredentialSpec) (benchvalid.Credential, error) {
	name := secretPath(spec)

	out, err := s.client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == secretsmanager.ErrCodeResourceNotFoundException {
			return benchvalid.Credential{}, &benchvalid.CredentialsNotFoundError{Key: name}
		}
		return benchvalid.Credential{}, errors.Wrapf(err, "get secret %s", name)
	}
	if out.SecretString == nil {
		return benchvalid.Credential{}, errors.Errorf("secret %s has no string value", name)
	}

	var secret struct {
		IP       string `json:"ip"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal([]byte(*out.SecretString), &secret); err != nil {
		return benchvalid.Credential{}, errors.Wrapf(err, "decode secret %s", name)
	}

	level.Debug(s.logger).Log("msg", "resolved credentials from Secrets Manager", "secret", name)
	return benchvalid.Credential{
		Host:     secret.IP,
		Username: secret.Username,
		Password: secret.Password,
	}, nil
}
