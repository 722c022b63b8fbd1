// Package config loads the benchvalid configuration from defaults, a yaml
// config file, environment variables, and command line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "BENCHVALID"

// ScannerConfig defines configs related to the vulnerability-management
// scanner console the harness talks to.
type ScannerConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	SSLVerify bool `yaml:"ssl_verify"`
}

// TimeoutsConfig defines the operation timeouts.
type TimeoutsConfig struct {
	Default time.Duration
	Scan    time.Duration
	Network time.Duration
	Login   time.Duration
}

// PathsConfig defines the directories and files the harness reads and
// writes.
type PathsConfig struct {
	PolicyDir          string `yaml:"policy_dir"`
	TemplateDir        string `yaml:"template_dir"`
	ValidationRulesDir string `yaml:"validation_rules_dir"`
	VMConfigFile       string `yaml:"vm_config_file"`
	PayloadsDir        string `yaml:"payloads_dir"`
	ResultsDir         string `yaml:"results_dir"`
	ReportsDir         string `yaml:"reports_dir"`
	LogsDir            string `yaml:"logs_dir"`
}

// TagsConfig defines the default test tag filters as comma-separated lists.
type TagsConfig struct {
	Include string
	Exclude string
}

// RetryConfig defines retry behavior for scanner operations.
type RetryConfig struct {
	MaxRetries int `yaml:"max_retries"`
	Interval   time.Duration
}

// WorkersConfig defines parallel execution settings.
type WorkersConfig struct {
	Parallel int
}

// CleanupConfig defines post-run resource cleanup behavior.
type CleanupConfig struct {
	Skip                bool
	AutoDeleteResources bool `yaml:"auto_delete_resources"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Debug bool
	JSON  bool
}

// CredsConfig defines the credential backend selection and its per-backend
// settings.
type CredsConfig struct {
	Backend             string
	AWSRegion           string `yaml:"aws_region"`
	AWSAccessKeyID      string `yaml:"aws_access_key_id"`
	AWSSecretAccessKey  string `yaml:"aws_secret_access_key"`
	AWSStsAssumeRoleArn string `yaml:"aws_sts_assume_role_arn"`
	VaultAddress        string `yaml:"vault_address"`
	VaultToken          string `yaml:"vault_token"`
	EncryptionKey       string `yaml:"encryption_key"`
	JSONFile            string `yaml:"json_file"`
	EncryptedFile       string `yaml:"encrypted_file"`
}

// EnvironmentConfig names the deployment environment whose defaults apply.
type EnvironmentConfig struct {
	Name   string
	Region string
}

// BenchvalidConfig stores the application configuration. Each subcategory
// is broken up into its own struct, defined above. When editing any of
// these structs, Manager.addConfigs and Manager.LoadConfig should be
// updated to set and retrieve the configurations as appropriate.
type BenchvalidConfig struct {
	Environment EnvironmentConfig
	Scanner     ScannerConfig
	Timeouts    TimeoutsConfig
	Paths       PathsConfig
	Tags        TagsConfig
	Retry       RetryConfig
	Workers     WorkersConfig
	Cleanup     CleanupConfig
	Logging     LoggingConfig
	Creds       CredsConfig
}

// addConfigs adds the configuration keys and default values that will be
// filled into the BenchvalidConfig struct. Defaults match the local
// development environment; applyEnvironmentDefaults overrides them for the
// other environments.
func (man Manager) addConfigs() {
	// Environment
	man.addConfigString("environment.name", "local",
		"Deployment environment (local, staging, production-us, production-eu, performance)")
	man.addConfigString("environment.region", "",
		"Cloud region associated with the environment")

	// Scanner
	man.addConfigString("scanner.host", "127.0.0.1", "Scanner console address")
	man.addConfigInt("scanner.port", 3780, "Scanner console port")
	man.addConfigString("scanner.username", "nxadmin", "Scanner console username")
	man.addConfigString("scanner.password", "nxadmin",
		"Scanner console password (prefer env variable for security)")
	man.addConfigBool("scanner.ssl_verify", false, "Verify the scanner's TLS certificate")

	// Timeouts
	man.addConfigDuration("timeouts.default", 30*time.Second, "Default operation timeout")
	man.addConfigDuration("timeouts.scan", 1*time.Hour, "Scan completion timeout")
	man.addConfigDuration("timeouts.network", 60*time.Second, "Network operation timeout")
	man.addConfigDuration("timeouts.login", 120*time.Second, "Scanner login timeout")

	// Paths
	man.addConfigString("paths.policy_dir", "data/policies", "Benchmark policy directory")
	man.addConfigString("paths.template_dir", "data/templates", "Report template directory")
	man.addConfigString("paths.validation_rules_dir", "testdata/validation_rules",
		"Expected-result rule table directory")
	man.addConfigString("paths.vm_config_file", "testdata/vm_config.json",
		"VM configuration file")
	man.addConfigString("paths.payloads_dir", "payloads", "Request payload directory")
	man.addConfigString("paths.results_dir", "results/local", "Run result directory")
	man.addConfigString("paths.reports_dir", "results/local/reports", "Generated report directory")
	man.addConfigString("paths.logs_dir", "results/local/logs", "Run log directory")

	// Tags
	man.addConfigString("tags.include", "smoke,regression", "Default include tags (comma separated)")
	man.addConfigString("tags.exclude", "manual,slow", "Default exclude tags (comma separated)")

	// Retry
	man.addConfigInt("retry.max_retries", 3, "Maximum retries for scanner operations")
	man.addConfigDuration("retry.interval", 5*time.Second, "Interval between retries")

	// Workers
	man.addConfigInt("workers.parallel", 2, "Parallel worker count")

	// Cleanup
	man.addConfigBool("cleanup.skip", true, "Skip post-run resource cleanup")
	man.addConfigBool("cleanup.auto_delete_resources", false, "Delete scanner resources after the run")

	// Logging
	man.addConfigBool("logging.debug", false, "Enable debug logging")
	man.addConfigBool("logging.json", false, "Log in JSON format")

	// Creds
	man.addConfigString("creds.backend", "env",
		"Credential backend (env, aws, vault, encrypted, json)")
	man.addConfigString("creds.aws_region", "us-east-1", "AWS region for Secrets Manager")
	man.addConfigString("creds.aws_access_key_id", "",
		"AWS access key ID (optional; defaults to the provider chain)")
	man.addConfigString("creds.aws_secret_access_key", "", "AWS secret access key (optional)")
	man.addConfigString("creds.aws_sts_assume_role_arn", "",
		"ARN of an IAM role to assume for Secrets Manager")
	man.addConfigString("creds.vault_address", "http://localhost:8200", "Vault server address")
	man.addConfigString("creds.vault_token", "", "Vault token")
	man.addConfigString("creds.encryption_key", "", "Fernet key for the encrypted backend")
	man.addConfigString("creds.json_file", "testdata/vm_config.json", "Plain JSON credential file")
	man.addConfigString("creds.encrypted_file", "testdata/vm_config.encrypted", "Encrypted credential file")
}

// LoadConfig will load the config variables into a fully initialized
// BenchvalidConfig struct.
func (man Manager) LoadConfig() BenchvalidConfig {
	man.loadConfigFile()

	cfg := BenchvalidConfig{
		Environment: EnvironmentConfig{
			Name:   man.getConfigString("environment.name"),
			Region: man.getConfigString("environment.region"),
		},
		Scanner: ScannerConfig{
			Host:      man.getConfigString("scanner.host"),
			Port:      man.getConfigInt("scanner.port"),
			Username:  man.getConfigString("scanner.username"),
			Password:  man.getConfigString("scanner.password"),
			SSLVerify: man.getConfigBool("scanner.ssl_verify"),
		},
		Timeouts: TimeoutsConfig{
			Default: man.getConfigDuration("timeouts.default"),
			Scan:    man.getConfigDuration("timeouts.scan"),
			Network: man.getConfigDuration("timeouts.network"),
			Login:   man.getConfigDuration("timeouts.login"),
		},
		Paths: PathsConfig{
			PolicyDir:          man.getConfigString("paths.policy_dir"),
			TemplateDir:        man.getConfigString("paths.template_dir"),
			ValidationRulesDir: man.getConfigString("paths.validation_rules_dir"),
			VMConfigFile:       man.getConfigString("paths.vm_config_file"),
			PayloadsDir:        man.getConfigString("paths.payloads_dir"),
			ResultsDir:         man.getConfigString("paths.results_dir"),
			ReportsDir:         man.getConfigString("paths.reports_dir"),
			LogsDir:            man.getConfigString("paths.logs_dir"),
		},
		Tags: TagsConfig{
			Include: man.getConfigString("tags.include"),
			Exclude: man.getConfigString("tags.exclude"),
		},
		Retry: RetryConfig{
			MaxRetries: man.getConfigInt("retry.max_retries"),
			Interval:   man.getConfigDuration("retry.interval"),
		},
		Workers: WorkersConfig{
			Parallel: man.getConfigInt("workers.parallel"),
		},
		Cleanup: CleanupConfig{
			Skip:                man.getConfigBool("cleanup.skip"),
			AutoDeleteResources: man.getConfigBool("cleanup.auto_delete_resources"),
		},
		Logging: LoggingConfig{
			Debug: man.getConfigBool("logging.debug"),
			JSON:  man.getConfigBool("logging.json"),
		},
		Creds: CredsConfig{
			Backend:             man.getConfigString("creds.backend"),
			AWSRegion:           man.getConfigString("creds.aws_region"),
			AWSAccessKeyID:      man.getConfigString("creds.aws_access_key_id"),
			AWSSecretAccessKey:  man.getConfigString("creds.aws_secret_access_key"),
			AWSStsAssumeRoleArn: man.getConfigString("creds.aws_sts_assume_role_arn"),
			VaultAddress:        man.getConfigString("creds.vault_address"),
			VaultToken:          man.getConfigString("creds.vault_token"),
			EncryptionKey:       man.getConfigString("creds.encryption_key"),
			JSONFile:            man.getConfigString("creds.json_file"),
			EncryptedFile:       man.getConfigString("creds.encrypted_file"),
		},
	}

	man.applyEnvironmentDefaults(&cfg)
	return cfg
}

// IsSet determines whether a given config key has been explicitly set by
// any of the configuration sources. If false, the default value is being
// used.
func (man Manager) IsSet(key string) bool {
	return man.viper.IsSet(key)
}

// envNameFromConfigKey converts a config key into the corresponding
// environment variable name
func envNameFromConfigKey(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.Replace(key, ".", "_", -1))
}

// flagNameFromConfigKey converts a config key into the corresponding flag name
func flagNameFromConfigKey(key string) string {
	return strings.Replace(key, ".", "_", -1)
}

// Manager manages the addition and retrieval of config values for
// benchvalid. Its public API is LoadConfig, which returns the populated
// BenchvalidConfig struct, and IsSet.
type Manager struct {
	viper    *viper.Viper
	command  *cobra.Command
	defaults map[string]interface{}
}

// NewManager initializes a Manager wrapping the provided cobra command. All
// config flags will be attached to that command (and inherited by the
// subcommands). Typically this should be called just once, with the root
// command.
func NewManager(command *cobra.Command) Manager {
	man := Manager{
		viper:    viper.New(),
		command:  command,
		defaults: map[string]interface{}{},
	}
	man.addConfigs()
	return man
}

// addDefault will check for duplication, then add a default value to the
// defaults map
func (man Manager) addDefault(key string, defVal interface{}) {
	if _, exists := man.defaults[key]; exists {
		panic("Trying to add duplicate config for key " + key)
	}

	man.defaults[key] = defVal
}

func getFlagUsage(key string, usage string) string {
	return fmt.Sprintf("Env: %s\n\t\t%s", envNameFromConfigKey(key), usage)
}

// getInterfaceVal is a helper function used by the getConfig* functions to
// retrieve the config value as interface{}, which will then be cast to the
// appropriate type by the getConfig* function.
func (man Manager) getInterfaceVal(key string) interface{} {
	interfaceVal := man.viper.Get(key)
	if interfaceVal == nil {
		var ok bool
		interfaceVal, ok = man.defaults[key]
		if !ok {
			panic("Tried to look up default value for nonexistent config option: " + key)
		}
	}
	return interfaceVal
}

// addConfigString adds a string config to the config options
func (man Manager) addConfigString(key, defVal, usage string) {
	man.command.PersistentFlags().String(flagNameFromConfigKey(key), defVal, getFlagUsage(key, usage))
	man.viper.BindPFlag(key, man.command.PersistentFlags().Lookup(flagNameFromConfigKey(key)))
	man.viper.BindEnv(key, envNameFromConfigKey(key))

	// Add default
	man.addDefault(key, defVal)
}

// getConfigString retrieves a string from the loaded config
func (man Manager) getConfigString(key string) string {
	interfaceVal := man.getInterfaceVal(key)
	stringVal, err := cast.ToStringE(interfaceVal)
	if err != nil {
		panic("Unable to cast to string for key " + key + ": " + err.Error())
	}

	return stringVal
}

// addConfigInt adds a int config to the config options
func (man Manager) addConfigInt(key string, defVal int, usage string) {
	man.command.PersistentFlags().Int(flagNameFromConfigKey(key), defVal, getFlagUsage(key, usage))
	man.viper.BindPFlag(key, man.command.PersistentFlags().Lookup(flagNameFromConfigKey(key)))
	man.viper.BindEnv(key, envNameFromConfigKey(key))

	// Add default
	man.addDefault(key, defVal)
}

// getConfigInt retrieves a int from the loaded config
func (man Manager) getConfigInt(key string) int {
	interfaceVal := man.getInterfaceVal(key)
	intVal, err := cast.ToIntE(interfaceVal)
	if err != nil {
		panic("Unable to cast to int for key " + key + ": " + err.Error())
	}

	return intVal
}

// addConfigBool adds a bool config to the config options
func (man Manager) addConfigBool(key string, defVal bool, usage string) {
	man.command.PersistentFlags().Bool(flagNameFromConfigKey(key), defVal, getFlagUsage(key, usage))
	man.viper.BindPFlag(key, man.command.PersistentFlags().Lookup(flagNameFromConfigKey(key)))
	man.viper.BindEnv(key, envNameFromConfigKey(key))

	// Add default
	man.addDefault(key, defVal)
}

// getConfigBool retrieves a bool from the loaded config
func (man Manager) getConfigBool(key string) bool {
	interfaceVal := man.getInterfaceVal(key)
	boolVal, err := cast.ToBoolE(interfaceVal)
	if err != nil {
		panic("Unable to cast to bool for key " + key + ": " + err.Error())
	}

	return boolVal
}

// addConfigDuration adds a duration config to the config options
func (man Manager) addConfigDuration(key string, defVal time.Duration, usage string) {
	man.command.PersistentFlags().Duration(flagNameFromConfigKey(key), defVal, getFlagUsage(key, usage))
	man.viper.BindPFlag(key, man.command.PersistentFlags().Lookup(flagNameFromConfigKey(key)))
	man.viper.BindEnv(key, envNameFromConfigKey(key))

	// Add default
	man.addDefault(key, defVal)
}

// getConfigDuration retrieves a duration from the loaded config
func (man Manager) getConfigDuration(key string) time.Duration {
	interfaceVal := man.getInterfaceVal(key)
	durationVal, err := cast.ToDurationE(interfaceVal)
	if err != nil {
		panic("Unable to cast to duration for key " + key + ": " + err.Error())
	}

	return durationVal
}

// loadConfigFile handles the loading of the config file.
func (man Manager) loadConfigFile() {
	man.viper.SetConfigType("yaml")

	configFile := man.command.PersistentFlags().Lookup("config").Value.String()

	if configFile == "" {
		// No config file set, only use configs from env
		// vars/flags/defaults
		return
	}

	man.viper.SetConfigFile(configFile)
	err := man.viper.ReadInConfig()
	if err != nil {
		fmt.Println("Error loading config file:", err)
		os.Exit(1)
	}

	fmt.Println("Using config file: ", man.viper.ConfigFileUsed())
}

// TestConfig returns a barebones configuration suitable for use in tests.
// Individual tests may want to override some of the values provided.
func TestConfig() BenchvalidConfig {
	return BenchvalidConfig{
		Environment: EnvironmentConfig{Name: "local"},
		Scanner: ScannerConfig{
			Host:     "127.0.0.1",
			Port:     3780,
			Username: "nxadmin",
			Password: "nxadmin",
		},
		Timeouts: TimeoutsConfig{
			Default: 30 * time.Second,
			Scan:    time.Hour,
			Network: 60 * time.Second,
			Login:   120 * time.Second,
		},
		Retry: RetryConfig{
			MaxRetries: 1,
			Interval:   time.Millisecond, // keep tests fast
		},
		Workers: WorkersConfig{Parallel: 1},
		Logging: LoggingConfig{Debug: true},
		Creds:   CredsConfig{Backend: "env"},
	}
}
