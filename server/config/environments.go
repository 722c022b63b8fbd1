package config

import "time"

// environmentDefaults is one environment's constant table. The values are
// applied by applyEnvironmentDefaults for every key the caller did not set
// explicitly through a flag, env variable, or config file.
type environmentDefaults struct {
	region         string
	debug          bool
	defaultTimeout time.Duration
	scanTimeout    time.Duration
	networkTimeout time.Duration
	loginTimeout   time.Duration
	resultsDir     string
	reportsDir     string
	logsDir        string
	includeTags    string
	excludeTags    string
	skipCleanup    bool
	autoDelete     bool
	maxRetries     int
	retryInterval  time.Duration
	workers        int
}

var environments = map[string]environmentDefaults{
	"local": {
		debug:          true,
		defaultTimeout: 30 * time.Second,
		scanTimeout:    1 * time.Hour,
		networkTimeout: 60 * time.Second,
		loginTimeout:   120 * time.Second,
		resultsDir:     "results/local",
		reportsDir:     "results/local/reports",
		logsDir:        "results/local/logs",
		includeTags:    "smoke,regression",
		excludeTags:    "manual,slow",
		skipCleanup:    true,
		autoDelete:     false,
		maxRetries:     3,
		retryInterval:  5 * time.Second,
		workers:        2,
	},
	"staging": {
		defaultTimeout: 60 * time.Second,
		scanTimeout:    2 * time.Hour,
		networkTimeout: 120 * time.Second,
		loginTimeout:   180 * time.Second,
		resultsDir:     "results/staging",
		reportsDir:     "results/staging/reports",
		logsDir:        "results/staging/logs",
		includeTags:    "smoke,regression",
		excludeTags:    "manual,performance",
		skipCleanup:    false,
		autoDelete:     true,
		maxRetries:     5,
		retryInterval:  10 * time.Second,
		workers:        4,
	},
	"production-us": {
		region:         "us-east-1",
		defaultTimeout: 120 * time.Second,
		scanTimeout:    3 * time.Hour,
		networkTimeout: 180 * time.Second,
		loginTimeout:   300 * time.Second,
		resultsDir:     "results/prod-us",
		reportsDir:     "results/prod-us/reports",
		logsDir:        "results/prod-us/logs",
		includeTags:    "smoke,critical,us-region",
		excludeTags:    "manual,debug,performance,eu-only",
		skipCleanup:    false,
		autoDelete:     true,
		maxRetries:     3,
		retryInterval:  15 * time.Second,
		workers:        8,
	},
	"production-eu": {
		region:         "eu-west-1",
		defaultTimeout: 120 * time.Second,
		scanTimeout:    3 * time.Hour,
		networkTimeout: 180 * time.Second,
		loginTimeout:   300 * time.Second,
		resultsDir:     "results/prod-eu",
		reportsDir:     "results/prod-eu/reports",
		logsDir:        "results/prod-eu/logs",
		includeTags:    "smoke,critical,eu-region",
		excludeTags:    "manual,debug,performance,us-only",
		skipCleanup:    false,
		autoDelete:     true,
		maxRetries:     3,
		retryInterval:  15 * time.Second,
		workers:        8,
	},
	"performance": {
		defaultTimeout: 300 * time.Second,
		scanTimeout:    6 * time.Hour,
		networkTimeout: 300 * time.Second,
		loginTimeout:   600 * time.Second,
		resultsDir:     "results/performance",
		reportsDir:     "results/performance/reports",
		logsDir:        "results/performance/logs",
		includeTags:    "performance,load,stress",
		excludeTags:    "manual,smoke,regression",
		skipCleanup:    true,
		autoDelete:     false,
		maxRetries:     1,
		retryInterval:  30 * time.Second,
		workers:        16,
	},
}

// applyEnvironmentDefaults overlays the constant table of the selected
// environment onto cfg. Explicitly set keys always win. Unknown environment
// names keep the base (local) defaults.
func (man Manager) applyEnvironmentDefaults(cfg *BenchvalidConfig) {
	env, ok := environments[cfg.Environment.Name]
	if !ok {
		return
	}

	set := func(key string, apply func()) {
		if !man.IsSet(key) {
			apply()
		}
	}

	set("environment.region", func() { cfg.Environment.Region = env.region })
	set("logging.debug", func() { cfg.Logging.Debug = env.debug })
	set("timeouts.default", func() { cfg.Timeouts.Default = env.defaultTimeout })
	set("timeouts.scan", func() { cfg.Timeouts.Scan = env.scanTimeout })
	set("timeouts.network", func() { cfg.Timeouts.Network = env.networkTimeout })
	set("timeouts.login", func() { cfg.Timeouts.Login = env.loginTimeout })
	set("paths.results_dir", func() { cfg.Paths.ResultsDir = env.resultsDir })
	set("paths.reports_dir", func() { cfg.Paths.ReportsDir = env.reportsDir })
	set("paths.logs_dir", func() { cfg.Paths.LogsDir = env.logsDir })
	set("tags.include", func() { cfg.Tags.Include = env.includeTags })
	set("tags.exclude", func() { cfg.Tags.Exclude = env.excludeTags })
	set("cleanup.skip", func() { cfg.Cleanup.Skip = env.skipCleanup })
	set("cleanup.auto_delete_resources", func() { cfg.Cleanup.AutoDeleteResources = env.autoDelete })
	set("retry.max_retries", func() { cfg.Retry.MaxRetries = env.maxRetries })
	set("retry.interval", func() { cfg.Retry.Interval = env.retryInterval })
	set("workers.parallel", func() { cfg.Workers.Parallel = env.workers })
}
