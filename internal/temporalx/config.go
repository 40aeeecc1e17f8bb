package temporalx

import "time"

// Config is filled from the environment by the app config loader.
type Config struct {
	Address   string `env:"TEMPORAL_ADDRESS"`
	Namespace string `env:"TEMPORAL_NAMESPACE" envDefault:"installdesk"`
	TaskQueue string `env:"TEMPORAL_TASK_QUEUE" envDefault:"installdesk"`

	ClientCertPath string `env:"TEMPORAL_CLIENT_CERT_PATH"`
	ClientKeyPath  string `env:"TEMPORAL_CLIENT_KEY_PATH"`
	ClientCAPath   string `env:"TEMPORAL_CLIENT_CA_PATH"`

	AutoRegisterNamespace bool `env:"TEMPORAL_AUTO_REGISTER_NAMESPACE" envDefault:"false"`
	NamespaceRetentionDays int `env:"TEMPORAL_NAMESPACE_RETENTION_DAYS" envDefault:"7"`

	DialTimeout    time.Duration `env:"TEMPORAL_DIAL_TIMEOUT" envDefault:"5s"`
	DialMaxWait    time.Duration `env:"TEMPORAL_DIAL_MAX_WAIT" envDefault:"60s"`
	DialBackoff    time.Duration `env:"TEMPORAL_DIAL_BACKOFF" envDefault:"250ms"`
	DialBackoffMax time.Duration `env:"TEMPORAL_DIAL_BACKOFF_MAX" envDefault:"5s"`

	WorkerConcurrency int `env:"WORKER_CONCURRENCY" envDefault:"4"`
}

func (c Config) Enabled() bool { return c.Address != "" }

func (c Config) hasTLS() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}
