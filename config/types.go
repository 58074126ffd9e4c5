package config

import "time"

// Config is the on-disk zpasync configuration.
type Config struct {
	API         API              `yaml:"api"`
	Credentials *CredentialStore `yaml:"credentials,omitempty"`
	Reconcile   Reconcile        `yaml:"reconcile,omitempty"`
	Telemetry   Telemetry        `yaml:"telemetry,omitempty"`
	Log         Log              `yaml:"log,omitempty"`
}

type API struct {
	BaseURL     string            `yaml:"base-url"`
	CustomerID  string            `yaml:"customer-id"`
	Auth        Auth              `yaml:"auth"`
	Timeout     time.Duration     `yaml:"timeout,omitempty"`
	RateLimit   *RateLimit        `yaml:"rate-limit,omitempty"`
	TLS         *TLS              `yaml:"tls,omitempty"`
	ListFilters map[string]string `yaml:"list-filters,omitempty"`
}

// Auth holds OAuth2 client credentials for the ZPA identity endpoint.
// ClientSecretRef names a key in the credential store and replaces an inline
// ClientSecret.
type Auth struct {
	TokenURL        string `yaml:"token-url"`
	ClientID        string `yaml:"client-id"`
	ClientSecret    string `yaml:"client-secret,omitempty"`
	ClientSecretRef string `yaml:"client-secret-ref,omitempty"`
}

// CredentialStore is an encrypted local file of named secrets. Exactly one of
// Key, KeyFile, Passphrase or PassphraseFile unlocks it.
type CredentialStore struct {
	Path           string `yaml:"path"`
	Key            string `yaml:"key,omitempty"`
	KeyFile        string `yaml:"key-file,omitempty"`
	Passphrase     string `yaml:"passphrase,omitempty"`
	PassphraseFile string `yaml:"passphrase-file,omitempty"`
	KDF            *KDF   `yaml:"kdf,omitempty"`
}

// KDF tunes argon2id for passphrase-unlocked stores.
type KDF struct {
	Time    int `yaml:"time,omitempty"`
	Memory  int `yaml:"memory,omitempty"`
	Threads int `yaml:"threads,omitempty"`
}

type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests-per-second"`
	Burst             int     `yaml:"burst,omitempty"`
}

type TLS struct {
	CACertFile         string `yaml:"ca-cert-file,omitempty"`
	ClientCertFile     string `yaml:"client-cert-file,omitempty"`
	ClientKeyFile      string `yaml:"client-key-file,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecure-skip-verify,omitempty"`
}

type Reconcile struct {
	Parallelism int  `yaml:"parallelism,omitempty"`
	DryRun      bool `yaml:"dry-run,omitempty"`
}

type Telemetry struct {
	PushgatewayURL string `yaml:"pushgateway-url,omitempty"`
	OTLPEndpoint   string `yaml:"otlp-endpoint,omitempty"`
}

type Log struct {
	Format string `yaml:"format,omitempty"`
	Level  string `yaml:"level,omitempty"`
}

const (
	DefaultBaseURL     = "https://config.private.zscaler.com"
	DefaultTokenURL    = "https://config.private.zscaler.com/signin"
	DefaultTimeout     = 30 * time.Second
	DefaultParallelism = 4
	DefaultLogFormat   = "console"
	DefaultLogLevel    = "info"
)
