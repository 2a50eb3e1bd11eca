// Package config loads the worker configuration from YAML with environment
// variable overrides.
package config

import "time"

// Default configuration values.
const (
	defaultServiceName     = "crc-worker"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8080
	defaultPollIntervalSec = 10
	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "crc"
	defaultDBSSLMode       = "disable"
	defaultESMaxRetries    = 3
	defaultESTimeoutSec    = 100
	defaultESIndex         = "case_records"
	defaultESResultSize    = 500
	defaultAWSRegion       = "ap-south-1"
	defaultURLExpiryHours  = 168
	defaultNotifyTimeout   = 30
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"

	defaultQueueTable        = "cnr_request_queue"
	defaultStatusTable       = "cnr_request_status"
	defaultResultTable       = "cnr_request_result"
	defaultReportTable       = "cnr_request_report"
	defaultFIRIndexTable     = "cnr_fir_idx"
	defaultFIRGeocodeTable   = "cnr_fir_pincode"
	defaultCourtGeocodeTable = "court_pincode"
)

// Config holds all configuration for the record-check worker.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Database      DatabaseConfig      `yaml:"database"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	AWS           AWSConfig           `yaml:"aws"`
	Notify        NotifyConfig        `yaml:"notify"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Port         int           `env:"WORKER_PORT"          yaml:"port"`
	Debug        bool          `env:"APP_DEBUG"            yaml:"debug"`
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL" yaml:"poll_interval"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host     string       `env:"POSTGRES_HOST"     yaml:"host"`
	Port     int          `env:"POSTGRES_PORT"     yaml:"port"`
	User     string       `env:"POSTGRES_USER"     yaml:"user"`
	Password string       `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database string       `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode  string       `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	Tables   TablesConfig `yaml:"tables"`
}

// TablesConfig names the deployment's queue and reference tables.
type TablesConfig struct {
	Queue        string `yaml:"queue"`
	Status       string `yaml:"status"`
	Result       string `yaml:"result"`
	Report       string `yaml:"report"`
	FIRIndex     string `yaml:"fir_index"`
	FIRGeocode   string `yaml:"fir_geocode"`
	CourtGeocode string `yaml:"court_geocode"`
}

// ElasticsearchConfig holds search index configuration. CloudID+APIKey is
// the managed deployment path; URL with basic auth is the self-hosted one.
type ElasticsearchConfig struct {
	CloudID       string        `env:"ELASTICSEARCH_CLOUD_ID" yaml:"cloud_id"`
	APIKey        string        `env:"ELASTICSEARCH_API_KEY"  yaml:"api_key"`
	URL           string        `env:"ELASTICSEARCH_URL"      yaml:"url"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	Index         string        `env:"ELASTICSEARCH_INDEX"    yaml:"index"`
	MaxRetries    int           `yaml:"max_retries"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxResultSize int           `yaml:"max_result_size"`
}

// AWSConfig holds S3 document bucket configuration.
type AWSConfig struct {
	Region    string        `env:"AWS_REGION"            yaml:"region"`
	AccessKey string        `env:"AWS_ACCESS_KEY_ID"     yaml:"access_key"`
	SecretKey string        `env:"AWS_SECRET_ACCESS_KEY" yaml:"secret_key"`
	Bucket    string        `env:"AWS_S3_BUCKET"         yaml:"bucket"`
	URLExpiry time.Duration `yaml:"url_expiry"`
}

// NotifyConfig holds the completion notification endpoint.
type NotifyConfig struct {
	URL     string        `env:"NOTIFY_URL"   yaml:"url"`
	Token   string        `env:"NOTIFY_TOKEN" yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
	Output string `yaml:"output"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return load(path)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setElasticsearchDefaults(&cfg.Elasticsearch)
	setAWSDefaults(&cfg.AWS)
	setNotifyDefaults(&cfg.Notify)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.PollInterval == 0 {
		s.PollInterval = defaultPollIntervalSec * time.Second
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	setTableDefaults(&d.Tables)
}

func setTableDefaults(t *TablesConfig) {
	if t.Queue == "" {
		t.Queue = defaultQueueTable
	}
	if t.Status == "" {
		t.Status = defaultStatusTable
	}
	if t.Result == "" {
		t.Result = defaultResultTable
	}
	if t.Report == "" {
		t.Report = defaultReportTable
	}
	if t.FIRIndex == "" {
		t.FIRIndex = defaultFIRIndexTable
	}
	if t.FIRGeocode == "" {
		t.FIRGeocode = defaultFIRGeocodeTable
	}
	if t.CourtGeocode == "" {
		t.CourtGeocode = defaultCourtGeocodeTable
	}
}

func setElasticsearchDefaults(e *ElasticsearchConfig) {
	if e.Index == "" {
		e.Index = defaultESIndex
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = defaultESMaxRetries
	}
	if e.Timeout == 0 {
		e.Timeout = defaultESTimeoutSec * time.Second
	}
	if e.MaxResultSize == 0 {
		e.MaxResultSize = defaultESResultSize
	}
}

func setAWSDefaults(a *AWSConfig) {
	if a.Region == "" {
		a.Region = defaultAWSRegion
	}
	if a.URLExpiry == 0 {
		a.URLExpiry = defaultURLExpiryHours * time.Hour
	}
}

func setNotifyDefaults(n *NotifyConfig) {
	if n.Timeout == 0 {
		n.Timeout = defaultNotifyTimeout * time.Second
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}
