package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"peopleforge"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type OracleOptions struct {
	Enabled bool          `env:"ORACLE_ENABLED" envDefault:"true"`
	BaseURL string        `env:"ORACLE_BASE_URL"`
	APIKey  string        `env:"OPENAI_KEY"`
	Model   string        `env:"ORACLE_MODEL" envDefault:"gpt-4o-mini"`
	Timeout time.Duration `env:"ORACLE_TIMEOUT" envDefault:"10s"`
}

type ImportOptions struct {
	MaxUploadBytes      int64         `env:"IMPORT_MAX_UPLOAD_BYTES" envDefault:"10485760"`
	MaxRows             int           `env:"IMPORT_MAX_ROWS" envDefault:"5000"`
	SessionTTL          time.Duration `env:"IMPORT_SESSION_TTL" envDefault:"24h"`
	AutoAcceptThreshold float64       `env:"IMPORT_AUTO_ACCEPT_THRESHOLD" envDefault:"0.9"`
	CommitWorkers       int           `env:"IMPORT_COMMIT_WORKERS" envDefault:"4"`
	PastGraceDays       int           `env:"IMPORT_PAST_GRACE_DAYS" envDefault:"30"`
	PurgeInterval       time.Duration `env:"IMPORT_PURGE_INTERVAL" envDefault:"1h"`
}

func (o *ImportOptions) Validate() error {
	if o.MaxUploadBytes <= 0 {
		return fmt.Errorf("import MaxUploadBytes must be positive, got %d", o.MaxUploadBytes)
	}
	if o.MaxRows <= 0 {
		return fmt.Errorf("import MaxRows must be positive, got %d", o.MaxRows)
	}
	if o.AutoAcceptThreshold < 0 || o.AutoAcceptThreshold > 1 {
		return fmt.Errorf("import AutoAcceptThreshold must be within [0,1], got %f", o.AutoAcceptThreshold)
	}
	if o.CommitWorkers <= 0 {
		return fmt.Errorf("import CommitWorkers must be positive, got %d", o.CommitWorkers)
	}
	return nil
}

type RateLimitOptions struct {
	Enabled          bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	AnalyzePerMinute int    `env:"RATE_LIMIT_ANALYZE_PER_MINUTE" envDefault:"10"`
	Storage          string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	RedisURL         string `env:"RATE_LIMIT_REDIS_URL"`
}

func (r *RateLimitOptions) Validate() error {
	if r.AnalyzePerMinute < 0 {
		return fmt.Errorf("rate limit AnalyzePerMinute must be non-negative, got %d", r.AnalyzePerMinute)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Storage == "redis" && r.RedisURL == "" {
		return fmt.Errorf("rate limit RedisURL is required when Storage is 'redis'")
	}
	return nil
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type Configuration struct {
	Database   DatabaseOptions
	Oracle     OracleOptions
	Import     ImportOptions
	RateLimit  RateLimitOptions
	Prometheus PrometheusOptions

	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	PageSize         int    `env:"PAGE_SIZE" envDefault:"25"`
	MaxPageSize      int    `env:"MAX_PAGE_SIZE" envDefault:"100"`
	RequestIDHeader  string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	RealIPHeader     string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`
	ActorHeader      string `env:"ACTOR_HEADER" envDefault:"X-Actor-Email"`

	logger *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	if err := c.Import.Validate(); err != nil {
		return fmt.Errorf("import configuration error: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(c.LogrusLogLevel())
	if c.GoAppEnvironment == Production {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}

	return nil
}
