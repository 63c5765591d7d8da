package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// PostgresNode is one postgres server. Read and write may point at the same host.
type PostgresNode struct {
	Host     string `envconfig:"HOST"     default:"localhost"`
	Port     string `envconfig:"PORT"     default:"5432"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
}

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"       default:"development"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
		Host     string `envconfig:"HOST"`
		Port     string `envconfig:"PORT"      default:"8080"`
		Shutdown struct {
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"   default:"5"`
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS" default:"5"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME" default:"courtside"`
		Timezone string `envconfig:"TIMEZONE" default:"Asia/Ho_Chi_Minh"`
		APIKey   string `envconfig:"API_KEY"`
		CORS     struct {
			Enable           bool     `envconfig:"ENABLE"`
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS" default:"300"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"   default:"120"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS" default:"60"`
		} `envconfig:"RATE_LIMITER"`
	} `envconfig:"APP"`

	JWT struct {
		AccessSecret     string `envconfig:"ACCESS_SECRET"`
		RefreshSecret    string `envconfig:"REFRESH_SECRET"`
		AccessExpireMin  int    `envconfig:"ACCESS_EXPIRE_MIN"  default:"15"`
		RefreshExpireMin int    `envconfig:"REFRESH_EXPIRE_MIN" default:"10080"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			Prefix         string       `envconfig:"PREFIX"`
			MaxRetry       int          `envconfig:"MAX_RETRY"       default:"5"`
			RetryWaitTime  int          `envconfig:"RETRY_WAIT_TIME" default:"2"`
			MigrationTable string       `envconfig:"MIGRATION_TABLE"`
			AutoMigrate    bool         `envconfig:"AUTO_MIGRATE"`
			Read           PostgresNode `envconfig:"READ"`
			Write          PostgresNode `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Cache struct {
		// TTL is in seconds.
		TTL   int `envconfig:"TTL" default:"300"`
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST" default:"localhost"`
				Port     string `envconfig:"PORT" default:"6379"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
	} `envconfig:"CACHE"`

	Booking struct {
		// Decimal places kept when rounding a booking total.
		CurrencyPrecision int    `envconfig:"CURRENCY_PRECISION" default:"0"`
		MobilePattern     string `envconfig:"MOBILE_PATTERN"     default:"^(0|\\+84)(3|5|7|8|9)[0-9]{8}$"`
		VerifyMailbox     bool   `envconfig:"VERIFY_MAILBOX"     default:"true"`
		AvailabilityTTL   int    `envconfig:"AVAILABILITY_TTL"   default:"60"`
		Notification      struct {
			Driver        string `envconfig:"DRIVER"         default:"redis"`
			ChannelPrefix string `envconfig:"CHANNEL_PREFIX" default:"courtside.facility"`
		} `envconfig:"NOTIFICATION"`
	} `envconfig:"BOOKING"`

	Broker struct {
		RabbitMQ struct {
			URL      string `envconfig:"URL"`
			Exchange string `envconfig:"EXCHANGE" default:"courtside.bookings"`
		} `envconfig:"RABBITMQ"`
	} `envconfig:"BROKER"`

	Metrics struct {
		Namespace string `envconfig:"NAMESPACE" default:"courtside"`
	} `envconfig:"METRICS"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
	} `envconfig:"EXTERNAL"`
}

var (
	conf    Config
	once    sync.Once
	loadErr error
)

// Load reads an optional .env file, then the process environment. Variables already set win over .env.
func Load(envFile string) (*Config, error) {
	err := godotenv.Load(envFile)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Str("file", envFile).Msg("No env file, using process environment")
	case err != nil:
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	var cfg Config
	if err = envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	return &cfg, nil
}

// Get loads the configuration on first use and exits the process when it is invalid.
func Get() *Config {
	once.Do(func() {
		var cfg *Config

		cfg, loadErr = Load(".env")
		if loadErr == nil {
			conf = *cfg
		}
	})

	if loadErr != nil {
		log.Fatal().Err(loadErr).Msg("Failed to initialize configuration")
	}

	return &conf
}
