package postgres

//nolint:revive
import (
	"courtside/config"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	driverName = "postgres"

	maxIdleConnections = 10
	maxOpenConnections = 10
	connMaxLifetime    = 30 * time.Minute
)

// Connection splits traffic between the primary and a read replica. Both may point at the same server.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// Endpoint describes one side of the connection.
type Endpoint struct {
	Name     string
	Host     string
	Port     string
	Username string
	Password string
	Database string
	SSLMode  string
}

func New(config *config.Config) *Connection {
	retry := config.DB.Postgres.MaxRetry
	wait := time.Duration(config.DB.Postgres.RetryWaitTime) * time.Second

	return &Connection{
		Read:  connect(ReadEndpoint(config), retry, wait),
		Write: connect(WriteEndpoint(config), retry, wait),
	}
}

func (c *Connection) Close() error {
	if err := c.Read.Close(); err != nil {
		return fmt.Errorf("closing read connection: %w", err)
	}

	if err := c.Write.Close(); err != nil {
		return fmt.Errorf("closing write connection: %w", err)
	}

	return nil
}

func WriteEndpoint(config *config.Config) Endpoint {
	write := config.DB.Postgres.Write

	return Endpoint{
		Name:     "write",
		Host:     write.Host,
		Port:     write.Port,
		Username: write.Username,
		Password: write.Password,
		Database: databaseName(config, write.Name),
		SSLMode:  write.SSLMode,
	}
}

func ReadEndpoint(config *config.Config) Endpoint {
	read := config.DB.Postgres.Read

	return Endpoint{
		Name:     "read",
		Host:     read.Host,
		Port:     read.Port,
		Username: read.Username,
		Password: read.Password,
		Database: databaseName(config, read.Name),
		SSLMode:  read.SSLMode,
	}
}

// DSN renders the endpoint as a postgres URL. Extra query values are appended as-is.
func (e Endpoint) DSN(extra url.Values) string {
	query := url.Values{}
	if e.SSLMode != "" {
		query.Set("sslmode", e.SSLMode)
	}

	for key, values := range extra {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	dsn := url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(e.Username, e.Password),
		Host:     net.JoinHostPort(e.Host, e.Port),
		Path:     "/" + e.Database,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func databaseName(config *config.Config, baseName string) string {
	return config.DB.Postgres.Prefix + baseName
}

func connect(endpoint Endpoint, maxRetry int, wait time.Duration) *sqlx.DB {
	logger := log.With().
		Str("name", endpoint.Name).
		Str("host", endpoint.Host).
		Str("port", endpoint.Port).
		Str("dbName", endpoint.Database).
		Logger()

	attempts := max(maxRetry, 1)

	for attempt := range attempts {
		db, err := sqlx.Connect(driverName, endpoint.DSN(nil))
		if err == nil {
			db.SetMaxIdleConns(maxIdleConnections)
			db.SetMaxOpenConns(maxOpenConnections)
			db.SetConnMaxLifetime(connMaxLifetime)

			logger.Info().Msg("Connected to database")

			return db
		}

		logger.Error().Err(err).Int("attempt", attempt+1).Msg("Failed connecting to database, retrying")

		time.Sleep(wait)
	}

	logger.Fatal().Int("attempts", attempts).Msg("Giving up connecting to database")

	return nil
}
