package helper

//nolint:revive
import (
	"courtside/config"
	"courtside/infras/postgres"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const migrationSource = "file://migrations/postgres"

type Action string

const (
	ActionUp      Action = "up"
	ActionDown    Action = "down"
	ActionStepUp  Action = "step-up"
	ActionDrop    Action = "drop"
	ActionVersion Action = "version"
)

var ErrUnknownAction = errors.New("unknown migration action")

var actions = map[Action]func(*migrate.Migrate) error{
	ActionUp:     func(mig *migrate.Migrate) error { return mig.Up() },
	ActionDown:   func(mig *migrate.Migrate) error { return mig.Steps(-1) },
	ActionStepUp: func(mig *migrate.Migrate) error { return mig.Steps(1) },
	ActionDrop:   func(mig *migrate.Migrate) error { return mig.Down() },
	ActionVersion: func(mig *migrate.Migrate) error {
		version, dirty, err := mig.Version()
		if err != nil {
			return err
		}

		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current schema version")

		return nil
	},
}

// ParseAction maps a CLI argument to a migration action.
func ParseAction(raw string) (Action, error) {
	action := Action(raw)
	if _, ok := actions[action]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}

	return action, nil
}

// MigrationDSN targets the write endpoint and records state in the configured migrations table.
func MigrationDSN(config *config.Config) string {
	var extra url.Values
	if table := config.DB.Postgres.MigrationTable; table != "" {
		extra = url.Values{"x-migrations-table": []string{table}}
	}

	return postgres.WriteEndpoint(config).DSN(extra)
}

func Runner(config *config.Config, action Action) error {
	run, ok := actions[action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	mig, err := migrate.New(migrationSource, MigrationDSN(config))
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	defer mig.Close()

	if err := run(mig); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running %s migration: %w", action, err)
	}

	log.Info().Str("action", string(action)).Msg("Database migration finished")

	return nil
}

func Up(config *config.Config) error {
	return Runner(config, ActionUp)
}

// AutoMigrate applies pending migrations on startup when enabled.
func AutoMigrate(config *config.Config) error {
	if !config.DB.Postgres.AutoMigrate {
		return nil
	}

	return Up(config)
}
