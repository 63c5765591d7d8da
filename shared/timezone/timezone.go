package timezone

import (
	"courtside/config"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	appLocation *time.Location
	mu          sync.RWMutex
	loadOnce    sync.Once
)

func load() {
	name := config.Get().App.Timezone
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")
		setLocation(time.UTC)

		return
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().
			Err(err).
			Str("timezone", name).
			Msg("Failed to load timezone, falling back to UTC. Use IANA names like 'Asia/Ho_Chi_Minh' or 'UTC'")
		setLocation(time.UTC)

		return
	}

	setLocation(loc)

	log.Info().Str("timezone", loc.String()).Msg("Application timezone initialized")
}

// SetLocation overrides the configured zone. Tests use it to pin a zone.
func SetLocation(loc *time.Location) {
	loadOnce.Do(func() {})
	setLocation(loc)
}

func setLocation(loc *time.Location) {
	mu.Lock()
	defer mu.Unlock()

	appLocation = loc
}

// GetLocation resolves APP_TIMEZONE on first use.
func GetLocation() *time.Location {
	loadOnce.Do(load)

	mu.RLock()
	defer mu.RUnlock()

	if appLocation == nil {
		return time.UTC
	}

	return appLocation
}

func Now() time.Time {
	return time.Now().In(GetLocation())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

// Parse reads value as wall-clock time in the application zone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, GetLocation())
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// Today is the current calendar date in the application zone as YYYY-MM-DD.
func Today() string {
	return Now().Format(time.DateOnly)
}

// StartOfDay truncates t to local midnight in the application zone.
func StartOfDay(t time.Time) time.Time {
	local := ToAppTime(t)

	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}
