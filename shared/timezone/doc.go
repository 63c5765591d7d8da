// Package timezone pins every calendar computation to APP_TIMEZONE.
//
// Check-in dates, the "past date" rule and slot boundaries are wall-clock values at the
// facility, so they are parsed and formatted here rather than with time.Local:
//
//	date, err := timezone.Parse(time.DateOnly, "2025-01-06")
//	if timezone.StartOfDay(timezone.Now()).After(date) { ... }
//
// The zone is loaded lazily from configuration on first use and falls back to UTC.
package timezone
