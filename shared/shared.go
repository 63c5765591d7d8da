package shared

import (
	"context"
	"courtside/shared/cache"
	"courtside/shared/constant"
	"courtside/shared/dto"
	"courtside/shared/failure"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

func ConvertStringToBool(value string) *bool {
	if value == "" {
		return nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to bool")

		return nil
	}

	return &boolValue
}

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

func FilterByID(id any, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// BuildCacheKey joins prefix and parts with ":" so related keys share a scannable prefix.
func BuildCacheKey(prefix string, parts ...any) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, prefix)

	for _, part := range parts {
		segments = append(segments, fmt.Sprint(part))
	}

	return strings.Join(segments, ":")
}

// InvalidateCaches removes every key under prefix. Failures are only logged.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	pattern := prefix
	if !strings.HasSuffix(pattern, constant.Asterix) {
		pattern += ":" + constant.Asterix
	}

	if err := redisCache.Clear(ctx, pattern); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}

// ParseID reads a positive numeric path or query id.
func ParseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, failure.BadRequestFromString("id must be a positive integer") //nolint:wrapcheck
	}

	return id, nil
}

// Caller is the authenticated user stored in the request context by the auth middleware.
type Caller struct {
	UserID int64
	Role   string
}

// CallerFromContext returns false for anonymous requests.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	raw, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if raw == "" {
		return Caller{}, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Caller{}, false
	}

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return Caller{UserID: id, Role: role}, true
}

// IsCustomer reports whether the caller only acts on their own bookings.
func (c Caller) IsCustomer() bool {
	return c.Role == constant.RoleUser
}
