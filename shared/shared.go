package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"reflect"
	"roombooking/shared/cache"
	"roombooking/shared/constant"
	"roombooking/shared/dto"
	"roombooking/shared/failure"
	"roombooking/shared/timezone"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const cacheKeySeparator = ":"

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

func ConvertStringToInt(value string) (int, error) {
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("failed to convert %q to int: %w", value, err)
	}

	return intValue, nil
}

// ConvertStringToInt64 parses identifiers taken from paths and query strings.
func ConvertStringToInt64(value string) (int64, error) {
	intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to convert %q to int64: %w", value, err)
	}

	return intValue, nil
}

// ParseID reads a positive identifier from a path or query value. Anything else is a 400 naming the parameter.
func ParseID(name, value string) (int64, error) {
	id, err := ConvertStringToInt64(value)
	if err != nil || id <= 0 {
		return 0, failure.BadRequestFromString(fmt.Sprintf("invalid %s: %q", name, value)) // nolint:wrapcheck
	}

	return id, nil
}

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// TransformFields converts the non-zero db-tagged fields of a struct into an update set stamped with the actor.
func TransformFields(data any, actor string) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = actor

	return updatedFields
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

// BuildCacheKey joins prefix and parts with ':'.
func BuildCacheKey(prefix string, parts ...any) string {
	var builder strings.Builder

	builder.WriteString(prefix)

	for _, part := range parts {
		builder.WriteString(cacheKeySeparator)
		builder.WriteString(fmt.Sprint(part))
	}

	return builder.String()
}

// BuildCacheKeyWithQuery derives a stable key for a list query: the same params and filter always map to the same
// key regardless of map iteration order.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}

	sort.Strings(names)

	var builder strings.Builder

	fmt.Fprintf(&builder, "%d|%d|%s|%s|%s", params.Page, params.Limit, params.SortBy, params.SortDir, where)

	for _, name := range names {
		fmt.Fprintf(&builder, "|%s=%v", name, args[name])
	}

	sum := sha256.Sum256([]byte(builder.String()))

	return BuildCacheKey(prefix, hex.EncodeToString(sum[:8]))
}

// InvalidateCaches drops every key under prefix. Failures are logged only; a stale entry expires with its TTL.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix+cacheKeySeparator+constant.Asterix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}

// IsPqErrorCode reports whether err wraps a postgres error with the given SQLSTATE.
func IsPqErrorCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}

	return false
}

// GetUserID returns the authenticated user id placed in the context by the auth middleware, or 0.
func GetUserID(ctx context.Context) int64 {
	userID, _ := ctx.Value(constant.ContextKeyUserID).(int64)

	return userID
}

func GetUserRole(ctx context.Context) string {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return role
}

func GetUserEmail(ctx context.Context) string {
	email, _ := ctx.Value(constant.ContextKeyUserEmail).(string)

	return email
}

func IsAdmin(ctx context.Context) bool {
	role := GetUserRole(ctx)

	return role == constant.RoleAdmin || role == constant.RoleSuperAdmin
}

// Actor is the audit identity written to created_by/modified_by columns.
func Actor(ctx context.Context) string {
	if email := GetUserEmail(ctx); email != "" {
		return email
	}

	return constant.ContextGuest
}

// WithUser stores an authenticated identity; used by the auth middleware and by tests.
func WithUser(ctx context.Context, userID int64, email, role string) context.Context {
	ctx = context.WithValue(ctx, constant.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, email)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

// WithToken records the access token id and expiry so logout can revoke it.
func WithToken(ctx context.Context, tokenID string, expiresAt time.Time) context.Context {
	ctx = context.WithValue(ctx, constant.ContextKeyTokenID, tokenID)

	return context.WithValue(ctx, constant.ContextKeyTokenExpiresAt, expiresAt)
}

func GetToken(ctx context.Context) (string, time.Time) {
	tokenID, _ := ctx.Value(constant.ContextKeyTokenID).(string)
	expiresAt, _ := ctx.Value(constant.ContextKeyTokenExpiresAt).(time.Time)

	return tokenID, expiresAt
}
