package composables

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/peopleforge/peopleforge/pkg/configuration"
	"github.com/peopleforge/peopleforge/pkg/constants"
)

var (
	ErrNoLogger = errors.New("logger not found")
	ErrNoActor  = errors.New("actor not found in context")
)

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the request-scoped logger from the context.
// Panics when no logger middleware ran.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(constants.LoggerKey)
	if logger == nil {
		panic(ErrNoLogger)
	}
	return logger.(*logrus.Entry)
}

func WithActor(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, constants.ActorKey, email)
}

// UseActor returns the caller identity (email) supplied by the identity
// middleware.
func UseActor(ctx context.Context) (string, error) {
	actor, ok := ctx.Value(constants.ActorKey).(string)
	if !ok || actor == "" {
		return "", ErrNoActor
	}
	return actor, nil
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// UsePaginated extracts limit/offset query parameters, bounded by
// configuration.
func UsePaginated(r *http.Request) PaginationParams {
	conf := configuration.Use()
	params := PaginationParams{Limit: conf.PageSize}

	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= conf.MaxPageSize {
			params.Limit = parsed
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			params.Offset = parsed
		}
	}
	return params
}
