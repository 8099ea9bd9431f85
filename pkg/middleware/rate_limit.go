package middleware

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/peopleforge/peopleforge/pkg/configuration"
)

// RateLimit limits requests per client IP. Storage is in-memory by default
// and redis when configured, mirroring the deployment topology.
func RateLimit(perMinute int) mux.MiddlewareFunc {
	conf := configuration.Use()
	if !conf.RateLimit.Enabled || perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	rate, err := limiter.NewRateFromFormatted(fmt.Sprintf("%d-M", perMinute))
	if err != nil {
		panic(err)
	}

	var store limiter.Store
	if conf.RateLimit.Storage == "redis" {
		client := redis.NewClient(&redis.Options{Addr: conf.RateLimit.RedisURL})
		store, err = sredis.NewStore(client)
		if err != nil {
			panic(err)
		}
	} else {
		store = memory.NewStore()
	}

	instance := limiter.New(store, rate, limiter.WithTrustForwardHeader(true))
	wrapped := mhttp.NewMiddleware(instance)
	return func(next http.Handler) http.Handler {
		return wrapped.Handler(next)
	}
}
