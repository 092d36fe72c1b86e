package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"transfers/internal/utils"
)

// ParseCustomRate allows formats like "10-2m", "5-1h", "20-10s".
func ParseCustomRate(rateStr string) (limiter.Rate, error) {
	parts := strings.Split(strings.TrimSpace(rateStr), "-")
	if len(parts) != 2 {
		return limiter.Rate{}, fmt.Errorf("invalid rate format: %s", rateStr)
	}
	limit, err := strconv.Atoi(parts[0])
	if err != nil || limit <= 0 {
		return limiter.Rate{}, fmt.Errorf("invalid limit: %s", parts[0])
	}

	unit := map[string]time.Duration{"s": time.Second, "m": time.Minute, "h": time.Hour}
	durationStr := parts[1]
	if durationStr == "" {
		return limiter.Rate{}, fmt.Errorf("unsupported period: %s", durationStr)
	}
	per, ok := unit[durationStr[len(durationStr)-1:]]
	if !ok {
		return limiter.Rate{}, fmt.Errorf("unsupported period: %s", durationStr)
	}
	n, err := strconv.Atoi(durationStr[:len(durationStr)-1])
	if err != nil || n <= 0 {
		return limiter.Rate{}, fmt.Errorf("invalid duration: %s", durationStr)
	}
	return limiter.Rate{Period: time.Duration(n) * per, Limit: int64(limit)}, nil
}

// NewRateLimiter limits a route per client IP. With a redis client the
// counters are shared between instances. A bad rate string disables the limit and is logged.
func NewRateLimiter(rateStr, routeID string, rdb *redis.Client) gin.HandlerFunc {
	rate, err := ParseCustomRate(rateStr)
	if err != nil {
		utils.LogError("", "ratelimit", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	opts := limiter.StoreOptions{Prefix: "transfers:rate:" + routeID, MaxRetry: 3, CleanUpInterval: rate.Period}
	var store limiter.Store
	if rdb != nil {
		store, err = redisstore.NewStoreWithOptions(rdb, opts)
		if err != nil {
			utils.LogError("", "ratelimit", routeID, err)
			store = nil
		}
	}
	if store == nil {
		store = memory.NewStoreWithOptions(opts)
	}

	return ginmiddleware.NewMiddleware(limiter.New(store, rate),
		ginmiddleware.WithKeyGetter(func(c *gin.Context) string {
			// the vid cookie is client controlled and reissued when dropped
			return c.ClientIP()
		}),
		ginmiddleware.WithLimitReachedHandler(func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests",
				"code":       "rate_limited",
				"request_id": GetRequestID(c),
			})
		}),
	)
}
