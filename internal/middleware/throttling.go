package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"sindicatorest/internal/models/dto"
	"sindicatorest/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/semaphore"
)

const (
	defaultMaxRequests = 120
	rateLimitWindow    = 60 * time.Second
	rateLimitPrefix    = "ratelimit:"
)

// CounterStore é o subconjunto do Redis usado pelo rate limit
type CounterStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// RateLimiter encapsula a lógica de rate limiting
type RateLimiter struct {
	store       CounterStore
	log         logger.Logger
	maxRequests int
	window      time.Duration
}

// NewRateLimiter cria uma nova instância do rate limiter
func NewRateLimiter(store CounterStore, log logger.Logger, maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		store:       store,
		log:         log,
		maxRequests: maxRequests,
		window:      window,
	}
}

// setupRateLimit configura o middleware de rate limiting
func setupRateLimit(engine *gin.Engine, store CounterStore, log logger.Logger) {
	maxRequests := int(getEnvAsInt64("MAX_REQUEST_COUNT_BY_IP", defaultMaxRequests))
	engine.Use(NewRateLimiter(store, log, maxRequests, rateLimitWindow).Middleware())
}

// Middleware retorna o middleware do Gin para rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, retryAfter, err := rl.checkRateLimit(c.Request.Context(), ip)
		if err != nil {
			// sem Redis a requisição segue sem limite
			rl.log.Warn("rate limit unavailable", map[string]interface{}{"error": err.Error(), "ip": ip})
			c.Next()
			return
		}

		if !allowed {
			rl.handleRateLimitExceeded(c, retryAfter)
			return
		}

		c.Next()
	}
}

// checkRateLimit verifica se o IP pode fazer a requisição
func (rl *RateLimiter) checkRateLimit(ctx context.Context, ip string) (allowed bool, retryAfter time.Duration, err error) {
	key := rateLimitPrefix + ip

	val, err := rl.store.Get(ctx, key).Result()

	// Primeira requisição do IP
	if errors.Is(err, redis.Nil) {
		if err := rl.store.Set(ctx, key, 1, rl.window).Err(); err != nil {
			return false, 0, err
		}
		return true, 0, nil
	}
	if err != nil {
		return false, 0, err
	}

	requestCount, err := strconv.Atoi(val)
	if err != nil {
		return false, 0, err
	}

	if requestCount >= rl.maxRequests {
		ttl, err := rl.store.TTL(ctx, key).Result()
		if err != nil {
			return false, 0, err
		}
		return false, ttl, nil
	}

	if err := rl.store.Incr(ctx, key).Err(); err != nil {
		return false, 0, err
	}

	return true, 0, nil
}

// handleRateLimitExceeded trata quando o limite é excedido
func (rl *RateLimiter) handleRateLimitExceeded(c *gin.Context, retryAfter time.Duration) {
	if retryAfter < 0 {
		retryAfter = rl.window
	}
	seconds := int(retryAfter.Round(time.Second) / time.Second)
	c.Writer.Header().Set("Retry-After", strconv.Itoa(seconds))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewRateLimitErrorResponse(
		c, retryAfter.Round(time.Second).String(), rl.maxRequests, 0, time.Now().Add(retryAfter).UTC(),
	))
}

func setupSemaphore(engine *gin.Engine) {
	max := getEnvAsInt64("MAX_REQUEST_COUNT_GLOBAL", int64(100))
	sema := semaphore.NewWeighted(max)
	engine.Use(func(c *gin.Context) {
		if err := sema.Acquire(c.Request.Context(), 1); err != nil {
			dto.AbortWithError(c, http.StatusTooManyRequests, "Servidor ocupado", nil)
			return
		}
		defer sema.Release(1)
		c.Next()
	})
}
