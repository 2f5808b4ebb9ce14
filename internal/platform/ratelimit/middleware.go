package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"

	"agency_backend/internal/api"
)

// Options configures one limiter.
type Options struct {
	// Name namespaces the counters so separate limiters do not share hits.
	Name string
	// Window is the length of a counting window.
	Window time.Duration
	// Max is the number of requests allowed per client per window.
	Max int
	// SkipSuccessful counts only requests whose response status is 400 or above.
	SkipSuccessful bool
	// Message is returned with 429.
	Message string
}

// New returns a Gin middleware that limits requests per client IP.
// When the store fails the request is let through and the failure logged.
func New(store limiter.Store, opts Options) gin.HandlerFunc {
	if opts.Message == "" {
		opts.Message = "Too many requests, please try again later."
	}

	lim := limiter.New(store, limiter.Rate{Period: opts.Window, Limit: int64(opts.Max)})
	keyOf := func(c *gin.Context) string { return opts.Name + ":" + c.ClientIP() }

	if opts.SkipSuccessful {
		return failuresOnly(lim, keyOf, opts)
	}

	return mgin.NewMiddleware(lim,
		mgin.WithKeyGetter(keyOf),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			reset, _ := strconv.ParseInt(c.Writer.Header().Get("X-RateLimit-Reset"), 10, 64)
			reject(c, opts, reset)
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			slog.Warn("rate limit store unavailable", "limiter", opts.Name, "error", err)
			c.Next()
		}),
	)
}

// failuresOnly blocks a client once it has used up its failures for the window.
// Successful requests never touch the counter.
func failuresOnly(lim *limiter.Limiter, keyOf func(*gin.Context) string, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := keyOf(c)

		state, err := lim.Peek(ctx, key)
		if err != nil {
			slog.Warn("rate limit store unavailable", "limiter", opts.Name, "error", err)
			c.Next()
			return
		}

		setHeaders(c, state)
		if state.Remaining <= 0 {
			reject(c, opts, state.Reset)
			return
		}

		c.Next()

		if c.Writer.Status() < http.StatusBadRequest {
			return
		}
		if _, err := lim.Increment(context.WithoutCancel(ctx), key, 1); err != nil {
			slog.Warn("failed to record rate limit hit", "limiter", opts.Name, "error", err)
		}
	}
}

func setHeaders(c *gin.Context, state limiter.Context) {
	c.Header("X-RateLimit-Limit", strconv.FormatInt(state.Limit, 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(state.Remaining, 10))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(state.Reset, 10))
}

// reject answers 429. reset is the Unix time at which the window ends.
func reject(c *gin.Context, opts Options, reset int64) {
	retryAfter := max(reset-time.Now().Unix(), 1)
	slog.Warn("rate limit exceeded", "limiter", opts.Name, "remote_addr", c.ClientIP())
	c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, api.Error(opts.Message))
}
