package router

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/akeren/trustlink-waitlist/internal/log"
	"github.com/akeren/trustlink-waitlist/pkg/constants"
	"github.com/akeren/trustlink-waitlist/pkg/utils"
	"github.com/gin-gonic/gin"
)

const (
	correlationIDHeader    = "X-Correlation-ID"
	defaultMaxBodyBytes    = 1 << 20
	defaultHSTSMaxAge      = 31536000
	corsAllowedMethods     = "POST, OPTIONS, GET, PATCH"
	corsAllowedHeaderNames = "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With"
)

// MiddlewareConfig is read from the environment once, when the router is built.
type MiddlewareConfig struct {
	TimeoutDuration time.Duration
	MaxBodyBytes    int64
	AllowedOrigins  []string
	HSTS            HSTSPolicy
}

type HSTSPolicy struct {
	Enabled           bool
	MaxAge            int64
	IncludeSubdomains bool
}

func (p HSTSPolicy) headerValue() string {
	value := fmt.Sprintf("max-age=%d", p.MaxAge)
	if p.IncludeSubdomains {
		value += "; includeSubDomains"
	}
	return value
}

func loadMiddlewareConfig(timeout time.Duration) *MiddlewareConfig {
	appEnv := strings.ToLower(utils.GetEnvTrimmed("APP_ENV"))

	return &MiddlewareConfig{
		TimeoutDuration: timeout,
		MaxBodyBytes:    utils.GetEnvPositiveInt64("MAX_REQUEST_BODY_BYTES", defaultMaxBodyBytes),
		AllowedOrigins:  utils.GetEnvList("CORS_ALLOWED_ORIGIN"),
		HSTS: HSTSPolicy{
			// On by default in production only.
			Enabled:           utils.GetEnvBool("HSTS_ENABLED", appEnv == "production" || appEnv == "prod"),
			MaxAge:            utils.GetEnvPositiveInt64("HSTS_MAX_AGE", defaultHSTSMaxAge),
			IncludeSubdomains: utils.GetEnvBool("HSTS_INCLUDE_SUBDOMAINS", true),
		},
	}
}

func (routerService *RouterService) useMiddleware() {
	routerService.engine.Use(
		routerService.securityHeadersMiddleware(),
		routerService.maxBodySizeMiddleware(),
		routerService.corsMiddleware(),
		routerService.timeoutMiddleware(),
		routerService.requestContextMiddleware(),
		routerService.requestLoggingMiddleware(),
	)
}

// requestContextMiddleware attaches the correlation ID and a logger carrying it
// to the request context, and echoes the ID back to the client.
func (routerService *RouterService) requestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(correlationIDHeader)
		if id == "" {
			id = log.GenerateCorrelationID()
		}

		ctx := context.WithValue(c.Request.Context(), log.CorrelatedIDKey, id)
		ctx = log.ContextWithLogger(ctx, routerService.logger.WithCorrelationID(ctx))
		c.Request = c.Request.WithContext(ctx)

		c.Header(correlationIDHeader, id)
		c.Next()
	}
}

func (routerService *RouterService) requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		routerService.logger.WithCorrelationID(c.Request.Context()).Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		)
	}
}

func (routerService *RouterService) securityHeadersMiddleware() gin.HandlerFunc {
	hsts := routerService.middlewareConfig.HSTS
	hstsValue := hsts.headerValue()

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if hsts.Enabled && isHTTPS(c) {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		c.Next()
	}
}

// isHTTPS also trusts X-Forwarded-Proto for TLS terminated at a proxy.
func isHTTPS(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")), "https")
}

func (routerService *RouterService) maxBodySizeMiddleware() gin.HandlerFunc {
	maxBytes := routerService.middlewareConfig.MaxBodyBytes

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResult(http.StatusRequestEntityTooLarge, "Request payload too large", nil).ToJSON())
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// corsMiddleware only answers origins listed in CORS_ALLOWED_ORIGIN ("*"
// allows any). Other cross-origin requests get no CORS headers.
func (routerService *RouterService) corsMiddleware() gin.HandlerFunc {
	allowed := routerService.middlewareConfig.AllowedOrigins
	allowAny := slices.Contains(allowed, "*")
	allowHeaders := strings.Join([]string{corsAllowedHeaderNames, correlationIDHeader, constants.AdminKeyHeader}, ", ")

	if len(allowed) == 0 {
		routerService.logger.Warn("CORS_ALLOWED_ORIGIN not set; cross-origin requests will be denied")
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		if !allowAny && !slices.Contains(allowed, origin) {
			routerService.logger.WithCorrelationID(c.Request.Context()).Warn("CORS origin not allowed", "origin", origin)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", corsAllowedMethods)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// timeoutMiddleware bounds the request context. Handlers stay on the request
// goroutine because gin.Context is not safe for concurrent use; mid-flight
// enforcement comes from the http.Server read and write timeouts.
func (routerService *RouterService) timeoutMiddleware() gin.HandlerFunc {
	timeout := routerService.middlewareConfig.TimeoutDuration

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			routerService.logger.WithCorrelationID(c.Request.Context()).Warn("Request timeout detected", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusRequestTimeout, ErrorResult(http.StatusRequestTimeout, "Request timeout", nil).ToJSON())
		}
	}
}
