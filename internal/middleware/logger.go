package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"sindicatorest/pkg/logger"

	"github.com/gin-gonic/gin"
)

// setupLogger -
func setupLogger(engine *gin.Engine, log logger.Logger) {

	middlewareConfig := MiddlewareConfig{
		LogRequestBody:  true,
		LogResponseBody: true,
		MaxBodySize:     2048,
		ExcludedHeaders: []string{
			"authorization",
			"cookie",
			"set-cookie",
			"x-api-key",
		},
		SkipPaths: []string{
			"/healthcheck/",
			"/metrics",
		},
		ErrorsOnly: false,
	}
	engine.Use(LoggerMiddleware(log, middlewareConfig))
}

// MiddlewareConfig configures the logging middleware
type MiddlewareConfig struct {
	// Whether to log request bodies
	LogRequestBody bool
	// Whether to log response bodies
	LogResponseBody bool
	// Maximum size of bodies to log (in bytes)
	MaxBodySize int
	// Headers to exclude from logging (case-insensitive)
	ExcludedHeaders []string
	// Paths to skip logging (exact match)
	SkipPaths []string
	// Whether to log only errors (4xx, 5xx status codes)
	ErrorsOnly bool
}

// DefaultMiddlewareConfig returns a default configuration
func DefaultMiddlewareConfig() MiddlewareConfig {
	return MiddlewareConfig{
		LogRequestBody:  true,
		LogResponseBody: true,
		MaxBodySize:     1024, // 1KB
		ExcludedHeaders: []string{
			"authorization",
			"cookie",
			"set-cookie",
			"x-api-key",
			"x-auth-token",
		},
		SkipPaths: []string{
			"/healthcheck/",
		},
	}
}

// responseBodyWriter wraps gin.ResponseWriter to capture response body
type responseBodyWriter struct {
	gin.ResponseWriter
	body  *bytes.Buffer
	limit int
}

func (w *responseBodyWriter) Write(data []byte) (int, error) {
	if w.body.Len() <= w.limit {
		w.body.Write(data)
	}
	return w.ResponseWriter.Write(data)
}

func truncate(body []byte, limit int, marker string) string {
	if len(body) > limit {
		return marker
	}
	return string(body)
}

// LoggerMiddleware creates a Gin middleware that logs HTTP requests
func LoggerMiddleware(log logger.Logger, config ...MiddlewareConfig) gin.HandlerFunc {
	cfg := DefaultMiddlewareConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	// Convert excluded headers to lowercase for case-insensitive comparison
	excludedHeaders := make(map[string]bool)
	for _, header := range cfg.ExcludedHeaders {
		excludedHeaders[strings.ToLower(header)] = true
	}

	// Convert skip paths to map for faster lookup
	skipPaths := make(map[string]bool)
	for _, path := range cfg.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()

		// multipart não é registrado
		multipart := strings.HasPrefix(c.ContentType(), "multipart/")

		var requestBody string
		if cfg.LogRequestBody && !multipart && c.Request.Body != nil {
			bodyBytes, err := io.ReadAll(c.Request.Body)
			if err == nil {
				c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
				requestBody = truncate(bodyBytes, cfg.MaxBodySize, "[BODY TOO LARGE]")
			}
		}

		var responseBodyBuf *bytes.Buffer
		if cfg.LogResponseBody {
			responseBodyBuf = &bytes.Buffer{}
			c.Writer = &responseBodyWriter{
				ResponseWriter: c.Writer,
				body:           responseBodyBuf,
				limit:          cfg.MaxBodySize,
			}
		}

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		if cfg.ErrorsOnly && statusCode < 400 {
			return
		}

		headers := make(map[string]string)
		for name, values := range c.Request.Header {
			if !excludedHeaders[strings.ToLower(name)] && len(values) > 0 {
				headers[name] = values[0]
			}
		}

		var responseBody string
		if responseBodyBuf != nil && strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "application/json") {
			responseBody = truncate(responseBodyBuf.Bytes(), cfg.MaxBodySize, "[RESPONSE TOO LARGE]")
		}

		var message string
		level := logger.LevelInfo
		switch {
		case statusCode >= 500:
			message = "HTTP Server Error"
			level = logger.LevelError
		case statusCode >= 400:
			message = "HTTP Client Error"
			level = logger.LevelWarn
		case statusCode >= 300:
			message = "HTTP Redirect"
		default:
			message = "HTTP Request"
		}

		fields := map[string]interface{}{
			"component": "http_middleware",
		}
		if customFields, exists := c.Get("log_fields"); exists {
			if fieldMap, ok := customFields.(map[string]interface{}); ok {
				for k, v := range fieldMap {
					fields[k] = v
				}
			}
		}

		lc := logger.LogContext{
			HTTP: &logger.HTTPContext{
				Method:       c.Request.Method,
				Path:         c.Request.URL.Path,
				Route:        c.FullPath(),
				Query:        c.Request.URL.RawQuery,
				UserAgent:    c.Request.UserAgent(),
				RemoteIP:     c.ClientIP(),
				Headers:      headers,
				StatusCode:   statusCode,
				ResponseSize: c.Writer.Size(),
				RequestID:    GetRequestID(c),
				DurationMs:   float64(duration.Microseconds()) / 1000,
				RequestBody:  requestBody,
				ResponseBody: responseBody,
			},
			Fields: fields,
		}
		if claims, ok := CurrentUser(c); ok {
			lc.User = &logger.UserContext{ID: claims.UserID, Email: claims.Email}
		}
		if len(c.Errors) > 0 {
			lc.Error = &logger.ErrorContext{Type: "gin", Message: c.Errors.String()}
		}

		log.WithContext(level, message, lc)
	}
}

// AddLogFields adds custom fields to be included in logs
func AddLogFields(c *gin.Context, fields map[string]interface{}) {
	existing, exists := c.Get("log_fields")
	if !exists {
		c.Set("log_fields", fields)
		return
	}

	if existingMap, ok := existing.(map[string]interface{}); ok {
		for k, v := range fields {
			existingMap[k] = v
		}
		c.Set("log_fields", existingMap)
	} else {
		c.Set("log_fields", fields)
	}
}
