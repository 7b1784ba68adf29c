package middleware

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// LocalhostOriginPattern admits any local development port.
var LocalhostOriginPattern = regexp.MustCompile(`^http://localhost:\d+$`)

// CORSConfig contains CORS configuration
type CORSConfig struct {
	AllowedOrigins        []string
	AllowedOriginPatterns []*regexp.Regexp
	AllowedMethods        []string
	AllowedHeaders        []string
	ExposedHeaders        []string
	AllowCredentials      bool
	MaxAge                int
	// SkipBehindProxy leaves CORS to the reverse proxy for forwarded requests.
	SkipBehindProxy bool
}

// DefaultCORSConfig returns default CORS configuration
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins:        []string{"*"},
		AllowedOriginPatterns: []*regexp.Regexp{LocalhostOriginPattern},
		AllowedMethods:        []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:        []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "Content-Length"},
		ExposedHeaders:        []string{"Content-Length", "Content-Type", "Content-Disposition", "Retry-After", "X-Process-Time", "X-Cache", "X-Archive-URL"},
		AllowCredentials:      true,
		MaxAge:                86400,
	}
}

// NewCORSConfig restricts the defaults to origins plus local development ports.
func NewCORSConfig(origins []string, behindProxy bool) CORSConfig {
	config := DefaultCORSConfig()
	config.AllowedOrigins = origins
	config.SkipBehindProxy = behindProxy
	return config
}

// CORS returns a CORS middleware with the given configuration
func CORS(config CORSConfig) gin.HandlerFunc {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	exposed := strings.Join(config.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	return func(c *gin.Context) {
		if config.SkipBehindProxy && isBehindProxy(c) {
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Next()
			return
		}

		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		if isOriginAllowed(origin, config.AllowedOrigins) || matchesOriginPattern(origin, config.AllowedOriginPatterns) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		} else if len(config.AllowedOrigins) == 1 && config.AllowedOrigins[0] == "*" {
			c.Header("Access-Control-Allow-Origin", "*")
		}

		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)

		if exposed != "" {
			c.Header("Access-Control-Expose-Headers", exposed)
		}

		if config.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if config.MaxAge > 0 {
			c.Header("Access-Control-Max-Age", maxAge)
		}

		// Handle preflight requests
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isBehindProxy checks if the request came through nginx
func isBehindProxy(c *gin.Context) bool {
	return c.GetHeader("X-Forwarded-For") != "" || c.GetHeader("X-Forwarded-Proto") != ""
}

// isOriginAllowed checks if origin is in allowed list
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		// Support wildcard subdomains
		if strings.HasPrefix(allowed, "*.") {
			domain := allowed[1:]
			if strings.HasSuffix(origin, domain) {
				return true
			}
		}
	}

	return false
}

func matchesOriginPattern(origin string, patterns []*regexp.Regexp) bool {
	if origin == "" {
		return false
	}
	for _, p := range patterns {
		if p.MatchString(origin) {
			return true
		}
	}
	return false
}
