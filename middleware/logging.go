package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resumeanalyzer/utils"
)

// RequestStats accumulates response times for /performance.
type RequestStats struct {
	mu       sync.Mutex
	requests int64
	errors   int64
	total    time.Duration
	slowest  time.Duration
	slowPath string
}

// RequestStatsSnapshot is a point-in-time copy of RequestStats.
type RequestStatsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	ErrorResponses    int64   `json:"error_responses"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	SlowestRequestMs  float64 `json:"slowest_request_ms"`
	SlowestPath       string  `json:"slowest_path,omitempty"`
}

func NewRequestStats() *RequestStats {
	return &RequestStats{}
}

func (s *RequestStats) record(path string, status int, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	s.total += d
	if status >= http.StatusInternalServerError {
		s.errors++
	}
	if d >= s.slowest {
		s.slowest = d
		s.slowPath = path
	}
}

func (s *RequestStats) Snapshot() RequestStatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := RequestStatsSnapshot{
		TotalRequests:    s.requests,
		ErrorResponses:   s.errors,
		SlowestRequestMs: float64(s.slowest.Microseconds()) / 1000,
		SlowestPath:      s.slowPath,
	}
	if s.requests > 0 {
		snap.AvgResponseTimeMs = float64(s.total.Microseconds()) / 1000 / float64(s.requests)
	}
	return snap
}

// RequestLogger logs each request and reports its duration in X-Process-Time.
// stats may be nil.
func RequestLogger(logger *zap.Logger, stats *RequestStats) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Writer = &timedWriter{ResponseWriter: c.Writer, start: start}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		if stats != nil {
			stats.record(path, status, duration)
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("duration", duration),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}

// timedWriter stamps X-Process-Time just before the headers go out.
type timedWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timedWriter) stamp() {
	if !w.stamped && !w.Written() {
		w.stamped = true
		w.Header().Set("X-Process-Time", fmt.Sprintf("%.3f", time.Since(w.start).Seconds()))
	}
}

func (w *timedWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timedWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timedWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timedWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

// Recovery turns panics into a 500 error envelope.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"))
				utils.AbortWithError(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}
