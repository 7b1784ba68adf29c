package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"resumeanalyzer/middleware"
	"resumeanalyzer/scoring"
	"resumeanalyzer/services"
	"resumeanalyzer/validators"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
	statusActive   = "active"
)

// Root handles GET /.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Resume Analyzer API is running",
		"version": APIVersion,
	})
}

func (h *Handler) uptime() float64 {
	return time.Since(h.startTime).Seconds()
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	status := statusHealthy
	components := map[string]string{
		"pdf_processor":  statusActive,
		"rule_validator": statusActive,
		"score_enforcer": statusActive,
		"bulk_processor": fmt.Sprintf("active (%d workers)", services.BulkConcurrency),
	}

	if h.modelReady {
		components["ai_analyzer"] = statusActive
	} else {
		components["ai_analyzer"] = "inactive - check API key"
		status = statusDegraded
	}

	if h.cache != nil {
		stats := h.cache.Stats(c.Request.Context())
		components["cache"] = fmt.Sprintf("active (%d cached)", stats.MemoryEntries)
	} else {
		components["cache"] = "disabled"
	}

	if h.limiter != nil {
		stats := h.limiter.Stats()
		components["rate_limiter"] = fmt.Sprintf("active (%d clients, %d blocked)", stats.UniqueClients, stats.BlockedClients)
		if stats.BlockRate > 50 {
			status = statusDegraded
		}
	} else {
		components["rate_limiter"] = "disabled"
	}

	if h.archive != nil {
		components["export_archive"] = statusActive
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": h.uptime(),
		"components":     components,
		"performance_features": gin.H{
			"parallel_processing":        true,
			"result_caching":             h.cache != nil,
			"concurrent_link_validation": true,
		},
		"system": gin.H{
			"goroutines":    runtime.NumGoroutine(),
			"heap_alloc_mb": float64(mem.HeapAlloc) / (1024 * 1024),
			"num_cpu":       runtime.NumCPU(),
		},
	})
}

// Metrics handles GET /metrics.
func (h *Handler) Metrics(c *gin.Context) {
	uptime := h.uptime()
	secs := int(uptime)

	body := gin.H{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime": gin.H{
			"seconds":        uptime,
			"human_readable": fmt.Sprintf("%dh %dm %ds", secs/3600, (secs%3600)/60, secs%60),
		},
		"bulk_processor": gin.H{
			"max_workers": services.BulkConcurrency,
			"batch_size":  services.BulkBatchSize,
		},
		"components": gin.H{
			"pdf_processor_ready":  true,
			"rule_validator_ready": true,
			"ai_analyzer_ready":    h.modelReady,
			"score_enforcer_ready": true,
		},
	}

	if h.cache != nil {
		stats := h.cache.Stats(c.Request.Context())
		body["cache"] = gin.H{
			"total_entries": stats.MemoryEntries,
			"cache_hits":    stats.Hits,
			"cache_misses":  stats.Misses,
		}
		body["enhanced_cache"] = stats
	}
	if h.limiter != nil {
		body["rate_limiter"] = h.limiter.Stats()
	}
	if h.requestStats != nil {
		body["performance"] = h.requestStats.Snapshot()
	}

	c.JSON(http.StatusOK, body)
}

type rateLimitStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	middleware.RateLimitStats
	Limits middleware.RateLimitLimits `json:"limits"`
}

// RateLimitStatus handles GET /rate-limit-status.
func (h *Handler) RateLimitStatus(c *gin.Context) {
	if h.limiter == nil {
		c.JSON(http.StatusOK, gin.H{"status": "disabled"})
		return
	}
	c.JSON(http.StatusOK, rateLimitStatus{
		Status:         statusActive,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		RateLimitStats: h.limiter.Stats(),
		Limits:         h.limiter.Limits(),
	})
}

// Performance handles GET /performance.
func (h *Handler) Performance(c *gin.Context) {
	layers := []string{"memory"}
	caching := gin.H{"cache_layers": layers}
	if h.cache != nil {
		stats := h.cache.Stats(c.Request.Context())
		if stats.DiskEnabled {
			caching["cache_layers"] = append(layers, "disk")
		}
		caching["analysis_cache"] = stats
	}

	body := gin.H{
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
		"optimization_status": statusActive,
		"caching":             caching,
		"bulk_processing": gin.H{
			"batch_size":           services.BulkBatchSize,
			"max_concurrent_files": services.BulkConcurrency,
			"max_attempts":         services.BulkMaxAttempts,
			"file_timeout_seconds": int(services.BulkFileTimeout.Seconds()),
			"max_files_per_job":    services.MaxFilesPerBulkJob,
		},
		"recommendations": gin.H{
			"cache_hit_rate_target":    "above 70%",
			"avg_response_time_target": "under 5000ms",
		},
	}
	if h.requestStats != nil {
		body["requests"] = h.requestStats.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

type priorityInfo struct {
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	Sections []string `json:"sections"`
}

// Priorities handles GET /priorities.
func (h *Handler) Priorities(c *gin.Context) {
	names := validators.PriorityNames()
	priorities := make([]priorityInfo, 0, len(names))
	for _, name := range names {
		mapping := scoring.Priorities[name]
		sections := append([]string(nil), mapping.Sections...)
		sort.Strings(sections)
		priorities = append(priorities, priorityInfo{Name: name, Icon: mapping.Icon, Sections: sections})
	}
	c.JSON(http.StatusOK, gin.H{
		"priorities":     priorities,
		"max_priorities": validators.MaxPriorities,
	})
}
