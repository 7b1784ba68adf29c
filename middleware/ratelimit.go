package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resumeanalyzer/utils"
)

// RateLimitRule allows Requests plus Burst requests per Window.
type RateLimitRule struct {
	Requests int
	Window   time.Duration
	Burst    int
}

func (r RateLimitRule) allowed() int {
	return r.Requests + r.Burst
}

func (r RateLimitRule) String() string {
	s := fmt.Sprintf("%d requests per %ds", r.Requests, int(r.Window.Seconds()))
	if r.Burst > 0 {
		s += fmt.Sprintf(" (burst: %d)", r.Burst)
	}
	return s
}

// DefaultRateLimitRules returns the per-category limits. "rapid" applies to
// every request and "default" backs up every other category.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"default":      {Requests: 100, Window: time.Hour, Burst: 10},
		"analyze":      {Requests: 20, Window: time.Hour, Burst: 5},
		"bulk_analyze": {Requests: 5, Window: time.Hour, Burst: 2},
		"export":       {Requests: 10, Window: time.Hour, Burst: 3},
		"health":       {Requests: 1000, Window: time.Hour, Burst: 50},
		"rapid":        {Requests: 10, Window: time.Minute, Burst: 5},
	}
}

var blockDurations = []time.Duration{5 * time.Minute, 15 * time.Minute, time.Hour, 24 * time.Hour}

const (
	defaultMaxConcurrent   = 50
	defaultMaxNewClients   = 100
	clientRetention        = 24 * time.Hour
	rateLimitCleanupPeriod = 5 * time.Minute
	maxUserAgentLength     = 100
)

const (
	msgHighLoad      = "System temporarily unavailable due to high load"
	msgClientBlocked = "Client temporarily blocked due to rate limit violations"
)

// Rejection describes why a request was refused.
type Rejection struct {
	Code       string
	Message    string
	RetryAfter int
}

type clientRecord struct {
	requests     []time.Time
	blockedUntil time.Time
	violations   int
	firstSeen    time.Time
}

func (r *clientRecord) blocked(now time.Time) bool {
	return now.Before(r.blockedUntil)
}

// block applies progressively longer blocks for repeat offenders.
func (r *clientRecord) block(now time.Time) time.Duration {
	r.violations++
	d := blockDurations[min(r.violations-1, len(blockDurations)-1)]
	r.blockedUntil = now.Add(d)
	return d
}

func (r *clientRecord) lastRequest() time.Time {
	if len(r.requests) == 0 {
		return time.Time{}
	}
	return r.requests[len(r.requests)-1]
}

// RateLimiter tracks clients by hashed IP and user agent.
type RateLimiter struct {
	mu            sync.Mutex
	clients       map[string]*clientRecord
	rules         map[string]RateLimitRule
	maxConcurrent int
	maxNewClients int
	concurrent    int
	newClients    []time.Time

	totalRequests   int64
	blockedRequests int64
	uniqueClients   int64
	startTime       time.Time

	logger *zap.Logger
	now    func() time.Time
	stop   chan struct{}
	once   sync.Once
}

// NewRateLimiter creates a limiter with the default rules and starts its
// cleanup loop. Call Stop to end it.
func NewRateLimiter(logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	rl := &RateLimiter{
		clients:       make(map[string]*clientRecord),
		rules:         DefaultRateLimitRules(),
		maxConcurrent: defaultMaxConcurrent,
		maxNewClients: defaultMaxNewClients,
		startTime:     time.Now(),
		logger:        logger,
		now:           time.Now,
		stop:          make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop ends the cleanup loop.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Limit returns the rate limiting middleware. GET / and GET /health are
// never refused.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		exempt := c.Request.Method == http.MethodGet && (path == "/" || path == "/health")

		if !exempt {
			if rej := rl.Check(ClientID(c), path); rej != nil {
				c.Header("Retry-After", strconv.Itoa(rej.RetryAfter))
				utils.AbortWithError(c, http.StatusTooManyRequests, rej.Message)
				return
			}
		}

		rl.mu.Lock()
		rl.concurrent++
		rl.mu.Unlock()
		defer func() {
			rl.mu.Lock()
			rl.concurrent--
			rl.mu.Unlock()
		}()

		c.Next()
	}
}

// Check records a request from clientID to path, or explains why it is refused.
func (rl *RateLimiter) Check(clientID, path string) *Rejection {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.pruneNewClientsLocked(now)

	if rl.concurrent >= rl.maxConcurrent {
		rl.blockedRequests++
		rl.logger.Warn("global limit hit", zap.Int("concurrent_requests", rl.concurrent))
		return &Rejection{Code: "rate_limit_exceeded", Message: msgHighLoad, RetryAfter: 60}
	}

	client, ok := rl.clients[clientID]
	if !ok {
		if len(rl.newClients) >= rl.maxNewClients {
			rl.blockedRequests++
			rl.logger.Warn("global limit hit", zap.Int("new_clients_per_minute", len(rl.newClients)))
			return &Rejection{Code: "rate_limit_exceeded", Message: msgHighLoad, RetryAfter: 60}
		}
		client = &clientRecord{firstSeen: now}
		rl.clients[clientID] = client
		rl.newClients = append(rl.newClients, now)
		rl.uniqueClients++
	}

	if client.blocked(now) {
		rl.blockedRequests++
		return &Rejection{
			Code:       "client_blocked",
			Message:    msgClientBlocked,
			RetryAfter: int(client.blockedUntil.Sub(now).Seconds()),
		}
	}

	category := EndpointCategory(path)
	names := []string{"rapid", category}
	if category != "default" {
		names = append(names, "default")
	}

	client.requests = trimBefore(client.requests, now.Add(-rl.longestWindow()))
	for _, name := range names {
		rule := rl.rules[name]
		inWindow := countSince(client.requests, now.Add(-rule.Window))
		if inWindow < rule.allowed() {
			continue
		}

		blockedFor := client.block(now)
		rl.blockedRequests++
		rl.logger.Warn("rate limit exceeded",
			zap.String("client_id", clientID),
			zap.String("rule", name),
			zap.Int("requests_in_window", inWindow),
			zap.Int("allowed", rule.allowed()),
			zap.Duration("blocked_for", blockedFor),
			zap.Int("violations", client.violations))
		return &Rejection{
			Code:       "rate_limit_exceeded",
			Message:    "Rate limit exceeded: " + rule.String(),
			RetryAfter: int(rule.Window.Seconds() / 4),
		}
	}

	client.requests = append(client.requests, now)
	rl.totalRequests++
	return nil
}

func (rl *RateLimiter) longestWindow() time.Duration {
	var longest time.Duration
	for _, r := range rl.rules {
		if r.Window > longest {
			longest = r.Window
		}
	}
	return longest
}

func (rl *RateLimiter) pruneNewClientsLocked(now time.Time) {
	rl.newClients = trimBefore(rl.newClients, now.Add(-time.Minute))
}

// trimBefore drops the leading timestamps not after cutoff. ts is sorted.
func trimBefore(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

func countSince(ts []time.Time, cutoff time.Time) int {
	return len(ts) - len(trimBefore(ts, cutoff))
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rateLimitCleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup forgets clients idle for a day.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-clientRetention)
	for id, r := range rl.clients {
		if r.firstSeen.Before(cutoff) && r.lastRequest().Before(cutoff) && !r.blocked(now) {
			delete(rl.clients, id)
		}
	}
	rl.pruneNewClientsLocked(now)
}

// RateLimitStats is served by /rate-limit-status.
type RateLimitStats struct {
	TotalRequests      int64             `json:"total_requests"`
	BlockedRequests    int64             `json:"blocked_requests"`
	UniqueClients      int64             `json:"unique_clients"`
	ActiveClients1h    int               `json:"active_clients_1h"`
	BlockedClients     int               `json:"blocked_clients"`
	ConcurrentRequests int               `json:"concurrent_requests"`
	UptimeSeconds      float64           `json:"uptime_seconds"`
	RequestsPerMinute  float64           `json:"requests_per_minute"`
	BlockRate          float64           `json:"block_rate"`
	Rules              map[string]string `json:"rules"`
}

func (rl *RateLimiter) Stats() RateLimitStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	uptime := now.Sub(rl.startTime).Seconds()
	stats := RateLimitStats{
		TotalRequests:      rl.totalRequests,
		BlockedRequests:    rl.blockedRequests,
		UniqueClients:      rl.uniqueClients,
		ConcurrentRequests: rl.concurrent,
		UptimeSeconds:      uptime,
		BlockRate:          float64(rl.blockedRequests) / float64(max(rl.totalRequests, 1)) * 100,
		Rules:              make(map[string]string, len(rl.rules)),
	}
	if uptime > 60 {
		stats.RequestsPerMinute = float64(rl.totalRequests) / (uptime / 60)
	}

	hourAgo := now.Add(-time.Hour)
	for _, r := range rl.clients {
		if r.lastRequest().After(hourAgo) {
			stats.ActiveClients1h++
		}
		if r.blocked(now) {
			stats.BlockedClients++
		}
	}
	for name, rule := range rl.rules {
		stats.Rules[name] = rule.String()
	}
	return stats
}

// ClientID hashes the caller's IP and user agent. The IP comes from
// X-Forwarded-For, then X-Real-IP, then the connection.
func ClientID(c *gin.Context) string {
	ip := ""
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		ip = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if ip == "" {
		ip = strings.TrimSpace(c.GetHeader("X-Real-IP"))
	}
	if ip == "" {
		ip = c.RemoteIP()
	}
	if ip == "" {
		ip = "unknown"
	}

	ua := c.GetHeader("User-Agent")
	if ua == "" {
		ua = "unknown"
	}
	if len(ua) > maxUserAgentLength {
		ua = ua[:maxUserAgentLength]
	}

	sum := sha256.Sum256([]byte(ip + ":" + ua))
	return hex.EncodeToString(sum[:])[:16]
}

// EndpointCategory maps a request path to its rule name.
func EndpointCategory(path string) string {
	p := strings.ToLower(path)
	switch {
	case p == "/" || strings.Contains(p, "/health") || strings.Contains(p, "/metrics"):
		return "health"
	case strings.Contains(p, "/analyze_resume"):
		return "analyze"
	case strings.Contains(p, "/bulk_analyze"):
		return "bulk_analyze"
	case strings.Contains(p, "/export"), strings.HasPrefix(p, "/download"):
		return "export"
	default:
		return "default"
	}
}

// RuleLimit describes one rule for /rate-limit-status.
type RuleLimit struct {
	Requests      int    `json:"requests"`
	WindowSeconds int    `json:"window_seconds"`
	Burst         int    `json:"burst"`
	Description   string `json:"description"`
}

// GlobalLimit holds the limits shared by all clients.
type GlobalLimit struct {
	MaxConcurrent          int `json:"max_concurrent"`
	MaxNewClientsPerMinute int `json:"max_new_clients_per_minute"`
}

type RateLimitLimits struct {
	Rules  map[string]RuleLimit `json:"rules"`
	Global GlobalLimit          `json:"global"`
}

// Limits returns the configured rules and global limits.
func (rl *RateLimiter) Limits() RateLimitLimits {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limits := RateLimitLimits{
		Rules: make(map[string]RuleLimit, len(rl.rules)),
		Global: GlobalLimit{
			MaxConcurrent:          rl.maxConcurrent,
			MaxNewClientsPerMinute: rl.maxNewClients,
		},
	}
	for name, rule := range rl.rules {
		limits.Rules[name] = RuleLimit{
			Requests:      rule.Requests,
			WindowSeconds: int(rule.Window.Seconds()),
			Burst:         rule.Burst,
			Description:   rule.String(),
		}
	}
	return limits
}
