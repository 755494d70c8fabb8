// Package ratelimit throttles booking creation per client so a single
// caller cannot hold every open slot in PENDING.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Checker decides whether one more booking attempt from a client is allowed,
// recording the attempt when it is.
type Checker interface {
	Allow(ctx context.Context, ip, identifier string) LimitResult
}

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

// realClock implements Clock using the system time.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	MaxPerIPPerHour         int // Max booking attempts per client IP per hour (default: 10)
	MaxPerIdentifierPerHour int // Max booking attempts per customer email per hour (default: 5)

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxPerIPPerHour:         10,
		MaxPerIdentifierPerHour: 5,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

// entry tracks request counts in a one-hour window.
type entry struct {
	count   int
	firstAt time.Time // First request in window
	lastAt  time.Time
}

// Limiter is an in-process Checker with fixed hourly windows per IP and per
// identifier. It suits a single server instance; see RedisLimiter for a
// limit shared across instances.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.Mutex
	// Keyed by hash of identifier or IP
	byIP map[string]*entry
	byID map[string]*entry

	// Cleanup goroutine management
	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byIP:          make(map[string]*entry),
		byID:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// Allow checks both windows and, when the attempt is allowed, counts it
// against both. An empty identifier is only limited by IP.
func (l *Limiter) Allow(_ context.Context, ip, identifier string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	ipKey := hashKey("booking:ip:", ip)
	idKey := ""
	if id := normalizeIdentifier(identifier); id != "" {
		idKey = hashKey("booking:id:", id)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if res := l.check(l.byIP[ipKey], l.config.MaxPerIPPerHour, now, "ip_hourly_limit"); !res.Allowed {
		return res
	}
	if idKey != "" {
		if res := l.check(l.byID[idKey], l.config.MaxPerIdentifierPerHour, now, "identifier_hourly_limit"); !res.Allowed {
			return res
		}
	}

	record(l.byIP, ipKey, now)
	if idKey != "" {
		record(l.byID, idKey, now)
	}
	return LimitResult{Allowed: true}
}

func (l *Limiter) check(e *entry, max int, now time.Time, reason string) LimitResult {
	if e == nil || max <= 0 {
		return LimitResult{Allowed: true}
	}
	if now.Sub(e.firstAt) < time.Hour && e.count >= max {
		return LimitResult{
			Allowed:    false,
			RetryAfter: time.Hour - now.Sub(e.firstAt),
			Reason:     reason,
		}
	}
	return LimitResult{Allowed: true}
}

func record(entries map[string]*entry, key string, now time.Time) {
	e := entries[key]
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		entries[key] = &entry{count: 1, firstAt: now, lastAt: now}
		return
	}
	e.count++
	e.lastAt = now
}

func hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

// normalizeIdentifier lowercases the identifier to prevent case-based bypass.
func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.byIP {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byIP, k)
		}
	}
	for k, e := range l.byID {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byID, k)
		}
	}
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost IP from X-Forwarded-For (added by your proxy).
// When trustProxy is false, ignores X-Forwarded-For entirely (prevents spoofing).
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Use RIGHTMOST IP - this is the one your proxy added, not user-supplied
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				// Skip private/internal IPs to find the real client
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			// All IPs are private, use the last one
			return strings.TrimSpace(parts[len(parts)-1])
		}

		// Check X-Real-IP (set by nginx)
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	// Fall back to RemoteAddr (direct connection or untrusted proxy)
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port (e.g., Unix socket or malformed)
		// Try to parse as IP directly, otherwise return as-is
		if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
			return r.RemoteAddr
		}
		// Last resort: strip anything after last colon that looks like a port
		if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
			candidate := r.RemoteAddr[:idx]
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
		return r.RemoteAddr
	}
	return ip
}

// privateNetworks holds parsed CIDR ranges for private/reserved IPs.
// Parsed once at package init for efficiency.
var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10", // Link-local
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP checks if an IP is in a private/reserved range.
// Handles both IPv4 and IPv4-mapped IPv6 addresses (e.g., ::ffff:192.168.1.1).
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	// Convert IPv4-mapped IPv6 to IPv4 for consistent matching
	// e.g., ::ffff:192.168.1.1 -> 192.168.1.1
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}

	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// SanitizeIdentifier masks an identifier for logging.
func SanitizeIdentifier(identifier string) string {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if strings.Contains(identifier, "@") {
		parts := strings.Split(identifier, "@")
		if len(parts[0]) > 2 {
			return parts[0][:2] + "***@" + parts[1]
		}
		return "***@" + parts[1]
	}
	// Phone: show last 4 digits
	if len(identifier) >= 4 {
		return "***" + identifier[len(identifier)-4:]
	}
	return "***"
}

// LogRateLimitExceeded logs a rate limit event with sanitized identifier.
func LogRateLimitExceeded(ctx context.Context, identifier, ip, reason string) {
	log.Ctx(ctx).Warn().
		Str("event", "rate_limit_exceeded").
		Str("identifier", SanitizeIdentifier(identifier)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Booking rate limit exceeded")
}
