package ratelimit

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/cantina/internal/clock"
	"github.com/smallbiznis/cantina/internal/config"
)

const keyIngestCompany = "ingest:company:%s"

// IngestLimiter caps consumption registrations per company so a runaway POS
// integration cannot flood the event table.
type IngestLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewIngestLimiter(cfg config.Config, clk clock.Clock) *IngestLimiter {
	if cfg.IngestRatePerSecond <= 0 || cfg.IngestBurst <= 0 {
		return &IngestLimiter{enabled: false}
	}
	return &IngestLimiter{
		enabled: true,
		bucket:  NewTokenBucket(clk),
		rate:    cfg.IngestRatePerSecond,
		burst:   cfg.IngestBurst,
	}
}

func (l *IngestLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *IngestLimiter) AllowCompany(companyID string) bool {
	if !l.Enabled() {
		return true
	}
	return l.bucket.Allow(fmt.Sprintf(keyIngestCompany, strings.TrimSpace(companyID)), l.rate, l.burst)
}
