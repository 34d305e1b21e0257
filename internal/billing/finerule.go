package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const fineRuleCacheKey = "billing:fine_rule"

// FineRuleStore serves the single global fine percentage, cached in
// Redis in front of Postgres.
type FineRuleStore struct {
	pool   *pgxpool.Pool
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewFineRuleStore constructs the store.
func NewFineRuleStore(pool *pgxpool.Pool, client *redis.Client, ttl time.Duration, logger *slog.Logger) *FineRuleStore {
	return &FineRuleStore{pool: pool, client: client, ttl: ttl, logger: logger}
}

// Get returns the current fine percentage.
func (s *FineRuleStore) Get(ctx context.Context) (FineRule, error) {
	if s.client != nil {
		cached, err := s.client.Get(ctx, fineRuleCacheKey).Result()
		if err == nil {
			if pct, perr := strconv.ParseFloat(cached, 64); perr == nil {
				return FineRule{Percentage: pct}, nil
			}
		} else if err != redis.Nil && s.logger != nil {
			s.logger.Warn("fine rule cache read", slog.Any("error", err))
		}
	}

	if s.pool == nil {
		return FineRule{}, fmt.Errorf("billing: fine rule store offline")
	}

	var rule FineRule
	err := s.pool.QueryRow(ctx, `SELECT percentage, updated_at FROM fine_rules ORDER BY id LIMIT 1`).
		Scan(&rule.Percentage, &rule.UpdatedAt)
	if err != nil {
		return FineRule{}, fmt.Errorf("billing: load fine rule: %w", err)
	}

	if s.client != nil {
		if err := s.client.Set(ctx, fineRuleCacheKey, strconv.FormatFloat(rule.Percentage, 'f', -1, 64), s.ttl).Err(); err != nil && s.logger != nil {
			s.logger.Warn("fine rule cache write", slog.Any("error", err))
		}
	}
	return rule, nil
}

// PercentageFailOpen returns the fine percentage, defaulting to zero when
// the rule cannot be loaded. A missing fine never blocks a payment.
func (s *FineRuleStore) PercentageFailOpen(ctx context.Context) float64 {
	rule, err := s.Get(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("fine rule unavailable, defaulting to zero", slog.Any("error", err))
		}
		return 0
	}
	return rule.Percentage
}

// Update replaces the global percentage and invalidates the cache.
func (s *FineRuleStore) Update(ctx context.Context, percentage float64) (FineRule, error) {
	if percentage < 0 || percentage > 100 {
		return FineRule{}, fmt.Errorf("billing: fine percentage out of range: %v", percentage)
	}
	now := time.Now()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fine_rules (id, percentage, updated_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET percentage = EXCLUDED.percentage, updated_at = EXCLUDED.updated_at`,
		percentage, now)
	if err != nil {
		return FineRule{}, fmt.Errorf("billing: update fine rule: %w", err)
	}
	if s.client != nil {
		if err := s.client.Del(ctx, fineRuleCacheKey).Err(); err != nil && s.logger != nil {
			s.logger.Warn("fine rule cache invalidate", slog.Any("error", err))
		}
	}
	return FineRule{Percentage: percentage, UpdatedAt: now}, nil
}
