package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// BudgetChecker checks and records token usage per scope. A scope is usually a
// teacher id; requests without a teacher share the "anonymous" scope.
type BudgetChecker interface {
	// Check returns true if the scope has budget remaining.
	Check(ctx context.Context, scope string) (bool, error)
	// Record adds token usage to a scope.
	Record(ctx context.Context, scope string, tokens int) error
	// Usage returns current usage and the limit for a scope; a zero limit means
	// unlimited.
	Usage(ctx context.Context, scope string) (used int64, budget int64, err error)
}

// InMemoryBudget tracks usage in process memory. Counters reset on restart.
type InMemoryBudget struct {
	mu      sync.RWMutex
	limit   int64
	budgets map[string]int64 // scope -> override
	usage   map[string]int64 // scope -> tokens used
}

// NewInMemoryBudget creates a tracker where every scope gets limit tokens; zero
// means unlimited.
func NewInMemoryBudget(limit int64) *InMemoryBudget {
	return &InMemoryBudget{
		limit:   limit,
		budgets: make(map[string]int64),
		usage:   make(map[string]int64),
	}
}

// SetBudget overrides the limit for one scope.
func (b *InMemoryBudget) SetBudget(scope string, tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.budgets[scope] = tokens
}

func (b *InMemoryBudget) Check(_ context.Context, scope string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	budget := b.limitFor(scope)
	if budget <= 0 {
		return true, nil
	}
	return b.usage[scope] < budget, nil
}

func (b *InMemoryBudget) Record(_ context.Context, scope string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage[scope] += int64(tokens)
	return nil
}

func (b *InMemoryBudget) Usage(_ context.Context, scope string) (int64, int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.usage[scope], b.limitFor(scope), nil
}

func (b *InMemoryBudget) limitFor(scope string) int64 {
	if v, ok := b.budgets[scope]; ok {
		return v
	}
	return b.limit
}

// RedisBudget keeps usage counters in Redis so they survive restarts and are
// shared by every server instance.
type RedisBudget struct {
	client *redis.Client
	prefix string
	limit  int64
}

// NewRedisBudget creates a tracker storing counters under prefix+scope.
func NewRedisBudget(client *redis.Client, prefix string, limit int64) (*RedisBudget, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &RedisBudget{client: client, prefix: prefix, limit: limit}, nil
}

// Key returns the Redis key holding a scope's counter.
func (b *RedisBudget) Key(scope string) string {
	return b.prefix + scope
}

func (b *RedisBudget) Check(ctx context.Context, scope string) (bool, error) {
	if b.limit <= 0 {
		return true, nil
	}
	used, err := b.used(ctx, scope)
	if err != nil {
		return false, err
	}
	return used < b.limit, nil
}

func (b *RedisBudget) Record(ctx context.Context, scope string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}
	if err := b.client.IncrBy(ctx, b.Key(scope), int64(tokens)).Err(); err != nil {
		return fmt.Errorf("record usage for %s: %w", scope, err)
	}
	return nil
}

func (b *RedisBudget) Usage(ctx context.Context, scope string) (int64, int64, error) {
	used, err := b.used(ctx, scope)
	if err != nil {
		return 0, 0, err
	}
	return used, b.limit, nil
}

func (b *RedisBudget) used(ctx context.Context, scope string) (int64, error) {
	used, err := b.client.Get(ctx, b.Key(scope)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read usage for %s: %w", scope, err)
	}
	return used, nil
}
