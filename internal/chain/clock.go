package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"liquidityPool/internal/retry"
)

// HeaderSource returns block headers; a nil number selects the head.
type HeaderSource interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// BlockClock reports the timestamp of the chain head. The reported time never
// moves backwards, even across head reorganizations.
type BlockClock struct {
	source HeaderSource
	policy retry.Policy
	logger *zap.Logger

	mu   sync.Mutex
	last uint64
}

func NewBlockClock(source HeaderSource, maxRetries int, backoff time.Duration, logger *zap.Logger) *BlockClock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlockClock{
		source: source,
		policy: retry.Policy{MaxRetries: maxRetries, BaseDelay: backoff},
		logger: logger,
	}
}

// Now returns the head block time.
func (c *BlockClock) Now(ctx context.Context) (time.Time, error) {
	var header *types.Header
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var err error
		header, err = c.source.HeaderByNumber(ctx, nil)
		if err != nil {
			c.logger.Warn("head header fetch failed", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("head header: %w", err)
	}
	if header == nil {
		return time.Time{}, fmt.Errorf("head header: empty response")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if header.Time > c.last {
		c.last = header.Time
	}
	return time.Unix(int64(c.last), 0).UTC(), nil
}
