// Package chain reads head block times from an EVM RPC endpoint.
package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is the RPC connection the block clock reads headers from.
type Client struct {
	eth     *ethclient.Client
	chainID *big.Int
}

// Dial connects to rpcURL and fetches the chain id, so a dead endpoint fails
// here rather than on the first deadline check.
func Dial(ctx context.Context, rpcURL string) (*Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	id, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	return &Client{eth: eth, chainID: id}, nil
}

// ChainID returns the id reported at dial time.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// HeaderByNumber returns the block header by number; nil means the head.
func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return c.eth.HeaderByNumber(ctx, number)
}

func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}
