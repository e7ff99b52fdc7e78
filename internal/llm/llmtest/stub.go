// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/resume-match/internal/llm"
)

// Call records the arguments of one GenerateJSON invocation
type Call struct {
	Prompt string
	Schema *llm.Schema
	Tier   llm.ModelTier
}

// Client answers every GenerateJSON call with Response and Err.
// If Hook is set it runs before answering, which lets tests observe or block
// an in-flight call.
type Client struct {
	Response string
	Err      error
	Hook     func(ctx context.Context)

	mu     sync.Mutex
	calls  []Call
	closed bool
}

var _ llm.Client = (*Client)(nil)

// GenerateJSON records the call and returns the scripted answer
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema *llm.Schema, tier llm.ModelTier) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Prompt: prompt, Schema: schema, Tier: tier})
	c.mu.Unlock()

	if c.Hook != nil {
		c.Hook(ctx)
	}
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}

// GetModel returns a fixed model name
func (c *Client) GetModel(tier llm.ModelTier) string {
	return "stub-" + string(tier)
}

// Close marks the client closed
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

// Calls returns a copy of the recorded calls
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Closed reports whether Close was called
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
