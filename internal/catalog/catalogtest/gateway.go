// Package catalogtest provides an in-memory catalog gateway for tests.
package catalogtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
)

// Gateway answers requests from canned payloads. Unknown requests fail with
// catalog.ErrNotFound.
type Gateway struct {
	mu        sync.Mutex
	responses map[string]json.RawMessage
	errs      map[string]error
	calls     []catalog.Request
}

func NewGateway() *Gateway {
	return &Gateway{
		responses: make(map[string]json.RawMessage),
		errs:      make(map[string]error),
	}
}

// Key identifies a request independent of parameter order.
func Key(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + params[k]
	}
	return path + "?" + strings.Join(parts, "&")
}

// On registers the data payload returned for path and params.
func (g *Gateway) On(path string, params map[string]string, data string) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responses[Key(path, params)] = json.RawMessage(data)
	return g
}

// Fail registers the error returned for path and params.
func (g *Gateway) Fail(path string, params map[string]string, err error) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errs[Key(path, params)] = err
	return g
}

func (g *Gateway) Get(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, catalog.Request{Path: path, Params: params})
	key := Key(path, params)
	if err, ok := g.errs[key]; ok {
		return nil, err
	}
	if data, ok := g.responses[key]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", key, catalog.ErrNotFound)
}

// Calls returns the requests received so far.
func (g *Gateway) Calls() []catalog.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]catalog.Request(nil), g.calls...)
}

// MalformedError mimics a gateway error for a rejected request.
type MalformedError struct {
	Description string
}

func (e *MalformedError) Error() string   { return e.Description }
func (e *MalformedError) Malformed() bool { return true }
