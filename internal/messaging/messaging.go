// Package messaging carries typed requests between page-side components
// and the background relay. The transport is an in-process bus; the action
// names and payload shapes are the contract.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Action identifies a message on the bus.
type Action string

const (
	ActionSetBadgeText             Action = "setBadgeText"
	ActionSetTitle                 Action = "setTitle"
	ActionFetchImage               Action = "fetchImage"
	ActionFetchBandcamp            Action = "fetchBandcamp"
	ActionFetchDeezer              Action = "fetchDeezer"
	ActionFetchDiscogs             Action = "fetchDiscogs"
	ActionFetchDiscogsImageURL     Action = "fetchDiscogsImageUrl"
	ActionUpdateMissingArtworkURLs Action = "updateMissingArtworkUrls"
	ActionGetMissingArtworkURLs    Action = "getMissingArtworkUrls"
	ActionOpenAllMissingArtworks   Action = "openAllMissingArtworks"
)

// ErrNoHandler is returned by Send when no handler is registered for an
// action.
var ErrNoHandler = errors.New("no handler registered")

// Handler processes one request. Fire-and-forget actions return (nil, nil).
type Handler func(ctx context.Context, req any) (any, error)

// Bus routes requests to their registered handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Action]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[Action]Handler)}
}

// Handle registers the handler for an action. Registering the same action
// twice is a programming error.
func (b *Bus) Handle(action Action, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.handlers[action]; dup {
		panic(fmt.Sprintf("messaging: duplicate handler for %q", action))
	}
	b.handlers[action] = h
}

// Send dispatches a request and waits for the response.
func (b *Bus) Send(ctx context.Context, action Action, req any) (any, error) {
	b.mu.RLock()
	h, ok := b.handlers[action]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w for %q", ErrNoHandler, action)
	}
	return h(ctx, req)
}

// Request dispatches a request and asserts the response type.
func Request[Resp any](ctx context.Context, b *Bus, action Action, req any) (Resp, error) {
	var zero Resp
	raw, err := b.Send(ctx, action, req)
	if err != nil {
		return zero, err
	}
	resp, ok := raw.(Resp)
	if !ok {
		return zero, fmt.Errorf("unexpected response type %T for %q", raw, action)
	}
	return resp, nil
}

// Notify dispatches a fire-and-forget action, discarding any response.
func (b *Bus) Notify(ctx context.Context, action Action, req any) error {
	_, err := b.Send(ctx, action, req)
	return err
}
