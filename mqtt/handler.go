package mqtt

import (
	"context"
	"sync"

	"github.com/gonzalop/mqttv5/clientstate"
)

// HandlerClient wraps PollClient with a one-event resumable dispatch
// slot: if a caller's handler fails (e.g. a downstream queue was full,
// or the caller's own context was cancelled mid-handling), Pending
// returns the event that didn't finish processing so a caller can
// retry it after Run stops. This is only a within-process safety net:
// no event state is persisted across a restart, and Run itself still
// stops on the first handler error rather than retrying internally.
type HandlerClient struct {
	*PollClient

	mu      sync.Mutex
	pending *clientstate.ReceiveEvent
}

// NewHandlerClient wraps an already-constructed PollClient.
func NewHandlerClient(client *PollClient) *HandlerClient {
	return &HandlerClient{PollClient: client}
}

// Run adapts Handler's push model to HandlerClient's resumable pull
// model: each inbound event is buffered in pending until the caller's
// handler succeeds, so after a handler error (including ctx
// cancellation) stops Run, the event remains available through Pending.
// Run does not dispatch a pending event again on a later call.
func (h *HandlerClient) Run(ctx context.Context, handler Handler) error {
	return h.PollClient.Run(ctx, func(ctx context.Context, event *clientstate.ReceiveEvent) error {
		h.mu.Lock()
		h.pending = event
		h.mu.Unlock()

		if err := handler(ctx, event); err != nil {
			return err
		}

		h.mu.Lock()
		h.pending = nil
		h.mu.Unlock()
		return nil
	})
}

// Pending returns the most recently dispatched event whose handler has
// not yet returned successfully, or nil if none is outstanding.
func (h *HandlerClient) Pending() *clientstate.ReceiveEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending
}
