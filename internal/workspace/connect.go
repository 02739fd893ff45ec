package workspace

import "github.com/rebeliceyang/pgtabs/internal/models"

// ConnectRequest is one in-flight connection open.
type ConnectRequest struct {
	ID        uint64
	Config    models.ConnectionConfig
	Name      string
	cancelled bool
}

// Cancelled reports whether the user gave up on this request.
func (r *ConnectRequest) Cancelled() bool {
	return r.cancelled
}

// Connector tracks pending connection opens. Cancelling only flags the
// request; the dial itself keeps running and its result is discarded.
type Connector struct {
	next    uint64
	pending map[uint64]*ConnectRequest
}

func NewConnector() *Connector {
	return &Connector{pending: make(map[uint64]*ConnectRequest)}
}

// Begin registers a new request.
func (c *Connector) Begin(cfg models.ConnectionConfig, name string) *ConnectRequest {
	c.next++
	req := &ConnectRequest{ID: c.next, Config: cfg, Name: name}
	c.pending[req.ID] = req
	return req
}

// Cancel flags a pending request. It reports whether the request was pending.
func (c *Connector) Cancel(id uint64) bool {
	req, ok := c.pending[id]
	if !ok || req.cancelled {
		return false
	}
	req.cancelled = true
	return true
}

// Complete removes a request and reports whether its result should be applied.
func (c *Connector) Complete(id uint64) (*ConnectRequest, bool) {
	req, ok := c.pending[id]
	if !ok {
		return nil, false
	}
	delete(c.pending, id)
	return req, !req.cancelled
}

// Pending returns the number of requests still waiting for completion.
func (c *Connector) Pending() int {
	return len(c.pending)
}
