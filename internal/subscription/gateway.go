// Package subscription implements the Subscription Gateway (spec.md §4.F):
// per-client, reference-counted job subscriptions and real-time fan-out of
// events the Event Aggregator forwards.
package subscription

import (
	"sync"

	"github.com/samber/lo"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

const sendBuffer = 64

type client struct {
	send chan port.WireMessage
	jobs map[uuid.UUID]int // refcount per subscribed job id
}

// Gateway tracks every connected client's job-subscription set and the
// per-job fan-out rooms derived from it. All operations are safe for
// concurrent use; a single mutex is sufficient since subscribe/unsubscribe
// volume is orders of magnitude lower than the aggregator's forward rate
// the lock only needs to be held for map bookkeeping, never while sending.
type Gateway struct {
	mu      sync.Mutex
	clients map[string]*client
	rooms   map[uuid.UUID]map[string]struct{}
}

var _ port.Broadcaster = (*Gateway)(nil)

func New() *Gateway {
	return &Gateway{
		clients: make(map[string]*client),
		rooms:   make(map[uuid.UUID]map[string]struct{}),
	}
}

// Register connects a new client and returns the channel it should read
// forwarded/broadcast messages from. The channel is closed by Disconnect.
func (g *Gateway) Register(clientID string) <-chan port.WireMessage {
	g.mu.Lock()
	defer g.mu.Unlock()

	c := &client{send: make(chan port.WireMessage, sendBuffer), jobs: make(map[uuid.UUID]int)}
	g.clients[clientID] = c
	return c.send
}

// Subscribe increments clientID's reference count for each job id; ids
// whose count transitions 0->1 join that job's fan-out room.
func (g *Gateway) Subscribe(clientID string, jobIDs []uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.clients[clientID]
	if !ok {
		return
	}
	for _, id := range jobIDs {
		c.jobs[id]++
		if c.jobs[id] == 1 {
			g.join(clientID, id)
		}
	}
}

// Unsubscribe decrements clientID's reference count for each job id; ids
// whose count transitions 1->0 leave that job's fan-out room.
func (g *Gateway) Unsubscribe(clientID string, jobIDs []uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.clients[clientID]
	if !ok {
		return
	}
	for _, id := range jobIDs {
		if c.jobs[id] == 0 {
			continue
		}
		c.jobs[id]--
		if c.jobs[id] == 0 {
			delete(c.jobs, id)
			g.leave(clientID, id)
		}
	}
}

// Disconnect clears every reference count clientID held, leaves every room
// it was in, and closes its send channel. Closing the connection is the
// sole cancellation mechanism (spec.md §4.F).
func (g *Gateway) Disconnect(clientID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.clients[clientID]
	if !ok {
		return
	}
	for id := range c.jobs {
		g.leave(clientID, id)
	}
	delete(g.clients, clientID)
	close(c.send)
}

// Forward delivers msg to every client currently subscribed to jobID's
// room. A client whose send buffer is full is dropped for this message
// rather than blocking the aggregator (spec.md §5: database updates are
// never gated on live client presence, and neither is fan-out to others).
func (g *Gateway) Forward(jobID uuid.UUID, msg port.WireMessage) {
	msg.JobID = jobID
	g.mu.Lock()
	room := g.rooms[jobID]
	recipients := make([]chan port.WireMessage, 0, len(room))
	for clientID := range room {
		recipients = append(recipients, g.clients[clientID].send)
	}
	g.mu.Unlock()

	for _, send := range recipients {
		select {
		case send <- msg:
		default:
		}
	}
}

// Broadcast delivers msg to every connected client regardless of job
// subscription (spec.md §4.F "global broadcasts... reach every connected
// client").
func (g *Gateway) Broadcast(msg port.WireMessage) {
	g.mu.Lock()
	recipients := lo.MapToSlice(g.clients, func(_ string, c *client) chan port.WireMessage { return c.send })
	g.mu.Unlock()

	for _, send := range recipients {
		select {
		case send <- msg:
		default:
		}
	}
}

func (g *Gateway) join(clientID string, jobID uuid.UUID) {
	room, ok := g.rooms[jobID]
	if !ok {
		room = make(map[string]struct{})
		g.rooms[jobID] = room
	}
	room[clientID] = struct{}{}
}

func (g *Gateway) leave(clientID string, jobID uuid.UUID) {
	room, ok := g.rooms[jobID]
	if !ok {
		return
	}
	delete(room, clientID)
	if len(room) == 0 {
		delete(g.rooms, jobID)
	}
}
