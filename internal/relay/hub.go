package relay

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// ClientType classifies a connected client by the output view it drives.
type ClientType string

const (
	TypeControl    ClientType = "control"
	TypeOBSFull    ClientType = "obs-full"
	TypeOBSMedia   ClientType = "obs-media"
	TypeOBSTitrage ClientType = "obs-titrage"
)

// ClassifyPathname maps a client-declared pathname to its type. Anything
// unrecognized (or empty) is a control client.
func ClassifyPathname(pathname string) ClientType {
	switch pathname {
	case "/obs":
		return TypeOBSFull
	case "/obs-media":
		return TypeOBSMedia
	case "/obs-titrage":
		return TypeOBSTitrage
	default:
		return TypeControl
	}
}

// Message is the named-event envelope exchanged over the realtime channel.
type Message struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// Client is one connection tracked by the hub. The transport layer drains
// Send and owns the underlying socket; the hub owns registry membership.
type Client struct {
	ID         string
	Type       ClientType
	LastActive time.Time

	registered bool
	send       chan Message
}

// Send returns the channel the transport drains to deliver hub messages.
// The channel is closed when the client disconnects.
func (c *Client) Send() <-chan Message { return c.send }

// deliver is non-blocking: a client that stopped draining drops messages
// instead of stalling the hub. The next roster snapshot resynchronizes it.
func (c *Client) deliver(msg Message) {
	select {
	case c.send <- msg:
	default:
	}
}

// NewClientID generates a ULID-based connection identifier.
func NewClientID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// Hub is the process-wide broadcast relay. It tracks connected clients,
// classifies them on register, fans out on-air updates, and derives the
// aggregate OBS output liveness from the registered roster. The channel
// carries no authentication: any connected socket may register as any
// type. A known limitation, acceptable for the trusted-LAN deployments
// this tool targets.
type Hub struct {
	mu      sync.Mutex
	log     zerolog.Logger
	conns   map[string]*Client // every connection, registered or not
	clients map[string]*Client // registered subset, basis of roster/status
	scene   map[string]any     // last on-air payload, for HTTP pull resync
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:     log,
		conns:   make(map[string]*Client),
		clients: make(map[string]*Client),
		scene:   map[string]any{},
	}
}

// Connect adds a new unregistered connection and greets it with a hello
// snapshot of the current roster. The hello goes to this client only; the
// roster broadcast happens when the client registers.
func (h *Hub) Connect() *Client {
	c := &Client{
		ID:         NewClientID(),
		Type:       TypeControl,
		LastActive: time.Now(),
		send:       make(chan Message, 32),
	}

	h.mu.Lock()
	h.conns[c.ID] = c
	roster := h.rosterLocked()
	h.mu.Unlock()

	c.deliver(Message{Event: "hello", Data: map[string]any{
		"msg":           "connected",
		"clientId":      c.ID,
		"activeClients": roster,
	}})
	h.log.Debug().Str("client", c.ID).Msg("relay: client connected")
	return c
}

// Register classifies the client from its declared pathname, adds it to
// the roster and broadcasts the new roster plus recomputed OBS status to
// every connection, the registering client included.
func (h *Hub) Register(c *Client, pathname string) {
	h.mu.Lock()
	c.Type = ClassifyPathname(pathname)
	c.LastActive = time.Now()
	c.registered = true
	h.clients[c.ID] = c
	h.broadcastRosterLocked()
	h.mu.Unlock()

	h.log.Info().Str("client", c.ID).Str("type", string(c.Type)).Msg("relay: client registered")
}

// Disconnect removes the connection, closes its send channel and
// broadcasts the shrunken roster and recomputed OBS status to the
// remaining clients. Safe to call more than once.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	if _, ok := h.conns[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, c.ID)
	delete(h.clients, c.ID)
	close(c.send)
	if c.registered {
		h.broadcastRosterLocked()
	}
	h.mu.Unlock()

	h.log.Debug().Str("client", c.ID).Msg("relay: client disconnected")
}

// OnAirUpdate stamps the payload with a server timestamp and the sender's
// connection id, retains it as the current scene and broadcasts it to all
// connections, the sender included. Receivers self-filter their own echo
// by sourceClientId.
func (h *Hub) OnAirUpdate(c *Client, payload map[string]any) {
	stamped := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		stamped[k] = v
	}
	stamped["timestamp"] = time.Now().UnixMilli()
	stamped["sourceClientId"] = c.ID

	h.mu.Lock()
	c.LastActive = time.Now()
	h.scene = stamped
	h.broadcastLocked(Message{Event: "obs:update", Data: stamped})
	h.mu.Unlock()
}

// Broadcast pushes an arbitrary named event to every connection. HTTP
// handlers use this to notify clients of scene and settings changes.
func (h *Hub) Broadcast(event string, data map[string]any) {
	h.mu.Lock()
	h.broadcastLocked(Message{Event: event, Data: data})
	h.mu.Unlock()
}

// SetScene replaces the retained on-air payload. Used by the HTTP bridge
// when a scene update originates outside the socket channel.
func (h *Hub) SetScene(payload map[string]any) {
	h.mu.Lock()
	h.scene = payload
	h.mu.Unlock()
}

// Scene returns the last on-air payload, empty before the first update.
func (h *Hub) Scene() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]any, len(h.scene))
	for k, v := range h.scene {
		out[k] = v
	}
	return out
}

// Status returns the current OBS output liveness flags.
func (h *Hub) Status() (media, titrage bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.statusLocked()
}

func (h *Hub) broadcastLocked(msg Message) {
	for _, c := range h.conns {
		c.deliver(msg)
	}
}

// broadcastRosterLocked sends clients:update and obs:status to everyone.
// Both are recomputed from scratch on every roster change.
func (h *Hub) broadcastRosterLocked() {
	roster := h.rosterLocked()
	h.broadcastLocked(Message{Event: "clients:update", Data: map[string]any{
		"count":   len(roster),
		"clients": roster,
	}})

	media, titrage := h.statusLocked()
	h.broadcastLocked(Message{Event: "obs:status", Data: map[string]any{
		"media":   media,
		"titrage": titrage,
	}})
}

func (h *Hub) rosterLocked() []map[string]any {
	roster := make([]map[string]any, 0, len(h.clients))
	for _, c := range h.clients {
		roster = append(roster, map[string]any{
			"id":         c.ID,
			"type":       string(c.Type),
			"lastActive": c.LastActive.UnixMilli(),
		})
	}
	return roster
}

func (h *Hub) statusLocked() (media, titrage bool) {
	for _, c := range h.clients {
		switch c.Type {
		case TypeOBSFull:
			media, titrage = true, true
		case TypeOBSMedia:
			media = true
		case TypeOBSTitrage:
			titrage = true
		}
	}
	return media, titrage
}
