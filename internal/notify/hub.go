// Package notify pushes realtime events to CRM users over websockets. Its
// one event today is the inbound-call notification shown to the agent who
// answered a call from a known lead.
package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/onehash/smartflow-bridge/pkg/logging"
)

// EventInboundCall is the event type sent when a known lead calls in.
const EventInboundCall = "inbound_call_notification"

// Event is one websocket message pushed to a user.
type Event struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// InboundCallPayload identifies the calling lead for the agent's screen pop.
type InboundCallPayload struct {
	CallerNumber string `json:"caller_number"`
	LeadNumber   string `json:"lead_number"`
	LeadName     string `json:"lead_name"`
	LeadID       string `json:"lead_id"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The endpoint is JWT-gated; origin checks add nothing here.
		return true
	},
}

// Hub tracks websocket sessions per user id and delivers events to them.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*session]bool

	register   chan *session
	unregister chan *session
	done       chan struct{}
	closeOnce  sync.Once

	logger *logging.Logger
	now    func() time.Time
}

type session struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// NewHub creates a hub and starts its dispatch loop.
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	h := &Hub{
		sessions:   make(map[string]map[*session]bool),
		register:   make(chan *session),
		unregister: make(chan *session),
		done:       make(chan struct{}),
		logger:     logger,
		now:        time.Now,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case s := <-h.register:
			h.mu.Lock()
			if h.sessions[s.userID] == nil {
				h.sessions[s.userID] = make(map[*session]bool)
			}
			h.sessions[s.userID][s] = true
			h.mu.Unlock()
			h.logger.Info("notification session opened", "user_id", s.userID)

		case s := <-h.unregister:
			h.mu.Lock()
			if sessions, ok := h.sessions[s.userID]; ok {
				if _, exists := sessions[s]; exists {
					delete(sessions, s)
					close(s.send)
					if len(sessions) == 0 {
						delete(h.sessions, s.userID)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Info("notification session closed", "user_id", s.userID)

		case <-h.done:
			h.mu.Lock()
			for _, sessions := range h.sessions {
				for s := range sessions {
					close(s.send)
				}
			}
			h.sessions = make(map[string]map[*session]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Close shuts down the dispatch loop and drops all sessions.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// SendToUser delivers the event to every open session of one user. Returns
// the number of sessions reached; zero means the user is not connected.
func (h *Hub) SendToUser(userID string, eventType string, payload any) int {
	raw, err := json.Marshal(Event{Type: eventType, Payload: payload, Timestamp: h.now()})
	if err != nil {
		h.logger.Error("marshal notification failed", "type", eventType, "error", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.sessions[userID] {
		select {
		case s.send <- raw:
			delivered++
		default:
			// Slow consumer, drop the message rather than block the caller.
		}
	}
	return delivered
}

// ConnectedUsers returns the number of distinct users with open sessions.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Sessions returns the number of open sessions for one user.
func (h *Hub) Sessions(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

// ServeWS upgrades the request to a websocket and registers the session
// under userID. The caller resolves userID from the request's auth.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	s := &session{hub: h, conn: conn, send: make(chan []byte, 64), userID: userID}
	select {
	case h.register <- s:
	case <-h.done:
		// Hub already shut down; refuse the session instead of blocking.
		conn.Close()
		return
	}

	go s.writePump()
	go s.readPump()
}

const (
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	writeWait  = 10 * time.Second
)

// readPump discards inbound frames; the socket is push-only. It exists to
// process control frames and detect the peer going away.
func (s *session) readPump() {
	defer func() {
		select {
		case s.hub.unregister <- s:
		case <-s.hub.done:
		}
		s.conn.Close()
	}()
	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
