package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	Email string
	Conn  *websocket.Conn
}

// SessionEvent is pushed to the owning tutor's dashboard whenever their
// session changes lifecycle state.
type SessionEvent struct {
	TutorEmail string    `json:"-"`
	SessionID  uuid.UUID `json:"session_id"`
	Status     string    `json:"status"`
}

var clients = make(map[string]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Events = make(chan *SessionEvent, 16)

func init() {
	go RunHub()
}

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.Email)
			clientsMu.Lock()
			clients[client.Email] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.Email)
			clientsMu.Lock()
			if conn, ok := clients[client.Email]; ok && conn == client.Conn {
				delete(clients, client.Email)
			}
			clientsMu.Unlock()
		case event := <-Events:
			clientsMu.RLock()
			conn, ok := clients[event.TutorEmail]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("Error sending event to client %s: %v", event.TutorEmail, err)
				conn.Close()
				clientsMu.Lock()
				delete(clients, event.TutorEmail)
				clientsMu.Unlock()
			}
		}
	}
}

// NotifySessionStatus queues a status event for the tutor's live dashboard.
// Delivery is best effort; a tutor without an open socket misses nothing the
// next poll won't show.
func NotifySessionStatus(tutorEmail string, sessionID uuid.UUID, status string) {
	select {
	case Events <- &SessionEvent{TutorEmail: tutorEmail, SessionID: sessionID, Status: status}:
	default:
		log.Printf("Session event dropped for %s: hub backlog full", tutorEmail)
	}
}
