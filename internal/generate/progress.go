package generate

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type ProgressState string

const (
	StateInitialized ProgressState = "initialized"
	StateGenerating  ProgressState = "generating"
	StateCompleted   ProgressState = "completed"
	StateError       ProgressState = "error"
)

// LoadingMessages rotate on the generating screen while the model works.
var LoadingMessages = []string{
	"Mezclando ingredientes mágicos...",
	"Reuniendo a los personajes...",
	"Dibujando paisajes lejanos...",
	"Añadiendo pizcas de estrellas...",
	"Escribiendo el final feliz...",
}

// StreamMessage is one progress update pushed to the client.
type StreamMessage struct {
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Progress tracks one session's generation and mirrors updates to an
// attached websocket. Updates before a connection exists are kept so a
// late subscriber sees the history.
type Progress struct {
	mu        sync.Mutex
	sessionID string
	state     ProgressState
	conn      *websocket.Conn
	history   []StreamMessage
	startTime time.Time
}

func NewProgress(sessionID string) *Progress {
	return &Progress{
		sessionID: sessionID,
		state:     StateInitialized,
		startTime: time.Now(),
	}
}

func (p *Progress) SessionID() string { return p.sessionID }

func (p *Progress) State() ProgressState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Attach binds a websocket connection and replays the message history.
func (p *Progress) Attach(conn *websocket.Conn) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn = conn
	for _, msg := range p.history {
		if err := conn.WriteJSON(msg); err != nil {
			return err
		}
	}
	return nil
}

// Detach drops the websocket connection without closing the progress.
func (p *Progress) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn = nil
}

// Update moves to a new state and emits a message.
func (p *Progress) Update(state ProgressState, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state

	msg := StreamMessage{
		Type:      "update",
		Status:    string(state),
		Message:   message,
		Timestamp: time.Now(),
	}
	p.history = append(p.history, msg)
	if p.conn != nil {
		// A failed write only loses the live mirror; history remains.
		_ = p.conn.WriteJSON(msg)
	}
}

// Close sends a normal-closure frame if a connection is attached.
func (p *Progress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		_ = p.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = p.conn.Close()
		p.conn = nil
	}
}
