package live

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/hirevox/hirevox/internal/hiring"
	"github.com/hirevox/hirevox/internal/rbac"
	"github.com/hirevox/hirevox/internal/session"
)

// Hub owns the live connections and builds one session controller per
// joined candidate. One session key has at most one active connection;
// a rejoin displaces the previous socket.
type Hub struct {
	store          hiring.Store
	gateway        session.Gateway
	mirror         session.Mirror
	readingSeconds int
	pauseSeconds   int
	logger         *log.Logger

	register   chan *Client
	unregister chan *Client
	clients    map[string]*Client // session key -> active client
}

func NewHub(store hiring.Store, gateway session.Gateway, mirror session.Mirror, readingSeconds, pauseSeconds int, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		store:          store,
		gateway:        gateway,
		mirror:         mirror,
		readingSeconds: readingSeconds,
		pauseSeconds:   pauseSeconds,
		logger:         logger,
		register:       make(chan *Client, 8),
		unregister:     make(chan *Client, 8),
		clients:        map[string]*Client{},
	}
}

// Run serializes connection registration. Call once, in its own
// goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for _, c := range h.clients {
				c.shutdown()
			}
			h.clients = map[string]*Client{}
			return
		case c := <-h.register:
			if prev, ok := h.clients[c.key]; ok && prev != c {
				h.logger.Printf("live: displacing previous connection for %s", c.key)
				prev.shutdown()
			}
			h.clients[c.key] = c
		case c := <-h.unregister:
			c.shutdown()
			if cur, ok := h.clients[c.key]; ok && cur == c {
				delete(h.clients, c.key)
			}
		}
	}
}

// join loads the round, builds the session controller, and binds it to
// the connection. Called from the client's read goroutine.
func (h *Hub) join(c *Client, p JoinPayload) error {
	if c.controller() != nil {
		return fmt.Errorf("already joined")
	}
	round, err := h.store.GetRound(p.RoundID)
	if err != nil {
		return fmt.Errorf("round not found")
	}
	if round.JobID != p.JobID {
		return fmt.Errorf("round does not belong to job")
	}
	questions, err := h.store.ListQuestions(round.ID)
	if err != nil || len(questions) == 0 {
		return fmt.Errorf("round has no questions")
	}

	var source *session.StreamSource
	cfg := session.Config{
		JobID:          p.JobID,
		RoundID:        p.RoundID,
		CandidateID:    c.candidateID,
		RoundType:      round.Type,
		RoundTitle:     round.Title,
		Questions:      questions,
		ReadingSeconds: h.readingSeconds,
		PauseSeconds:   h.pauseSeconds,
		Gate:           session.NewGate(session.NewReportedProber(p.Permissions)),
		Mirror:         h.mirror,
		Gateway:        h.gateway,
		Logger:         h.logger,
		Resume:         p.Resume,
	}
	if round.Type == hiring.RoundInterview {
		source = session.NewStreamSource(p.SpeechSupported)
		cfg.Source = source
	}

	ctrl, err := session.NewController(cfg)
	if err != nil {
		return err
	}

	key := session.SessionKey(string(round.Type), p.JobID, p.RoundID, c.candidateID)
	ctx, cancel := context.WithCancel(context.Background())
	c.bind(key, ctrl, source, cancel)
	go ctrl.Run(ctx)
	go c.forwardUpdates(ctx, ctrl, questions)
	h.register <- c

	c.sendMessage(MessageTypeJoined, JoinedPayload{
		SessionKey:    key,
		RoundType:     round.Type,
		RoundTitle:    round.Title,
		QuestionCount: len(questions),
	})
	c.sendMessage(MessageTypeSnapshot, ctrl.Snapshot())
	return nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS enforcement happens at the router; the browser's speech
		// relay needs cross-origin sockets during local development.
		return true
	},
}

// Handler upgrades /ws/session connections. Identity comes from the JWT
// middleware upstream.
func Handler(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidateID := rbac.SubjectFromContext(r.Context())
		if candidateID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Printf("live: upgrade failed: %v", err)
			return
		}
		c := newClient(h, conn, candidateID)
		go c.writePump()
		go c.readPump()
	}
}
