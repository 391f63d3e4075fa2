// Package server exposes the session application API, the generation and
// checkout proxy endpoints, and the websocket progress stream.
package server

import (
	"embed"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"cuentomagico/internal/config"
	"cuentomagico/internal/export"
	"cuentomagico/internal/generate"
	"cuentomagico/internal/llm"
	"cuentomagico/internal/payment"
	"cuentomagico/internal/session"
)

//go:embed templates/index.html
var templateFS embed.FS

type Server struct {
	router    chi.Router
	cfg       *config.Config
	llm       llm.Client
	generator *generate.Generator
	sessions  *session.Manager
	bridge    payment.Bridge
	exporter  *export.Exporter
	templates *template.Template
	log       zerolog.Logger
	upgrader  websocket.Upgrader

	progressM sync.RWMutex
	progress  map[string]*generate.Progress
}

func New(cfg *config.Config, llmClient llm.Client, gen *generate.Generator, sessions *session.Manager, bridge payment.Bridge, exporter *export.Exporter, log zerolog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		llm:       llmClient,
		generator: gen,
		sessions:  sessions,
		bridge:    bridge,
		exporter:  exporter,
		templates: template.Must(template.ParseFS(templateFS, "templates/index.html")),
		log:       log,
		progress:  make(map[string]*generate.Progress),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()

	r.Use(s.requestLogger)
	r.Use(s.recovery)
	r.Use(corsMiddleware)
	r.Use(secureHeaders())
	r.Use(s.sessionCookie)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)

	// Generation routes share one rate limit per client IP.
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.cfg.GenerateRateLimit, time.Minute))
		r.Post("/generate-story", s.handleGenerateStory)
		r.Post("/api/generate", s.handleGenerate)
	})

	r.Post("/create-checkout-session", s.handleCreateCheckoutSession)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/start", s.event(session.Start{}))
		r.Post("/back", s.event(session.Back{}))
		r.Post("/read/start", s.event(session.StartReading{}))
		r.Post("/read/next", s.event(session.NextPage{}))
		r.Post("/read/prev", s.event(session.PrevPage{}))
		r.Post("/paywall/purchase", s.event(session.Purchase{}))
		r.Post("/paywall/cancel", s.event(session.CancelPaywall{}))
		r.Post("/payment/complete", s.event(session.PaymentCompleted{}))
		r.Post("/success/finish", s.event(session.FinishSuccess{}))
		r.Get("/library", s.handleLibraryList)
		r.Post("/library/open", s.event(session.OpenLibrary{}))
		r.Post("/library/select", s.handleLibrarySelect)
		r.Delete("/library/{id}", s.handleLibraryDelete)
		r.Get("/stories/{id}/pdf", s.handleDownload)
	})

	r.Get("/ws/{sessionID}", s.handleWebSocket)

	s.router = r
}

// progressFor returns the session's progress tracker, creating or
// resetting it when fresh is set.
func (s *Server) progressFor(sessionID string, fresh bool) *generate.Progress {
	s.progressM.Lock()
	defer s.progressM.Unlock()
	if p, ok := s.progress[sessionID]; ok && !fresh {
		return p
	}
	p := generate.NewProgress(sessionID)
	s.progress[sessionID] = p
	return p
}

func (s *Server) lookupProgress(sessionID string) (*generate.Progress, bool) {
	s.progressM.RLock()
	defer s.progressM.RUnlock()
	p, ok := s.progress[sessionID]
	return p, ok
}

// progressRetention keeps a finished tracker around long enough for a
// late subscriber to replay it before the entry is evicted.
var progressRetention = 10 * time.Minute

// releaseProgress schedules eviction of a finished tracker. A newer
// generation replaces the entry, so only the same pointer is removed.
func (s *Server) releaseProgress(sessionID string, p *generate.Progress) {
	time.AfterFunc(progressRetention, func() {
		s.progressM.Lock()
		defer s.progressM.Unlock()
		if s.progress[sessionID] == p {
			delete(s.progress, sessionID)
		}
	})
}
