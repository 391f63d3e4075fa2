package session

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"cuentomagico/internal/library"
)

// Manager hands out sessions keyed by the session cookie. Idle sessions
// expire from the cache; their durable profile directory survives, so a
// returning visitor gets their library and bookmark back.
type Manager struct {
	cfg     Config
	dataDir string
	export  ExportFunc
	log     zerolog.Logger

	mu    sync.Mutex
	cache *cache.Cache
}

func NewManager(cfg Config, dataDir string, export ExportFunc, log zerolog.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		dataDir: dataDir,
		export:  export,
		log:     log,
		cache:   cache.New(24*time.Hour, 1*time.Hour),
	}
}

// Get returns the live session for id, constructing it from the profile
// directory when absent.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cached, found := m.cache.Get(id); found {
		sess := cached.(*Session)
		m.cache.Set(id, sess, cache.DefaultExpiration)
		return sess, nil
	}

	store, err := library.Open(filepath.Join(m.dataDir, id), m.log)
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}
	sess := New(id, m.cfg, store, m.export, m.log)
	m.cache.Set(id, sess, cache.DefaultExpiration)
	return sess, nil
}
