package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuentomagico/internal/generate"
)

func shortRetention(t *testing.T) {
	t.Helper()
	old := progressRetention
	progressRetention = 10 * time.Millisecond
	t.Cleanup(func() { progressRetention = old })
}

func TestReleaseProgressEvictsFinishedTracker(t *testing.T) {
	shortRetention(t)
	s := &Server{progress: make(map[string]*generate.Progress)}

	p := s.progressFor("uno", true)
	s.releaseProgress("uno", p)

	assert.Eventually(t, func() bool {
		_, ok := s.lookupProgress("uno")
		return !ok
	}, time.Second, 5*time.Millisecond, "finished tracker is evicted")
}

func TestReleaseProgressKeepsNewerTracker(t *testing.T) {
	shortRetention(t)
	s := &Server{progress: make(map[string]*generate.Progress)}

	first := s.progressFor("uno", true)
	s.releaseProgress("uno", first)
	second := s.progressFor("uno", true)

	time.Sleep(50 * time.Millisecond)
	got, ok := s.lookupProgress("uno")
	require.True(t, ok, "replacement survives the stale eviction")
	assert.Same(t, second, got)
}
