package session_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuentomagico/internal/session"
)

func TestManagerReturnsSameSession(t *testing.T) {
	m := session.NewManager(defaultConfig(), t.TempDir(), nil, zerolog.Nop())

	a, err := m.Get("uno")
	require.NoError(t, err)
	b, err := m.Get("uno")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestManagerIsolatesProfiles(t *testing.T) {
	m := session.NewManager(defaultConfig(), t.TempDir(), nil, zerolog.Nop())

	a, err := m.Get("uno")
	require.NoError(t, err)
	b, err := m.Get("dos")
	require.NoError(t, err)
	require.NotSame(t, a, b)

	st := testStory(4)
	openReader(t, a, st)
	for i := 0; i < 3; i++ {
		require.NoError(t, a.Apply(session.NextPage{}))
	}

	assert.Empty(t, b.Library(), "stories never cross profiles")
	assert.Equal(t, session.ScreenLanding, b.State().Screen)
}
