package generate_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuentomagico/internal/generate"
)

func TestProgressStateTransitions(t *testing.T) {
	p := generate.NewProgress("abc")
	assert.Equal(t, "abc", p.SessionID())
	assert.Equal(t, generate.StateInitialized, p.State())

	p.Update(generate.StateGenerating, "Mezclando ingredientes mágicos...")
	assert.Equal(t, generate.StateGenerating, p.State())

	p.Update(generate.StateCompleted, "listo")
	assert.Equal(t, generate.StateCompleted, p.State())
}

func TestProgressReplaysHistoryToLateSubscriber(t *testing.T) {
	p := generate.NewProgress("late")
	p.Update(generate.StateGenerating, "primero")
	p.Update(generate.StateGenerating, "segundo")

	received := make(chan generate.StreamMessage, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{}
		conn, err := up.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		require.NoError(t, p.Attach(conn))
		p.Update(generate.StateCompleted, "tercero")
		p.Detach()
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < 3; i++ {
		var msg generate.StreamMessage
		conn.SetReadDeadline(time.Now().Add(time.Second))
		require.NoError(t, conn.ReadJSON(&msg))
		received <- msg
	}
	close(received)

	var messages []string
	for msg := range received {
		assert.Equal(t, "update", msg.Type)
		messages = append(messages, msg.Message)
	}
	assert.Equal(t, []string{"primero", "segundo", "tercero"}, messages)
}
