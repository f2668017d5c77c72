package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_StartStop(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	// Port 0 binds an ephemeral port so tests never collide.
	s := NewServer(0, handler, nil, time.Second)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	select {
	case err := <-errCh:
		assert.NoError(t, err, "graceful shutdown is not an error")
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_HandlerAccessor(t *testing.T) {
	handler := http.NewServeMux()
	s := NewServer(8080, handler, nil, 0)
	assert.Equal(t, http.Handler(handler), s.Handler())
}
