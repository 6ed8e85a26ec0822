package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil QA service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingQAService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			QA: &mockQAService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil QA service returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingQAService)
	})

	t.Run("QA only is valid", func(t *testing.T) {
		ports := &Ports{
			QA: &mockQAService{},
		}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			QA:       &mockQAService{},
			Matching: &mockMatchingService{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_Tools(t *testing.T) {
	qaOnly, err := NewServer(&Ports{QA: &mockQAService{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ask", "retrieve", "index_status"}, qaOnly.Tools())

	full, err := NewServer(&Ports{QA: &mockQAService{}, Matching: &mockMatchingService{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ask", "retrieve", "index_status", "extract_skills"}, full.Tools())

	// Callers get a copy.
	tools := full.Tools()
	tools[0] = "changed"
	assert.Equal(t, "ask", full.Tools()[0])
}

func TestServer_Handler_RejectsPlainGet(t *testing.T) {
	server, err := NewServer(&Ports{QA: &mockQAService{}})
	require.NoError(t, err)

	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.GreaterOrEqual(t, resp.StatusCode, 400)
}

func TestServer_RunHTTP_StopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{QA: &mockQAService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}
