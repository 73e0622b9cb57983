package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/tether"
	filejournal "github.com/probelab/tether/internal/journal/file"
	"github.com/probelab/tether/pkg/ports"
	"github.com/probelab/tether/pkg/session"
)

func newServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	store := filejournal.New(t.TempDir())
	manager := session.NewManager(session.WithJournal(store))
	_, err := manager.Open("bench-1", func(id string) (*tether.Session, error) {
		return tether.New(id, tether.WithJournal(store))
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewHandler(manager, nil))
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = manager.CloseAll(ctx)
	})
	return srv, manager
}

func postCommand(t *testing.T, srv *httptest.Server, id, line string) (*http.Response, commandResponse) {
	t.Helper()
	body, err := json.Marshal(commandRequest{Line: line})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/v1/sessions/"+id+"/commands", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out commandResponse
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestHandler_Health(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_ListSessions(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/v1/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"bench-1"}, body["sessions"])
}

func TestHandler_SubmitCommand(t *testing.T) {
	srv, _ := newServer(t)

	resp, out := postCommand(t, srv, "bench-1", "echo via http")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "via http\n", out.Output)
	assert.Empty(t, out.Error)
}

// A failing command is still HTTP 200: the transport succeeded, the
// command did not.
func TestHandler_SubmitCommandError(t *testing.T) {
	srv, _ := newServer(t)

	resp, out := postCommand(t, srv, "bench-1", "definitely unknown")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, out.Error)
}

func TestHandler_SubmitUnknownSession(t *testing.T) {
	srv, _ := newServer(t)

	resp, _ := postCommand(t, srv, "nope", "echo x")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_SubmitBadBody(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/v1/sessions/bench-1/commands", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_SubmitToStoppedSession(t *testing.T) {
	srv, manager := newServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sess, err := manager.Get("bench-1")
	require.NoError(t, err)
	_, err = sess.Execute(ctx, "shutdown")
	require.NoError(t, err)
	<-sess.Done()

	resp, _ := postCommand(t, srv, "bench-1", "echo x")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandler_Journal(t *testing.T) {
	srv, _ := newServer(t)

	_, out := postCommand(t, srv, "bench-1", "echo keep this")
	require.Empty(t, out.Error)

	resp, err := http.Get(srv.URL + "/v1/sessions/bench-1/journal")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string][]ports.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body["records"], 1)
	assert.Equal(t, "echo keep this", body["records"][0].Line)
	assert.Equal(t, "keep this\n", body["records"][0].Output)
}

func TestHandler_JournalUnknownSession(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/v1/sessions/ghost/journal")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
