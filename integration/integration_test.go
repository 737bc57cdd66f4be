//go:build integration
// +build integration

// End-to-end exercise of the HTTP API: extract a book, start a session,
// play past the end of the extracted events, and end the session. Runs
// against an in-process server with memory storage and the templated
// generator, so no external services are needed.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/book-engine/internal/handlers"
	"github.com/jwebster45206/book-engine/internal/middleware"
	"github.com/jwebster45206/book-engine/internal/services"
	"github.com/jwebster45206/book-engine/pkg/knowledge"
	"github.com/jwebster45206/book-engine/pkg/session"
)

const bookText = `Chapter 1

Alex walked into the village square. "We have to warn them," Alex said.
Marcus said nothing at first. Marcus fought the urge to run. Alex fought
beside Marcus once, long ago, and Marcus feared what came next.

Chapter 2

Alex traveled to the Blackwood Forest. The trees closed in around the
narrow path. Marcus shouted threats across the valley.`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage := services.NewMemoryStorage()
	generator := services.NewFilteredGenerator(services.NewTemplateGenerator(log), "PG13")

	mux := http.NewServeMux()
	bookHandler := handlers.NewBookHandler(knowledge.NewEngine(nil), storage, log)
	mux.Handle("/v1/books", bookHandler)
	mux.Handle("/v1/books/", bookHandler)
	sessionHandler := handlers.NewSessionHandler(storage, generator, 10*time.Second, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)
	mux.Handle("/health", handlers.NewHealthHandler(storage, log))

	srv := httptest.NewServer(middleware.Logger(mux))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, expectedStatus int, out any) {
	t.Helper()
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, resp.StatusCode, "unexpected status, body: %s", body)
	require.NoError(t, json.Unmarshal(body, out))
}

func TestPlaythrough(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()

	resp, err := client.Get(srv.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var book knowledge.Book
	decode(t, postJSON(t, client, srv.URL+"/v1/books", map[string]string{
		"title": "The Blackwood Road",
		"text":  bookText,
	}), http.StatusCreated, &book)

	require.Contains(t, book.Characters, "Alex")
	require.Contains(t, book.Characters, "Marcus")
	require.NotEmpty(t, book.Events)
	totalEvents := len(book.Events)

	var state session.State
	decode(t, postJSON(t, client, srv.URL+"/v1/sessions", map[string]any{
		"book_id":     book.ID,
		"character":   "Alex",
		"start_index": 0,
		"language":    "en",
	}), http.StatusCreated, &state)

	require.NotEmpty(t, state.Choices)
	assert.Equal(t, session.StatusConfigured, state.Status)
	assert.Contains(t, state.Backstory, "Alex")

	// Play one turn per extracted event, then two more past the end of
	// the book to exercise synthesized events.
	turns := totalEvents + 2
	for i := 0; i < turns; i++ {
		var result session.TurnResult
		decode(t, postJSON(t, client,
			fmt.Sprintf("%s/v1/sessions/%s/action", srv.URL, state.SessionID),
			map[string]string{"action": state.Choices[0].ID},
		), http.StatusOK, &result)

		require.NotEmpty(t, result.Consequence)
		assert.Equal(t, i+1, result.State.Stats.TurnsTaken)
		assert.Equal(t, session.StatusActive, result.State.Status)
		state = result.State
	}
	assert.True(t, state.CurrentEvent.Synthesized)
	assert.GreaterOrEqual(t, state.CurrentEvent.SequenceIndex, totalEvents)

	// Session state survives a fresh read.
	resp, err = client.Get(fmt.Sprintf("%s/v1/sessions/%s", srv.URL, state.SessionID))
	require.NoError(t, err)
	var reread session.State
	decode(t, resp, http.StatusOK, &reread)
	assert.Equal(t, state.Stats.TurnsTaken, reread.Stats.TurnsTaken)
	assert.Equal(t, state.CurrentEvent.SequenceIndex, reread.CurrentEvent.SequenceIndex)

	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/v1/sessions/%s", srv.URL, state.SessionID), nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
