package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chessclient/internal/game"
)

func TestLegalMoves(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get_moves" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["source"] != "e2" || body["id"] != "g1" || body["orientation"] != "white" {
			t.Fatalf("unexpected body: %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"moves": []string{"e3", "e4"}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	moves, err := c.LegalMoves(context.Background(), "e2", "g1", game.White)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(moves) != 2 || moves[0] != "e3" || moves[1] != "e4" {
		t.Fatalf("unexpected moves: %v", moves)
	}
}

func TestSubmitMoveRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"valid": false})
	}))
	defer srv.Close()

	c := New(srv.URL)
	valid, err := c.SubmitMove(context.Background(), "e2", "e5", "g1")
	if err != nil {
		t.Fatalf("a rejection must not be an error: %v", err)
	}
	if valid {
		t.Fatalf("expected rejection")
	}
}

func TestSnapshotDecodesWireFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"board":       map[string]string{"e1": "wK", "e8": "bK"},
			"turn":        "black",
			"board_state": "check",
			"players":     []string{"alice", "bob"},
			"white_time":  61.5,
			"black_time":  40.0,
			"evaluation":  0.25,
			"end":         false,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	snap, err := c.Snapshot(context.Background(), "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Position["e1"] != "wK" || snap.Turn != game.Black || snap.Status != game.StatusCheck {
		t.Fatalf("snapshot decoded wrong: %+v", snap)
	}
	if snap.WhiteName() != "alice" || snap.BlackName() != "bob" {
		t.Fatalf("player names decoded wrong: %v", snap.Players)
	}
}

func TestNonSuccessStatusIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Snapshot(context.Background(), "g1")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if te.Status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", te.Status)
	}
}

func TestMalformedBodyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Turn(context.Background(), "g1")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
}

// A client built before the terminal takes over must log failures to
// wherever the global logger points now, not to the writer that was
// current at construction time.
func TestFailureLogsFollowLoggerRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	orig := log.Logger
	defer func() { log.Logger = orig }()

	var before, after bytes.Buffer
	log.Logger = zerolog.New(&before)
	c := New(srv.URL)
	log.Logger = zerolog.New(&after)

	_, _ = c.Snapshot(context.Background(), "g1")
	if before.Len() != 0 {
		t.Fatalf("error logged to the pre-redirect writer: %s", before.String())
	}
	if !strings.Contains(after.String(), "get_current_board") {
		t.Fatalf("error missing from the current writer: %s", after.String())
	}
}

func TestSendMessageIgnoresBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.SendMessage(context.Background(), "hi", "g1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
