package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chessclient/internal/game"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(NewHub(nil)).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path, body string, out any) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post %s: status %d", path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
}

func TestGetMovesForPawn(t *testing.T) {
	srv := newTestServer(t)
	var resp struct {
		Moves []string `json:"moves"`
	}
	postJSON(t, srv, "/get_moves", `{"source":"e2","id":"g1","orientation":"white"}`, &resp)
	if len(resp.Moves) != 2 {
		t.Fatalf("expected two pawn moves from e2, got %v", resp.Moves)
	}
	found := map[string]bool{}
	for _, m := range resp.Moves {
		found[m] = true
	}
	if !found["e3"] || !found["e4"] {
		t.Fatalf("expected e3 and e4, got %v", resp.Moves)
	}
}

func TestMoveVerdicts(t *testing.T) {
	srv := newTestServer(t)
	var resp struct {
		Valid bool `json:"valid"`
	}
	postJSON(t, srv, "/move", `{"source":"e2","destination":"e5","id":"g1"}`, &resp)
	if resp.Valid {
		t.Fatalf("e2e5 must be rejected")
	}
	postJSON(t, srv, "/move", `{"source":"e2","destination":"e4","id":"g1"}`, &resp)
	if !resp.Valid {
		t.Fatalf("e2e4 must be accepted")
	}

	var turn struct {
		Turn game.Color `json:"turn"`
	}
	postJSON(t, srv, "/get_turn", `{"id":"g1"}`, &turn)
	if turn.Turn != game.Black {
		t.Fatalf("expected black to move after e2e4, got %q", turn.Turn)
	}
}

func TestSnapshotReflectsMoves(t *testing.T) {
	srv := newTestServer(t)
	var verdict struct {
		Valid bool `json:"valid"`
	}
	postJSON(t, srv, "/move", `{"source":"e2","destination":"e4","id":"g2"}`, &verdict)

	var snap game.Snapshot
	postJSON(t, srv, "/get_current_board", `{"id":"g2"}`, &snap)
	if snap.Position["e4"] != "wP" {
		t.Fatalf("expected wP on e4, got %q", snap.Position["e4"])
	}
	if snap.Position.Occupied("e2") {
		t.Fatalf("e2 should be empty after the move")
	}
	if snap.Turn != game.Black || snap.End {
		t.Fatalf("unexpected snapshot: turn=%q end=%v", snap.Turn, snap.End)
	}
	if len(snap.Position) != 32 {
		t.Fatalf("expected 32 pieces, got %d", len(snap.Position))
	}
}

func TestCheckStatus(t *testing.T) {
	srv := newTestServer(t)
	var verdict struct {
		Valid bool `json:"valid"`
	}
	// 1. e3 d6 2. Bb5+
	for _, m := range []string{
		`{"source":"e2","destination":"e3","id":"g3"}`,
		`{"source":"d7","destination":"d6","id":"g3"}`,
		`{"source":"f1","destination":"b5","id":"g3"}`,
	} {
		postJSON(t, srv, "/move", m, &verdict)
		if !verdict.Valid {
			t.Fatalf("setup move rejected: %s", m)
		}
	}

	var snap game.Snapshot
	postJSON(t, srv, "/get_current_board", `{"id":"g3"}`, &snap)
	if snap.Status != game.StatusCheck {
		t.Fatalf("expected check, got %q", snap.Status)
	}
}

func TestCheckmateEndsGame(t *testing.T) {
	srv := newTestServer(t)
	var verdict struct {
		Valid bool `json:"valid"`
	}
	// Fool's mate: 1. f3 e5 2. g4 Qh4#
	for _, m := range []string{
		`{"source":"f2","destination":"f3","id":"g4"}`,
		`{"source":"e7","destination":"e5","id":"g4"}`,
		`{"source":"g2","destination":"g4","id":"g4"}`,
		`{"source":"d8","destination":"h4","id":"g4"}`,
	} {
		postJSON(t, srv, "/move", m, &verdict)
		if !verdict.Valid {
			t.Fatalf("setup move rejected: %s", m)
		}
	}

	var snap game.Snapshot
	postJSON(t, srv, "/get_current_board", `{"id":"g4"}`, &snap)
	if snap.Status != game.StatusCheckmate {
		t.Fatalf("expected checkmate, got %q", snap.Status)
	}
	if !snap.End {
		t.Fatalf("checkmate must end the game")
	}
}

func TestChatResetSemantics(t *testing.T) {
	srv := newTestServer(t)
	for _, msg := range []string{"hi", "hello", "glhf"} {
		postJSON(t, srv, "/send_message", `{"message":"`+msg+`","id":"g5"}`, nil)
	}

	var resp struct {
		Messages []game.ChatMessage `json:"messages"`
	}
	postJSON(t, srv, "/get_messages", `{"id":"g5","reset":true}`, &resp)
	if len(resp.Messages) != 3 {
		t.Fatalf("reset pull should return full history, got %v", resp.Messages)
	}
	if resp.Messages[0].Content != "hi" || resp.Messages[2].Content != "glhf" {
		t.Fatalf("messages out of order: %v", resp.Messages)
	}

	postJSON(t, srv, "/get_messages", `{"id":"g5","reset":false}`, &resp)
	if len(resp.Messages) != 0 {
		t.Fatalf("incremental pull after reset should be empty, got %v", resp.Messages)
	}

	postJSON(t, srv, "/send_message", `{"message":"gg","id":"g5"}`, nil)
	postJSON(t, srv, "/get_messages", `{"id":"g5","reset":false}`, &resp)
	if len(resp.Messages) != 1 || resp.Messages[0].Content != "gg" {
		t.Fatalf("incremental pull should return only unseen messages, got %v", resp.Messages)
	}
}

func TestUsernameValidation(t *testing.T) {
	srv := newTestServer(t)
	cases := []struct {
		name  string
		valid bool
	}{
		{"al", false},
		{"alice", true},
		{"way_too_long_username", false},
		{"bad name!", false},
	}
	for _, tc := range cases {
		var resp struct {
			Valid   bool   `json:"valid"`
			Message string `json:"message"`
		}
		postJSON(t, srv, "/is_valid_username", `{"username":"`+tc.name+`"}`, &resp)
		if resp.Valid != tc.valid {
			t.Fatalf("username %q: valid=%v, want %v", tc.name, resp.Valid, tc.valid)
		}
		if !tc.valid && resp.Message == "" {
			t.Fatalf("invalid username %q must carry a hint message", tc.name)
		}
	}
}
