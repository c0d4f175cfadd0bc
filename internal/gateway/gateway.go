// Package gateway is the typed request/response wrapper around the
// game server's endpoints. Every call is a single JSON POST round
// trip; a network failure, a non-2xx status or an undecodable body
// becomes a *TransportError, logged here and returned. Callers must
// treat a failed call as "no new information", never as a verdict.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"chessclient/internal/game"
)

// TransportError wraps any failure to complete a round trip.
type TransportError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway %s: http %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("gateway %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client issues requests against one server base URL. It carries no
// retry policy and no timeout beyond the transport's defaults.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New creates a gateway client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{},
	}
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return c.fail(path, 0, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return c.fail(path, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return c.fail(path, 0, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(path, resp.StatusCode, nil)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.fail(path, 0, err)
	}
	return nil
}

// fail logs through the global logger at call time, so a redirect of
// log.Logger (the terminal belongs to the board once the UI starts)
// applies to clients constructed before it.
func (c *Client) fail(path string, status int, err error) error {
	te := &TransportError{Endpoint: path, Status: status, Err: err}
	log.Error().Str("component", "gateway").Str("endpoint", path).Int("status", status).Err(err).Msg("request failed")
	return te
}

// LegalMoves asks the server for the legal destination squares of the
// piece on source.
func (c *Client) LegalMoves(ctx context.Context, source, gameID string, orientation game.Color) ([]string, error) {
	var resp struct {
		Moves []string `json:"moves"`
	}
	body := map[string]any{"source": source, "id": gameID, "orientation": orientation}
	if err := c.post(ctx, "/get_moves", body, &resp); err != nil {
		return nil, err
	}
	return resp.Moves, nil
}

// SubmitMove attempts the move on the server. A false result is a
// normal rejection, not an error.
func (c *Client) SubmitMove(ctx context.Context, source, destination, gameID string) (bool, error) {
	var resp struct {
		Valid bool `json:"valid"`
	}
	body := map[string]any{"source": source, "destination": destination, "id": gameID}
	if err := c.post(ctx, "/move", body, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

// Snapshot fetches the authoritative full game state.
func (c *Client) Snapshot(ctx context.Context, gameID string) (*game.Snapshot, error) {
	var snap game.Snapshot
	if err := c.post(ctx, "/get_current_board", map[string]any{"id": gameID}, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Turn fetches the side to move.
func (c *Client) Turn(ctx context.Context, gameID string) (game.Color, error) {
	var resp struct {
		Turn game.Color `json:"turn"`
	}
	if err := c.post(ctx, "/get_turn", map[string]any{"id": gameID}, &resp); err != nil {
		return "", err
	}
	return resp.Turn, nil
}

// Messages fetches chat messages. With reset the server returns the
// full history; otherwise only messages not yet delivered.
func (c *Client) Messages(ctx context.Context, gameID string, reset bool) ([]game.ChatMessage, error) {
	var resp struct {
		Messages []game.ChatMessage `json:"messages"`
	}
	body := map[string]any{"id": gameID, "reset": reset}
	if err := c.post(ctx, "/get_messages", body, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendMessage posts a chat message. Fire-and-forget from the UI's
// perspective; there is no retry.
func (c *Client) SendMessage(ctx context.Context, content, gameID string) error {
	return c.post(ctx, "/send_message", map[string]any{"message": content, "id": gameID}, nil)
}

// ValidateUsername runs the login-time username check and returns the
// verdict with the server's hint message.
func (c *Client) ValidateUsername(ctx context.Context, username string) (bool, string, error) {
	var resp struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}
	if err := c.post(ctx, "/is_valid_username", map[string]any{"username": username}, &resp); err != nil {
		return false, "", err
	}
	return resp.Valid, resp.Message, nil
}
