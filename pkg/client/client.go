// Package client provides a Go client for a running beams server.
//
// It covers the JSON endpoints (frame, stats, node inspection, orientation)
// and the binary WebSocket frame stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sanonone/beams/pkg/frame"
	"github.com/sanonone/beams/pkg/sim"
)

// --- Custom Errors ---

// APIError represents an error returned by the beams API (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// --- Client ---

// Client talks to one beams server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// jsonRequest executes one request, encoding payload and decoding the
// response into out when they are non-nil.
func (c *Client) jsonRequest(ctx context.Context, method, endpoint string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON payload: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(respBody, &errResp) == nil {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp["error"]}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.jsonRequest(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Frame fetches the current frame as JSON (full precision).
func (c *Client) Frame(ctx context.Context) (sim.Frame, error) {
	var f sim.Frame
	err := c.jsonRequest(ctx, http.MethodGet, "/frame", nil, &f)
	return f, err
}

// Stats fetches the simulation summary.
func (c *Client) Stats(ctx context.Context) (sim.Stats, error) {
	var s sim.Stats
	err := c.jsonRequest(ctx, http.MethodGet, "/stats", nil, &s)
	return s, err
}

// Node fetches the details of node i.
func (c *Client) Node(ctx context.Context, i int) (sim.NodeInfo, error) {
	var n sim.NodeInfo
	err := c.jsonRequest(ctx, http.MethodGet, fmt.Sprintf("/nodes/%d", i), nil, &n)
	return n, err
}

// Orientation fetches the current angles.
func (c *Client) Orientation(ctx context.Context) (sim.Angles, error) {
	var a sim.Angles
	err := c.jsonRequest(ctx, http.MethodGet, "/orientation", nil, &a)
	return a, err
}

// SetOrientation sets roll and yaw and returns the resulting angles.
func (c *Client) SetOrientation(ctx context.Context, roll, yaw float64) (sim.Angles, error) {
	var a sim.Angles
	payload := map[string]float64{"roll": roll, "yaw": yaw}
	err := c.jsonRequest(ctx, http.MethodPut, "/orientation", payload, &a)
	return a, err
}

// ErrStopStream can be returned by a Stream callback to end the stream
// without an error.
var ErrStopStream = errors.New("client: stop stream")

// Stream connects to the frame stream and calls fn for every decoded frame
// until ctx is cancelled, fn returns an error or the server closes the
// connection. Streamed frames carry half-precision positions.
func (c *Client) Stream(ctx context.Context, fn func(sim.Frame) error) error {
	url := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/stream"
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}
	defer ws.Close()

	// Unblock ReadMessage on cancellation.
	stop := context.AfterFunc(ctx, func() { ws.Close() })
	defer stop()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("stream read: %w", err)
		}

		op, payload, _, err := frame.ReadFrame(bytes.NewReader(msg))
		if err != nil {
			return fmt.Errorf("stream frame: %w", err)
		}
		if op != frame.OpSnapshot {
			continue
		}
		f, err := frame.Decode(payload)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			if errors.Is(err, ErrStopStream) {
				return nil
			}
			return err
		}
	}
}
