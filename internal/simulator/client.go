package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/scorecard/internal/domain/course"
	"github.com/okian/scorecard/internal/domain/types"
)

// apiError is the error body returned by the server.
type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// client wraps http.Client with the calls the simulator needs.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *client) do(ctx context.Context, method, path string, body any, header http.Header, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		e := &apiError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, e)
		return e
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *client) health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil)
}

func (c *client) courses(ctx context.Context) ([]course.Course, error) {
	var out []course.Course
	err := c.do(ctx, http.MethodGet, "/courses", nil, nil, &out)
	return out, err
}

type startRequest struct {
	Players    []string `json:"players"`
	Pars       []int    `json:"pars,omitempty"`
	Course     string   `json:"course,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	OrderMode  string   `json:"order_mode,omitempty"`
}

type scoreRequest struct {
	Strokes   int    `json:"strokes"`
	RequestID string `json:"request_id,omitempty"`
}

func (c *client) start(ctx context.Context, req startRequest) (roundView, error) {
	var v roundView
	err := c.do(ctx, http.MethodPost, "/rounds", req, nil, &v)
	return v, err
}

func (c *client) record(ctx context.Context, id string, strokes int, requestID string) (roundView, error) {
	var v roundView
	err := c.do(ctx, http.MethodPost, "/rounds/"+id+"/scores", scoreRequest{Strokes: strokes, RequestID: requestID}, nil, &v)
	return v, err
}

func (c *client) edit(ctx context.Context, id string, playerID, hole, strokes int) (roundView, error) {
	var v roundView
	path := fmt.Sprintf("/rounds/%s/players/%d/holes/%d", id, playerID, hole)
	err := c.do(ctx, http.MethodPut, path, scoreRequest{Strokes: strokes}, nil, &v)
	return v, err
}

func (c *client) remove(ctx context.Context, id string, playerID int) (roundView, error) {
	var v roundView
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/rounds/%s/players/%d", id, playerID), nil, nil, &v)
	return v, err
}

func (c *client) result(ctx context.Context, id string) (types.ResultView, error) {
	var res types.ResultView
	err := c.do(ctx, http.MethodGet, "/rounds/"+id+"/result", nil, nil, &res)
	return res, err
}

func (c *client) discard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rounds/"+id, nil, nil, nil)
}
