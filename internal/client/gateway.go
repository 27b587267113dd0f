package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskdesk.org/internal/todo"
)

// Gateway is the server-side collaborator the synchronization store talks
// to. The HTTP implementation below is the real one; tests substitute fakes.
type Gateway interface {
	Create(ctx context.Context, title, description string) (todo.Todo, error)
	List(ctx context.Context) ([]todo.Todo, error)
	Update(ctx context.Context, id string, patch todo.Patch) (todo.Todo, error)
	Delete(ctx context.Context, id string) error
}

// APIError is a non-2xx response from the server, carrying its stable
// message field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// HTTPGateway implements Gateway against the taskdesk API. The credential
// is sent verbatim in the Authorization header, so both real bearer tokens
// and the dev sentinel work.
type HTTPGateway struct {
	baseURL    string
	credential string
	client     *http.Client
}

func NewHTTPGateway(baseURL, credential string) *HTTPGateway {
	return &HTTPGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		credential: credential,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *HTTPGateway) Create(ctx context.Context, title, description string) (todo.Todo, error) {
	body := map[string]string{"title": title}
	if description != "" {
		body["description"] = description
	}
	var created todo.Todo
	if err := g.call(ctx, http.MethodPost, "/v1/todos", body, &created); err != nil {
		return todo.Todo{}, err
	}
	return created, nil
}

func (g *HTTPGateway) List(ctx context.Context) ([]todo.Todo, error) {
	var items []todo.Todo
	if err := g.call(ctx, http.MethodGet, "/v1/todos", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (g *HTTPGateway) Update(ctx context.Context, id string, patch todo.Patch) (todo.Todo, error) {
	var updated todo.Todo
	if err := g.call(ctx, http.MethodPut, "/v1/todos/"+id, patch, &updated); err != nil {
		return todo.Todo{}, err
	}
	return updated, nil
}

func (g *HTTPGateway) Delete(ctx context.Context, id string) error {
	return g.call(ctx, http.MethodDelete, "/v1/todos/"+id, nil, nil)
}

func (g *HTTPGateway) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", g.credential)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	}
	return apiErr
}
