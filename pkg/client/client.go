// Package client is a Go client for the AgentList HTTP API.
//
// Credentials are passed to every call, so one Client can serve requests on
// behalf of several callers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/agentlist/pkg/models"
)

// Sentinel errors for transport failures. Server-side failures are
// returned as *APIError.
var (
	ErrUnreachable = errors.New("agentlist unreachable")
	ErrTimeout     = errors.New("agentlist request timeout")
)

// Credential authenticates one request.
type Credential struct {
	APIKey string
}

// APIError is the decoded error envelope of a failed request.
type APIError struct {
	StatusCode int             `json:"-"`
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Details    json.RawMessage `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("agentlist: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Summary repeats the per-agent counts of an upload in compact form.
type Summary struct {
	TotalAgents   int   `json:"total_agents"`
	ItemsPerAgent []int `json:"items_per_agent"`
}

// UploadResult is the response to a successful upload.
type UploadResult struct {
	BatchID       string              `json:"batch_id"`
	TotalItems    int                 `json:"total_items"`
	Distributions []models.AgentCount `json:"distributions"`
	Summary       Summary             `json:"summary"`
}

// CreateAgentRequest is the body of an agent create call.
type CreateAgentRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// DeleteAgentResult reports how many assignments went with the agent.
type DeleteAgentResult struct {
	ID                 uuid.UUID `json:"id"`
	AssignmentsRemoved int64     `json:"assignments_removed"`
}

// Client talks to one AgentList server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Upload streams the contents of src as a multipart upload named filename.
func (c *Client) Upload(ctx context.Context, cred Credential, filename string, src io.Reader) (*UploadResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, src)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/uploads", pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResult
	if err := c.do(req, cred, http.StatusCreated, &out); err != nil {
		pr.Close()
		return nil, err
	}
	return &out, nil
}

// ListDistributions returns every batch, newest first.
func (c *Client) ListDistributions(ctx context.Context, cred Credential) ([]*models.BatchSummary, error) {
	var out []*models.BatchSummary
	if err := c.get(ctx, cred, "/api/v1/distributions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDistribution returns one batch with its items grouped by agent.
func (c *Client) GetDistribution(ctx context.Context, cred Credential, batchID string) (*models.BatchDetail, error) {
	var out models.BatchDetail
	if err := c.get(ctx, cred, "/api/v1/distributions/"+url.PathEscape(batchID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAgents returns every agent.
func (c *Client) ListAgents(ctx context.Context, cred Credential) ([]*models.Agent, error) {
	var out []*models.Agent
	if err := c.get(ctx, cred, "/api/v1/agents", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAgent registers a new agent.
func (c *Client) CreateAgent(ctx context.Context, cred Credential, in CreateAgentRequest) (*models.Agent, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/agents", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out models.Agent
	if err := c.do(req, cred, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAgent removes an agent together with its assignments.
func (c *Client) DeleteAgent(ctx context.Context, cred Credential, id uuid.UUID) (*DeleteAgentResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/v1/agents/"+id.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	var out DeleteAgentResult
	if err := c.do(req, cred, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, cred Credential, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, cred, http.StatusOK, dst)
}

// do sends req and decodes the data envelope into dst.
func (c *Client) do(req *http.Request, cred Credential, want int, dst any) error {
	if cred.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cred.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeAPIError(resp)
	}

	env := struct {
		Data any `json:"data"`
	}{Data: dst}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var env struct {
		Error *APIError `json:"error"`
	}
	env.Error = apiErr
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || apiErr.Code == "" {
		apiErr.Code = "UNEXPECTED_RESPONSE"
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
