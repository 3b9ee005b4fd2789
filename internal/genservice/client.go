// Package genservice is the HTTP client for the hosted generation and
// storage service. The service works asynchronously: start returns a job
// identifier immediately and the caller polls status until the job reaches a
// terminal state.
package genservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"webforge/internal/models"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Job is the wire shape of a generation job's status.
type Job struct {
	ID            string           `json:"id"`
	Status        models.JobStatus `json:"status"`
	Error         string           `json:"error,omitempty"`
	ResultSummary string           `json:"resultSummary,omitempty"`
	// ChangedFiles is display-only ("files touched"); it never substitutes
	// for the full get_files reload.
	ChangedFiles []string `json:"changedFiles,omitempty"`
}

type StartRequest struct {
	ProjectID        uint     `json:"projectId"`
	Mode             string   `json:"mode"`
	Prompt           string   `json:"prompt"`
	Assets           []string `json:"assets,omitempty"`
	Theme            string   `json:"theme,omitempty"`
	UserInstructions string   `json:"userInstructions,omitempty"`
	Images           []string `json:"images,omitempty"`
}

const (
	ChatKindMessage     = "message"
	ChatKindPlan        = "plan"
	ChatKindAssetPicker = "asset_picker"
)

type ChatRequest struct {
	ProjectID    uint              `json:"projectId"`
	Prompt       string            `json:"prompt"`
	CurrentFiles map[string]string `json:"currentFiles"`
	Images       []string          `json:"images,omitempty"`
}

type ChatAsset struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Label string `json:"label"`
}

type ChatResult struct {
	Kind      string      `json:"mode"`
	Message   string      `json:"message,omitempty"`
	PlanSteps []string    `json:"planSteps,omitempty"`
	Assets    []ChatAsset `json:"assets,omitempty"`
}

type serviceError struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/builder", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("generation service request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var svcErr serviceError
		if json.Unmarshal(raw, &svcErr) == nil && svcErr.Error != "" {
			return fmt.Errorf("generation service: %s", svcErr.Error)
		}
		return fmt.Errorf("generation service: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Start submits work to the service and returns the job identifier.
func (c *Client) Start(ctx context.Context, req StartRequest) (string, error) {
	payload := struct {
		Action string `json:"action"`
		StartRequest
	}{Action: "start", StartRequest: req}

	var out struct {
		JobID string `json:"jobId"`
	}
	if err := c.do(ctx, payload, &out); err != nil {
		return "", err
	}
	if out.JobID == "" {
		return "", fmt.Errorf("generation service returned no job id")
	}
	return out.JobID, nil
}

func (c *Client) Status(ctx context.Context, jobID string) (*Job, error) {
	payload := map[string]string{"action": "status", "jobId": jobID}
	var out struct {
		Job Job `json:"job"`
	}
	if err := c.do(ctx, payload, &out); err != nil {
		return nil, err
	}
	return &out.Job, nil
}

// GetFiles reloads every file path the service persisted for the project.
// The wire format is an unordered map, so paths are sorted for a
// deterministic FileSet order.
func (c *Client) GetFiles(ctx context.Context, projectID uint) (*models.FileSet, error) {
	payload := struct {
		Action    string `json:"action"`
		ProjectID uint   `json:"projectId"`
	}{Action: "get_files", ProjectID: projectID}

	var out struct {
		Files map[string]string `json:"files"`
	}
	if err := c.do(ctx, payload, &out); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(out.Files))
	for p := range out.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	fs := models.NewFileSet()
	for _, p := range paths {
		if err := fs.Put(p, out.Files[p]); err != nil {
			return nil, fmt.Errorf("file %q from service: %w", p, err)
		}
	}
	return fs, nil
}

// Cancel asks the service to stop a job the client has abandoned. Best
// effort: the job may already be terminal server-side.
func (c *Client) Cancel(ctx context.Context, jobID string) error {
	payload := map[string]string{"action": "cancel", "jobId": jobID}
	return c.do(ctx, payload, nil)
}

// Chat is the lower-latency, non-mutating variant used for Q&A or to propose
// a change plan without touching files.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	payload := struct {
		Mode string `json:"mode"`
		ChatRequest
	}{Mode: "chat", ChatRequest: req}

	var out ChatResult
	if err := c.do(ctx, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadAsset stores an attachment in durable storage and returns its URL.
func (c *Client) UploadAsset(ctx context.Context, projectID uint, name string, data []byte) (string, error) {
	payload := struct {
		Action    string `json:"action"`
		ProjectID uint   `json:"projectId"`
		Name      string `json:"name"`
		Data      string `json:"data"`
	}{Action: "upload_asset", ProjectID: projectID, Name: name, Data: base64.StdEncoding.EncodeToString(data)}

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, payload, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("storage returned no asset url")
	}
	return out.URL, nil
}

// Deploy hands the self-contained document to the static-hosting endpoint
// addressed by slug and returns the live URL.
func (c *Client) Deploy(ctx context.Context, slug, document string) (string, error) {
	payload := struct {
		Action   string `json:"action"`
		Slug     string `json:"slug"`
		Document string `json:"document"`
	}{Action: "deploy", Slug: slug, Document: document}

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, payload, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
