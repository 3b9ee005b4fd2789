package genservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"webforge/internal/models"
)

func testServer(t *testing.T, handler func(action string, body map[string]interface{}, w http.ResponseWriter)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/builder", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		action, _ := body["action"].(string)
		if action == "" {
			action, _ = body["mode"].(string)
		}
		handler(action, body, w)
	}))
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
}

func TestStart(t *testing.T) {
	client := testServer(t, func(action string, body map[string]interface{}, w http.ResponseWriter) {
		assert.Equal(t, "start", action)
		assert.Equal(t, "create", body["mode"])
		assert.Equal(t, "build a site", body["prompt"])
		_ = json.NewEncoder(w).Encode(map[string]string{"jobId": "job-42"})
	})

	jobID, err := client.Start(context.Background(), StartRequest{ProjectID: 1, Mode: "create", Prompt: "build a site"})
	assert.NoError(t, err)
	assert.Equal(t, "job-42", jobID)
}

func TestStart_MissingJobID(t *testing.T) {
	client := testServer(t, func(action string, body map[string]interface{}, w http.ResponseWriter) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})

	_, err := client.Start(context.Background(), StartRequest{ProjectID: 1, Mode: "create", Prompt: "x"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no job id")
}

func TestStatus(t *testing.T) {
	client := testServer(t, func(action string, body map[string]interface{}, w http.ResponseWriter) {
		assert.Equal(t, "status", action)
		assert.Equal(t, "job-42", body["jobId"])
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"job": Job{ID: "job-42", Status: models.JobStatusRunning},
		})
	})

	job, err := client.Status(context.Background(), "job-42")
	assert.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, job.Status)
}

func TestStatus_ServiceErrorSurfaced(t *testing.T) {
	client := testServer(t, func(action string, body map[string]interface{}, w http.ResponseWriter) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "backend overloaded"})
	})

	_, err := client.Status(context.Background(), "job-42")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "backend overloaded")
}

func TestGetFiles_SortedIntoFileSet(t *testing.T) {
	client := testServer(t, func(action string, body map[string]interface{}, w http.ResponseWriter) {
		assert.Equal(t, "get_files", action)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"files": map[string]string{
				"/zeta.js":  "last",
				"/App.js":   "first",
				"/index.js": "entry",
			},
		})
	})

	fs, err := client.GetFiles(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"/App.js", "/index.js", "/zeta.js"}, fs.Paths())
	content, ok := fs.Get("/App.js")
	assert.True(t, ok)
	assert.Equal(t, "first", content)
}

func TestChat(t *testing.T) {
	client := testServer(t, func(action string, body map[string]interface{}, w http.ResponseWriter) {
		assert.Equal(t, "chat", action)
		files, _ := body["currentFiles"].(map[string]interface{})
		assert.Equal(t, "old", files["/App.js"])
		_ = json.NewEncoder(w).Encode(ChatResult{Kind: ChatKindPlan, PlanSteps: []string{"step one"}})
	})

	result, err := client.Chat(context.Background(), ChatRequest{
		ProjectID:    1,
		Prompt:       "what next?",
		CurrentFiles: map[string]string{"/App.js": "old"},
	})
	assert.NoError(t, err)
	assert.Equal(t, ChatKindPlan, result.Kind)
	assert.Equal(t, []string{"step one"}, result.PlanSteps)
}

func TestDeploy(t *testing.T) {
	client := testServer(t, func(action string, body map[string]interface{}, w http.ResponseWriter) {
		assert.Equal(t, "deploy", action)
		assert.Equal(t, "my-site", body["slug"])
		assert.Contains(t, body["document"], "<!DOCTYPE html>")
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://my-site.webforge.app"})
	})

	url, err := client.Deploy(context.Background(), "my-site", "<!DOCTYPE html><html></html>")
	assert.NoError(t, err)
	assert.Equal(t, "https://my-site.webforge.app", url)
}
