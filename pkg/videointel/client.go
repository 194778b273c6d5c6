package videointel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/call-manager-team/call-manager/pkg/config"
)

// Job statuses reported by the annotation service.
const (
	JobStatusPending    = "PENDING"
	JobStatusProcessing = "PROCESSING"
	JobStatusSucceeded  = "SUCCEEDED"
	JobStatusFailed     = "FAILED"
)

// Client talks to the external video-intelligence REST surface. Jobs are
// keyed by the storage URI of the video to annotate; results come back as
// the raw annotation JSON the normalizer consumes.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates an annotation service client from config
func NewClient(cfg *config.VideoIntelConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// AnnotateRequest is the payload for POST /v1/videos:annotate
type AnnotateRequest struct {
	InputURI   string   `json:"input_uri"`
	Features   []string `json:"features,omitempty"`
	WebhookURL string   `json:"webhook_url,omitempty"`
}

// JobResponse is the job envelope returned on submission and polling
type JobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// DefaultFeatures covers every annotation group the engine renders.
var DefaultFeatures = []string{
	"LABEL_DETECTION",
	"OBJECT_TRACKING",
	"FACE_DETECTION",
	"TEXT_DETECTION",
	"SPEECH_TRANSCRIPTION",
}

// SubmitVideo registers an annotation job for the video at inputURI.
// Submission is retried with exponential backoff on transport and 5xx
// failures. Returns the job id on success.
func (c *Client) SubmitVideo(ctx context.Context, inputURI, webhookURL string) (string, error) {
	payload := AnnotateRequest{
		InputURI:   inputURI,
		Features:   DefaultFeatures,
		WebhookURL: webhookURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	var jobID string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/videos:annotate", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("annotation service returned status %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("annotation service rejected submission: status %d", resp.StatusCode))
		}

		var job JobResponse
		if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
			return backoff.Permanent(err)
		}
		jobID = job.ID
		return nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.Retry(operation, backoff.WithMaxRetries(policy, 4)); err != nil {
		return "", err
	}
	return jobID, nil
}

// GetJob polls the status of an annotation job
func (c *Client) GetJob(ctx context.Context, jobID string) (*JobResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/jobs/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("annotation service returned status %d", resp.StatusCode)
	}

	var job JobResponse
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

// FetchResult downloads the raw annotation JSON of a succeeded job
func (c *Client) FetchResult(ctx context.Context, jobID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/jobs/"+jobID+"/result", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("annotation service returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
