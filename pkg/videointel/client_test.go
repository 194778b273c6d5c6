package videointel

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/call-manager-team/call-manager/pkg/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.VideoIntelConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
	})
}

func TestSubmitVideo_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.URL.Path != "/v1/videos:annotate" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var payload AnnotateRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.InputURI != "s3://bucket/videos/rec.mp4" {
			t.Fatalf("unexpected input uri %s", payload.InputURI)
		}
		if len(payload.Features) == 0 {
			t.Fatalf("expected features in payload")
		}
		json.NewEncoder(w).Encode(JobResponse{ID: "job-123", Status: JobStatusPending})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	jobID, err := client.SubmitVideo(context.Background(), "s3://bucket/videos/rec.mp4", "")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if jobID != "job-123" {
		t.Fatalf("unexpected job id %s", jobID)
	}
}

func TestSubmitVideo_RetriesServerErrors(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(JobResponse{ID: "job-retry", Status: JobStatusPending})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	jobID, err := client.SubmitVideo(context.Background(), "s3://bucket/videos/rec.mp4", "")
	if err != nil {
		t.Fatalf("submit failed after retries: %v", err)
	}
	if jobID != "job-retry" {
		t.Fatalf("unexpected job id %s", jobID)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestSubmitVideo_RejectionIsNotRetried(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	if _, err := client.SubmitVideo(context.Background(), "s3://bucket/videos/bad.mp4", ""); err == nil {
		t.Fatalf("expected error for rejected submission")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt for a 4xx rejection, got %d", attempts)
	}
}

func TestGetJob(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/jobs/job-123" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(JobResponse{ID: "job-123", Status: JobStatusSucceeded})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	job, err := client.GetJob(context.Background(), "job-123")
	if err != nil {
		t.Fatalf("get job failed: %v", err)
	}
	if job.Status != JobStatusSucceeded {
		t.Fatalf("unexpected status %s", job.Status)
	}
}

func TestFetchResult(t *testing.T) {
	raw := `{"annotation_results":[{}]}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/jobs/job-123/result" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(raw))
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	body, err := client.FetchResult(context.Background(), "job-123")
	if err != nil {
		t.Fatalf("fetch result failed: %v", err)
	}
	if string(body) != raw {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestVerifyHMAC(t *testing.T) {
	payload := []byte(`{"id":"job-123"}`)
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write(payload)
	sig := hex.EncodeToString(mac.Sum(nil))

	if !VerifyHMAC("secret", payload, sig) {
		t.Fatalf("expected valid signature to verify")
	}
	if VerifyHMAC("secret", payload, "deadbeef") {
		t.Fatalf("expected bad signature to fail")
	}
	if VerifyHMAC("", payload, sig) {
		t.Fatalf("expected empty secret to fail")
	}
	if VerifyHMAC("secret", payload, "") {
		t.Fatalf("expected empty signature to fail")
	}
}
