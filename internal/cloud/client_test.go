package cloud

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

func TestClient_DescribeServer(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/servers/srv-001", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"srv-001","name":"orders","engine":"postgres","status":"available","tier":"standard-2"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, NewStaticTokenProvider("sekrit"))

	state, err := client.DescribeServer(context.Background(), "srv-001")
	require.NoError(t, err)
	assert.Equal(t, "srv-001", state.ID)
	assert.Equal(t, ServerStateAvailable, state.Status)
	assert.Equal(t, "Bearer sekrit", gotAuth)
}

func TestClient_StartReplication(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/jobs", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"job-9","server_id":"srv-001","state":"pending","progress":0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)

	job, err := client.StartReplication(context.Background(), StartReplicationRequest{
		ServerID:   "srv-001",
		TargetTier: "standard-4",
	})
	require.NoError(t, err)
	assert.Equal(t, "job-9", job.ID)
	assert.Equal(t, JobStatePending, job.State)
}

func TestClient_APIError_StructuredFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"code":"TooManyRequests","kind":"throttling","message":"request rate exceeded"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)

	_, err := client.DescribeServer(context.Background(), "srv-001")
	require.Error(t, err)

	var apiErr *cloudmig.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 429, apiErr.Status)
	assert.Equal(t, "TooManyRequests", apiErr.Code)
	assert.Equal(t, "throttling", apiErr.Kind)
	assert.Equal(t, "request rate exceeded", apiErr.Message)
	assert.Equal(t, "7", apiErr.RetryAfter)
}

func TestClient_APIError_OpaqueBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream gateway choked"))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)

	_, err := client.JobStatus(context.Background(), "job-9")
	var apiErr *cloudmig.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 502, apiErr.Status)
	assert.Equal(t, "upstream gateway choked", apiErr.Message)
	assert.Empty(t, apiErr.RetryAfter)
}

func TestClient_TokenAcquisitionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server when token acquisition fails")
	}))
	defer server.Close()

	client := NewClient(server.URL, failingTokenProvider{})

	_, err := client.DescribeServer(context.Background(), "srv-001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire API token")
}

func TestClient_CutoverPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/job-9/cutover", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"job-9","server_id":"srv-001","state":"cut_over","progress":100}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)

	job, err := client.StartCutover(context.Background(), "job-9")
	require.NoError(t, err)
	assert.Equal(t, JobStateCutOver, job.State)
}

type failingTokenProvider struct{}

func (failingTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	return "", time.Time{}, errors.New("credential chain empty")
}

func (failingTokenProvider) String() string { return "failing" }
