package runpod

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *RealClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRealClient("test-key", WithBaseURL(srv.URL))
}

func TestCreatePod(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pods", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req CreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "my-pod", req.Name)
		assert.Equal(t, []string{"NVIDIA GeForce RTX 4090"}, req.GPUTypeIDs)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Pod{
			ID:        "pod-1",
			CreatedAt: "2025-11-27 17:56:21.701466089 +0000 UTC",
		})
	})

	pod, err := client.CreatePod(context.Background(), CreateRequest{
		Name:       "my-pod",
		GPUTypeIDs: []string{"NVIDIA GeForce RTX 4090"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pod-1", pod.ID)
	assert.NotEmpty(t, pod.CreatedAt)
}

func TestCreatePod_NoCapacity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "There are no instances currently available for the requested GPU"}`))
	})

	_, err := client.CreatePod(context.Background(), CreateRequest{Name: "x"})
	require.Error(t, err)
	assert.True(t, IsNoCapacity(err))
	assert.Contains(t, Message(err), "no instances currently available")
}

func TestGetPod(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pods/pod-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Pod{
			ID:            "pod-1",
			DesiredStatus: "RUNNING",
			CostPerHr:     0.34,
			Machine:       Machine{GPUDisplayName: "RTX 4090"},
		})
	})

	pod, err := client.GetPod(context.Background(), "pod-1")
	require.NoError(t, err)
	assert.Equal(t, "RUNNING", pod.DesiredStatus)
	assert.Equal(t, 0.34, pod.CostPerHr)
	assert.Equal(t, "RTX 4090", pod.Machine.GPUDisplayName)
}

func TestGetPod_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "pod not found"}`))
	})

	_, err := client.GetPod(context.Background(), "gone")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestListPods_BareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id": "a"}, {"id": "b"}]`))
	})

	pods, err := client.ListPods(context.Background())
	require.NoError(t, err)
	require.Len(t, pods, 2)
	assert.Equal(t, "a", pods[0].ID)
}

func TestListPods_Wrapped(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"pods": [{"id": "a"}]}`))
	})

	pods, err := client.ListPods(context.Background())
	require.NoError(t, err)
	require.Len(t, pods, 1)
	assert.Equal(t, "a", pods[0].ID)
}

func TestTerminatePod(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.TerminatePod(context.Background(), "pod-1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/pods/pod-1", gotPath)
}

func TestResumePod(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.ResumePod(context.Background(), "pod-1"))
	assert.Equal(t, "/pods/pod-1/start", gotPath)
}

func TestGetPodLogs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"logs": [{"line": "installing deps"}, {"line": "cloning repo"}]}`))
	})

	logs, err := client.GetPodLogs(context.Background(), "pod-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "installing deps", logs[0].Line)
}

func TestGetPodLogs_Empty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	logs, err := client.GetPodLogs(context.Background(), "pod-1")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestErrorMessage_NonJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	})

	_, err := client.GetPod(context.Background(), "pod-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream unavailable")
}
