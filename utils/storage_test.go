package utils

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectStorePut(t *testing.T) {
	var (
		gotMethod, gotPath, gotType string
		gotBody                     []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewObjectStore(context.Background(), ObjectStoreConfig{
		Bucket:          "exports",
		Endpoint:        server.URL,
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		PublicBaseURL:   "https://cdn.example.com/",
	})
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "rosters/winter-open-1/2025-01-10.xlsx", []byte("workbook"), "application/octet-stream")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/rosters/winter-open-1/2025-01-10.xlsx", url)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/exports/rosters/winter-open-1/2025-01-10.xlsx", gotPath)
	assert.Equal(t, "application/octet-stream", gotType)
	assert.Contains(t, string(gotBody), "workbook")
}

func TestObjectStoreDefaultURL(t *testing.T) {
	store, err := NewObjectStore(context.Background(), ObjectStoreConfig{
		Bucket:          "exports",
		Endpoint:        "http://minio:9000/",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/exports/a.xlsx", store.URL("a.xlsx"))

	_, err = NewObjectStore(context.Background(), ObjectStoreConfig{})
	assert.Error(t, err)
}
