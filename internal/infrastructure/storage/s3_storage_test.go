package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	base := func() *config.StorageConfig {
		return &config.StorageConfig{
			Bucket:    "closet",
			AccessKey: "test-key",
			SecretKey: "test-secret",
			Endpoint:  "http://localhost:9000",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
		{"valid", func(*config.StorageConfig) {}, ""},
		{"aws without endpoint", func(c *config.StorageConfig) { c.Endpoint = "" }, ""},
		{"endpoint without scheme", func(c *config.StorageConfig) { c.Endpoint = "minio.local:9000" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			s, err := NewS3ObjectStorage(cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "closet", s.GetBucket())
		})
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		assert.Error(t, err)
	})
}

func TestS3ObjectStorage_Options(t *testing.T) {
	cfg := &config.StorageConfig{Bucket: "closet", AccessKey: "k", SecretKey: "s", PresignExpiration: time.Minute}

	s, err := NewS3ObjectStorage(cfg)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, s.presignExpiration)

	s, err = NewS3ObjectStorage(cfg, WithPresignExpiration(2*time.Hour), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, s.presignExpiration)

	cfg.PresignExpiration = 0
	s, err = NewS3ObjectStorage(cfg)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.presignExpiration)
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Bucket:       "closet",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	})
	require.NoError(t, err)

	u, expires, err := s.GenerateDownloadURL(context.Background(), "clients/a/items/b/small.jpg", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://localhost:9000/closet/clients/a/items/b/small.jpg?"), u)
	assert.Contains(t, u, "X-Amz-Expires=600")
	assert.Contains(t, u, "X-Amz-Signature=")
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expires, 5*time.Second)

	_, _, err = s.GenerateDownloadURL(context.Background(), "", 0)
	assert.ErrorIs(t, err, ErrKeyRequired)
}

// fakeS3 is a minimal path-style S3 endpoint for a single bucket
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/closet/")
	switch {
	case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
		prefix := r.URL.Query().Get("prefix")
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>closet</Name><IsTruncated>false</IsTruncated>`)
		for k, v := range f.objects {
			if strings.HasPrefix(k, prefix) {
				fmt.Fprintf(&b, `<Contents><Key>%s</Key><LastModified>2026-01-02T03:04:05.000Z</LastModified><Size>%d</Size></Contents>`, k, len(v))
			}
		}
		b.WriteString(`</ListBucketResult>`)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, b.String())
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = string(body)
		f.types[key] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func newFakeS3Storage(t *testing.T) (*S3ObjectStorage, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Bucket:       "closet",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Endpoint:     server.URL,
		UsePathStyle: true,
	})
	require.NoError(t, err)
	return s, fake
}

func TestS3ObjectStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, fake := newFakeS3Storage(t)

	key := "clients/a/items/b/full.png"
	require.NoError(t, s.PutObject(ctx, key, []byte("image-bytes"), "image/png"))
	assert.Contains(t, fake.objects[key], "image-bytes")
	assert.Equal(t, "image/png", fake.types[key])

	exists, err := s.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	var listed []ObjectInfo
	require.NoError(t, s.ListObjects(ctx, "clients/", func(info ObjectInfo) error {
		listed = append(listed, info)
		return nil
	}))
	require.Len(t, listed, 1)
	assert.Equal(t, key, listed[0].Key)
	assert.Equal(t, 2026, listed[0].LastModified.Year())

	require.NoError(t, s.DeleteObject(ctx, key))
	exists, err = s.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestS3ObjectStorage_EmptyKeys(t *testing.T) {
	s, _ := newFakeS3Storage(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.PutObject(ctx, "", nil, "image/png"), ErrKeyRequired)
	assert.ErrorIs(t, s.DeleteObject(ctx, ""), ErrKeyRequired)
	_, err := s.ObjectExists(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
}

func TestIsMissing(t *testing.T) {
	assert.True(t, isMissing(&types.NoSuchKey{}))
	assert.True(t, isMissing(fmt.Errorf("wrapped: %w", &types.NotFound{})))
	assert.True(t, isMissing(&smithy.GenericAPIError{Code: "NoSuchBucket"}))
	assert.False(t, isMissing(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isMissing(errors.New("dial tcp: connection refused")))
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := map[string]string{
		"":                      "",
		"  ":                    "",
		"minio.local:9000":      "https://minio.local:9000",
		"http://localhost:9000": "http://localhost:9000",
	}
	for in, want := range tests {
		got, err := normalizeEndpoint(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := normalizeEndpoint("ftp://files.example.com")
	assert.Error(t, err)
}
