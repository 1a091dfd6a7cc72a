package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/devlink/internal/apperror"
)

// =========================================================================
// URL PARSING TESTS
// =========================================================================

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{
			name:      "plain repo url",
			url:       "https://github.com/foo/bar",
			wantOwner: "foo",
			wantRepo:  "bar",
		},
		{
			name:      "one trailing slash stripped",
			url:       "https://github.com/foo/bar/",
			wantOwner: "foo",
			wantRepo:  "bar",
		},
		{
			name:      "other hosts are accepted",
			url:       "https://example.com/someone/project",
			wantOwner: "someone",
			wantRepo:  "project",
		},
		{
			name:    "missing repo segment",
			url:     "https://github.com/foo",
			wantErr: true,
		},
		{
			name:    "bare host",
			url:     "https://github.com",
			wantErr: true,
		},
		{
			name:    "bare host with slash",
			url:     "https://github.com/",
			wantErr: true,
		},
		{
			name:    "extra path segments",
			url:     "https://github.com/foo/bar/tree/main",
			wantErr: true,
		},
		{
			name:    "empty string",
			url:     "",
			wantErr: true,
		},
		{
			name:    "not a url at all",
			url:     "foo bar baz",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperror.ErrInvalidRepoURL),
					"error should unwrap to ErrInvalidRepoURL, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
		})
	}
}

// =========================================================================
// METADATA FETCH TESTS
// =========================================================================

func TestGetRepo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/foo/bar", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "bar",
			"description": "a test repository",
			"stargazers_count": 42,
			"language": "Go",
			"full_name": "foo/bar"
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	repo, err := client.GetRepo(context.Background(), "foo", "bar")
	require.NoError(t, err)

	assert.Equal(t, "bar", repo.Name)
	assert.Equal(t, "a test repository", repo.Description)
	assert.Equal(t, 42, repo.StarCount)
	assert.Equal(t, "Go", repo.Language)
}

func TestGetRepo_NullFields(t *testing.T) {
	// GitHub returns JSON null for description and language when unset;
	// those must decode to empty strings, not errors.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"bar","description":null,"stargazers_count":0,"language":null}`))
	}))
	defer srv.Close()

	repo, err := NewClient(srv.URL).GetRepo(context.Background(), "foo", "bar")
	require.NoError(t, err)
	assert.Empty(t, repo.Description)
	assert.Empty(t, repo.Language)
}

func TestGetRepo_NotFoundStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetRepo(context.Background(), "foo", "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUpstream))
}

func TestGetRepo_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed before use; every request fails at the transport

	_, err := NewClient(srv.URL).GetRepo(context.Background(), "foo", "bar")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUpstream))
}

func TestGetRepo_GarbageBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>definitely not json</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetRepo(context.Background(), "foo", "bar")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUpstream))
}
