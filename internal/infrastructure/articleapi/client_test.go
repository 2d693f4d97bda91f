package articleapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleEnricher/internal/domain"
)

func TestListAndGet(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/articles", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":1,"url":"https://blog/a","title":"A","content":"a","is_updated":false,"updated_content":null,"citations":null,"created_at":"2025-01-01T00:00:00Z","updated_at":"2025-01-01T00:00:00Z"},
			{"id":2,"url":"https://blog/b","title":"B","content":"b","is_updated":true,"updated_content":"b2","citations":["https://r/1"],"created_at":"2025-01-02T00:00:00Z","updated_at":"2025-01-03T00:00:00Z"}
		]`))
	})
	mux.HandleFunc("GET /api/articles/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "2" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"id":2,"url":"https://blog/b","title":"B","content":"b","is_updated":true,"updated_content":"b2","citations":["https://r/1"]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(server.URL+"/api/", time.Second)

	articles, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, []string{}, articles[0].Citations)
	assert.Nil(t, articles[0].UpdatedContent)
	require.NotNil(t, articles[1].UpdatedContent)
	assert.Equal(t, "b2", *articles[1].UpdatedContent)
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), articles[1].UpdatedAt)

	article, err := client.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "https://blog/b", article.URL)

	_, err = client.Get(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
}

func TestUpsertAndUpdateEnrichment(t *testing.T) {
	t.Parallel()

	var posted upsertRequest
	var put map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/articles", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":5,"url":"https://blog/e","title":"E","content":"e","is_updated":false}`))
	})
	mux.HandleFunc("PUT /api/articles/5", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&put))
		_, _ = w.Write([]byte(`{"id":5,"url":"https://blog/e","title":"E","content":"e","is_updated":true,"updated_content":"new","citations":[]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(server.URL+"/api", time.Second)

	stored, err := client.UpsertByURL(context.Background(), domain.ArticleContent{URL: "https://blog/e", Title: "E", Content: "e"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.ID)
	assert.Equal(t, upsertRequest{URL: "https://blog/e", Title: "E", Content: "e"}, posted)

	updated, err := client.UpdateEnrichment(context.Background(), 5, domain.Enrichment{UpdatedContent: "new"})
	require.NoError(t, err)
	assert.True(t, updated.IsUpdated)
	assert.Equal(t, true, put["is_updated"])
	assert.Equal(t, "new", put["updated_content"])
	assert.Equal(t, []any{}, put["citations"])
}

func TestBackendErrorIsPersistenceError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database down", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := New(server.URL, time.Second).List(context.Background())

	var persistErr *domain.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, "list", persistErr.Op)
	assert.Contains(t, err.Error(), "database down")
}
