package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishStatus(t *testing.T) {
	t.Parallel()

	var path, chatID, text string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, r.ParseForm())
		chatID = r.PostForm.Get("chat_id")
		text = r.PostForm.Get("text")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	err := NewNotifier("TOKEN", "42", server.URL+"/").PublishStatus(context.Background(), "enrichment done: article 3")

	require.NoError(t, err)
	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "42", chatID)
	assert.Equal(t, "enrichment done: article 3", text)
}

func TestPublishStatusErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	err := NewNotifier("TOKEN", "42", server.URL).PublishStatus(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	err = NewNotifier("", "42", server.URL).PublishStatus(context.Background(), "x")
	require.EqualError(t, err, "telegram notifier misconfigured")
}
