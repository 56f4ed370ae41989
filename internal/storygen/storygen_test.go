package storygen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/legendsansar/legendsansar/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "Legend folktale from Himalayas")
		assert.Contains(t, req.Messages[0].Content, "suitable for Kids")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Title: The Yeti\nOnce upon a time..."}},
			},
		})
	}))
	defer srv.Close()

	g := NewGenerator("test-key", srv.URL, "gpt-4o")
	text, err := g.GenerateStory(context.Background(), "Legend", "Himalayas", "Kids")
	require.NoError(t, err)
	assert.Contains(t, text, "Title: The Yeti")
}

func TestGenerateStoryUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "Incorrect API key provided"},
		})
	}))
	defer srv.Close()

	g := NewGenerator("bad-key", srv.URL, "gpt-4o")
	_, err := g.GenerateStory(context.Background(), "Legend", "Himalayas", "Kids")
	require.Error(t, err)
	appErr, ok := err.(*utils.CustomError)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.Code)
	assert.Equal(t, "Incorrect API key provided", appErr.Message)
}

func TestGenerateStoryEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer srv.Close()

	g := NewGenerator("test-key", srv.URL, "gpt-4o")
	_, err := g.GenerateStory(context.Background(), "Legend", "Himalayas", "Kids")
	require.Error(t, err)
	appErr, ok := err.(*utils.CustomError)
	require.True(t, ok)
	assert.Equal(t, "Failed to generate story", appErr.Message)
}

func TestGenerateStoryCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGenerator("test-key", srv.URL, "gpt-4o")
	_, err := g.GenerateStory(ctx, "Legend", "Himalayas", "Kids")
	require.Error(t, err)
}
