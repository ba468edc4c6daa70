package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50, 0x4E, 0x47}, 0644))
	return path
}

func TestLlamaGenerator_Generate(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"content":"Stance: open"}}]}`)
	}))
	defer ts.Close()

	imagePath := writeTestImage(t, "archer.png")
	gen := NewLlamaGenerator(ts.URL)

	text, err := gen.Generate(context.Background(), CoachingConversation(imagePath), 200)
	require.NoError(t, err)
	assert.Equal(t, "Stance: open", text)

	assert.EqualValues(t, 200, gotBody["max_tokens"])

	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 2)

	system := messages[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Contains(t, system["content"], "Archery Related:")

	user := messages[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	parts := user["content"].([]any)
	require.Len(t, parts, 1)
	part := parts[0].(map[string]any)
	assert.Equal(t, "image_url", part["type"])
	url := part["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"), "unexpected data URL: %s", url)
}

func TestLlamaGenerator_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	gen := NewLlamaGenerator(ts.URL)
	_, err := gen.Generate(context.Background(), CoachingConversation(writeTestImage(t, "a.png")), 200)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestLlamaGenerator_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer ts.Close()

	gen := NewLlamaGenerator(ts.URL)
	_, err := gen.Generate(context.Background(), CoachingConversation(writeTestImage(t, "a.png")), 200)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestLlamaGenerator_MissingImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server must not be called when the image cannot be read")
	}))
	defer ts.Close()

	gen := NewLlamaGenerator(ts.URL)
	_, err := gen.Generate(context.Background(), CoachingConversation("does-not-exist.png"), 200)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read image")
}

func TestLlamaGenerator_Health(t *testing.T) {
	healthy := true
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		if healthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer ts.Close()

	gen := NewLlamaGenerator(ts.URL)
	assert.NoError(t, gen.Health(context.Background()))

	healthy = false
	assert.Error(t, gen.Health(context.Background()))
}
