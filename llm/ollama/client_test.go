package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"fridgevision/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(ClientOpts{HTTPClient: http.DefaultClient})
	assert.Error(t, err, "model id required")

	_, err = NewClient(ClientOpts{ModelID: "llava"})
	assert.Error(t, err, "http client required")
}

func TestClient_Invoke(t *testing.T) {
	var captured wireRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		resp := wireResponse{Message: wireMessage{Role: "assistant", Content: `[{"name":"egg"}]`}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client, err := NewClient(ClientOpts{
		BaseEndpoint: srv.URL,
		ModelID:      "llava",
		HTTPClient:   srv.Client(),
	})
	require.NoError(t, err)

	img := []byte{0xff, 0xd8, 0xff}
	got, err := client.Invoke(context.Background(), llm.Prompt{
		System:    "you identify food",
		User:      "what do you see?",
		Image:     &llm.Image{Data: img, Format: "jpeg"},
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"egg"}]`, got)

	assert.Equal(t, "llava", captured.Model)
	assert.False(t, captured.Stream)
	assert.Equal(t, 256, captured.Options.NumPredict)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	require.Len(t, captured.Messages[1].Images, 1)
	assert.Equal(t, base64.StdEncoding.EncodeToString(img), captured.Messages[1].Images[0])
}

func TestClient_InvokeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient(ClientOpts{BaseEndpoint: srv.URL, ModelID: "llava", HTTPClient: srv.Client()})
	require.NoError(t, err)

	_, err = client.Invoke(context.Background(), llm.Prompt{User: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
