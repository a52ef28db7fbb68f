package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"fridgevision"
	"fridgevision/llm"
)

type options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`
}

// Client talks to a local Ollama instance's chat API and implements
// llm.Invoker. Vision models (llava, llama3.2-vision) take images as base64
// strings on the user message.
type Client struct {
	endpoint   string
	model      string
	httpClient fridgevision.HTTPClient
	options    options
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	HTTPClient   fridgevision.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.ModelID == "" {
		return nil, fmt.Errorf("invalid model id")
	}
	if opts.HTTPClient == nil {
		return nil, fmt.Errorf("invalid http client")
	}

	return &Client{
		model:      opts.ModelID,
		httpClient: opts.HTTPClient,
		endpoint:   opts.BaseEndpoint + "/api/chat",
		options: options{
			Temperature:   0.2,
			TopP:          0.9,
			RepeatPenalty: 1.05,
			NumCtx:        16384,
		},
	}, nil
}

type wireMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options,omitempty"`
}

type wireResponse struct {
	Message wireMessage `json:"message"`
	// other metadata omitted but available
}

// Invoke sends the prompt to the Ollama chat API and returns the reply text.
func (c *Client) Invoke(ctx context.Context, prompt llm.Prompt) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "system_len", len(prompt.System), "user_len", len(prompt.User), "has_image", prompt.Image != nil)

	msgs := make([]wireMessage, 0, 2)
	if prompt.System != "" {
		msgs = append(msgs, wireMessage{Role: "system", Content: prompt.System})
	}

	user := wireMessage{Role: "user", Content: prompt.User}
	if prompt.Image != nil {
		user.Images = []string{base64.StdEncoding.EncodeToString(prompt.Image.Data)}
	}
	msgs = append(msgs, user)

	opts := c.options
	if prompt.MaxTokens > 0 {
		opts.NumPredict = int(prompt.MaxTokens)
	}

	reqBody := wireRequest{
		Model:    c.model,
		Messages: msgs,
		Stream:   false,
		Options:  opts,
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(body))
	}

	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return "", fmt.Errorf("LLM_CLIENT: failed to decode response: %w", err)
	}

	slog.Info("LLM_CLIENT: Ollama invoke succeeded", "reply_len", len(wire.Message.Content))
	return wire.Message.Content, nil
}
