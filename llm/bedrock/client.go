package bedrock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fridgevision/llm"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const (
	// defaultModelID is the default model ID for Bedrock Claude.
	// It's an inference profile ID or ARN, not the foundation model's ID.
	// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	// Controls the maximum number of tokens the model can generate in one response.
	// 1k is a good balance for cost + safety. Raise it (e.g. 2048–4096) when expecting longer responses.
	defaultMaxTokens = 1024

	// Controls the randomness of the model's output. Low temperature keeps outputs more deterministic and consistent, which is better for JSON and structured outputs.
	defaultTemperature = 0.2

	// Controls the diversity of the model's output. Low top_p keeps outputs more focused and less random, which is better for JSON and structured outputs.
	defaultTopP = 0.9
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type ClientOptions struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// Client invokes a vision-capable Bedrock model through the Converse API and
// implements llm.Invoker.
type Client struct {
	brc  bedrockRuntimeClient
	opts ClientOptions
}

func NewClient(brc bedrockRuntimeClient, opts ClientOptions) *Client {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &Client{
		brc:  brc,
		opts: opts,
	}
}

func (c *Client) Invoke(ctx context.Context, prompt llm.Prompt) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "system_len", len(prompt.System), "user_len", len(prompt.User), "has_image", prompt.Image != nil)

	var sys []types.SystemContentBlock
	if prompt.System != "" {
		sys = append(sys, &types.SystemContentBlockMemberText{Value: prompt.System})
	}

	msg := types.Message{Role: types.ConversationRoleUser}
	if prompt.Image != nil {
		msg.Content = append(msg.Content, &types.ContentBlockMemberImage{
			Value: types.ImageBlock{
				Format: imageFormat(prompt.Image.Format),
				Source: &types.ImageSourceMemberBytes{Value: prompt.Image.Data},
			},
		})
		slog.Info("LLM_CLIENT: Added image content", "bytes", len(prompt.Image.Data), "format", prompt.Image.Format)
	}
	msg.Content = append(msg.Content, &types.ContentBlockMemberText{Value: prompt.User})

	maxTokens := c.opts.MaxTokens
	if prompt.MaxTokens > 0 {
		maxTokens = prompt.MaxTokens
	}

	in := &bedrockruntime.ConverseInput{
		ModelId:  &c.opts.ModelID,
		System:   sys,
		Messages: []types.Message{msg},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(maxTokens),
			Temperature: aws.Float32(c.opts.Temperature),
			TopP:        aws.Float32(c.opts.TopP),
		},
	}
	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("LLM_CLIENT: Bedrock Claude invoke failed", "error", err)
		return "", err
	}

	slog.Info("LLM_CLIENT: Bedrock Claude invoke succeeded",
		"stop_reason", out.StopReason,
		"latency_ms", aws.ToInt64(out.Metrics.LatencyMs),
		"input_tokens", aws.ToInt32(out.Usage.InputTokens),
		"output_tokens", aws.ToInt32(out.Usage.OutputTokens),
	)

	switch out.StopReason {
	case "end_turn", "stop_sequence":
		return textFromOutput(out), nil

	case "max_tokens":
		slog.Warn("LLM_CLIENT: Model hit MaxTokens limit; consider increasing MaxTokens or chunking")
		return "", fmt.Errorf("model hit MaxTokens limit; consider increasing MaxTokens or chunking")

	case "safety", "content_filtered":
		slog.Warn("LLM_CLIENT: Model response blocked by Bedrock safety filters")
		return "", fmt.Errorf("model response blocked by Bedrock safety filters")

	default:
		// Fallback if the model didn't specify a stop reason
		return textFromOutput(out), nil
	}
}

func imageFormat(format string) types.ImageFormat {
	switch format {
	case "png":
		return types.ImageFormatPng
	case "gif":
		return types.ImageFormatGif
	case "webp":
		return types.ImageFormatWebp
	default:
		return types.ImageFormatJpeg
	}
}

// textFromOutput joins the assistant's text blocks with '\n'.
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil || len(msg.Value.Content) == 0 {
		return ""
	}

	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t != nil && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}

	switch len(texts) {
	case 0:
		return ""
	case 1:
		return texts[0]
	}

	total := len(texts) - 1 // for newlines
	for _, s := range texts {
		total += len(s)
	}

	var b strings.Builder
	b.Grow(total)
	for i, s := range texts {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s)
	}
	return b.String()
}
