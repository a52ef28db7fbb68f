package recognize

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fridgevision"
	"fridgevision/llm"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const (
	// FallbackName is the synthetic item returned when the model's reply can't
	// be parsed. The client flow keeps going either way.
	FallbackName       = "unidentified item"
	fallbackConfidence = 50

	defaultQuantity = "1"
)

// Item is a recognized food item. Transient: consumed by the client to stage
// additions to the inventory store, never persisted as-is.
type Item struct {
	Name       string `json:"name"`
	Confidence int    `json:"confidence"`
	Quantity   string `json:"quantity"`
	Unit       string `json:"unit"`
}

// Gateway asks a vision model what food is in an image and parses the reply.
type Gateway struct {
	invoker   llm.Invoker
	callLog   fridgevision.ModelCallLogger
	maxTokens int32
}

func NewGateway(invoker llm.Invoker, callLog fridgevision.ModelCallLogger) *Gateway {
	if callLog == nil {
		callLog = fridgevision.NewNoOpModelCallLogger()
	}
	return &Gateway{
		invoker:   invoker,
		callLog:   callLog,
		maxTokens: 1024,
	}
}

// Recognize analyzes a base64 image payload. A transport/API failure is a
// hard error; a reply that can't be parsed is not — it degrades to a single
// fallback item so the client flow continues.
func (g *Gateway) Recognize(ctx context.Context, imageBase64 string) ([]Item, error) {
	img, err := NormalizeImage(imageBase64)
	if err != nil {
		return nil, err
	}

	prompt := llm.Prompt{
		System:    systemPrompt(),
		User:      "Identify the food items in this photo of a fridge or cabinet.",
		Image:     &img,
		MaxTokens: g.maxTokens,
	}

	started := time.Now()
	reply, err := g.invoker.Invoke(ctx, prompt)
	g.logCall(prompt, reply, err, time.Since(started))
	if err != nil {
		slog.Error("RECOGNIZE: Model invoke failed", "error", err)
		return nil, fmt.Errorf("failed to analyze image: %w", err)
	}

	items, ok := parseItems(reply)
	if !ok {
		slog.Warn("RECOGNIZE: Reply contained no parseable item array; using fallback item", "reply_len", len(reply))
		return []Item{fallbackItem()}, nil
	}

	slog.Info("RECOGNIZE: Parsed recognized items", "count", len(items))
	return items, nil
}

func (g *Gateway) logCall(prompt llm.Prompt, reply string, err error, latency time.Duration) {
	call := fridgevision.ModelCallLog{
		Gateway:   "recognize",
		Timestamp: time.Now(),
		Prompt:    prompt.System + "\n" + prompt.User,
		Reply:     reply,
		LatencyMS: latency.Milliseconds(),
	}
	if err != nil {
		call.Error = err.Error()
	}
	if lerr := g.callLog.LogCall(call); lerr != nil {
		slog.Error("RECOGNIZE: Failed to log model call", "error", lerr)
	}
}

func fallbackItem() Item {
	return Item{
		Name:       FallbackName,
		Confidence: fallbackConfidence,
		Quantity:   defaultQuantity,
		Unit:       "",
	}
}

// parseItems extracts the first JSON array from the reply and normalizes each
// object. Returns false when no usable array exists.
func parseItems(reply string) ([]Item, bool) {
	arr, found := llm.ExtractJSONArray(reply)
	if !found {
		return nil, false
	}

	var raw []map[string]any
	if err := json.Unmarshal([]byte(arr), &raw); err != nil {
		return nil, false
	}

	items := make([]Item, 0, len(raw))
	for _, obj := range raw {
		name, _ := obj["name"].(string)
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		items = append(items, Item{
			Name:       name,
			Confidence: confidenceFrom(obj),
			Quantity:   quantityFrom(obj),
			Unit:       stringFrom(obj, "unit"),
		})
	}
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}

// confidenceFrom clamps to 1..100, defaulting to 50 when the model omitted it.
func confidenceFrom(obj map[string]any) int {
	v, ok := obj["confidence"].(float64)
	if !ok {
		return fallbackConfidence
	}
	c := int(v)
	if c < 1 {
		c = 1
	}
	if c > 100 {
		c = 100
	}
	return c
}

// quantityFrom tolerates both string and numeric quantities in the reply.
func quantityFrom(obj map[string]any) string {
	switch v := obj["quantity"].(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	case float64:
		if v == float64(int(v)) {
			return fmt.Sprintf("%d", int(v))
		}
		return fmt.Sprintf("%g", v)
	}
	return defaultQuantity
}

func stringFrom(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

// itemSchema describes the array shape the model is told to return. The
// schema is rendered straight into the system prompt.
func itemSchema() *jsonschema.Schema {
	minConf := 1.0
	maxConf := 100.0
	return &jsonschema.Schema{
		Type: "array",
		Items: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name":       {Type: "string", Description: "food item name, lowercase"},
				"confidence": {Type: "integer", Minimum: &minConf, Maximum: &maxConf},
				"quantity":   {Type: "string", Description: "count or amount, e.g. \"6\" or \"0.5\""},
				"unit":       {Type: "string", Description: "unit for the quantity, empty when it's a plain count"},
			},
			Required: []string{"name", "confidence"},
		},
	}
}

func systemPrompt() string {
	schema, _ := json.MarshalIndent(itemSchema(), "", "  ")
	return fmt.Sprintf(`You are a food recognition assistant.

Look at the photo and list every food item you can identify. Estimate quantities and units when the image makes them visible.

FINAL OUTPUT FORMAT:
Return ONLY a JSON array of objects - no explanations, no text before or after, no markdown formatting. Start immediately with [ and end with ].

JSON Schema:
%s

Confidence is how sure you are of the identification, from 1 (guess) to 100 (certain).
If quantity is not visible, use "1". If there is no meaningful unit, use "".
The JSON must be valid UTF-8, with no commentary, no markdown, and no trailing commas.
`, schema)
}
