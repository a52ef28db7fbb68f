package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fridgevision"
	"fridgevision/inventory"
	"fridgevision/llm"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// ErrEmptyInventory means there is nothing to cook with.
var ErrEmptyInventory = errors.New("recipe generation requires at least one inventory item")

// ErrUnusableReply means the model replied but no recipe array could be
// parsed out of it. Unlike recognition there is no safe synthetic recipe, so
// this surfaces as a hard failure.
var ErrUnusableReply = errors.New("model reply contained no usable recipe array")

// Recipe is a suggested recipe. Transient: never persisted server-side.
type Recipe struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Ingredients        []string `json:"ingredients"`
	UsedInventoryItems []string `json:"usedInventoryItems"`
	CookTime           string   `json:"cookTime"`
	Calories           int      `json:"calories"`
	Image              string   `json:"image"`
	VideoID            string   `json:"videoId,omitempty"`
	Favorite           bool     `json:"favorite"`
}

// IsValid checks if the recipe meets basic validation requirements.
func (r *Recipe) IsValid() bool {
	if r.Title == "" {
		return false
	}
	if len(r.Ingredients) == 0 {
		return false
	}
	return true
}

// Filters narrows the kind of recipes the model should suggest. Zero values
// mean "no constraint".
type Filters struct {
	Simplicity  int `json:"simplicity"`  // 1-10
	Budget      int `json:"budget"`      // 1-5
	MaxCalories int `json:"maxCalories"`
	MaxSugar    int `json:"maxSugar"`    // grams
	MinProtein  int `json:"minProtein"`  // grams
	MaxCarbs    int `json:"maxCarbs"`    // grams
}

type inventoryLister interface {
	List() []inventory.Item
}

// Gateway builds recipe prompts from the live inventory and parses the
// model's suggestions.
type Gateway struct {
	invoker   llm.Invoker
	store     inventoryLister
	callLog   fridgevision.ModelCallLogger
	maxTokens int32
}

func NewGateway(invoker llm.Invoker, store inventoryLister, callLog fridgevision.ModelCallLogger) *Gateway {
	if callLog == nil {
		callLog = fridgevision.NewNoOpModelCallLogger()
	}
	return &Gateway{
		invoker:   invoker,
		store:     store,
		callLog:   callLog,
		maxTokens: 2048,
	}
}

// Suggest asks the model for exactly three recipes constrained to the current
// inventory. Focus ingredients, when given, must each be featured by at least
// one recipe. Any failure here is hard: there is no fallback recipe.
func (g *Gateway) Suggest(ctx context.Context, focus []string, filters *Filters) ([]Recipe, error) {
	items := g.store.List()
	if len(items) == 0 {
		return nil, ErrEmptyInventory
	}

	prompt := llm.Prompt{
		System:    systemPrompt(),
		User:      userPrompt(items, focus, filters),
		MaxTokens: g.maxTokens,
	}

	started := time.Now()
	reply, err := g.invoker.Invoke(ctx, prompt)
	g.logCall(prompt, reply, err, time.Since(started))
	if err != nil {
		slog.Error("SUGGEST: Model invoke failed", "error", err)
		return nil, fmt.Errorf("failed to generate recipes: %w", err)
	}

	recipes, ok := parseRecipes(reply)
	if !ok {
		slog.Error("SUGGEST: Reply contained no parseable recipe array", "reply_len", len(reply))
		return nil, ErrUnusableReply
	}

	slog.Info("SUGGEST: Parsed suggested recipes", "count", len(recipes))
	return recipes, nil
}

func (g *Gateway) logCall(prompt llm.Prompt, reply string, err error, latency time.Duration) {
	call := fridgevision.ModelCallLog{
		Gateway:   "suggest",
		Timestamp: time.Now(),
		Prompt:    prompt.System + "\n" + prompt.User,
		Reply:     reply,
		LatencyMS: latency.Milliseconds(),
	}
	if err != nil {
		call.Error = err.Error()
	}
	if lerr := g.callLog.LogCall(call); lerr != nil {
		slog.Error("SUGGEST: Failed to log model call", "error", lerr)
	}
}

// userPrompt states the inventory with quantities, the hard usage rules, and
// any active filter directives.
func userPrompt(items []inventory.Item, focus []string, filters *Filters) string {
	var b strings.Builder

	b.WriteString("My current inventory:\n")
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it.Name)
		b.WriteString(": ")
		b.WriteString(it.Quantity)
		if it.Unit != "" {
			b.WriteByte(' ')
			b.WriteString(it.Unit)
		}
		b.WriteByte('\n')
	}

	b.WriteString("\nSuggest exactly 3 recipes I can cook right now.\n")
	b.WriteString("Use ONLY ingredients from the inventory above, and never more than the stated quantity of any ingredient.\n")

	if len(focus) > 0 {
		b.WriteString("Each recipe must prominently feature at least one of these ingredients: ")
		b.WriteString(strings.Join(focus, ", "))
		b.WriteString(".\n")
	}

	for _, directive := range filterDirectives(filters) {
		b.WriteString(directive)
		b.WriteByte('\n')
	}

	return b.String()
}

// filterDirectives maps the numeric filters to natural-language constraints.
func filterDirectives(f *Filters) []string {
	if f == nil {
		return nil
	}

	var out []string
	if f.Simplicity > 0 {
		out = append(out, "The recipes should be "+simplicityLabel(f.Simplicity)+" to prepare.")
	}
	if f.Budget >= 1 && f.Budget <= 5 {
		out = append(out, "The recipes should be "+budgetLabel(f.Budget)+".")
	}
	if f.MaxCalories > 0 {
		out = append(out, fmt.Sprintf("Each recipe must have at most %d calories per serving.", f.MaxCalories))
	}
	if f.MaxSugar > 0 {
		out = append(out, fmt.Sprintf("Each recipe must contain at most %dg of sugar per serving.", f.MaxSugar))
	}
	if f.MinProtein > 0 {
		out = append(out, fmt.Sprintf("Each recipe must contain at least %dg of protein per serving.", f.MinProtein))
	}
	if f.MaxCarbs > 0 {
		out = append(out, fmt.Sprintf("Each recipe must contain at most %dg of carbohydrates per serving.", f.MaxCarbs))
	}
	return out
}

func simplicityLabel(s int) string {
	switch {
	case s <= 3:
		return "very simple"
	case s <= 6:
		return "moderately complex"
	default:
		return "complex"
	}
}

func budgetLabel(b int) string {
	switch b {
	case 1:
		return "very cheap"
	case 2:
		return "cheap"
	case 3:
		return "moderately priced"
	case 4:
		return "somewhat expensive"
	default:
		return "expensive"
	}
}

// parseRecipes extracts the first JSON array from the reply and keeps the
// recipes that pass basic validation.
func parseRecipes(reply string) ([]Recipe, bool) {
	arr, found := llm.ExtractJSONArray(reply)
	if !found {
		return nil, false
	}

	var raw []map[string]any
	if err := json.Unmarshal([]byte(arr), &raw); err != nil {
		return nil, false
	}

	recipes := make([]Recipe, 0, len(raw))
	for i, obj := range raw {
		r := Recipe{
			ID:                 stringFrom(obj, "id"),
			Title:              stringFrom(obj, "title"),
			Description:        stringFrom(obj, "description"),
			Ingredients:        stringsFrom(obj, "ingredients"),
			UsedInventoryItems: stringsFrom(obj, "usedInventoryItems"),
			CookTime:           stringFrom(obj, "cookTime"),
			Calories:           intFrom(obj, "calories"),
			Image:              stringFrom(obj, "image"),
			VideoID:            stringFrom(obj, "videoId"),
			Favorite:           false,
		}
		if r.ID == "" {
			r.ID = fmt.Sprintf("recipe-%d", i+1)
		}
		if !r.IsValid() {
			slog.Warn("SUGGEST: Dropping invalid recipe from reply", "index", i, "title", r.Title)
			continue
		}
		recipes = append(recipes, r)
	}
	if len(recipes) == 0 {
		return nil, false
	}
	return recipes, true
}

func stringFrom(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

func stringsFrom(obj map[string]any, key string) []string {
	raw, _ := obj[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func intFrom(obj map[string]any, key string) int {
	switch v := obj[key].(type) {
	case float64:
		return int(v)
	case string:
		var n int
		fmt.Sscanf(v, "%d", &n)
		return n
	}
	return 0
}

// recipeSchema describes the array shape the model is told to return.
func recipeSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "array",
		Items: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"id":                 {Type: "string"},
				"title":              {Type: "string"},
				"description":        {Type: "string"},
				"ingredients":        {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "quantity-qualified, drawn only from the supplied inventory"},
				"usedInventoryItems": {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "subset of inventory names actually referenced"},
				"cookTime":           {Type: "string"},
				"calories":           {Type: "integer"},
				"image":              {Type: "string", Description: "URL of a photo of the finished dish"},
				"videoId":            {Type: "string", Description: "optional instructional video identifier"},
				"favorite":           {Type: "boolean", Description: "always false"},
			},
			Required: []string{"id", "title", "description", "ingredients", "usedInventoryItems", "cookTime", "calories", "image"},
		},
	}
}

func systemPrompt() string {
	schema, _ := json.MarshalIndent(recipeSchema(), "", "  ")
	return fmt.Sprintf(`You are a recipe suggestion assistant.

GOAL:
Given a home inventory with available quantities, suggest recipes that can be cooked with those ingredients alone.

FINAL OUTPUT FORMAT:
Return ONLY a JSON array of recipe objects - no explanations, no text before or after, no markdown formatting. Start immediately with [ and end with ].

JSON Schema:
%s

CRITICAL RULES:
- Never use an ingredient that is not in the inventory.
- Never use more of an ingredient than the stated quantity.
- "favorite" is always false.
- The JSON must be valid UTF-8, with no commentary, no markdown, and no trailing commas.
`, schema)
}
