package suggest

import (
	"context"
	"errors"
	"testing"

	"fridgevision/inventory"
	"fridgevision/llm/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipesReply = `Here you go:
[
  {
    "id": "r1",
    "title": "Omelette",
    "description": "A quick omelette.",
    "ingredients": ["2 eggs", "10g butter"],
    "usedInventoryItems": ["egg", "butter"],
    "cookTime": "10 min",
    "calories": 320,
    "image": "https://example.com/omelette.jpg",
    "favorite": true
  },
  {
    "id": "r2",
    "title": "Scrambled Eggs",
    "description": "Soft scramble.",
    "ingredients": ["3 eggs"],
    "usedInventoryItems": ["egg"],
    "cookTime": "5 min",
    "calories": "210",
    "image": "https://example.com/scramble.jpg",
    "videoId": "vid-42"
  }
]`

func seededStore() *inventory.Store {
	s := inventory.NewStore()
	s.Create(inventory.Fields{Name: "egg", Location: inventory.LocationFridge, Quantity: "6", Unit: "pcs"})
	s.Create(inventory.Fields{Name: "butter", Location: inventory.LocationFridge, Quantity: "200", Unit: "g"})
	s.Create(inventory.Fields{Name: "rice", Location: inventory.LocationCabinet, Quantity: "1", Unit: "kg"})
	return s
}

func TestGateway_SuggestParsesRecipes(t *testing.T) {
	invoker := mock.NewInvoker(recipesReply)
	g := NewGateway(invoker, seededStore(), nil)

	recipes, err := g.Suggest(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	assert.Equal(t, "r1", recipes[0].ID)
	assert.Equal(t, "Omelette", recipes[0].Title)
	assert.Equal(t, []string{"2 eggs", "10g butter"}, recipes[0].Ingredients)
	assert.Equal(t, []string{"egg", "butter"}, recipes[0].UsedInventoryItems)
	assert.Equal(t, 320, recipes[0].Calories)
	assert.False(t, recipes[0].Favorite, "favorite always starts false regardless of the reply")

	assert.Equal(t, 210, recipes[1].Calories, "string calories coerced")
	assert.Equal(t, "vid-42", recipes[1].VideoID)
}

func TestGateway_PromptStatesInventoryAndRules(t *testing.T) {
	invoker := mock.NewInvoker(recipesReply)
	g := NewGateway(invoker, seededStore(), nil)

	_, err := g.Suggest(context.Background(), nil, nil)
	require.NoError(t, err)

	p := invoker.LastPrompt()
	assert.Contains(t, p.User, "egg: 6 pcs")
	assert.Contains(t, p.User, "butter: 200 g")
	assert.Contains(t, p.User, "rice: 1 kg")
	assert.Contains(t, p.User, "exactly 3 recipes")
	assert.Contains(t, p.User, "never more than the stated quantity")
	assert.Contains(t, p.System, "usedInventoryItems")
}

func TestGateway_PromptReferencesEveryFocusIngredient(t *testing.T) {
	invoker := mock.NewInvoker(recipesReply)
	g := NewGateway(invoker, seededStore(), nil)

	_, err := g.Suggest(context.Background(), []string{"egg", "butter", "rice"}, nil)
	require.NoError(t, err)

	p := invoker.LastPrompt()
	assert.Contains(t, p.User, "feature at least one of these ingredients")
	for _, focus := range []string{"egg", "butter", "rice"} {
		assert.Contains(t, p.User, focus)
	}
}

func TestGateway_PromptFilterDirectives(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{
			name:    "simplicity low",
			filters: Filters{Simplicity: 2},
			want:    []string{"very simple"},
		},
		{
			name:    "simplicity mid",
			filters: Filters{Simplicity: 5},
			want:    []string{"moderately complex"},
		},
		{
			name:    "simplicity high",
			filters: Filters{Simplicity: 9},
			want:    []string{"complex"},
		},
		{
			name:    "budget tiers",
			filters: Filters{Budget: 1},
			want:    []string{"very cheap"},
		},
		{
			name:    "nutrition limits",
			filters: Filters{MaxCalories: 500, MaxSugar: 20, MinProtein: 30, MaxCarbs: 50},
			want: []string{
				"at most 500 calories",
				"at most 20g of sugar",
				"at least 30g of protein",
				"at most 50g of carbohydrates",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker := mock.NewInvoker(recipesReply)
			g := NewGateway(invoker, seededStore(), nil)

			_, err := g.Suggest(context.Background(), nil, &tt.filters)
			require.NoError(t, err)

			for _, want := range tt.want {
				assert.Contains(t, invoker.LastPrompt().User, want)
			}
		})
	}
}

func TestGateway_SuggestEmptyInventory(t *testing.T) {
	invoker := mock.NewInvoker(recipesReply)
	g := NewGateway(invoker, inventory.NewStore(), nil)

	_, err := g.Suggest(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrEmptyInventory)
	assert.Empty(t, invoker.Prompts, "empty inventory never reaches the model")
}

func TestGateway_SuggestUnusableReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "no array", reply: "Sorry, I can't help with that."},
		{name: "only invalid recipes", reply: `[{"id":"r1","title":"","ingredients":[]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGateway(mock.NewInvoker(tt.reply), seededStore(), nil)

			_, err := g.Suggest(context.Background(), nil, nil)
			require.ErrorIs(t, err, ErrUnusableReply, "no synthetic fallback for recipes")
		})
	}
}

func TestGateway_SuggestModelFailure(t *testing.T) {
	invoker := mock.NewInvoker()
	invoker.Err = errors.New("upstream down")
	g := NewGateway(invoker, seededStore(), nil)

	_, err := g.Suggest(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate recipes")
}

func TestParseRecipes_MissingIDGetsOne(t *testing.T) {
	recipes, ok := parseRecipes(`[{"title":"Plain Rice","ingredients":["1 cup rice"]}]`)
	require.True(t, ok)
	require.Len(t, recipes, 1)
	assert.Equal(t, "recipe-1", recipes[0].ID)
}
