package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fridgevision/inventory"
	"fridgevision/recognize"
	"fridgevision/suggest"

	"github.com/gin-gonic/gin"
)

type createItemRequest struct {
	Name       string     `json:"name" binding:"required"`
	Location   string     `json:"location" binding:"required"`
	Quantity   string     `json:"quantity"`
	Unit       string     `json:"unit"`
	Confidence int        `json:"confidence"`
	ExpiryDate *time.Time `json:"expiryDate"`
}

type updateItemRequest struct {
	Name       *string    `json:"name"`
	Location   *string    `json:"location"`
	Quantity   *string    `json:"quantity"`
	Unit       *string    `json:"unit"`
	Confidence *int       `json:"confidence"`
	ExpiryDate *time.Time `json:"expiryDate"`
}

type recognizeRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

type suggestRequest struct {
	Ingredients      []string         `json:"ingredients"`
	FocusIngredient  string           `json:"focusIngredient"`
	FocusIngredients []string         `json:"focusIngredients"`
	Filters          *suggest.Filters `json:"filters"`
}

// itemResponse is an item plus the merge flags the create endpoint reports.
type itemResponse struct {
	inventory.Item
	QuantityUpdated  bool   `json:"quantityUpdated,omitempty"`
	PreviousQuantity string `json:"previousQuantity,omitempty"`
}

// GET /api/inventory?location=Fridge
func (s *Server) listInventory(c *gin.Context) {
	raw := c.Query("location")
	if raw == "" {
		c.JSON(http.StatusOK, s.store.List())
		return
	}

	loc, err := inventory.ParseLocation(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.store.ListByLocation(loc))
}

// GET /api/inventory/expiring?days=3
func (s *Server) listExpiring(c *gin.Context) {
	days := 3
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a non-negative integer"})
			return
		}
		days = n
	}
	c.JSON(http.StatusOK, s.store.ExpiringWithin(days))
}

// GET /api/inventory/:id
func (s *Server) getItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	it, found := s.store.GetByID(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, it)
}

// POST /api/inventory
func (s *Server) createItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Info("HTTP: Invalid create payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and location are required"})
		return
	}

	loc, err := inventory.ParseLocation(req.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Confidence < 0 || req.Confidence > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confidence must be between 0 and 100"})
		return
	}
	if !validQuantity(req.Quantity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a non-negative number"})
		return
	}

	// Clients usually compute the expiry; default it by location when they
	// don't.
	expiry := req.ExpiryDate
	if expiry == nil {
		d := loc.DefaultExpiry(time.Now())
		expiry = &d
	}

	res := s.store.Reconcile(inventory.Fields{
		Name:       req.Name,
		Location:   loc,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Confidence: req.Confidence,
		ExpiryDate: expiry,
	})
	s.persist(c.Request.Context())

	if res.Merged {
		c.JSON(http.StatusOK, itemResponse{
			Item:             res.Item,
			QuantityUpdated:  true,
			PreviousQuantity: res.PreviousQuantity,
		})
		return
	}
	c.JSON(http.StatusCreated, res.Item)
}

// PUT /api/inventory/:id
func (s *Server) updateItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Info("HTTP: Invalid update payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	patch := inventory.Patch{
		Name:       req.Name,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Confidence: req.Confidence,
		ExpiryDate: req.ExpiryDate,
	}
	if req.Location != nil {
		loc, err := inventory.ParseLocation(*req.Location)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		patch.Location = &loc
	}
	if req.Confidence != nil && (*req.Confidence < 0 || *req.Confidence > 100) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confidence must be between 0 and 100"})
		return
	}
	if req.Quantity != nil && !validQuantity(*req.Quantity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a non-negative number"})
		return
	}

	it, found := s.store.Update(id, patch)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	s.persist(c.Request.Context())
	c.JSON(http.StatusOK, it)
}

// DELETE /api/inventory/:id
func (s *Server) deleteItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	if !s.store.Delete(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	s.persist(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// POST /api/recognize
func (s *Server) recognizeImage(c *gin.Context) {
	var req recognizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	items, err := s.recognizer.Recognize(c.Request.Context(), req.ImageBase64)
	if err != nil {
		if errors.Is(err, recognize.ErrNoImage) || errors.Is(err, recognize.ErrBadImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("HTTP: Image analysis failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze image"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// POST /api/recipe-suggestions
func (s *Server) suggestRecipes(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if len(req.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ingredients must be a non-empty list"})
		return
	}

	focus := req.FocusIngredients
	if req.FocusIngredient != "" {
		focus = append(focus, req.FocusIngredient)
	}

	recipes, err := s.suggester.Suggest(c.Request.Context(), focus, req.Filters)
	if err != nil {
		if errors.Is(err, suggest.ErrEmptyInventory) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("HTTP: Recipe generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate recipes"})
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// validQuantity accepts an empty string (defaulted downstream) or a
// non-negative decimal.
func validQuantity(q string) bool {
	if q == "" {
		return true
	}
	v, err := strconv.ParseFloat(q, 64)
	return err == nil && v >= 0
}

// itemID parses the :id path param, replying 400 itself on junk input.
func itemID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return 0, false
	}
	return id, true
}
