// Package server is the HTTP surface: gin routes translating verbs and paths
// into store, recognition, and suggestion operations.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"fridgevision/inventory"
	"fridgevision/inventory/storage"
	"fridgevision/recognize"
	"fridgevision/suggest"

	"github.com/gin-gonic/gin"
)

// Recognizer is what the recognize handlers need; satisfied by both
// recognize.Gateway and recognize.InstrumentedGateway.
type Recognizer interface {
	Recognize(ctx context.Context, imageBase64 string) ([]recognize.Item, error)
}

// Suggester is what the recipe handlers need; satisfied by both
// suggest.Gateway and suggest.InstrumentedGateway.
type Suggester interface {
	Suggest(ctx context.Context, focus []string, filters *suggest.Filters) ([]suggest.Recipe, error)
}

type Server struct {
	store      *inventory.Store
	recognizer Recognizer
	suggester  Suggester
	snapshot   storage.State // nil disables persistence
	engine     *gin.Engine
}

func New(store *inventory.Store, recognizer Recognizer, suggester Suggester, snapshot storage.State) *Server {
	s := &Server{
		store:      store,
		recognizer: recognizer,
		suggester:  suggester,
		snapshot:   snapshot,
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/inventory", s.listInventory)
		api.GET("/inventory/expiring", s.listExpiring)
		api.GET("/inventory/:id", s.getItem)
		api.POST("/inventory", s.createItem)
		api.PUT("/inventory/:id", s.updateItem)
		api.DELETE("/inventory/:id", s.deleteItem)
		api.POST("/recognize", s.recognizeImage)
		api.POST("/recipe-suggestions", s.suggestRecipes)
	}

	s.engine = r
	return s
}

// Handler exposes the router for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP listener.
func (s *Server) Run(addr string) error {
	slog.Info("HTTP: Listening", "addr", addr)
	return s.engine.Run(addr)
}

// Seed loads the last snapshot into the store, if one exists.
func (s *Server) Seed(ctx context.Context) error {
	if s.snapshot == nil {
		return nil
	}

	data, err := s.snapshot.Load(ctx)
	if err != nil {
		if storage.IsNoSnapshot(err) {
			slog.Info("HTTP: No inventory snapshot to seed from")
			return nil
		}
		return err
	}

	var items []inventory.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	s.store.Restore(items)
	slog.Info("HTTP: Seeded inventory from snapshot", "items", len(items))
	return nil
}

// persist writes the store snapshot after a mutation. Persistence failure is
// logged, not surfaced: the in-memory store is the source of truth.
func (s *Server) persist(ctx context.Context) {
	if s.snapshot == nil {
		return
	}

	data, err := json.Marshal(s.store.Snapshot())
	if err != nil {
		slog.Error("HTTP: Failed to marshal inventory snapshot", "error", err)
		return
	}
	if err := s.snapshot.Save(ctx, data); err != nil {
		slog.Error("HTTP: Failed to save inventory snapshot", "error", err)
	}
}
