package handlers

import (
	"net/http"
	"time"

	"github.com/andresuchdata/stockweeks/internal/feed"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	store *feed.Store
}

func NewHealthHandler(store *feed.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) GetHealth(c *gin.Context) {
	resp := gin.H{"status": "ok", "time": time.Now().UTC()}
	if h.store != nil {
		resp["brands"] = len(h.store.Brands())
		if loaded := h.store.LoadedAt(); !loaded.IsZero() {
			resp["feeds_loaded_at"] = loaded.UTC()
		}
	}
	c.JSON(http.StatusOK, resp)
}
