package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/catalog-watch/app/catalog"
	"github.com/lysyi3m/catalog-watch/app/store"
	"github.com/lysyi3m/catalog-watch/app/tasks"
)

func NewHandler(changes ChangeReader, snapshots SnapshotReader, scheduler tasks.TaskSchedulerInterface,
	baseURL, version string) *Handler {
	return &Handler{
		changes:   changes,
		snapshots: snapshots,
		scheduler: scheduler,
		generator: NewGenerator(baseURL, version),
		version:   version,
	}
}

func (h *Handler) GetChanges(c *gin.Context) {
	history, err := h.changes.List()
	if err != nil {
		slog.Error("Failed to read change history", "error", err)
		h.renderError(c, http.StatusInternalServerError, "The change history could not be read.")
		return
	}

	slices.Reverse(history)

	c.HTML(http.StatusOK, "changes.html", gin.H{
		"Title":   "Changes",
		"Version": h.version,
		"Changes": history,
	})
}

// GetChange renders the record named by the id parameter, or the latest
// record when no id is given.
func (h *Handler) GetChange(c *gin.Context) {
	record, err := h.findChange(c.Param("id"))
	if errors.Is(err, store.ErrChangeNotFound) {
		h.renderError(c, http.StatusNotFound, "Change not found.")
		return
	}
	if err != nil {
		slog.Error("Failed to read change history", "id", c.Param("id"), "error", err)
		h.renderError(c, http.StatusInternalServerError, "The change history could not be read.")
		return
	}

	c.HTML(http.StatusOK, "change.html", gin.H{
		"Title":   "Change",
		"Version": h.version,
		"Change":  newChangeView(record),
	})
}

func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.loadProducts()
	if err != nil {
		slog.Error("Failed to read snapshot", "error", err)
		h.renderError(c, http.StatusInternalServerError, "The product snapshot could not be read.")
		return
	}

	c.HTML(http.StatusOK, "products.html", gin.H{
		"Title":    "Products",
		"Version":  h.version,
		"Products": productViews(products),
	})
}

func (h *Handler) GetChangesFeed(c *gin.Context) {
	history, err := h.changes.List()
	if err != nil {
		slog.Error("Failed to read change history", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run(history)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(min(len(history), feedItemLimit)))
	if len(history) > 0 {
		c.Header("X-Last-Updated", history[len(history)-1].Timestamp.Format(time.RFC3339))
	}

	c.String(http.StatusOK, rss)
}

func (h *Handler) APIListChanges(c *gin.Context) {
	history, err := h.changes.List()
	if err != nil {
		slog.Error("Failed to read change history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read change history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes": history,
		"total":   len(history),
	})
}

func (h *Handler) APIGetLatestChange(c *gin.Context) {
	h.respondChange(c, "")
}

func (h *Handler) APIGetChange(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing change id parameter"})
		return
	}

	h.respondChange(c, id)
}

// APIGetProducts returns the snapshot file as stored.
func (h *Handler) APIGetProducts(c *gin.Context) {
	data, err := h.snapshots.Raw()
	if err != nil {
		slog.Error("Failed to read snapshot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read snapshot"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if h.scheduler != nil {
		health["scheduler"] = h.scheduler.Stats()
	}

	if history, err := h.changes.List(); err == nil {
		health["changes"] = len(history)
	} else {
		health["status"] = "degraded"
		health["error"] = err.Error()
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) respondChange(c *gin.Context, id string) {
	record, err := h.findChange(id)
	if errors.Is(err, store.ErrChangeNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Change not found"})
		return
	}
	if err != nil {
		slog.Error("Failed to read change history", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read change history"})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *Handler) findChange(id string) (*store.ChangeRecord, error) {
	if id == "" {
		return h.changes.Latest()
	}
	return h.changes.Lookup(id)
}

func (h *Handler) loadProducts() ([]string, error) {
	data, err := h.snapshots.Raw()
	if err != nil {
		return nil, err
	}

	var products []string
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return products, nil
}

func (h *Handler) renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Version": h.version,
		"Message": message,
	})
}

func newChangeView(record *store.ChangeRecord) changeView {
	return changeView{
		ID:        record.ID.String(),
		Timestamp: record.Timestamp,
		Added:     productViews(record.Added),
		Removed:   productViews(record.Removed),
	}
}

func productViews(products []string) []productView {
	views := make([]productView, 0, len(products))
	for _, product := range products {
		views = append(views, productView{URL: product, Label: catalog.DisplayName(product)})
	}
	return views
}
