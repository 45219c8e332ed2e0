// Package server exposes the cafeteria service over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"babnet-backend/lib/fetchutil"
	"babnet-backend/lib/mealstore"
	"babnet-backend/lib/timezone"
	"babnet-backend/services/cafeteria"

	"github.com/gin-gonic/gin"
	"github.com/mazen160/go-random"
)

var dateKeyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type Handler struct {
	service    cafeteria.Service
	store      mealstore.Store
	cronSecret string
	now        func() time.Time
}

// New builds the HTTP handler. `cronSecret` guards the cron endpoint;
// `now` may be nil to use the Seoul wall clock.
func New(service cafeteria.Service, store mealstore.Store, cronSecret string, now func() time.Time) *Handler {
	if now == nil {
		now = timezone.Now
	}
	return &Handler{
		service:    service,
		store:      store,
		cronSecret: cronSecret,
		now:        now,
	}
}

func (h *Handler) Register(router gin.IRouter) {
	api := router.Group("/api")
	api.GET("/health", h.health)
	api.GET("/meal/:date", h.getMeal)
	api.POST("/refresh/:date", h.refreshDate)
	api.GET("/cron/refresh", h.cronRefresh)
	api.GET("/search/:foodName", h.searchFood)
}

func requestId() string {
	id, err := random.String(8)
	if err != nil {
		return "????????"
	}
	return id
}

func (h *Handler) respond(c *gin.Context, status int, body gin.H) {
	body["requestId"] = requestId()
	body["timestamp"] = h.now().Format(time.RFC3339)
	c.JSON(status, body)
}

// respondError maps service errors onto the wire contract. upstream
// fetch failures surface with their original status so clients can
// tell a source outage from a missing menu.
func (h *Handler) respondError(c *gin.Context, err error) {
	var statusErr *fetchutil.StatusError

	switch {
	case errors.Is(err, cafeteria.ErrNoInformation):
		h.respond(c, http.StatusNotFound, gin.H{"error": "급식 정보가 없어요"})
	case errors.Is(err, cafeteria.ErrNoOperation):
		h.respond(c, http.StatusNotFound, gin.H{"error": "급식 운영이 없어요"})
	case errors.As(err, &statusErr):
		h.respond(c, statusErr.Status, gin.H{"error": "Failed to fetch menu from source"})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "err", err)
		h.respond(c, http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *Handler) parseDateParam(c *gin.Context) (string, bool) {
	date := c.Param("date")
	if !dateKeyRegex.MatchString(date) {
		h.respond(c, http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return "", false
	}
	if _, err := timezone.ParseDate(date); err != nil {
		h.respond(c, http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return "", false
	}
	return date, true
}

func (h *Handler) getMeal(c *gin.Context) {
	date, ok := h.parseDateParam(c)
	if !ok {
		return
	}

	data, err := h.service.GetCafeteriaData(c.Request.Context(), date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{"date": date, "data": data})
}

func (h *Handler) refreshDate(c *gin.Context) {
	date, ok := h.parseDateParam(c)
	if !ok {
		return
	}

	data, err := h.service.RefreshSpecificDate(c.Request.Context(), date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{"date": date, "data": data})
}

func (h *Handler) cronRefresh(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+h.cronSecret {
		h.respond(c, http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	refreshType := cafeteria.RefreshType(c.DefaultQuery("type", string(cafeteria.RefreshToday)))
	if refreshType != cafeteria.RefreshToday && refreshType != cafeteria.RefreshAll {
		h.respond(c, http.StatusBadRequest, gin.H{"error": "Invalid refresh type"})
		return
	}

	report, err := h.service.Refresh(c.Request.Context(), refreshType)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{
		"type":    refreshType,
		"success": report.Success,
		"errors":  report.Errors,
	})
}

func (h *Handler) searchFood(c *gin.Context) {
	foodName := c.Param("foodName")

	found, err := h.store.SearchLatestFoodImage(c.Request.Context(), foodName)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if found == nil {
		h.respond(c, http.StatusNotFound, gin.H{"error": "해당 메뉴를 찾을 수 없어요"})
		return
	}
	h.respond(c, http.StatusOK, gin.H{
		"foodName": foodName,
		"date":     found.Date,
		"mealType": found.MealType,
		"image":    found.Image,
	})
}

func (h *Handler) health(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{
		"status":        "ok",
		"totalMealData": stats.TotalMealData,
		"lastUpdated":   stats.LastUpdated,
	})
}
