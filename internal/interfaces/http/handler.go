package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"

	"project_asesoria/internal/entities"
	"project_asesoria/internal/infrastructure"
	"project_asesoria/internal/repository"
	"project_asesoria/internal/usecases"
)

// Handler is the ops API: session status and QR pairing, business-hours
// configuration and the conversation listing the coordination team works
// from.
type Handler struct {
	auth     *usecases.AuthUsecase
	gate     *usecases.HoursGate
	settings *repository.SettingsRepository
	convs    *repository.ConversationRepository
	outages  *repository.OutageRepository
	schedule *repository.ScheduleRepository
	wa       *infrastructure.WhatsAppClient
	queue    *infrastructure.SendQueue
}

func NewHandler(
	auth *usecases.AuthUsecase,
	gate *usecases.HoursGate,
	settings *repository.SettingsRepository,
	convs *repository.ConversationRepository,
	outages *repository.OutageRepository,
	schedule *repository.ScheduleRepository,
	wa *infrastructure.WhatsAppClient,
	queue *infrastructure.SendQueue,
) *Handler {
	return &Handler{auth: auth, gate: gate, settings: settings, convs: convs, outages: outages, schedule: schedule, wa: wa, queue: queue}
}

func SetupRoutes(r *gin.Engine, h *Handler, middleware *Middleware) {
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(1 << 20))
	r.Use(middleware.CORSMiddleware())

	started := time.Now()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":             "ok",
			"whatsapp_connected": h.wa.IsConnected(),
			"uptime_seconds":     int(time.Since(started).Seconds()),
		})
	})
	r.POST("/api/login", h.Login)

	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	api.Use(middleware.RateLimitPerUser(rate.Limit(5), 10))
	{
		api.GET("/status", h.Status)
		api.GET("/qr", h.QR)
		api.GET("/windows", h.GetWindows)
		api.PUT("/windows", h.PutWindows)
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.PutSettings)
		api.PUT("/schedule/:group", h.PutSchedule)
		api.GET("/conversations", h.ListConversations)
		api.POST("/conversations/:id/name", h.SetName)
		api.POST("/conversations/:id/pause", h.Pause)
		api.POST("/conversations/:id/resume", h.Resume)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) Status(c *gin.Context) {
	statuses, err := h.outages.ServiceStatuses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"whatsapp_connected": h.wa.IsConnected(),
		"queue_depth":        h.queue.Depth(),
		"queue_active":       h.queue.Active(),
		"services":           statuses,
	})
}

// QR serves the current pairing code as a PNG, empty 404 when already
// paired.
func (h *Handler) QR(c *gin.Context) {
	code := h.wa.GetQR()
	if code == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No QR available"})
		return
	}
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) GetWindows(c *gin.Context) {
	windows, err := h.settings.Windows(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

func (h *Handler) PutWindows(c *gin.Context) {
	var req struct {
		Windows []entities.Window `json:"windows"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	for _, w := range req.Windows {
		if !ValidWindow(w) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid window"})
			return
		}
	}
	if err := h.settings.ReplaceWindows(c.Request.Context(), req.Windows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.gate.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *Handler) GetSettings(c *gin.Context) {
	cfg, err := h.gate.Config(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled":   cfg.Enabled,
		"timezone":  cfg.Timezone,
		"off_reply": cfg.OffReply,
	})
}

func (h *Handler) PutSettings(c *gin.Context) {
	var req struct {
		Enabled  bool   `json:"enabled"`
		Timezone string `json:"timezone"`
		OffReply string `json:"off_reply"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := h.settings.SetGate(c.Request.Context(), req.Enabled, req.Timezone, req.OffReply); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.gate.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// PutSchedule replaces one group's weekly schedule.
func (h *Handler) PutSchedule(c *gin.Context) {
	group := strings.ToUpper(c.Param("group"))
	if group != "A" && group != "B" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown group"})
		return
	}
	var req struct {
		Slots []entities.ClassSlot `json:"slots"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := h.schedule.Replace(c.Request.Context(), group, req.Slots); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *Handler) ListConversations(c *gin.Context) {
	entries, err := h.convs.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": entries})
}

func (h *Handler) SetName(c *gin.Context) {
	id := c.Param("id")
	if !ValidChatID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat id"})
		return
	}
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := h.convs.SetName(c.Request.Context(), id, req.Name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *Handler) Pause(c *gin.Context) {
	h.setPaused(c, true)
}

func (h *Handler) Resume(c *gin.Context) {
	h.setPaused(c, false)
}

func (h *Handler) setPaused(c *gin.Context, paused bool) {
	id := c.Param("id")
	if !ValidChatID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat id"})
		return
	}
	if err := h.convs.SetPaused(c.Request.Context(), id, paused); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}
