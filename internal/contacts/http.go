package contacts

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Store is the persistence contract for contact messages.
type Store interface {
	Insert(ctx context.Context, contact *Contact) error
	Get(ctx context.Context, id string) (*Contact, error)
	List(ctx context.Context, status *Status, search string) ([]Contact, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Contact, error)
	Delete(ctx context.Context, id string) (*Contact, error)
}

type Handler struct {
	store      Store
	exposeErrs bool
}

func NewHandler(store Store, exposeErrs bool) *Handler {
	return &Handler{store: store, exposeErrs: exposeErrs}
}

// Register attaches contact routes. Creation is public (rate-limited at the
// router); everything else requires an authenticated session.
func Register(rg *gin.RouterGroup, h *Handler, requireAuth, rateLimit gin.HandlerFunc) {
	rg.POST("", rateLimit, h.create)

	rg.GET("", requireAuth, h.list)
	rg.GET("/:id", requireAuth, h.get)
	rg.PUT("/:id", requireAuth, h.updateStatus)
	rg.DELETE("/:id", requireAuth, h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		h.fail(c, err)
		return
	}

	contact := &Contact{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		Status:    StatusNew,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.Insert(c.Request.Context(), contact); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    contact,
		"message": "thank you for your message!",
	})
}

func (h *Handler) list(c *gin.Context) {
	var status *Status
	if s := Status(c.Query("status")); s.Valid() {
		status = &s
	}
	search := strings.TrimSpace(c.Query("search"))

	items, err := h.store.List(c.Request.Context(), status, search)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}

	contact, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": contact})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}

	status := Status(req.Status)
	if !status.Valid() {
		h.fail(c, &ValidationError{Fields: map[string]string{"status": "status must be one of new, reviewed, archived"}})
		return
	}

	id, ok := h.id(c)
	if !ok {
		return
	}

	contact, err := h.store.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": contact, "message": "contact updated successfully"})
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}

	contact, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": contact, "message": "contact deleted successfully"})
}

// id validates the path parameter up front so malformed ids read as absent
// records instead of driver errors.
func (h *Handler) id(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "contact message not found"})
		return "", false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	var verr *ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "contact message not found"})
	default:
		log.Printf("contacts: %v", err)
		body := gin.H{"success": false, "message": "internal server error"}
		if h.exposeErrs {
			body["error"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}
