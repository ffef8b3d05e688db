package projects

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio-backend/internal/images"
)

// imageCacheControl keeps served variants fresh for a year; variant URLs are
// stable per project id so clients can cache aggressively.
const imageCacheControl = "public, max-age=31536000"

type Handler struct {
	svc        *Service
	maxUpload  int64
	exposeErrs bool
}

func NewHandler(svc *Service, maxUpload int64, exposeErrs bool) *Handler {
	return &Handler{svc: svc, maxUpload: maxUpload, exposeErrs: exposeErrs}
}

// Register attaches project routes. Reads are public; mutations sit behind
// the auth gate.
func Register(rg *gin.RouterGroup, h *Handler, requireAuth gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.GET("/:id/image", h.image)
	rg.GET("/:id/image/thumbnail", h.thumbnail)

	rg.POST("", requireAuth, h.create)
	rg.PUT("/:id", requireAuth, h.update)
	rg.DELETE("/:id", requireAuth, h.delete)
}

func (h *Handler) create(c *gin.Context) {
	in := CreateInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        SplitTags(c.PostForm("tags")),
		Category:    c.PostForm("category"),
		Featured:    c.PostForm("featured") == "true",
		GitHub:      c.PostForm("github"),
		Live:        c.PostForm("live"),
	}

	raw, ok := h.readUpload(c)
	if !ok {
		return
	}
	in.RawImage = raw

	v, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": v})
}

func (h *Handler) get(c *gin.Context) {
	v, fromCache, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": v, "fromCache": fromCache})
}

func (h *Handler) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))

	var f ListFilter
	switch c.Query("featured") {
	case "true":
		featured := true
		f.Featured = &featured
	case "false":
		featured := false
		f.Featured = &featured
	}
	if cat := Category(c.Query("category")); cat.Valid() {
		f.Category = &cat
	}
	f.Search = strings.TrimSpace(c.Query("search"))

	result, fromCache, err := h.svc.List(c.Request.Context(), f, page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       result.Data,
		"pagination": result.Pagination,
		"fromCache":  fromCache,
	})
}

func (h *Handler) update(c *gin.Context) {
	var in UpdateInput
	if v, ok := c.GetPostForm("title"); ok {
		in.Title = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		in.Description = &v
	}
	if v, ok := c.GetPostForm("tags"); ok {
		tags := SplitTags(v)
		if tags == nil {
			tags = []string{}
		}
		in.Tags = tags
	}
	if v, ok := c.GetPostForm("category"); ok {
		in.Category = &v
	}
	if v, ok := c.GetPostForm("featured"); ok {
		featured := v == "true"
		in.Featured = &featured
	}
	if v, ok := c.GetPostForm("github"); ok {
		in.GitHub = &v
	}
	if v, ok := c.GetPostForm("live"); ok {
		in.Live = &v
	}
	in.RemoveImage = c.PostForm("removeImage") == "true"

	raw, ok := h.readUpload(c)
	if !ok {
		return
	}
	in.RawImage = raw

	v, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": v, "message": "project updated successfully"})
}

func (h *Handler) delete(c *gin.Context) {
	v, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": v, "message": "project deleted successfully"})
}

func (h *Handler) image(c *gin.Context) {
	h.serveVariant(c, VariantFull)
}

func (h *Handler) thumbnail(c *gin.Context) {
	h.serveVariant(c, VariantThumbnail)
}

func (h *Handler) serveVariant(c *gin.Context, variant Variant) {
	data, contentType, err := h.svc.Image(c.Request.Context(), c.Param("id"), variant)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Cache-Control", imageCacheControl)
	c.Data(http.StatusOK, contentType, data)
}

// readUpload pulls the optional "image" multipart file, enforcing the byte
// ceiling and content-type gate before any transcoding happens. Returns
// ok=false when it has already written an error response.
func (h *Handler) readUpload(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// No file attached (or no multipart body at all): nothing to read.
		return nil, true
	}

	if fileHeader.Size > h.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "validation failed",
			"errors":  gin.H{"image": "image exceeds the maximum upload size"},
		})
		return nil, false
	}

	if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "validation failed",
			"errors":  gin.H{"image": "only image files are allowed"},
		})
		return nil, false
	}

	raw, err := readAll(fileHeader)
	if err != nil {
		log.Printf("read upload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "failed to read uploaded file",
		})
		return nil, false
	}
	return raw, true
}

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
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
	case errors.Is(err, images.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "validation failed",
			"errors":  gin.H{"image": "unsupported image format"},
		})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "project not found"})
	default:
		log.Printf("projects: %v", err)
		body := gin.H{"success": false, "message": "internal server error"}
		if h.exposeErrs {
			body["error"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}
