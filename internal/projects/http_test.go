package projects

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio-backend/internal/images"
)

func newTestRouter(t *testing.T) (*gin.Engine, *fakeStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	svc := NewService(store, nil, images.NewTranscoder())
	handler := NewHandler(svc, 10*1024*1024, true)

	router := gin.New()
	allowAll := func(c *gin.Context) { c.Next() }
	Register(router.Group("/api/projects"), handler, allowAll)

	return router, store
}

func multipartBody(t *testing.T, fields map[string]string, imageBytes []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}

	if imageBytes != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="image"; filename="upload.png"`)
		header.Set("Content-Type", "image/png")
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(imageBytes)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func do(router *gin.Engine, method, target, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func demoFields() map[string]string {
	return map[string]string{
		"title":       "Demo",
		"description": strings.Repeat("a sufficiently long description ", 3),
		"tags":        "x",
		"category":    "web",
	}
}

func TestProjectLifecycleEndToEnd(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, demoFields(), nil)
	rec := do(router, http.MethodPost, "/api/projects", contentType, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeBody(t, rec)
	data := created["data"].(map[string]any)
	id := data["id"].(string)
	require.NotEmpty(t, id)
	assert.Len(t, data["tags"].([]any), 1)

	rec = do(router, http.MethodGet, "/api/projects/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "Demo", got["data"].(map[string]any)["title"])

	rec = do(router, http.MethodDelete, "/api/projects/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	echoed := decodeBody(t, rec)
	assert.Equal(t, "Demo", echoed["data"].(map[string]any)["title"])

	rec = do(router, http.MethodGet, "/api/projects/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProjectValidationErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	fields := demoFields()
	fields["title"] = ""
	fields["description"] = "short"

	body, contentType := multipartBody(t, fields, nil)
	rec := do(router, http.MethodPost, "/api/projects", contentType, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, false, resp["success"])
	errs := resp["errors"].(map[string]any)
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "description")
}

func TestImageUploadAndServing(t *testing.T) {
	router, _ := newTestRouter(t)

	png := testPNG(t, 1600, 900)
	body, contentType := multipartBody(t, demoFields(), png)
	rec := do(router, http.MethodPost, "/api/projects", contentType, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decodeBody(t, rec)["data"].(map[string]any)
	id := data["id"].(string)
	imageRef := data["image"].(map[string]any)
	assert.Equal(t, fmt.Sprintf("/api/projects/%s/image", id), imageRef["url"])
	assert.Equal(t, float64(len(png)), imageRef["originalSize"])

	rec = do(router, http.MethodGet, "/api/projects/"+id+"/image", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = do(router, http.MethodGet, "/api/projects/"+id+"/image/thumbnail", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.Bytes())

	// removeImage clears the composite; the byte endpoints go 404.
	body, contentType = multipartBody(t, map[string]string{"removeImage": "true"}, nil)
	rec = do(router, http.MethodPut, "/api/projects/"+id, contentType, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody(t, rec)["data"].(map[string]any)["image"])

	rec = do(router, http.MethodGet, "/api/projects/"+id+"/image", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateRejectsReplaceAndRemoveTogether(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, demoFields(), nil)
	rec := do(router, http.MethodPost, "/api/projects", contentType, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["data"].(map[string]any)["id"].(string)

	body, contentType = multipartBody(t, map[string]string{"removeImage": "true"}, testPNG(t, 50, 50))
	rec = do(router, http.MethodPut, "/api/projects/"+id, contentType, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["errors"].(map[string]any), "image")
}

func TestUploadRejectsNonImageContentType(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range demoFields() {
		require.NoError(t, w.WriteField(key, value))
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="payload.txt"`)
	header.Set("Content-Type", "text/plain")
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rec := do(router, http.MethodPost, "/api/projects", w.FormDataContentType(), &buf)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["errors"].(map[string]any), "image")
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	svc := NewService(store, nil, images.NewTranscoder())
	handler := NewHandler(svc, 64, true) // tiny ceiling for the test

	router := gin.New()
	Register(router.Group("/api/projects"), handler, func(c *gin.Context) { c.Next() })

	body, contentType := multipartBody(t, demoFields(), testPNG(t, 200, 200))
	rec := do(router, http.MethodPost, "/api/projects", contentType, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["errors"].(map[string]any), "image")
	assert.Empty(t, store.items)
}

func TestListEndpointPaginationAndClamp(t *testing.T) {
	router, _ := newTestRouter(t)

	for i := 0; i < 12; i++ {
		fields := demoFields()
		fields["title"] = fmt.Sprintf("Project %02d", i)
		body, contentType := multipartBody(t, fields, nil)
		rec := do(router, http.MethodPost, "/api/projects", contentType, body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(router, http.MethodGet, "/api/projects?page=2&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Len(t, resp["data"].([]any), 5)
	pagination := resp["pagination"].(map[string]any)
	assert.Equal(t, float64(12), pagination["total"])
	assert.Equal(t, float64(3), pagination["pages"])
	assert.Equal(t, false, resp["fromCache"])

	rec = do(router, http.MethodGet, "/api/projects?limit=500", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pagination = decodeBody(t, rec)["pagination"].(map[string]any)
	assert.Equal(t, float64(100), pagination["limit"])
}
