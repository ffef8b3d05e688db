package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu    sync.Mutex
	items map[string]*Contact
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[string]*Contact{}}
}

func (s *fakeStore) Insert(_ context.Context, contact *Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *contact
	s.items[contact.ID] = &clone
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *contact
	return &clone, nil
}

func (s *fakeStore) List(_ context.Context, status *Status, search string) ([]Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Contact, 0, len(s.items))
	for _, contact := range s.items {
		if status != nil && contact.Status != *status {
			continue
		}
		if search != "" {
			needle := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(contact.Email), needle) &&
				!strings.Contains(strings.ToLower(contact.Message), needle) {
				continue
			}
		}
		out = append(out, *contact)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id string, status Status) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	contact.Status = status
	clone := *contact
	return &clone, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.items, id)
	clone := *contact
	return &clone, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	handler := NewHandler(store, true)

	router := gin.New()
	passthrough := func(c *gin.Context) { c.Next() }
	Register(router.Group("/api/contact"), handler, passthrough, passthrough)

	return router, store
}

func doJSON(router *gin.Engine, method, target string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestInputValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"invalid email", Input{Email: "not-an-email", Message: "long enough message"}, "email"},
		{"missing email", Input{Message: "long enough message"}, "email"},
		{"message too short", Input{Email: "a@b.com", Message: "short"}, "message"},
		{"message too long", Input{Email: "a@b.com", Message: strings.Repeat("x", 2001)}, "message"},
		{"phone invalid chars", Input{Email: "a@b.com", Phone: "call-me-maybe", Message: "long enough message"}, "phone"},
		{"phone too long", Input{Email: "a@b.com", Phone: strings.Repeat("1", 21), Message: "long enough message"}, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			err := tt.in.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestCreateContactInvalidEmail(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/contact", Input{
		Email:   "nope",
		Message: "hello, I would like to talk about a project",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode(t, rec)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["errors"].(map[string]any), "email")
}

func TestCreateContactDefaultsToNew(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/contact", Input{
		Email:   "Someone@Example.COM",
		Phone:   "+45 1234 5678",
		Message: "hello, I would like to talk about a project",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "new", data["status"])
	assert.Equal(t, "someone@example.com", data["email"], "email must be lowercased")
	assert.NotEmpty(t, data["id"])
}

func TestContactStatusLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/contact", Input{
		Email:   "someone@example.com",
		Message: "hello, I would like to talk about a project",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["data"].(map[string]any)["id"].(string)

	rec = doJSON(router, http.MethodPut, "/api/contact/"+id, updateStatusReq{Status: "reviewed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reviewed", decode(t, rec)["data"].(map[string]any)["status"])

	rec = doJSON(router, http.MethodPut, "/api/contact/"+id, updateStatusReq{Status: "bogus"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["errors"].(map[string]any), "status")

	rec = doJSON(router, http.MethodGet, "/api/contact/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodDelete, "/api/contact/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodDelete, "/api/contact/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactListFilters(t *testing.T) {
	router, _ := newTestRouter(t)

	mk := func(email, message string) string {
		rec := doJSON(router, http.MethodPost, "/api/contact", Input{Email: email, Message: message})
		require.Equal(t, http.StatusCreated, rec.Code)
		return decode(t, rec)["data"].(map[string]any)["id"].(string)
	}

	mk("alice@example.com", "interested in the shop project")
	id := mk("bob@example.com", "question about pricing")

	rec := doJSON(router, http.MethodPut, "/api/contact/"+id, updateStatusReq{Status: "archived"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodGet, "/api/contact?status=archived", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, float64(1), resp["count"])

	rec = doJSON(router, http.MethodGet, "/api/contact?search=shop", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode(t, rec)
	require.Equal(t, float64(1), resp["count"])
	items := resp["data"].([]any)
	assert.Equal(t, "alice@example.com", items[0].(map[string]any)["email"])
}

func TestContactNotFoundOnMalformedID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/contact/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
