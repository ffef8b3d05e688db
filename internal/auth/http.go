package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost     = 12
	passwordMinLen = 6
)

type Handler struct {
	users         Store
	jwt           *JWTService
	secureCookies bool
}

func NewHandler(users Store, jwt *JWTService, secureCookies bool) *Handler {
	return &Handler{users: users, jwt: jwt, secureCookies: secureCookies}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/login", h.login)
	rg.POST("/logout", h.logout)
	rg.GET("/check-auth", h.checkAuth)
	rg.POST("/create-admin", h.createAdmin)
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "username and password required"})
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			log.Printf("auth: login lookup: %v", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})
		return
	}

	token, err := h.jwt.GenerateToken(user)
	if err != nil {
		log.Printf("auth: sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "login failed"})
		return
	}

	h.setSessionCookie(c, token, int(h.jwt.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "login successful", "isAdmin": user.IsAdmin})
}

func (h *Handler) logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out successfully"})
}

// checkAuth reports session state without ever failing the request; an
// invalid cookie is simply "not authenticated".
func (h *Handler) checkAuth(c *gin.Context) {
	token, err := c.Cookie(CookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusOK, gin.H{"isAuthenticated": false})
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"isAuthenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"isAuthenticated": true, "isAdmin": claims.IsAdmin})
}

func (h *Handler) createAdmin(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "username and password required"})
		return
	}
	if len(req.Password) < passwordMinLen {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "password must be at least 6 characters"})
		return
	}

	if _, err := h.users.GetByUsername(c.Request.Context(), req.Username); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "admin already exists"})
		return
	} else if !errors.Is(err, ErrUserNotFound) {
		log.Printf("auth: create-admin lookup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create admin"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		log.Printf("auth: hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create admin"})
		return
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.users.Insert(c.Request.Context(), user); err != nil {
		log.Printf("auth: insert admin: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to create admin"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "admin created successfully",
		"admin":   gin.H{"id": user.ID, "username": user.Username},
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", h.secureCookies, true)
}
