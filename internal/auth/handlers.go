package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/lending/internal/config"
	"github.com/mrlokans/lending/internal/entities"
)

// EventRecorder receives authentication events for the audit trail.
type EventRecorder interface {
	LogAuth(ctx context.Context, userID uint, action, ipAddr, userAgent string, success bool)
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID       uint              `json:"id"`
	Username string            `json:"username"`
	Email    string            `json:"email"`
	Role     entities.UserRole `json:"role"`
}

func newUserResponse(u *entities.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// AuthController serves the JSON login, logout, token and CSRF endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	recorder       EventRecorder
}

// NewAuthController creates the controller and its login rate limiter. recorder
// may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, recorder EventRecorder, cfg config.Auth) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts: cfg.MaxLoginAttempts,
			Lockout:     cfg.LockoutDuration,
		}),
		recorder: recorder,
	}
}

// RegisterRoutes mounts the endpoints under /api/auth.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/api/auth")
	group.GET("/csrf", ac.CSRFToken)
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.GET("/me", ac.Me)
	group.POST("/token", ac.GenerateToken)
	group.DELETE("/token", ac.RevokeToken)
}

// Stop ends the rate limiter's cleanup loop.
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

// CSRFToken hands out the token that session-authenticated clients echo back in
// the X-CSRF-Token header.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrf_token": GetCSRFToken(c), "header": CSRFTokenHeader})
}

// Login verifies credentials and starts a cookie session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "login and password are required", "code": http.StatusBadRequest})
		return
	}

	ip := c.ClientIP()
	if allowed, retryAfter := ac.rateLimiter.Allow(ip, req.Login); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts", "code": http.StatusTooManyRequests})
		return
	}

	user, err := ac.service.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		ac.rateLimiter.RecordFailure(ip, req.Login)
		ac.record(c, 0, "login_failed", false)

		message := "invalid username or password"
		if errors.Is(err, ErrAccountLocked) {
			message = "account is locked, try again later"
		} else if !errors.Is(err, ErrInvalidPassword) && !errors.Is(err, ErrUserNotFound) {
			log.Printf("[AUTH] Login error for %q: %v", req.Login, err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": message, "code": http.StatusUnauthorized})
		return
	}
	ac.rateLimiter.RecordSuccess(ip, req.Login)

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			log.Printf("[AUTH] Failed to create session for user %d: %v", user.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session", "code": http.StatusInternalServerError})
			return
		}
	}
	ac.record(c, user.ID, "login", true)

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

// Logout destroys the session.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		if err := ac.sessionManager.DestroySession(c.Request); err != nil {
			log.Printf("[AUTH] Failed to destroy session: %v", err)
		}
	}
	ac.record(c, GetUserID(c), "logout", true)
	c.Status(http.StatusNoContent)
}

// Me returns the authenticated user.
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.service.GetUser(c.Request.Context(), GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": http.StatusUnauthorized})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user), "auth_type": GetAuthType(c)})
}

// GenerateToken issues a bearer token for the authenticated user.
func (ac *AuthController) GenerateToken(c *gin.Context) {
	userID := GetUserID(c)
	token, err := ac.service.GenerateToken(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token", "code": http.StatusInternalServerError})
		return
	}
	ac.record(c, userID, "token_generate", true)

	c.JSON(http.StatusCreated, gin.H{
		"token":   token,
		"message": "Store this token securely - it will not be shown again",
	})
}

// RevokeToken removes the authenticated user's bearer token.
func (ac *AuthController) RevokeToken(c *gin.Context) {
	userID := GetUserID(c)
	if err := ac.service.RevokeToken(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token", "code": http.StatusInternalServerError})
		return
	}
	ac.record(c, userID, "token_revoke", true)
	c.Status(http.StatusNoContent)
}

func (ac *AuthController) record(c *gin.Context, userID uint, action string, success bool) {
	if ac.recorder == nil {
		return
	}
	ac.recorder.LogAuth(c.Request.Context(), userID, action, c.ClientIP(), c.Request.UserAgent(), success)
}
