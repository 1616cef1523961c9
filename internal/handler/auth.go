package handler

import (
	"net/http"
	"strings"
	"time"

	"shift-tracker/internal/audit"
	"shift-tracker/internal/auth"
	"shift-tracker/internal/config"
	"shift-tracker/internal/middleware"
	"shift-tracker/internal/models"
	"shift-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// invalidCredentials is returned for unknown usernames and wrong passwords
// alike, so a caller cannot probe which usernames exist.
const invalidCredentials = "incorrect username or password"

// AuthHandler serves login, logout and the forced password change.
type AuthHandler struct {
	DB       *gorm.DB
	Sessions *auth.SessionAuthority
	Audit    *audit.Logger
	Security config.SecurityConfig

	CookieName   string
	CookieMaxAge int
}

func NewAuthHandler(db *gorm.DB, sessions *auth.SessionAuthority, auditLogger *audit.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		DB:           db,
		Sessions:     sessions,
		Audit:        auditLogger,
		Security:     cfg.Security,
		CookieName:   cfg.Session.CookieName,
		CookieMaxAge: cfg.Session.TTLHours * 3600,
	}
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "username and password are required")
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))

	var user models.User
	if err := h.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// unknown username reads exactly like a wrong password
			_ = h.Audit.RecordAccess(username, models.AccessFailedLogin, c.ClientIP(), c.Request.UserAgent())
			util.Error(c, http.StatusUnauthorized, invalidCredentials)
		} else {
			util.Error(c, http.StatusInternalServerError, "failed to look up user")
		}
		return
	}

	if !auth.Verify(req.Password, user.PasswordHash) {
		_ = h.Audit.RecordAccess(user.Username, models.AccessFailedLogin, c.ClientIP(), c.Request.UserAgent())
		util.Error(c, http.StatusUnauthorized, invalidCredentials)
		return
	}

	if !user.IsActive {
		// blocked accounts never get a session and the login counter stays put
		util.Error(c, http.StatusForbidden, "account blocked, contact administrator")
		return
	}

	now := time.Now()
	user.LastLogin = &now
	user.LoginCount++
	if err := h.DB.Model(&user).Updates(map[string]interface{}{
		"last_login":  now,
		"login_count": user.LoginCount,
	}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to update login state")
		return
	}

	// best-effort: a failed audit write must not block the login
	_ = h.Audit.RecordAccess(user.Username, models.AccessLogin, c.ClientIP(), c.Request.UserAgent())

	if user.MustChangePassword {
		ticket, err := auth.IssueChangeTicket(h.Security.TicketSecret, user.ID, user.Username,
			time.Duration(h.Security.TicketTTLMinutes)*time.Minute)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, "failed to issue change ticket")
			return
		}
		util.Success(c, gin.H{
			"requirePasswordChange": true,
			"userId":                user.ID,
			"username":              user.Username,
			"changeToken":           ticket,
		})
		return
	}

	token, err := h.Sessions.Create(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to create session")
		return
	}
	h.setSessionCookie(c, token)

	util.Success(c, gin.H{
		"requirePasswordChange": false,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(h.CookieName)

	if user, err := h.Sessions.Resolve(token); err == nil {
		// best-effort: logout succeeds even if the audit write fails
		_ = h.Audit.RecordAccess(user.Username, models.AccessLogout, c.ClientIP(), c.Request.UserAgent())
	}

	_ = h.Sessions.Destroy(token)
	c.SetCookie(h.CookieName, "", -1, "/", "", false, true)

	util.Success(c, gin.H{})
}

// Me returns the current principal without the password hash.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}
	c.JSON(http.StatusOK, toUserResp(user))
}

// MeProfile is the profile-shaped alias of Me used by the frontend.
func (h *AuthHandler) MeProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}
	util.Success(c, gin.H{
		"user": gin.H{
			"id":        user.ID,
			"username":  user.Username,
			"role":      user.Role,
			"phone":     user.Phone,
			"email":     user.Email,
			"avatar":    user.Avatar,
			"createdAt": user.CreatedAt,
		},
	})
}

type forcedChangeReq struct {
	UserID          uint   `json:"userId" binding:"required"`
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ChangeToken     string `json:"changeToken" binding:"required"`
}

// ChangePassword completes a forced password change. No session exists yet;
// the signed ticket from the login response plus the current password stand
// in for one. On success the new session is issued immediately.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req forcedChangeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "userId, currentPassword, newPassword and changeToken are required")
		return
	}

	claims, err := auth.ParseChangeTicket(h.Security.TicketSecret, req.ChangeToken)
	if err != nil {
		util.Error(c, http.StatusUnauthorized, "invalid or expired change ticket")
		return
	}
	if claims.UserID != req.UserID {
		util.Error(c, http.StatusForbidden, "change ticket does not match user")
		return
	}

	if err := auth.ValidateStrength(req.NewPassword); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	var user models.User
	if err := h.DB.First(&user, req.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "user not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "failed to look up user")
		}
		return
	}

	if !auth.Verify(req.CurrentPassword, user.PasswordHash) {
		util.Error(c, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := auth.Hash(req.NewPassword, h.Security.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := h.DB.Model(&user).Updates(map[string]interface{}{
		"password_hash":        hash,
		"must_change_password": false,
	}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to update password")
		return
	}

	token, err := h.Sessions.Create(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to create session")
		return
	}
	h.setSessionCookie(c, token)

	util.Success(c, gin.H{
		"message": "password updated",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(h.CookieName, token, h.CookieMaxAge, "/", "", false, true)
}
