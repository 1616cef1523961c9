package handler

import (
	"net/http"
	"strings"

	"shift-tracker/internal/auth"
	"shift-tracker/internal/middleware"
	"shift-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProfileHandler serves self-service profile and password updates.
type ProfileHandler struct {
	DB         *gorm.DB
	BcryptCost int
}

func NewProfileHandler(db *gorm.DB, bcryptCost int) *ProfileHandler {
	return &ProfileHandler{DB: db, BcryptCost: bcryptCost}
}

type updateProfileReq struct {
	Phone  *string `json:"phone"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

// UpdateProfile updates the caller's contact fields. Only provided fields
// change.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
		updates["phone"] = user.Phone
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		updates["email"] = user.Email
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
		updates["avatar"] = user.Avatar
	}

	if len(updates) > 0 {
		if err := h.DB.Model(user).Updates(updates).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, "failed to update profile")
			return
		}
	}

	util.Success(c, gin.H{
		"message": "profile updated",
		"user": gin.H{
			"phone":  user.Phone,
			"email":  user.Email,
			"avatar": user.Avatar,
		},
	})
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ChangePassword lets a logged-in user replace their own password.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "currentPassword and newPassword are required")
		return
	}

	if err := auth.ValidateStrength(req.NewPassword); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if !auth.Verify(req.CurrentPassword, user.PasswordHash) {
		util.Error(c, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := auth.Hash(req.NewPassword, h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := h.DB.Model(user).Update("password_hash", hash).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to update password")
		return
	}

	util.Success(c, gin.H{"message": "password updated"})
}
