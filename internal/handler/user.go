package handler

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"shift-tracker/internal/auth"
	"shift-tracker/internal/middleware"
	"shift-tracker/internal/models"
	"shift-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// tempResetPassword is handed out by the admin password reset; the account
// must replace it on next login.
const tempResetPassword = "Pass1234!"

// usernames: 3-20 characters, letters, digits and underscore
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// UserHandler serves the admin/supervisor user-management surface. Every
// route is behind the administrative gate; role escalation is additionally
// restricted to the root admin via the policy.
type UserHandler struct {
	DB         *gorm.DB
	Policy     auth.Policy
	BcryptCost int
}

func NewUserHandler(db *gorm.DB, policy auth.Policy, bcryptCost int) *UserHandler {
	return &UserHandler{DB: db, Policy: policy, BcryptCost: bcryptCost}
}

type userResp struct {
	ID                 uint       `json:"id"`
	Username           string     `json:"username"`
	Role               string     `json:"role"`
	IsActive           bool       `json:"isActive"`
	MustChangePassword bool       `json:"mustChangePassword"`
	CreatedBy          string     `json:"createdBy"`
	LastLogin          *time.Time `json:"lastLogin"`
	LoginCount         int        `json:"loginCount"`
	Phone              string     `json:"phone"`
	Email              string     `json:"email"`
	Avatar             string     `json:"avatar"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func toUserResp(u *models.User) userResp {
	return userResp{
		ID:                 u.ID,
		Username:           u.Username,
		Role:               u.Role,
		IsActive:           u.IsActive,
		MustChangePassword: u.MustChangePassword,
		CreatedBy:          u.CreatedBy,
		LastLogin:          u.LastLogin,
		LoginCount:         u.LoginCount,
		Phone:              u.Phone,
		Email:              u.Email,
		Avatar:             u.Avatar,
		CreatedAt:          u.CreatedAt,
	}
}

// List returns every account, newest first, without password hashes.
func (h *UserHandler) List(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to list users")
		return
	}

	out := make([]userResp, 0, len(users))
	for i := range users {
		out = append(out, toUserResp(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

type createUserReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

func (h *UserHandler) Create(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "username and password are required")
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if !usernameRe.MatchString(username) {
		util.Error(c, http.StatusBadRequest, "username must be 3-20 letters, digits or underscores")
		return
	}

	role := req.Role
	if role == "" {
		role = auth.RoleUser
	}
	if !auth.ValidRole(role) {
		util.Error(c, http.StatusBadRequest, "invalid role")
		return
	}
	if !h.Policy.CanAssignRole(actor.Username, role) {
		util.Error(c, http.StatusForbidden, "only the root administrator can create admin or supervisor accounts")
		return
	}

	if err := auth.ValidateStrength(req.Password); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to look up user")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, "username already exists")
		return
	}

	hash, err := auth.Hash(req.Password, h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Username:           username,
		PasswordHash:       hash,
		Role:               role,
		IsActive:           true,
		MustChangePassword: true, // first login must replace the handed-out password
		CreatedBy:          actor.Username,
		Phone:              strings.TrimSpace(req.Phone),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		Avatar:             "👤",
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	util.Created(c, gin.H{"user": toUserResp(&user)})
}

type updateUserReq struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
}

func (h *UserHandler) Update(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username != nil && strings.ToLower(strings.TrimSpace(*req.Username)) != user.Username {
		util.Error(c, http.StatusBadRequest, "username cannot be changed")
		return
	}

	updates := map[string]interface{}{}

	if req.Role != nil && *req.Role != user.Role {
		if !auth.ValidRole(*req.Role) {
			util.Error(c, http.StatusBadRequest, "invalid role")
			return
		}
		if !h.Policy.CanAssignRole(actor.Username, *req.Role) {
			util.Error(c, http.StatusForbidden, "only the root administrator can assign admin or supervisor roles")
			return
		}
		if h.Policy.IsRoot(user.Username) {
			util.Error(c, http.StatusForbidden, "the root administrator role cannot be changed")
			return
		}
		user.Role = *req.Role
		updates["role"] = user.Role
	}

	if req.Password != nil && *req.Password != "" {
		if err := auth.ValidateStrength(*req.Password); err != nil {
			util.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := auth.Hash(*req.Password, h.BcryptCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, "failed to hash password")
			return
		}
		updates["password_hash"] = hash
	}

	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
		updates["phone"] = user.Phone
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		updates["email"] = user.Email
	}

	if len(updates) > 0 {
		if err := h.DB.Model(user).Updates(updates).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, "failed to update user")
			return
		}
	}

	c.JSON(http.StatusOK, toUserResp(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	if h.Policy.IsRoot(user.Username) {
		util.Error(c, http.StatusForbidden, "the root administrator account cannot be deleted")
		return
	}

	if err := h.DB.Delete(user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to delete user")
		return
	}
	util.Success(c, gin.H{"message": "user deleted"})
}

func (h *UserHandler) ToggleStatus(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	if h.Policy.IsRoot(user.Username) {
		util.Error(c, http.StatusForbidden, "the root administrator account cannot be blocked")
		return
	}

	user.IsActive = !user.IsActive
	if err := h.DB.Model(user).Update("is_active", user.IsActive).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to update user status")
		return
	}

	util.Success(c, gin.H{
		"user": gin.H{
			"username": user.Username,
			"isActive": user.IsActive,
		},
	})
}

type changeRoleReq struct {
	Role string `json:"role" binding:"required"`
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changeRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "role is required")
		return
	}
	if !auth.ValidRole(req.Role) {
		util.Error(c, http.StatusBadRequest, "invalid role")
		return
	}
	if !h.Policy.CanAssignRole(actor.Username, req.Role) {
		util.Error(c, http.StatusForbidden, "only the root administrator can assign admin or supervisor roles")
		return
	}

	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	if h.Policy.IsRoot(user.Username) {
		util.Error(c, http.StatusForbidden, "the root administrator role cannot be changed")
		return
	}

	user.Role = req.Role
	if err := h.DB.Model(user).Update("role", user.Role).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to update role")
		return
	}

	util.Success(c, gin.H{
		"user": gin.H{
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	hash, err := auth.Hash(tempResetPassword, h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := h.DB.Model(user).Updates(map[string]interface{}{
		"password_hash":        hash,
		"must_change_password": true,
	}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to reset password")
		return
	}

	util.Success(c, gin.H{
		"temporaryPassword": tempResetPassword,
		"message":           "password reset, the user must change it on next login",
	})
}

// Records lists another user's records for the admin views.
func (h *UserHandler) Records(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	var records []models.Record
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("date DESC, created_at DESC").
		Find(&records).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to load records")
		return
	}

	out := make([]recordResp, 0, len(records))
	for i := range records {
		out = append(out, toRecordResp(&records[i]))
	}
	util.Success(c, gin.H{
		"username": user.Username,
		"records":  out,
	})
}

// loadUser resolves the :id path parameter. It writes the error response
// itself and reports success through the second return value.
func (h *UserHandler) loadUser(c *gin.Context) (*models.User, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "invalid user id")
		return nil, false
	}

	var user models.User
	if err := h.DB.First(&user, uint(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "user not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "failed to look up user")
		}
		return nil, false
	}
	return &user, true
}
