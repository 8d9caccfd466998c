package handler

import (
	"errors"
	"net/http"
	"strings"

	"sprintsync/internal/middleware"
	"sprintsync/internal/models"
	"sprintsync/internal/policy"
	"sprintsync/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler serves user management. Listing, updating and deleting
// are admin-only (enforced in the router); profile and task views are
// self-or-admin.
type UserHandler struct {
	DB         *gorm.DB
	BcryptCost int
}

func NewUserHandler(db *gorm.DB, bcryptCost int) *UserHandler {
	return &UserHandler{DB: db, BcryptCost: bcryptCost}
}

// List returns all users. Password hashes never serialize.
func (h *UserHandler) List(c *gin.Context) {
	users := make([]models.User, 0)
	if err := h.DB.Order("id ASC").Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, users)
}

// Get returns one user's profile, visible to admins and the user
// themselves.
func (h *UserHandler) Get(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	if !policy.CanAccessUser(caller, id) {
		util.Error(c, http.StatusForbidden, "Access denied")
		return
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "User not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetTasks returns a user's tasks under the same visibility rule as Get.
func (h *UserHandler) GetTasks(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	if !policy.CanAccessUser(caller, id) {
		util.Error(c, http.StatusForbidden, "Access denied")
		return
	}

	tasks := make([]models.Task, 0)
	if err := h.DB.Where("user_id = ?", id).Order("id ASC").Find(&tasks).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

type updateUserReq struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"isAdmin"`
}

// Update changes username, password or admin flag. Passwords are
// re-hashed before storage.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "No fields to update")
		return
	}
	if req.Username == nil && req.Password == nil && req.IsAdmin == nil {
		util.Error(c, http.StatusBadRequest, "No fields to update")
		return
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" || len(username) > 50 {
			util.Error(c, http.StatusBadRequest, "Username must be 1-50 characters")
			return
		}
		updates["username"] = username
	}
	if req.Password != nil {
		hash, err := util.HashPassword(*req.Password, h.BcryptCost)
		if err != nil {
			util.Error(c, http.StatusBadRequest, "Password must not be empty")
			return
		}
		updates["password_hash"] = hash
	}
	if req.IsAdmin != nil {
		updates["is_admin"] = *req.IsAdmin
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "User not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, "Username already exists")
			return
		}
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete removes a user's tasks and then the user. The two deletes are
// intentionally separate statements; see the concurrency notes in
// DESIGN.md.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "User not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	// cascade: tasks first so no orphan rows survive
	if err := h.DB.Where("user_id = ?", id).Delete(&models.Task{}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.DB.Delete(&models.User{}, id).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
		"user":    user,
	})
}
