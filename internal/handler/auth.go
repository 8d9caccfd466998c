package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"sprintsync/internal/config"
	"sprintsync/internal/middleware"
	"sprintsync/internal/models"
	"sprintsync/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler serves registration, login and token verification.
type AuthHandler struct {
	DB         *gorm.DB
	JWT        config.JWTConfig
	BcryptCost int
}

func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, bcryptCost int) *AuthHandler {
	return &AuthHandler{DB: db, JWT: jwtCfg, BcryptCost: bcryptCost}
}

func (h *AuthHandler) tokenTTL() time.Duration {
	return time.Duration(h.JWT.ExpireHours) * time.Hour
}

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Register creates a user, hashes the password and issues a token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		util.Error(c, http.StatusBadRequest, "Username and password are required")
		return
	}
	if len(req.Username) > 50 {
		util.Error(c, http.StatusBadRequest, "Username must be at most 50 characters")
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("username = ?", req.Username).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, "Username already exists")
		return
	}

	hash, err := util.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hash,
		IsAdmin:      req.IsAdmin,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		// two concurrent registrations: the unique index decides, the
		// loser gets the same 409 as an up-front duplicate
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, "Username already exists")
			return
		}
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := util.GenerateToken(h.JWT.Secret, h.JWT.Issuer, user.ID, user.Username, user.IsAdmin, h.tokenTTL())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks credentials and issues a token. Unknown username and
// wrong password are indistinguishable to the caller.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Username and password are required")
		return
	}
	if req.Username == "" || req.Password == "" {
		util.Error(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			util.Error(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		util.Error(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := util.GenerateToken(h.JWT.Secret, h.JWT.Issuer, user.ID, user.Username, user.IsAdmin, h.tokenTTL())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Verify re-checks that the token's user still exists and returns the
// current record. This is the only place token handling consults the
// store.
func (h *AuthHandler) Verify(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Access token required")
		return
	}

	var user models.User
	if err := h.DB.First(&user, caller.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, "User not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
