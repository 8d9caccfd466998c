package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"sprintsync/internal/middleware"
	"sprintsync/internal/models"
	"sprintsync/internal/policy"
	"sprintsync/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TaskHandler serves task CRUD and status transitions. Every operation
// is gated by the ownership policy: admins see everything, everyone
// else only their own tasks.
type TaskHandler struct {
	DB *gorm.DB
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{DB: db}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}

// findTask loads a task and applies the self-or-admin rule. It writes
// the error response itself; existence is checked before ownership.
func (h *TaskHandler) findTask(c *gin.Context, id uint, caller policy.Caller) (*models.Task, bool) {
	var task models.Task
	if err := h.DB.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Task not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Internal server error")
		}
		return nil, false
	}
	if !policy.CanAccessOwned(caller, task.UserID) {
		util.Error(c, http.StatusForbidden, "Access denied")
		return nil, false
	}
	return &task, true
}

// List returns all tasks for admins, the caller's own tasks otherwise.
func (h *TaskHandler) List(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)

	q := h.DB.Model(&models.Task{}).Order("id ASC")
	if !caller.IsAdmin {
		q = q.Where("user_id = ?", caller.ID)
	}

	tasks := make([]models.Task, 0)
	if err := q.Find(&tasks).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Get returns one task. 404 before 403: existence is not leaked only
// through ownership.
func (h *TaskHandler) Get(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	id, ok := parseID(c)
	if !ok {
		return
	}
	task, ok := h.findTask(c, id, caller)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, task)
}

type createTaskReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	UserID      *uint  `json:"userId"`
}

// Create inserts a task owned by the caller. Admins may assign an
// explicit owner, which must exist.
func (h *TaskHandler) Create(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)

	var req createTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Title is required")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		util.Error(c, http.StatusBadRequest, "Title is required")
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusTodo
	}
	if !models.ValidStatus(status) {
		util.Error(c, http.StatusBadRequest, "Invalid status")
		return
	}

	ownerID := caller.ID
	if req.UserID != nil && caller.IsAdmin {
		var count int64
		if err := h.DB.Model(&models.User{}).Where("id = ?", *req.UserID).Count(&count).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		if count == 0 {
			util.Error(c, http.StatusBadRequest, "Assigned user does not exist")
			return
		}
		ownerID = *req.UserID
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		UserID:      &ownerID,
	}
	if err := h.DB.Create(&task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusCreated, task)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus moves a task between todo, in_progress and done. Any
// value may follow any other.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		util.Error(c, http.StatusBadRequest, "Status is required")
		return
	}
	if !models.ValidStatus(req.Status) {
		util.Error(c, http.StatusBadRequest, "Invalid status")
		return
	}

	task, ok := h.findTask(c, id, caller)
	if !ok {
		return
	}

	task.Status = req.Status
	if err := h.DB.Save(task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, task)
}

type updateTaskReq struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Status       *string `json:"status"`
	TotalMinutes *int    `json:"totalMinutes"`
}

// Update applies a partial update; only supplied fields change.
func (h *TaskHandler) Update(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "No fields to update")
		return
	}
	if req.Title == nil && req.Description == nil && req.Status == nil && req.TotalMinutes == nil {
		util.Error(c, http.StatusBadRequest, "No fields to update")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			util.Error(c, http.StatusBadRequest, "Title is required")
			return
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if !models.ValidStatus(*req.Status) {
			util.Error(c, http.StatusBadRequest, "Invalid status")
			return
		}
		updates["status"] = *req.Status
	}
	if req.TotalMinutes != nil {
		if *req.TotalMinutes < 0 {
			util.Error(c, http.StatusBadRequest, "totalMinutes must be non-negative")
			return
		}
		updates["total_minutes"] = *req.TotalMinutes
	}

	task, ok := h.findTask(c, id, caller)
	if !ok {
		return
	}

	if err := h.DB.Model(task).Updates(updates).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, task)
}

// Delete removes a task and returns the deleted record.
func (h *TaskHandler) Delete(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, ok := h.findTask(c, id, caller)
	if !ok {
		return
	}

	if err := h.DB.Delete(&models.Task{}, task.ID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"task":    task,
	})
}
