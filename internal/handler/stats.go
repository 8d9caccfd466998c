package handler

import (
	"encoding/csv"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"sprintsync/internal/models"
	"sprintsync/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const topUsersLimit = 20

// StatsHandler serves the admin dashboard aggregations. All routes are
// registered behind RequireAdmin.
type StatsHandler struct {
	DB *gorm.DB
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{DB: db}
}

type topUserRow struct {
	UserID          uint   `json:"userId"`
	Username        string `json:"username"`
	IsAdmin         bool   `json:"isAdmin"`
	TotalMinutes    int    `json:"totalMinutes"`
	TaskCount       int    `json:"taskCount"`
	CompletedTasks  int    `json:"completedTasks"`
	InProgressTasks int    `json:"inProgressTasks"`
	TodoTasks       int    `json:"todoTasks"`

	TotalHours     float64 `json:"totalHours" gorm:"-"`
	CompletionRate int     `json:"completionRate" gorm:"-"`
}

func roundHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}

func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func (h *StatsHandler) topUsers() ([]topUserRow, error) {
	var rows []topUserRow
	err := h.DB.Model(&models.User{}).
		Select(`users.id AS user_id,
			users.username AS username,
			users.is_admin AS is_admin,
			COALESCE(SUM(tasks.total_minutes), 0) AS total_minutes,
			COUNT(tasks.id) AS task_count,
			COUNT(CASE WHEN tasks.status = 'done' THEN 1 END) AS completed_tasks,
			COUNT(CASE WHEN tasks.status = 'in_progress' THEN 1 END) AS in_progress_tasks,
			COUNT(CASE WHEN tasks.status = 'todo' THEN 1 END) AS todo_tasks`).
		Joins("LEFT JOIN tasks ON tasks.user_id = users.id").
		Group("users.id, users.username, users.is_admin").
		Order("total_minutes DESC").
		Limit(topUsersLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].TotalHours = roundHours(rows[i].TotalMinutes)
		rows[i].CompletionRate = completionRate(rows[i].CompletedTasks, rows[i].TaskCount)
	}
	return rows, nil
}

// TopUsers ranks users by total logged minutes, capped at 20 rows.
func (h *StatsHandler) TopUsers(c *gin.Context) {
	rows, err := h.topUsers()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"topUsers":    rows,
		"totalUsers":  len(rows),
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

// Platform returns platform-wide user and task counts.
func (h *StatsHandler) Platform(c *gin.Context) {
	var userStats struct {
		TotalUsers int
		AdminUsers int
	}
	err := h.DB.Model(&models.User{}).
		Select(`COUNT(*) AS total_users,
			COUNT(CASE WHEN is_admin THEN 1 END) AS admin_users`).
		Scan(&userStats).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var taskStats struct {
		TotalTasks      int
		CompletedTasks  int
		InProgressTasks int
		TodoTasks       int
		TotalMinutes    int
	}
	err = h.DB.Model(&models.Task{}).
		Select(`COUNT(*) AS total_tasks,
			COUNT(CASE WHEN status = 'done' THEN 1 END) AS completed_tasks,
			COUNT(CASE WHEN status = 'in_progress' THEN 1 END) AS in_progress_tasks,
			COUNT(CASE WHEN status = 'todo' THEN 1 END) AS todo_tasks,
			COALESCE(SUM(total_minutes), 0) AS total_minutes`).
		Scan(&taskStats).Error
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": gin.H{
			"totalUsers": userStats.TotalUsers,
			"adminUsers": userStats.AdminUsers,
		},
		"tasks": gin.H{
			"totalTasks":      taskStats.TotalTasks,
			"completedTasks":  taskStats.CompletedTasks,
			"inProgressTasks": taskStats.InProgressTasks,
			"todoTasks":       taskStats.TodoTasks,
			"totalMinutes":    taskStats.TotalMinutes,
			"totalHours":      roundHours(taskStats.TotalMinutes),
			"completionRate":  completionRate(taskStats.CompletedTasks, taskStats.TotalTasks),
		},
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

var exportHeader = []string{
	"Username", "Admin", "Total Minutes", "Total Hours",
	"Task Count", "Completed", "In Progress", "Todo", "Completion Rate (%)",
}

func exportCells(r topUserRow) []string {
	return []string{
		r.Username,
		strconv.FormatBool(r.IsAdmin),
		strconv.Itoa(r.TotalMinutes),
		strconv.FormatFloat(r.TotalHours, 'f', 2, 64),
		strconv.Itoa(r.TaskCount),
		strconv.Itoa(r.CompletedTasks),
		strconv.Itoa(r.InProgressTasks),
		strconv.Itoa(r.TodoTasks),
		strconv.Itoa(r.CompletionRate),
	}
}

// ExportCSV downloads the top-users table as CSV.
func (h *StatsHandler) ExportCSV(c *gin.Context) {
	rows, err := h.topUsers()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"top_users_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write(exportHeader)
	for _, r := range rows {
		_ = writer.Write(exportCells(r))
	}
}

// ExportXLSX downloads the top-users table as a spreadsheet.
func (h *StatsHandler) ExportXLSX(c *gin.Context) {
	rows, err := h.topUsers()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Top Users"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for i, r := range rows {
		for col, val := range exportCells(r) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, val)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"top_users_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
