package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solaceapp/solace-backend/internal/common"
	"github.com/solaceapp/solace-backend/internal/httpapi/middleware"
	"github.com/solaceapp/solace-backend/internal/models"
	"gorm.io/gorm"
)

const defaultTimetableColor = "#3B82F6"

type createTodoReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

func (h *Handler) CreateTodo(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createTodoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Title == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "title is required")
		return
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}

	todo := models.Todo{
		UserID:      uid,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	}
	if req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			common.Fail(c, http.StatusBadRequest, 10003, "invalid due_date")
			return
		}
		todo.DueDate = &due
	}

	if err := h.DB.Create(&todo).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.Created(c, todo)
}

func (h *Handler) ListTodos(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var todosList []models.Todo
	if err := h.DB.Where("user_id = ?", uid).
		Order("created_at DESC").
		Find(&todosList).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, todosList)
}

type updateTodoReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Completed   *bool   `json:"completed"`
	DueDate     *string `json:"due_date"`
}

func (h *Handler) UpdateTodo(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req updateTodoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Title == nil && req.Description == nil && req.Priority == nil && req.Completed == nil && req.DueDate == nil {
		common.Fail(c, http.StatusBadRequest, 10002, "no fields to update")
		return
	}

	var todo models.Todo
	err := h.DB.Where("id = ? AND user_id = ?", c.Param("todo_id"), uid).First(&todo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40406, "todo not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.Priority != nil {
		todo.Priority = *req.Priority
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			todo.DueDate = nil
		} else {
			due, err := time.Parse(time.RFC3339, *req.DueDate)
			if err != nil {
				common.Fail(c, http.StatusBadRequest, 10003, "invalid due_date")
				return
			}
			todo.DueDate = &due
		}
	}

	if err := h.DB.Save(&todo).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, todo)
}

func (h *Handler) DeleteTodo(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", c.Param("todo_id"), uid).Delete(&models.Todo{})
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, 40406, "todo not found")
		return
	}
	common.OK(c, gin.H{"message": "todo deleted"})
}

type timetableReq struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Activity  string `json:"activity"`
	Color     string `json:"color"`
}

// UpsertTimetableEntry creates the entry for the slot, or rewrites its
// activity and color if the user already has one at day+start+end.
func (h *Handler) UpsertTimetableEntry(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req timetableReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Day == "" || req.StartTime == "" || req.EndTime == "" || req.Activity == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "day, start_time, end_time and activity are required")
		return
	}
	if req.Color == "" {
		req.Color = defaultTimetableColor
	}

	var existing models.TimetableEntry
	err := h.DB.Where("user_id = ? AND day = ? AND start_time = ? AND end_time = ?",
		uid, req.Day, req.StartTime, req.EndTime).First(&existing).Error
	switch {
	case err == nil:
		existing.Activity = req.Activity
		existing.Color = req.Color
		if err := h.DB.Save(&existing).Error; err != nil {
			common.Fail(c, http.StatusInternalServerError, 20001, "db error")
			return
		}
		common.OK(c, gin.H{"message": "timetable entry updated successfully"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry := models.TimetableEntry{
			UserID:    uid,
			Day:       req.Day,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Activity:  req.Activity,
			Color:     req.Color,
		}
		if err := h.DB.Create(&entry).Error; err != nil {
			common.Fail(c, http.StatusInternalServerError, 20001, "db error")
			return
		}
		common.OK(c, gin.H{"message": "timetable entry created successfully"})
	default:
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
	}
}

func (h *Handler) ListTimetable(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var entries []models.TimetableEntry
	if err := h.DB.Where("user_id = ?", uid).
		Order("day ASC").Order("start_time ASC").
		Find(&entries).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, entries)
}

func (h *Handler) DeleteTimetableEntry(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", c.Param("entry_id"), uid).Delete(&models.TimetableEntry{})
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, 40407, "timetable entry not found")
		return
	}
	common.OK(c, gin.H{"message": "timetable entry deleted successfully"})
}

// WeeklyTimetable groups the user's entries by weekday; every day is
// present in the response even when empty.
func (h *Handler) WeeklyTimetable(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var entries []models.TimetableEntry
	if err := h.DB.Where("user_id = ?", uid).
		Order("start_time ASC").
		Find(&entries).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	week := map[string][]models.TimetableEntry{
		"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
		"friday": {}, "saturday": {}, "sunday": {},
	}
	for _, e := range entries {
		week[e.Day] = append(week[e.Day], e)
	}
	common.OK(c, week)
}
