package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solaceapp/solace-backend/internal/common"
	"github.com/solaceapp/solace-backend/internal/httpapi/middleware"
	"github.com/solaceapp/solace-backend/internal/models"
	"gorm.io/gorm"
)

type journalEntryReq struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Mood    string   `json:"mood"`
	Tags    []string `json:"tags"`
}

func (h *Handler) CreateJournalEntry(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req journalEntryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	entry := models.JournalEntry{
		UserID:  uid,
		Title:   req.Title,
		Content: req.Content,
		Mood:    req.Mood,
		Tags:    req.Tags,
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.Created(c, entry)
}

func (h *Handler) ListJournalEntries(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	q := h.DB.Model(&models.JournalEntry{}).Where("user_id = ?", uid)
	if mood := c.Query("mood"); mood != "" {
		q = q.Where("mood = ?", mood)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("title LIKE ? OR content LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	var entries []models.JournalEntry
	if err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{
		"entries":     entries,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": (total + int64(limit) - 1) / int64(limit),
	})
}

func (h *Handler) GetJournalEntry(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var entry models.JournalEntry
	err := h.DB.Where("id = ? AND user_id = ?", c.Param("entry_id"), uid).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40404, "entry not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, entry)
}

func (h *Handler) UpdateJournalEntry(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req journalEntryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	var entry models.JournalEntry
	err := h.DB.Where("id = ? AND user_id = ?", c.Param("entry_id"), uid).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40404, "entry not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	entry.Title = req.Title
	entry.Content = req.Content
	entry.Mood = req.Mood
	entry.Tags = req.Tags
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	if err := h.DB.Save(&entry).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, entry)
}

func (h *Handler) DeleteJournalEntry(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", c.Param("entry_id"), uid).Delete(&models.JournalEntry{})
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, 40404, "entry not found")
		return
	}
	common.OK(c, gin.H{"message": "entry deleted"})
}

// JournalStats aggregates entry counts: total, per mood, per month over the
// last six months and per day over the last week. The time bucketing runs
// in Go so the same query works on MySQL and the sqlite test database.
func (h *Handler) JournalStats(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var total int64
	if err := h.DB.Model(&models.JournalEntry{}).Where("user_id = ?", uid).Count(&total).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	type moodCount struct {
		Mood  string `json:"mood"`
		Count int64  `json:"count"`
	}
	var moodStats []moodCount
	if err := h.DB.Model(&models.JournalEntry{}).
		Select("mood, COUNT(*) as count").
		Where("user_id = ?", uid).
		Group("mood").
		Order("count DESC").
		Scan(&moodStats).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	now := time.Now()
	sixMonthsAgo := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -6, 0)
	sevenDaysAgo := now.AddDate(0, 0, -7)

	var recent []models.JournalEntry
	if err := h.DB.Select("created_at").
		Where("user_id = ? AND created_at >= ?", uid, sixMonthsAgo).
		Find(&recent).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	monthly := map[string]int64{}
	daily := map[string]int64{}
	for _, e := range recent {
		monthly[e.CreatedAt.Format("2006-01")]++
		if e.CreatedAt.After(sevenDaysAgo) {
			daily[e.CreatedAt.Format("2006-01-02")]++
		}
	}

	common.OK(c, gin.H{
		"total_entries": total,
		"mood_stats":    moodStats,
		"monthly_stats": monthly,
		"daily_stats":   daily,
	})
}
