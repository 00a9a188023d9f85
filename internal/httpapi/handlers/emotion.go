package handlers

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/solaceapp/solace-backend/internal/common"
	"github.com/solaceapp/solace-backend/internal/httpapi/middleware"
	"github.com/solaceapp/solace-backend/internal/models"
	"gorm.io/gorm"
)

type logEmotionReq struct {
	Mood      string `json:"mood"`
	Note      string `json:"note"`
	Intensity *int   `json:"intensity"`
	Location  string `json:"location"`
	Company   string `json:"company"`
	Activity  string `json:"activity"`
}

func (h *Handler) LogEmotion(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req logEmotionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Mood == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "mood is required")
		return
	}

	logEntry := models.EmotionLog{
		UserID:    uid,
		Mood:      req.Mood,
		Note:      req.Note,
		Intensity: req.Intensity,
		Location:  req.Location,
		Company:   req.Company,
		Activity:  req.Activity,
	}
	if err := h.DB.Create(&logEntry).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"message": "mood logged successfully"})
}

func (h *Handler) ListEmotions(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var logs []models.EmotionLog
	if err := h.DB.Where("user_id = ?", uid).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, logs)
}

func (h *Handler) DeleteEmotion(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", c.Param("log_id"), uid).Delete(&models.EmotionLog{})
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, 40405, "mood log not found")
		return
	}
	common.OK(c, gin.H{"message": "deleted"})
}

func (h *Handler) GetUserOptions(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var opts models.UserOptions
	err := h.DB.Where("user_id = ?", uid).First(&opts).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusInternalServerError, 20001, "db error")
			return
		}
		opts = models.UserOptions{}
	}
	if opts.Locations == nil {
		opts.Locations = []string{}
	}
	if opts.Companies == nil {
		opts.Companies = []string{}
	}
	if opts.Activities == nil {
		opts.Activities = []string{}
	}
	common.OK(c, opts)
}

type addUserOptionReq struct {
	Type  string `json:"type"` // location, company or activity
	Value string `json:"value"`
}

// AddUserOption appends a custom pick-list value with add-to-set semantics:
// posting the same value twice leaves one copy.
func (h *Handler) AddUserOption(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req addUserOptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Type == "" || req.Value == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "type and value are required")
		return
	}

	var opts models.UserOptions
	err := h.DB.Where("user_id = ?", uid).First(&opts).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusInternalServerError, 20001, "db error")
			return
		}
		opts = models.UserOptions{UserID: uid}
	}

	switch req.Type {
	case "location":
		if !slices.Contains(opts.Locations, req.Value) {
			opts.Locations = append(opts.Locations, req.Value)
		}
	case "company":
		if !slices.Contains(opts.Companies, req.Value) {
			opts.Companies = append(opts.Companies, req.Value)
		}
	case "activity":
		if !slices.Contains(opts.Activities, req.Value) {
			opts.Activities = append(opts.Activities, req.Value)
		}
	default:
		common.Fail(c, http.StatusBadRequest, 10003, "invalid type")
		return
	}

	if err := h.DB.Save(&opts).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"message": req.Type + " option added successfully"})
}
