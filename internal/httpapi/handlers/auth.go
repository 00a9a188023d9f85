package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/solaceapp/solace-backend/internal/auth"
	"github.com/solaceapp/solace-backend/internal/common"
	"github.com/solaceapp/solace-backend/internal/httpapi/middleware"
	"github.com/solaceapp/solace-backend/internal/models"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

type signupReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Username == "" || req.Password == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "username and password required")
		return
	}

	var cnt int64
	if err := h.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&cnt).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if cnt > 0 {
		common.Fail(c, http.StatusConflict, 10901, "user already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20002, "failed to hash password")
		return
	}

	user := models.User{
		Username:     &req.Username,
		PasswordHash: &hash,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		common.Fail(c, http.StatusConflict, 10901, "user already exists")
		return
	}

	common.Created(c, gin.H{"message": "signup successful"})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	var user models.User
	err := h.DB.Where("username = ?", req.Username).First(&user).Error
	if err != nil || user.PasswordHash == nil || !auth.CheckPassword(*user.PasswordHash, req.Password) {
		common.Fail(c, http.StatusUnauthorized, 40103, "invalid credentials")
		return
	}

	token, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}

	common.OK(c, gin.H{"token": token})
}

func (h *Handler) Me(c *gin.Context) {
	uid, okk := middleware.UserID(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		common.Fail(c, http.StatusNotFound, 40401, "user not found")
		return
	}
	common.OK(c, user)
}

// GoogleAuthURL issues a one-time state nonce and the consent-screen URL.
// The nonce lives in redis with a short TTL and is consumed on callback.
func (h *Handler) GoogleAuthURL(c *gin.Context) {
	state := uuid.NewString()
	if err := h.Redis.SetOAuthState(c.Request.Context(), state, 10*time.Minute); err != nil {
		common.Fail(c, http.StatusInternalServerError, 20010, "failed to store oauth state")
		return
	}
	common.OK(c, gin.H{
		"url":   h.Google.AuthCodeURL(state),
		"state": state,
	})
}

type googleLoginReq struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

func (h *Handler) GoogleLogin(c *gin.Context) {
	var req googleLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Code == "" {
		common.Fail(c, http.StatusBadRequest, 10003, "no authorization code provided")
		return
	}

	okState, err := h.Redis.TakeOAuthState(c.Request.Context(), req.State)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20010, "redis error")
		return
	}
	if !okState {
		common.Fail(c, http.StatusUnauthorized, 40104, "invalid or expired oauth state")
		return
	}

	accessToken, err := h.Google.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		log.Printf("[GoogleLogin] code exchange failed: %v", err)
		common.Fail(c, http.StatusUnauthorized, 40105, "google authentication failed")
		return
	}
	info, err := h.Google.UserInfo(c.Request.Context(), accessToken)
	if err != nil {
		log.Printf("[GoogleLogin] userinfo failed: %v", err)
		common.Fail(c, http.StatusUnauthorized, 40105, "google authentication failed")
		return
	}

	user, err := h.getOrCreateOAuthUser(info)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	token, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}
	common.OK(c, gin.H{"token": token})
}

// getOrCreateOAuthUser looks the account up by email, creating it on first
// login with a username derived from the profile name (uniquified with a
// numeric suffix on collision). OAuth accounts carry no password hash.
func (h *Handler) getOrCreateOAuthUser(info *auth.GoogleUser) (*models.User, error) {
	var user models.User
	err := h.DB.Where("email = ?", info.Email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	base := info.Name
	if base == "" {
		base = strings.SplitN(info.Email, "@", 2)[0]
	}
	username := base
	for i := 1; ; i++ {
		var cnt int64
		if err := h.DB.Model(&models.User{}).Where("username = ?", username).Count(&cnt).Error; err != nil {
			return nil, err
		}
		if cnt == 0 {
			break
		}
		username = fmt.Sprintf("%s%d", base, i)
	}

	provider := "google"
	user = models.User{
		Username: &username,
		Email:    &info.Email,
		Provider: &provider,
	}
	if info.Name != "" {
		user.DisplayName = &info.Name
	}
	if info.Picture != "" {
		user.AvatarURL = &info.Picture
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
