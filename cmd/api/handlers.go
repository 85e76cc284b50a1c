package main

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/therealutkarshpriyadarshi/streamtube/internal/apierr"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/cache"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/config"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/database"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/middleware"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/queue"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/response"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/service"
	"github.com/therealutkarshpriyadarshi/streamtube/pkg/models"
)

// Login throttle window per identifier.
const (
	loginAttemptLimit  = 10
	loginAttemptWindow = 15 * time.Minute
)

// API bundles the handler dependencies. db, throttle and queue may be nil
// in tests.
type API struct {
	svc      *service.UserService
	cfg      *config.Config
	db       *database.DB
	throttle *cache.Cache
	queue    *queue.Queue
}

func (api *API) accessMaxAge() int {
	return int(api.cfg.Auth.AccessExpiry.Seconds())
}

func (api *API) refreshMaxAge() int {
	return int(api.cfg.Auth.RefreshExpiry.Seconds())
}

// Health check endpoint. Reports the database as the gating dependency and
// the optional collaborators informationally.
func (api *API) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if api.db != nil {
		if err := api.db.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	health := gin.H{"status": "healthy"}

	if api.throttle != nil {
		redisStatus := "healthy"
		if err := api.throttle.Ping(ctx); err != nil {
			redisStatus = "unhealthy"
		}
		health["redis"] = redisStatus
	}

	if api.queue != nil {
		if depth, err := api.queue.GetDLQDepth(); err == nil {
			health["cleanup_dlq_depth"] = depth
		}
	}

	c.JSON(http.StatusOK, health)
}

// saveUpload writes a multipart file to the upload temp dir and returns the
// local path. Size is enforced before anything touches disk; the transfer
// outcome counters live in the service, where the real upload happens.
func (api *API) saveUpload(c *gin.Context, file *multipart.FileHeader, kind string) (string, error) {
	if file.Size > api.cfg.Upload.MaxFileSize {
		return "", apierr.Validation(fmt.Sprintf("%s file exceeds the size limit", kind))
	}

	tempPath := filepath.Join(api.cfg.Upload.TempDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		return "", apierr.Internal("failed to save uploaded file", err)
	}

	metrics.MediaUploadSizeBytes.Observe(float64(file.Size))
	return tempPath, nil
}

// removeTempFiles deletes leftover temp files after a failed operation. On
// success the cleanup worker owns removal.
func removeTempFiles(paths ...string) {
	for _, p := range paths {
		if p != "" {
			os.Remove(p)
		}
	}
}

// Register endpoint. Multipart form: fullName, email, username, password
// plus an avatar file and an optional coverImage file.
func (api *API) register(c *gin.Context) {
	in := service.RegisterInput{
		FullName: c.PostForm("fullName"),
		Email:    c.PostForm("email"),
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}

	if avatar, err := c.FormFile("avatar"); err == nil {
		path, err := api.saveUpload(c, avatar, "avatar")
		if err != nil {
			response.Fail(c, err)
			return
		}
		in.AvatarPath = path
	}

	if cover, err := c.FormFile("coverImage"); err == nil {
		path, err := api.saveUpload(c, cover, "cover")
		if err != nil {
			removeTempFiles(in.AvatarPath)
			response.Fail(c, err)
			return
		}
		in.CoverImagePath = path
	}

	user, err := api.svc.Register(c.Request.Context(), in)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		removeTempFiles(in.AvatarPath, in.CoverImagePath)
		response.Fail(c, err)
		return
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	response.OK(c, http.StatusCreated, user, "user registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login endpoint. Issues the token pair as both cookies and body fields.
func (api *API) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apierr.Validation("invalid request body"))
		return
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	if api.throttle != nil && identifier != "" {
		allowed, err := api.throttle.CheckLoginAttempts(c.Request.Context(), identifier, loginAttemptLimit, loginAttemptWindow)
		if err == nil && !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts, try again later"})
			return
		}
	}

	user, pair, err := api.svc.Login(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		response.Fail(c, err)
		return
	}

	if api.throttle != nil && identifier != "" {
		api.throttle.ResetLoginAttempts(c.Request.Context(), identifier)
	}

	metrics.LoginsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	response.SetTokenCookies(c, pair.AccessToken, pair.RefreshToken, api.accessMaxAge(), api.refreshMaxAge(), api.cfg.Production())
	response.OK(c, http.StatusOK, gin.H{
		"user":          user,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "user logged in successfully")
}

// Logout endpoint. Clears the refresh-token slot and both cookies.
func (api *API) logout(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := api.svc.Logout(c.Request.Context(), userID); err != nil {
		response.Fail(c, err)
		return
	}

	response.ClearTokenCookies(c, api.cfg.Production())
	response.OK(c, http.StatusOK, gin.H{}, "user logged out")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh-token endpoint. The token comes from the cookie or the body.
func (api *API) refreshToken(c *gin.Context) {
	presented, _ := c.Cookie(response.RefreshTokenCookie)
	if presented == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	pair, err := api.svc.Refresh(c.Request.Context(), presented)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		response.Fail(c, err)
		return
	}

	metrics.TokenRefreshesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	response.SetTokenCookies(c, pair.AccessToken, pair.RefreshToken, api.accessMaxAge(), api.refreshMaxAge(), api.cfg.Production())
	response.OK(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "access token refreshed")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Change-password endpoint.
func (api *API) changePassword(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apierr.Validation("invalid request body"))
		return
	}

	if err := api.svc.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{}, "password changed successfully")
}

// Current-user endpoint.
func (api *API) currentUser(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	user, err := api.svc.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, http.StatusOK, user, "current user fetched successfully")
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Update-account endpoint.
func (api *API) updateAccount(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, apierr.Validation("invalid request body"))
		return
	}

	user, err := api.svc.UpdateAccount(c.Request.Context(), userID, req.FullName, req.Email)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, http.StatusOK, user, "account details updated successfully")
}

// Update-avatar endpoint. Multipart form with an avatar file.
func (api *API) updateAvatar(c *gin.Context) {
	api.updateImage(c, "avatar", api.svc.UpdateAvatar, "avatar updated successfully")
}

// Update-cover-image endpoint. Multipart form with a coverImage file.
func (api *API) updateCoverImage(c *gin.Context) {
	api.updateImage(c, "coverImage", api.svc.UpdateCoverImage, "cover image updated successfully")
}

func (api *API) updateImage(c *gin.Context, field string,
	update func(context.Context, string, string) (*models.PublicUser, error), message string) {

	userID, _ := middleware.GetUserID(c)

	file, err := c.FormFile(field)
	if err != nil {
		response.Fail(c, apierr.Validation(fmt.Sprintf("%s file is missing", field)))
		return
	}

	tempPath, err := api.saveUpload(c, file, field)
	if err != nil {
		response.Fail(c, err)
		return
	}

	user, err := update(c.Request.Context(), userID, tempPath)
	if err != nil {
		removeTempFiles(tempPath)
		response.Fail(c, err)
		return
	}

	response.OK(c, http.StatusOK, user, message)
}

// Channel-profile endpoint. Works for anonymous viewers; an authenticated
// viewer additionally gets their own subscription state.
func (api *API) channelProfile(c *gin.Context) {
	viewerID, _ := middleware.GetUserID(c)

	profile, err := api.svc.ChannelProfile(c.Request.Context(), c.Param("username"), viewerID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, http.StatusOK, profile, "user channel fetched successfully")
}

// Toggle-subscription endpoint.
func (api *API) toggleSubscription(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	subscribed, err := api.svc.ToggleSubscription(c.Request.Context(), userID, c.Param("username"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	message := "unsubscribed"
	if subscribed {
		message = "subscribed"
	}
	response.OK(c, http.StatusOK, gin.H{"subscribed": subscribed}, message)
}

// Record-watch endpoint. Called when a video playback starts.
func (api *API) recordWatch(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := api.svc.RecordWatch(c.Request.Context(), userID, c.Param("videoId")); err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{}, "watch event recorded")
}

// Watch-history endpoint.
func (api *API) watchHistory(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	entries, err := api.svc.WatchHistory(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.OK(c, http.StatusOK, entries, "watch history fetched successfully")
}
