// Package service orchestrates the session lifecycle and profile operations
// over the credential store, the media host and the token service.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/therealutkarshpriyadarshi/streamtube/internal/apierr"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/auth"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/database"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/queue"
	"github.com/therealutkarshpriyadarshi/streamtube/pkg/models"
)

// UserStore is the credential-store collaborator.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID, token string) error
	ClearRefreshToken(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, password string) error
	UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) (*models.User, error)
	UpdateCoverImage(ctx context.Context, userID, coverImageURL string) (*models.User, error)
	GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	AppendWatchHistory(ctx context.Context, userID, videoID string) error
	GetWatchHistory(ctx context.Context, userID string) ([]models.WatchHistoryEntry, error)
	Subscribe(ctx context.Context, subscriberID, channelID string) error
	Unsubscribe(ctx context.Context, subscriberID, channelID string) error
	IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error)
}

// Uploader is the media-hosting collaborator.
type Uploader interface {
	UploadLocal(ctx context.Context, localPath string) (string, error)
	Delete(ctx context.Context, url string) error
}

// ProfileCache caches resolved channel profiles per viewer.
type ProfileCache interface {
	GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	SetChannelProfile(ctx context.Context, viewerID string, profile *models.ChannelProfile, ttl time.Duration) error
	InvalidateChannel(ctx context.Context, username string) error
}

// CleanupPublisher hands successfully uploaded temp files to the cleanup
// worker.
type CleanupPublisher interface {
	PublishCleanup(ctx context.Context, event *queue.CleanupEvent) error
}

const profileCacheTTL = 5 * time.Minute

// UserService implements registration, login, logout, token refresh,
// password change and the profile/history queries. cache and cleanup may be
// nil; both are best-effort collaborators.
type UserService struct {
	store   UserStore
	media   Uploader
	tokens  *auth.TokenService
	cache   ProfileCache
	cleanup CleanupPublisher
	logger  *logging.Logger
}

// NewUserService constructs the service with its collaborators.
func NewUserService(store UserStore, media Uploader, tokens *auth.TokenService, cache ProfileCache, cleanup CleanupPublisher, logger *logging.Logger) *UserService {
	return &UserService{
		store:   store,
		media:   media,
		tokens:  tokens,
		cache:   cache,
		cleanup: cleanup,
		logger:  logger,
	}
}

// RegisterInput carries the registration payload. Avatar is a required
// local file path, cover image an optional one.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// Register creates a new user. The avatar upload is mandatory; the cover
// image upload is attempted but its failure does not abort registration.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))
	password := strings.TrimSpace(in.Password)

	if fullName == "" || email == "" || username == "" || password == "" {
		return nil, apierr.Validation("all fields are required")
	}

	// Uniqueness check before any upload work.
	_, err := s.store.GetUserByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return nil, apierr.Conflict("user with email or username already exists")
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, apierr.Internal("failed to check existing user", err)
	}

	if in.AvatarPath == "" {
		return nil, apierr.Validation("avatar file is required")
	}

	avatarURL, err := s.uploadMedia(ctx, in.AvatarPath, "avatar")
	if err != nil {
		return nil, apierr.Upload("avatar upload failed", err)
	}
	s.scheduleCleanup(ctx, in.AvatarPath, username)

	// Cover image is optional and its upload failure is tolerated.
	coverImageURL := ""
	if in.CoverImagePath != "" {
		coverImageURL, err = s.uploadMedia(ctx, in.CoverImagePath, "cover")
		if err != nil {
			s.logger.Warnf("cover image upload failed for %s: %v", username, err)
			coverImageURL = ""
		} else {
			s.scheduleCleanup(ctx, in.CoverImagePath, username)
		}
	}

	user := &models.User{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
	}

	if err := s.store.CreateUser(ctx, user, password); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apierr.Conflict("user with email or username already exists")
		}
		return nil, apierr.Internal("something went wrong while registering the user", err)
	}

	// Re-read through the store to return the sanitized record.
	created, err := s.store.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, apierr.Internal("something went wrong while registering the user", err)
	}

	s.logger.LogSessionEvent(created.ID, "register", nil)
	return created.Public(), nil
}

// Login authenticates by username or email and issues a token pair. The
// refresh token is persisted into the user's single slot.
func (s *UserService) Login(ctx context.Context, username, email, password string) (*models.PublicUser, models.TokenPair, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" && email == "" {
		return nil, models.TokenPair{}, apierr.Validation("username or email is required")
	}

	user, err := s.store.GetUserByUsernameOrEmail(ctx, username, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, models.TokenPair{}, apierr.NotFound("user does not exist")
	}
	if err != nil {
		return nil, models.TokenPair{}, apierr.Internal("failed to look up user", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		s.logger.LogSessionEvent(user.ID, "login", errors.New("invalid credentials"))
		return nil, models.TokenPair{}, apierr.Authentication("invalid credentials")
	}

	pair, err := s.issueAndStorePair(ctx, user)
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	s.logger.LogSessionEvent(user.ID, "login", nil)
	return user.Public(), pair, nil
}

// Logout clears the refresh-token slot. Calling it twice yields the same
// end state.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.store.ClearRefreshToken(ctx, userID); err != nil {
		return apierr.Internal("failed to log out", err)
	}
	s.logger.LogSessionEvent(userID, "logout", nil)
	return nil
}

// Refresh exchanges a refresh token for a freshly issued pair. Validity
// requires both a good signature and exact equality with the stored slot;
// the equality check is what rejects replayed tokens after rotation.
func (s *UserService) Refresh(ctx context.Context, presented string) (models.TokenPair, error) {
	if presented == "" {
		return models.TokenPair{}, apierr.Authentication("unauthorized request")
	}

	claims, err := s.tokens.VerifyRefresh(presented)
	if err != nil {
		return models.TokenPair{}, apierr.Authentication("invalid refresh token", err)
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return models.TokenPair{}, apierr.Authentication("invalid refresh token")
	}
	if err != nil {
		return models.TokenPair{}, apierr.Internal("failed to look up user", err)
	}

	if user.RefreshToken == "" || presented != user.RefreshToken {
		s.logger.LogSessionEvent(user.ID, "refresh", errors.New("stale refresh token"))
		return models.TokenPair{}, apierr.Authentication("refresh token is expired or used")
	}

	pair, err := s.issueAndStorePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, err
	}

	s.logger.LogSessionEvent(user.ID, "refresh", nil)
	return pair, nil
}

// ChangePassword verifies the old password and writes the new one through
// the store's hashing write path.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apierr.Validation("new password is required")
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return apierr.NotFound("user not found")
	}
	if err != nil {
		return apierr.Internal("failed to look up user", err)
	}

	if !auth.CheckPassword(oldPassword, user.PasswordHash) {
		return apierr.Authentication("invalid old password")
	}

	if err := s.store.UpdatePassword(ctx, userID, newPassword); err != nil {
		return apierr.Internal("failed to change password", err)
	}
	s.logger.LogSessionEvent(userID, "password_change", nil)
	return nil
}

// CurrentUser returns the sanitized record for the authenticated identity.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apierr.NotFound("user not found")
	}
	if err != nil {
		return nil, apierr.Internal("failed to look up user", err)
	}
	return user.Public(), nil
}

// UpdateAccount updates the user's full name and email.
func (s *UserService) UpdateAccount(ctx context.Context, userID, fullName, email string) (*models.PublicUser, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, apierr.Validation("all fields are required")
	}

	user, err := s.store.UpdateAccountDetails(ctx, userID, fullName, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apierr.NotFound("user not found")
	}
	if errors.Is(err, database.ErrDuplicate) {
		return nil, apierr.Conflict("email already in use")
	}
	if err != nil {
		return nil, apierr.Internal("failed to update account details", err)
	}

	s.invalidateProfile(ctx, user.Username)
	return user.Public(), nil
}

// UpdateAvatar uploads a new avatar and stores its URL.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, localPath string) (*models.PublicUser, error) {
	return s.updateImage(ctx, userID, localPath, "avatar", "avatar file is missing",
		s.store.UpdateAvatar, func(u *models.User) string { return u.AvatarURL })
}

// UpdateCoverImage uploads a new cover image and stores its URL.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID, localPath string) (*models.PublicUser, error) {
	return s.updateImage(ctx, userID, localPath, "cover", "cover image file is missing",
		s.store.UpdateCoverImage, func(u *models.User) string { return u.CoverImageURL })
}

func (s *UserService) updateImage(ctx context.Context, userID, localPath, kind, missingMsg string,
	write func(context.Context, string, string) (*models.User, error),
	current func(*models.User) string) (*models.PublicUser, error) {

	if localPath == "" {
		return nil, apierr.Validation(missingMsg)
	}

	// Capture the old URL before the overwrite so the replaced object can
	// be removed from the media host afterwards.
	existing, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apierr.NotFound("user not found")
	}
	if err != nil {
		return nil, apierr.Internal("failed to look up user", err)
	}
	oldURL := current(existing)

	url, err := s.uploadMedia(ctx, localPath, kind)
	if err != nil {
		return nil, apierr.Upload("error while uploading file", err)
	}

	user, err := write(ctx, userID, url)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apierr.NotFound("user not found")
	}
	if err != nil {
		return nil, apierr.Internal("failed to update image", err)
	}

	// The replaced object is orphaned now; removal is best-effort.
	if oldURL != "" && oldURL != url {
		if err := s.media.Delete(ctx, oldURL); err != nil {
			s.logger.Warnf("failed to delete replaced %s media %s: %v", kind, oldURL, err)
		}
	}

	s.scheduleCleanup(ctx, localPath, userID)
	s.invalidateProfile(ctx, user.Username)
	return user.Public(), nil
}

// ChannelProfile resolves a channel by username with subscription
// aggregates for the given viewer. viewerID may be empty.
func (s *UserService) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apierr.Validation("username is missing")
	}

	if s.cache != nil {
		if cached, err := s.cache.GetChannelProfile(ctx, username, viewerID); err == nil && cached != nil {
			return cached, nil
		}
	}

	profile, err := s.store.GetChannelProfile(ctx, username, viewerID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apierr.NotFound("channel does not exist")
	}
	if err != nil {
		return nil, apierr.Internal("failed to get channel profile", err)
	}

	if s.cache != nil {
		if err := s.cache.SetChannelProfile(ctx, viewerID, profile, profileCacheTTL); err != nil {
			s.logger.Warnf("failed to cache channel profile for %s: %v", username, err)
		}
	}

	return profile, nil
}

// RecordWatch upserts a watch-history entry. Re-watching a video bumps it
// to the top of the history instead of duplicating it.
func (s *UserService) RecordWatch(ctx context.Context, userID, videoID string) error {
	if videoID == "" {
		return apierr.Validation("video id is missing")
	}

	err := s.store.AppendWatchHistory(ctx, userID, videoID)
	if errors.Is(err, database.ErrNotFound) {
		return apierr.NotFound("video does not exist")
	}
	if err != nil {
		return apierr.Internal("failed to record watch event", err)
	}
	return nil
}

// WatchHistory returns the user's watch history, most recent first. An
// empty history is an empty list, not an error.
func (s *UserService) WatchHistory(ctx context.Context, userID string) ([]models.WatchHistoryEntry, error) {
	entries, err := s.store.GetWatchHistory(ctx, userID)
	if err != nil {
		return nil, apierr.Internal("failed to get watch history", err)
	}
	return entries, nil
}

// ToggleSubscription flips the viewer's subscription to the channel and
// reports the resulting state.
func (s *UserService) ToggleSubscription(ctx context.Context, subscriberID, channelUsername string) (bool, error) {
	channelUsername = strings.ToLower(strings.TrimSpace(channelUsername))
	if channelUsername == "" {
		return false, apierr.Validation("username is missing")
	}

	channel, err := s.store.GetUserByUsernameOrEmail(ctx, channelUsername, "")
	if errors.Is(err, database.ErrNotFound) {
		return false, apierr.NotFound("channel does not exist")
	}
	if err != nil {
		return false, apierr.Internal("failed to look up channel", err)
	}

	if channel.ID == subscriberID {
		return false, apierr.Validation("cannot subscribe to your own channel")
	}

	subscribed, err := s.store.IsSubscribed(ctx, subscriberID, channel.ID)
	if err != nil {
		return false, apierr.Internal("failed to check subscription", err)
	}

	if subscribed {
		err = s.store.Unsubscribe(ctx, subscriberID, channel.ID)
	} else {
		err = s.store.Subscribe(ctx, subscriberID, channel.ID)
	}
	if err != nil {
		return false, apierr.Internal("failed to toggle subscription", err)
	}

	s.invalidateProfile(ctx, channelUsername)
	return !subscribed, nil
}

// issueAndStorePair issues a fresh pair and overwrites the refresh-token
// slot. The slot write is a plain update: it must not re-trigger password
// hashing or any other validation.
func (s *UserService) issueAndStorePair(ctx context.Context, user *models.User) (models.TokenPair, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return models.TokenPair{}, apierr.Internal("something went wrong while generating tokens", err)
	}

	if err := s.store.UpdateRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return models.TokenPair{}, apierr.Internal("something went wrong while generating tokens", err)
	}

	return pair, nil
}

// uploadMedia transfers a local file to the media host and counts the
// outcome. Only the real transfer result moves the upload counters.
func (s *UserService) uploadMedia(ctx context.Context, localPath, kind string) (string, error) {
	url, err := s.media.UploadLocal(ctx, localPath)
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues(kind, metrics.OutcomeFailure).Inc()
		return "", err
	}
	metrics.MediaUploadsTotal.WithLabelValues(kind, metrics.OutcomeSuccess).Inc()
	return url, nil
}

// scheduleCleanup asks the cleanup worker to remove an already-transferred
// temp file. Best-effort: failures are logged, never escalated.
func (s *UserService) scheduleCleanup(ctx context.Context, localPath, userID string) {
	if s.cleanup == nil {
		return
	}
	err := s.cleanup.PublishCleanup(ctx, &queue.CleanupEvent{LocalPath: localPath, UserID: userID})
	if err != nil {
		s.logger.Warnf("failed to schedule temp file cleanup for %s: %v", localPath, err)
	}
}

func (s *UserService) invalidateProfile(ctx context.Context, username string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateChannel(ctx, username); err != nil {
		s.logger.Warnf("failed to invalidate channel cache for %s: %v", username, err)
	}
}
