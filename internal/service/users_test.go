package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/streamtube/internal/apierr"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/auth"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/config"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/database"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/queue"
	"github.com/therealutkarshpriyadarshi/streamtube/pkg/models"
)

// fakeStore is an in-memory UserStore mirroring the database package's
// contract, including password hashing on the write paths.
type fakeStore struct {
	users         map[string]*models.User
	subscriptions map[string]bool
	history       map[string][]models.WatchHistoryEntry
	createCalls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[string]*models.User),
		subscriptions: make(map[string]bool),
		history:       make(map[string][]models.WatchHistoryEntry),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User, password string) error {
	f.createCalls++
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return database.ErrDuplicate
		}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.PasswordHash = hash
	user.CreatedAt = time.Now()
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeStore) GetUserByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	for _, u := range f.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) UpdateRefreshToken(_ context.Context, userID, token string) error {
	u, ok := f.users[userID]
	if !ok {
		return database.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (f *fakeStore) ClearRefreshToken(_ context.Context, userID string) error {
	if u, ok := f.users[userID]; ok {
		u.RefreshToken = ""
	}
	return nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, userID, password string) error {
	u, ok := f.users[userID]
	if !ok {
		return database.ErrNotFound
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeStore) UpdateAccountDetails(_ context.Context, userID, fullName, email string) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	for id, other := range f.users {
		if id != userID && other.Email == email {
			return nil, database.ErrDuplicate
		}
	}
	u.FullName = fullName
	u.Email = email
	clone := *u
	return &clone, nil
}

func (f *fakeStore) UpdateAvatar(_ context.Context, userID, avatarURL string) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	u.AvatarURL = avatarURL
	clone := *u
	return &clone, nil
}

func (f *fakeStore) UpdateCoverImage(_ context.Context, userID, coverImageURL string) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	u.CoverImageURL = coverImageURL
	clone := *u
	return &clone, nil
}

func (f *fakeStore) GetChannelProfile(_ context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	for _, u := range f.users {
		if u.Username == username {
			return &models.ChannelProfile{
				ID:           u.ID,
				Username:     u.Username,
				FullName:     u.FullName,
				IsSubscribed: viewerID != "" && f.subscriptions[viewerID+":"+u.ID],
			}, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) AppendWatchHistory(_ context.Context, userID, videoID string) error {
	entry := models.WatchHistoryEntry{VideoID: videoID, WatchedAt: time.Now()}
	filtered := []models.WatchHistoryEntry{entry}
	for _, e := range f.history[userID] {
		if e.VideoID != videoID {
			filtered = append(filtered, e)
		}
	}
	f.history[userID] = filtered
	return nil
}

func (f *fakeStore) GetWatchHistory(_ context.Context, userID string) ([]models.WatchHistoryEntry, error) {
	entries, ok := f.history[userID]
	if !ok {
		return []models.WatchHistoryEntry{}, nil
	}
	return entries, nil
}

func (f *fakeStore) Subscribe(_ context.Context, subscriberID, channelID string) error {
	f.subscriptions[subscriberID+":"+channelID] = true
	return nil
}

func (f *fakeStore) Unsubscribe(_ context.Context, subscriberID, channelID string) error {
	delete(f.subscriptions, subscriberID+":"+channelID)
	return nil
}

func (f *fakeStore) IsSubscribed(_ context.Context, subscriberID, channelID string) (bool, error) {
	return f.subscriptions[subscriberID+":"+channelID], nil
}

// fakeUploader counts uploads, records deletions, and can be told to
// fail, either always or for specific local paths.
type fakeUploader struct {
	calls      int
	fail       bool
	failPaths  map[string]bool
	failDelete bool
	deleted    []string
}

func (f *fakeUploader) UploadLocal(_ context.Context, localPath string) (string, error) {
	f.calls++
	if f.fail || f.failPaths[localPath] {
		return "", errors.New("upload failed")
	}
	return fmt.Sprintf("https://media.example.com/uploads/%s", localPath), nil
}

func (f *fakeUploader) Delete(_ context.Context, url string) error {
	if f.failDelete {
		return errors.New("delete failed")
	}
	f.deleted = append(f.deleted, url)
	return nil
}

// fakeCleanup records scheduled cleanup events.
type fakeCleanup struct {
	events []*queue.CleanupEvent
}

func (f *fakeCleanup) PublishCleanup(_ context.Context, event *queue.CleanupEvent) error {
	f.events = append(f.events, event)
	return nil
}

func testTokens() *auth.TokenService {
	return auth.NewTokenService(config.AuthConfig{
		AccessSecret:  "access-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshExpiry: 240 * time.Hour,
	})
}

func testLogger() *logging.Logger {
	logger, err := logging.NewLogger(logging.Config{Level: "error", Format: "json"})
	if err != nil {
		panic(err)
	}
	return logger
}

func newTestService(store *fakeStore, media *fakeUploader, cleanup *fakeCleanup) *UserService {
	var pub CleanupPublisher
	if cleanup != nil {
		pub = cleanup
	}
	return NewUserService(store, media, testTokens(), nil, pub, testLogger())
}

func registerInput() RegisterInput {
	return RegisterInput{
		FullName:   "Test User",
		Email:      "test@example.com",
		Username:   "testuser",
		Password:   "secret123",
		AvatarPath: "/tmp/avatar.png",
	}
}

func registerUser(t *testing.T, svc *UserService) *models.PublicUser {
	t.Helper()
	user, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	store := newFakeStore()
	cleanup := &fakeCleanup{}
	svc := newTestService(store, &fakeUploader{}, cleanup)

	in := registerInput()
	in.Username = "  TestUser  "
	in.Email = "  Test@Example.com "
	in.CoverImagePath = "/tmp/cover.png"

	user, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NotEmpty(t, user.ID)
	assert.Contains(t, user.AvatarURL, "avatar.png")
	assert.Contains(t, user.CoverImageURL, "cover.png")

	// Both temp files get handed to the cleanup worker.
	require.Len(t, cleanup.events, 2)
	assert.Equal(t, "/tmp/avatar.png", cleanup.events[0].LocalPath)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing full name", func(in *RegisterInput) { in.FullName = "   " }},
		{"missing email", func(in *RegisterInput) { in.Email = "" }},
		{"missing username", func(in *RegisterInput) { in.Username = "" }},
		{"missing password", func(in *RegisterInput) { in.Password = "  " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			media := &fakeUploader{}
			svc := newTestService(store, media, nil)

			in := registerInput()
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			var apiErr *apierr.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, apierr.KindValidation, apiErr.Kind)

			// Nothing may be written or uploaded on a validation failure.
			assert.Zero(t, store.createCalls)
			assert.Zero(t, media.calls)
		})
	}
}

func TestRegisterMissingAvatar(t *testing.T) {
	media := &fakeUploader{}
	svc := newTestService(newFakeStore(), media, nil)

	in := registerInput()
	in.AvatarPath = ""

	_, err := svc.Register(context.Background(), in)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindValidation, apiErr.Kind)
	assert.Zero(t, media.calls)
}

func TestRegisterConflictSkipsUpload(t *testing.T) {
	store := newFakeStore()
	media := &fakeUploader{}
	svc := newTestService(store, media, nil)

	registerUser(t, svc)
	media.calls = 0

	in := registerInput()
	in.FullName = "Someone Else"

	_, err := svc.Register(context.Background(), in)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindConflict, apiErr.Kind)

	// The conflict is detected before any media is transferred.
	assert.Zero(t, media.calls)
}

func TestRegisterCoverUploadFailureTolerated(t *testing.T) {
	store := newFakeStore()
	media := &fakeUploader{failPaths: map[string]bool{"/tmp/cover.png": true}}
	svc := newTestService(store, media, nil)

	in := registerInput()
	in.CoverImagePath = "/tmp/cover.png"

	// The avatar upload succeeds, the cover upload fails; registration
	// still goes through with an empty cover image.
	user, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, user.CoverImageURL)
	assert.NotEmpty(t, user.AvatarURL)
}

func TestRegisterAvatarUploadFailure(t *testing.T) {
	store := newFakeStore()
	media := &fakeUploader{fail: true}
	svc := newTestService(store, media, nil)

	_, err := svc.Register(context.Background(), registerInput())
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindUpload, apiErr.Kind)
	assert.Zero(t, store.createCalls)
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeUploader{}, nil)
	registerUser(t, svc)

	user, pair, err := svc.Login(context.Background(), "testuser", "", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// The refresh token is persisted verbatim into the user's slot.
	stored, err := store.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored.RefreshToken)
}

func TestLoginByEmail(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeUploader{}, nil)
	registerUser(t, svc)

	_, pair, err := svc.Login(context.Background(), "", "test@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestLoginFailures(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeUploader{}, nil)
	registerUser(t, svc)

	tests := []struct {
		name     string
		username string
		email    string
		password string
		kind     apierr.Kind
	}{
		{"no identifier", "", "", "secret123", apierr.KindValidation},
		{"unknown user", "ghost", "", "secret123", apierr.KindNotFound},
		{"wrong password", "testuser", "", "wrong", apierr.KindAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tt.username, tt.email, tt.password)
			var apiErr *apierr.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
		})
	}
}

func TestRefreshRotation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeUploader{}, nil)
	registerUser(t, svc)

	_, first, err := svc.Login(context.Background(), "testuser", "", "secret123")
	require.NoError(t, err)

	// jwt timestamps have second granularity; force distinct tokens.
	time.Sleep(1100 * time.Millisecond)

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The rotated-out token is rejected on replay.
	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindAuthentication, apiErr.Kind)

	// The current token still works.
	_, err = svc.Refresh(context.Background(), second.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeUploader{}, nil)

	for _, token := range []string{"", "not-a-jwt"} {
		_, err := svc.Refresh(context.Background(), token)
		var apiErr *apierr.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierr.KindAuthentication, apiErr.Kind)
	}
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeUploader{}, nil)
	user := registerUser(t, svc)

	_, pair, err := svc.Login(context.Background(), "testuser", "", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), user.ID))

	// A signed, unexpired token is still dead once the slot is cleared.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindAuthentication, apiErr.Kind)

	// Logout is idempotent.
	require.NoError(t, svc.Logout(context.Background(), user.ID))
}

func TestChangePassword(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeUploader{}, nil)
	user := registerUser(t, svc)

	err := svc.ChangePassword(context.Background(), user.ID, "secret123", "newsecret")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "testuser", "", "secret123")
	assert.Error(t, err)

	_, _, err = svc.Login(context.Background(), "testuser", "", "newsecret")
	assert.NoError(t, err)
}

func TestChangePasswordFailures(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeUploader{}, nil)
	user := registerUser(t, svc)

	tests := []struct {
		name   string
		userID string
		oldPwd string
		newPwd string
		kind   apierr.Kind
	}{
		{"blank new password", user.ID, "secret123", " ", apierr.KindValidation},
		{"unknown user", uuid.NewString(), "secret123", "newsecret", apierr.KindNotFound},
		{"wrong old password", user.ID, "wrong", "newsecret", apierr.KindAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ChangePassword(context.Background(), tt.userID, tt.oldPwd, tt.newPwd)
			var apiErr *apierr.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
		})
	}
}

func TestCurrentUser(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeUploader{}, nil)
	user := registerUser(t, svc)

	got, err := svc.CurrentUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)

	_, err = svc.CurrentUser(context.Background(), uuid.NewString())
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindNotFound, apiErr.Kind)
}

func TestUpdateAccount(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeUploader{}, nil)
	user := registerUser(t, svc)

	got, err := svc.UpdateAccount(context.Background(), user.ID, "New Name", "NEW@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.FullName)
	assert.Equal(t, "new@example.com", got.Email)

	_, err = svc.UpdateAccount(context.Background(), user.ID, "", "new@example.com")
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindValidation, apiErr.Kind)
}

func TestUpdateAvatar(t *testing.T) {
	cleanup := &fakeCleanup{}
	svc := newTestService(newFakeStore(), &fakeUploader{}, cleanup)
	user := registerUser(t, svc)
	cleanup.events = nil

	got, err := svc.UpdateAvatar(context.Background(), user.ID, "/tmp/new-avatar.png")
	require.NoError(t, err)
	assert.Contains(t, got.AvatarURL, "new-avatar.png")
	require.Len(t, cleanup.events, 1)

	_, err = svc.UpdateAvatar(context.Background(), user.ID, "")
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindValidation, apiErr.Kind)
}

func TestUpdateAvatarUploadFailure(t *testing.T) {
	media := &fakeUploader{fail: true}
	store := newFakeStore()
	svc := NewUserService(store, media, testTokens(), nil, nil, testLogger())

	user := &models.User{ID: uuid.NewString(), Username: "u", Email: "u@example.com", AvatarURL: "old"}
	store.users[user.ID] = user

	_, err := svc.UpdateAvatar(context.Background(), user.ID, "/tmp/a.png")
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindUpload, apiErr.Kind)

	// The stored URL is untouched on a failed upload.
	assert.Equal(t, "old", store.users[user.ID].AvatarURL)
}

func TestUpdateImageDeletesReplaced(t *testing.T) {
	media := &fakeUploader{}
	svc := newTestService(newFakeStore(), media, nil)
	user := registerUser(t, svc)

	got, err := svc.UpdateAvatar(context.Background(), user.ID, "/tmp/new-avatar.png")
	require.NoError(t, err)

	// The replaced avatar object is removed from storage.
	require.Len(t, media.deleted, 1)
	assert.Contains(t, media.deleted[0], "avatar.png")
	assert.NotEqual(t, got.AvatarURL, media.deleted[0])

	// A first cover image has nothing to replace.
	_, err = svc.UpdateCoverImage(context.Background(), user.ID, "/tmp/cover.png")
	require.NoError(t, err)
	assert.Len(t, media.deleted, 1)
}

func TestUpdateAvatarDeleteFailureTolerated(t *testing.T) {
	media := &fakeUploader{failDelete: true}
	svc := newTestService(newFakeStore(), media, nil)
	user := registerUser(t, svc)

	// Removing the orphaned object is best-effort; the update sticks.
	got, err := svc.UpdateAvatar(context.Background(), user.ID, "/tmp/new-avatar.png")
	require.NoError(t, err)
	assert.Contains(t, got.AvatarURL, "new-avatar.png")
}

func TestUploadOutcomeCounters(t *testing.T) {
	media := &fakeUploader{failPaths: map[string]bool{"/tmp/bad.png": true}}
	svc := newTestService(newFakeStore(), media, nil)
	user := registerUser(t, svc)

	successBefore := testutil.ToFloat64(metrics.MediaUploadsTotal.WithLabelValues("avatar", metrics.OutcomeSuccess))
	failureBefore := testutil.ToFloat64(metrics.MediaUploadsTotal.WithLabelValues("avatar", metrics.OutcomeFailure))

	_, err := svc.UpdateAvatar(context.Background(), user.ID, "/tmp/good.png")
	require.NoError(t, err)

	_, err = svc.UpdateAvatar(context.Background(), user.ID, "/tmp/bad.png")
	require.Error(t, err)

	// Each counter moves only on the matching transfer result.
	assert.Equal(t, successBefore+1, testutil.ToFloat64(metrics.MediaUploadsTotal.WithLabelValues("avatar", metrics.OutcomeSuccess)))
	assert.Equal(t, failureBefore+1, testutil.ToFloat64(metrics.MediaUploadsTotal.WithLabelValues("avatar", metrics.OutcomeFailure)))
}

func TestChannelProfile(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeUploader{}, nil)
	registerUser(t, svc)

	profile, err := svc.ChannelProfile(context.Background(), " TestUser ", "")
	require.NoError(t, err)
	assert.Equal(t, "testuser", profile.Username)
	assert.False(t, profile.IsSubscribed)

	_, err = svc.ChannelProfile(context.Background(), "ghost", "")
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindNotFound, apiErr.Kind)

	_, err = svc.ChannelProfile(context.Background(), "  ", "")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindValidation, apiErr.Kind)
}

func TestToggleSubscription(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeUploader{}, nil)
	viewer := registerUser(t, svc)

	channel := &models.User{ID: uuid.NewString(), Username: "channel", Email: "c@example.com"}
	store.users[channel.ID] = channel

	subscribed, err := svc.ToggleSubscription(context.Background(), viewer.ID, "channel")
	require.NoError(t, err)
	assert.True(t, subscribed)

	// The viewer's own profile view now reflects the subscription.
	profile, err := svc.ChannelProfile(context.Background(), "channel", viewer.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsSubscribed)

	subscribed, err = svc.ToggleSubscription(context.Background(), viewer.ID, "channel")
	require.NoError(t, err)
	assert.False(t, subscribed)

	// Subscribing to yourself is rejected.
	_, err = svc.ToggleSubscription(context.Background(), viewer.ID, "testuser")
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindValidation, apiErr.Kind)
}

func TestRecordWatch(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeUploader{}, nil)
	user := registerUser(t, svc)

	require.NoError(t, svc.RecordWatch(context.Background(), user.ID, "video-1"))
	require.NoError(t, svc.RecordWatch(context.Background(), user.ID, "video-2"))

	// Re-watching bumps the entry instead of duplicating it.
	require.NoError(t, svc.RecordWatch(context.Background(), user.ID, "video-1"))

	entries, err := svc.WatchHistory(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "video-1", entries[0].VideoID)

	err = svc.RecordWatch(context.Background(), user.ID, "")
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.KindValidation, apiErr.Kind)
}

func TestWatchHistoryEmpty(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeUploader{}, nil)
	user := registerUser(t, svc)

	entries, err := svc.WatchHistory(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
