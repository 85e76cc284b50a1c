package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/therealutkarshpriyadarshi/streamtube/pkg/models"
)

// Subscriptions

// Subscribe creates a subscription edge from subscriber to channel.
func (r *Repository) Subscribe(ctx context.Context, subscriberID, channelID string) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO subscriptions (id, subscriber_id, channel_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (subscriber_id, channel_id) DO NOTHING
	`, uuid.New().String(), subscriberID, channelID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// Unsubscribe removes the subscription edge. Idempotent.
func (r *Repository) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	_, err := r.db.Pool.Exec(ctx, `
		DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
	`, subscriberID, channelID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// IsSubscribed reports whether subscriber follows channel.
func (r *Repository) IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error) {
	var subscribed bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
		)
	`, subscriberID, channelID).Scan(&subscribed)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return subscribed, nil
}

// GetChannelProfile resolves a channel (a user by username) together with
// its subscription aggregates for a particular viewer: inbound subscriber
// count, outbound subscribed-to count, and whether the viewer subscribes to
// the channel. viewerID may be empty for anonymous viewers.
func (r *Repository) GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	query := `
		SELECT u.id, u.username, u.full_name, u.email, u.avatar_url,
		       COALESCE(u.cover_image_url, ''),
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id),
		       (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
		       EXISTS (
		           SELECT 1 FROM subscriptions s
		           WHERE s.channel_id = u.id AND s.subscriber_id = $2 AND $2 <> ''
		       )
		FROM users u
		WHERE u.username = $1
	`

	var profile models.ChannelProfile
	err := r.db.Pool.QueryRow(ctx, query, username, viewerID).Scan(
		&profile.ID, &profile.Username, &profile.FullName, &profile.Email,
		&profile.AvatarURL, &profile.CoverImageURL,
		&profile.SubscriberCount, &profile.SubscribedToCount, &profile.IsSubscribed,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel profile: %w", err)
	}

	return &profile, nil
}

// Watch history

// AppendWatchHistory records that the user watched a video. Re-watching
// moves the entry to the front of the history.
func (r *Repository) AppendWatchHistory(ctx context.Context, userID, videoID string) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO watch_history (user_id, video_id, watched_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = NOW()
	`, userID, videoID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to append watch history: %w", err)
	}
	return nil
}

// GetWatchHistory returns the user's watch history, most recent first, each
// entry expanded with a projected owner summary. A user with no history gets
// an empty slice, not an error.
func (r *Repository) GetWatchHistory(ctx context.Context, userID string) ([]models.WatchHistoryEntry, error) {
	query := `
		SELECT v.id, v.title, COALESCE(v.thumbnail_url, ''), v.duration,
		       o.full_name, o.username, o.avatar_url, h.watched_at
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		JOIN users o ON o.id = v.owner_id
		WHERE h.user_id = $1
		ORDER BY h.watched_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watch history: %w", err)
	}
	defer rows.Close()

	entries := []models.WatchHistoryEntry{}
	for rows.Next() {
		var entry models.WatchHistoryEntry
		err := rows.Scan(
			&entry.VideoID, &entry.Title, &entry.ThumbnailURL, &entry.Duration,
			&entry.Owner.FullName, &entry.Owner.Username, &entry.Owner.AvatarURL,
			&entry.WatchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watch history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
