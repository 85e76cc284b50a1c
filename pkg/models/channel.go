package models

import (
	"time"
)

// Subscription is a directed edge from a subscriber to a channel. Both ends
// are user IDs.
type Subscription struct {
	ID           string    `json:"id" db:"id"`
	SubscriberID string    `json:"subscriber_id" db:"subscriber_id"`
	ChannelID    string    `json:"channel_id" db:"channel_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ChannelProfile is a user viewed as a subscribable channel, with the
// subscription aggregates resolved for a particular viewer.
type ChannelProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	FullName          string `json:"full_name"`
	Email             string `json:"email"`
	AvatarURL         string `json:"avatar"`
	CoverImageURL     string `json:"cover_image,omitempty"`
	SubscriberCount   int64  `json:"subscribers_count"`
	SubscribedToCount int64  `json:"channels_subscribed_to_count"`
	IsSubscribed      bool   `json:"is_subscribed"`
}

// VideoOwner is the denormalized owner summary attached to watch-history
// entries.
type VideoOwner struct {
	FullName  string `json:"full_name"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}

// WatchHistoryEntry is one watched video with its owner summary.
type WatchHistoryEntry struct {
	VideoID      string     `json:"video_id"`
	Title        string     `json:"title"`
	ThumbnailURL string     `json:"thumbnail,omitempty"`
	Duration     float64    `json:"duration"`
	Owner        VideoOwner `json:"owner"`
	WatchedAt    time.Time  `json:"watched_at"`
}
