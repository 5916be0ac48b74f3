package models

import "time"

type Post struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Platform       string    `db:"platform" json:"platform"`
	AccountID      string    `db:"account_id" json:"account_id"`
	Content        string    `db:"content" json:"content"`
	ImageURL       string    `db:"image_url" json:"image_url,omitempty"`
	MediaURLs      []string  `db:"media_urls" json:"media_urls,omitempty"`
	Status         string    `db:"status" json:"status"`
	ScheduledFor   time.Time `db:"scheduled_for" json:"scheduled_for,omitempty"`
	PublishedAt    time.Time `db:"published_at" json:"published_at,omitempty"`
	PlatformPostID string    `db:"platform_post_id" json:"platform_post_id,omitempty"`
	ErrorMessage   string    `db:"error_message" json:"error_message,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusDraft      = "draft"
	PostStatusScheduled  = "scheduled"
	PostStatusPublishing = "publishing"
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
)

// CanTransition reports whether a post may move between the two statuses.
// The machine is strictly forward-moving; the one exception is a manual
// retry of a failed post.
func CanTransition(from, to string) bool {
	switch from {
	case PostStatusDraft:
		return to == PostStatusScheduled || to == PostStatusPublishing
	case PostStatusScheduled:
		return to == PostStatusPublishing
	case PostStatusPublishing:
		return to == PostStatusPublished || to == PostStatusFailed
	case PostStatusFailed:
		return to == PostStatusPublishing
	}
	return false
}

// Media returns the ordered media URLs for the post, falling back to the
// legacy single image field when the list is empty.
func (p *Post) Media() []string {
	if len(p.MediaURLs) > 0 {
		return p.MediaURLs
	}
	if p.ImageURL != "" {
		return []string{p.ImageURL}
	}
	return nil
}
