package transfer

// PostCreation is the inbound payload for creating a post. ScheduledFor is
// RFC 3339; empty means publish now.
type PostCreation struct {
	Platform     string   `json:"platform" validate:"required,oneof=facebook instagram linkedin threads pinterest tiktok"`
	AccountID    string   `json:"account_id" validate:"required"`
	Content      string   `json:"content" validate:"required_without=MediaURLs"`
	ImageURL     string   `json:"image_url" validate:"omitempty,url"`
	MediaURLs    []string `json:"media_urls" validate:"omitempty,dive,url"`
	ScheduledFor string   `json:"scheduled_for" validate:"omitempty"`
}

// IdentityEvent is the payload the external identity provider posts to the
// identity webhook when a user is created or updated.
type IdentityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		Email          string `json:"email"`
		Name           string `json:"name"`
		ProfilePicture string `json:"profile_picture_url"`
	} `json:"data"`
}
