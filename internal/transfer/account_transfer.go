package transfer

import "github.com/anuragdev21/socialbridge/internal/models"

// AccountList groups a user's connected accounts by platform family, matching
// the shape of the stored per-user account index.
type AccountList struct {
	Meta      []*models.MetaAccount      `json:"meta_accounts"`
	Linkedin  []*models.LinkedinAccount  `json:"linkedin_accounts"`
	Pinterest []*models.PinterestAccount `json:"pinterest_accounts"`
	Tiktok    []*models.TiktokAccount    `json:"tiktok_accounts"`
}
