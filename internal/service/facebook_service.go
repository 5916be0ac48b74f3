package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

type FacebookService interface {
	ExchangeCode(ctx context.Context, code string) ([]*transfer.ExchangeResult, error)
	Publish(ctx context.Context, post *models.Post, account *models.MetaAccount, accessToken string) (*transfer.PublishResult, error)
}

type facebookService struct {
	cfg          config.Config
	oauthConfig  *oauth2.Config
	httpClient   *http.Client
	graphURL     string
	videoTimeout time.Duration
	itemTimeout  time.Duration
}

func NewFacebookService(cfg config.Config) *facebookService {
	return &facebookService{
		cfg: cfg,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.FacebookClientID,
			ClientSecret: cfg.FacebookClientSecret,
			RedirectURL:  cfg.FacebookRedirectURI,
			Endpoint:     facebook.Endpoint,
		},
		httpClient:   http.DefaultClient,
		graphURL:     "https://graph.facebook.com/v21.0",
		videoTimeout: 60 * time.Second,
		itemTimeout:  45 * time.Second,
	}
}

// ExchangeCode trades the authorization code for a user token, then lists the
// user's pages and returns one result per page. Page tokens do not expire, so
// ExpiresAt stays zero.
func (s *facebookService) ExchangeCode(ctx context.Context, code string) ([]*transfer.ExchangeResult, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, &TokenExchangeError{Platform: models.PlatformFacebook, Body: err.Error()}
	}

	pages, err := s.listPages(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	if len(pages) == 0 {
		return nil, &TokenExchangeError{Platform: models.PlatformFacebook, Body: "no pages available for this account"}
	}

	results := make([]*transfer.ExchangeResult, 0, len(pages))
	for _, page := range pages {
		result := &transfer.ExchangeResult{
			Platform:      models.PlatformFacebook,
			UserAccountID: page.ID,
			PageID:        page.ID,
			AccountName:   page.Name,
			AccessToken:   page.AccessToken,
			Permissions:   page.Tasks,
		}
		if page.InstagramBusinessAccount != nil {
			result.Instagram = &transfer.InstagramSubProfile{
				ID:       page.InstagramBusinessAccount.ID,
				Username: page.InstagramBusinessAccount.Username,
			}
		}
		results = append(results, result)
	}

	return results, nil
}

func (s *facebookService) listPages(ctx context.Context, userToken string) ([]transfer.FacebookPage, error) {
	reqURL := fmt.Sprintf(
		"%s/me/accounts?fields=id,name,access_token,tasks,instagram_business_account{id,username}&access_token=%s",
		s.graphURL, url.QueryEscape(userToken),
	)

	var pagesResp transfer.FacebookPagesResponse
	err := retryWithBackoff(ctx, 3, func() error {
		return getJSON(ctx, s.httpClient, models.PlatformFacebook, reqURL, &pagesResp)
	})
	if err != nil {
		return nil, err
	}
	return pagesResp.Data, nil
}

// Publish posts to the page feed. Media handling depends on what the post
// carries: no media goes straight to the feed, a single video is uploaded
// with a link-post fallback on failure or timeout, a single image becomes a
// photo post, and multiple images are uploaded unpublished then attached to
// one feed post.
func (s *facebookService) Publish(ctx context.Context, post *models.Post, account *models.MetaAccount, accessToken string) (*transfer.PublishResult, error) {
	media := post.Media()

	switch {
	case len(media) == 0:
		return s.publishFeed(ctx, account.PageID, accessToken, post.Content, nil, "")
	case len(media) == 1 && isVideoURL(media[0]):
		return s.publishSingleVideo(ctx, account.PageID, accessToken, post.Content, media[0])
	case len(media) == 1:
		return s.publishPhoto(ctx, account.PageID, accessToken, post.Content, media[0])
	default:
		return s.publishMulti(ctx, account.PageID, accessToken, post.Content, media)
	}
}

func (s *facebookService) publishFeed(ctx context.Context, pageID, accessToken, message string, attachedMedia []string, link string) (*transfer.PublishResult, error) {
	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", accessToken)
	if link != "" {
		form.Set("link", link)
	}
	for i, id := range attachedMedia {
		form.Set(fmt.Sprintf("attached_media[%d]", i), fmt.Sprintf(`{"media_fbid":"%s"}`, id))
	}

	var result struct {
		ID string `json:"id"`
	}
	err := postForm(ctx, s.httpClient, models.PlatformFacebook, s.graphURL+"/"+pageID+"/feed", form, &result)
	if err != nil {
		return nil, asPublishError(models.PlatformFacebook, err)
	}
	if result.ID == "" {
		return nil, &PublishError{Platform: models.PlatformFacebook, Message: "no post id returned"}
	}

	return &transfer.PublishResult{Success: true, PlatformPostID: result.ID}, nil
}

func (s *facebookService) publishPhoto(ctx context.Context, pageID, accessToken, message, imageURL string) (*transfer.PublishResult, error) {
	form := url.Values{}
	form.Set("url", imageURL)
	form.Set("message", message)
	form.Set("access_token", accessToken)

	var result struct {
		PostID string `json:"post_id"`
		ID     string `json:"id"`
	}
	err := postForm(ctx, s.httpClient, models.PlatformFacebook, s.graphURL+"/"+pageID+"/photos", form, &result)
	if err != nil {
		return nil, asPublishError(models.PlatformFacebook, err)
	}

	postID := result.PostID
	if postID == "" {
		postID = result.ID
	}
	if postID == "" {
		return nil, &PublishError{Platform: models.PlatformFacebook, Message: "no post id returned"}
	}

	return &transfer.PublishResult{Success: true, PlatformPostID: postID}, nil
}

// publishSingleVideo uploads the video by URL. When the upload fails or runs
// past the deadline, the post degrades to a feed post carrying the video URL
// as a link, which still succeeds from the caller's point of view.
func (s *facebookService) publishSingleVideo(ctx context.Context, pageID, accessToken, message, videoURL string) (*transfer.PublishResult, error) {
	videoCtx, cancel := context.WithTimeout(ctx, s.videoTimeout)
	defer cancel()

	id, err := s.uploadVideo(videoCtx, pageID, accessToken, message, videoURL)
	if err != nil {
		slog.Info("facebook video upload failed, falling back to link post", "error", err.Error())
		return s.publishFeed(ctx, pageID, accessToken, message, nil, videoURL)
	}

	return &transfer.PublishResult{Success: true, PlatformPostID: id}, nil
}

func (s *facebookService) uploadVideo(ctx context.Context, pageID, accessToken, description, videoURL string) (string, error) {
	form := url.Values{}
	form.Set("file_url", videoURL)
	form.Set("description", description)
	form.Set("access_token", accessToken)

	var result struct {
		ID string `json:"id"`
	}
	err := postForm(ctx, s.httpClient, models.PlatformFacebook, s.graphURL+"/"+pageID+"/videos", form, &result)
	if err != nil {
		return "", asPublishError(models.PlatformFacebook, err)
	}
	if result.ID == "" {
		return "", &PublishError{Platform: models.PlatformFacebook, Message: "no video id returned"}
	}
	return result.ID, nil
}

// publishMulti uploads each image unpublished and attaches the collected ids
// to a single feed post. Videos in a multi-media post get their own timeout;
// ones that fail are dropped from the attachment list and their URLs appended
// to the message text instead.
func (s *facebookService) publishMulti(ctx context.Context, pageID, accessToken, message string, media []string) (*transfer.PublishResult, error) {
	var attached []string
	var failedLinks []string

	for _, mediaURL := range media {
		if isVideoURL(mediaURL) {
			itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
			id, err := s.uploadVideo(itemCtx, pageID, accessToken, "", mediaURL)
			cancel()
			if err != nil {
				slog.Info("facebook video upload failed in multi-media post", "error", err.Error())
				failedLinks = append(failedLinks, mediaURL)
				continue
			}
			attached = append(attached, id)
			continue
		}

		id, err := s.uploadUnpublishedPhoto(ctx, pageID, accessToken, mediaURL)
		if err != nil {
			return nil, err
		}
		attached = append(attached, id)
	}

	if len(failedLinks) > 0 {
		message = strings.TrimSpace(message + "\n\n" + strings.Join(failedLinks, "\n"))
	}

	if len(attached) == 0 && len(failedLinks) > 0 {
		return s.publishFeed(ctx, pageID, accessToken, message, nil, "")
	}

	return s.publishFeed(ctx, pageID, accessToken, message, attached, "")
}

func (s *facebookService) uploadUnpublishedPhoto(ctx context.Context, pageID, accessToken, imageURL string) (string, error) {
	form := url.Values{}
	form.Set("url", imageURL)
	form.Set("published", "false")
	form.Set("access_token", accessToken)

	var result struct {
		ID string `json:"id"`
	}
	err := postForm(ctx, s.httpClient, models.PlatformFacebook, s.graphURL+"/"+pageID+"/photos", form, &result)
	if err != nil {
		return "", asPublishError(models.PlatformFacebook, err)
	}
	if result.ID == "" {
		return "", &PublishError{Platform: models.PlatformFacebook, Message: "no photo id returned"}
	}
	return result.ID, nil
}
