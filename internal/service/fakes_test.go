package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/anuragdev21/socialbridge/internal/models"
)

type fakeMetaAccountRepo struct {
	accounts map[int64]*models.MetaAccount
	nextID   int64
	updates  int
}

func newFakeMetaAccountRepo() *fakeMetaAccountRepo {
	return &fakeMetaAccountRepo{accounts: make(map[int64]*models.MetaAccount), nextID: 1}
}

func (f *fakeMetaAccountRepo) Create(ctx context.Context, tx *sql.Tx, a *models.MetaAccount) (int64, error) {
	a.ID = f.nextID
	f.nextID++
	f.accounts[a.ID] = a
	return a.ID, nil
}

func (f *fakeMetaAccountRepo) GetByID(ctx context.Context, id int64) (*models.MetaAccount, error) {
	return f.accounts[id], nil
}

func (f *fakeMetaAccountRepo) GetByUserAccount(ctx context.Context, userID int64, platform, accountID string) (*models.MetaAccount, error) {
	for _, a := range f.accounts {
		if a.UserID == userID && a.Platform == platform && (a.UserAccountID == accountID || a.PageID == accountID) {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeMetaAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.MetaAccount, error) {
	var out []*models.MetaAccount
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeMetaAccountRepo) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.MetaAccount, error) {
	return nil, nil
}

func (f *fakeMetaAccountRepo) UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	f.updates++
	if a, ok := f.accounts[id]; ok {
		a.AccessToken = accessToken
		if refreshToken != "" {
			a.RefreshToken = refreshToken
		}
		a.TokenExpiresAt = expiresAt
	}
	return nil
}

func (f *fakeMetaAccountRepo) Remove(ctx context.Context, id int64) error {
	delete(f.accounts, id)
	return nil
}

type fakeLinkedinAccountRepo struct {
	accounts map[int64]*models.LinkedinAccount
	nextID   int64
}

func newFakeLinkedinAccountRepo() *fakeLinkedinAccountRepo {
	return &fakeLinkedinAccountRepo{accounts: make(map[int64]*models.LinkedinAccount), nextID: 1}
}

func (f *fakeLinkedinAccountRepo) Create(ctx context.Context, tx *sql.Tx, a *models.LinkedinAccount) (int64, error) {
	a.ID = f.nextID
	f.nextID++
	f.accounts[a.ID] = a
	return a.ID, nil
}

func (f *fakeLinkedinAccountRepo) GetByID(ctx context.Context, id int64) (*models.LinkedinAccount, error) {
	return f.accounts[id], nil
}

func (f *fakeLinkedinAccountRepo) GetByUserAccount(ctx context.Context, userID int64, accountID string) (*models.LinkedinAccount, error) {
	for _, a := range f.accounts {
		if a.UserID == userID && a.UserAccountID == accountID {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeLinkedinAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.LinkedinAccount, error) {
	var out []*models.LinkedinAccount
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeLinkedinAccountRepo) UpdateTokens(ctx context.Context, id int64, accessToken string) error {
	if a, ok := f.accounts[id]; ok {
		a.AccessToken = accessToken
	}
	return nil
}

func (f *fakeLinkedinAccountRepo) Remove(ctx context.Context, id int64) error {
	delete(f.accounts, id)
	return nil
}

type fakePinterestAccountRepo struct {
	accounts map[int64]*models.PinterestAccount
	nextID   int64
}

func newFakePinterestAccountRepo() *fakePinterestAccountRepo {
	return &fakePinterestAccountRepo{accounts: make(map[int64]*models.PinterestAccount), nextID: 1}
}

func (f *fakePinterestAccountRepo) Create(ctx context.Context, tx *sql.Tx, a *models.PinterestAccount) (int64, error) {
	a.ID = f.nextID
	f.nextID++
	f.accounts[a.ID] = a
	return a.ID, nil
}

func (f *fakePinterestAccountRepo) GetByID(ctx context.Context, id int64) (*models.PinterestAccount, error) {
	return f.accounts[id], nil
}

func (f *fakePinterestAccountRepo) GetByUserAccount(ctx context.Context, userID int64, accountID string) (*models.PinterestAccount, error) {
	for _, a := range f.accounts {
		if a.UserID == userID && a.UserAccountID == accountID {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakePinterestAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.PinterestAccount, error) {
	var out []*models.PinterestAccount
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakePinterestAccountRepo) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.PinterestAccount, error) {
	return nil, nil
}

func (f *fakePinterestAccountRepo) UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	if a, ok := f.accounts[id]; ok {
		a.AccessToken = accessToken
		a.RefreshToken = refreshToken
		a.TokenExpiresAt = expiresAt
	}
	return nil
}

func (f *fakePinterestAccountRepo) Remove(ctx context.Context, id int64) error {
	delete(f.accounts, id)
	return nil
}

type fakeTiktokAccountRepo struct {
	accounts map[int64]*models.TiktokAccount
	nextID   int64
}

func newFakeTiktokAccountRepo() *fakeTiktokAccountRepo {
	return &fakeTiktokAccountRepo{accounts: make(map[int64]*models.TiktokAccount), nextID: 1}
}

func (f *fakeTiktokAccountRepo) Create(ctx context.Context, tx *sql.Tx, a *models.TiktokAccount) (int64, error) {
	a.ID = f.nextID
	f.nextID++
	f.accounts[a.ID] = a
	return a.ID, nil
}

func (f *fakeTiktokAccountRepo) GetByID(ctx context.Context, id int64) (*models.TiktokAccount, error) {
	return f.accounts[id], nil
}

func (f *fakeTiktokAccountRepo) GetByOpenID(ctx context.Context, userID int64, openID string) (*models.TiktokAccount, error) {
	for _, a := range f.accounts {
		if a.UserID == userID && a.OpenID == openID {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeTiktokAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.TiktokAccount, error) {
	var out []*models.TiktokAccount
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeTiktokAccountRepo) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.TiktokAccount, error) {
	return nil, nil
}

func (f *fakeTiktokAccountRepo) UpdateTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	if a, ok := f.accounts[id]; ok {
		a.AccessToken = accessToken
		a.RefreshToken = refreshToken
		a.TokenExpiresAt = expiresAt
	}
	return nil
}

func (f *fakeTiktokAccountRepo) Remove(ctx context.Context, id int64) error {
	delete(f.accounts, id)
	return nil
}

type indexEntry struct {
	platform   string
	accountRef int64
}

type fakeUserAccountRepo struct {
	entries map[int64][]indexEntry
	appends int
}

func newFakeUserAccountRepo() *fakeUserAccountRepo {
	return &fakeUserAccountRepo{entries: make(map[int64][]indexEntry)}
}

func (f *fakeUserAccountRepo) AppendAccount(ctx context.Context, userID int64, platform string, accountRef int64) error {
	for _, e := range f.entries[userID] {
		if e.platform == platform && e.accountRef == accountRef {
			return nil
		}
	}
	f.entries[userID] = append(f.entries[userID], indexEntry{platform: platform, accountRef: accountRef})
	f.appends++
	return nil
}

func (f *fakeUserAccountRepo) RemoveAccount(ctx context.Context, userID int64, platform string, accountRef int64) error {
	kept := f.entries[userID][:0]
	for _, e := range f.entries[userID] {
		if e.platform != platform || e.accountRef != accountRef {
			kept = append(kept, e)
		}
	}
	f.entries[userID] = kept
	return nil
}

func (f *fakeUserAccountRepo) GetByUserID(ctx context.Context, userID int64) (*models.UserAccountIndex, error) {
	idx := &models.UserAccountIndex{UserID: userID}
	for _, e := range f.entries[userID] {
		switch e.platform {
		case models.PlatformLinkedin:
			idx.LinkedinAccounts = append(idx.LinkedinAccounts, e.accountRef)
		case models.PlatformPinterest:
			idx.PinterestAccounts = append(idx.PinterestAccounts, e.accountRef)
		case models.PlatformTiktok:
			idx.TiktokAccounts = append(idx.TiktokAccounts, e.accountRef)
		default:
			idx.MetaAccounts = append(idx.MetaAccounts, e.accountRef)
		}
	}
	return idx, nil
}

type fakePostRepo struct {
	posts  map[int64]*models.Post
	nextID int64
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*models.Post), nextID: 1}
}

func (f *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	post.ID = f.nextID
	f.nextID++
	f.posts[post.ID] = post
	return post.ID, nil
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return f.posts[id], nil
}

func (f *fakePostRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range f.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostRepo) UpdateStatus(ctx context.Context, postID int64, status, platformPostID, errorMessage string, publishedAt time.Time) error {
	p, ok := f.posts[postID]
	if !ok {
		return nil
	}
	p.Status = status
	if platformPostID != "" {
		p.PlatformPostID = platformPostID
	}
	p.ErrorMessage = errorMessage
	if !publishedAt.IsZero() {
		p.PublishedAt = publishedAt
	}
	return nil
}

func (f *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	p, ok := f.posts[postID]
	return ok && p.UserID == userID, nil
}

func (f *fakePostRepo) Remove(ctx context.Context, id int64) error {
	delete(f.posts, id)
	return nil
}
