package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	cfg "github.com/anuragdev21/socialbridge/configs"
	"github.com/anuragdev21/socialbridge/internal/models"
	"github.com/anuragdev21/socialbridge/internal/repository"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type MediaService interface {
	Upload(ctx context.Context, userID int64, file *multipart.FileHeader) (*models.MediaAsset, error)
	PresignUpload(ctx context.Context, userID int64, fileName, contentType string) (string, string, error)
	List(ctx context.Context, userID int64) ([]*models.MediaAsset, error)
}

type mediaService struct {
	cfg cfg.Config
	ma  repository.MediaAssetRepository
	r2  *R2Service
}

func NewMediaService(cfg cfg.Config, ma repository.MediaAssetRepository, r2 *R2Service) MediaService {
	return &mediaService{
		cfg: cfg,
		ma:  ma,
		r2:  r2,
	}
}

var allowedMediaTypes = map[string]struct{}{
	"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {}, "webp": {}, "gif": {},
}

// Upload sniffs the file's real type from its bytes, stores it in R2 under a
// random key, and records the asset. The declared Content-Type header is
// never trusted.
func (s *mediaService) Upload(ctx context.Context, userID int64, file *multipart.FileHeader) (*models.MediaAsset, error) {
	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return nil, fmt.Errorf("unsupported file type: %w", err)
	}
	if _, ok := allowedMediaTypes[fileType.Extension]; !ok {
		return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err := s.r2.UploadToR2(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	asset := &models.MediaAsset{
		UserID:   userID,
		FileName: file.Filename,
		FileType: fileType.MIME.Value,
		FileSize: int64(len(fileBytes)),
		FileURL:  fmt.Sprintf("%s/%s", s.cfg.R2.PublicURL, key),
	}

	asset.ID, err = s.ma.Create(ctx, nil, asset)
	if err != nil {
		return nil, err
	}

	return asset, nil
}

// PresignUpload hands out a direct PUT URL plus the public URL the file will
// have once uploaded. The asset row is created up front so the post composer
// can reference it immediately.
func (s *mediaService) PresignUpload(ctx context.Context, userID int64, fileName, contentType string) (string, string, error) {
	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", "", err
	}

	uploadURL, err := s.r2.PresignPutURL(ctx, key, contentType, 15*time.Minute)
	if err != nil {
		return "", "", err
	}

	publicURL := fmt.Sprintf("%s/%s", s.cfg.R2.PublicURL, key)

	asset := &models.MediaAsset{
		UserID:   userID,
		FileName: fileName,
		FileType: contentType,
		FileURL:  publicURL,
	}
	if _, err := s.ma.Create(ctx, nil, asset); err != nil {
		return "", "", err
	}

	return uploadURL, publicURL, nil
}

func (s *mediaService) List(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	assets, err := s.ma.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing media assets: %w", err)
	}
	return assets, nil
}
