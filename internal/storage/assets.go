// Package storage implements the binary-asset store over MinIO/S3: folktale
// images, optional narration audio, and profile images are uploaded here and
// referenced by URL from the entities.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/legendsansar/legendsansar/internal/config"
	"github.com/legendsansar/legendsansar/pkg/utils"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Folders group the uploaded objects by purpose.
const (
	FolderFolktales    = "folktales"
	FolderAudio        = "folktales_audio"
	FolderUserProfiles = "user_profiles"
)

// MaxUploadSize limits a single uploaded file to 10 MB.
const MaxUploadSize = 10 * 1024 * 1024

// AssetStore uploads binary assets and hands back retrievable URLs.
type AssetStore struct {
	cfg    *config.Config
	client *mclient.Client
}

// NewAssetStore initializes the MinIO client and ensures the bucket exists.
func NewAssetStore(ctx context.Context, cfg *config.Config) (*AssetStore, error) {
	endpoint := cfg.S3Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to initialize asset store")
	}

	exists, err := client.BucketExists(ctx, cfg.S3Bucket)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to check asset bucket")
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.S3Bucket, mclient.MakeBucketOptions{}); err != nil {
			return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create asset bucket")
		}
	}

	return &AssetStore{cfg: cfg, client: client}, nil
}

// ImageContentType reports whether the content type is an accepted image.
func ImageContentType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	}
	return false
}

// AudioContentType reports whether the content type is accepted audio.
func AudioContentType(contentType string) bool {
	switch contentType {
	case "audio/mp3", "audio/mpeg":
		return true
	}
	return false
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "audio/mp3", "audio/mpeg":
		return ".mp3"
	}
	return ""
}

// Upload stores the object under "<folder>/<uuid><ext>" and returns its
// public URL.
func (s *AssetStore) Upload(ctx context.Context, folder, contentType string, r io.Reader, size int64) (string, error) {
	if size <= 0 || size > MaxUploadSize {
		return "", utils.NewError(utils.ErrBadRequest.Code, "File exceeds the 10MB upload limit")
	}

	key := path.Join(folder, uuid.NewString()+extensionFor(contentType))

	_, err := s.client.PutObject(ctx, s.cfg.S3Bucket, key, r, size, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to upload file")
	}

	return s.publicURL(key), nil
}

func (s *AssetStore) publicURL(key string) string {
	base := strings.TrimSuffix(s.cfg.S3PublicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if strings.HasPrefix(s.cfg.S3Endpoint, "https://") {
			scheme = "https"
		}
		host := strings.TrimPrefix(strings.TrimPrefix(s.cfg.S3Endpoint, "https://"), "http://")
		base = fmt.Sprintf("%s://%s", scheme, host)
	}
	return fmt.Sprintf("%s/%s/%s", base, s.cfg.S3Bucket, key)
}
