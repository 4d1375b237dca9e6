package service

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
	"github.com/noah-isme/roadsafety-api/pkg/storage"
)

// Media folders under the upload directory.
const (
	complaintImageFolder = "complaint_images"
	updateImageFolder    = "update_images"
)

type mediaStore interface {
	Save(folder, contentType string, r io.Reader) (string, error)
	Open(rel string) (*os.File, error)
	Delete(rel string) error
}

type mediaSigner interface {
	Sign(relPath string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// MediaService stores uploaded images and hands out signed links to them.
type MediaService struct {
	store   mediaStore
	signer  mediaSigner
	policy  storage.UploadPolicy
	baseURL string
	logger  *zap.Logger
}

// NewMediaService constructs a MediaService. baseURL is the path prefix
// signed tokens are appended to, for example /api/v1/media.
func NewMediaService(store mediaStore, signer mediaSigner, policy storage.UploadPolicy, baseURL string, logger *zap.Logger) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaService{store: store, signer: signer, policy: policy, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Store validates and saves an optional upload. A nil upload stores nothing.
func (s *MediaService) Store(folder string, upload *dto.FileUpload) (*string, error) {
	if upload == nil || upload.Body == nil {
		return nil, nil
	}
	body, contentType, err := s.policy.Check(upload.Body, upload.Size)
	if err != nil {
		return nil, mapUploadError(err)
	}
	rel, err := s.store.Save(folder, contentType, body)
	if err != nil {
		return nil, mapUploadError(err)
	}
	return &rel, nil
}

// Discard removes a stored file after the owning write failed.
func (s *MediaService) Discard(rel *string) {
	if rel == nil || *rel == "" {
		return
	}
	if err := s.store.Delete(*rel); err != nil {
		s.logger.Warn("failed to discard media file", zap.String("path", *rel), zap.Error(err))
	}
}

// URL returns a signed link for a stored path, or "" when there is none.
func (s *MediaService) URL(rel *string) string {
	if s == nil || rel == nil || *rel == "" {
		return ""
	}
	token, _, err := s.signer.Sign(*rel)
	if err != nil {
		s.logger.Warn("failed to sign media url", zap.String("path", *rel), zap.Error(err))
		return ""
	}
	return s.baseURL + "/" + token
}

// Open resolves a signed token to the stored file.
func (s *MediaService) Open(token string) (*os.File, error) {
	rel, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrExpiredToken) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "media link has expired")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "media not found")
	}
	file, err := s.store.Open(rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrOutsideBase) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "media not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open media")
	}
	return file, nil
}

func mapUploadError(err error) error {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return appErrors.Clone(appErrors.ErrPayloadTooLarge, "image exceeds the upload size limit")
	case errors.Is(err, storage.ErrUnsupportedType):
		return appErrors.Clone(appErrors.ErrUnsupportedMedia, "image type is not supported")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store image")
	}
}
