package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

// storeUploads writes every file or none of them.
func (s *Service) storeUploads(ctx context.Context, uploads []ports.FileUpload, allowed []domain.UploadField) ([]domain.StoredUpload, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	if s.files == nil {
		return nil, fmt.Errorf("%w: file uploads are not enabled", domain.ErrValidation)
	}
	stored := make([]domain.StoredUpload, 0, len(uploads))
	for _, upload := range uploads {
		field := domain.UploadField(upload.Field)
		if !fieldAllowed(field, allowed) {
			s.discardUploads(ctx, stored)
			return nil, fmt.Errorf("%w: unexpected file field %q", domain.ErrValidation, upload.Field)
		}
		file, err := s.files.Save(ctx, upload)
		if err != nil {
			s.discardUploads(ctx, stored)
			return nil, fmt.Errorf("store %s: %w", upload.Field, err)
		}
		stored = append(stored, domain.StoredUpload{
			Field:        field,
			Path:         file.Path,
			OriginalName: upload.OriginalName,
			MimeType:     upload.ContentType,
			Size:         upload.Size,
		})
	}
	return stored, nil
}

func (s *Service) discardUploads(ctx context.Context, stored []domain.StoredUpload) {
	for _, u := range stored {
		s.removeStoredFile(ctx, u.Path)
	}
}

// removeStoredFile deletes files this service wrote. Paths it did not write
// (external URLs, the placeholder image) are left alone.
func (s *Service) removeStoredFile(ctx context.Context, path string) {
	if s.files == nil || !strings.HasPrefix(path, "/uploads/") {
		return
	}
	if err := s.files.Delete(ctx, path); err != nil {
		s.logWarn(ctx, "remove_file", "failed to remove stored file", "path", path, "error", err)
	}
}

func fieldAllowed(field domain.UploadField, allowed []domain.UploadField) bool {
	for _, a := range allowed {
		if a == field {
			return true
		}
	}
	return false
}

func requireActor(actor domain.Actor) error {
	if actor.Anonymous() {
		return domain.ErrUnauthorized
	}
	return nil
}
