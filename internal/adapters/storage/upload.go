package storage

import (
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

// DefaultMaxUploadSize is the per-file limit applied when none is configured.
const DefaultMaxUploadSize int64 = 5 << 20

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".pdf": true, ".ppt": true, ".pptx": true, ".doc": true, ".docx": true,
}

// readUpload checks the file type and reads at most maxSize bytes of the
// body. It returns the public path the file will live under.
func readUpload(upload ports.FileUpload, maxSize int64) (string, []byte, error) {
	if upload.Body == nil {
		return "", nil, fmt.Errorf("%w: %s: empty file", domain.ErrValidation, upload.Field)
	}
	ext := strings.ToLower(filepath.Ext(upload.OriginalName))
	if !allowedExtensions[ext] {
		return "", nil, fmt.Errorf("%w: %s: file type %q is not allowed", domain.ErrValidation, upload.Field, ext)
	}
	if upload.Size > maxSize {
		return "", nil, fmt.Errorf("%w: %s: file exceeds %d bytes", domain.ErrValidation, upload.Field, maxSize)
	}
	data, err := io.ReadAll(io.LimitReader(upload.Body, maxSize+1))
	if err != nil {
		return "", nil, fmt.Errorf("read upload %s: %w", upload.Field, err)
	}
	if int64(len(data)) > maxSize {
		return "", nil, fmt.Errorf("%w: %s: file exceeds %d bytes", domain.ErrValidation, upload.Field, maxSize)
	}
	name := uuid.NewString() + ext
	return domain.UploadPath(domain.UploadField(upload.Field), name), data, nil
}

// validPublicPath reports whether p is a path this package handed out.
func validPublicPath(p string) bool {
	if !strings.HasPrefix(p, "/uploads/") {
		return false
	}
	clean := path.Clean(p)
	return clean == p && strings.Count(clean, "/") == 3
}

func contentTypeFor(p, declared string) string {
	if declared != "" {
		return declared
	}
	if t := mime.TypeByExtension(path.Ext(p)); t != "" {
		return t
	}
	return "application/octet-stream"
}
