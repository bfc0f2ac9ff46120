package ports

import (
	"context"
	"io"
)

// Mailer delivers the account emails. Failures wrap domain.ErrEmailDeliveryFailed.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string) error
	SendPasswordReset(ctx context.Context, to, rawToken string) error
}

// FileUpload is one multipart file handed to the file store.
type FileUpload struct {
	Field        string
	OriginalName string
	ContentType  string
	Size         int64
	Body         io.Reader
}

// StoredFile is where an upload ended up. Path is the public relative path.
type StoredFile struct {
	Path     string
	Filename string
}

type FileStore interface {
	Save(ctx context.Context, upload FileUpload) (StoredFile, error)
	Delete(ctx context.Context, path string) error
}
