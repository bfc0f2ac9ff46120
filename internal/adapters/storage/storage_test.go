package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viralforge/brandhub/internal/domain"
	"github.com/viralforge/brandhub/internal/ports"
)

func pngUpload(field string, body string) ports.FileUpload {
	return ports.FileUpload{
		Field:        field,
		OriginalName: "front.PNG",
		ContentType:  "image/png",
		Size:         int64(len(body)),
		Body:         strings.NewReader(body),
	}
}

func TestLocalStoreSaveOpenDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, 0)
	require.NoError(t, err)
	ctx := context.Background()

	stored, err := store.Save(ctx, pngUpload("productImage", "png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Path, "/uploads/productImage/"))
	assert.True(t, strings.HasSuffix(stored.Path, ".png"))

	onDisk, err := os.ReadFile(filepath.Join(root, "productImage", stored.Filename))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(onDisk))

	rc, contentType, err := store.Open(ctx, stored.Path)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, store.Delete(ctx, stored.Path))
	require.NoError(t, store.Delete(ctx, stored.Path), "deleting twice is fine")
	_, _, err = store.Open(ctx, stored.Path)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalStoreRejectsBadUploads(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), 4)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Save(ctx, pngUpload("logo", "too-large"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	exe := pngUpload("logo", "ok")
	exe.OriginalName = "run.exe"
	_, err = store.Save(ctx, exe)
	assert.ErrorIs(t, err, domain.ErrValidation)

	lying := pngUpload("logo", "12345678")
	lying.Size = 1
	_, err = store.Save(ctx, lying)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.ErrorIs(t, store.Delete(ctx, "/uploads/../etc/passwd"), domain.ErrValidation)
	_, _, err = store.Open(ctx, "/uploads/logo/../../secret")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: aws.String(f.types[aws.ToString(in.Key)]),
	}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StoreUsesUploadKeys(t *testing.T) {
	objects := &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
	store := newS3Store(objects, "brandhub", 0)
	ctx := context.Background()

	stored, err := store.Save(ctx, pngUpload("logo", "logo-bytes"))
	require.NoError(t, err)
	key := strings.TrimPrefix(stored.Path, "/")
	assert.True(t, strings.HasPrefix(key, "uploads/logo/"))
	assert.Equal(t, "logo-bytes", string(objects.objects[key]))
	assert.Equal(t, "image/png", objects.types[key])

	rc, contentType, err := store.Open(ctx, stored.Path)
	require.NoError(t, err)
	_ = rc.Close()
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, store.Delete(ctx, stored.Path))
	_, _, err = store.Open(ctx, stored.Path)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
