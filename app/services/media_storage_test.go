package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanObjectKey(t *testing.T) {
	tests := []struct {
		key      string
		expected string
		valid    bool
	}{
		{key: "2026/05/01/a.jpg", expected: "2026/05/01/a.jpg", valid: true},
		{key: "2026//05/./01/a.jpg", expected: "2026/05/01/a.jpg", valid: true},
		{key: "2026\\05\\a.jpg", expected: "2026/05/a.jpg", valid: true},
		{key: "", valid: false},
		{key: "/etc/passwd", valid: false},
		{key: "../secrets.txt", valid: false},
		{key: "2026/../../x", valid: false},
		{key: "..", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := CleanObjectKey(tt.key)
			if !tt.valid {
				assert.ErrorIs(t, err, ErrInvalidObjectKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLocalMediaStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	storage, err := NewLocalMediaStorage(dir, "https://clinic.uz/")
	require.NoError(t, err)
	assert.Equal(t, MediaBackendLocal, storage.Backend())

	url, err := storage.Put(ctx, "2026/05/01/photo.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://clinic.uz/uploads/2026/05/01/photo.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "2026", "05", "01", "photo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	_, err = storage.Put(ctx, "../escape.png", []byte("x"), "image/png")
	assert.ErrorIs(t, err, ErrInvalidObjectKey)

	require.NoError(t, storage.Delete(ctx, "2026/05/01/photo.png"))
	_, err = os.Stat(filepath.Join(dir, "2026", "05", "01", "photo.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting a missing object is not an error
	require.NoError(t, storage.Delete(ctx, "2026/05/01/photo.png"))
}

type recordingS3 struct {
	puts    map[string][]byte
	types   map[string]string
	deletes []string
}

func (r *recordingS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	r.puts[*params.Bucket+"/"+*params.Key] = body
	r.types[*params.Key] = *params.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (r *recordingS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	r.deletes = append(r.deletes, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3MediaStorage(t *testing.T) {
	ctx := context.Background()
	client := &recordingS3{puts: map[string][]byte{}, types: map[string]string{}}

	_, err := NewS3MediaStorage(client, S3StorageConfig{})
	assert.Error(t, err)

	storage, err := NewS3MediaStorage(client, S3StorageConfig{
		Bucket:    "clinic-media",
		Region:    "eu-central-1",
		KeyPrefix: "/site/",
	})
	require.NoError(t, err)
	assert.Equal(t, MediaBackendS3, storage.Backend())

	url, err := storage.Put(ctx, "2026/05/01/a.webp", []byte("webp"), "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "https://clinic-media.s3.eu-central-1.amazonaws.com/site/2026/05/01/a.webp", url)
	assert.Equal(t, []byte("webp"), client.puts["clinic-media/site/2026/05/01/a.webp"])
	assert.Equal(t, "image/webp", client.types["site/2026/05/01/a.webp"])

	require.NoError(t, storage.Delete(ctx, "2026/05/01/a.webp"))
	assert.Equal(t, []string{"site/2026/05/01/a.webp"}, client.deletes)

	_, err = storage.Put(ctx, "/abs.png", nil, "image/png")
	assert.ErrorIs(t, err, ErrInvalidObjectKey)
}
