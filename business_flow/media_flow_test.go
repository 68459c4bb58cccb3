package businessflow

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"strings"
	"testing"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/app/services"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	testingutil "github.com/amirphl/dental-clinic/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, G: 30, B: 30, A: 255})
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), nil))
	return buf.Bytes()
}

func TestMediaFlowUpload(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		baseDir := t.TempDir()
		storage, err := services.NewLocalMediaStorage(baseDir, "https://clinic.example")
		require.NoError(t, err)
		repo := repository.NewMediaAssetRepository(testDB.DB)
		flow := NewMediaFlow(repo, storage, 1<<20, 600, logger.Nop())
		ctx := testingutil.CreateTestContext()

		t.Run("wide png is scaled down", func(t *testing.T) {
			data := encodePNG(t, 1200, 600)
			resp, err := flow.Upload(ctx, &dto.UploadMediaRequest{
				File:             bytes.NewReader(data),
				OriginalFilename: "Smile.PNG",
				FileSize:         int64(len(data)),
			})
			require.NoError(t, err)
			assert.True(t, resp.Resized)
			assert.Equal(t, 600, resp.Width)
			assert.Equal(t, 300, resp.Height)
			assert.Equal(t, "image/png", resp.MimeType)
			assert.True(t, strings.HasPrefix(resp.URL, "https://clinic.example/uploads/"))
			assert.True(t, strings.HasSuffix(resp.URL, ".png"))

			key := strings.TrimPrefix(resp.URL, "https://clinic.example/uploads/")
			path, err := storage.ResolvePath(key)
			require.NoError(t, err)
			stored, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, resp.SizeBytes, int64(len(stored)))

			assets, err := repo.ByFilter(ctx, models.MediaAssetFilter{}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, assets, 1)
			assert.Equal(t, services.MediaBackendLocal, assets[0].Backend)
			assert.Equal(t, key, assets[0].StoredPath)
		})

		t.Run("small jpeg is kept as is", func(t *testing.T) {
			data := encodeJPEG(t, 320, 200)
			resp, err := flow.Upload(ctx, &dto.UploadMediaRequest{
				File:             bytes.NewReader(data),
				OriginalFilename: "doctor.jpg",
				AdminID:          0,
			})
			require.NoError(t, err)
			assert.False(t, resp.Resized)
			assert.Equal(t, 320, resp.Width)
			assert.Equal(t, int64(len(data)), resp.SizeBytes)
		})

		t.Run("rejections", func(t *testing.T) {
			_, err := flow.Upload(ctx, &dto.UploadMediaRequest{OriginalFilename: "a.png"})
			assert.ErrorIs(t, err, ErrFileRequired)

			_, err = flow.Upload(ctx, &dto.UploadMediaRequest{File: strings.NewReader("x"), OriginalFilename: "notes.pdf"})
			assert.ErrorIs(t, err, ErrUnsupportedFileType)

			jpg := encodeJPEG(t, 10, 10)
			_, err = flow.Upload(ctx, &dto.UploadMediaRequest{File: bytes.NewReader(jpg), OriginalFilename: "fake.png"})
			assert.ErrorIs(t, err, ErrFileContentMismatch)
			assert.True(t, IsUnsupportedFileType(err))

			_, err = flow.Upload(ctx, &dto.UploadMediaRequest{File: strings.NewReader("<html></html>"), OriginalFilename: "x.gif"})
			assert.ErrorIs(t, err, ErrFileContentMismatch)

			_, err = flow.Upload(ctx, &dto.UploadMediaRequest{File: bytes.NewReader(jpg), OriginalFilename: "big.jpg", FileSize: 2 << 20})
			assert.ErrorIs(t, err, ErrFileTooLarge)

			tiny := NewMediaFlow(repo, storage, 16, 600, nil)
			_, err = tiny.Upload(ctx, &dto.UploadMediaRequest{File: bytes.NewReader(jpg), OriginalFilename: "big.jpg"})
			assert.True(t, IsFileTooLarge(err))
		})

		return nil
	})
	require.NoError(t, err)
}
