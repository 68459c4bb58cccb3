package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/app/services"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	defaultMaxUploadBytes = int64(10 * 1024 * 1024)
	defaultMaxImageWidth  = 1920
	jpegQuality           = 85
)

// allowedImageExts maps an accepted extension to the content type its bytes must sniff as
var allowedImageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MediaFlow stores images uploaded from the admin panel
type MediaFlow interface {
	Upload(ctx context.Context, req *dto.UploadMediaRequest) (*dto.UploadMediaResponse, error)
}

// MediaFlowImpl implements MediaFlow
type MediaFlowImpl struct {
	mediaRepo repository.MediaAssetRepository
	storage   services.MediaStorage
	maxBytes  int64
	maxWidth  int
	now       func() time.Time
	log       logger.Logger
}

// NewMediaFlow creates a new media flow. Images wider than maxWidth are scaled down.
func NewMediaFlow(mediaRepo repository.MediaAssetRepository, storage services.MediaStorage, maxBytes int64, maxWidth int, log logger.Logger) MediaFlow {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	if maxWidth <= 0 {
		maxWidth = defaultMaxImageWidth
	}
	if log == nil {
		log = logger.Nop()
	}
	return &MediaFlowImpl{
		mediaRepo: mediaRepo,
		storage:   storage,
		maxBytes:  maxBytes,
		maxWidth:  maxWidth,
		now:       utils.UTCNow,
		log:       log.With("component", "media"),
	}
}

func (f *MediaFlowImpl) Upload(ctx context.Context, req *dto.UploadMediaRequest) (*dto.UploadMediaResponse, error) {
	if req == nil || req.File == nil {
		return nil, NewBusinessError("FILE_REQUIRED", "file is required", ErrFileRequired)
	}
	if req.FileSize > f.maxBytes {
		return nil, NewBusinessErrorf("FILE_TOO_LARGE", "file exceeds %d bytes", ErrFileTooLarge, f.maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(req.OriginalFilename))
	expectedType, ok := allowedImageExts[ext]
	if !ok {
		return nil, NewBusinessError("UNSUPPORTED_FILE_TYPE", "allowed file types: jpg, jpeg, png, webp, gif", ErrUnsupportedFileType)
	}

	data, err := io.ReadAll(io.LimitReader(req.File, f.maxBytes+1))
	if err != nil {
		return nil, NewBusinessError("FILE_READ_FAILED", "failed to read upload", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, NewBusinessErrorf("FILE_TOO_LARGE", "file exceeds %d bytes", ErrFileTooLarge, f.maxBytes)
	}
	if len(data) == 0 {
		return nil, NewBusinessError("FILE_REQUIRED", "file is empty", ErrFileRequired)
	}

	sniffed := http.DetectContentType(data)
	if sniffed != expectedType {
		return nil, NewBusinessErrorf("FILE_CONTENT_MISMATCH", "file content is %s, expected %s", ErrFileContentMismatch, sniffed, expectedType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, NewBusinessError("FILE_CONTENT_MISMATCH", "file is not a readable image", ErrFileContentMismatch)
	}
	width, height := cfg.Width, cfg.Height

	resized := false
	if width > f.maxWidth && (expectedType == "image/jpeg" || expectedType == "image/png") {
		out, w, h, err := downscale(data, expectedType, f.maxWidth)
		if err != nil {
			return nil, NewBusinessError("IMAGE_RESIZE_FAILED", "failed to resize image", err)
		}
		data, width, height, resized = out, w, h, true
	}

	now := f.now()
	id := uuid.New()
	objectKey := fmt.Sprintf("%s/%s%s", now.Format("2006/01/02"), id.String(), ext)

	url, err := f.storage.Put(ctx, objectKey, data, expectedType)
	if err != nil {
		return nil, NewBusinessError("UPLOAD_STORE_FAILED", "failed to store upload", err)
	}

	var uploader *uint
	if req.AdminID != 0 {
		uploader = utils.ToPtr(req.AdminID)
	}
	asset := &models.MediaAsset{
		UUID:              id,
		UploadedByAdminID: uploader,
		OriginalFilename:  filepath.Base(req.OriginalFilename),
		StoredPath:        objectKey,
		URL:               url,
		Backend:           f.storage.Backend(),
		SizeBytes:         int64(len(data)),
		MimeType:          expectedType,
		Width:             width,
		Height:            height,
		CreatedAt:         now,
	}
	if err := f.mediaRepo.Save(ctx, asset); err != nil {
		if delErr := f.storage.Delete(detach(ctx), objectKey); delErr != nil {
			f.log.Error("failed to remove orphaned upload", "key", objectKey, "error", delErr)
		}
		return nil, NewBusinessError("UPLOAD_SAVE_FAILED", "failed to save upload", err)
	}

	f.log.Info("media uploaded", "uuid", id.String(), "backend", asset.Backend, "bytes", asset.SizeBytes, "resized", resized)
	return &dto.UploadMediaResponse{
		UUID:             id.String(),
		URL:              url,
		OriginalFilename: asset.OriginalFilename,
		MimeType:         asset.MimeType,
		SizeBytes:        asset.SizeBytes,
		Width:            width,
		Height:           height,
		Resized:          resized,
		CreatedAt:        formatTime(now),
	}, nil
}

// downscale re-encodes a jpeg or png at maxWidth keeping the aspect ratio
func downscale(data []byte, contentType string, maxWidth int) ([]byte, int, int, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, err
	}
	b := src.Bounds()
	w := maxWidth
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)

	var buf bytes.Buffer
	switch contentType {
	case "image/png":
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, 0, 0, err
	}
	return buf.Bytes(), w, h, nil
}
