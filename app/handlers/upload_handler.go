package handlers

import (
	"github.com/amirphl/dental-clinic/app/dto"
	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/gofiber/fiber/v3"
)

// UploadHandler accepts images from the admin panel
type UploadHandler struct {
	baseHandler
	flow businessflow.MediaFlow
}

func NewUploadHandler(flow businessflow.MediaFlow, log logger.Logger) *UploadHandler {
	return &UploadHandler{
		baseHandler: newBaseHandler(log, "upload_handler"),
		flow:        flow,
	}
}

// Upload stores an image and returns its public URL
// @Summary Upload image
// @Description jpg, jpeg, png, webp or gif. The content must match the extension. Wide jpeg and png images are scaled down.
// @Tags Uploads
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 201 {object} dto.APIResponse{data=dto.UploadMediaResponse} "Upload successful"
// @Failure 400 {object} dto.APIResponse "Missing, oversized or unsupported file"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/admin/uploads [post]
func (h *UploadHandler) Upload(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "file is required", "FILE_REQUIRED", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "invalid file", "INVALID_FILE", err.Error())
	}
	defer file.Close()

	ctx, cancel := h.requestContext(c, "/api/admin/uploads")
	defer cancel()

	resp, err := h.flow.Upload(ctx, &dto.UploadMediaRequest{
		AdminID:          adminID(c),
		File:             file,
		OriginalFilename: fileHeader.Filename,
		FileSize:         fileHeader.Size,
	})
	if err != nil {
		return h.HandleError(c, err, "Upload failed")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Upload successful", resp)
}
