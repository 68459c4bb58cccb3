package handlers

import (
	"github.com/amirphl/dental-clinic/app/dto"
	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/gofiber/fiber/v3"
)

// SettingsHandler serves the key/value settings store and its presets
type SettingsHandler struct {
	baseHandler
	flow businessflow.SettingsFlow
}

func NewSettingsHandler(flow businessflow.SettingsFlow, log logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		baseHandler: newBaseHandler(log, "settings_handler"),
		flow:        flow,
	}
}

// List returns every stored setting
// @Summary List settings
// @Tags Settings
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.SettingDTO} "Settings"
// @Router /api/settings [get]
func (h *SettingsHandler) List(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "/api/settings")
	defer cancel()

	settings, err := h.flow.List(ctx)
	if err != nil {
		return h.HandleError(c, err, "Failed to list settings")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Settings retrieved", settings)
}

// SiteSettings returns the typed site settings with defaults applied
// @Summary Typed site settings
// @Description Every schema key with its stored value, or its default when missing or stored with the wrong type.
// @Tags Settings
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SiteSettingsResponse} "Site settings"
// @Router /api/settings/site [get]
func (h *SettingsHandler) SiteSettings(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "/api/settings/site")
	defer cancel()

	resp, err := h.flow.GetSiteSettings(ctx)
	if err != nil {
		return h.HandleError(c, err, "Failed to load site settings")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Site settings retrieved", resp)
}

// Get returns one setting
// @Summary Get setting
// @Tags Settings
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} dto.APIResponse{data=dto.SettingDTO} "Setting"
// @Failure 404 {object} dto.APIResponse "Setting not found"
// @Router /api/settings/{key} [get]
func (h *SettingsHandler) Get(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "/api/settings/:key")
	defer cancel()

	setting, err := h.flow.Get(ctx, c.Params("key"))
	if err != nil {
		return h.HandleError(c, err, "Failed to load setting")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Setting retrieved", setting)
}

// Upsert creates or replaces one setting
// @Summary Upsert setting
// @Description Known site setting keys are type checked.
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Param request body dto.UpsertSettingRequest true "JSON value"
// @Success 200 {object} dto.APIResponse{data=dto.SettingDTO} "Setting saved"
// @Failure 400 {object} dto.APIResponse "Invalid key or value"
// @Router /api/settings/{key} [put]
func (h *SettingsHandler) Upsert(c fiber.Ctx) error {
	var req dto.UpsertSettingRequest
	if ok, err := h.decode(c, &req); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/settings/:key")
	defer cancel()

	setting, err := h.flow.Upsert(ctx, c.Params("key"), req.Value)
	if err != nil {
		return h.HandleError(c, err, "Failed to save setting")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Setting saved", setting)
}

// BulkUpsert saves many settings in one transaction
// @Summary Bulk upsert settings
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body []dto.BulkSettingItem true "Settings"
// @Success 200 {object} dto.APIResponse{data=dto.BulkUpsertSettingsResponse} "Settings saved"
// @Failure 400 {object} dto.APIResponse "Invalid key or value"
// @Router /api/settings/bulk [post]
func (h *SettingsHandler) BulkUpsert(c fiber.Ctx) error {
	var items []dto.BulkSettingItem
	if err := c.Bind().JSON(&items); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	for i := range items {
		if ok, err := h.validate(c, &items[i]); !ok {
			return err
		}
	}

	ctx, cancel := h.requestContext(c, "/api/settings/bulk")
	defer cancel()

	resp, err := h.flow.BulkUpsert(ctx, items)
	if err != nil {
		return h.HandleError(c, err, "Failed to save settings")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Settings saved", resp)
}

// Delete removes one setting
// @Summary Delete setting
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Success 200 {object} dto.APIResponse "Setting deleted"
// @Failure 404 {object} dto.APIResponse "Setting not found"
// @Router /api/settings/{key} [delete]
func (h *SettingsHandler) Delete(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "/api/settings/:key")
	defer cancel()

	if err := h.flow.Delete(ctx, c.Params("key")); err != nil {
		return h.HandleError(c, err, "Failed to delete setting")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Setting deleted", nil)
}

// ListPresets returns every settings preset
// @Summary List settings presets
// @Tags Settings Presets
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.SettingPresetDTO} "Presets"
// @Router /api/settings/presets [get]
func (h *SettingsHandler) ListPresets(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "/api/settings/presets")
	defer cancel()

	presets, err := h.flow.ListPresets(ctx)
	if err != nil {
		return h.HandleError(c, err, "Failed to list presets")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Presets retrieved", presets)
}

// CreatePreset snapshots all current settings
// @Summary Create settings preset
// @Tags Settings Presets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSettingPresetRequest true "Preset name"
// @Success 201 {object} dto.APIResponse{data=dto.SettingPresetDTO} "Preset created"
// @Failure 409 {object} dto.APIResponse "Name already used"
// @Router /api/settings/presets [post]
func (h *SettingsHandler) CreatePreset(c fiber.Ctx) error {
	var req dto.CreateSettingPresetRequest
	if ok, err := h.decode(c, &req); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/settings/presets")
	defer cancel()

	preset, err := h.flow.CreatePreset(ctx, &req)
	if err != nil {
		return h.HandleError(c, err, "Failed to create preset")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Preset created", preset)
}

// ApplyPreset restores the settings of a preset
// @Summary Apply settings preset
// @Description Upserts every key of the snapshot and deletes keys the snapshot does not contain, in one transaction.
// @Tags Settings Presets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Preset ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplySettingPresetResponse} "Preset applied"
// @Failure 404 {object} dto.APIResponse "Preset not found"
// @Router /api/settings/presets/{id}/apply [post]
func (h *SettingsHandler) ApplyPreset(c fiber.Ctx) error {
	id, ok, err := h.idParam(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/settings/presets/:id/apply")
	defer cancel()

	resp, err := h.flow.ApplyPreset(ctx, id)
	if err != nil {
		return h.HandleError(c, err, "Failed to apply preset")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Preset applied", resp)
}

// DeletePreset removes a preset
// @Summary Delete settings preset
// @Tags Settings Presets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Preset ID"
// @Success 200 {object} dto.APIResponse "Preset deleted"
// @Failure 404 {object} dto.APIResponse "Preset not found"
// @Router /api/settings/presets/{id} [delete]
func (h *SettingsHandler) DeletePreset(c fiber.Ctx) error {
	id, ok, err := h.idParam(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/settings/presets/:id")
	defer cancel()

	if err := h.flow.DeletePreset(ctx, id); err != nil {
		return h.HandleError(c, err, "Failed to delete preset")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Preset deleted", nil)
}
