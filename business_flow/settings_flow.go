package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	"github.com/amirphl/dental-clinic/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxSettingKeyLength = 128

// SettingsFlow manages the key/value settings store and its presets
type SettingsFlow interface {
	List(ctx context.Context) ([]dto.SettingDTO, error)
	GetSiteSettings(ctx context.Context) (*dto.SiteSettingsResponse, error)
	Get(ctx context.Context, key string) (*dto.SettingDTO, error)
	Upsert(ctx context.Context, key string, value json.RawMessage) (*dto.SettingDTO, error)
	BulkUpsert(ctx context.Context, items []dto.BulkSettingItem) (*dto.BulkUpsertSettingsResponse, error)
	Delete(ctx context.Context, key string) error

	ListPresets(ctx context.Context) ([]dto.SettingPresetDTO, error)
	CreatePreset(ctx context.Context, req *dto.CreateSettingPresetRequest) (*dto.SettingPresetDTO, error)
	ApplyPreset(ctx context.Context, id uint) (*dto.ApplySettingPresetResponse, error)
	DeletePreset(ctx context.Context, id uint) error
}

// SettingsFlowImpl implements SettingsFlow
type SettingsFlowImpl struct {
	settingRepo repository.SettingRepository
	presetRepo  repository.SettingPresetRepository
	db          *gorm.DB
	now         func() time.Time
	log         logger.Logger
}

// NewSettingsFlow creates a new settings flow
func NewSettingsFlow(
	settingRepo repository.SettingRepository,
	presetRepo repository.SettingPresetRepository,
	db *gorm.DB,
	log logger.Logger,
) SettingsFlow {
	if log == nil {
		log = logger.Nop()
	}
	return &SettingsFlowImpl{
		settingRepo: settingRepo,
		presetRepo:  presetRepo,
		db:          db,
		now:         utils.UTCNow,
		log:         log.With("component", "settings"),
	}
}

func (f *SettingsFlowImpl) List(ctx context.Context) ([]dto.SettingDTO, error) {
	rows, err := f.settingRepo.ByFilter(ctx, models.SettingFilter{}, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("SETTINGS_LIST_FAILED", "failed to load settings", err)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	out := make([]dto.SettingDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSettingDTO(row))
	}
	return out, nil
}

// GetSiteSettings returns the typed site settings. Missing keys and values of
// the wrong type fall back to their defaults.
func (f *SettingsFlowImpl) GetSiteSettings(ctx context.Context) (*dto.SiteSettingsResponse, error) {
	keys := SiteSettingKeys()
	rows, err := f.settingRepo.ByFilter(ctx, models.SettingFilter{Keys: keys}, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("SETTINGS_LIST_FAILED", "failed to load settings", err)
	}
	stored := make(map[string][]byte, len(rows))
	for _, row := range rows {
		stored[row.Key] = row.Value
	}

	settings := DefaultSiteSettings()
	fields := siteSettingFields(&settings)
	defaulted := []string{}
	for _, key := range keys {
		raw, ok := stored[key]
		if !ok {
			defaulted = append(defaulted, key)
			continue
		}
		if _, err := checkSiteSettingType(key, raw); err != nil {
			f.log.Warn("stored setting has the wrong type, using default", "key", key, "error", err)
			defaulted = append(defaulted, key)
			continue
		}
		_ = decodeSettingValue(raw, fields[key])
	}

	return &dto.SiteSettingsResponse{Settings: settings, Defaulted: defaulted}, nil
}

func (f *SettingsFlowImpl) Get(ctx context.Context, key string) (*dto.SettingDTO, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, NewBusinessError("SETTING_KEY_REQUIRED", "key is required", ErrSettingKeyRequired)
	}
	row, err := f.settingRepo.ByKey(ctx, key)
	if err != nil {
		return nil, NewBusinessError("SETTING_LOOKUP_FAILED", "failed to load setting", err)
	}
	if row == nil {
		return nil, NewBusinessErrorf("SETTING_NOT_FOUND", "setting %q not found", ErrSettingNotFound, key)
	}
	out := toSettingDTO(row)
	return &out, nil
}

// Upsert creates or overwrites one key. Typed site keys are type checked.
func (f *SettingsFlowImpl) Upsert(ctx context.Context, key string, value json.RawMessage) (*dto.SettingDTO, error) {
	setting, err := f.prepareSetting(key, value)
	if err != nil {
		return nil, err
	}
	if err := f.settingRepo.UpsertMany(ctx, []*models.Setting{setting}); err != nil {
		return nil, NewBusinessError("SETTING_SAVE_FAILED", "failed to save setting", err)
	}
	f.log.Info("setting updated", "key", setting.Key)
	return f.Get(ctx, setting.Key)
}

// BulkUpsert applies every item in one transaction. A later item wins over an
// earlier one with the same key.
func (f *SettingsFlowImpl) BulkUpsert(ctx context.Context, items []dto.BulkSettingItem) (*dto.BulkUpsertSettingsResponse, error) {
	if len(items) == 0 {
		return &dto.BulkUpsertSettingsResponse{Updated: 0}, nil
	}

	byKey := make(map[string]*models.Setting, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		setting, err := f.prepareSetting(item.Key, item.Value)
		if err != nil {
			return nil, err
		}
		if _, seen := byKey[setting.Key]; !seen {
			order = append(order, setting.Key)
		}
		byKey[setting.Key] = setting
	}
	settings := make([]*models.Setting, 0, len(order))
	for _, key := range order {
		settings = append(settings, byKey[key])
	}

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.settingRepo.UpsertMany(txCtx, settings)
	})
	if err != nil {
		return nil, NewBusinessError("SETTINGS_BULK_FAILED", "failed to save settings", err)
	}

	f.log.Info("settings bulk updated", "count", len(settings))
	return &dto.BulkUpsertSettingsResponse{Updated: len(settings)}, nil
}

func (f *SettingsFlowImpl) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return NewBusinessError("SETTING_KEY_REQUIRED", "key is required", ErrSettingKeyRequired)
	}
	deleted, err := f.settingRepo.DeleteByKey(ctx, key)
	if err != nil {
		return NewBusinessError("SETTING_DELETE_FAILED", "failed to delete setting", err)
	}
	if !deleted {
		return NewBusinessErrorf("SETTING_NOT_FOUND", "setting %q not found", ErrSettingNotFound, key)
	}
	f.log.Info("setting deleted", "key", key)
	return nil
}

func (f *SettingsFlowImpl) ListPresets(ctx context.Context) ([]dto.SettingPresetDTO, error) {
	rows, err := f.presetRepo.ByFilter(ctx, models.SettingPresetFilter{}, "created_at DESC, id DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("PRESET_LIST_FAILED", "failed to load presets", err)
	}
	out := make([]dto.SettingPresetDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSettingPresetDTO(row))
	}
	return out, nil
}

// CreatePreset snapshots every current setting under a new name
func (f *SettingsFlowImpl) CreatePreset(ctx context.Context, req *dto.CreateSettingPresetRequest) (*dto.SettingPresetDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewBusinessError("PRESET_NAME_REQUIRED", "name is required", ErrPresetNameRequired)
	}

	existing, err := f.presetRepo.ByName(ctx, name)
	if err != nil {
		return nil, NewBusinessError("PRESET_LOOKUP_FAILED", "failed to check preset name", err)
	}
	if existing != nil {
		return nil, NewBusinessErrorf("PRESET_NAME_EXISTS", "preset %q already exists", ErrPresetNameExists, name)
	}

	rows, err := f.settingRepo.ByFilter(ctx, models.SettingFilter{}, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("PRESET_CREATE_FAILED", "failed to load settings", err)
	}
	snapshot := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		snapshot[row.Key] = json.RawMessage(row.Value)
	}
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return nil, NewBusinessError("PRESET_CREATE_FAILED", "failed to encode snapshot", err)
	}

	preset := &models.SettingPreset{
		Name:        name,
		Description: utils.TrimmedPtr(req.Description),
		Snapshot:    datatypes.JSON(encoded),
	}
	if err := f.presetRepo.Save(ctx, preset); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewBusinessErrorf("PRESET_NAME_EXISTS", "preset %q already exists", ErrPresetNameExists, name)
		}
		return nil, NewBusinessError("PRESET_CREATE_FAILED", "failed to save preset", err)
	}

	f.log.Info("settings preset created", "id", preset.ID, "keys", len(snapshot))
	out := toSettingPresetDTO(preset)
	return &out, nil
}

// ApplyPreset restores the snapshot verbatim: snapshot keys are upserted and
// every other key is removed, in one transaction.
func (f *SettingsFlowImpl) ApplyPreset(ctx context.Context, id uint) (*dto.ApplySettingPresetResponse, error) {
	preset, err := f.getPreset(ctx, id)
	if err != nil {
		return nil, err
	}

	var snapshot map[string]json.RawMessage
	if err := json.Unmarshal(preset.Snapshot, &snapshot); err != nil {
		return nil, NewBusinessError("PRESET_CORRUPT", "preset snapshot cannot be read", err)
	}

	now := f.now()
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	settings := make([]*models.Setting, 0, len(keys))
	for _, key := range keys {
		settings = append(settings, &models.Setting{Key: key, Value: datatypes.JSON(snapshot[key]), UpdatedAt: now})
	}

	var removed int64
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.settingRepo.UpsertMany(txCtx, settings); err != nil {
			return err
		}
		n, err := f.settingRepo.DeleteKeysNotIn(txCtx, keys)
		removed = n
		return err
	})
	if err != nil {
		return nil, NewBusinessError("PRESET_APPLY_FAILED", "failed to apply preset", err)
	}

	f.log.Info("settings preset applied", "id", id, "applied", len(settings), "removed", removed)
	return &dto.ApplySettingPresetResponse{PresetID: id, Applied: len(settings), Removed: removed}, nil
}

func (f *SettingsFlowImpl) DeletePreset(ctx context.Context, id uint) error {
	deleted, err := f.presetRepo.DeleteByID(ctx, id)
	if err != nil {
		return NewBusinessError("PRESET_DELETE_FAILED", "failed to delete preset", err)
	}
	if !deleted {
		return NewBusinessError("PRESET_NOT_FOUND", "settings preset not found", ErrPresetNotFound)
	}
	return nil
}

func (f *SettingsFlowImpl) getPreset(ctx context.Context, id uint) (*models.SettingPreset, error) {
	preset, err := f.presetRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("PRESET_LOOKUP_FAILED", "failed to load preset", err)
	}
	if preset == nil {
		return nil, NewBusinessError("PRESET_NOT_FOUND", "settings preset not found", ErrPresetNotFound)
	}
	return preset, nil
}

func (f *SettingsFlowImpl) prepareSetting(key string, value json.RawMessage) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > maxSettingKeyLength {
		return nil, NewBusinessError("SETTING_KEY_REQUIRED", "key is required and must be at most 128 characters", ErrSettingKeyRequired)
	}
	if len(value) == 0 || !json.Valid(value) {
		return nil, NewBusinessErrorf("INVALID_SETTING_VALUE", "value of %q must be valid JSON", ErrSettingValueInvalid, key)
	}
	if known, err := checkSiteSettingType(key, value); known && err != nil {
		return nil, NewBusinessErrorf("SETTING_TYPE_MISMATCH", "value of %q has the wrong type", ErrSettingTypeMismatch, key)
	}
	return &models.Setting{Key: key, Value: datatypes.JSON(value), UpdatedAt: f.now()}, nil
}

func toSettingDTO(s *models.Setting) dto.SettingDTO {
	return dto.SettingDTO{
		Key:       s.Key,
		Value:     json.RawMessage(s.Value),
		UpdatedAt: formatTime(s.UpdatedAt),
	}
}

func toSettingPresetDTO(p *models.SettingPreset) dto.SettingPresetDTO {
	var snapshot map[string]json.RawMessage
	_ = json.Unmarshal(p.Snapshot, &snapshot)
	return dto.SettingPresetDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		KeyCount:    len(snapshot),
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}
