package businessflow

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:embed seed/defaults.yaml
var defaultSeedYAML []byte

// SeedDocument is the layout of the embedded defaults file
type SeedDocument struct {
	Settings           map[string]any   `yaml:"settings"`
	Doctors            []map[string]any `yaml:"doctors"`
	Reviews            []map[string]any `yaml:"reviews"`
	FAQs               []map[string]any `yaml:"faqs"`
	Services           []map[string]any `yaml:"services"`
	PillSections       []map[string]any `yaml:"pill_sections"`
	ValueStackingItems []map[string]any `yaml:"value_stacking_items"`
	SectionBackgrounds []map[string]any `yaml:"section_backgrounds"`
	FinalCTA           []map[string]any `yaml:"final_cta"`
}

// ParseSeedDocument decodes a defaults file
func ParseSeedDocument(data []byte) (*SeedDocument, error) {
	var doc SeedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed document: %w", err)
	}
	return &doc, nil
}

// SeedConfig holds the bootstrap accounts. Empty credentials skip the account.
type SeedConfig struct {
	AdminEmail     string
	AdminPassword  string
	AdminFullName  string
	CRMUsername    string
	CRMPassword    string
	CRMDisplayName string
	BcryptCost     int
}

// SeedReport describes what a seed run inserted
type SeedReport struct {
	AdminCreated     bool
	CRMUserCreated   bool
	SettingsInserted []string
	ContentInserted  map[string]int
}

// SeedFlow inserts the bootstrap data. Running it twice inserts nothing new.
type SeedFlow interface {
	Seed(ctx context.Context) (*SeedReport, error)
}

// SeedFlowImpl implements SeedFlow
type SeedFlowImpl struct {
	db       *gorm.DB
	cfg      SeedConfig
	doc      []byte
	validate *validator.Validate
	log      logger.Logger
}

// NewSeedFlow creates a seed flow over the embedded defaults
func NewSeedFlow(db *gorm.DB, cfg SeedConfig, log logger.Logger) SeedFlow {
	return NewSeedFlowWithDocument(db, cfg, defaultSeedYAML, log)
}

// NewSeedFlowWithDocument creates a seed flow over a custom defaults file
func NewSeedFlowWithDocument(db *gorm.DB, cfg SeedConfig, document []byte, log logger.Logger) SeedFlow {
	if log == nil {
		log = logger.Nop()
	}
	return &SeedFlowImpl{
		db:       db,
		cfg:      cfg,
		doc:      document,
		validate: validator.New(),
		log:      log.With("component", "seed"),
	}
}

func (f *SeedFlowImpl) Seed(ctx context.Context) (*SeedReport, error) {
	doc, err := ParseSeedDocument(f.doc)
	if err != nil {
		return nil, err
	}

	report := &SeedReport{ContentInserted: map[string]int{}}
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if report.AdminCreated, err = f.seedAdmin(txCtx); err != nil {
			return err
		}
		if report.CRMUserCreated, err = f.seedCRMUser(txCtx); err != nil {
			return err
		}
		if report.SettingsInserted, err = f.seedSettings(txCtx, doc.Settings); err != nil {
			return err
		}
		return f.seedContent(txCtx, doc, report.ContentInserted)
	})
	if err != nil {
		return nil, err
	}

	f.log.Info("seed finished",
		"admin_created", report.AdminCreated,
		"crm_user_created", report.CRMUserCreated,
		"settings_inserted", len(report.SettingsInserted),
		"content_inserted", report.ContentInserted,
	)
	return report, nil
}

func (f *SeedFlowImpl) seedAdmin(ctx context.Context) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(f.cfg.AdminEmail))
	if email == "" || f.cfg.AdminPassword == "" {
		return false, nil
	}
	repo := repository.NewAdminRepository(f.db)
	existing, err := repo.ByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := HashPassword(f.cfg.AdminPassword, f.cfg.BcryptCost)
	if err != nil {
		return false, err
	}
	admin := &models.Admin{
		Email:        email,
		PasswordHash: hash,
		FullName:     utils.TrimmedPtr(&f.cfg.AdminFullName),
		IsActive:     utils.ToPtr(true),
	}
	if err := repo.Save(ctx, admin); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}

func (f *SeedFlowImpl) seedCRMUser(ctx context.Context) (bool, error) {
	username := strings.TrimSpace(f.cfg.CRMUsername)
	if username == "" || f.cfg.CRMPassword == "" {
		return false, nil
	}
	repo := repository.NewCRMUserRepository(f.db)
	existing, err := repo.ByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to look up CRM user: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := HashPassword(f.cfg.CRMPassword, f.cfg.BcryptCost)
	if err != nil {
		return false, err
	}
	user := &models.CRMUser{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  utils.TrimmedPtr(&f.cfg.CRMDisplayName),
		IsActive:     utils.ToPtr(true),
	}
	if err := repo.Save(ctx, user); err != nil {
		return false, fmt.Errorf("failed to create CRM user: %w", err)
	}
	return true, nil
}

// seedSettings inserts the document settings plus every schema default the
// document does not name. Stored keys keep their value.
func (f *SeedFlowImpl) seedSettings(ctx context.Context, values map[string]any) ([]string, error) {
	candidates := make(map[string]json.RawMessage, len(values))
	defaults := DefaultSiteSettings()
	for key, field := range siteSettingFields(&defaults) {
		raw, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		if string(raw) == "null" {
			continue
		}
		candidates[key] = raw
	}
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("seed setting %s: %w", key, err)
		}
		if _, err := checkSiteSettingType(key, raw); err != nil {
			return nil, fmt.Errorf("seed setting %s: %w", key, ErrSettingTypeMismatch)
		}
		candidates[key] = raw
	}

	keys := make([]string, 0, len(candidates))
	for key := range candidates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	repo := repository.NewSettingRepository(f.db)
	stored, err := repo.ByFilter(ctx, models.SettingFilter{Keys: keys}, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	present := make(map[string]bool, len(stored))
	for _, s := range stored {
		present[s.Key] = true
	}

	var missing []*models.Setting
	var inserted []string
	for _, key := range keys {
		if present[key] {
			continue
		}
		missing = append(missing, &models.Setting{Key: key, Value: datatypes.JSON(candidates[key])})
		inserted = append(inserted, key)
	}
	if err := repo.SaveBatch(ctx, missing); err != nil {
		return nil, fmt.Errorf("failed to insert settings: %w", err)
	}
	return inserted, nil
}

func (f *SeedFlowImpl) seedContent(ctx context.Context, doc *SeedDocument, report map[string]int) error {
	steps := []struct {
		name string
		run  func() (int, error)
	}{
		{CollectionDoctors, func() (int, error) {
			return seedCollection[models.Doctor, dto.DoctorRequest](ctx, f, models.VisibilityIsActive, doc.Doctors)
		}},
		{CollectionReviews, func() (int, error) {
			return seedCollection[models.Review, dto.ReviewRequest](ctx, f, models.VisibilityIsApproved, doc.Reviews)
		}},
		{CollectionFAQs, func() (int, error) {
			return seedCollection[models.FAQ, dto.FAQRequest](ctx, f, models.VisibilityIsActive, doc.FAQs)
		}},
		{CollectionServices, func() (int, error) {
			return seedCollection[models.Service, dto.ServiceRequest](ctx, f, models.VisibilityIsActive, doc.Services)
		}},
		{CollectionPillSections, func() (int, error) {
			return seedCollection[models.PillSection, dto.PillSectionRequest](ctx, f, models.VisibilityIsActive, doc.PillSections)
		}},
		{CollectionValueStackingItems, func() (int, error) {
			return seedCollection[models.ValueStackingItem, dto.ValueStackingItemRequest](ctx, f, models.VisibilityIsActive, doc.ValueStackingItems)
		}},
		{CollectionSectionBackgrounds, func() (int, error) {
			return seedCollection[models.SectionBackground, dto.SectionBackgroundRequest](ctx, f, models.VisibilityIsActive, doc.SectionBackgrounds)
		}},
		{CollectionFinalCTA, func() (int, error) {
			return seedCollection[models.FinalCTA, dto.FinalCTARequest](ctx, f, models.VisibilityIsActive, doc.FinalCTA)
		}},
	}

	for _, step := range steps {
		n, err := step.run()
		if err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
		if n > 0 {
			report[step.name] = n
		}
	}
	return nil
}

// seedCollection decodes items through the admin request payload P so seeded
// rows pass the same validation as rows created from the panel.
func seedCollection[T any, P dto.ContentPayload[T]](ctx context.Context, f *SeedFlowImpl, visibility string, items []map[string]any) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	repo := repository.NewContentRepository[T](f.db, visibility)
	count, err := repo.Count(ctx, models.ContentFilter{})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return 0, err
	}
	var payloads []P
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return 0, err
	}

	entities := make([]*T, 0, len(payloads))
	for i, p := range payloads {
		if err := f.validate.Struct(p); err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}
		entity := new(T)
		p.ApplyTo(entity)
		entities = append(entities, entity)
	}
	if err := repo.SaveBatch(ctx, entities); err != nil {
		return 0, err
	}
	return len(entities), nil
}
