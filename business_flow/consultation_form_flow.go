package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/xuri/excelize/v2"
)

// maxExportRows bounds a single XLSX export
const maxExportRows = 20000

// ConsultationFormFlow handles lead capture and the CRM lead list
type ConsultationFormFlow interface {
	Submit(ctx context.Context, req *dto.SubmitConsultationFormRequest, metadata *ClientMetadata) (*dto.SubmitConsultationFormResponse, error)
	List(ctx context.Context, req *dto.ListConsultationFormsRequest) (*dto.ListConsultationFormsResponse, error)
	Get(ctx context.Context, id uint) (*dto.ConsultationFormDTO, error)
	Update(ctx context.Context, id uint, req *dto.UpdateConsultationFormRequest) (*dto.ConsultationFormDTO, error)
	DistinctSources(ctx context.Context) (*dto.DistinctSourcesResponse, error)
	Export(ctx context.Context, req *dto.ListConsultationFormsRequest) (string, []byte, error)
}

// ConsultationFormFlowImpl implements ConsultationFormFlow
type ConsultationFormFlowImpl struct {
	leadRepo    repository.ConsultationFormRepository
	attribution AttributionFlow
	phoneRegion string
	location    *time.Location
	now         func() time.Time
	log         logger.Logger
}

// NewConsultationFormFlow creates a new consultation form flow
func NewConsultationFormFlow(
	leadRepo repository.ConsultationFormRepository,
	attribution AttributionFlow,
	phoneRegion string,
	location *time.Location,
	log logger.Logger,
) ConsultationFormFlow {
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ConsultationFormFlowImpl{
		leadRepo:    leadRepo,
		attribution: attribution,
		phoneRegion: phoneRegion,
		location:    location,
		now:         utils.UTCNow,
		log:         log.With("component", "consultation_forms"),
	}
}

// Submit stores a new lead. The source is resolved once here and never changes.
func (f *ConsultationFormFlowImpl) Submit(ctx context.Context, req *dto.SubmitConsultationFormRequest, metadata *ClientMetadata) (*dto.SubmitConsultationFormResponse, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, NewBusinessError("FULL_NAME_REQUIRED", "full_name is required", ErrFullNameRequired)
	}
	phone, err := utils.NormalizePhone(req.Phone, f.phoneRegion)
	if err != nil {
		return nil, NewBusinessError("INVALID_PHONE", "phone number is not valid", ErrInvalidPhone)
	}
	if req.TimeSpentSeconds < 0 {
		req.TimeSpentSeconds = 0
	}

	source := f.attribution.ResolveLeadSource(ctx, metadata.sessionID(), req.Source)

	lead := &models.ConsultationForm{
		FullName:                 fullName,
		Phone:                    phone,
		LivesInTashkent:          utils.TrimmedPtr(req.LivesInTashkent),
		LastDentistVisit:         utils.TrimmedPtr(req.LastDentistVisit),
		CurrentProblems:          utils.TrimmedPtr(req.CurrentProblems),
		PreviousClinicExperience: utils.TrimmedPtr(req.PreviousClinicExperience),
		MissingTeeth:             utils.TrimmedPtr(req.MissingTeeth),
		PreferredCallTime:        utils.TrimmedPtr(req.PreferredCallTime),
		Source:                   source,
		TimeSpentSeconds:         req.TimeSpentSeconds,
		LeadStatus:               models.LeadStatusNew,
		IPAddress:                metadata.ipPtr(),
		UserAgent:                metadata.userAgentPtr(),
	}

	if err := f.leadRepo.Save(ctx, lead); err != nil {
		return nil, NewBusinessError("LEAD_CREATE_FAILED", "failed to save consultation form", err)
	}

	attribution := "attributed"
	if source == f.attribution.DefaultSource() {
		attribution = "direct"
	}
	leadsCreated.WithLabelValues(attribution).Inc()
	f.log.Info("lead created", "id", lead.ID, "source", source)

	return &dto.SubmitConsultationFormResponse{
		ID:        lead.ID,
		Source:    lead.Source,
		CreatedAt: formatTime(lead.CreatedAt),
	}, nil
}

func (f *ConsultationFormFlowImpl) List(ctx context.Context, req *dto.ListConsultationFormsRequest) (*dto.ListConsultationFormsResponse, error) {
	page, perPage, err := normalizePaging(req.Page, req.PerPage)
	if err != nil {
		return nil, err
	}
	filter, err := f.buildFilter(req)
	if err != nil {
		return nil, err
	}

	total, err := f.leadRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LEAD_LIST_FAILED", "failed to count consultation forms", err)
	}
	rows, err := f.leadRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", perPage, (page-1)*perPage)
	if err != nil {
		return nil, NewBusinessError("LEAD_LIST_FAILED", "failed to list consultation forms", err)
	}

	data := make([]dto.ConsultationFormDTO, 0, len(rows))
	for _, row := range rows {
		data = append(data, ToConsultationFormDTO(row))
	}

	return &dto.ListConsultationFormsResponse{
		Data:       data,
		Pagination: newPagination(page, perPage, total),
	}, nil
}

func (f *ConsultationFormFlowImpl) Get(ctx context.Context, id uint) (*dto.ConsultationFormDTO, error) {
	lead, err := f.getLead(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToConsultationFormDTO(lead)
	return &out, nil
}

// Update changes status and/or notes. Concurrent edits are last write wins.
func (f *ConsultationFormFlowImpl) Update(ctx context.Context, id uint, req *dto.UpdateConsultationFormRequest) (*dto.ConsultationFormDTO, error) {
	if req == nil || (req.LeadStatus == nil && req.Notes == nil) {
		return nil, NewBusinessError("EMPTY_UPDATE", "provide lead_status and/or notes", ErrEmptyLeadUpdate)
	}

	var status *models.LeadStatus
	if req.LeadStatus != nil {
		s := models.LeadStatus(strings.TrimSpace(*req.LeadStatus))
		if !s.Valid() {
			return nil, NewBusinessErrorf("INVALID_LEAD_STATUS", "lead_status must be one of %s", ErrInvalidLeadStatus, leadStatusList())
		}
		status = &s
	}

	found, err := f.leadRepo.UpdateStatusAndNotes(ctx, id, status, req.Notes, f.now())
	if err != nil {
		return nil, NewBusinessError("LEAD_UPDATE_FAILED", "failed to update consultation form", err)
	}
	if !found {
		return nil, NewBusinessError("LEAD_NOT_FOUND", "consultation form not found", ErrLeadNotFound)
	}

	return f.Get(ctx, id)
}

func (f *ConsultationFormFlowImpl) DistinctSources(ctx context.Context) (*dto.DistinctSourcesResponse, error) {
	sources, err := f.leadRepo.DistinctSources(ctx)
	if err != nil {
		return nil, NewBusinessError("LEAD_SOURCES_FAILED", "failed to load sources", err)
	}
	if sources == nil {
		sources = []string{}
	}
	return &dto.DistinctSourcesResponse{Sources: sources}, nil
}

// Export writes every lead matching the list filters to an XLSX workbook with
// a "Leads" sheet and a per-source "Sources" summary.
func (f *ConsultationFormFlowImpl) Export(ctx context.Context, req *dto.ListConsultationFormsRequest) (string, []byte, error) {
	filter, err := f.buildFilter(req)
	if err != nil {
		return "", nil, err
	}

	rows, err := f.leadRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", maxExportRows, 0)
	if err != nil {
		return "", nil, NewBusinessError("LEAD_EXPORT_FAILED", "failed to load consultation forms", err)
	}
	counts, err := f.leadRepo.CountBySource(ctx, filter)
	if err != nil {
		return "", nil, NewBusinessError("LEAD_EXPORT_FAILED", "failed to count sources", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	const leadsSheet = "Leads"
	xl.SetSheetName(xl.GetSheetName(0), leadsSheet)

	bold, err := xl.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "failed to build workbook", err)
	}

	header := []string{
		"ID", "Created at", "Full name", "Phone", "Source", "Lead status", "Notes",
		"Lives in Tashkent", "Last dentist visit", "Current problems",
		"Previous clinic experience", "Missing teeth", "Preferred call time", "Time spent (s)",
	}
	_ = xl.SetSheetRow(leadsSheet, "A1", &header)
	lastCol, _ := excelize.CoordinatesToCellName(len(header), 1)
	_ = xl.SetCellStyle(leadsSheet, "A1", lastCol, bold)
	_ = xl.SetColWidth(leadsSheet, "B", "E", 22)
	_ = xl.SetColWidth(leadsSheet, "F", "M", 28)

	for i, lead := range rows {
		record := []any{
			lead.ID,
			lead.CreatedAt.In(f.location).Format("2006-01-02 15:04"),
			lead.FullName,
			lead.Phone,
			lead.Source,
			string(lead.LeadStatus),
			utils.Deref(lead.Notes),
			utils.Deref(lead.LivesInTashkent),
			utils.Deref(lead.LastDentistVisit),
			utils.Deref(lead.CurrentProblems),
			utils.Deref(lead.PreviousClinicExperience),
			utils.Deref(lead.MissingTeeth),
			utils.Deref(lead.PreferredCallTime),
			lead.TimeSpentSeconds,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := xl.SetSheetRow(leadsSheet, cellRef, &record); err != nil {
			return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "failed to write workbook", err)
		}
	}

	const sourcesSheet = "Sources"
	if _, err := xl.NewSheet(sourcesSheet); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "failed to build workbook", err)
	}
	_ = xl.SetSheetRow(sourcesSheet, "A1", &[]string{"Source", "Leads", "Share %"})
	_ = xl.SetCellStyle(sourcesSheet, "A1", "C1", bold)
	breakdown := BuildSourceBreakdown(counts)
	for i, item := range breakdown {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(sourcesSheet, cellRef, &[]any{item.Source, item.Count, item.Percentage})
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "failed to write workbook", err)
	}

	filename := fmt.Sprintf("consultation_forms_%s.xlsx", f.now().In(f.location).Format("20060102_1504"))
	return filename, buf.Bytes(), nil
}

func (f *ConsultationFormFlowImpl) getLead(ctx context.Context, id uint) (*models.ConsultationForm, error) {
	if id == 0 {
		return nil, NewBusinessError("LEAD_NOT_FOUND", "consultation form not found", ErrLeadNotFound)
	}
	lead, err := f.leadRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("LEAD_LOOKUP_FAILED", "failed to load consultation form", err)
	}
	if lead == nil {
		return nil, NewBusinessError("LEAD_NOT_FOUND", "consultation form not found", ErrLeadNotFound)
	}
	return lead, nil
}

// buildFilter maps query parameters to a repository filter. "all" disables
// the source and status filters.
func (f *ConsultationFormFlowImpl) buildFilter(req *dto.ListConsultationFormsRequest) (models.ConsultationFormFilter, error) {
	var filter models.ConsultationFormFilter
	if req == nil {
		return filter, nil
	}

	if s := strings.TrimSpace(req.Search); s != "" {
		filter.Search = &s
	}
	if s := strings.TrimSpace(req.SourceFilter); s != "" && !strings.EqualFold(s, "all") {
		filter.Source = &s
	}
	if s := strings.TrimSpace(req.StatusFilter); s != "" && !strings.EqualFold(s, "all") {
		status := models.LeadStatus(s)
		if !status.Valid() {
			return filter, NewBusinessErrorf("INVALID_LEAD_STATUS", "statusFilter must be one of %s", ErrInvalidLeadStatus, leadStatusList())
		}
		filter.LeadStatus = &status
	}

	from, to, err := parseDateRange(req.DateFrom, req.DateTo, f.location)
	if err != nil {
		return filter, err
	}
	filter.CreatedAfter = from
	filter.CreatedBefore = to
	return filter, nil
}

func leadStatusList() string {
	names := make([]string, 0, len(models.LeadStatuses))
	for _, s := range models.LeadStatuses {
		names = append(names, strconv.Quote(string(s)))
	}
	return strings.Join(names, ", ")
}

// ToConsultationFormDTO converts a lead to its CRM view
func ToConsultationFormDTO(lead *models.ConsultationForm) dto.ConsultationFormDTO {
	return dto.ConsultationFormDTO{
		ID:                       lead.ID,
		FullName:                 lead.FullName,
		Phone:                    lead.Phone,
		LivesInTashkent:          lead.LivesInTashkent,
		LastDentistVisit:         lead.LastDentistVisit,
		CurrentProblems:          lead.CurrentProblems,
		PreviousClinicExperience: lead.PreviousClinicExperience,
		MissingTeeth:             lead.MissingTeeth,
		PreferredCallTime:        lead.PreferredCallTime,
		Source:                   lead.Source,
		TimeSpentSeconds:         lead.TimeSpentSeconds,
		LeadStatus:               string(lead.LeadStatus),
		Notes:                    lead.Notes,
		CreatedAt:                formatTime(lead.CreatedAt),
		UpdatedAt:                formatTime(lead.UpdatedAt),
	}
}
