package businessflow

import (
	"context"
	"strings"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	"github.com/amirphl/dental-clinic/utils"
)

// AppointmentFlow handles booking requests from the public site
type AppointmentFlow interface {
	Create(ctx context.Context, req *dto.CreateAppointmentRequest, metadata *ClientMetadata) (*dto.CreateAppointmentResponse, error)
	List(ctx context.Context, req *dto.ListAppointmentsRequest) (*dto.ListAppointmentsResponse, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*dto.AppointmentDTO, error)
	Delete(ctx context.Context, id uint) error
}

// AppointmentFlowImpl implements AppointmentFlow
type AppointmentFlowImpl struct {
	appointmentRepo repository.AppointmentRepository
	phoneRegion     string
	location        *time.Location
	now             func() time.Time
	log             logger.Logger
}

// NewAppointmentFlow creates a new appointment flow
func NewAppointmentFlow(appointmentRepo repository.AppointmentRepository, phoneRegion string, location *time.Location, log logger.Logger) AppointmentFlow {
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AppointmentFlowImpl{
		appointmentRepo: appointmentRepo,
		phoneRegion:     phoneRegion,
		location:        location,
		now:             utils.UTCNow,
		log:             log.With("component", "appointments"),
	}
}

func (f *AppointmentFlowImpl) Create(ctx context.Context, req *dto.CreateAppointmentRequest, metadata *ClientMetadata) (*dto.CreateAppointmentResponse, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, NewBusinessError("FULL_NAME_REQUIRED", "full_name is required", ErrFullNameRequired)
	}
	phone, err := utils.NormalizePhone(req.Phone, f.phoneRegion)
	if err != nil {
		return nil, NewBusinessError("INVALID_PHONE", "phone number is not valid", ErrInvalidPhone)
	}

	var preferred *time.Time
	if v := utils.Deref(utils.TrimmedPtr(req.PreferredDate)); v != "" {
		t, err := utils.ParseDateBound(v, f.location, false)
		if err != nil {
			return nil, NewBusinessError("INVALID_DATE", "preferred_date must be YYYY-MM-DD or RFC3339", ErrInvalidDate)
		}
		preferred = &t
	}

	appointment := &models.Appointment{
		FullName:      fullName,
		Phone:         phone,
		PreferredDate: preferred,
		Service:       utils.TrimmedPtr(req.Service),
		Message:       utils.TrimmedPtr(req.Message),
		Status:        models.AppointmentStatusPending,
	}
	if err := f.appointmentRepo.Save(ctx, appointment); err != nil {
		return nil, NewBusinessError("APPOINTMENT_CREATE_FAILED", "failed to save appointment", err)
	}

	f.log.Info("appointment requested", "id", appointment.ID, "request_id", metadata.requestID())
	return &dto.CreateAppointmentResponse{ID: appointment.ID, Status: string(appointment.Status)}, nil
}

func (f *AppointmentFlowImpl) List(ctx context.Context, req *dto.ListAppointmentsRequest) (*dto.ListAppointmentsResponse, error) {
	page, perPage, err := normalizePaging(req.Page, req.PerPage)
	if err != nil {
		return nil, err
	}

	var filter models.AppointmentFilter
	if s := strings.TrimSpace(req.Status); s != "" && !strings.EqualFold(s, "all") {
		status := models.AppointmentStatus(s)
		if !status.Valid() {
			return nil, NewBusinessError("INVALID_APPOINTMENT_STATUS", "status must be pending, confirmed, completed or cancelled", ErrInvalidAppointmentStatus)
		}
		filter.Status = &status
	}

	total, err := f.appointmentRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("APPOINTMENT_LIST_FAILED", "failed to count appointments", err)
	}
	rows, err := f.appointmentRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", perPage, (page-1)*perPage)
	if err != nil {
		return nil, NewBusinessError("APPOINTMENT_LIST_FAILED", "failed to list appointments", err)
	}

	data := make([]dto.AppointmentDTO, 0, len(rows))
	for _, row := range rows {
		data = append(data, toAppointmentDTO(row))
	}
	return &dto.ListAppointmentsResponse{Data: data, Pagination: newPagination(page, perPage, total)}, nil
}

func (f *AppointmentFlowImpl) UpdateStatus(ctx context.Context, id uint, status string) (*dto.AppointmentDTO, error) {
	s := models.AppointmentStatus(strings.TrimSpace(status))
	if !s.Valid() {
		return nil, NewBusinessError("INVALID_APPOINTMENT_STATUS", "status must be pending, confirmed, completed or cancelled", ErrInvalidAppointmentStatus)
	}

	found, err := f.appointmentRepo.UpdateStatus(ctx, id, s, f.now())
	if err != nil {
		return nil, NewBusinessError("APPOINTMENT_UPDATE_FAILED", "failed to update appointment", err)
	}
	if !found {
		return nil, NewBusinessError("APPOINTMENT_NOT_FOUND", "appointment not found", ErrAppointmentNotFound)
	}

	appointment, err := f.appointmentRepo.ByID(ctx, id)
	if err != nil || appointment == nil {
		return nil, NewBusinessError("APPOINTMENT_LOOKUP_FAILED", "failed to load appointment", err)
	}
	out := toAppointmentDTO(appointment)
	return &out, nil
}

func (f *AppointmentFlowImpl) Delete(ctx context.Context, id uint) error {
	deleted, err := f.appointmentRepo.DeleteByID(ctx, id)
	if err != nil {
		return NewBusinessError("APPOINTMENT_DELETE_FAILED", "failed to delete appointment", err)
	}
	if !deleted {
		return NewBusinessError("APPOINTMENT_NOT_FOUND", "appointment not found", ErrAppointmentNotFound)
	}
	return nil
}

func toAppointmentDTO(a *models.Appointment) dto.AppointmentDTO {
	return dto.AppointmentDTO{
		ID:            a.ID,
		FullName:      a.FullName,
		Phone:         a.Phone,
		PreferredDate: formatTimePtr(a.PreferredDate),
		Service:       a.Service,
		Message:       a.Message,
		Status:        string(a.Status),
		CreatedAt:     formatTime(a.CreatedAt),
		UpdatedAt:     formatTime(a.UpdatedAt),
	}
}
