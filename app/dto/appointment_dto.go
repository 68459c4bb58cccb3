package dto

type CreateAppointmentRequest struct {
	FullName      string  `json:"full_name" validate:"required,min=1,max=150"`
	Phone         string  `json:"phone" validate:"required,max=32"`
	PreferredDate *string `json:"preferred_date,omitempty" validate:"omitempty,max=40"`
	Service       *string `json:"service,omitempty" validate:"omitempty,max=200"`
	Message       *string `json:"message,omitempty" validate:"omitempty,max=2000"`
}

type AppointmentDTO struct {
	ID            uint    `json:"id" example:"5"`
	FullName      string  `json:"full_name" example:"Jasur Tursunov"`
	Phone         string  `json:"phone" example:"+998901234567"`
	PreferredDate *string `json:"preferred_date,omitempty" example:"2026-02-01T00:00:00Z"`
	Service       *string `json:"service,omitempty" example:"Implants"`
	Message       *string `json:"message,omitempty"`
	Status        string  `json:"status" example:"pending"`
	CreatedAt     string  `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt     string  `json:"updated_at" example:"2026-01-15T10:30:00Z"`
}

type ListAppointmentsRequest struct {
	Page    int    `query:"page"`
	PerPage int    `query:"perPage"`
	Status  string `query:"status"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

type CreateAppointmentResponse struct {
	ID     uint   `json:"id" example:"5"`
	Status string `json:"status" example:"pending"`
}

type ListAppointmentsResponse struct {
	Data       []AppointmentDTO `json:"data"`
	Pagination Pagination       `json:"pagination"`
}
