// Package dto contains the request and response shapes of the HTTP API
package dto

// APIResponse represents the standard API response structure
type APIResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty" validate:"omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      any         `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail represents error details in API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty" validate:"omitempty"`
}

// Pagination describes one page of a list response
type Pagination struct {
	Page       int   `json:"page" example:"1"`
	PerPage    int   `json:"perPage" example:"20"`
	TotalCount int64 `json:"totalCount" example:"137"`
	TotalPages int   `json:"totalPages" example:"7"`
}
