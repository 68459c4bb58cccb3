package models

// Visibility columns used by content collections.
const (
	VisibilityIsActive   = "is_active"
	VisibilityIsApproved = "is_approved"
)

// ContentFilter represents filter criteria shared by the site content collections.
// Visible is matched against the collection's visibility column.
type ContentFilter struct {
	ID      *uint  `json:"id,omitempty"`
	IDs     []uint `json:"ids,omitempty"`
	Visible *bool  `json:"visible,omitempty"`
}
