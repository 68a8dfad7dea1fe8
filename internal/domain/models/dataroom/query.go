package dataroom

import (
	"fmt"
	"math"
	"time"
)

// Pagination describes one page of a listing
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes page metadata from a total row count
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// PageRequest is a 1-based page/limit pair as received from clients
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize applies defaults and clamps the limit to maxLimit
func (p PageRequest) Normalize(defaultLimit, maxLimit int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Validate rejects pages whose offset would overflow. Call it after Normalize.
func (p PageRequest) Validate() error {
	if p.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	if p.Page > math.MaxInt/p.Limit {
		return fmt.Errorf("page %d is out of range", p.Page)
	}
	return nil
}

// Offset returns the number of rows to skip
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// SortField selects the ordering of folder contents
type SortField string

const (
	SortByName      SortField = "name"
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
	SortBySize      SortField = "size" // files only; folders fall back to name
)

// SortOrder is the direction of a sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListOptions controls ordering of folder contents.
// Zero value means case-insensitive name ascending.
type ListOptions struct {
	Sort  SortField
	Order SortOrder
}

// ApplyDefaults fills in default values for unset fields
func (o *ListOptions) ApplyDefaults() {
	if o.Sort == "" {
		o.Sort = SortByName
	}
	if o.Order == "" {
		o.Order = SortAsc
	}
}

// Validate checks the sort key and direction
func (o *ListOptions) Validate() error {
	switch o.Sort {
	case SortByName, SortByCreatedAt, SortByUpdatedAt, SortBySize:
	default:
		return fmt.Errorf("invalid sort field: %q (supported: name, created_at, updated_at, size)", o.Sort)
	}
	switch o.Order {
	case SortAsc, SortDesc:
	default:
		return fmt.Errorf("invalid sort order: %q (supported: asc, desc)", o.Order)
	}
	return nil
}

// FileQuery filters file listings and searches.
// OwnerID is always set by the service so results never leave the caller's rooms.
type FileQuery struct {
	OwnerID    string
	Query      string // Case-insensitive substring of the name; empty matches all
	DataRoomID string
	FolderID   string
	MimeType   string
	DateFrom   *time.Time // created_at >= DateFrom
	DateTo     *time.Time // created_at <= DateTo
	SizeMin    *int64
	SizeMax    *int64
	Limit      int
	Offset     int
}

// Validate checks that the filter values are consistent
func (q *FileQuery) Validate() error {
	if q.OwnerID == "" {
		return fmt.Errorf("owner is required")
	}
	if q.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	if q.Offset < 0 {
		return fmt.Errorf("offset cannot be negative")
	}
	if q.DateFrom != nil && q.DateTo != nil && q.DateFrom.After(*q.DateTo) {
		return fmt.Errorf("date_from must not be after date_to")
	}
	if q.SizeMin != nil && *q.SizeMin < 0 {
		return fmt.Errorf("size_min cannot be negative")
	}
	if q.SizeMin != nil && q.SizeMax != nil && *q.SizeMin > *q.SizeMax {
		return fmt.Errorf("size_min must not exceed size_max")
	}
	return nil
}
