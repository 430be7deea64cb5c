package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	// DefaultLimit is the default number of items per page
	DefaultLimit = 20
	// MaxLimit is the maximum number of items per page
	MaxLimit = 100
)

// Params represents pagination parameters
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Meta represents pagination metadata
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Response represents a paginated payload
type Response struct {
	Items interface{} `json:"items"`
	Meta  *Meta       `json:"meta"`
}

// GetParams extracts page and limit from the query string, clamping
// both into range
func GetParams(c *fiber.Ctx) *Params {
	return NewParams(c.Query("page"), c.Query("limit"))
}

// NewParams parses raw page and limit values
func NewParams(rawPage, rawLimit string) *Params {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(rawLimit)
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	return &Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// GetMeta calculates pagination metadata
func GetMeta(params *Params, total int64) *Meta {
	limit := int64(params.Limit)
	totalPages := int((total + limit - 1) / limit)

	return &Meta{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// NewResponse wraps one page of items with its metadata
func NewResponse(items interface{}, params *Params, total int64) *Response {
	return &Response{
		Items: items,
		Meta:  GetMeta(params, total),
	}
}
