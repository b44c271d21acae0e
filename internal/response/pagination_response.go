package response

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

// PageRequest is a normalised page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest clamps page to >= 1 and limit to 1..MaxPageSize, defaulting to DefaultPageSize.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return PageRequest{Page: page, Limit: limit}
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPagination describes a page of count items out of total.
func NewPagination(req PageRequest, total int64, count int) *Pagination {
	totalPages := int64(0)
	if total > 0 {
		totalPages = (total + int64(req.Limit) - 1) / int64(req.Limit)
	}
	from, to := 0, 0
	if count > 0 {
		from = req.Offset() + 1
		to = req.Offset() + count
	}
	return &Pagination{
		Page:       req.Page,
		PageSize:   req.Limit,
		TotalPages: totalPages,
		TotalItems: total,
		HasMore:    int64(req.Offset()+count) < total,
		From:       from,
		To:         to,
	}
}
