package book

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// QueryBooksModel represents paging parameters for listing books.
type QueryBooksModel struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"pageSize,omitempty"`
}

// Normalize clamps paging parameters to sane bounds.
func (q QueryBooksModel) Normalize() QueryBooksModel {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}

	return q
}

func (q QueryBooksModel) Offset() int {
	return (q.Page - 1) * q.PageSize
}
