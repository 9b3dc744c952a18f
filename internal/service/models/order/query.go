package order

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// QueryOrdersModel represents filter parameters for listing a client's orders.
type QueryOrdersModel struct {
	ClientID string `json:"clientId"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"pageSize,omitempty"`
}

// Normalize clamps paging parameters to sane bounds.
func (q QueryOrdersModel) Normalize() QueryOrdersModel {
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

// Limit returns the SQL limit for the page.
func (q QueryOrdersModel) Limit() int {
	return q.PageSize
}

// Offset returns the SQL offset for the page.
func (q QueryOrdersModel) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Page is a bounded slice of orders plus the total number of matching orders.
type Page struct {
	Orders   []Order `json:"orders"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
	Total    int64   `json:"total"`
}
