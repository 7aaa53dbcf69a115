package kernel

// Page carries pagination metadata for collection responses from the
// directory service.
type Page struct {
	Offset int `json:"offset"` // Starting index of this page
	Limit  int `json:"limit"`  // Requested page size
	Total  int `json:"size"`   // Total number of records in the collection
}

// Paginated is a generic container for one page of a remote collection.
type Paginated[T any] struct {
	Items []T  `json:"items"`
	Page  Page `json:"page"`
}

// NewPaginated builds a page container.
func NewPaginated[T any](items []T, offset, limit, total int) Paginated[T] {
	return Paginated[T]{
		Items: items,
		Page:  Page{Offset: offset, Limit: limit, Total: total},
	}
}

// HasMore reports whether the remote collection extends past this page.
func (p Paginated[T]) HasMore() bool {
	return p.Page.Offset+len(p.Items) < p.Page.Total
}
