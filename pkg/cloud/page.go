package cloud

import "context"

// ResultPage is one fetched page of a marker-paginated list call, in
// backend order.
type ResultPage[T any] struct {
	// Data holds the items of this page. Order is the backend's order and
	// is significant.
	Data []T

	// Marker is the opaque cursor that requests the page after this one.
	// Empty means the backend reported no cursor. The marker is only
	// followed while IsTruncated is true.
	Marker string

	// IsTruncated is true iff more pages exist beyond this one.
	IsTruncated bool

	// SupportsTotal indicates whether the backend can report a total count.
	SupportsTotal bool

	// Total is the count of all matching items across all pages. Only
	// meaningful when SupportsTotal is true.
	Total int
}

// PageSource is the capability the pagination iterator consumes: a single
// page fetch keyed by an opaque marker. An empty marker requests the first
// page. Backend errors are returned verbatim.
type PageSource[T any] interface {
	ListPage(ctx context.Context, marker string) (*ResultPage[T], error)
}

// PageFunc adapts a plain function to a PageSource.
type PageFunc[T any] func(ctx context.Context, marker string) (*ResultPage[T], error)

// ListPage implements PageSource.
func (f PageFunc[T]) ListPage(ctx context.Context, marker string) (*ResultPage[T], error) {
	return f(ctx, marker)
}
