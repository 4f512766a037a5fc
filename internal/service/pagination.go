package service

// Page size bounds for list operations.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// normalizePage clamps limit to [1, MaxPageSize], defaulting to
// DefaultPageSize, and offset to non-negative values.
func normalizePage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
