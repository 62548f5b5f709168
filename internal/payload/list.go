package payload

// ListResp is the shared envelope of paginated list endpoints. Count is the
// total row count before pagination, so the client can render page controls.
type ListResp[T any] struct {
	Rows  []T   `json:"rows"`
	Count int64 `json:"count"`
}
