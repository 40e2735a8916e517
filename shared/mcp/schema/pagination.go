package schema

// Cursor is an opaque token used for pagination.
type Cursor = string

// PaginatedRequestParams carries the pagination cursor of list requests.
type PaginatedRequestParams struct {
	// An opaque token representing the current pagination position.
	// If provided, the server should return results starting after this cursor.
	Cursor *Cursor `json:"cursor,omitempty"`
}

// PaginatedResult carries the continuation token of list responses.
type PaginatedResult struct {
	// An opaque token representing the pagination position after the last
	// returned result. If present, there may be more results available.
	NextCursor *Cursor `json:"nextCursor,omitempty"`
}
