package constant

import "time"

const (
	REQUEST_SUCCESSFUL   = "Request successful"
	REQUEST_UNSUCCESSFUL = "Request unsuccessful"
)

const (
	QUERY_TIMEOUT_DURATION  = 10 * time.Second
	RENDER_TIMEOUT_DURATION = 60 * time.Second
)

const (
	DefaultPageSize uint = 20
	MaxPageSize     uint = 100
)

// Batches larger than this are pushed to the queue instead of being issued
// inside the request.
const MaxInlineBulkTargets = 25
