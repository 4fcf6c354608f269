package output

import "github.com/oklog/ulid/v2"

// NewRunID returns a sortable identifier for one run. It tags the JSON report
// and every request span.
func NewRunID() string {
	return ulid.Make().String()
}
