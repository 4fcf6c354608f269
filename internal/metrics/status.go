package metrics

import "sort"

// StatusBucket is one row of the per-status-code breakdown.
type StatusBucket struct {
	Code  int
	Count int
}

// FlattenStatusCodes converts a status->count map into rows sorted by
// ascending status code.
func FlattenStatusCodes(codes map[int]int) []StatusBucket {
	if len(codes) == 0 {
		return nil
	}
	rows := make([]StatusBucket, 0, len(codes))
	for code, count := range codes {
		rows = append(rows, StatusBucket{Code: code, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Code < rows[j].Code
	})
	return rows
}

// ErrorBucket is one row of the error breakdown.
type ErrorBucket struct {
	Reason string
	Count  int
}

// FlattenErrors converts a reason->count map into rows sorted by descending
// count, then by reason for stability.
func FlattenErrors(reasons map[string]int) []ErrorBucket {
	if len(reasons) == 0 {
		return nil
	}
	rows := make([]ErrorBucket, 0, len(reasons))
	for reason, count := range reasons {
		rows = append(rows, ErrorBucket{Reason: reason, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Reason < rows[j].Reason
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
