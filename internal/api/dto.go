package api

import (
	"github.com/corporealshift/driftwatcher/internal/drift"
)

// ReportResponse maps document path to tracked spec to status token,
// the same shape the CLI emits with --format json.
type ReportResponse = map[string]map[string]string

// SummaryResponse carries scan-wide status counts (aliased from the
// domain layer).
type SummaryResponse = drift.Summary
