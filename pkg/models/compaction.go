package models

// CompactionResult is the outcome of one compaction attempt: either a single
// summary to fold into memory, or a skip with a reason. A skip is never an
// error; the surrounding append path continues regardless.
type CompactionResult struct {
	Compacted bool
	Summary   *Summary // set when Compacted
	Reason    string   // set when skipped
}

// Compacted wraps a produced summary.
func Compacted(s *Summary) CompactionResult {
	return CompactionResult{Compacted: true, Summary: s}
}

// Skipped records a refused or failed attempt.
func Skipped(reason string) CompactionResult {
	return CompactionResult{Reason: reason}
}
