package domain

// RunResult summarizes one ingestion run. Every candidate lands in exactly one
// of Invalid, Duplicates, FailedDedupCheck, FailedFetch, FailedSummarize,
// FailedStore or Succeeded. FailedLedger is a subset of Succeeded.
type RunResult struct {
	RunID            string `json:"runId"`
	Partition        string `json:"partition"`
	Candidates       int    `json:"candidates"`
	Invalid          int    `json:"invalid"`
	Duplicates       int    `json:"duplicates"`
	FailedDedupCheck int    `json:"failedDedupCheck"`
	FailedFetch      int    `json:"failedFetch"`
	FailedSummarize  int    `json:"failedSummarize"`
	FailedStore      int    `json:"failedStore"`
	FailedLedger     int    `json:"failedLedger"`
	Succeeded        int    `json:"succeeded"`
	NotifyAttempted  bool   `json:"notifyAttempted"`
	Notified         bool   `json:"notified"`
}

// Failed returns the number of candidates that hit a stage failure.
func (r RunResult) Failed() int {
	return r.FailedDedupCheck + r.FailedFetch + r.FailedSummarize + r.FailedStore
}
