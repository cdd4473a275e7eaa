package opsserver

// HealthResponse is the JSON response for GET /ops/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the JSON response for GET /ops/v1/stats.
type StatsResponse struct {
	IPPsStored       int64 `json:"ipps_stored"`
	MergesPerformed  int64 `json:"merges_performed"`
	Approximations   int64 `json:"approximations"`
	NodesSettled     int64 `json:"nodes_settled"`
	QueriesServed    int64 `json:"queries_served"`
	CustomizationRun int64 `json:"customization_runs"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProgressEvent is one message broadcast over the websocket feed while a
// customization job runs: which phase just finished (or started) and how
// long it took so far.
type ProgressEvent struct {
	Phase     string  `json:"phase"`
	Detail    string  `json:"detail,omitempty"`
	ElapsedMs float64 `json:"elapsed_ms"`
}
