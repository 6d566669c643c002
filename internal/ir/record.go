package ir

// RunRecord is one persisted validation run of one unit.
type RunRecord struct {
	ID          string             `json:"id"`
	Unit        string             `json:"unit"`
	Fingerprint string             `json:"fingerprint"`
	IRVersion   string             `json:"ir_version"`
	Valid       bool               `json:"valid"`
	Seq         int64              `json:"seq"`
	Diagnostics []DiagnosticRecord `json:"diagnostics"`
}

// DiagnosticRecord is the stored form of one diagnostic.
// LoopID and ClusterID are nil when the diagnostic is not about a loop or cluster.
type DiagnosticRecord struct {
	Code      string `json:"code"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	Expr      string `json:"expr"`
	ExprIndex int    `json:"expr_index"`
	LoopID    *int   `json:"loop_id,omitempty"`
	ClusterID *int   `json:"cluster_id,omitempty"`
	Expected  string `json:"expected,omitempty"`
	Actual    string `json:"actual,omitempty"`
}
