package vectorstore

import (
	"context"

	"gorm.io/datatypes"
)

// Source indicates which retrieval path produced a match.
type Source string

const (
	SourceDense  Source = "dense"
	SourceSparse Source = "sparse"
	SourceFused  Source = "fused"
)

// Canonical record types stored in the index. These mirror the ingestion
// pipeline's doc_type values.
const (
	DocTypeCommission  = "commission_contract"
	DocTypeOverride    = "override_record"
	DocTypePolicy      = "policy_contract"
	DocTypePerformance = "performance_record"
	DocTypeClawback    = "clawback_record"
	DocTypeProfile     = "employee_profile"
	DocTypeSummary     = "summary_financials"
)

// SharedNamespace holds branch-wide policy documents that every caller may read.
const SharedNamespace = "shared_policy"

// Metadata is the typed record metadata. Extra is an escape hatch for fields
// the ingestion pipeline adds that this core does not interpret.
type Metadata struct {
	EmployeeID   string            `json:"employee_id"`
	EmployeeName string            `json:"employee_name,omitempty"`
	DocType      string            `json:"doc_type"`
	Period       string            `json:"period,omitempty"`
	Company      string            `json:"company,omitempty"`
	SourceDoc    string            `json:"source_doc,omitempty"`
	Extra        datatypes.JSONMap `json:"extra,omitempty"`
}

// Match is a single scored result from one namespace query.
type Match struct {
	ID        string   `json:"id"`
	Score     float64  `json:"score"`
	Namespace string   `json:"namespace"`
	Document  string   `json:"document,omitempty"`
	Metadata  Metadata `json:"metadata"`
	Source    Source   `json:"source"`
}

// Filter is an equality predicate over metadata fields. Zero-value fields are
// not constrained.
type Filter struct {
	EmployeeID string
	DocType    string
	Period     string
	Company    string
}

// Index executes per-namespace nearest-neighbor queries against a partitioned
// vector store. Implementations must scope every query to exactly the given
// namespace.
type Index interface {
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter *Filter) ([]Match, error)
}
