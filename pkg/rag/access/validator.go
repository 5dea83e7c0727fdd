package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/vectorstore"
)

// PrivateNamespacePrefix scopes one employee's records. The namespace an
// employee may query is derived from their authenticated identity, never
// from request input.
const PrivateNamespacePrefix = "emp_"

// SecurityViolationError is a fatal ownership breach: a record returned from
// a private namespace whose owner metadata disagrees with the requester. It
// is never retried, never downgraded, and never filtered out.
type SecurityViolationError struct {
	Namespace     string
	ExpectedOwner string
	ActualOwner   string
	MatchID       string
}

func (e *SecurityViolationError) Error() string {
	return fmt.Sprintf("security violation: record %s in namespace %s owned by %q, requester is %q",
		e.MatchID, e.Namespace, e.ActualOwner, e.ExpectedOwner)
}

// IsSecurityViolation reports whether err is (or wraps) a violation.
func IsSecurityViolation(err error) bool {
	var sv *SecurityViolationError
	return errors.As(err, &sv)
}

// IncidentPublisher receives security incidents for alerting. Best effort:
// publish failures are logged, the violation itself still aborts the request.
type IncidentPublisher interface {
	PublishSecurityIncident(ctx context.Context, violation *SecurityViolationError)
}

// Validator enforces the ownership invariant on results leaving the vector
// index, before they reach any fusion or ranking code.
type Validator struct {
	logger    logger.ILogger
	incidents IncidentPublisher
}

func NewValidator(log logger.ILogger, incidents IncidentPublisher) *Validator {
	return &Validator{logger: log, incidents: incidents}
}

// NamespaceFor derives the only private namespace an employee may query.
// Layer 1 of the isolation model: the partition boundary itself.
func NamespaceFor(employeeID string) string {
	return PrivateNamespacePrefix + employeeID
}

// IsPrivate reports whether a namespace holds per-employee records.
func IsPrivate(namespace string) bool {
	return strings.HasPrefix(namespace, PrivateNamespacePrefix)
}

// OwnerFilter returns the redundant metadata predicate attached to every
// private-namespace query. Layer 2: even if a record were misfiled into the
// wrong partition, the filter excludes it.
func OwnerFilter(employeeID string) *vectorstore.Filter {
	return &vectorstore.Filter{EmployeeID: employeeID}
}

// ValidateMatches is layer 3: a post-hoc comparison of every returned
// record's owner against the requester. Shared namespaces carry no owner and
// are skipped. A mismatch aborts the request and is logged as a critical
// incident.
func (v *Validator) ValidateMatches(ctx context.Context, namespace, expectedOwner string, matches []vectorstore.Match) error {
	if !IsPrivate(namespace) {
		return nil
	}

	for _, m := range matches {
		if m.Metadata.EmployeeID == expectedOwner {
			continue
		}

		violation := &SecurityViolationError{
			Namespace:     namespace,
			ExpectedOwner: expectedOwner,
			ActualOwner:   m.Metadata.EmployeeID,
			MatchID:       m.ID,
		}

		v.logger.Error(logger.ModuleSecurity, "namespace ownership violation", map[string]interface{}{
			"namespace":      violation.Namespace,
			"expected_owner": violation.ExpectedOwner,
			"actual_owner":   violation.ActualOwner,
			"match_id":       violation.MatchID,
		})
		if v.incidents != nil {
			v.incidents.PublishSecurityIncident(ctx, violation)
		}
		return violation
	}
	return nil
}
