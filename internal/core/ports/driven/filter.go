package driven

import "github.com/custodia-labs/verdict-cli/internal/core/domain"

// CandidateFilter is an extra predicate a candidate must satisfy to be ranked.
type CandidateFilter interface {
	// Match reports whether the candidate passes.
	Match(candidate domain.Candidate) (bool, error)

	// Expression returns the source expression.
	Expression() string
}
