package runquery

import (
	"strings"

	"github.com/pkg/errors"
)

const selectRuns = "SELECT id, unit, fingerprint, ir_version, valid, seq FROM runs"

// orderRuns is appended to every compiled query.
const orderRuns = " ORDER BY seq DESC, id COLLATE BINARY DESC"

// Compile converts q into SQL and its parameters.
func Compile(q Query) (string, []any, error) {
	if err := Validate(q); err != nil {
		return "", nil, errors.Wrap(err, "compile run query")
	}

	var (
		sb     strings.Builder
		params []any
	)
	sb.WriteString(selectRuns)
	if q.Filter != nil {
		where, args := compilePredicate(q.Filter)
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
		params = args
	}
	sb.WriteString(orderRuns)
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}
	return sb.String(), params, nil
}

// compilePredicate assumes p has been validated.
func compilePredicate(p Predicate) (string, []any) {
	switch pred := p.(type) {
	case Equals:
		return string(pred.Field) + " = ?", []any{pred.Value}
	case *Equals:
		return compilePredicate(*pred)
	case HasCode:
		return "EXISTS (SELECT 1 FROM diagnostics d WHERE d.run_id = runs.id AND d.code = ?)", []any{pred.Code}
	case *HasCode:
		return compilePredicate(*pred)
	case And:
		return compileAnd(pred)
	case *And:
		return compileAnd(*pred)
	}
	return "1 = 1", nil
}

func compileAnd(and And) (string, []any) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil
	}
	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, p := range and.Predicates {
		sql, args := compilePredicate(p)
		parts = append(parts, sql)
		params = append(params, args...)
	}
	return strings.Join(parts, " AND "), params
}
