// Package runquery is a small query IR over recorded validation runs and
// its compiler to parameterized SQLite SQL.
//
// A Query is a predicate tree plus an optional limit:
//
//	Query{
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Field: FieldUnit, Value: "loop_unit"},
//	    HasCode{Code: "E222"},
//	  }},
//	  Limit: 10,
//	}
//
// compiles to
//
//	SELECT id, unit, fingerprint, ir_version, valid, seq FROM runs
//	WHERE unit = ? AND EXISTS (SELECT 1 FROM diagnostics d WHERE d.run_id = runs.id AND d.code = ?)
//	ORDER BY seq DESC, id COLLATE BINARY DESC LIMIT ?
//
// Rules:
//   - Values are always bound as parameters, never interpolated
//   - Every compiled query is ordered by seq with an id tiebreaker
//   - Fields are restricted to the run columns listed below
package runquery
