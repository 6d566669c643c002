package runquery

// Predicate is a condition on a recorded run.
//
// The interface is sealed: the compiler switches over exactly the types in
// this package.
type Predicate interface {
	predicateNode()
}

// Field names a filterable column of the runs table.
type Field string

const (
	FieldUnit        Field = "unit"
	FieldFingerprint Field = "fingerprint"
	FieldIRVersion   Field = "ir_version"
	FieldValid       Field = "valid"
)

// Equals matches runs whose Field equals Value. Value is a string for text
// columns and a bool for FieldValid.
type Equals struct {
	Field Field
	Value any
}

func (Equals) predicateNode() {}

// HasCode matches runs that reported at least one diagnostic with Code.
type HasCode struct {
	Code string
}

func (HasCode) predicateNode() {}

// And matches runs satisfying every predicate. An empty And matches all runs.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Query selects runs, newest first.
type Query struct {
	Filter Predicate // nil matches all runs
	Limit  int       // <= 0 means no limit
}

// Where conjoins p onto the query filter.
func (q Query) Where(p Predicate) Query {
	switch f := q.Filter.(type) {
	case nil:
		q.Filter = p
	case And:
		q.Filter = And{Predicates: append(append([]Predicate(nil), f.Predicates...), p)}
	default:
		q.Filter = And{Predicates: []Predicate{f, p}}
	}
	return q
}
