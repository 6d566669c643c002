package ir

// FirstChildShapeOnlySeq returns the chain of shape-only expressions that
// directly follow expr through output 0. The chain continues only while the
// current output connector has exactly one consumer and that consumer is
// shape-only; branching chains stop at the branch.
func FirstChildShapeOnlySeq(expr *Expression) []*Expression {
	var seq []*Expression
	seen := map[*Expression]bool{expr: true}
	cur := expr
	for {
		c := cur.OutputConnector(0)
		if c == nil || len(c.consumers) != 1 {
			return seq
		}
		next := c.consumers[0].Expr
		if next == nil || seen[next] || !next.Kind.IsShapeOnly() {
			return seq
		}
		seen[next] = true
		seq = append(seq, next)
		cur = next
	}
}

// FirstParentShapeOnlySeq returns the chain of shape-only expressions that
// directly precede expr through input 0, nearest first.
func FirstParentShapeOnlySeq(expr *Expression) []*Expression {
	var seq []*Expression
	seen := map[*Expression]bool{expr: true}
	cur := expr
	for {
		c := cur.InputConnector(0)
		if c == nil {
			return seq
		}
		prev := c.source.Expr
		if prev == nil || seen[prev] || !prev.Kind.IsShapeOnly() {
			return seq
		}
		seen[prev] = true
		seq = append(seq, prev)
		cur = prev
	}
}
