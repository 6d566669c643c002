package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstChildShapeOnlySeq(t *testing.T) {
	l := NewLinearIR("u")
	p := NewExpression("P", KindParameter, nil, []*PortDescriptor{desc(4, 8)})
	r1 := NewExpression("R1", KindReshape, []*PortDescriptor{desc(4, 8)}, []*PortDescriptor{desc(32)})
	r2 := NewExpression("R2", KindRankNormalization, []*PortDescriptor{desc(32)}, []*PortDescriptor{desc(1, 32)})
	ld := NewExpression("L", KindLoad, []*PortDescriptor{desc(1, 32)}, []*PortDescriptor{desc(1, 32)})
	l.MustAppend(p, r1, r2, ld)
	l.MustConnect(p, 0, r1, 0)
	l.MustConnect(r1, 0, r2, 0)
	l.MustConnect(r2, 0, ld, 0)

	assert.Equal(t, []*Expression{r1, r2}, FirstChildShapeOnlySeq(p))
	assert.Empty(t, FirstChildShapeOnlySeq(r2))
	assert.Equal(t, []*Expression{r2, r1}, FirstParentShapeOnlySeq(ld))
	assert.Empty(t, FirstParentShapeOnlySeq(p))
}

func TestFirstChildShapeOnlySeq_StopsAtBranch(t *testing.T) {
	l := NewLinearIR("u")
	p := NewExpression("P", KindParameter, nil, []*PortDescriptor{desc(8)})
	r1 := NewExpression("R1", KindReshape, []*PortDescriptor{desc(8)}, []*PortDescriptor{desc(8)})
	r2 := NewExpression("R2", KindReshape, []*PortDescriptor{desc(8)}, []*PortDescriptor{desc(8)})
	l.MustAppend(p, r1, r2)
	l.MustConnect(p, 0, r1, 0)
	l.MustConnect(p, 0, r2, 0)

	assert.Empty(t, FirstChildShapeOnlySeq(p))
}

func TestFirstChildShapeOnlySeq_TerminatesOnCycle(t *testing.T) {
	l := NewLinearIR("u")
	a := NewExpression("A", KindReshape, []*PortDescriptor{desc(8)}, []*PortDescriptor{desc(8)})
	b := NewExpression("B", KindReshape, []*PortDescriptor{desc(8)}, []*PortDescriptor{desc(8)})
	l.MustAppend(a, b)
	l.MustConnect(a, 0, b, 0)
	l.MustConnect(b, 0, a, 0)

	assert.Equal(t, []*Expression{b}, FirstChildShapeOnlySeq(a))
	assert.Equal(t, []*Expression{b}, FirstParentShapeOnlySeq(a))
}
