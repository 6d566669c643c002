package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPortDescriptor_IdentityLayoutWhenNil(t *testing.T) {
	d, err := NewPortDescriptor([]int64{2, 3, 4}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, d.Layout)
	assert.Equal(t, "[2,3,4]{0,1,2}", d.String())
}

func TestNewPortDescriptor_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		shape  []int64
		layout []int
		want   error
	}{
		{"layout too short", []int64{2, 3}, []int{0}, ErrLayoutLength},
		{"layout too long", []int64{2}, []int{0, 1}, ErrLayoutLength},
		{"index equals rank", []int64{2, 3}, []int{0, 2}, ErrLayoutIndex},
		{"negative index", []int64{2, 3}, []int{-1, 0}, ErrLayoutIndex},
		{"negative extent", []int64{-4, 8}, nil, ErrShapeExtent},
		{"negative extent with bad layout", []int64{-1}, []int{3}, ErrShapeExtent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPortDescriptor(tt.shape, tt.layout)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewPortDescriptor_ScalarIsValid(t *testing.T) {
	d, err := NewPortDescriptor([]int64{}, []int{})
	require.NoError(t, err)
	assert.Empty(t, d.Shape)
	assert.Empty(t, d.Layout)
	assert.NoError(t, d.Validate())
}

func TestPortDescriptor_PermutedLayout(t *testing.T) {
	d := MustPortDescriptor([]int64{8, 16}, []int{1, 0})
	assert.Equal(t, "1,0", d.LayoutKey())
}

func TestPortDescriptor_CloneIsDeep(t *testing.T) {
	d := MustPortDescriptor([]int64{8, 16}, nil)
	c := d.Clone()
	c.Shape[0] = 99
	c.Layout[0] = 1
	assert.Equal(t, int64(8), d.Shape[0])
	assert.Equal(t, 0, d.Layout[0])
}

func TestMustPortDescriptor_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustPortDescriptor([]int64{1}, []int{3})
	})
}
