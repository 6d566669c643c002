package ir

// Buffer is the metadata of a scratch-memory-allocating expression.
//
// Buffers sharing a ClusterID alias one storage region. Defined buffers have a
// statically known shape and a meaningful Offset into the shared scratch
// area; undefined buffers are resolved at execution time.
type Buffer struct {
	ClusterID      int   `json:"cluster_id"`
	Defined        bool  `json:"defined"`
	Offset         int64 `json:"offset"`
	AllocationSize int64 `json:"allocation_size"`
}

// IsDefined reports whether the buffer belongs to a static cluster.
func (b *Buffer) IsDefined() bool { return b.Defined }
