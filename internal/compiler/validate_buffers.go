package compiler

import (
	"fmt"

	"github.com/roach88/lowir/internal/ir"
)

// checkBufferClusters verifies the clustering of the whole buffer registry:
// dense ids, one classification per id and one offset per static cluster.
// Buffers inside [begin, end) without metadata are left to their self-check.
func checkBufferClusters(buffers []*ir.Expression, begin, end int) []ValidationError {
	static := make(map[int][]*ir.Expression)
	dynamic := make(map[int][]*ir.Expression)
	ids := make(map[int]bool)

	var errs []ValidationError
	for _, b := range buffers {
		if b.Buffer == nil {
			if i := b.Index(); i < begin || i >= end {
				errs = append(errs, exprError(ErrSelfCheck, b, "Buffer has no buffer metadata"))
			}
			continue
		}
		id := b.Buffer.ClusterID
		ids[id] = true
		if b.Buffer.IsDefined() {
			static[id] = append(static[id], b)
		} else {
			dynamic[id] = append(dynamic[id], b)
		}
	}

	if len(ids) != len(static)+len(dynamic) {
		errs = append(errs, unitError(ErrClusterCount,
			"distinct cluster ids do not match static plus dynamic clusters").
			want(len(ids), len(static)+len(dynamic)))
	}

	sorted := sortedKeys(ids)
	for i, id := range sorted {
		if id != i {
			errs = append(errs, unitError(ErrClusterDensity, "cluster ids are not dense").
				withCluster(id).want(rangeString(len(sorted)), fmt.Sprint(sorted)))
			break
		}
	}

	for _, id := range sortedKeys(static) {
		if dyn, ok := dynamic[id]; ok {
			first := dyn[0]
			errs = append(errs, exprError(ErrClusterMixed, first,
				"cluster %d has both static and dynamic buffers", id).withCluster(id))
		}
	}

	for _, id := range sortedKeys(static) {
		members := static[id]
		if len(members) == 0 {
			errs = append(errs, unitError(ErrClusterEmpty, "static cluster %d is empty", id).withCluster(id))
			continue
		}
		offset := members[0].Buffer.Offset
		for _, m := range members[1:] {
			if m.Buffer.Offset != offset {
				errs = append(errs, exprError(ErrClusterOffset, m,
					"offset differs from %s in static cluster %d", members[0].Name, id).
					withCluster(id).want(offset, m.Buffer.Offset))
			}
		}
	}
	return errs
}
