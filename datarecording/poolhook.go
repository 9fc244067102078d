package datarecording

import (
	"github.com/kunleulysses/August9teen-sub020/spiralmem"
)

const (
	allocationsTable = "allocations"
	releasesTable    = "releases"
	collectionsTable = "collections"
)

type allocationEntry struct {
	ID             string
	Kind           string
	LogicalSize    int64
	Turns          int64
	ResonanceLevel float64
	Timestamp      int64
}

type releaseEntry struct {
	ID          string
	Kind        string
	LogicalSize int64
	Method      string
	Timestamp   int64
}

type collectionEntry struct {
	CollectedCount int64
	FailedCount    int64
	Reoptimized    int64
	Timestamp      int64
}

// A PoolHook records every completed manager operation into a DataRecorder.
// Register it on a Manager with AcceptHook before the manager is shared.
type PoolHook struct {
	backend DataRecorder
}

// NewPoolHook creates the hook and its backing tables.
func NewPoolHook(backend DataRecorder) *PoolHook {
	backend.CreateTable(allocationsTable, allocationEntry{})
	backend.CreateTable(releasesTable, releaseEntry{})
	backend.CreateTable(collectionsTable, collectionEntry{})

	return &PoolHook{backend: backend}
}

// Pos places the hook at every position.
func (h *PoolHook) Pos() spiralmem.HookPos {
	return spiralmem.HookPosAny
}

// Func dispatches the operation outcome to the matching table.
func (h *PoolHook) Func(ctx spiralmem.HookCtx) {
	switch ctx.Pos {
	case spiralmem.HookPosAfterAllocate:
		h.backend.InsertData(allocationsTable, allocationEntry{
			ID:             ctx.Pool.ID,
			Kind:           ctx.Pool.Kind,
			LogicalSize:    ctx.Pool.LogicalSize,
			Turns:          int64(ctx.Pool.Turns),
			ResonanceLevel: ctx.Pool.ResonanceLevel,
			Timestamp:      ctx.Now.UnixMilli(),
		})
	case spiralmem.HookPosAfterDeallocate:
		h.backend.InsertData(releasesTable, releaseEntry{
			ID:          ctx.Pool.ID,
			Kind:        ctx.Pool.Kind,
			LogicalSize: ctx.Pool.LogicalSize,
			Method:      ctx.Method.String(),
			Timestamp:   ctx.Now.UnixMilli(),
		})
	case spiralmem.HookPosAfterGC:
		h.backend.InsertData(collectionsTable, collectionEntry{
			CollectedCount: int64(ctx.Report.CollectedCount),
			FailedCount:    int64(len(ctx.Report.Failed)),
			Reoptimized:    int64(ctx.Report.Reoptimized),
			Timestamp:      ctx.Now.UnixMilli(),
		})
	}
}
