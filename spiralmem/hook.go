package spiralmem

import "time"

// HookPos tells a hook which manager operation just completed.
type HookPos int

// The hooking positions of the Manager.
const (
	HookPosAny HookPos = iota
	HookPosAfterAllocate
	HookPosAfterDeallocate
	HookPosAfterGC
)

// HookCtx carries the outcome of an operation to a hook. Pool and Report are
// copies; mutating them has no effect on the registry.
type HookCtx struct {
	Pos    HookPos
	Now    time.Time
	Pool   Pool          // set at AfterAllocate and AfterDeallocate
	Method CleanupMethod // set at AfterDeallocate
	Report *GCReport     // set at AfterGC
}

// A Hook observes completed manager operations. Hooks run outside the
// registry lock on the calling goroutine; they must not block for long and
// must not call back into mutating Manager operations.
type Hook interface {
	// Pos determines when the hook fires. HookPosAny fires on everything.
	Pos() HookPos

	// Func is invoked with the operation outcome.
	Func(ctx HookCtx)
}

type hookableBase struct {
	hooks []Hook
}

// AcceptHook registers a hook. Registration is not synchronized with
// in-flight operations; hook all observers before the manager is shared.
func (h *hookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

func (h *hookableBase) invokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		if hook.Pos() == HookPosAny || hook.Pos() == ctx.Pos {
			hook.Func(ctx)
		}
	}
}
