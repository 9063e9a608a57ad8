// Package hooking lets observers follow the resolution steps of the
// generators without the generators knowing who listens.
package hooking

// HookPos names a resolution step that hooks can observe.
type HookPos struct {
	Name string
}

// HookCtx describes one resolution step.
type HookCtx struct {
	// Domain is the generator that reached the step.
	Domain Hookable

	// Pos identifies the step.
	Pos *HookPos

	// Item carries the subject of the step (a clock domain, a constraint, a
	// wired block).
	Item any

	// Detail holds optional auxiliary data and may be nil.
	Detail any
}

// Hookable is a named generator that reports its steps to hooks.
type Hookable interface {
	Name() string

	// AcceptHook registers a hook. Hooks are registered before resolution
	// starts and stay for the lifetime of the object.
	AcceptHook(hook Hook)

	// InvokeHook reports a step to every registered hook, in registration
	// order.
	InvokeHook(ctx HookCtx)
}

// Hook observes resolution steps.
type Hook interface {
	Func(ctx HookCtx)
}

// HookableBase keeps the hooks of a generator. Generators embed it and add
// their own Name.
type HookableBase struct {
	hooks []Hook
}

// NewHookableBase creates a HookableBase without hooks.
func NewHookableBase() *HookableBase {
	return &HookableBase{}
}

// AcceptHook registers a hook. Registering the same hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	for _, registered := range h.hooks {
		if registered == hook {
			panic("duplicated hook")
		}
	}

	h.hooks = append(h.hooks, hook)
}

// InvokeHook reports a step to the registered hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
