package hooking

import (
	"fmt"
	"log"
)

// LogHook prints one line per resolution step.
type LogHook struct {
	*log.Logger
}

// NewLogHook creates a LogHook that writes to the given logger.
func NewLogHook(logger *log.Logger) *LogHook {
	return &LogHook{Logger: logger}
}

// Func prints the hook context.
func (h *LogHook) Func(ctx HookCtx) {
	where := "?"
	if ctx.Domain != nil {
		where = ctx.Domain.Name()
	}

	if ctx.Detail == nil {
		h.Printf("[%s] %s: %v", where, ctx.Pos.Name, ctx.Item)
		return
	}

	h.Printf("[%s] %s: %v (%s)", where, ctx.Pos.Name, ctx.Item,
		fmt.Sprint(ctx.Detail))
}
