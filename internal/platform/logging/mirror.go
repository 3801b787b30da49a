package logging

import (
	"context"
	"sync/atomic"
)

// MirrorFunc receives log entries for forwarding to a secondary sink.
type MirrorFunc func(ctx context.Context, level Level, msg string, args ...any)

var mirrorFunc atomic.Pointer[MirrorFunc]

// SetMirror registers fn as the global log mirror; passing nil clears it.
func SetMirror(fn MirrorFunc) {
	if fn == nil {
		mirrorFunc.Store(nil)
		return
	}
	mirrorFunc.Store(&fn)
}
