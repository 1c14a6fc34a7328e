package gba

import (
	"sync"

	"github.com/thelolagemann/gomeboy-advance/pkg/log"
	"golang.org/x/sys/unix"
)

// contexts maps an OS thread to the machine it is currently driving,
// so logging without an explicit machine still reaches the right one.
var (
	contextsMu sync.Mutex
	contexts   = map[int]*GBA{}
)

// AttachContext registers the calling thread as g's emulator thread.
// The caller must have locked itself to its OS thread for the mapping
// to stay valid.
func AttachContext(g *GBA) {
	contextsMu.Lock()
	contexts[unix.Gettid()] = g
	contextsMu.Unlock()
}

// DetachContext clears the calling thread's registration.
func DetachContext() {
	contextsMu.Lock()
	delete(contexts, unix.Gettid())
	contextsMu.Unlock()
}

func currentContext() *GBA {
	contextsMu.Lock()
	defer contextsMu.Unlock()
	return contexts[unix.Gettid()]
}

// fallbackLogger handles messages arriving before any machine exists.
var fallbackLogger = log.New(log.LevelDefault)

// Logf logs against a machine. A nil machine resolves through the
// emulator thread context.
func Logf(g *GBA, level log.Level, format string, args ...interface{}) {
	if g == nil {
		g = currentContext()
	}
	if g == nil {
		fallbackLogger.Logf(level, format, args...)
		return
	}
	g.log.Logf(level, format, args...)
}
