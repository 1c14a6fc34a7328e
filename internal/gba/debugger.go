package gba

import "github.com/thelolagemann/gomeboy-advance/pkg/log"

// EnterReason tells an attached debugger why control transferred to it.
type EnterReason int

const (
	EnterManual EnterReason = iota
	EnterIllegalOp
)

// Debugger observes the machine; it gains control on illegal and stub
// opcodes.
type Debugger interface {
	Enter(reason EnterReason)
}

// AttachDebugger installs a debugger on a running machine.
func (g *GBA) AttachDebugger(d Debugger) {
	g.debugger = d
}

// DetachDebugger removes the attached debugger.
func (g *GBA) DetachDebugger() {
	g.debugger = nil
}

// DebugLevel is the level scale debugger front-ends log at.
type DebugLevel int

const (
	DebugLevelDebug DebugLevel = iota
	DebugLevelInfo
	DebugLevelWarn
	DebugLevelError
)

// DebuggerLogf translates a debugger-originated message onto the
// machine's log levels. A nil machine resolves through the emulator
// thread context.
func DebuggerLogf(g *GBA, level DebugLevel, format string, args ...interface{}) {
	core := log.LevelDebug
	switch level {
	case DebugLevelInfo:
		core = log.LevelInfo
	case DebugLevelWarn:
		core = log.LevelWarn
	case DebugLevelError:
		core = log.LevelError
	}
	Logf(g, core, format, args...)
}
