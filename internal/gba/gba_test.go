package gba

import (
	"runtime"
	"testing"

	"github.com/thelolagemann/gomeboy-advance/internal/arm"
	"github.com/thelolagemann/gomeboy-advance/internal/irq"
	"github.com/thelolagemann/gomeboy-advance/internal/types"
	"github.com/thelolagemann/gomeboy-advance/pkg/log"
)

func newTestGBA() *GBA {
	g := New(WithLogLevel(0))
	g.Init(arm.NewCore())
	return g
}

func TestInterruptHandlerTable(t *testing.T) {
	g := newTestGBA()
	h := g.CPU.IRQH
	if h.Reset == nil || h.ProcessEvents == nil || h.Swi16 == nil || h.Swi32 == nil ||
		h.HitIllegal == nil || h.ReadCPSR == nil || h.HitStub == nil {
		t.Fatal("expected every handler slot filled at init")
	}
}

func TestDispatcherTerminates(t *testing.T) {
	g := newTestGBA()
	cpu := g.CPU

	for _, cycles := range []int32{0, 1, 1006, 1232, 100000, 1234567} {
		cpu.Cycles = cycles
		g.processEvents(cpu)
		if cpu.Cycles >= cpu.NextEvent {
			t.Fatalf("after dispatching %d: cycles %d >= next event %d", cycles, cpu.Cycles, cpu.NextEvent)
		}
	}
}

func TestHaltFastForwardsToWake(t *testing.T) {
	g := newTestGBA()
	cpu := g.CPU
	io := &g.Memory.IO

	io[types.IE>>1] = 1 << irq.VBlank
	io[types.IME>>1] = 1
	io[types.DISPSTAT>>1] = types.Bit3 // VBlank IRQ enable

	g.Halt()
	if !cpu.Halted || cpu.NextEvent != 0 {
		t.Fatal("expected halt to collapse the budget")
	}

	g.processEvents(cpu)

	if cpu.Halted {
		t.Error("expected VBlank to wake the CPU")
	}
	if !cpu.IRQLine {
		t.Error("expected IRQ line asserted on wake")
	}
	if io[types.IF>>1]&(1<<irq.VBlank) == 0 {
		t.Error("expected VBlank latched in IF")
	}
	if cpu.Cycles >= cpu.NextEvent {
		t.Errorf("expected dispatcher settled: cycles %d, next %d", cpu.Cycles, cpu.NextEvent)
	}
}

func TestSpringIRQ(t *testing.T) {
	g := newTestGBA()
	cpu := g.CPU
	io := &g.Memory.IO

	io[types.IE>>1] = 1 << irq.Timer2
	io[types.IF>>1] = 1 << irq.Timer2
	io[types.IME>>1] = 1

	// the CPSR-read callback only latches; nothing fires yet
	cpu.IRQH.ReadCPSR(cpu)
	if !g.IRQ.Spring {
		t.Fatal("expected spring latch set")
	}
	if cpu.NextEvent != 0 {
		t.Fatal("expected budget collapsed for an immediate sweep")
	}
	if cpu.IRQLine {
		t.Fatal("expected IRQ line untouched until the sweep")
	}

	cpu.Cycles = 0
	g.processEvents(cpu)
	if !cpu.IRQLine {
		t.Error("expected sweep to raise the IRQ line")
	}
	if g.IRQ.Spring {
		t.Error("expected spring latch cleared")
	}
}

func TestSpringIRQNotLatchedWhenMasked(t *testing.T) {
	g := newTestGBA()
	io := &g.Memory.IO

	io[types.IE>>1] = 1 << irq.Timer2
	io[types.IF>>1] = 1 << irq.SIO
	io[types.IME>>1] = 1

	g.CPU.IRQH.ReadCPSR(g.CPU)
	if g.IRQ.Spring {
		t.Error("expected no spring latch without an enabled pending source")
	}
}

func TestResetEstablishesStackPointers(t *testing.T) {
	g := newTestGBA()
	cpu := g.CPU

	g.Reset()

	if mode := cpu.Mode(); mode != arm.ModeSystem {
		t.Fatalf("expected System mode after reset, got %02X", uint32(mode))
	}
	if got := cpu.GPRs[arm.RegSP]; got != spBaseSystem {
		t.Errorf("system SP = %08X, want %08X", uint32(got), spBaseSystem)
	}
	cpu.SetPrivilegeMode(arm.ModeIRQ)
	if got := cpu.GPRs[arm.RegSP]; got != spBaseIRQ {
		t.Errorf("irq SP = %08X, want %08X", uint32(got), spBaseIRQ)
	}
	cpu.SetPrivilegeMode(arm.ModeSupervisor)
	if got := cpu.GPRs[arm.RegSP]; got != spBaseSupervisor {
		t.Errorf("supervisor SP = %08X, want %08X", uint32(got), spBaseSupervisor)
	}
}

type recordingDebugger struct {
	entered []EnterReason
}

func (d *recordingDebugger) Enter(reason EnterReason) {
	d.entered = append(d.entered, reason)
}

func TestHitStubEntersDebugger(t *testing.T) {
	g := newTestGBA()
	d := &recordingDebugger{}
	g.AttachDebugger(d)

	var captured []log.Level
	g.log.Handler = func(level log.Level, message string) {
		captured = append(captured, level)
	}

	g.CPU.IRQH.HitStub(g.CPU, 0xE1234567)

	if len(d.entered) != 1 || d.entered[0] != EnterIllegalOp {
		t.Fatalf("expected one illegal-op debugger entry, got %v", d.entered)
	}
	if len(captured) != 1 || captured[0] != log.LevelStub {
		t.Errorf("expected stub-level log with debugger attached, got %v", captured)
	}
}

func TestHitIllegal(t *testing.T) {
	g := newTestGBA()

	var captured []log.Level
	g.log.Handler = func(level log.Level, message string) {
		captured = append(captured, level)
	}

	// without a debugger emulation continues
	g.CPU.IRQH.HitIllegal(g.CPU, 0xFFFFFFFF)
	if len(captured) != 1 || captured[0] != log.LevelWarn {
		t.Fatalf("expected warn-level log, got %v", captured)
	}

	d := &recordingDebugger{}
	g.AttachDebugger(d)
	g.CPU.IRQH.HitIllegal(g.CPU, 0xFFFFFFFF)
	if len(d.entered) != 1 || d.entered[0] != EnterIllegalOp {
		t.Errorf("expected debugger entry, got %v", d.entered)
	}
}

func TestDebuggerLogShim(t *testing.T) {
	g := newTestGBA()

	var captured []log.Level
	g.log.Handler = func(level log.Level, message string) {
		captured = append(captured, level)
	}

	DebuggerLogf(g, DebugLevelDebug, "d")
	DebuggerLogf(g, DebugLevelInfo, "i")
	DebuggerLogf(g, DebugLevelWarn, "w")
	DebuggerLogf(g, DebugLevelError, "e")

	want := []log.Level{log.LevelDebug, log.LevelInfo, log.LevelWarn, log.LevelError}
	if len(captured) != len(want) {
		t.Fatalf("captured %d messages, want %d", len(captured), len(want))
	}
	for i := range want {
		if captured[i] != want[i] {
			t.Errorf("message %d at level %v, want %v", i, captured[i], want[i])
		}
	}
}

func TestLogfResolvesThreadContext(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	g := newTestGBA()

	var captured []string
	g.log.Handler = func(level log.Level, message string) {
		captured = append(captured, message)
	}

	AttachContext(g)
	defer DetachContext()

	Logf(nil, log.LevelInfo, "routed %s", "here")
	if len(captured) != 1 || captured[0] != "routed here" {
		t.Errorf("expected context-resolved log, got %v", captured)
	}
}

func TestTimerWritePullsBudgetIn(t *testing.T) {
	g := newTestGBA()
	cpu := g.CPU

	cpu.Cycles = 0
	g.processEvents(cpu) // establish a video-driven budget
	budget := cpu.NextEvent

	g.Timers.WriteReload(0, 0xFFFF)
	g.Timers.WriteControl(0, 0x80)
	if cpu.NextEvent >= budget {
		t.Errorf("expected budget pulled in below %d, got %d", budget, cpu.NextEvent)
	}
}
