// Package gba provides the machine at the heart of the emulator: the
// object that owns the memory, video, audio, serial and timer units and
// advances them in lockstep with the CPU's cycle counter.
//
// The machine is passive. The CPU interpreter executes until its cycle
// counter reaches the published budget, then calls back into
// processEvents; the machine distributes the consumed cycles to each
// unit, collects each unit's prediction of its next event and publishes
// the minimum as the new budget.
package gba

import (
	"math"

	"github.com/thelolagemann/gomeboy-advance/internal/arm"
	"github.com/thelolagemann/gomeboy-advance/internal/audio"
	"github.com/thelolagemann/gomeboy-advance/internal/irq"
	"github.com/thelolagemann/gomeboy-advance/internal/memory"
	"github.com/thelolagemann/gomeboy-advance/internal/sio"
	"github.com/thelolagemann/gomeboy-advance/internal/timer"
	"github.com/thelolagemann/gomeboy-advance/internal/video"
	"github.com/thelolagemann/gomeboy-advance/pkg/log"
)

// Stack pointer bases for the System, IRQ and Supervisor modes,
// established at reset.
const (
	spBaseSystem     = 0x03FFFF00
	spBaseIRQ        = 0x03FFFFA0
	spBaseSupervisor = 0x03FFFFE0
)

// KeySource supplies the current key state from the host.
type KeySource func() uint16

// GBA is the machine.
type GBA struct {
	CPU    *arm.Core
	Memory *memory.Memory
	Video  *video.Video
	Audio  *audio.Audio
	SIO    *sio.SIO
	Timers *timer.Bank
	IRQ    *irq.Service

	// BIOSChecksum is the CRC-32 of the attached BIOS image.
	BIOSChecksum uint32
	// ROMFingerprint identifies the attached ROM's content.
	ROMFingerprint uint64
	// ActiveFile is the name of the attached ROM file.
	ActiveFile string

	KeySource      KeySource
	RotationSource memory.RotationSource
	Rumble         memory.Rumble

	debugger Debugger
	savefile string
	mixer    audio.Mixer

	log *log.Logger
}

// New returns an uninitialised machine. Call Init with a CPU before
// attaching anything.
func New(opts ...Opt) *GBA {
	g := &GBA{
		log: log.New(log.LevelDefault),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Init binds the machine to its CPU: the interrupt-handler table is
// filled in, every unit is created around the shared register file and
// the cross-unit capabilities are wired.
func (g *GBA) Init(cpu *arm.Core) {
	g.CPU = cpu
	cpu.IRQH = arm.InterruptHandler{
		Reset:         g.reset,
		ProcessEvents: g.processEvents,
		Swi16:         g.swi16,
		Swi32:         g.swi32,
		HitIllegal:    g.hitIllegal,
		ReadCPSR:      g.testIRQ,
		HitStub:       g.hitStub,
	}

	g.Memory = memory.New(cpu, g.log)
	g.IRQ = irq.New(cpu, &g.Memory.IO, g.log)
	g.Memory.AttachIRQ(g.IRQ)

	g.Audio = audio.New(&g.Memory.IO, g.log)
	g.Audio.OnFIFODemand = g.Memory.ServiceFIFODMA
	g.Memory.AttachAudio(g.Audio)
	if g.mixer != nil {
		g.Audio.AttachMixer(g.mixer)
	}

	g.Video = video.New(&g.Memory.IO, g.IRQ, g.log)
	g.Video.OnHBlank = g.Memory.ScheduleHBlankDMAs
	g.Video.OnVBlank = g.Memory.ScheduleVBlankDMAs

	g.Timers = timer.NewBank(cpu, &g.Memory.IO, g.IRQ, g.Audio)
	g.SIO = sio.New(cpu, &g.Memory.IO, g.IRQ, g.log)

	g.BIOSChecksum = checksum(g.Memory.BIOS)
}

// Destroy tears the machine down, releasing every memory mapping and
// closing the audio seam.
func (g *GBA) Destroy() {
	g.Audio.Deinit()
	g.Memory.Deinit()
}

// Log exposes the machine's logger.
func (g *GBA) Log() *log.Logger {
	return g.log
}

// reset establishes the stack pointers for the privileged modes at
// their canonical bases and leaves the CPU in System mode.
func (g *GBA) reset(cpu *arm.Core) {
	cpu.SetPrivilegeMode(arm.ModeIRQ)
	cpu.GPRs[arm.RegSP] = spBaseIRQ
	cpu.SetPrivilegeMode(arm.ModeSupervisor)
	cpu.GPRs[arm.RegSP] = spBaseSupervisor
	cpu.SetPrivilegeMode(arm.ModeSystem)
	cpu.GPRs[arm.RegSP] = spBaseSystem
}

// Reset resets the machine's CPU.
func (g *GBA) Reset() {
	g.reset(g.CPU)
}

// processEvents is the dispatcher sweep. Every unit observes the same
// consumed cycle count; their next-event predictions are folded into
// the CPU's new budget. A halted CPU's clock fast-forwards from event
// to event until an interrupt wakes it.
func (g *GBA) processEvents(cpu *arm.Core) {
	for {
		cycles := cpu.Cycles
		nextEvent := int32(math.MaxInt32)

		if g.IRQ.Spring {
			cpu.RaiseIRQ()
			g.IRQ.Spring = false
		}

		if t := g.Video.ProcessEvents(cycles); t < nextEvent {
			nextEvent = t
		}
		if t := g.Audio.ProcessEvents(cycles); t < nextEvent {
			nextEvent = t
		}
		if t := g.Timers.ProcessEvents(cycles); t < nextEvent {
			nextEvent = t
		}
		if t := g.Memory.RunDMAs(cycles); t < nextEvent {
			nextEvent = t
		}
		if t := g.SIO.ProcessEvents(cycles); t < nextEvent {
			nextEvent = t
		}

		cpu.Cycles -= cycles
		cpu.NextEvent = nextEvent

		if cpu.Halted {
			cpu.Cycles = cpu.NextEvent
		}
		if cpu.Cycles < cpu.NextEvent {
			return
		}
	}
}

// RaiseIRQ latches an interrupt and asserts the CPU's IRQ line when it
// is enabled.
func (g *GBA) RaiseIRQ(i irq.IRQ) {
	g.IRQ.Raise(i)
}

// WriteIE, WriteIME and Halt forward the interrupt register contracts.
func (g *GBA) WriteIE(value uint16) {
	g.IRQ.WriteIE(value)
}

func (g *GBA) WriteIME(value uint16) {
	g.IRQ.WriteIME(value)
}

func (g *GBA) Halt() {
	g.IRQ.Halt()
}

// testIRQ is the CPSR-read callback: pending enabled interrupts are
// re-raised on the next sweep.
func (g *GBA) testIRQ(*arm.Core) {
	g.IRQ.Test()
}

func (g *GBA) swi16(cpu *arm.Core, immediate uint8) {
	g.log.Stubf("BIOS call (16): %02X", immediate)
}

func (g *GBA) swi32(cpu *arm.Core, immediate uint8) {
	g.log.Stubf("BIOS call (32): %02X", immediate)
}

// hitStub handles a known-but-unimplemented opcode. Without a debugger
// attached the machine cannot continue meaningfully.
func (g *GBA) hitStub(cpu *arm.Core, opcode uint32) {
	level := log.LevelFatal
	if g.debugger != nil {
		level = log.LevelStub
		g.debugger.Enter(EnterIllegalOp)
	}
	g.log.Logf(level, "Stub opcode: %08x", opcode)
}

// hitIllegal handles a truly invalid opcode; emulation continues unless
// a debugger wants control.
func (g *GBA) hitIllegal(cpu *arm.Core, opcode uint32) {
	g.log.Warnf("Illegal opcode: %08x", opcode)
	if g.debugger != nil {
		g.debugger.Enter(EnterIllegalOp)
	}
}
