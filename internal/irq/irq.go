// Package irq implements the interrupt controller: the IE, IF and IME
// registers and the logic that drives the CPU's interrupt request line.
package irq

import (
	"github.com/thelolagemann/gomeboy-advance/internal/arm"
	"github.com/thelolagemann/gomeboy-advance/internal/types"
	"github.com/thelolagemann/gomeboy-advance/pkg/log"
)

// IRQ identifies an interrupt source; the value is the source's bit
// position in IE and IF.
type IRQ uint8

const (
	VBlank IRQ = iota
	HBlank
	VCount
	Timer0
	Timer1
	Timer2
	Timer3
	SIO
	DMA0
	DMA1
	DMA2
	DMA3
	Keypad
	Gamepak
)

func (i IRQ) String() string {
	switch i {
	case VBlank:
		return "VBLANK"
	case HBlank:
		return "HBLANK"
	case VCount:
		return "VCOUNT"
	case Timer0, Timer1, Timer2, Timer3:
		return "TIMER" + string(rune('0'+i-Timer0))
	case SIO:
		return "SIO"
	case DMA0, DMA1, DMA2, DMA3:
		return "DMA" + string(rune('0'+i-DMA0))
	case Keypad:
		return "KEYPAD"
	case Gamepak:
		return "GAMEPAK"
	}
	return "IRQ?"
}

// Service owns the interrupt registers in the shared I/O file. IF bits
// are only ever set here; the guest clears them by writing IF through
// the bus.
type Service struct {
	// Spring requests a re-test of the IRQ line on the next dispatcher
	// sweep. Consumed by the machine.
	Spring bool

	cpu *arm.Core
	io  *types.IORegisters
	log *log.Logger
}

// New returns a Service operating on the given register file.
func New(cpu *arm.Core, io *types.IORegisters, l *log.Logger) *Service {
	return &Service{
		cpu: cpu,
		io:  io,
		log: l,
	}
}

// Raise latches the interrupt into IF, wakes a halted CPU and asserts
// the IRQ line when the source is enabled and the master enable is set.
func (s *Service) Raise(irq IRQ) {
	s.io[types.IF>>1] |= 1 << irq
	s.cpu.Halted = false

	if s.io[types.IME>>1] != 0 && s.io[types.IE>>1]&(1<<irq) != 0 {
		s.cpu.RaiseIRQ()
	}
}

// WriteIE installs a new enable mask. Enabling a source whose IF bit is
// already pending fires immediately.
func (s *Service) WriteIE(value uint16) {
	if value&(1<<Keypad) != 0 {
		s.log.Stubf("Keypad interrupts not implemented")
	}
	if value&(1<<Gamepak) != 0 {
		s.log.Stubf("Gamepak interrupts not implemented")
	}

	s.io[types.IE>>1] = value
	if s.io[types.IME>>1] != 0 && value&s.io[types.IF>>1] != 0 {
		s.cpu.RaiseIRQ()
	}
}

// WriteIME installs the master enable. Turning it on with an enabled
// source pending fires immediately.
func (s *Service) WriteIME(value uint16) {
	s.io[types.IME>>1] = value
	if value != 0 && s.io[types.IE>>1]&s.io[types.IF>>1] != 0 {
		s.cpu.RaiseIRQ()
	}
}

// Test is the CPSR-read callback: when an enabled interrupt is pending
// it latches a spring IRQ and collapses the CPU's budget so the next
// sweep raises it.
func (s *Service) Test() {
	if s.io[types.IME>>1] != 0 && s.io[types.IE>>1]&s.io[types.IF>>1] != 0 {
		s.Spring = true
		s.cpu.NextEvent = 0
	}
}

// Halt stops the CPU until the next interrupt and forces an immediate
// sweep so the clock can fast-forward.
func (s *Service) Halt() {
	s.cpu.NextEvent = 0
	s.cpu.Halted = true
}
