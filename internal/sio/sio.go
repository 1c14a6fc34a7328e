// Package sio models the serial I/O unit at the fidelity the rest of
// the machine needs: normal-mode transfers complete after their bit
// time and raise the serial interrupt; the link modes games use for
// multiplayer are stubbed and logged.
package sio

import (
	"math"

	"github.com/thelolagemann/gomeboy-advance/internal/arm"
	"github.com/thelolagemann/gomeboy-advance/internal/irq"
	"github.com/thelolagemann/gomeboy-advance/internal/types"
	"github.com/thelolagemann/gomeboy-advance/pkg/log"
)

const (
	// Cycles per transferred bit at the two internal clock rates.
	cyclesPerBit256KHz = 64
	cyclesPerBit2MHz   = 8
)

// SIOCNT bits, normal mode.
const (
	cntInternalClock = types.Bit0
	cntClock2MHz     = types.Bit1
	cntStart         = types.Bit7
	cntTransfer32    = types.Bit12
	cntIRQ           = types.Bit14
)

// SIO is the serial unit.
type SIO struct {
	// nextEvent counts down to the completion of an in-flight
	// transfer; MaxInt32 when the line is idle.
	nextEvent int32

	cpu *arm.Core
	io  *types.IORegisters
	irq *irq.Service
	log *log.Logger
}

// New returns an idle serial unit.
func New(cpu *arm.Core, io *types.IORegisters, irqs *irq.Service, l *log.Logger) *SIO {
	return &SIO{
		nextEvent: math.MaxInt32,
		cpu:       cpu,
		io:        io,
		irq:       irqs,
		log:       l,
	}
}

// ProcessEvents completes any due transfer and returns the cycles until
// the in-flight one finishes.
func (s *SIO) ProcessEvents(cycles int32) int32 {
	if s.nextEvent == math.MaxInt32 {
		return s.nextEvent
	}
	s.nextEvent -= cycles
	if s.nextEvent <= 0 {
		s.io[types.SIOCNT>>1] &^= cntStart
		if s.io[types.SIOCNT>>1]&cntIRQ != 0 {
			s.irq.Raise(irq.SIO)
		}
		s.nextEvent = math.MaxInt32
	}
	return s.nextEvent
}

// WriteRCNT stores the mode register. The general-purpose and JOY
// modes it can select are not implemented.
func (s *SIO) WriteRCNT(value uint16) {
	s.io[types.RCNT>>1] = value
	if value&0xC000 != 0 {
		s.log.Stubf("SIO mode switch via RCNT not implemented: %04X", value)
	}
}

// WriteSIOCNT starts a transfer in normal mode. Without an internal
// clock the transfer would be driven by a link partner; with no partner
// attached it never completes, which matches an unplugged cable.
func (s *SIO) WriteSIOCNT(value uint16) {
	s.io[types.SIOCNT>>1] = value

	if value&cntStart == 0 {
		s.nextEvent = math.MaxInt32
		return
	}
	if value&cntInternalClock == 0 {
		s.log.Stubf("SIO external clock transfer not implemented")
		return
	}

	bits := int32(8)
	if value&cntTransfer32 != 0 {
		bits = 32
	}
	perBit := int32(cyclesPerBit256KHz)
	if value&cntClock2MHz != 0 {
		perBit = cyclesPerBit2MHz
	}
	s.nextEvent = s.cpu.Cycles + bits*perBit
	if s.nextEvent < s.cpu.NextEvent {
		s.cpu.NextEvent = s.nextEvent
	}
}
