// Package timer models the four cascadable hardware timers. Timers are
// not stepped per cycle; each running timer keeps a countdown to its
// next overflow and the bank settles all overflows in one sweep when the
// machine dispatches events. The counter value a game reads is
// materialized lazily from the time elapsed since the last overflow.
package timer

import (
	"math"

	"github.com/thelolagemann/gomeboy-advance/internal/arm"
	"github.com/thelolagemann/gomeboy-advance/internal/audio"
	"github.com/thelolagemann/gomeboy-advance/internal/irq"
	"github.com/thelolagemann/gomeboy-advance/internal/types"
)

// Timer holds one channel's state.
type Timer struct {
	Enable  bool
	CountUp bool
	DoIRQ   bool

	// PrescaleBits is the power-of-two divider applied to the master
	// clock: 0, 6, 8 or 10.
	PrescaleBits uint8

	Reload uint16
	// OldReload is the reload latched at the last overflow; the visible
	// counter is derived from it.
	OldReload uint16

	// OverflowInterval is (0x10000-Reload)<<PrescaleBits, the cycles
	// between overflows of a running non-cascade timer.
	OverflowInterval int32

	// NextEvent counts down to the next overflow. A cascading timer
	// parks at MaxInt32 between upstream overflows.
	NextEvent int32
	// LastEvent is the instant of the most recent overflow relative to
	// the current sweep; it goes negative as sweeps subtract from it.
	LastEvent int32
}

// Bank is the set of four timers sharing the cycle clock.
type Bank struct {
	timers [4]Timer
	// enabled mirrors each timer's Enable bit; bit i set iff timer i
	// is running.
	enabled uint8

	cpu   *arm.Core
	io    *types.IORegisters
	irq   *irq.Service
	audio *audio.Audio
}

// NewBank returns a bank wired to the CPU clock, the register file, the
// interrupt service and the audio FIFOs it pumps on overflow.
func NewBank(cpu *arm.Core, io *types.IORegisters, irqs *irq.Service, a *audio.Audio) *Bank {
	return &Bank{
		cpu:   cpu,
		io:    io,
		irq:   irqs,
		audio: a,
	}
}

// Timer exposes a channel's state.
func (b *Bank) Timer(t int) *Timer {
	return &b.timers[t]
}

// EnabledMask reports which timers are running, one bit per timer.
func (b *Bank) EnabledMask() uint8 {
	return b.enabled
}

func counterReg(t int) int {
	return (types.TM0CNT_LO + t<<2) >> 1
}

// ProcessEvents settles all overflows that occurred in the last cycles
// ticks and returns the cycles until the earliest upcoming overflow.
func (b *Bank) ProcessEvents(cycles int32) int32 {
	nextEvent := int32(math.MaxInt32)
	if b.enabled == 0 {
		return nextEvent
	}

	for t := 0; t < 4; t++ {
		timer := &b.timers[t]
		if !timer.Enable {
			continue
		}
		timer.NextEvent -= cycles
		timer.LastEvent -= cycles
		if timer.NextEvent <= 0 {
			// carry the slack so the next overflow lands on time
			timer.LastEvent = timer.NextEvent
			timer.NextEvent += timer.OverflowInterval
			b.io[counterReg(t)] = timer.Reload
			timer.OldReload = timer.Reload

			if timer.DoIRQ {
				b.irq.Raise(irq.Timer0 + irq.IRQ(t))
			}

			if t < 2 && b.audio.Enable {
				if (b.audio.ChALeft || b.audio.ChARight) && b.audio.ChATimer == t {
					b.audio.SampleFIFO(0, timer.LastEvent)
				}
				if (b.audio.ChBLeft || b.audio.ChBRight) && b.audio.ChBTimer == t {
					b.audio.SampleFIFO(1, timer.LastEvent)
				}
			}

			if timer.CountUp {
				timer.NextEvent = math.MaxInt32
			}

			if t < 3 {
				next := &b.timers[t+1]
				if next.CountUp {
					b.io[counterReg(t+1)]++
					if b.io[counterReg(t+1)] == 0 {
						// wrapped: fire the downstream timer this sweep
						next.NextEvent = 0
					}
				}
			}
		}
		if timer.NextEvent < nextEvent {
			nextEvent = timer.NextEvent
		}
	}
	return nextEvent
}

// WriteReload latches a new reload value. The running state and the
// current overflow schedule are untouched; the value is latched into the
// counter at the next overflow or enable. The overflow interval is only
// recomputed by WriteControl.
func (b *Bank) WriteReload(t int, reload uint16) {
	b.timers[t].Reload = reload
}

// WriteControl decodes a control-word write and reschedules the timer
// across the enable transition.
func (b *Bank) WriteControl(t int, control uint16) {
	timer := &b.timers[t]
	b.UpdateRegister(t)

	oldPrescale := timer.PrescaleBits
	switch control & 0x3 {
	case 0x0:
		timer.PrescaleBits = 0
	case 0x1:
		timer.PrescaleBits = 6
	case 0x2:
		timer.PrescaleBits = 8
	case 0x3:
		timer.PrescaleBits = 10
	}
	// timer 0 has no upstream timer; its cascade bit is inert
	timer.CountUp = control&types.Bit2 != 0 && t != 0
	timer.DoIRQ = control&types.Bit6 != 0
	timer.OverflowInterval = (0x10000 - int32(timer.Reload)) << timer.PrescaleBits
	wasEnabled := timer.Enable
	timer.Enable = control&types.Bit7 != 0

	switch {
	case !wasEnabled && timer.Enable:
		if !timer.CountUp {
			timer.NextEvent = b.cpu.Cycles + timer.OverflowInterval
		} else {
			timer.NextEvent = math.MaxInt32
		}
		b.io[counterReg(t)] = timer.Reload
		timer.OldReload = timer.Reload
		timer.LastEvent = 0
		b.enabled |= 1 << t
	case wasEnabled && !timer.Enable:
		if !timer.CountUp {
			b.io[counterReg(t)] = timer.OldReload + uint16((b.cpu.Cycles-timer.LastEvent)>>oldPrescale)
		}
		b.enabled &^= 1 << t
	case timer.PrescaleBits != oldPrescale && !timer.CountUp:
		// may land in the past; the next sweep treats that as an
		// immediate overflow
		timer.NextEvent = timer.LastEvent + timer.OverflowInterval
	}

	if timer.NextEvent < b.cpu.NextEvent {
		b.cpu.NextEvent = timer.NextEvent
	}
}

// UpdateRegister materializes the visible counter word for a running
// non-cascade timer.
func (b *Bank) UpdateRegister(t int) {
	timer := &b.timers[t]
	if timer.Enable && !timer.CountUp {
		b.io[counterReg(t)] = timer.OldReload + uint16((b.cpu.Cycles-timer.LastEvent)>>timer.PrescaleBits)
	}
}
