// Package video keeps the LCD controller's clock: the HDraw/HBlank
// cadence, the scanline counter and the interrupts and DMA triggers that
// hang off them. Producing pixels is a front-end concern; only the
// timing a game can observe is modelled here.
package video

import (
	"github.com/thelolagemann/gomeboy-advance/internal/irq"
	"github.com/thelolagemann/gomeboy-advance/internal/types"
	"github.com/thelolagemann/gomeboy-advance/pkg/log"
)

const (
	// HDrawCycles and HBlankCycles partition one 1232-cycle scanline.
	HDrawCycles  = 1006
	HBlankCycles = 226

	// VerticalPixels is the number of visible scanlines; VerticalTotal
	// includes the VBlank lines.
	VerticalPixels = 160
	VerticalTotal  = 228
)

// DISPSTAT bits.
const (
	statInVBlank    = types.Bit0
	statInHBlank    = types.Bit1
	statVCounter    = types.Bit2
	statVBlankIRQ   = types.Bit3
	statHBlankIRQ   = types.Bit4
	statVCounterIRQ = types.Bit5
)

// Video is the LCD timing unit.
type Video struct {
	// Frames counts completed frames since init.
	Frames uint64

	// OnHBlank and OnVBlank let the memory unit schedule its
	// blanking-triggered DMAs. Installed by the machine.
	OnHBlank func()
	OnVBlank func()

	vcount    uint16
	inHblank  bool
	nextEvent int32

	io  *types.IORegisters
	irq *irq.Service
	log *log.Logger
}

// New returns a video unit at the top of the frame.
func New(io *types.IORegisters, irqs *irq.Service, l *log.Logger) *Video {
	return &Video{
		nextEvent: HDrawCycles,
		io:        io,
		irq:       irqs,
		log:       l,
	}
}

// VCount reports the current scanline.
func (v *Video) VCount() uint16 {
	return v.vcount
}

// ProcessEvents advances the scanline clock and returns the cycles until
// the next HDraw/HBlank transition.
func (v *Video) ProcessEvents(cycles int32) int32 {
	v.nextEvent -= cycles
	for v.nextEvent <= 0 {
		if !v.inHblank {
			v.enterHblank()
		} else {
			v.nextLine()
		}
	}
	return v.nextEvent
}

func (v *Video) enterHblank() {
	v.inHblank = true
	v.nextEvent += HBlankCycles
	v.io[types.DISPSTAT>>1] |= statInHBlank
	if v.io[types.DISPSTAT>>1]&statHBlankIRQ != 0 {
		v.irq.Raise(irq.HBlank)
	}
	if v.vcount < VerticalPixels && v.OnHBlank != nil {
		v.OnHBlank()
	}
}

func (v *Video) nextLine() {
	v.inHblank = false
	v.nextEvent += HDrawCycles
	v.io[types.DISPSTAT>>1] &^= statInHBlank

	v.vcount++
	if v.vcount == VerticalTotal {
		v.vcount = 0
	}
	v.io[types.VCOUNT>>1] = v.vcount

	stat := v.io[types.DISPSTAT>>1]
	if v.vcount == stat>>8 {
		v.io[types.DISPSTAT>>1] |= statVCounter
		if stat&statVCounterIRQ != 0 {
			v.irq.Raise(irq.VCount)
		}
	} else {
		v.io[types.DISPSTAT>>1] &^= statVCounter
	}

	switch v.vcount {
	case VerticalPixels:
		v.io[types.DISPSTAT>>1] |= statInVBlank
		if stat&statVBlankIRQ != 0 {
			v.irq.Raise(irq.VBlank)
		}
		if v.OnVBlank != nil {
			v.OnVBlank()
		}
		v.Frames++
	case VerticalTotal - 1:
		v.io[types.DISPSTAT>>1] &^= statInVBlank
	}
}
