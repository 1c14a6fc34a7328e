package memory

import (
	"math"

	"github.com/thelolagemann/gomeboy-advance/internal/irq"
	"github.com/thelolagemann/gomeboy-advance/internal/types"
)

// DMA control field values.
const (
	dmaIncrement = iota
	dmaDecrement
	dmaFixed
	dmaIncrementReload
)

const (
	dmaTimingNow = iota
	dmaTimingVBlank
	dmaTimingHBlank
	dmaTimingCustom
)

// fifoAddressA and fifoAddressB are the fixed destinations a
// custom-timing channel serves sample data to.
const (
	fifoAddressA = 0x040000A0
	fifoAddressB = 0x040000A4
)

// DMA is one of the four transfer channels.
type DMA struct {
	Source uint32
	Dest   uint32
	Count  uint32

	destControl int
	srcControl  int
	repeat      bool
	word32      bool
	timing      int
	doIRQ       bool
	Enable      bool

	// nextEvent counts down to the pending transfer; an idle channel
	// parks at MaxInt32.
	nextEvent  int32
	nextSource uint32
	nextDest   uint32
	nextCount  uint32
}

func (d *DMA) reset() {
	d.nextEvent = math.MaxInt32
}

func dmaCountMax(ch int) uint32 {
	if ch == 3 {
		return 0x10000
	}
	return 0x4000
}

// WriteDMASAD through WriteDMACNT_HI are the channel register write
// contracts.
func (m *Memory) WriteDMASAD(ch int, value uint32) {
	m.dma[ch].Source = value & 0x0FFFFFFE
}

func (m *Memory) WriteDMADAD(ch int, value uint32) {
	m.dma[ch].Dest = value & 0x0FFFFFFE
}

func (m *Memory) WriteDMACNT_LO(ch int, count uint16) {
	d := &m.dma[ch]
	d.Count = uint32(count)
	if d.Count == 0 {
		d.Count = dmaCountMax(ch)
	}
}

func (m *Memory) WriteDMACNT_HI(ch int, control uint16) {
	d := &m.dma[ch]
	wasEnabled := d.Enable

	d.destControl = int(control >> 5 & 0x3)
	d.srcControl = int(control >> 7 & 0x3)
	d.repeat = control&types.Bit9 != 0
	d.word32 = control&types.Bit10 != 0
	d.timing = int(control >> 12 & 0x3)
	d.doIRQ = control&types.Bit14 != 0
	d.Enable = control&types.Bit15 != 0
	m.IO[(types.DMA0CNT_HI+ch*12)>>1] = control

	if !wasEnabled && d.Enable {
		d.nextSource = d.Source
		d.nextDest = d.Dest
		d.nextCount = d.Count
		if d.timing == dmaTimingNow {
			m.scheduleDMA(d)
		} else {
			d.nextEvent = math.MaxInt32
		}
	} else if !d.Enable {
		d.nextEvent = math.MaxInt32
	}
}

// scheduleDMA arms a channel to run on the current sweep.
func (m *Memory) scheduleDMA(d *DMA) {
	d.nextEvent = m.cpu.Cycles
	if d.nextEvent < m.cpu.NextEvent {
		m.cpu.NextEvent = d.nextEvent
	}
}

// ScheduleHBlankDMAs and ScheduleVBlankDMAs arm the channels waiting on
// the corresponding blanking period. Wired to the video unit.
func (m *Memory) ScheduleHBlankDMAs() {
	for ch := range m.dma {
		d := &m.dma[ch]
		if d.Enable && d.timing == dmaTimingHBlank {
			m.scheduleDMA(d)
		}
	}
}

func (m *Memory) ScheduleVBlankDMAs() {
	for ch := range m.dma {
		d := &m.dma[ch]
		if d.Enable && d.timing == dmaTimingVBlank {
			m.scheduleDMA(d)
		}
	}
}

// ServiceFIFODMA feeds four words into the given FIFO channel from the
// custom-timing channel targeting it. Wired to the audio unit's demand
// callback.
func (m *Memory) ServiceFIFODMA(channel int) {
	target := uint32(fifoAddressA)
	if channel == 1 {
		target = fifoAddressB
	}
	for ch := 1; ch <= 2; ch++ {
		d := &m.dma[ch]
		if !d.Enable || d.timing != dmaTimingCustom || d.Dest != target {
			continue
		}
		for i := 0; i < 4; i++ {
			m.audio.WriteFIFO(channel, m.load32(d.nextSource))
			d.nextSource += 4
		}
		return
	}
}

// RunDMAs services every armed channel whose deadline has passed and
// returns the cycles until the next pending transfer.
func (m *Memory) RunDMAs(cycles int32) int32 {
	nextEvent := int32(math.MaxInt32)
	for ch := range m.dma {
		d := &m.dma[ch]
		if !d.Enable || d.nextEvent == math.MaxInt32 {
			continue
		}
		d.nextEvent -= cycles
		if d.nextEvent <= 0 {
			m.serviceDMA(ch, d)
		}
		if d.nextEvent < nextEvent {
			nextEvent = d.nextEvent
		}
	}
	return nextEvent
}

func (m *Memory) serviceDMA(ch int, d *DMA) {
	width := uint32(2)
	if d.word32 {
		width = 4
	}
	source := d.nextSource
	dest := d.nextDest
	for i := uint32(0); i < d.nextCount; i++ {
		if d.word32 {
			m.store32(dest, m.load32(source))
		} else {
			m.store16(dest, m.load16(source))
		}
		switch d.srcControl {
		case dmaIncrement:
			source += width
		case dmaDecrement:
			source -= width
		}
		switch d.destControl {
		case dmaIncrement, dmaIncrementReload:
			dest += width
		case dmaDecrement:
			dest -= width
		}
	}
	d.nextSource = source
	d.nextDest = dest

	if d.doIRQ {
		m.irq.Raise(irq.DMA0 + irq.IRQ(ch))
	}

	if d.repeat && d.timing != dmaTimingNow {
		d.nextCount = d.Count
		if d.destControl == dmaIncrementReload {
			d.nextDest = d.Dest
		}
		d.nextEvent = math.MaxInt32
	} else {
		d.Enable = false
		d.nextEvent = math.MaxInt32
		m.IO[(types.DMA0CNT_HI+ch*12)>>1] &^= types.Bit15
	}
}
