// Package audio models the direct-sound half of the GBA audio unit: the
// two DMA-fed FIFO channels, their routing state and the sample clock.
// Decoding the four PSG channels into speaker output is a front-end
// concern; this package only keeps the time-visible behavior the rest of
// the machine depends on.
package audio

import (
	"math"

	"github.com/thelolagemann/gomeboy-advance/internal/types"
	"github.com/thelolagemann/gomeboy-advance/pkg/log"
)

const (
	// SampleRate is the output sample rate the sample clock runs at.
	SampleRate = 32768
	// SampleInterval is the number of master-clock cycles between
	// output samples.
	SampleInterval = 0x1000000 / SampleRate

	fifoCapacity = 32
	// fifoRefillThreshold is the occupancy at or below which a FIFO
	// demands a DMA refill before yielding its next sample.
	fifoRefillThreshold = 16
)

// Mixer receives the mixed output stream, one stereo sample at a time.
type Mixer interface {
	SetAudio(left, right int16) error
	EndMixing() error
}

// fifo is a fixed 32-byte circular sample queue.
type fifo struct {
	samples [fifoCapacity]int8
	read    int
	size    int
}

func (f *fifo) push(s int8) {
	if f.size == fifoCapacity {
		// overruns drop the oldest sample
		f.read = (f.read + 1) % fifoCapacity
		f.size--
	}
	f.samples[(f.read+f.size)%fifoCapacity] = s
	f.size++
}

func (f *fifo) pop() int8 {
	if f.size == 0 {
		return 0
	}
	s := f.samples[f.read]
	f.read = (f.read + 1) % fifoCapacity
	f.size--
	return s
}

func (f *fifo) clear() {
	f.read = 0
	f.size = 0
}

// Audio is the audio unit. Routing fields mirror SOUNDCNT_HI and are
// read by the timer bank on overflow.
type Audio struct {
	Enable bool

	ChALeft  bool
	ChARight bool
	ChBLeft  bool
	ChBRight bool
	ChATimer int
	ChBTimer int

	// OnFIFODemand asks the memory unit to service a FIFO-timing DMA
	// for the given channel. Installed by the machine at wiring time.
	OnFIFODemand func(channel int)

	chA fifo
	chB fifo

	sampleA int8
	sampleB int8

	nextSample int32

	mixer Mixer
	io    *types.IORegisters
	log   *log.Logger
}

// New returns an audio unit operating on the given register file.
func New(io *types.IORegisters, l *log.Logger) *Audio {
	return &Audio{
		nextSample: SampleInterval,
		io:         io,
		log:        l,
	}
}

// AttachMixer installs the output seam. Pass nil to detach.
func (a *Audio) AttachMixer(m Mixer) {
	a.mixer = m
}

// Deinit closes the mixer seam.
func (a *Audio) Deinit() {
	if a.mixer != nil {
		if err := a.mixer.EndMixing(); err != nil {
			a.log.Errorf("audio: %v", err)
		}
		a.mixer = nil
	}
}

// ProcessEvents advances the sample clock and returns the cycles until
// the next output sample is due.
func (a *Audio) ProcessEvents(cycles int32) int32 {
	if !a.Enable {
		return math.MaxInt32
	}
	a.nextSample -= cycles
	for a.nextSample <= 0 {
		a.mix()
		a.nextSample += SampleInterval
	}
	return a.nextSample
}

// mix folds the current FIFO samples into one stereo output sample.
func (a *Audio) mix() {
	if a.mixer == nil {
		return
	}
	var left, right int16
	if a.ChALeft {
		left += int16(a.sampleA) << 6
	}
	if a.ChARight {
		right += int16(a.sampleA) << 6
	}
	if a.ChBLeft {
		left += int16(a.sampleB) << 6
	}
	if a.ChBRight {
		right += int16(a.sampleB) << 6
	}
	if err := a.mixer.SetAudio(left, right); err != nil {
		a.log.Errorf("audio: %v", err)
		a.mixer = nil
	}
}

// SampleFIFO pops the next sample off the given FIFO channel,
// first demanding a DMA refill when the queue has run low. lastEvent is
// the sub-cycle slack of the timer overflow that drove the sample; it is
// kept for collaborators that resample with sub-sample precision.
func (a *Audio) SampleFIFO(channel int, lastEvent int32) {
	f := &a.chA
	if channel == 1 {
		f = &a.chB
	}
	if f.size <= fifoRefillThreshold && a.OnFIFODemand != nil {
		a.OnFIFODemand(channel)
	}
	if channel == 1 {
		a.sampleB = f.pop()
	} else {
		a.sampleA = f.pop()
	}
}

// WriteFIFO pushes a 32-bit write to a FIFO port, least significant
// byte first.
func (a *Audio) WriteFIFO(channel int, value uint32) {
	f := &a.chA
	if channel == 1 {
		f = &a.chB
	}
	for i := 0; i < 4; i++ {
		f.push(int8(value >> (8 * i)))
	}
}

// FIFOSize reports a channel's current queue occupancy.
func (a *Audio) FIFOSize(channel int) int {
	if channel == 1 {
		return a.chB.size
	}
	return a.chA.size
}

// WriteSoundcntHI decodes the direct-sound routing bits.
func (a *Audio) WriteSoundcntHI(value uint16) {
	a.io[types.SOUNDCNT_HI>>1] = value

	a.ChARight = value&types.Bit8 != 0
	a.ChALeft = value&types.Bit9 != 0
	a.ChATimer = int(value >> 10 & 1)
	if value&types.Bit11 != 0 {
		a.chA.clear()
	}

	a.ChBRight = value&types.Bit12 != 0
	a.ChBLeft = value&types.Bit13 != 0
	a.ChBTimer = int(value >> 14 & 1)
	if value&types.Bit15 != 0 {
		a.chB.clear()
	}
}

// WriteSoundcntX sets the master enable.
func (a *Audio) WriteSoundcntX(value uint16) {
	a.io[types.SOUNDCNT_X>>1] = value
	a.Enable = value&types.Bit7 != 0
}
