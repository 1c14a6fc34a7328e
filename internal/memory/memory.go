// Package memory owns the machine's address space: the BIOS and ROM
// mappings, the working RAM the DMA engine moves data through, the
// shared I/O register file and the savedata and GPIO sub-units.
package memory

import (
	"github.com/thelolagemann/gomeboy-advance/internal/arm"
	"github.com/thelolagemann/gomeboy-advance/internal/audio"
	"github.com/thelolagemann/gomeboy-advance/internal/irq"
	"github.com/thelolagemann/gomeboy-advance/internal/types"
	"github.com/thelolagemann/gomeboy-advance/pkg/log"
)

const (
	// SizeBIOS is the fixed BIOS image size.
	SizeBIOS = 0x4000
	// SizeCart0 is the cartridge ceiling: 32 MiB.
	SizeCart0 = 0x02000000

	SizeEWRAM = 0x40000
	SizeIWRAM = 0x8000

	// BaseBIOS and friends are the high address nibbles selecting a
	// region.
	BaseBIOS  = 0x0
	BaseEWRAM = 0x2
	BaseIWRAM = 0x3
	BaseIO    = 0x4
	BaseCart0 = 0x8
	BaseSRAM  = 0xE

	// GPIORegisterOffset is the byte offset of the GPIO data register
	// inside the cartridge space.
	GPIORegisterOffset = 0xC4
)

// Memory is the memory unit.
type Memory struct {
	BIOS []byte
	// ROM is the active cartridge image; PristineROM is the original
	// mapping, preserved even after a patch installs a writable copy.
	ROM         []byte
	PristineROM []byte
	FullBIOS    bool

	ROMSize      int
	PristineSize int

	EWRAM []byte
	IWRAM []byte

	// IO is the shared register file.
	IO types.IORegisters

	Savedata Savedata
	GPIO     GPIO

	dma [4]DMA

	cpu   *arm.Core
	irq   *irq.Service
	audio *audio.Audio
	log   *log.Logger

	biosMapping    []byte
	romMapping     []byte
	patchedMapping []byte
}

// New returns a memory unit bound to the CPU clock.
func New(cpu *arm.Core, l *log.Logger) *Memory {
	m := &Memory{
		EWRAM: make([]byte, SizeEWRAM),
		IWRAM: make([]byte, SizeIWRAM),
		cpu:   cpu,
		log:   l,
	}
	m.Savedata.log = l
	for ch := range m.dma {
		m.dma[ch].reset()
	}
	cpu.SetActiveRegion = func(address uint32) {}
	return m
}

// AttachIRQ and AttachAudio complete the wiring the constructor cannot
// do because the interrupt service and audio unit are built around this
// unit's register file.
func (m *Memory) AttachIRQ(s *irq.Service) {
	m.irq = s
}

func (m *Memory) AttachAudio(a *audio.Audio) {
	m.audio = a
}

// Deinit releases every mapping. The active ROM pointer is nulled
// before the pristine mapping is released so a shared mapping is only
// unmapped once.
func (m *Memory) Deinit() {
	if m.patchedMapping != nil {
		unmap(m.patchedMapping)
		m.patchedMapping = nil
	}
	m.ROM = nil
	if m.romMapping != nil {
		unmap(m.romMapping)
		m.romMapping = nil
	}
	m.PristineROM = nil
	if m.biosMapping != nil {
		unmap(m.biosMapping)
		m.biosMapping = nil
	}
	m.BIOS = nil
	m.Savedata.Deinit()
}

// load16 and store16 are the DMA engine's view of the bus. Only the
// regions DMA traffic actually crosses are reachable; everything else
// reads zero and swallows writes.
func (m *Memory) load16(address uint32) uint16 {
	switch address >> 24 {
	case BaseBIOS:
		return read16(m.BIOS, address&(SizeBIOS-1))
	case BaseEWRAM:
		return read16(m.EWRAM, address&(SizeEWRAM-1))
	case BaseIWRAM:
		return read16(m.IWRAM, address&(SizeIWRAM-1))
	case BaseIO:
		return m.IO[(address&(types.SizeIO-1))>>1]
	case BaseCart0, BaseCart0 + 1, BaseCart0 + 2, BaseCart0 + 3, BaseCart0 + 4, BaseCart0 + 5:
		off := address & (SizeCart0 - 1)
		if int(off) < m.ROMSize {
			return read16(m.ROM, off)
		}
	case BaseSRAM:
		if m.Savedata.Data != nil {
			off := int(address) & (len(m.Savedata.Data) - 1)
			return uint16(m.Savedata.Data[off])
		}
	}
	return 0
}

func (m *Memory) store16(address uint32, value uint16) {
	switch address >> 24 {
	case BaseEWRAM:
		write16(m.EWRAM, address&(SizeEWRAM-1), value)
	case BaseIWRAM:
		write16(m.IWRAM, address&(SizeIWRAM-1), value)
	case BaseSRAM:
		if m.Savedata.Data != nil {
			off := int(address) & (len(m.Savedata.Data) - 1)
			m.Savedata.Data[off] = byte(value)
		}
	}
}

func (m *Memory) load32(address uint32) uint32 {
	return uint32(m.load16(address)) | uint32(m.load16(address+2))<<16
}

func (m *Memory) store32(address uint32, value uint32) {
	m.store16(address, uint16(value))
	m.store16(address+2, uint16(value>>16))
}

func read16(data []byte, off uint32) uint16 {
	if int(off)+1 >= len(data) {
		return 0
	}
	return uint16(data[off]) | uint16(data[off+1])<<8
}

func write16(data []byte, off uint32, value uint16) {
	if int(off)+1 >= len(data) {
		return
	}
	data[off] = byte(value)
	data[off+1] = byte(value >> 8)
}
