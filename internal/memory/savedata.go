package memory

import (
	"os"

	"github.com/thelolagemann/gomeboy-advance/internal/types"
	"github.com/thelolagemann/gomeboy-advance/pkg/log"
)

// Save medium sizes.
const (
	SizeSRAM     = 0x8000
	SizeFlash512 = 0x10000
	SizeFlash1M  = 0x20000
	SizeEEPROM   = 0x2000
)

// Savedata is the cartridge save medium. The backing buffer is created
// when the medium type is established through InitFlash, InitEEPROM or
// InitSRAM, which the machine calls from the cartridge override table;
// guest accesses on the bus do not establish a medium.
type Savedata struct {
	Type types.SavedataType
	Data []byte

	file string
	log  *log.Logger
}

// Init binds a save file. Existing contents are loaded once a medium
// type establishes the buffer size.
func (s *Savedata) Init(file string) {
	s.file = file
}

// InitFlash establishes a flash medium of the given size.
func (s *Savedata) InitFlash(size int) {
	if s.Type == types.SavedataFlash512 || s.Type == types.SavedataFlash1M {
		return
	}
	if size == SizeFlash1M {
		s.Type = types.SavedataFlash1M
	} else {
		s.Type = types.SavedataFlash512
	}
	s.open(size)
}

// InitEEPROM establishes an EEPROM medium.
func (s *Savedata) InitEEPROM() {
	if s.Type == types.SavedataEEPROM {
		return
	}
	s.Type = types.SavedataEEPROM
	s.open(SizeEEPROM)
}

// InitSRAM establishes a battery-backed SRAM medium.
func (s *Savedata) InitSRAM() {
	if s.Type == types.SavedataSRAM {
		return
	}
	s.Type = types.SavedataSRAM
	s.open(SizeSRAM)
}

func (s *Savedata) open(size int) {
	s.Data = make([]byte, size)
	for i := range s.Data {
		s.Data[i] = 0xFF
	}
	if s.file == "" {
		return
	}
	saved, err := os.ReadFile(s.file)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warnf("savedata: %v", err)
		}
		return
	}
	copy(s.Data, saved)
}

// Deinit flushes the buffer to the bound save file, if any.
func (s *Savedata) Deinit() {
	if s.Data == nil || s.file == "" {
		return
	}
	if err := os.WriteFile(s.file, s.Data, 0o644); err != nil {
		s.log.Warnf("savedata: %v", err)
	}
	s.Data = nil
}
