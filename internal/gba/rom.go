package gba

import (
	"hash/crc32"
	"os"

	"github.com/cespare/xxhash"
	"github.com/thelolagemann/gomeboy-advance/internal/arm"
	"github.com/thelolagemann/gomeboy-advance/internal/cartridge"
	"github.com/thelolagemann/gomeboy-advance/internal/memory"
	"github.com/thelolagemann/gomeboy-advance/internal/types"
)

// Recognized BIOS image checksums.
const (
	biosChecksumGBA = 0xBAAE187F
	biosChecksumDS  = 0xBAAE1880
)

func checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Patch transforms a ROM image. Concrete formats live with the host;
// the machine only drives the two-step size/apply contract.
type Patch interface {
	// OutputSize returns the patched image size for an input of the
	// given size; zero means the patch does not apply.
	OutputSize(originalSize int) int
	// ApplyPatch writes the patched image into dst, reporting success.
	ApplyPatch(dst []byte) bool
}

// LoadROM maps the cartridge file, initializes savedata and GPIO and
// consults the override table for hardware the image cannot declare.
func (g *GBA) LoadROM(f *os.File, name string) error {
	if err := g.Memory.MapROMFile(f); err != nil {
		return err
	}
	g.ActiveFile = name
	g.ROMFingerprint = xxhash.Sum64(g.Memory.ROM)

	if g.savefile != "" {
		g.Memory.Savedata.Init(g.savefile)
	}

	rom := g.Memory.ROM
	if len(rom) > memory.GPIORegisterOffset+4 {
		g.Memory.GPIO.Init(rom[memory.GPIORegisterOffset : memory.GPIORegisterOffset+4])
	}

	header := cartridge.ParseHeader(rom)
	g.log.Infof("Loaded %s (%s), %d bytes, fingerprint %016x",
		header.Title, header.GameCode, g.Memory.ROMSize, g.ROMFingerprint)
	g.checkOverrides(header.GameCode)
	return nil
}

// LoadBIOS maps the BIOS image and verifies its checksum. Unknown
// images are accepted with a warning. If the CPU is currently executing
// inside the BIOS region, its active region is re-resolved so execution
// continues against the new mapping.
func (g *GBA) LoadBIOS(f *os.File) error {
	if err := g.Memory.MapBIOSFile(f); err != nil {
		return err
	}
	sum := checksum(g.Memory.BIOS)
	g.log.Debugf("BIOS Checksum: 0x%X", sum)
	switch sum {
	case biosChecksumGBA:
		g.log.Infof("Official GBA BIOS detected")
	case biosChecksumDS:
		g.log.Infof("Official GBA (DS) BIOS detected")
	default:
		g.log.Warnf("BIOS checksum incorrect")
	}
	g.BIOSChecksum = sum

	pc := uint32(g.CPU.GPRs[arm.RegPC])
	if pc>>24 == memory.BaseBIOS && g.CPU.SetActiveRegion != nil {
		g.CPU.SetActiveRegion(pc)
	}
	return nil
}

// ApplyPatch swaps the active ROM for a patched copy. A failing patch
// releases the copy and leaves the pristine image active.
func (g *GBA) ApplyPatch(patch Patch) {
	patchedSize := patch.OutputSize(g.Memory.ROMSize)
	if patchedSize == 0 {
		return
	}
	patched, err := g.Memory.AllocPatched(patchedSize)
	if err != nil {
		g.log.Errorf("patch: %v", err)
		return
	}
	copy(patched, g.Memory.PristineROM)
	if !patch.ApplyPatch(patched) {
		g.Memory.FreePatched()
		return
	}
	g.Memory.ROM = patched
	g.Memory.ROMSize = patchedSize
}

// checkOverrides applies the cartridge override table.
func (g *GBA) checkOverrides(gameCode string) {
	o, ok := cartridge.Lookup(gameCode)
	if !ok {
		return
	}
	g.log.Infof("Found override for game %s", gameCode)

	switch o.Savedata {
	case types.SavedataFlash512:
		g.Memory.Savedata.InitFlash(memory.SizeFlash512)
	case types.SavedataFlash1M:
		g.Memory.Savedata.InitFlash(memory.SizeFlash1M)
	case types.SavedataEEPROM:
		g.Memory.Savedata.InitEEPROM()
	case types.SavedataSRAM:
		g.Memory.Savedata.InitSRAM()
	}

	if o.GPIO&types.GPIORTC != 0 {
		g.Memory.GPIO.InitRTC()
	}
	if o.GPIO&types.GPIOGyro != 0 {
		g.Memory.GPIO.InitGyro(g.RotationSource)
	}
	if o.GPIO&types.GPIORumble != 0 {
		g.Memory.GPIO.InitRumble(g.Rumble)
	}
}
