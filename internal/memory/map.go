package memory

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MapROMFile maps the cartridge file read-only up to the cartridge
// ceiling. The mapping becomes both the pristine and the active ROM.
func (m *Memory) MapROMFile(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("rom: %w", err)
	}
	size := info.Size()
	if size > SizeCart0 {
		size = SizeCart0
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return fmt.Errorf("rom: mmap: %w", err)
	}
	m.romMapping = data
	m.PristineROM = data
	m.ROM = data
	m.PristineSize = int(size)
	m.ROMSize = int(size)
	return nil
}

// MapBIOSFile maps the BIOS image read-only.
func (m *Memory) MapBIOSFile(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("bios: %w", err)
	}
	size := info.Size()
	if size > SizeBIOS {
		size = SizeBIOS
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return fmt.Errorf("bios: mmap: %w", err)
	}
	m.biosMapping = data
	m.BIOS = data
	m.FullBIOS = true
	return nil
}

// AllocPatched allocates anonymous read-write memory for a patched ROM
// image. The buffer is tracked for release at deinit; a failed patch
// must hand it back through FreePatched.
func (m *Memory) AllocPatched(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("patch: mmap: %w", err)
	}
	m.patchedMapping = data
	return data, nil
}

// FreePatched releases the patched buffer and restores the pristine
// image as the active ROM.
func (m *Memory) FreePatched() {
	if m.patchedMapping == nil {
		return
	}
	unmap(m.patchedMapping)
	m.patchedMapping = nil
	m.ROM = m.PristineROM
	m.ROMSize = m.PristineSize
}

func unmap(data []byte) {
	_ = unix.Munmap(data)
}
