// Package cartridge parses the GBA cartridge header and carries the
// table of per-title overrides for save medium and GPIO hardware.
package cartridge

// Header represents the cartridge header occupying the first 0xC0 bytes
// of the ROM. It identifies the title and carries the Nintendo logo and
// complement check the BIOS verifies at boot.
type Header struct {
	// 0x0A0-0x0AC - Title of the game, ASCII, zero padded
	Title string

	// 0x0AC-0x0B0 - GameCode, the four-character serial also used to
	// key the override table
	GameCode string

	// 0x0B0-0x0B2 - MakerCode of the licensee
	MakerCode string

	Version  uint8
	Checksum uint8
}

// headerSize is the span of the parsed fields.
const headerSize = 0xC0

// ParseHeader parses the header of the given ROM. A ROM too small to
// hold one returns the zero Header.
func ParseHeader(rom []byte) Header {
	if len(rom) < headerSize {
		return Header{}
	}

	h := Header{}
	h.Title = trimPadding(rom[0xA0:0xAC])
	h.GameCode = string(rom[0xAC:0xB0])
	h.MakerCode = string(rom[0xB0:0xB2])
	h.Version = rom[0xBC]
	h.Checksum = rom[0xBD]
	return h
}

// VerifyChecksum recomputes the header complement check.
func (h Header) VerifyChecksum(rom []byte) bool {
	if len(rom) < headerSize {
		return false
	}
	var sum uint8
	for _, b := range rom[0xA0:0xBD] {
		sum += b
	}
	return h.Checksum == -(sum + 0x19)
}

func trimPadding(raw []byte) string {
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	return string(raw[:end])
}
