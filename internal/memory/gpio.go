package memory

import "github.com/thelolagemann/gomeboy-advance/internal/types"

// RotationSource supplies gyroscope readings from the host.
type RotationSource interface {
	SampleGyroZ() int16
}

// Rumble drives the cartridge rumble motor on the host side.
type Rumble interface {
	SetRumble(on bool)
}

// GPIO is the cartridge general-purpose I/O port. Its registers live
// inside the cartridge address space at a fixed header offset.
type GPIO struct {
	Devices types.GPIODevice

	// registers aliases the ROM bytes holding the GPIO data register.
	registers []byte

	rotation RotationSource
	rumble   Rumble
}

// Init points the port at its register window inside the mapped ROM.
func (g *GPIO) Init(registers []byte) {
	g.registers = registers
	g.Devices = types.GPIONone
}

// InitRTC wires the real-time clock.
func (g *GPIO) InitRTC() {
	g.Devices |= types.GPIORTC
}

// InitGyro wires the gyroscope against the machine's rotation source.
func (g *GPIO) InitGyro(source RotationSource) {
	g.Devices |= types.GPIOGyro
	g.rotation = source
}

// InitRumble wires the rumble motor against the machine's handle.
func (g *GPIO) InitRumble(r Rumble) {
	g.Devices |= types.GPIORumble
	g.rumble = r
}
