package cartridge

import "github.com/thelolagemann/gomeboy-advance/internal/types"

// Override records hardware a title carries that cannot be detected
// from the ROM image alone: its save medium and any devices on the
// cartridge GPIO port.
type Override struct {
	Savedata types.SavedataType
	GPIO     types.GPIODevice
}

// overrides is keyed by game code. The table must match the titles
// byte for byte; guessing a save medium wrong breaks the game.
var overrides = map[string]Override{
	// Boktai: The Sun is in Your Hand
	"U3IE": {types.SavedataEEPROM, types.GPIORTC | types.GPIOLightSensor},
	"U3IP": {types.SavedataEEPROM, types.GPIORTC | types.GPIOLightSensor},

	// Boktai 2: Solar Boy Django
	"U32E": {types.SavedataEEPROM, types.GPIORTC | types.GPIOLightSensor},
	"U32P": {types.SavedataEEPROM, types.GPIORTC | types.GPIOLightSensor},

	// Drill Dozer
	"V49J": {types.SavedataSRAM, types.GPIORumble},
	"V49E": {types.SavedataSRAM, types.GPIORumble},

	// Pokemon Ruby
	"AXVJ": {types.SavedataFlash1M, types.GPIORTC},
	"AXVE": {types.SavedataFlash1M, types.GPIORTC},
	"AXVP": {types.SavedataFlash1M, types.GPIORTC},
	"AXVI": {types.SavedataFlash1M, types.GPIORTC},
	"AXVS": {types.SavedataFlash1M, types.GPIORTC},
	"AXVD": {types.SavedataFlash1M, types.GPIORTC},
	"AXVF": {types.SavedataFlash1M, types.GPIORTC},

	// Pokemon Sapphire
	"AXPJ": {types.SavedataFlash1M, types.GPIORTC},
	"AXPE": {types.SavedataFlash1M, types.GPIORTC},
	"AXPP": {types.SavedataFlash1M, types.GPIORTC},
	"AXPI": {types.SavedataFlash1M, types.GPIORTC},
	"AXPS": {types.SavedataFlash1M, types.GPIORTC},
	"AXPD": {types.SavedataFlash1M, types.GPIORTC},
	"AXPF": {types.SavedataFlash1M, types.GPIORTC},

	// Pokemon Emerald
	"BPEJ": {types.SavedataFlash1M, types.GPIORTC},
	"BPEE": {types.SavedataFlash1M, types.GPIORTC},
	"BPEP": {types.SavedataFlash1M, types.GPIORTC},
	"BPEI": {types.SavedataFlash1M, types.GPIORTC},
	"BPES": {types.SavedataFlash1M, types.GPIORTC},
	"BPED": {types.SavedataFlash1M, types.GPIORTC},
	"BPEF": {types.SavedataFlash1M, types.GPIORTC},

	// Pokemon FireRed
	"BPRJ": {types.SavedataFlash1M, types.GPIONone},
	"BPRE": {types.SavedataFlash1M, types.GPIONone},
	"BPRP": {types.SavedataFlash1M, types.GPIONone},

	// Pokemon LeafGreen
	"BPGJ": {types.SavedataFlash1M, types.GPIONone},
	"BPGE": {types.SavedataFlash1M, types.GPIONone},
	"BPGP": {types.SavedataFlash1M, types.GPIONone},

	// RockMan EXE 4.5 - Real Operation
	"BR4J": {types.SavedataFlash512, types.GPIORTC},

	// Super Mario Advance 4
	"AX4J": {types.SavedataFlash1M, types.GPIONone},
	"AX4E": {types.SavedataFlash1M, types.GPIONone},
	"AX4P": {types.SavedataFlash1M, types.GPIONone},

	// Wario Ware Twisted
	"RWZJ": {types.SavedataSRAM, types.GPIORumble | types.GPIOGyro},
	"RWZE": {types.SavedataSRAM, types.GPIORumble | types.GPIOGyro},
	"RWZP": {types.SavedataSRAM, types.GPIORumble | types.GPIOGyro},
}

// Lookup returns the override for a game code.
func Lookup(gameCode string) (Override, bool) {
	o, ok := overrides[gameCode]
	return o, ok
}
