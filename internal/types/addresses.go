package types

// The I/O register file is an array of 16-bit words covering the memory
// range 0x04000000-0x040003FF. Registers are addressed here by their byte
// offset into that range; index the file with offset >> 1.
const (
	// DISPCNT is the LCD control register.
	DISPCNT = 0x000
	// DISPSTAT is the general LCD status register. The low three bits
	// mirror the current VBlank/HBlank/VCounter state, bits 3-5 enable
	// the corresponding interrupts and bits 8-15 hold the VCount setting.
	DISPSTAT = 0x004
	// VCOUNT is the current scanline, 0-227.
	VCOUNT = 0x006

	// SOUNDCNT_LO and SOUNDCNT_HI control channel mixing. SOUNDCNT_HI
	// holds the direct-sound routing: enable bits, timer selects and
	// FIFO resets for channels A and B.
	SOUNDCNT_LO = 0x080
	SOUNDCNT_HI = 0x082
	// SOUNDCNT_X holds the sound master enable in bit 7.
	SOUNDCNT_X = 0x084

	// FIFO_A and FIFO_B are the direct-sound sample queues. Each is a
	// 32-bit write-only port spanning two register words.
	FIFO_A = 0x0A0
	FIFO_B = 0x0A4

	// DMA channel registers. Each channel occupies 12 bytes: 32-bit
	// source, 32-bit destination, 16-bit count and 16-bit control.
	DMA0SAD    = 0x0B0
	DMA0DAD    = 0x0B4
	DMA0CNT_LO = 0x0B8
	DMA0CNT_HI = 0x0BA

	// Timer registers. Each timer occupies 4 bytes: the counter/reload
	// word and the control word.
	TM0CNT_LO = 0x100
	TM0CNT_HI = 0x102
	TM1CNT_LO = 0x104
	TM1CNT_HI = 0x106
	TM2CNT_LO = 0x108
	TM2CNT_HI = 0x10A
	TM3CNT_LO = 0x10C
	TM3CNT_HI = 0x10E

	// Serial registers.
	SIODATA32 = 0x120
	SIOCNT    = 0x128
	SIODATA8  = 0x12A
	RCNT      = 0x134

	// Interrupt and system control registers.
	IE      = 0x200
	IF      = 0x202
	WAITCNT = 0x204
	IME     = 0x208
)

// SizeIO is the size of the I/O register range in bytes.
const SizeIO = 0x400

// IORegisters is the shared I/O register file. Each subsystem owns the
// words tagged to it; the core writes timer counter words and IF.
type IORegisters [SizeIO >> 1]uint16
