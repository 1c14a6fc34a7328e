// Package arm holds the machine-facing side of the ARM7TDMI contract.
// The instruction interpreter itself lives outside this module; what the
// machine needs from it is the shared cycle clock, the register file and
// the interrupt-handler table it fills in at init.
package arm

// Frequency is the ARM7TDMI master clock in Hz.
const Frequency = 0x1000000

// General-purpose register aliases.
const (
	RegSP = 13
	RegLR = 14
	RegPC = 15
)

// PrivilegeMode is the processor mode held in the low five bits of CPSR.
type PrivilegeMode uint32

const (
	ModeUser       PrivilegeMode = 0x10
	ModeFIQ        PrivilegeMode = 0x11
	ModeIRQ        PrivilegeMode = 0x12
	ModeSupervisor PrivilegeMode = 0x13
	ModeAbort      PrivilegeMode = 0x17
	ModeUndefined  PrivilegeMode = 0x1B
	ModeSystem     PrivilegeMode = 0x1F
)

// bank maps a privilege mode to its banked-register slot. User and
// System share a bank.
func (m PrivilegeMode) bank() int {
	switch m {
	case ModeFIQ:
		return 1
	case ModeIRQ:
		return 2
	case ModeSupervisor:
		return 3
	case ModeAbort:
		return 4
	case ModeUndefined:
		return 5
	}
	return 0
}

const numBanks = 6

// InterruptHandler is the capability record the machine installs on the
// core at init. The interpreter invokes these at its designated callback
// points; none of them may block.
type InterruptHandler struct {
	Reset         func(cpu *Core)
	ProcessEvents func(cpu *Core)
	Swi16         func(cpu *Core, immediate uint8)
	Swi32         func(cpu *Core, immediate uint8)
	HitIllegal    func(cpu *Core, opcode uint32)
	ReadCPSR      func(cpu *Core)
	HitStub       func(cpu *Core, opcode uint32)
}

// Core is the ARM7TDMI state shared between the interpreter and the
// machine. Cycles accumulates as instructions execute; when it reaches
// NextEvent the interpreter calls IRQH.ProcessEvents, which consumes the
// cycles and publishes a new budget.
type Core struct {
	GPRs [16]int32
	CPSR uint32

	Cycles    int32
	NextEvent int32
	Halted    bool

	// IRQLine is the external interrupt request line. The interpreter
	// samples it between instructions and vectors when CPSR allows.
	IRQLine bool

	IRQH InterruptHandler

	// SetActiveRegion re-resolves the interpreter's active memory
	// region after a mapping change. Installed by the memory unit.
	SetActiveRegion func(address uint32)

	bankedSP [numBanks]int32
	bankedLR [numBanks]int32
}

// NewCore returns a core in System mode. The event budget starts at
// zero so the first callback point dispatches immediately.
func NewCore() *Core {
	return &Core{
		CPSR: uint32(ModeSystem),
	}
}

// Mode returns the current privilege mode.
func (c *Core) Mode() PrivilegeMode {
	return PrivilegeMode(c.CPSR & 0x1F)
}

// SetPrivilegeMode switches the core to the given mode, banking SP and
// LR in and out as the hardware does.
func (c *Core) SetPrivilegeMode(mode PrivilegeMode) {
	old := c.Mode()
	if old == mode {
		return
	}
	c.bankedSP[old.bank()] = c.GPRs[RegSP]
	c.bankedLR[old.bank()] = c.GPRs[RegLR]
	c.GPRs[RegSP] = c.bankedSP[mode.bank()]
	c.GPRs[RegLR] = c.bankedLR[mode.bank()]
	c.CPSR = c.CPSR&^0x1F | uint32(mode)
}

// RaiseIRQ asserts the interrupt request line.
func (c *Core) RaiseIRQ() {
	c.IRQLine = true
}

// Advance burns cycles on behalf of the interpreter and yields to the
// machine when the budget is spent. Used by headless drivers that have
// no instruction stream to execute.
func (c *Core) Advance(cycles int32) {
	c.Cycles += cycles
	if c.Cycles >= c.NextEvent && c.IRQH.ProcessEvents != nil {
		c.IRQH.ProcessEvents(c)
	}
}
