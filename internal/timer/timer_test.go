package timer

import (
	"math"
	"testing"

	"github.com/thelolagemann/gomeboy-advance/internal/arm"
	"github.com/thelolagemann/gomeboy-advance/internal/audio"
	"github.com/thelolagemann/gomeboy-advance/internal/irq"
	"github.com/thelolagemann/gomeboy-advance/internal/types"
	"github.com/thelolagemann/gomeboy-advance/pkg/log"
)

const (
	ctlEnable  = 0x80
	ctlIRQ     = 0x40
	ctlCountUp = 0x04
)

func testBank() (*Bank, *arm.Core, *types.IORegisters, *audio.Audio) {
	cpu := arm.NewCore()
	io := &types.IORegisters{}
	l := log.New(0)
	irqs := irq.New(cpu, io, l)
	a := audio.New(io, l)
	return NewBank(cpu, io, irqs, a), cpu, io, a
}

// sweep mimics one dispatcher pass over the bank: the CPU consumed
// cycles ticks and yields.
func sweep(b *Bank, cpu *arm.Core, cycles int32) int32 {
	cpu.Cycles = cycles
	next := b.ProcessEvents(cycles)
	cpu.Cycles = 0
	cpu.NextEvent = next
	return next
}

func TestOverflowRaisesIRQ(t *testing.T) {
	b, cpu, io, _ := testBank()
	io[types.IE>>1] = 1 << irq.Timer0
	io[types.IME>>1] = 1

	b.WriteReload(0, 0xFFFF)
	b.WriteControl(0, ctlEnable|ctlIRQ)

	next := sweep(b, cpu, 1)

	if io[types.IF>>1]&(1<<irq.Timer0) == 0 {
		t.Error("expected IF timer 0 bit set")
	}
	if !cpu.IRQLine {
		t.Error("expected CPU IRQ line asserted")
	}
	if got := io[types.TM0CNT_LO>>1]; got != 0xFFFF {
		t.Errorf("expected counter re-latched to 0xFFFF, got %04X", got)
	}
	if next != 1 {
		t.Errorf("expected next event in 1 cycle, got %d", next)
	}
}

func TestOverflowWithoutIRQEnable(t *testing.T) {
	b, cpu, io, _ := testBank()

	b.WriteReload(0, 0xFFFF)
	b.WriteControl(0, ctlEnable)
	sweep(b, cpu, 1)

	if io[types.IF>>1] != 0 {
		t.Error("expected IF untouched without doIrq")
	}
	if cpu.IRQLine {
		t.Error("expected IRQ line clear")
	}
}

func TestCascade(t *testing.T) {
	b, cpu, io, _ := testBank()
	io[types.IE>>1] = 1 << irq.Timer1
	io[types.IME>>1] = 1

	b.WriteReload(0, 0xFFFE)
	b.WriteReload(1, 0x0000)
	b.WriteControl(1, ctlEnable|ctlIRQ|ctlCountUp)
	b.WriteControl(0, ctlEnable)

	if got := b.Timer(1).NextEvent; got != math.MaxInt32 {
		t.Fatalf("expected cascading timer parked, got %d", got)
	}

	// first overflow of timer 0 bumps timer 1 to 1
	sweep(b, cpu, 2)
	if got := io[types.TM1CNT_LO>>1]; got != 1 {
		t.Fatalf("expected timer 1 counter 1, got %d", got)
	}

	// 0xFFFF more overflows wrap timer 1 through 0 exactly once
	for i := 0; i < 0xFFFF; i++ {
		sweep(b, cpu, 2)
	}
	if got := io[types.TM1CNT_LO>>1]; got != 0 {
		t.Fatalf("expected timer 1 counter re-latched to 0, got %d", got)
	}
	if io[types.IF>>1]&(1<<irq.Timer1) == 0 {
		t.Error("expected timer 1 overflow IRQ in the wrapping sweep")
	}
	if got := b.Timer(1).NextEvent; got != math.MaxInt32 {
		t.Errorf("expected timer 1 parked again after cascade fire, got %d", got)
	}
}

func TestFIFOPump(t *testing.T) {
	b, cpu, _, a := testBank()

	a.WriteSoundcntX(0x0080)
	// channel A right only, timer 0
	a.WriteSoundcntHI(0x0100)
	for i := 0; i < 5; i++ {
		a.WriteFIFO(0, 0x04030201)
	}

	demands := 0
	a.OnFIFODemand = func(channel int) { demands++ }

	b.WriteReload(0, 0xFC00)
	b.WriteControl(0, ctlEnable|0x2) // prescale /256

	interval := int32(0x10000-0xFC00) << 8
	sweep(b, cpu, interval)

	if got := a.FIFOSize(0); got != 19 {
		t.Errorf("expected one sample popped (19 left), got %d", got)
	}
	if demands != 0 {
		t.Errorf("expected no refill demand above threshold, got %d", demands)
	}
	if got := b.Timer(0).LastEvent; got > 0 {
		t.Errorf("expected non-positive overflow slack, got %d", got)
	}

	// drain below the refill threshold and overflow again
	for i := 0; i < 4; i++ {
		sweep(b, cpu, interval)
	}
	if demands == 0 {
		t.Error("expected a refill demand once the queue ran low")
	}
}

func TestFIFOPumpIgnoresOtherTimer(t *testing.T) {
	b, cpu, _, a := testBank()

	a.WriteSoundcntX(0x0080)
	// channel A routed to timer 1
	a.WriteSoundcntHI(0x0500)
	a.WriteFIFO(0, 0x04030201)

	b.WriteReload(0, 0xFFFF)
	b.WriteControl(0, ctlEnable)
	sweep(b, cpu, 1)

	if got := a.FIFOSize(0); got != 4 {
		t.Errorf("expected FIFO untouched, got size %d", got)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		reload   uint16
		prescale uint16
		shift    uint8
		doIrq    bool
	}{
		{0xFF00, 0x0, 0, true},
		{0x8000, 0x1, 6, false},
		{0xFC00, 0x2, 8, true},
		{0x0000, 0x3, 10, true},
	} {
		b, cpu, io, _ := testBank()
		io[types.IE>>1] = 1 << irq.Timer0
		io[types.IME>>1] = 1

		control := uint16(ctlEnable) | tc.prescale
		if tc.doIrq {
			control |= ctlIRQ
		}
		b.WriteReload(0, tc.reload)
		b.WriteControl(0, control)

		if got := io[types.TM0CNT_LO>>1]; got != tc.reload {
			t.Errorf("reload %04X: expected counter latched on enable, got %04X", tc.reload, got)
		}

		interval := int32(0x10000-int32(tc.reload)) << tc.shift
		if got := b.Timer(0).OverflowInterval; got != interval {
			t.Errorf("reload %04X: expected interval %d, got %d", tc.reload, interval, got)
		}

		sweep(b, cpu, interval)
		if got := io[types.TM0CNT_LO>>1]; got != tc.reload {
			t.Errorf("reload %04X: expected counter re-latched after overflow, got %04X", tc.reload, got)
		}
		raised := io[types.IF>>1]&(1<<irq.Timer0) != 0
		if raised != tc.doIrq {
			t.Errorf("reload %04X: IRQ raised = %v, want %v", tc.reload, raised, tc.doIrq)
		}
	}
}

func TestEnabledMaskMirrorsEnable(t *testing.T) {
	b, _, _, _ := testBank()

	writes := []struct {
		timer   int
		control uint16
	}{
		{0, ctlEnable},
		{1, ctlEnable | ctlCountUp},
		{2, ctlEnable | 0x3},
		{1, 0},
		{3, ctlEnable | ctlIRQ},
		{0, 0},
		{2, ctlEnable},
	}
	for _, w := range writes {
		b.WriteControl(w.timer, w.control)
		var want uint8
		for i := 0; i < 4; i++ {
			if b.Timer(i).Enable {
				want |= 1 << i
			}
		}
		if got := b.EnabledMask(); got != want {
			t.Fatalf("after write %+v: mask %04b, want %04b", w, got, want)
		}
	}
}

func TestVisibleCounter(t *testing.T) {
	b, cpu, io, _ := testBank()

	b.WriteReload(0, 0x8000)
	b.WriteControl(0, ctlEnable|0x1) // prescale /64

	cpu.Cycles = 10 * 64
	b.UpdateRegister(0)
	if got := io[types.TM0CNT_LO>>1]; got != 0x8000+10 {
		t.Errorf("expected visible counter 0x%04X, got %04X", 0x8000+10, got)
	}
}

func TestDisableMaterializesWithOldPrescale(t *testing.T) {
	b, cpu, io, _ := testBank()

	b.WriteReload(0, 0x1000)
	b.WriteControl(0, ctlEnable|0x1) // prescale /64

	cpu.Cycles = 640
	// disable while also selecting a different prescale; the final
	// counter must use the prescale the timer ran at
	b.WriteControl(0, 0x3)
	if got := io[types.TM0CNT_LO>>1]; got != 0x1000+10 {
		t.Errorf("expected counter frozen at 0x%04X, got %04X", 0x1000+10, got)
	}
	if b.Timer(0).Enable {
		t.Error("expected timer disabled")
	}
}

func TestPrescaleChangeMayLandInPast(t *testing.T) {
	b, cpu, io, _ := testBank()

	b.WriteReload(0, 0xFFFF)
	b.WriteControl(0, ctlEnable|ctlIRQ|0x3) // prescale /1024

	// part-way to the scheduled overflow, drop the prescaler to /1
	cpu.Cycles = 0x300
	cpu.NextEvent = 0x400
	b.WriteControl(0, ctlEnable|ctlIRQ)

	if got := b.Timer(0).NextEvent; got != 1 {
		t.Fatalf("expected rescheduled overflow at 1 cycle, got %d", got)
	}
	if cpu.NextEvent != 1 {
		t.Errorf("expected CPU budget pulled in to 1, got %d", cpu.NextEvent)
	}

	// the next sweep treats the stale deadline as an immediate overflow
	next := sweep(b, cpu, 0x300)
	if io[types.IF>>1]&(1<<irq.Timer0) == 0 {
		t.Error("expected overflow settled on the next sweep")
	}
	if next > 0 {
		t.Errorf("expected follow-up overflow still pending, got %d", next)
	}
}

func TestCountUpOnTimer0IsInert(t *testing.T) {
	b, cpu, _, _ := testBank()

	b.WriteReload(0, 0xFFFF)
	b.WriteControl(0, ctlEnable|ctlCountUp)

	if b.Timer(0).CountUp {
		t.Error("expected cascade bit inert on timer 0")
	}
	if got := b.Timer(0).NextEvent; got != 1 {
		t.Errorf("expected timer 0 cycle-driven, got next event %d", got)
	}

	sweep(b, cpu, 1)
	if got := b.Timer(0).NextEvent; got == math.MaxInt32 {
		t.Error("expected timer 0 not parked after overflow")
	}
}

func TestWriteReloadDoesNotReschedule(t *testing.T) {
	b, _, _, _ := testBank()

	b.WriteReload(0, 0x8000)
	b.WriteControl(0, ctlEnable)
	before := b.Timer(0).NextEvent

	b.WriteReload(0, 0xFFF0)
	if got := b.Timer(0).NextEvent; got != before {
		t.Errorf("expected schedule untouched by reload write, got %d", got)
	}
	if got := b.Timer(0).OverflowInterval; got != 0x10000-0x8000 {
		t.Errorf("expected interval still from old reload, got %d", got)
	}
}
