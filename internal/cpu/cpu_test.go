package cpu

import "testing"

type fakeBus struct {
	data [0x10000]uint8
}

func (b *fakeBus) Read(addr uint16) uint8        { return b.data[addr] }
func (b *fakeBus) Write(addr uint16, value uint8) { b.data[addr] = value }

func (b *fakeBus) setBytes(addr uint16, values ...uint8) {
	for i, v := range values {
		b.data[addr+uint16(i)] = v
	}
}

func newTestCPU() (*CPU, *fakeBus) {
	bus := &fakeBus{}
	c := New(bus, Options{})
	return c, bus
}

func (c *CPU) resetAt(bus *fakeBus, addr uint16) {
	bus.setBytes(resetVector, uint8(addr), uint8(addr>>8))
	c.Reset()
}

func TestResetSequence(t *testing.T) {
	c, bus := newTestCPU()
	c.resetAt(bus, 0xC000)

	if c.PC != 0xC000 {
		t.Errorf("PC = $%04X, want $C000", c.PC)
	}
	if c.SP != 0xFD {
		t.Errorf("SP = $%02X, want $FD", c.SP)
	}
	if !c.I {
		t.Error("I flag should be set after reset")
	}
	if c.StatusByte()&unusedMask == 0 {
		t.Error("unused status bit must read as 1")
	}
}

func TestLDASTATrace(t *testing.T) {
	c, bus := newTestCPU()
	c.resetAt(bus, 0x8000)
	bus.setBytes(0x8000,
		0xA9, 0x42, // LDA #$42
		0x8D, 0x00, 0x03, // STA $0300
	)

	if _, err := c.Step(); err != nil {
		t.Fatalf("LDA: %v", err)
	}
	if c.A != 0x42 {
		t.Fatalf("A = $%02X, want $42", c.A)
	}
	if _, err := c.Step(); err != nil {
		t.Fatalf("STA: %v", err)
	}
	if got := bus.Read(0x0300); got != 0x42 {
		t.Fatalf("mem[$0300] = $%02X, want $42", got)
	}
	if c.PC != 0x8005 {
		t.Fatalf("PC = $%04X, want $8005", c.PC)
	}
}

func TestStackRoundTrip(t *testing.T) {
	c, bus := newTestCPU()
	c.resetAt(bus, 0x8000)
	c.A = 0x55
	bus.setBytes(0x8000, 0x48, 0x68) // PHA, PLA
	sp := c.SP

	c.Step()
	if c.SP != sp-1 {
		t.Fatalf("SP after PHA = $%02X, want $%02X", c.SP, sp-1)
	}
	c.A = 0
	c.Step()
	if c.A != 0x55 || c.SP != sp {
		t.Fatalf("PLA: A=$%02X SP=$%02X, want A=$55 SP=$%02X", c.A, c.SP, sp)
	}
}

func TestAdcOverflowFlag(t *testing.T) {
	c, bus := newTestCPU()
	c.resetAt(bus, 0x8000)
	c.A = 0x7F
	bus.setBytes(0x8000, 0x69, 0x01) // ADC #$01

	c.Step()
	if c.A != 0x80 {
		t.Fatalf("A = $%02X, want $80", c.A)
	}
	if !c.V {
		t.Error("V should be set: 0x7F + 0x01 overflows into negative")
	}
	if !c.N {
		t.Error("N should be set: result $80 has bit 7 set")
	}
	if c.C {
		t.Error("C should be clear: no unsigned carry out of bit 7")
	}
}

func TestJmpIndirectPageWrapBug(t *testing.T) {
	c, bus := newTestCPU()
	c.resetAt(bus, 0x8000)
	bus.setBytes(0x8000, 0x6C, 0xFF, 0x02) // JMP ($02FF)
	bus.setBytes(0x02FF, 0x34)
	bus.setBytes(0x0200, 0x12) // high byte wrongly fetched from $0200, not $0300

	c.Step()
	if c.PC != 0x1234 {
		t.Fatalf("PC = $%04X, want $1234 (page-wrap bug)", c.PC)
	}
}

func TestBranchTakenAcrossPageExtraCycle(t *testing.T) {
	c, bus := newTestCPU()
	c.resetAt(bus, 0x80FD)
	bus.setBytes(0x80FD, 0xF0, 0x05) // BEQ +5 -> crosses from page 0x80 to 0x81
	c.Z = true

	cycles, err := c.Step()
	if err != nil {
		t.Fatal(err)
	}
	if cycles != 4 { // 2 base + 1 taken + 1 page cross
		t.Fatalf("cycles = %d, want 4", cycles)
	}
	if c.PC != 0x8104 {
		t.Fatalf("PC = $%04X, want $8104", c.PC)
	}
}

func TestNMIServicedBeforeNextFetch(t *testing.T) {
	c, bus := newTestCPU()
	c.resetAt(bus, 0x8000)
	bus.setBytes(0x8000, 0xEA) // NOP, should never execute
	bus.setBytes(nmiVector, 0x00, 0x90)
	c.SetNMI(true)
	c.SetNMI(false) // falling edge latches pending NMI

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.PC != 0x9000 {
		t.Fatalf("PC = $%04X, want $9000 (NMI vector)", c.PC)
	}
	if !c.I {
		t.Error("I should be set after servicing NMI")
	}
}

func TestStrictModeRejectsUnmappedOpcode(t *testing.T) {
	bus := &fakeBus{}
	c := New(bus, Options{Strict: true})
	c.resetAt(bus, 0x8000)
	bus.setBytes(0x8000, 0x02) // opcode $02 is never mapped (halt/KIL on real hardware)

	if _, err := c.Step(); err == nil {
		t.Fatal("expected IllegalOpcode error in strict mode")
	}
}

func TestSPStaysInByteRange(t *testing.T) {
	c, bus := newTestCPU()
	c.resetAt(bus, 0x8000)
	c.SP = 0x00
	bus.setBytes(0x8000, 0x48) // PHA underflows SP

	c.Step()
	if c.SP != 0xFF {
		t.Fatalf("SP = $%02X, want wraparound to $FF", c.SP)
	}
}
