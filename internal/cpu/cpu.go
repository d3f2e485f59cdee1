// Package cpu implements the Ricoh 2A03's 6502-derived CPU core: registers,
// addressing modes, the official and commonly emulated unofficial opcodes,
// and NMI/IRQ/reset sequencing.
package cpu

import (
	"github.com/golang/glog"

	"github.com/jotare/nes-emulator/internal/bitutil"
	"github.com/jotare/nes-emulator/internal/neserr"
)

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Bus is the CPU's view of the system memory map.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// Trace describes one retired instruction, passed to an optional Tracer for
// disassembly logging or test harnesses; it is not consulted by the CPU
// itself.
type Trace struct {
	PC     uint16
	Opcode uint8
	A, X, Y, SP uint8
	Status uint8
	Cycles uint64
}

// Tracer receives a Trace after each instruction retires.
type Tracer func(Trace)

// Options configures CPU behavior at points the 6502 itself leaves
// implementation-defined.
type Options struct {
	// Strict makes Step return an IllegalOpcode error for any opcode
	// outside the 151 documented ones: both opcodes with no registered
	// descriptor (otherwise treated as a 2-cycle NOP) and the unofficial
	// opcodes this package otherwise executes (LAX, SAX, DCP, ISB, SLO,
	// RLA, SRE, RRA, the extra NOP forms and SBC $EB). Off by default:
	// commercial NES software occasionally hits unofficial opcodes; Strict
	// is for validation harnesses that want to catch them.
	Strict bool

	Tracer Tracer
}

// CPU is the 6502 core. It owns no memory itself; all reads/writes go
// through the attached Bus, so RAM mirroring, PPU register side effects,
// and mapper behavior stay in their own packages.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16

	C, Z, I, D, B, V, N bool

	bus Bus
	opt Options

	cycles uint64

	instructions [256]*instruction

	nmiLine     bool
	nmiPrev     bool
	nmiPending  bool
	irqPending  bool
}

// New creates a CPU wired to bus. opt may be the zero value for default
// (lenient, untraced) behavior.
func New(bus Bus, opt Options) *CPU {
	c := &CPU{bus: bus, opt: opt}
	c.initInstructions()
	return c
}

// Reset runs the 6502's reset sequence: SP -= 3 is simulated as SP = 0xFD,
// I is set, and PC loads from the reset vector after the customary string
// of internal bus reads.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.C, c.Z, c.V, c.N, c.D = false, false, false, false, false
	c.I = true
	c.B = true

	for i := 0; i < 5; i++ {
		c.bus.Read(c.PC)
		c.cycles++
	}

	lo := c.bus.Read(resetVector)
	hi := c.bus.Read(resetVector + 1)
	c.PC = bitutil.Word(lo, hi)
	c.cycles += 2

	c.nmiPending = false
	c.irqPending = false
}

// SetNMI drives the NMI line. NMI is edge-triggered: a falling edge
// (true -> false) latches a pending NMI that fires before the next
// instruction fetch.
func (c *CPU) SetNMI(asserted bool) {
	if c.nmiPrev && !asserted {
		c.nmiPending = true
	}
	c.nmiPrev = asserted
	c.nmiLine = asserted
}

// SetIRQ drives the level-triggered IRQ line (mapper or APU frame IRQ).
func (c *CPU) SetIRQ(asserted bool) {
	c.irqPending = asserted
}

// Cycles reports the running cycle count since Reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Step services a pending interrupt if one is latched, then fetches and
// executes exactly one instruction. It returns the number of CPU cycles
// consumed. Interrupts are checked before fetch, not after the previous
// instruction retires, so a taken interrupt replaces the next opcode fetch
// rather than following it.
func (c *CPU) Step() (uint64, error) {
	if c.nmiPending {
		c.nmiPending = false
		c.serviceInterrupt(nmiVector, false)
		c.cycles += 7
		return 7, nil
	}
	if c.irqPending && !c.I {
		c.serviceInterrupt(irqVector, false)
		c.cycles += 7
		return 7, nil
	}

	pc := c.PC
	opcode := c.bus.Read(c.PC)
	inst := c.instructions[opcode]
	if c.opt.Strict && inst != nil {
		switch {
		case inst.name == "NOP" && opcode != 0xEA, inst.name == "SBC" && opcode == 0xEB,
			inst.name == "LAX", inst.name == "SAX", inst.name == "DCP", inst.name == "ISB",
			inst.name == "SLO", inst.name == "RLA", inst.name == "SRE", inst.name == "RRA":
			inst = nil // unofficial opcode: rejected below like an unmapped one
		}
	}

	if inst == nil {
		if c.opt.Strict {
			return 0, neserr.New(neserr.IllegalOpcode, errOpcodeMsg(opcode, pc))
		}
		if glog.V(3) {
			glog.Warningf("cpu: unmapped opcode $%02X at $%04X, treating as 1-byte NOP", opcode, pc)
		}
		c.PC++
		c.cycles += 2
		return 2, nil
	}

	addr, pageCrossed := c.operandAddress(inst.mode)
	extra := c.execute(opcode, addr, pageCrossed)

	if pageCrossed && inst.mode != Relative && penalizesPageCross(opcode) {
		extra++
	}

	total := uint64(inst.cycles) + uint64(extra)
	c.cycles += total

	if c.opt.Tracer != nil {
		c.opt.Tracer(Trace{
			PC: pc, Opcode: opcode,
			A: c.A, X: c.X, Y: c.Y, SP: c.SP,
			Status: c.StatusByte(), Cycles: c.cycles,
		})
	}

	return total, nil
}

func errOpcodeMsg(opcode uint8, pc uint16) string {
	const hex = "0123456789ABCDEF"
	b := []byte("opcode $xx at $xxxx is not mapped")
	b[8] = hex[opcode>>4]
	b[9] = hex[opcode&0xF]
	b[16] = hex[(pc>>12)&0xF]
	b[17] = hex[(pc>>8)&0xF]
	b[18] = hex[(pc>>4)&0xF]
	b[19] = hex[pc&0xF]
	return string(b)
}

// penalizesPageCross reports whether opcode takes an extra cycle when its
// indexed-addressing operand crosses a page boundary. Store instructions
// and unofficial read-modify-write opcodes always pay the indexed-address
// cost regardless of crossing and are handled separately by their fixed
// cycle counts.
func penalizesPageCross(opcode uint8) bool {
	switch opcode {
	case 0xBD, 0xB9, 0xB1, 0xBE, 0xBC, 0x7D, 0x79, 0x71, 0x3D, 0x39, 0x31,
		0x1D, 0x19, 0x11, 0x5D, 0x59, 0x51, 0xDD, 0xD9, 0xD1, 0xFD, 0xF9, 0xF1,
		0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC,
		0xBF, 0xB3:
		return true
	}
	return false
}

func (c *CPU) serviceInterrupt(vector uint16, brk bool) {
	c.pushWord(c.PC)
	status := c.StatusByte() &^ bFlagMask
	status |= unusedMask
	if brk {
		status |= bFlagMask
	}
	c.push(status)
	c.I = true
	lo := c.bus.Read(vector)
	hi := c.bus.Read(vector + 1)
	c.PC = bitutil.Word(lo, hi)
}

func (c *CPU) push(v uint8) {
	c.bus.Write(stackBase+uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pop() uint8 {
	c.SP++
	return c.bus.Read(stackBase + uint16(c.SP))
}

func (c *CPU) pushWord(v uint16) {
	c.push(bitutil.HighByte(v))
	c.push(bitutil.LowByte(v))
}

func (c *CPU) popWord() uint16 {
	lo := c.pop()
	hi := c.pop()
	return bitutil.Word(lo, hi)
}

func (c *CPU) setZN(v uint8) {
	c.Z = v == 0
	c.N = v&nFlagMask != 0
}

// StatusByte packs the processor flags into a byte with bit 5 (unused)
// always set, matching real 6502 reads of the status register.
func (c *CPU) StatusByte() uint8 {
	var s uint8
	if c.N {
		s |= nFlagMask
	}
	if c.V {
		s |= vFlagMask
	}
	s |= unusedMask
	if c.B {
		s |= bFlagMask
	}
	if c.D {
		s |= dFlagMask
	}
	if c.I {
		s |= iFlagMask
	}
	if c.Z {
		s |= zFlagMask
	}
	if c.C {
		s |= cFlagMask
	}
	return s
}

// SetStatusByte unpacks a status byte into the processor flags (used by
// PLP and RTI).
func (c *CPU) SetStatusByte(s uint8) {
	c.N = s&nFlagMask != 0
	c.V = s&vFlagMask != 0
	c.B = s&bFlagMask != 0
	c.D = s&dFlagMask != 0
	c.I = s&iFlagMask != 0
	c.Z = s&zFlagMask != 0
	c.C = s&cFlagMask != 0
}
