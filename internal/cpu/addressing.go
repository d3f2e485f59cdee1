package cpu

import "github.com/jotare/nes-emulator/internal/bitutil"

// AddressingMode identifies how an instruction's operand address is formed.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const zeroPageMask = 0xFF

// operandAddress advances PC past the instruction's operand bytes and
// returns the effective address plus whether an indexed computation
// crossed a page boundary (relevant to cycle accounting).
func (c *CPU) operandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		c.PC++
		return 0, false

	case Immediate:
		addr := c.PC + 1
		c.PC += 2
		return addr, false

	case ZeroPage:
		addr := uint16(c.bus.Read(c.PC + 1))
		c.PC += 2
		return addr, false

	case ZeroPageX:
		base := c.bus.Read(c.PC + 1)
		c.PC += 2
		return uint16((base + c.X) & zeroPageMask), false

	case ZeroPageY:
		base := c.bus.Read(c.PC + 1)
		c.PC += 2
		return uint16((base + c.Y) & zeroPageMask), false

	case Relative:
		offset := bitutil.SignExtend(c.bus.Read(c.PC + 1))
		oldPC := c.PC + 2
		newPC := uint16(int32(oldPC) + int32(offset))
		c.PC = oldPC
		return newPC, bitutil.CrossesPage(oldPC, newPC)

	case Absolute:
		lo := c.bus.Read(c.PC + 1)
		hi := c.bus.Read(c.PC + 2)
		c.PC += 3
		return bitutil.Word(lo, hi), false

	case AbsoluteX:
		lo := c.bus.Read(c.PC + 1)
		hi := c.bus.Read(c.PC + 2)
		base := bitutil.Word(lo, hi)
		addr := base + uint16(c.X)
		c.PC += 3
		return addr, bitutil.CrossesPage(base, addr)

	case AbsoluteY:
		lo := c.bus.Read(c.PC + 1)
		hi := c.bus.Read(c.PC + 2)
		base := bitutil.Word(lo, hi)
		addr := base + uint16(c.Y)
		c.PC += 3
		return addr, bitutil.CrossesPage(base, addr)

	case Indirect: // JMP only
		lo := c.bus.Read(c.PC + 1)
		hi := c.bus.Read(c.PC + 2)
		ptr := bitutil.Word(lo, hi)
		var addr uint16
		if bitutil.LowByte(ptr) == zeroPageMask {
			// Hardware bug: the high byte wraps to the start of the same
			// page instead of crossing into the next one.
			rlo := c.bus.Read(ptr)
			rhi := c.bus.Read(ptr &^ zeroPageMask)
			addr = bitutil.Word(rlo, rhi)
		} else {
			rlo := c.bus.Read(ptr)
			rhi := c.bus.Read(ptr + 1)
			addr = bitutil.Word(rlo, rhi)
		}
		c.PC += 3
		return addr, false

	case IndexedIndirect:
		base := c.bus.Read(c.PC + 1)
		ptr := (base + c.X) & zeroPageMask
		lo := c.bus.Read(uint16(ptr))
		hi := c.bus.Read(uint16((ptr + 1) & zeroPageMask))
		c.PC += 2
		return bitutil.Word(lo, hi), false

	case IndirectIndexed:
		ptr := uint16(c.bus.Read(c.PC + 1))
		lo := c.bus.Read(ptr)
		hi := c.bus.Read((ptr + 1) & zeroPageMask)
		base := bitutil.Word(lo, hi)
		addr := base + uint16(c.Y)
		c.PC += 2
		return addr, bitutil.CrossesPage(base, addr)

	default:
		return 0, false
	}
}
