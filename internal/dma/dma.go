// Package dma implements OAM DMA: a CPU write to $4014 stalls the CPU and
// copies one 256-byte page of CPU memory into PPU OAM.
package dma

// CPUBus is the source side of the transfer: plain CPU-address-space reads.
type CPUBus interface {
	Read(addr uint16) uint8
}

// OAMWriter is the destination side: the PPU's OAMDATA register port. DMA
// writes through $2004 rather than directly into OAM so the transfer
// starts at whatever OAMADDR the CPU last set and wraps exactly as
// hardware does.
type OAMWriter interface {
	WriteRegister(addr uint16, value uint8)
}

// Unit drives an OAM DMA transfer. It owns no state between transfers; each
// Trigger call runs the copy to completion and reports the CPU stall in
// cycles, since the core's clock only needs to know how long to hold the
// CPU rather than replay the transfer dot by dot.
type Unit struct {
	cpuBus CPUBus
	oam    OAMWriter
}

// New creates a DMA unit wired to the CPU's memory map and the PPU's OAM.
func New(cpuBus CPUBus, oam OAMWriter) *Unit {
	return &Unit{cpuBus: cpuBus, oam: oam}
}

// Trigger performs a CPU write to $4014: copies the 256 bytes of CPU page
// sourcePage into OAM through OAMDATA, starting at whatever OAM address is
// currently latched, and returns the number of CPU cycles the transfer
// stalls the CPU for. The stall is 513 cycles when triggered on an even
// CPU cycle, 514 on an odd one (the extra alignment cycle real hardware
// spends waiting for the next read cycle).
func (u *Unit) Trigger(sourcePage uint8, cpuCycleIsOdd bool) uint64 {
	base := uint16(sourcePage) << 8
	for i := 0; i < 256; i++ {
		value := u.cpuBus.Read(base + uint16(i))
		u.oam.WriteRegister(0x2004, value)
	}
	if cpuCycleIsOdd {
		return 514
	}
	return 513
}
