package clock

import (
	"github.com/jotare/nes-emulator/internal/apu"
	"github.com/jotare/nes-emulator/internal/cartridge"
	"github.com/jotare/nes-emulator/internal/input"
	"github.com/jotare/nes-emulator/internal/ppu"
)

// cartPRGDevice exposes a cartridge's PRG window ($4020-$FFFF, which
// includes PRG RAM at $6000-$7FFF and PRG ROM at $8000+) as a bus device.
type cartPRGDevice struct {
	cart *cartridge.Cartridge
}

func (d cartPRGDevice) Read(addr uint16) uint8         { return d.cart.ReadPRG(addr) }
func (d cartPRGDevice) Write(addr uint16, value uint8) { d.cart.WritePRG(addr, value) }

// cartCHRDevice exposes a cartridge's CHR window ($0000-$1FFF on the PPU
// bus) as a bus device.
type cartCHRDevice struct {
	cart *cartridge.Cartridge
}

func (d cartCHRDevice) Read(addr uint16) uint8         { return d.cart.ReadCHR(addr) }
func (d cartCHRDevice) Write(addr uint16, value uint8) { d.cart.WriteCHR(addr, value) }

// ppuRegisterDevice exposes the PPU's $2000-$2007 register file (mirrored
// every 8 bytes by the PPU itself) across the CPU's $2000-$3FFF window.
type ppuRegisterDevice struct {
	ppu *ppu.PPU
}

func (d ppuRegisterDevice) Read(addr uint16) uint8         { return d.ppu.ReadRegister(addr) }
func (d ppuRegisterDevice) Write(addr uint16, value uint8) { d.ppu.WriteRegister(addr, value) }

// apuRegisterDevice exposes $4000-$4013 (channel registers, write-only and
// inert here) as a bus device.
type apuRegisterDevice struct {
	apu *apu.APU
}

func (d apuRegisterDevice) Read(addr uint16) uint8         { return 0 }
func (d apuRegisterDevice) Write(addr uint16, value uint8) { d.apu.WriteRegister(addr, value) }

// apuStatusDevice exposes $4015: reads report channel status, writes set
// channel enables.
type apuStatusDevice struct {
	apu *apu.APU
}

func (d apuStatusDevice) Read(addr uint16) uint8         { return d.apu.ReadStatus() }
func (d apuStatusDevice) Write(addr uint16, value uint8) { d.apu.WriteRegister(addr, value) }

// controllerDevice exposes $4016/$4017 as a bus device.
type controllerDevice struct {
	pair *input.Pair
}

func (d controllerDevice) Read(addr uint16) uint8         { return d.pair.Read(addr) }
func (d controllerDevice) Write(addr uint16, value uint8) { d.pair.Write(addr, value) }

// dmaTriggerDevice exposes $4014: a write starts an OAM DMA transfer. The
// actual CPU stall is computed by the owning System, which tracks cycle
// parity; this device only forwards the written source page to it.
type dmaTriggerDevice struct {
	sys *System
}

func (d dmaTriggerDevice) Read(addr uint16) uint8 { return 0 }
func (d dmaTriggerDevice) Write(addr uint16, value uint8) {
	d.sys.triggerDMA(value)
}
