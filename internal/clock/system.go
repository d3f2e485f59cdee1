// Package clock wires the CPU, PPU, APU stub, cartridge, controllers and
// DMA unit into one system and drives them with the core's deterministic
// scheduling loop.
package clock

import (
	"github.com/golang/glog"

	"github.com/jotare/nes-emulator/internal/apu"
	"github.com/jotare/nes-emulator/internal/bus"
	"github.com/jotare/nes-emulator/internal/cartridge"
	"github.com/jotare/nes-emulator/internal/cpu"
	"github.com/jotare/nes-emulator/internal/dma"
	"github.com/jotare/nes-emulator/internal/input"
	"github.com/jotare/nes-emulator/internal/memdev"
	"github.com/jotare/nes-emulator/internal/ppu"
)

// System owns every emulated component and the two address-decoded buses
// connecting them.
type System struct {
	cart        *cartridge.Cartridge
	cpu         *cpu.CPU
	ppu         *ppu.PPU
	apu         *apu.APU
	controllers *input.Pair
	dmaUnit     *dma.Unit

	cpuBus *bus.Bus
	ppuBus *bus.Bus

	cpuCycles   uint64
	dmaStall    uint64
	frameReady  bool
}

func nametableMirrorOf(m cartridge.MirrorMode) memdev.MirrorMode {
	switch m {
	case cartridge.MirrorVertical:
		return memdev.MirrorVertical
	case cartridge.MirrorSingleScreen0:
		return memdev.MirrorSingleScreen0
	case cartridge.MirrorSingleScreen1:
		return memdev.MirrorSingleScreen1
	case cartridge.MirrorFourScreen:
		return memdev.MirrorFourScreen
	default:
		return memdev.MirrorHorizontal
	}
}

// NewSystem builds a fully wired NES around an already-loaded cartridge.
func NewSystem(cart *cartridge.Cartridge) *System {
	s := &System{
		cart:        cart,
		ppu:         ppu.New(),
		apu:         apu.New(),
		controllers: input.NewPair(),
	}
	s.dmaUnit = dma.New(cpuBusAdapter{s}, s.ppu)

	s.ppuBus = bus.New("ppu")
	s.ppuBus.MustAttach(0x0000, 0x2000, "cartridge-chr", cartCHRDevice{cart})
	nametable := memdev.NewNametable(nametableMirrorOf(cart.Mirroring()))
	s.ppuBus.MustAttach(0x2000, 0x3000, "nametable", nametable)
	s.ppuBus.MustAttach(0x3000, 0x3F00, "nametable-mirror", nametable)
	s.ppuBus.MustAttach(0x3F00, 0x4000, "palette", memdev.NewPaletteRAM())
	s.ppu.SetBus(s.ppuBus)

	s.cpuBus = bus.New("cpu")
	s.cpuBus.MustAttach(0x0000, 0x2000, "wram", memdev.NewMirroredRAM(0x800, 0x2000))
	s.cpuBus.MustAttach(0x2000, 0x4000, "ppu-registers", ppuRegisterDevice{s.ppu})
	s.cpuBus.MustAttach(0x4000, 0x4014, "apu", apuRegisterDevice{s.apu})
	s.cpuBus.MustAttach(0x4014, 0x4015, "dma", dmaTriggerDevice{s})
	s.cpuBus.MustAttach(0x4015, 0x4016, "apu-status", apuStatusDevice{s.apu})
	s.cpuBus.MustAttach(0x4016, 0x4018, "controllers", controllerDevice{s.controllers})
	s.cpuBus.MustAttach(0x4020, 0x10000, "cartridge-prg", cartPRGDevice{cart})

	s.cpu = cpu.New(s.cpuBus, cpu.Options{})
	s.ppu.SetNMICallback(func() {
		s.cpu.SetNMI(true)
		s.cpu.SetNMI(false)
	})
	s.ppu.SetFrameCallback(func() { s.frameReady = true })

	glog.Infof("clock: system wired, mapper=%d mirror=%v", cart.MapperID(), cart.Mirroring())
	return s
}

// cpuBusAdapter lets the DMA unit read CPU memory without depending on the
// bus package directly.
type cpuBusAdapter struct{ sys *System }

func (a cpuBusAdapter) Read(addr uint16) uint8 { return a.sys.cpuBus.Read(addr) }

// Reset brings every component to its power-up state.
func (s *System) Reset() {
	s.cpu.Reset()
	s.ppu.Reset()
	s.apu.Reset()
	s.controllers.Reset()
	s.cpuCycles = 0
	s.dmaStall = 0
	s.frameReady = false
}

// triggerDMA is called by dmaTriggerDevice on a $4014 write.
func (s *System) triggerDMA(page uint8) {
	if s.dmaStall > 0 {
		return
	}
	s.dmaStall = s.dmaUnit.Trigger(page, s.cpuCycles%2 == 1)
}

// FrameBuffer returns the PPU's current frame buffer.
func (s *System) FrameBuffer() *[256 * 240]uint32 { return s.ppu.FrameBuffer() }

// SetButton forwards a controller input event.
func (s *System) SetButton(controller int, button input.Button, pressed bool) {
	if controller == 1 {
		s.controllers.Controller2.SetButton(button, pressed)
		return
	}
	s.controllers.Controller1.SetButton(button, pressed)
}
