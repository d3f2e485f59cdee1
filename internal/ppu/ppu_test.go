package ppu

import "testing"

type fakeBus struct {
	data [0x4000]uint8
}

func (b *fakeBus) Read(addr uint16) uint8         { return b.data[addr&0x3FFF] }
func (b *fakeBus) Write(addr uint16, value uint8) { b.data[addr&0x3FFF] = value }

func newTestPPU() (*PPU, *fakeBus) {
	bus := &fakeBus{}
	p := New()
	p.SetBus(bus)
	return p, bus
}

func TestPPUADDRComposesV(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2006, 0x21) // high byte, masked to 6 bits
	p.WriteRegister(0x2006, 0x08) // low byte

	if got := p.v.raw(); got != 0x2108 {
		t.Fatalf("v = $%04X, want $2108", got)
	}
	if p.w {
		t.Error("w should be cleared after the second write")
	}
}

func TestLoopyBitWidths(t *testing.T) {
	p, _ := newTestPPU()
	p.v.data = 0xFFFF
	if p.v.raw() > 0x7FFF {
		t.Fatalf("v must stay within 15 bits, got $%04X", p.v.raw())
	}

	p.WriteRegister(0x2005, 0xFF) // fine X takes low 3 bits
	if p.x > 0x07 {
		t.Fatalf("fine X must stay within 3 bits, got $%02X", p.x)
	}
}

func TestStatusReadClearsVBlankAndLatch(t *testing.T) {
	p, _ := newTestPPU()
	p.status = statusVBlank
	p.w = true

	v := p.ReadRegister(0x2002)
	if v&statusVBlank == 0 {
		t.Fatal("read value should report VBlank was set")
	}
	if p.status&statusVBlank != 0 {
		t.Error("VBlank flag should be cleared after the read")
	}
	if p.w {
		t.Error("write latch should be cleared after reading $2002")
	}
}

func TestPaletteReadPassesBusValueThroughUnmasked(t *testing.T) {
	p, bus := newTestPPU()
	bus.data[0x3F00] = 0xFF // raw memory could hold garbage in bits 7-6
	if got := p.readPalette(0); got != 0xFF {
		// the PPU bus itself is responsible for masking (memdev.PaletteRAM);
		// this fake bus doesn't mask, so assert the PPU passes the value
		// through unmodified rather than double-masking.
		t.Fatalf("readPalette(0) = $%02X, want $FF passed through unmasked", got)
	}
}

func TestVBlankSetAndClearedAcrossFrame(t *testing.T) {
	p, _ := newTestPPU()
	p.scanline, p.dot = 241, 0

	p.Step() // dot becomes 1, VBlank should set
	if p.status&statusVBlank == 0 {
		t.Fatal("VBlank should be set at scanline 241 dot 1")
	}

	p.scanline, p.dot = -1, 0
	p.Step() // dot becomes 1, VBlank should clear on pre-render
	if p.status&statusVBlank != 0 {
		t.Fatal("VBlank should clear at pre-render scanline dot 1")
	}
}

func TestOddFrameSkipOnlyWhenRenderingEnabled(t *testing.T) {
	p, _ := newTestPPU()
	p.mask = maskShowBG
	p.scanline, p.dot = -1, 339
	p.odd = true

	p.Step()
	if p.dot != 0 || p.scanline != 0 {
		t.Fatalf("expected skip to land on scanline 0 dot 0, got scanline=%d dot=%d", p.scanline, p.dot)
	}
}

func TestNMIFiresOnVBlankWhenEnabled(t *testing.T) {
	p, _ := newTestPPU()
	fired := false
	p.SetNMICallback(func() { fired = true })
	p.ctrl = ctrlNMIEnable
	p.scanline, p.dot = 241, 0

	p.Step()
	if !fired {
		t.Fatal("NMI callback should fire when PPUCTRL bit 7 is set at VBlank start")
	}
}

func TestSpritePixelReportsSpriteZero(t *testing.T) {
	p, bus := newTestPPU()
	p.mask = maskShowBG | maskShowSprites
	p.oam[0], p.oam[1], p.oam[2], p.oam[3] = 10, 0, 0, 0 // sprite 0 at (0, 11)
	bus.data[0x0000] = 0x80                              // tile 0 pattern low plane, bit 7 set
	p.scanline = 11
	p.dot = 1

	p.evaluateSprites()
	_, _, _, isZero := p.spritePixel(0)
	if !isZero {
		t.Fatal("expected sprite 0 to be the contributing sprite at x=0")
	}
}
