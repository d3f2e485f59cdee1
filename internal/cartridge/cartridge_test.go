package cartridge

import (
	"bytes"
	"testing"

	"github.com/jotare/nes-emulator/internal/neserr"
)

// buildINES assembles a minimal mapper-0 iNES image: a 16-byte header
// followed by prgUnits 16KB PRG banks and chrUnits 8KB CHR banks.
func buildINES(prgUnits, chrUnits uint8, flags6 uint8) []byte {
	header := []byte{'N', 'E', 'S', 0x1A, prgUnits, chrUnits, flags6, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	prg := make([]byte, int(prgUnits)*prgBankSize)
	chr := make([]byte, int(chrUnits)*chrBankSize)
	buf := append([]byte{}, header...)
	buf = append(buf, prg...)
	buf = append(buf, chr...)
	return buf
}

func TestLoadValidNROMImage(t *testing.T) {
	data := buildINES(1, 1, 0x00)
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.MapperID() != 0 {
		t.Fatalf("MapperID() = %d, want 0", c.MapperID())
	}
	if c.Mirroring() != MirrorHorizontal {
		t.Fatalf("Mirroring() = %v, want horizontal", c.Mirroring())
	}
	if c.HasBattery() {
		t.Fatal("HasBattery() = true, want false")
	}
}

func TestLoadVerticalMirroringAndBattery(t *testing.T) {
	data := buildINES(1, 1, 0x03) // bit0 vertical, bit1 battery
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Mirroring() != MirrorVertical {
		t.Fatalf("Mirroring() = %v, want vertical", c.Mirroring())
	}
	if !c.HasBattery() {
		t.Fatal("HasBattery() = false, want true")
	}
}

func TestLoadFourScreenMirroringOverridesBit0(t *testing.T) {
	data := buildINES(1, 1, 0x09) // bit3 four-screen, bit0 set too
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Mirroring() != MirrorFourScreen {
		t.Fatalf("Mirroring() = %v, want four-screen", c.Mirroring())
	}
}

func TestLoadMissingMagicFails(t *testing.T) {
	data := buildINES(1, 1, 0)
	data[0] = 'X'
	_, err := Load(bytes.NewReader(data))
	if !neserr.Is(err, neserr.InvalidHeader) {
		t.Fatalf("err = %v, want InvalidHeader", err)
	}
}

func TestLoadShortHeaderFails(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte{'N', 'E', 'S'}))
	if !neserr.Is(err, neserr.InvalidHeader) {
		t.Fatalf("err = %v, want InvalidHeader", err)
	}
}

func TestLoadShortPRGFails(t *testing.T) {
	data := buildINES(1, 1, 0)
	// Truncate inside the PRG ROM region (header + partial PRG, no CHR).
	truncated := data[:headerSize+100]
	_, err := Load(bytes.NewReader(truncated))
	if !neserr.Is(err, neserr.InvalidHeader) {
		t.Fatalf("err = %v, want InvalidHeader", err)
	}
}

func TestLoadUnsupportedMapperFails(t *testing.T) {
	data := buildINES(1, 1, 0x10) // mapper nibble in flags6 = 1
	_, err := Load(bytes.NewReader(data))
	if !neserr.Is(err, neserr.UnsupportedMapper) {
		t.Fatalf("err = %v, want UnsupportedMapper", err)
	}
}

func TestLoadCHRRAMFallbackWhenNoCHRUnits(t *testing.T) {
	data := buildINES(1, 0, 0)
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.WriteCHR(0x0000, 0xAB)
	if got := c.ReadCHR(0x0000); got != 0xAB {
		t.Fatalf("ReadCHR(0) = $%02X, want $AB (CHR-RAM should be writable)", got)
	}
}

func TestMapper0PRGMirrorsSingle16KBBank(t *testing.T) {
	data := buildINES(1, 1, 0)
	// Plant a sentinel at the start of the single PRG bank.
	data[16] = 0x42
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	low := c.ReadPRG(0x8000)
	high := c.ReadPRG(0xC000)
	if low != 0x42 || high != 0x42 {
		t.Fatalf("ReadPRG($8000)=$%02X ReadPRG($C000)=$%02X, want both $42 (16KB mirror)", low, high)
	}
}

func TestMapper0PRGRAMReadWrite(t *testing.T) {
	data := buildINES(1, 1, 0)
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.WritePRG(0x6000, 0x99)
	if got := c.ReadPRG(0x6000); got != 0x99 {
		t.Fatalf("ReadPRG($6000) = $%02X, want $99", got)
	}
}

func TestMapper0PRGROMWritesIgnored(t *testing.T) {
	data := buildINES(1, 1, 0)
	data[16] = 0x01
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.WritePRG(0x8000, 0xFF)
	if got := c.ReadPRG(0x8000); got != 0x01 {
		t.Fatalf("ReadPRG($8000) = $%02X, want $01 (writes to PRG ROM are no-ops)", got)
	}
}

func TestSRAMRoundTrip(t *testing.T) {
	data := buildINES(1, 1, 0)
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	saved := make([]uint8, 8*1024)
	saved[0] = 0xAB
	c.LoadSRAM(saved)
	if got := c.SRAM()[0]; got != 0xAB {
		t.Fatalf("SRAM()[0] = $%02X, want $AB", got)
	}
}

func TestIRQNeverAssertedByMapper0(t *testing.T) {
	data := buildINES(1, 1, 0)
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.IRQ() {
		t.Fatal("IRQ() = true, want false for mapper 0")
	}
}
