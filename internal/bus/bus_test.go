package bus

import (
	"testing"

	"github.com/jotare/nes-emulator/internal/memdev"
)

func TestAttachAndDispatch(t *testing.T) {
	b := New("test")
	ram := memdev.NewRAM(0x800)
	if err := b.Attach(0x0000, 0x2000, "ram", ram); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	b.Write(0x0010, 0x42)
	if got := b.Read(0x0010); got != 0x42 {
		t.Fatalf("Read = $%02X, want $42", got)
	}
}

func TestAttachOverlapFails(t *testing.T) {
	b := New("test")
	ram1 := memdev.NewRAM(0x800)
	ram2 := memdev.NewRAM(0x800)
	if err := b.Attach(0x0000, 0x1000, "a", ram1); err != nil {
		t.Fatalf("first Attach: %v", err)
	}
	if err := b.Attach(0x0800, 0x1800, "b", ram2); err == nil {
		t.Fatal("expected an overlap error")
	}
}

func TestReadUnmappedReturnsOpenBus(t *testing.T) {
	b := New("test")
	ram := memdev.NewRAM(0x800)
	b.MustAttach(0x0000, 0x0800, "ram", ram)

	b.Write(0x0000, 0x99)
	if got := b.Read(0x4000); got != 0x99 {
		t.Fatalf("unmapped read = $%02X, want open bus value $99", got)
	}
}

func TestOpenBusReportsUnsetBeforeAnyAccess(t *testing.T) {
	b := New("test")
	if _, has := b.OpenBus(); has {
		t.Fatal("OpenBus should report unset before any access")
	}
}

func TestWriteUnmappedIsDroppedNotFatal(t *testing.T) {
	b := New("test")
	b.Write(0x4000, 0x01) // should not panic
}

func TestMustAttachPanicsOnOverlap(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected MustAttach to panic on overlap")
		}
	}()
	b := New("test")
	ram := memdev.NewRAM(0x10)
	b.MustAttach(0x0000, 0x10, "a", ram)
	b.MustAttach(0x0008, 0x18, "b", ram)
}
