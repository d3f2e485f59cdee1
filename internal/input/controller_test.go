package input

import "testing"

func TestControllerReadSequenceOrder(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonSelect, true)
	c.SetButton(ButtonLeft, true)

	c.Write(0x01)
	c.Write(0x00)

	want := []uint8{1, 0, 1, 0, 0, 0, 1, 0} // A,B,Select,Start,Up,Down,Left,Right
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Fatalf("read %d = %d, want %d", i, got, w)
		}
	}
}

func TestControllerNinthReadReturnsOne(t *testing.T) {
	c := New()
	c.Write(0x01)
	c.Write(0x00)
	for i := 0; i < 8; i++ {
		c.Read()
	}
	if got := c.Read(); got != 1 {
		t.Fatalf("9th read = %d, want 1", got)
	}
}

func TestControllerStrobeHighAlwaysReturnsButtonA(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.Write(0x01)
	if got := c.Read(); got != 1 {
		t.Fatalf("read while strobed = %d, want 1", got)
	}
	if got := c.Read(); got != 1 {
		t.Fatalf("repeated read while strobed = %d, want 1", got)
	}
}

func TestPairSharesStrobeLine(t *testing.T) {
	p := NewPair()
	p.Controller2.SetButton(ButtonB, true)
	p.Write(0x4016, 0x01)
	p.Write(0x4016, 0x00)

	if got := p.Read(0x4017); got != 0 {
		t.Fatalf("controller2 bit0 (A) = %d, want 0", got)
	}
	if got := p.Read(0x4017); got != 1 {
		t.Fatalf("controller2 bit1 (B) = %d, want 1", got)
	}
}

func TestResetClearsLatchAndStrobe(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.Write(0x01)
	c.Reset()
	if got := c.Read(); got != 0 {
		t.Fatalf("read after reset = %d, want 0 (buttons cleared)", got)
	}
}
