package sound

import "testing"

func TestChannel_MarshalOffsets(t *testing.T) {
	ch := Channel{
		Flags:      FlagEnabled | FlagPCM,
		Route:      Route(2).withSlot(13),
		EndScale:   3,
		SeqPos:     0x0102,
		SeqEnd:     0x0304,
		SeqCmd:     0x1234,
		NoteOffset: 0xFE,
		StackPtr:   0x1E,
		Control:    CtrlDrum | CtrlLoopDisable,
		Note:       0xC0,
		PhaseAmpl:  0x17,
	}
	data, err := ch.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	checks := []struct {
		off  int
		want uint8
	}{
		{0x00, 0xC0},
		{0x01, 0x6A},
		{0x02, 3},
		{0x03, 0x02}, {0x04, 0x01},
		{0x05, 0x04}, {0x06, 0x03},
		{0x07, 0x34}, {0x08, 0x12},
		{0x09, 0xFE},
		{0x0A, 0x1E},
		{0x12, 0xC0},
		{0x13, 0x17},
		{0x16, 0x82},
	}
	for _, c := range checks {
		if data[c.off] != c.want {
			t.Errorf("offset 0x%02X: expected 0x%02X, got 0x%02X", c.off, c.want, data[c.off])
		}
	}

	var back Channel
	if err := back.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if back != ch {
		t.Errorf("expected %+v, got %+v", ch, back)
	}
	if back.StartAddr() != 0x17C0 {
		t.Errorf("expected start 0x17C0, got 0x%04X", back.StartAddr())
	}
}

func TestChannel_UnmarshalShort(t *testing.T) {
	var ch Channel
	if err := ch.UnmarshalBinary(make([]byte, 10)); err == nil {
		t.Error("expected error for short record")
	}
}

func TestRoute_Fields(t *testing.T) {
	r := (RouteSuppressed | 5).withSlot(11)
	if r.YM() != 5 || r.Slot() != 11 || r&RouteSuppressed == 0 {
		t.Errorf("expected YM 5 slot 11 suppressed, got 0x%02X", uint8(r))
	}
	r = r.withSlot(15)
	if r.YM() != 5 || r.Slot() != 15 {
		t.Errorf("expected slot replaced keeping YM, got 0x%02X", uint8(r))
	}
	if slot, ok := r.SampleSlot(); !ok || slot != 15 {
		t.Errorf("expected sample slot 15, got %d ok=%v", slot, ok)
	}
	if _, ok := Route(5).SampleSlot(); ok {
		t.Error("expected no sample slot on a fresh route")
	}
}

func TestStack_PushPop(t *testing.T) {
	ch := Channel{StackPtr: stackTop}
	ch.push(0x1111)
	ch.push(0x2222)
	if got := ch.pop(); got != 0x2222 {
		t.Errorf("expected 0x2222, got 0x%04X", got)
	}
	if got := ch.pop(); got != 0x1111 {
		t.Errorf("expected 0x1111, got 0x%04X", got)
	}
	if ch.StackPtr != stackTop {
		t.Errorf("expected empty stack, got 0x%02X", ch.StackPtr)
	}
}

func TestStack_BoundsUnderAssertions(t *testing.T) {
	SetAssertions(true)
	defer SetAssertions(false)

	ch := Channel{StackPtr: stackTop}
	ch.push(1)
	ch.push(2)
	expectPanic(t, "overflow", func() { ch.push(3) })

	ch = Channel{StackPtr: stackTop}
	expectPanic(t, "underflow", func() { ch.pop() })
}

func TestStack_UncheckedByDefault(t *testing.T) {
	ch := Channel{StackPtr: stackTop}
	ch.push(1)
	ch.push(2)
	ch.push(3)
	if ch.StackPtr != stackBottom-2 {
		t.Errorf("expected stack pointer 0x%02X, got 0x%02X", stackBottom-2, ch.StackPtr)
	}
}

func TestLoopCounter_OutsideRecordPanics(t *testing.T) {
	var ch Channel
	if ch.loopCounter(0x1B) != &ch.Loops[4] {
		t.Error("expected offset 0x1B to be the last counter")
	}
	expectPanic(t, "offset 0x1C", func() { ch.loopCounter(0x1C) })
}

func TestChannelID_String(t *testing.T) {
	tests := []struct {
		id   ChannelID
		want string
	}{
		{ChFM1, "FM1"},
		{ChDrum6, "DRUM6"},
		{ChPCMFX8, "PCMFX8"},
		{ChFMFX2, "FMFX2"},
		{ChShadow3, "SHADOW3"},
		{NumChannels, "CH30"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("expected %s, got %s", tt.want, got)
		}
	}
}
