package sound

import "testing"

// testLayout places every table in the first 4KB of a synthetic image.
// Bytecode programs go from 0x1000.
var testLayout = Layout{
	CommandTable:       0x0100,
	NoteTable:          0x0200,
	FMRoutineTable:     0x0300,
	ModulationTable:    0x0400,
	SampleTable:        0x0500,
	EngineAddressTable: 0x0600,
	EnginePitchTable:   0x0700,
	EngineVoiceTable:   0x0800,
	TrafficVolumeTable: 0x0A00,
	TrafficPitchTable:  0x0A40,
}

const (
	testProgram      = 0x1000
	testRoutines     = 0x0F00
	testBlocks       = 0x0F10
	testEmptyFMBlock = 0x0FF0
)

// testROM builds a synthetic sound program image.
type testROM struct {
	data []byte
}

// newTestROM returns an image whose FM block tables all resolve to an
// empty block, so FM channels can be finalized and released safely.
func newTestROM() *testROM {
	b := &testROM{data: make([]byte, 0x4000)}
	for cmd := uint16(0); cmd < 32; cmd++ {
		b.put16(testLayout.FMRoutineTable+cmd*2, testRoutines)
	}
	for r := uint16(0); r < 4; r++ {
		b.put16(testRoutines+r*2, testBlocks)
	}
	for blk := uint16(0); blk < 16; blk++ {
		b.put16(testBlocks+blk*2, testEmptyFMBlock)
	}
	b.put(testEmptyFMBlock, fmBlockEnd)
	return b
}

func (b *testROM) put(addr uint16, v ...byte) {
	copy(b.data[addr:], v)
}

func (b *testROM) put16(addr uint16, v uint16) {
	b.data[addr] = uint8(v)
	b.data[addr+1] = uint8(v >> 8)
}

// fmWrite is one recorded register write.
type fmWrite struct {
	reg, val uint8
}

// recordingFM logs register writes and reports a settable status.
type recordingFM struct {
	writes []fmWrite
	status uint8
}

func (f *recordingFM) WriteRegister(reg, val uint8) {
	f.writes = append(f.writes, fmWrite{reg, val})
}

func (f *recordingFM) ReadStatus() uint8 {
	return f.status
}

func (f *recordingFM) has(reg, val uint8) bool {
	for _, w := range f.writes {
		if w.reg == reg && w.val == val {
			return true
		}
	}
	return false
}

// newTestSound creates an engine over b with assertions on for the test.
func newTestSound(t *testing.T, b *testROM) (*Sound, *recordingFM) {
	t.Helper()
	rom, err := NewROM(b.data)
	if err != nil {
		t.Fatalf("NewROM failed: %v", err)
	}
	SetAssertions(true)
	t.Cleanup(func() { SetAssertions(false) })

	fm := &recordingFM{}
	return NewWithLayout(rom, testLayout, fm), fm
}

// fmChannel returns a record that runs prog on its first tick.
func fmChannel(prog uint16, ym uint8) Channel {
	return Channel{
		Flags:    FlagEnabled,
		Route:    Route(ym),
		EndScale: 1,
		SeqEnd:   1,
		SeqCmd:   prog,
		StackPtr: stackTop,
	}
}

// pcmChannel returns a PCM record that runs prog on its first tick.
func pcmChannel(prog uint16) Channel {
	ch := fmChannel(prog, 0)
	ch.Flags |= FlagPCM
	return ch
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}
