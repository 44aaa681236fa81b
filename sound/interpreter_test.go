package sound

import "testing"

func TestFinalizeFM_ClearsFlagsAndKeysOff(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x80|opFinalizeFM)
	s, fm := newTestSound(t, b)
	s.ch[ChFM3] = fmChannel(testProgram, 2)

	s.Tick()

	if s.ch[ChFM3].Flags != 0 {
		t.Errorf("expected flags 0 after finalize, got 0x%02X", s.ch[ChFM3].Flags)
	}
	if !fm.has(ymKeyOn, 0x02) {
		t.Errorf("expected key-off write 0x08=0x02, got %v", fm.writes)
	}
}

func TestFinalizePCM_RestoresSlotAndKeysOff(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x80|opFinalizePCM)
	s, fm := newTestSound(t, b)

	s.pcm.SetVolume(14, 0x11, 0x22)
	s.saveSlot(14)
	s.pcm.SetVolume(14, 0x3F, 0x3F)

	ch := pcmChannel(testProgram)
	ch.Route = ch.Route.withSlot(14)
	s.ch[ChPCMFX1] = ch

	s.Tick()

	if s.ch[ChPCMFX1].Flags != 0 {
		t.Errorf("expected flags 0 after finalize, got 0x%02X", s.ch[ChPCMFX1].Flags)
	}
	if !fm.has(ymKeyOn, 0x00) {
		t.Errorf("expected key-off write 0x08=0x00, got %v", fm.writes)
	}
	if l, r := s.pcm.Volume(14); l != 0x11 || r != 0x22 {
		t.Errorf("expected restored volume 0x11/0x22, got 0x%02X/0x%02X", l, r)
	}
	if s.backupValid&(1<<14) != 0 {
		t.Error("expected backup for slot 14 consumed")
	}
}

func TestFinalizePCM_WithoutSlotLeavesEngineSlots(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x80|opFinalizePCM)
	s, _ := newTestSound(t, b)
	s.pcm.SetFlags(engineSlotBase, 0)
	s.ch[ChPCMFX7] = pcmChannel(testProgram)

	s.processChannels()

	if s.ch[ChPCMFX7].Flags != 0 {
		t.Errorf("expected flags 0 after finalize, got 0x%02X", s.ch[ChPCMFX7].Flags)
	}
	if !s.pcm.Active(engineSlotBase) {
		t.Error("expected engine slot 0 left playing")
	}
}

func TestFinalizePCM_OtherSlotWithoutBackupStops(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x80|opFinalizePCM)
	s, _ := newTestSound(t, b)
	s.pcm.SetFlags(12, 0)
	s.pcm.SetFlags(14, 0)

	ch := pcmChannel(testProgram)
	ch.Route = ch.Route.withSlot(12)
	s.ch[ChPCMFX2] = ch

	s.processChannels()

	if s.pcm.Active(12) {
		t.Error("expected slot 12 stopped")
	}
	if !s.pcm.Active(14) {
		t.Error("expected slot 14 untouched")
	}
}

func TestVolume_PCMClamp(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x80|opVolume, 0x50, 0x20, 0x01, 0x04)
	s, _ := newTestSound(t, b)
	s.ch[ChDrum1] = pcmChannel(testProgram)

	s.Tick()

	ch := s.ch[ChDrum1]
	if ch.VolL != 0 {
		t.Errorf("expected too-loud left volume 0x50 to clamp to 0, got 0x%02X", ch.VolL)
	}
	if ch.VolR != 0x20 {
		t.Errorf("expected right volume 0x20, got 0x%02X", ch.VolR)
	}
	if ch.SeqEnd != 4 {
		t.Errorf("expected section length 4, got %d", ch.SeqEnd)
	}
}

func TestVolume_FMWritesReleaseMarker(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x80|opVolume, 0x5A, 0x01, 0x04)
	s, fm := newTestSound(t, b)
	s.ch[ChFM2] = fmChannel(testProgram, 1)

	s.Tick()

	if s.ch[ChFM2].VolL != 0x5A {
		t.Errorf("expected marker 0x5A, got 0x%02X", s.ch[ChFM2].VolL)
	}
	for op := uint8(0); op < 4; op++ {
		if !fm.has(ymReleaseBase+1+op*8, 0x5A) {
			t.Errorf("expected release write for operator %d", op)
		}
	}
}

func TestEndMarker_Idempotent(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x01, 0x05)
	s, _ := newTestSound(t, b)
	ch := fmChannel(testProgram, 0)
	ch.EndScale = 3

	end1, pos1 := s.endMarker(&ch, testProgram)
	end2, pos2 := s.endMarker(&ch, testProgram)

	if end1 != 15 || end2 != 15 {
		t.Errorf("expected 15 both times, got %d and %d", end1, end2)
	}
	if pos1 != pos2 || pos1 != testProgram+1 {
		t.Errorf("expected position 0x%04X both times, got 0x%04X and 0x%04X", testProgram+1, pos1, pos2)
	}
}

func TestEndMarker_Literal(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x01, 0x05)
	s, _ := newTestSound(t, b)
	ch := fmChannel(testProgram, 0)
	ch.EndScale = 3
	ch.Marker = MarkerLiteral

	end, _ := s.endMarker(&ch, testProgram)
	if end != 5 {
		t.Errorf("expected literal length 5, got %d", end)
	}
	if ch.Marker != 0 {
		t.Errorf("expected literal flag cleared, got 0x%02X", ch.Marker)
	}

	end, _ = s.endMarker(&ch, testProgram)
	if end != 15 {
		t.Errorf("expected scaled length 15 once literal is used, got %d", end)
	}
}

func TestEndMarker_HighFromData(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x80|opLiteral, 0x80|opHighByte, 0x01, 0x34, 0x12, 0x80|opFinalizeFM)
	s, _ := newTestSound(t, b)
	s.ch[ChFM1] = fmChannel(testProgram, 0)

	s.Tick()

	ch := s.ch[ChFM1]
	if ch.SeqEnd != 0x1234 {
		t.Errorf("expected section length 0x1234, got 0x%04X", ch.SeqEnd)
	}
	if ch.SeqCmd != testProgram+5 {
		t.Errorf("expected next section at 0x%04X, got 0x%04X", testProgram+5, ch.SeqCmd)
	}
	if ch.Marker != 0 {
		t.Errorf("expected marker flags cleared, got 0x%02X", ch.Marker)
	}
}

func TestNote_KeyOnSequence(t *testing.T) {
	b := newTestROM()
	b.put(testLayout.NoteTable+1, 0x4A)
	b.put(testProgram, 0x01, 0x02)
	s, fm := newTestSound(t, b)
	ch := fmChannel(testProgram, 3)
	ch.PhaseAmpl = 0x21
	s.ch[ChFM4] = ch

	s.Tick()

	want := []fmWrite{
		{ymKeyOn, 0x03},
		{ymPMSAMS + 3, 0x21},
		{ymKeyCode + 3, 0x4A},
		{ymKeyOn, ymKeyOnAll | 0x03},
	}
	if len(fm.writes) != len(want) {
		t.Fatalf("expected %d writes, got %v", len(want), fm.writes)
	}
	for i, w := range want {
		if fm.writes[i] != w {
			t.Errorf("write %d: expected %02X=%02X, got %02X=%02X", i, w.reg, w.val, fm.writes[i].reg, fm.writes[i].val)
		}
	}
}

func TestNote_RestSilences(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x00, 0x02)
	s, fm := newTestSound(t, b)
	s.ch[ChFM1] = fmChannel(testProgram, 0)

	s.Tick()

	if s.ch[ChFM1].Note != noteOff {
		t.Errorf("expected note 0xFF, got 0x%02X", s.ch[ChFM1].Note)
	}
	if !fm.has(ymKeyOn, 0x00) {
		t.Error("expected key-off for rest")
	}
}

func TestNote_RestKeepsNoteWhenMusicPlaying(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x00, 0x02)
	b.put(testProgram+0x10, 0x00, 0x40)
	s, _ := newTestSound(t, b)
	fx := fmChannel(testProgram, 6)
	fx.Note = 0x33
	s.ch[ChFMFX1] = fx
	s.ch[ChFM7] = fmChannel(testProgram+0x10, 6)

	s.Tick()

	if s.ch[ChFMFX1].Note != 0x33 {
		t.Errorf("expected note 0x33 kept while FM7 plays, got 0x%02X", s.ch[ChFMFX1].Note)
	}
}

func TestNote_NoiseChannel(t *testing.T) {
	b := newTestROM()
	b.put(testLayout.NoteTable+2, 0x6C)
	b.put(testProgram, 0x02, 0x02)
	s, fm := newTestSound(t, b)
	ch := fmChannel(testProgram, 7)
	ch.Flags |= FlagNoise
	s.ch[ChFM8] = ch

	s.Tick()

	if !fm.has(ymNoise, ymNoiseEnable|0x0C) {
		t.Errorf("expected noise write 0x0F=0x8C, got %v", fm.writes)
	}
	if fm.has(ymKeyCode+7, 0x6C) {
		t.Error("expected no key code write for noise channel")
	}
}

func TestSuppressedChannel_TicksWithoutWrites(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x01, 0x04)
	s, fm := newTestSound(t, b)
	ch := fmChannel(testProgram, 6)
	ch.Route |= RouteSuppressed
	s.ch[ChFM7] = ch

	s.Tick()
	s.Tick()

	if len(fm.writes) != 0 {
		t.Errorf("expected no FM writes, got %v", fm.writes)
	}
	if s.ch[ChFM7].SeqPos != 1 {
		t.Errorf("expected sequence position 1, got %d", s.ch[ChFM7].SeqPos)
	}
}

func TestCallReturn(t *testing.T) {
	b := newTestROM()
	b.put(testLayout.NoteTable+3, 0x55)
	b.put(testProgram, 0x80|opCall, 0x00, 0x11, 0x01, 0x02)
	b.put(0x1100, 0x80|opTranspose, 0x02, 0x80|opReturn)
	s, _ := newTestSound(t, b)
	s.ch[ChFM1] = fmChannel(testProgram, 0)

	s.Tick()

	ch := s.ch[ChFM1]
	if ch.NoteOffset != 2 {
		t.Errorf("expected note offset 2, got %d", ch.NoteOffset)
	}
	if ch.Note != 0x55 {
		t.Errorf("expected transposed note 0x55, got 0x%02X", ch.Note)
	}
	if ch.StackPtr != stackTop {
		t.Errorf("expected empty stack 0x%02X, got 0x%02X", stackTop, ch.StackPtr)
	}
	if ch.SeqCmd != testProgram+5 {
		t.Errorf("expected next section at 0x%04X, got 0x%04X", testProgram+5, ch.SeqCmd)
	}
}

func TestJump(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x80|opJump, 0x00, 0x11)
	b.put(0x1100, 0x01, 0x01)
	s, _ := newTestSound(t, b)
	s.ch[ChFM1] = fmChannel(testProgram, 0)

	s.Tick()

	if got := s.ch[ChFM1].SeqCmd; got != 0x1102 {
		t.Errorf("expected next section at 0x1102, got 0x%04X", got)
	}
}

func TestLoop_RepeatsThenFallsThrough(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x01, 0x01)
	b.put(testProgram+2, 0x80|opLoop, 0x17, 0x03, 0x00, 0x10)
	b.put(testProgram+7, 0x80|opFinalizeFM)
	s, _ := newTestSound(t, b)
	s.ch[ChFM1] = fmChannel(testProgram, 0)

	for i := 0; i < 3; i++ {
		s.Tick()
		if !s.ch[ChFM1].Enabled() {
			t.Fatalf("expected channel enabled after tick %d", i+1)
		}
	}
	if got := s.ch[ChFM1].Loops[0]; got != 1 {
		t.Errorf("expected loop counter 1, got %d", got)
	}

	s.Tick()
	if s.ch[ChFM1].Enabled() {
		t.Error("expected channel finalized after loop ran out")
	}
	if got := s.ch[ChFM1].Loops[0]; got != 0 {
		t.Errorf("expected loop counter 0, got %d", got)
	}
}

func TestModulation_Sentinels(t *testing.T) {
	b := newTestROM()
	b.put16(testLayout.ModulationTable+2, 0x1200)
	b.put(0x1200, 0x00, 0x41, modReset)
	b.put16(testLayout.ModulationTable+4, 0x1210)
	b.put(0x1210, 0x00, 0x41, modHold)
	s, _ := newTestSound(t, b)

	ch := Channel{ModSelect: 1}
	s.modulate(&ch)
	if ch.PhaseAmpl != 0x05 || ch.ModOffset != 1 {
		t.Errorf("expected PMS/AMS 0x05 at offset 1, got 0x%02X at %d", ch.PhaseAmpl, ch.ModOffset)
	}
	s.modulate(&ch)
	if ch.ModOffset != 0 {
		t.Errorf("expected offset reset to 0, got %d", ch.ModOffset)
	}

	ch = Channel{ModSelect: 2}
	s.modulate(&ch)
	s.modulate(&ch)
	s.modulate(&ch)
	if ch.ModOffset != 1 || ch.PhaseAmpl != 0x05 {
		t.Errorf("expected hold at offset 1 with 0x05, got offset %d value 0x%02X", ch.ModOffset, ch.PhaseAmpl)
	}
}

func TestModulation_UnknownSentinelPanics(t *testing.T) {
	b := newTestROM()
	b.put16(testLayout.ModulationTable+2, 0x1200)
	b.put(0x1200, 0x00, modUnknown)
	s, _ := newTestSound(t, b)

	ch := Channel{ModSelect: 1}
	expectPanic(t, "modulation FC", func() { s.modulate(&ch) })
}

func TestFMBlock_WritesChannelRegisters(t *testing.T) {
	b := newTestROM()
	b.put16(testBlocks+2, 0x1300)
	b.put(0x1300, 0x20, 0xC7, 0x18, 0x05, 0x60, 0x1F, fmBlockEnd)
	b.put(testProgram, 0x80|opFMBlock, 0x01, 0x80|opPanLeft, 0x80|opFinalizeFM)
	s, fm := newTestSound(t, b)
	s.ch[ChFM3] = fmChannel(testProgram, 2)

	s.Tick()

	want := []fmWrite{
		{0x22, 0xC7},
		{0x18, 0x05},
		{0x62, 0x1F},
		{0x22, 0x47},
		{ymKeyOn, 0x02},
	}
	if len(fm.writes) != len(want) {
		t.Fatalf("expected %d writes, got %v", len(want), fm.writes)
	}
	for i, w := range want {
		if fm.writes[i] != w {
			t.Errorf("write %d: expected %02X=%02X, got %02X=%02X", i, w.reg, w.val, fm.writes[i].reg, fm.writes[i].val)
		}
	}
	if s.ch[ChFM3].FMBlock != 1 {
		t.Errorf("expected FM block 1, got %d", s.ch[ChFM3].FMBlock)
	}
}

func TestPCMPitch_IgnoredOnFM(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x80|opPCMPitch, 0x77, 0x01, 0x04)
	s, _ := newTestSound(t, b)
	s.ch[ChFM1] = fmChannel(testProgram, 0)
	s.ch[ChDrum1] = pcmChannel(testProgram)

	s.Tick()

	if s.ch[ChFM1].Pitch != 0 {
		t.Errorf("expected FM pitch untouched, got 0x%02X", s.ch[ChFM1].Pitch)
	}
	if s.ch[ChDrum1].Pitch != 0x77 {
		t.Errorf("expected PCM pitch 0x77, got 0x%02X", s.ch[ChDrum1].Pitch)
	}
}

func TestUnknownOpcodePanics(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x80|0x3E)
	s, _ := newTestSound(t, b)
	s.ch[ChFM1] = fmChannel(testProgram, 0)

	expectPanic(t, "opcode BE", s.Tick)
}

func TestTick_TimerAcknowledge(t *testing.T) {
	s, fm := newTestSound(t, newTestROM())
	fm.status = FMStatusTimer

	s.Tick()

	if len(fm.writes) == 0 || fm.writes[0] != (fmWrite{ymTimerCtrl, ymTimerReset}) {
		t.Errorf("expected first write 14=15, got %v", fm.writes)
	}
}

func TestTick_BusyChipDropsWrites(t *testing.T) {
	b := newTestROM()
	b.put(testProgram, 0x01, 0x04)
	s, fm := newTestSound(t, b)
	s.ch[ChFM1] = fmChannel(testProgram, 0)
	fm.status = FMStatusBusy

	s.Tick()

	if len(fm.writes) != 0 {
		t.Errorf("expected no writes while busy, got %v", fm.writes)
	}
	if s.DroppedFMWrites() == 0 {
		t.Error("expected dropped writes to be counted")
	}
	if s.ch[ChFM1].SeqCmd != testProgram+2 {
		t.Errorf("expected interpreter to advance, next section 0x%04X", s.ch[ChFM1].SeqCmd)
	}
}

func TestTick_GateAlternates(t *testing.T) {
	b := newTestROM()
	b.put(testLayout.TrafficVolumeTable+4, 0x80, 0x80)
	s, _ := newTestSound(t, b)
	s.SetTrafficFX(0, 5, 0)

	s.Tick()
	if s.traffic[0].VolIdx != 5 {
		t.Fatalf("expected traffic update on first tick, got volume index %d", s.traffic[0].VolIdx)
	}

	s.SetTrafficFX(0, 6, 0)
	s.Tick()
	if s.traffic[0].VolIdx != 5 {
		t.Errorf("expected no traffic update on second tick, got volume index %d", s.traffic[0].VolIdx)
	}

	s.Tick()
	if s.traffic[0].VolIdx != 6 {
		t.Errorf("expected traffic update on third tick, got volume index %d", s.traffic[0].VolIdx)
	}
	if s.Ticks() != 3 {
		t.Errorf("expected 3 ticks, got %d", s.Ticks())
	}
}
