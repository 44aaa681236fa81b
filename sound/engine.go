package sound

// Engine-tone geometry. Voices 0-3 follow the traffic cars' EngineTelemetry;
// voices 4 and 5 are the player's engine as a left/right pair.
const (
	NumEngineVoices = 6
	numEngineRings  = 3
	engineRingSize  = 8
	playerVoice     = 4
)

const (
	enginePitchMask = 0x1FF
	engineIdle      = 0x40 // player revs at or above this use the player wave set
	engineBands     = 16
	engineAddrSize  = 6
	enginePitchMax  = 0xFF
	engineVolScale  = 0x18
	engineVolMax    = 0x3F

	engineVoiceEntries      = 54
	engineVoiceStride       = 5
	engineVoiceBands        = engineVoiceEntries / 2
	engineDistanceThreshold = 0x52 // louder cars use the near half of the table
	enginePitchFineMax      = 0x1F
	engineCtrl              = 0x00

	revEffectPitch = 0xFA
	revWaveStart   = 0x8000
	revWaveEndHi   = 0x9F
	revWaveCtrl    = 0x10 | PCMFlagLoopDisable
	revWavePitch   = 0x80
)

// revPan is the rev sample's left/right volume per voice: the outer pairs
// hard panned, the middle pair split.
var revPan = [NumEngineVoices][2]uint8{
	{0x3F, 0x00},
	{0x00, 0x3F},
	{0x3F, 0x10},
	{0x10, 0x3F},
	{0x3F, 0x00},
	{0x00, 0x3F},
}

// EngineFlags is an engine voice's state byte.
type EngineFlags uint8

const (
	EngineMute    EngineFlags = 0x01 // slot stopped; the next update restarts the wave
	EngineLoop    EngineFlags = 0x02 // revs rising
	EngineAddrSet EngineFlags = 0x04 // revs steady; loop addresses left alone
	EngineRevving EngineFlags = 0x08 // rev sample started
)

// EngineVoice is one engine-tone channel's state.
type EngineVoice struct {
	Flags EngineFlags
	Pitch uint16 // revs, after smoothing
	Vol   uint8
	Band  uint8 // wave table entry in use

	// Values last written to the hardware slot.
	VolL  uint8
	VolR  uint8
	Delta uint8
}

// engineRing delays an engine voice's input by engineRingSize updates.
type engineRing struct {
	pitch [engineRingSize]uint16
	vol   [engineRingSize]uint8
	pos   uint8
}

// exchange stores the newest input and returns the oldest.
func (r *engineRing) exchange(pitch uint16, vol uint8) (uint16, uint8) {
	outPitch, outVol := r.pitch[r.pos], r.vol[r.pos]
	r.pitch[r.pos], r.vol[r.pos] = pitch, vol
	r.pos = (r.pos + 1) % engineRingSize
	return outPitch, outVol
}

// engineTick updates all engine-tone voices.
func (s *Sound) engineTick() {
	for n := 0; n < NumEngineVoices; n++ {
		s.engineVoice(n)
	}
}

// engineInput returns voice n's raw pitch and volume.
func (s *Sound) engineInput(n int) (uint16, uint8) {
	if n >= playerVoice {
		pitch := uint16(s.telemetry[telPitchHi])<<8 | uint16(s.telemetry[telPitchLo])
		return pitch, s.telemetry[telVolume]
	}
	in := s.engineIn[n]
	return in.Pitch, in.Volume
}

func (s *Sound) engineVoice(n int) {
	v := &s.engine[n]
	raw, vol := s.engineInput(n)
	pitch := raw >> 5 & enginePitchMask

	if s.revEffect {
		if pitch == 0 {
			s.engineMute(n)
			return
		}
		if pitch >= revEffectPitch {
			s.engineRev(n)
			return
		}
	}
	v.Flags &^= EngineRevving

	// Voices 0, 2 and 4 play their input late, thickening each pair.
	if n&1 == 0 {
		pitch, vol = s.rings[n/2].exchange(pitch, vol)
	}

	if vol == 0 {
		s.engineMute(n)
		return
	}

	if pitch == v.Pitch {
		v.Flags |= EngineAddrSet
	} else {
		if pitch > v.Pitch {
			v.Flags |= EngineLoop
		} else {
			v.Flags &^= EngineLoop
		}
		v.Flags &^= EngineAddrSet
	}
	v.Pitch = pitch
	v.Vol = vol

	if n >= playerVoice && pitch >= engineIdle {
		s.playerEngine(n, pitch-engineIdle, vol)
	} else {
		s.trafficEngine(n, pitch, vol)
	}
}

// playerEngine drives the player's wave set above idle.
func (s *Sound) playerEngine(n int, revs uint16, vol uint8) {
	v := &s.engine[n]
	slot := engineSlotBase + n

	band := uint8(min(revs>>4, engineBands-1))
	if v.Flags&(EngineMute|EngineAddrSet) != EngineAddrSet || band != v.Band {
		addr := s.layout.EngineAddressTable + uint16(band)*engineAddrSize
		start := s.rom.Read16(addr)
		loop := s.rom.Read16(addr + 2)
		endHi := s.rom.Read8(addr + 4)
		ctrl := s.rom.Read8(addr + 5)
		s.engineWave(n, start, loop, endHi, ctrl)
		v.Band = band
	}

	adj := uint8(min(uint16(vol)*engineVolScale/64, engineVolMax))
	if n&1 == 0 {
		v.VolL, v.VolR = adj, 0
	} else {
		v.VolL, v.VolR = 0, adj
	}

	delta := s.rom.Read8(s.layout.EnginePitchTable + min(revs, enginePitchMax))
	if n&1 == 0 {
		delta -= 2
	} else {
		delta += 3
	}
	v.Delta = delta

	s.pcm.SetVolume(slot, v.VolL, v.VolR)
	s.pcm.SetPitch(slot, v.Delta)
}

// trafficEngine drives the generic engine wave set.
func (s *Sound) trafficEngine(n int, pitch uint16, vol uint8) {
	v := &s.engine[n]
	slot := engineSlotBase + n

	idx := uint8(min(pitch>>3, engineVoiceBands-1))
	if vol >= engineDistanceThreshold {
		idx += engineVoiceBands
	}
	addr := s.layout.EngineVoiceTable + uint16(idx)*engineVoiceStride

	if v.Flags&(EngineMute|EngineAddrSet) != EngineAddrSet || idx != v.Band {
		start := s.rom.Read16(addr)
		endHi := s.rom.Read8(addr + 2)
		s.engineWave(n, start, start, endHi, engineCtrl)
		v.Band = idx
	}

	base := s.rom.Read8(addr + 3)
	mul := s.rom.Read8(addr + 4)
	adj := uint8(min(uint16(vol)*uint16(mul)>>6, engineVolMax))
	if n&1 == 0 {
		v.VolL, v.VolR = adj, adj>>2
	} else {
		v.VolL, v.VolR = adj>>2, adj
	}

	delta := base + uint8(min((pitch&7)<<2, enginePitchFineMax))
	if n&1 == 0 {
		delta -= 3
	} else {
		delta += 3
	}
	v.Delta = delta

	s.pcm.SetVolume(slot, v.VolL, v.VolR)
	s.pcm.SetPitch(slot, v.Delta)
}

// engineWave points voice n's slot at a wave. A muted slot restarts from
// start; a playing one only has its loop region moved.
func (s *Sound) engineWave(n int, start, loop uint16, endHi, ctrl uint8) {
	v := &s.engine[n]
	slot := engineSlotBase + n
	if v.Flags&EngineMute != 0 {
		s.pcm.SetWave(slot, start, endHi)
		v.Flags &^= EngineMute
	}
	s.pcm.SetLoop(slot, loop, endHi)
	s.pcm.SetFlags(slot, ctrl&^PCMFlagInactive)
}

// engineRev plays the one-shot rev sample once per rev-up.
func (s *Sound) engineRev(n int) {
	v := &s.engine[n]
	if v.Flags&EngineRevving != 0 {
		return
	}
	slot := engineSlotBase + n
	v.VolL, v.VolR = revPan[n][0], revPan[n][1]
	v.Delta = revWavePitch
	s.pcm.SetWave(slot, revWaveStart, revWaveEndHi)
	s.pcm.SetVolume(slot, v.VolL, v.VolR)
	s.pcm.SetPitch(slot, v.Delta)
	s.pcm.SetFlags(slot, revWaveCtrl)

	// The engine wave restarts once the rev ends.
	v.Flags = EngineRevving | EngineMute
}

// engineMute stops voice n's slot.
func (s *Sound) engineMute(n int) {
	v := &s.engine[n]
	slot := engineSlotBase + n
	v.Flags |= EngineMute
	v.Flags &^= EngineAddrSet | EngineRevving
	v.Vol, v.VolL, v.VolR = 0, 0, 0
	s.pcm.SetVolume(slot, 0, 0)
	s.pcm.Deactivate(slot)
}
