package sound

const NumTrafficVoices = 4

const (
	trafficWaveStart   = 0x6000
	trafficWaveEndHi   = 0x7F
	trafficWaveCtrl    = 0x30
	trafficMinVolume   = 0x10 // multipliers below this silence the voice
	trafficPitchArm    = 0x10 // volume index from which a pass ends with a pitch drop
	trafficPitchBaseLo = 0x60
	trafficPitchBaseHi = 0x80
	trafficDropPoint   = 0x80
	trafficDropSlow    = 4
	trafficDropFast    = 6
)

// trafficPan holds a left/right multiplier pair per pan index.
var trafficPan = [16]uint8{
	0xFF, 0x10,
	0xF0, 0x40,
	0xD0, 0x70,
	0xB0, 0xB0,
	0x70, 0xD0,
	0x40, 0xF0,
	0x10, 0xFF,
	0xB0, 0xB0,
}

// TrafficFlags is a traffic voice's state byte.
type TrafficFlags uint8

const (
	TrafficVolUnchanged TrafficFlags = 0x01
	TrafficPanUnchanged TrafficFlags = 0x02
	TrafficStartEndSet  TrafficFlags = 0x04
	TrafficPitchArmed   TrafficFlags = 0x08 // car came close enough to fade out with a pitch drop
	TrafficReducing     TrafficFlags = 0x10 // pitch drop in progress
)

// TrafficVoice is one passing-traffic channel's state.
type TrafficVoice struct {
	Flags  TrafficFlags
	VolIdx uint8
	PanIdx uint8
	Pitch  uint8
	VolL   uint8
	VolR   uint8
}

// trafficTick updates the four traffic FX voices.
func (s *Sound) trafficTick() {
	for i := 0; i < NumTrafficVoices; i++ {
		s.trafficVoice(i)
	}
}

func (s *Sound) trafficVoice(i int) {
	t := &s.traffic[i]
	slot := trafficSlotBase + i

	if t.Flags&TrafficReducing == 0 {
		in := s.telemetry[telTraffic+i]
		volIdx, pan := in>>3, in&0x07

		if volIdx == 0 {
			if t.Flags&TrafficPitchArmed == 0 {
				s.trafficDisable(i)
				return
			}
			t.Flags |= TrafficReducing
		} else {
			s.trafficUpdate(i, volIdx, pan)
			return
		}
	}

	step := uint8(trafficDropFast)
	if t.Pitch < trafficDropPoint {
		step = trafficDropSlow
	}
	if t.Pitch > step {
		t.Pitch -= step
	} else {
		t.Pitch = 0
	}
	if t.VolL > 0 {
		t.VolL--
	}
	if t.VolR > 0 {
		t.VolR--
	}
	if t.VolL == 0 && t.VolR == 0 {
		s.trafficDisable(i)
		return
	}
	s.pcm.SetVolume(slot, t.VolL, t.VolR)
	s.pcm.SetPitch(slot, t.Pitch)
}

// trafficUpdate applies a nonzero telemetry byte.
func (s *Sound) trafficUpdate(i int, volIdx, pan uint8) {
	t := &s.traffic[i]
	slot := trafficSlotBase + i

	if volIdx == t.VolIdx {
		t.Flags |= TrafficVolUnchanged
	} else {
		t.Flags &^= TrafficVolUnchanged
	}
	if pan == t.PanIdx {
		t.Flags |= TrafficPanUnchanged
	} else {
		t.Flags &^= TrafficPanUnchanged
	}
	t.VolIdx, t.PanIdx = volIdx, pan

	const steady = TrafficVolUnchanged | TrafficPanUnchanged | TrafficStartEndSet
	if t.Flags&steady == steady {
		return
	}

	if t.Flags&TrafficStartEndSet == 0 {
		s.pcm.SetWave(slot, trafficWaveStart, trafficWaveEndHi)
		s.pcm.SetFlags(slot, trafficWaveCtrl)
		t.Flags |= TrafficStartEndSet
	}

	mul := s.rom.Read8(s.layout.TrafficVolumeTable + uint16(volIdx-1))
	if mul < trafficMinVolume {
		s.trafficDisable(i)
		return
	}
	t.VolL = uint8(uint16(trafficPan[pan*2]) * uint16(mul) >> 8)
	t.VolR = uint8(uint16(trafficPan[pan*2+1]) * uint16(mul) >> 8)

	base := uint8(trafficPitchBaseLo)
	if i&1 != 0 {
		base = trafficPitchBaseHi
	}
	t.Pitch = s.rom.Read8(s.layout.TrafficPitchTable+uint16(volIdx>>3)) + base
	if volIdx >= trafficPitchArm {
		t.Flags |= TrafficPitchArmed
	}

	s.pcm.SetVolume(slot, t.VolL, t.VolR)
	s.pcm.SetPitch(slot, t.Pitch)
}

// trafficDisable clears voice i and its slot.
func (s *Sound) trafficDisable(i int) {
	s.traffic[i] = TrafficVoice{}
	s.pcm.clearSlot(trafficSlotBase + i)
}
