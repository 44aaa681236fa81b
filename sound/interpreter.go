package sound

import "math/bits"

// noteOff is the key code sentinel for a silent FM channel.
const noteOff = 0xFF

// Modulation table sentinels.
const (
	modUnknown = 0xFC
	modReset   = 0xFD
	modHold    = 0xFE
)

// processChannels advances every enabled channel by one tick.
func (s *Sound) processChannels() {
	for id := ChannelID(0); id < NumChannels; id++ {
		if s.ch[id].Enabled() {
			s.processChannel(id)
		}
	}
}

// processChannel runs one channel's tick. Sections are processed when the
// tick counter reaches the section length; FM channels then refresh their
// registers every tick.
func (s *Sound) processChannel(id ChannelID) {
	ch := &s.ch[id]

	ch.SeqPos++
	if ch.SeqPos == ch.SeqEnd {
		ch.SeqPos = 0
		cur := Cursor{rom: s.rom, Pos: ch.SeqCmd}
		if s.processSection(id, &cur) {
			return
		}
	}

	if ch.IsPCM() {
		return
	}
	s.fmOutput(ch)
}

// processSection executes opcodes until a note byte or a finalize opcode.
// It returns true when the channel was finalized.
func (s *Sound) processSection(id ChannelID, cur *Cursor) bool {
	ch := &s.ch[id]
	for {
		op := cur.Peek()
		switch {
		case op >= opPlayPCM:
			s.playPCMIndex(id, op)
		case op&0x80 != 0:
			if s.execute(id, op&opMask, cur) {
				return true
			}
		default:
			s.setNote(id, op)
			end, pos := s.endMarker(ch, cur.Pos)
			ch.SeqEnd = end
			ch.SeqCmd = pos + 1
			return false
		}
		cur.Pos++
	}
}

// endMarker computes the section length from the duration byte following
// pos. It returns the length and the position of the last byte read.
//
// Without MarkerLiteral the length is EndScale times the duration byte.
// MarkerLiteral uses the byte as-is; with MarkerHighFromData also set, a
// second byte supplies the high half. Each flag is cleared as it is used.
func (s *Sound) endMarker(ch *Channel, pos uint16) (uint16, uint16) {
	pos++
	lo := s.rom.Read8(pos)
	if ch.Marker&MarkerLiteral == 0 {
		return uint16(ch.EndScale) * uint16(lo), pos
	}
	ch.Marker &^= MarkerLiteral
	if ch.Marker&MarkerHighFromData == 0 {
		return uint16(lo), pos
	}
	ch.Marker &^= MarkerHighFromData
	pos++
	return uint16(s.rom.Read8(pos))<<8 | uint16(lo), pos
}

// setNote applies a note byte. Zero is a rest: the voice is silenced unless
// the music channel it shadows is still playing. PCM voices are keyed by
// the sample opcodes and only take the duration.
func (s *Sound) setNote(id ChannelID, note uint8) {
	ch := &s.ch[id]
	if ch.IsPCM() {
		return
	}
	if note == 0 {
		if music, ok := CorrespondingChannel(id); ok && s.ch[music].Enabled() {
			return
		}
		ch.Note = noteOff
		return
	}
	ch.Note = s.rom.Read8(s.layout.NoteTable + uint16(note+ch.NoteOffset))

	// Key off so the next key-on restarts the envelope.
	if ch.Route&RouteSuppressed == 0 {
		s.fm.keyOff(ch.Route.YM())
	}
}

// fmOutput refreshes an FM channel's modulation, key code and key state.
// Suppressed channels keep their modulation running without touching the chip.
func (s *Sound) fmOutput(ch *Channel) {
	if ch.ModSelect != 0 {
		s.modulate(ch)
	}

	ym := ch.Route.YM()
	live := ch.Route&RouteSuppressed == 0
	if ch.Note == noteOff {
		if live {
			s.fm.keyOff(ym)
		}
		return
	}
	if !live {
		return
	}

	s.fm.write(ymPMSAMS+ym, ch.PhaseAmpl)
	if ch.Flags&FlagNoise != 0 {
		s.fm.write(ymNoise, ymNoiseEnable|ch.Note&0x1F)
	} else {
		s.fm.write(ymKeyCode+ym, ch.Note)
	}
	s.fm.write(ymKeyOn, ymKeyOnAll|ym)
}

// modulate steps the channel's modulation table by one entry.
func (s *Sound) modulate(ch *Channel) {
	table := s.rom.Read16(s.layout.ModulationTable + uint16(ch.ModSelect)*2)
	ch.ModOffset++
	v := s.rom.Read8(table + uint16(ch.ModOffset))
	switch v {
	case modReset:
		ch.ModOffset = 0
	case modHold:
		ch.ModOffset--
	case modUnknown:
		unreachable("modulation sentinel FC")
	default:
		ch.PhaseAmpl = bits.RotateLeft8(v, 2)
	}
}
