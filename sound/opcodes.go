package sound

import "fmt"

// Command opcodes, after masking with opMask. Bytes at or above opPlayPCM
// start samples and are dispatched before this table.
const (
	opMask    = 0x3F
	opPlayPCM = 0xBF

	opVolume      = 0x02
	opFinalizeFM  = 0x04
	opModulation  = 0x07
	opCall        = 0x08
	opReturn      = 0x09
	opJump        = 0x0A
	opTranspose   = 0x0B
	opLoop        = 0x0C
	opFMBlock     = 0x11
	opPCMPitch    = 0x13
	opLiteral     = 0x14
	opHighByte    = 0x15
	opPanRight    = 0x16
	opPanLeft     = 0x17
	opPanCenter   = 0x18
	opFinalizePCM = 0x19
)

const (
	maxPCMVolume   = 0x40
	fmBlockRoutine = 3
	fmBlockEnd     = 0xFF
	numOperators   = 4
)

// execute runs one command opcode with the cursor on the opcode byte and
// leaves the cursor on the last byte it consumed. It returns true when the
// channel was finalized.
func (s *Sound) execute(id ChannelID, op uint8, cur *Cursor) bool {
	ch := &s.ch[id]

	switch op {
	case opVolume:
		if ch.IsPCM() {
			ch.VolL = clampPCMVolume(cur.Next())
			ch.VolR = clampPCMVolume(cur.Next())
		} else {
			ch.VolL = cur.Next()
			s.writeRelease(ch)
		}

	case opFinalizeFM:
		s.finalize(id)
		return true

	case opModulation:
		ch.ModSelect = cur.Next()
		ch.ModOffset = 0

	case opCall:
		addr := cur.Next16()
		ch.push(cur.Pos)
		cur.Pos = addr - 1

	case opReturn:
		cur.Pos = ch.pop()

	case opJump:
		addr := cur.Next16()
		cur.Pos = addr - 1

	case opTranspose:
		ch.NoteOffset += cur.Next()

	case opLoop:
		counter := ch.loopCounter(cur.Next())
		count := cur.Next()
		if *counter == 0 {
			*counter = count
		}
		*counter--
		if *counter != 0 {
			addr := cur.Next16()
			cur.Pos = addr - 1
		} else {
			cur.Pos += 2
		}

	case opFMBlock:
		ch.FMBlock = cur.Next()
		s.sendFMBlock(ch)

	case opPCMPitch:
		pitch := cur.Next()
		if ch.IsPCM() {
			ch.Pitch = pitch
		}

	case opLiteral:
		ch.Marker |= MarkerLiteral

	case opHighByte:
		ch.Marker |= MarkerHighFromData

	case opPanRight:
		s.setPan(ch, ymPanRight)
	case opPanLeft:
		s.setPan(ch, ymPanLeft)
	case opPanCenter:
		s.setPan(ch, ymPanCenter)

	case opFinalizePCM:
		if slot, ok := ch.Route.SampleSlot(); ok {
			s.restoreSlot(slot)
		}
		s.finalize(id)
		return true

	default:
		unreachable(fmt.Sprintf("opcode %02X", op|0x80))
	}
	return false
}

// clampPCMVolume maps out-of-range volumes to silence.
func clampPCMVolume(v uint8) uint8 {
	if v > maxPCMVolume {
		return 0
	}
	return v
}

// writeRelease loads the FM release marker into all four operators.
func (s *Sound) writeRelease(ch *Channel) {
	if ch.Route&RouteSuppressed != 0 {
		return
	}
	ym := ch.Route.YM()
	for op := uint8(0); op < numOperators; op++ {
		s.fm.write(ymReleaseBase+ym+op*8, ch.VolL)
	}
}

// setPan rewrites the RL bits of the channel control register.
func (s *Sound) setPan(ch *Channel, pan uint8) {
	if ch.Route&RouteSuppressed != 0 {
		return
	}
	ym := ch.Route.YM()
	s.fm.write(ymChanCtrl+ym, s.fm.ctrl[ym]&ymPanMask|pan)
}

// sendFMBlock streams the channel's current FM register block to the chip.
func (s *Sound) sendFMBlock(ch *Channel) {
	if ch.Route&RouteSuppressed != 0 {
		return
	}
	addr := s.rom.LookupFMBlock(&s.layout, ch.Command, fmBlockRoutine, ch.FMBlock)
	ym := ch.Route.YM()
	for {
		reg := s.rom.Read8(addr)
		if reg == fmBlockEnd {
			return
		}
		s.fm.channelWrite(ym, reg, s.rom.Read8(addr+1))
		addr += 2
	}
}

// finalize ends a channel's program: the record is released, its YM
// channel keyed off, and any music channel it was covering handed back.
func (s *Sound) finalize(id ChannelID) {
	ch := &s.ch[id]
	mutes := ch.Flags&FlagMuteMusic != 0
	ch.Flags = 0
	if ch.Route&RouteSuppressed == 0 {
		s.fm.keyOff(ch.Route.YM())
	}
	if mutes {
		s.releaseMusic(id)
	}
}

// muteMusic suppresses the music channel an effect covers.
func (s *Sound) muteMusic(id ChannelID) {
	if music, ok := CorrespondingChannel(id); ok {
		s.ch[music].Route |= RouteSuppressed
	}
}

// releaseMusic lets a covered music channel write to the chips again and
// restores its FM instrument.
func (s *Sound) releaseMusic(id ChannelID) {
	music, ok := CorrespondingChannel(id)
	if !ok {
		return
	}
	m := &s.ch[music]
	m.Route &^= RouteSuppressed
	if m.Enabled() && !m.IsPCM() {
		s.sendFMBlock(m)
	}
}

// musicCovered reports whether an active effect suppresses music channel id.
func (s *Sound) musicCovered(id ChannelID) bool {
	for fx := ChPCMFX1; fx <= ChFMFX2; fx++ {
		fc := &s.ch[fx]
		if !fc.Enabled() || fc.Flags&FlagMuteMusic == 0 {
			continue
		}
		if music, ok := CorrespondingChannel(fx); ok && music == id {
			return true
		}
	}
	return false
}
