package sound

import "fmt"

// initSound loads the voices of a sound header into consecutive channel
// records starting at dest. The header is a voice count followed by one
// instrument address per voice; each instrument seeds the first 14 bytes
// of a record.
func (s *Sound) initSound(cmdIndex uint8, header uint16, dest ChannelID) {
	count := int(s.rom.Read8(header))
	if int(dest)+count > NumChannels {
		panic(fmt.Sprintf("sound: command %02X loads %d voices at channel %d", cmdIndex, count, dest))
	}

	var rec [ChannelRecordSize]byte
	for i := 0; i < count; i++ {
		id := dest + ChannelID(i)
		src := s.rom.Read16(header + 1 + uint16(i)*2)

		clear(rec[:])
		for j := uint16(0); j < instrumentSize; j++ {
			rec[j] = s.rom.Read8(src + j)
		}
		rec[0x0E] = cmdIndex

		ch := &s.ch[id]
		oldMutes := ch.Enabled() && ch.Flags&FlagMuteMusic != 0

		ch.decode(rec[:])
		switch {
		case ch.Flags&FlagMuteMusic != 0:
			s.muteMusic(id)
		case oldMutes:
			s.releaseMusic(id)
		}
		if s.musicCovered(id) {
			ch.Route |= RouteSuppressed
		}
	}
}
