package sound

import "fmt"

const (
	firstPercussion = 0xC0
	firstROMSample  = 0xD0
	sampleEntrySize = 4
)

// percussionSample is a compiled-in drum kit entry.
type percussionSample struct {
	start uint16
	endHi uint8
	pitch uint8
	ctrl  PCMControl
}

// percussion is the drum kit played by sample bytes 0xC0-0xCE. These
// samples live in the sample ROMs but their headers were never put in the
// program ROM's sample table. Entry 0 is the kick; entries 1-14 are
// placeholders spread over the sample ROMs until the real headers are
// transcribed.
var percussion = [15]percussionSample{
	{0x17C0, 0x42, 0x84, 0xD6},
	{0x4300, 0x57, 0x80, 0xD6},
	{0x5800, 0x5F, 0x90, 0xD2},
	{0x6000, 0x77, 0x88, 0xD2},
	{0x7800, 0x8B, 0x70, 0xD6},
	{0x7800, 0x8B, 0x84, 0xD6},
	{0x7800, 0x8B, 0x98, 0xD6},
	{0x8C00, 0xA3, 0x80, 0xDA},
	{0xA400, 0xBF, 0x80, 0xDA},
	{0xC000, 0xCB, 0x80, 0xD2},
	{0x0000, 0x1D, 0x80, 0xE6},
	{0x0000, 0x1D, 0x9C, 0xE6},
	{0x1E00, 0x37, 0x80, 0xE2},
	{0x3800, 0x4F, 0x80, 0xEA},
	{0x5000, 0x6B, 0x78, 0xEA},
}

// Drum slot search: each pass walks the sample slots in its own order
// looking for a slot that satisfies the pass criterion.
var drumSearch = [3][numSampleSlots]int{
	{10, 11, 12, 13, 14, 15},
	{12, 13, 14, 15, 10, 11},
	{14, 15, 10, 11, 12, 13},
}

// samplePairs are the slot pairs standard samples alternate between,
// indexed by the control byte's pair-select field.
var samplePairs = [4][2]int{
	{10, 11},
	{12, 13},
	{14, 15},
	{11, 13},
}

// playPCMIndex loads a sample header into the channel and starts it.
func (s *Sound) playPCMIndex(id ChannelID, op uint8) {
	ch := &s.ch[id]

	switch {
	case op >= firstROMSample:
		addr := s.layout.SampleTable + uint16(op-firstROMSample)*sampleEntrySize
		ch.Note = s.rom.Read8(addr)
		ch.PhaseAmpl = s.rom.Read8(addr + 1)
		ch.EndHi = s.rom.Read8(addr + 2)
		ch.Control = PCMControl(s.rom.Read8(addr + 3))
	case op > opPlayPCM && op-firstPercussion < uint8(len(percussion)):
		p := percussion[op-firstPercussion]
		ch.Note = uint8(p.start)
		ch.PhaseAmpl = uint8(p.start >> 8)
		ch.EndHi = p.endHi
		ch.Pitch = p.pitch
		ch.Control = p.ctrl
	default:
		unreachable(fmt.Sprintf("sample index %02X", op))
		return
	}

	s.assignPCM(ch)
}

// assignPCM picks a hardware slot for the channel's sample and sends it.
func (s *Sound) assignPCM(ch *Channel) {
	if ch.Route&RouteSuppressed != 0 {
		return
	}

	var slot int
	if ch.Control&CtrlDrum != 0 {
		slot = s.findDrumSlot()
	} else {
		sel := ch.Control.PairSelect()
		s.pairToggle[sel] ^= 1
		slot = samplePairs[sel][s.pairToggle[sel]]
		s.saveSlot(slot)
	}

	ch.Route = ch.Route.withSlot(slot)
	s.pcmSend(ch, slot)
}

// findDrumSlot returns a sample slot free for a drum hit. The passes look
// for a slot past its end address, then a one-shot slot, then a stopped
// slot, and fall back to the first sample slot.
func (s *Sound) findDrumSlot() int {
	for pass, order := range drumSearch {
		for _, slot := range order {
			switch pass {
			case 0:
				if uint8(s.pcm.Address(slot)>>8) > s.pcm.EndHi(slot) {
					return slot
				}
			case 1:
				if s.pcm.Flags(slot)&PCMFlagLoopDisable != 0 {
					return slot
				}
			case 2:
				if !s.pcm.Active(slot) {
					return slot
				}
			}
		}
	}
	return sampleSlotBase
}

// pcmSend copies the channel's sample registers to a hardware slot.
func (s *Sound) pcmSend(ch *Channel, slot int) {
	s.pcm.SetVolume(slot, ch.VolL, ch.VolR)
	s.pcm.SetWave(slot, ch.StartAddr(), ch.EndHi)
	s.pcm.SetPitch(slot, ch.Pitch)
	s.pcm.SetFlags(slot, uint8(ch.Control&ctrlHardwareMask))
}

// saveSlot backs up a slot before an effect takes it over. A slot already
// backed up keeps its first backup.
func (s *Sound) saveSlot(slot int) {
	bit := uint16(1) << slot
	if s.backupValid&bit != 0 {
		return
	}
	copy(s.backup[slot][:pcmHalfSize], s.pcm.Front(slot))
	copy(s.backup[slot][pcmHalfSize:], s.pcm.Back(slot))
	s.backupValid |= bit
}

// restoreSlot puts a backed-up slot back as it was. Without a backup the
// slot is stopped.
func (s *Sound) restoreSlot(slot int) {
	bit := uint16(1) << slot
	if s.backupValid&bit == 0 {
		s.pcm.Deactivate(slot)
		return
	}
	copy(s.pcm.Front(slot), s.backup[slot][:pcmHalfSize])
	copy(s.pcm.Back(slot), s.backup[slot][pcmHalfSize:])
	s.backupValid &^= bit
}
