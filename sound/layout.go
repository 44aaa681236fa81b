package sound

import "fmt"

// Layout holds the ROM addresses of the lookup tables the engine reads.
// Images built for another table map pass their own Layout to
// NewWithLayout; CheckLayout tells whether an image fits a layout.
type Layout struct {
	// CommandTable holds one word per command (cmd - 0x81): the address of
	// the sound header consumed by init_sound.
	CommandTable uint16

	// NoteTable maps note bytes (plus the channel's note offset) to YM
	// key codes.
	NoteTable uint16

	// FMRoutineTable is the first level of the FM block lookup.
	FMRoutineTable uint16

	// ModulationTable holds one word per modulation selector.
	ModulationTable uint16

	// SampleTable holds 4 bytes per 0xD0+ sample: start lo, start hi,
	// end hi, control flags.
	SampleTable uint16

	// EngineAddressTable holds 6 bytes per player rev band: start lo,
	// start hi, loop lo, loop hi, end hi, control flags.
	EngineAddressTable uint16

	// EnginePitchTable holds one pitch byte per player rev step above idle.
	EnginePitchTable uint16

	// EngineVoiceTable holds engineVoiceEntries entries of engineVoiceStride
	// bytes for traffic engines: start lo, start hi, end hi, pitch base,
	// volume multiplier.
	EngineVoiceTable uint16

	// TrafficVolumeTable holds one volume multiplier per traffic volume
	// index (1-31).
	TrafficVolumeTable uint16

	// TrafficPitchTable holds one pitch offset per traffic distance band.
	TrafficPitchTable uint16
}

// DefaultLayout is the table map used when none is given. It is this
// engine's own convention for program images, not a map recovered from the
// Z80 code of epr-10187.88; use CheckLayout before trusting an image.
var DefaultLayout = Layout{
	CommandTable:       0x0A40,
	NoteTable:          0x0AC0,
	FMRoutineTable:     0x0B40,
	ModulationTable:    0x0BC0,
	SampleTable:        0x0C00,
	EngineAddressTable: 0x0D00,
	EnginePitchTable:   0x0D60,
	EngineVoiceTable:   0x0E60,
	TrafficVolumeTable: 0x0F80,
	TrafficPitchTable:  0x0FA0,
}

// Minimum table sizes, in bytes, for CheckLayout.
const (
	numSoundCmds      = lastCmd - firstSoundCmd + 1
	noteTableSize     = 0x100
	sampleTableSize   = (0x100 - firstROMSample) * sampleEntrySize
	trafficVolumeSize = 31
	trafficPitchSize  = 4
)

// CheckLayout verifies that the tables of l lie inside rom and that every
// sound command header loads its voices inside the channel table. An image
// that passes cannot make the interpreter read past the ROM through the
// command tables.
func CheckLayout(rom *ROM, l Layout) error {
	tables := []struct {
		name string
		addr uint16
		size int
	}{
		{"command table", l.CommandTable, numSoundCmds * 2},
		{"note table", l.NoteTable, noteTableSize},
		{"FM routine table", l.FMRoutineTable, numSoundCmds * 2},
		{"modulation table", l.ModulationTable, 2},
		{"sample table", l.SampleTable, sampleTableSize},
		{"engine address table", l.EngineAddressTable, engineBands * engineAddrSize},
		{"engine pitch table", l.EnginePitchTable, enginePitchMax + 1},
		{"engine voice table", l.EngineVoiceTable, engineVoiceEntries * engineVoiceStride},
		{"traffic volume table", l.TrafficVolumeTable, trafficVolumeSize},
		{"traffic pitch table", l.TrafficPitchTable, trafficPitchSize},
	}
	for _, t := range tables {
		if !rom.contains(t.addr, t.size) {
			return fmt.Errorf("%s at %04X (%d bytes) outside %d-byte ROM", t.name, t.addr, t.size, rom.Len())
		}
	}

	for cmd := uint8(firstSoundCmd); cmd <= lastCmd; cmd++ {
		dest, ok := commandDest[cmd]
		if !ok {
			continue
		}
		header := rom.Read16(l.CommandTable + uint16(cmd-firstSoundCmd)*2)
		if !rom.contains(header, 1) {
			return fmt.Errorf("command %02X header at %04X outside ROM", cmd, header)
		}
		count := int(rom.Read8(header))
		if int(dest)+count > NumChannels {
			return fmt.Errorf("command %02X loads %d voices at %s", cmd, count, dest)
		}
		if !rom.contains(header, 1+count*2) {
			return fmt.Errorf("command %02X voice list at %04X outside ROM", cmd, header)
		}
		for i := 0; i < count; i++ {
			src := rom.Read16(header + 1 + uint16(i)*2)
			if !rom.contains(src, instrumentSize) {
				return fmt.Errorf("command %02X voice %d instrument at %04X outside ROM", cmd, i, src)
			}
		}
	}
	return nil
}
