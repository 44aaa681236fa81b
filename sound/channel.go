package sound

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ChannelID indexes the channel table. It replaces the raw record offsets
// the sound program uses as channel handles.
type ChannelID int

// Channel table slots.
const (
	ChFM1 ChannelID = iota // music FM, YM channel 0
	ChFM2
	ChFM3
	ChFM4
	ChFM5
	ChFM6
	ChFM7
	ChFM8
	ChDrum1 // music PCM percussion
	ChDrum2
	ChDrum3
	ChDrum4
	ChDrum5
	ChDrum6
	ChPCMFX1 // PCM sound effects
	ChPCMFX2
	ChPCMFX3
	ChPCMFX4
	ChPCMFX5
	ChPCMFX6
	ChPCMFX7
	ChPCMFX8
	ChFMFX1 // FM sound effects, overriding music channels 7 and 8
	ChFMFX2
	ChShadow1 // overflow voices for multi-voice effects
	ChShadow2
	ChShadow3
	ChShadow4
	ChShadow5
	ChShadow6

	NumChannels = 30
)

// String names the slot, e.g. "FM3" or "SHADOW2".
func (id ChannelID) String() string {
	switch {
	case id >= ChFM1 && id <= ChFM8:
		return fmt.Sprintf("FM%d", id-ChFM1+1)
	case id >= ChDrum1 && id <= ChDrum6:
		return fmt.Sprintf("DRUM%d", id-ChDrum1+1)
	case id >= ChPCMFX1 && id <= ChPCMFX8:
		return fmt.Sprintf("PCMFX%d", id-ChPCMFX1+1)
	case id >= ChFMFX1 && id <= ChFMFX2:
		return fmt.Sprintf("FMFX%d", id-ChFMFX1+1)
	case id >= ChShadow1 && id <= ChShadow6:
		return fmt.Sprintf("SHADOW%d", id-ChShadow1+1)
	}
	return fmt.Sprintf("CH%d", int(id))
}

// ChannelRecordSize is the size of a channel record in the Channel RAM view.
const ChannelRecordSize = 0x20

// instrumentSize is the number of record bytes an instrument block seeds.
const instrumentSize = 14

// CorrespondingChannel returns the music channel an effect channel
// overrides. Music channels and shadow slots have none.
func CorrespondingChannel(id ChannelID) (ChannelID, bool) {
	switch {
	case id >= ChFMFX1 && id <= ChFMFX2:
		return ChFM7 + (id - ChFMFX1), true
	case id >= ChPCMFX1 && id <= ChPCMFX6:
		return ChDrum1 + (id - ChPCMFX1), true
	default:
		return 0, false
	}
}

// ChannelFlags is the record's flags byte.
type ChannelFlags uint8

const (
	FlagEnabled   ChannelFlags = 0x80
	FlagPCM       ChannelFlags = 0x40
	FlagNoise     ChannelFlags = 0x20 // FM voice keyed through the noise generator
	FlagMuteMusic ChannelFlags = 0x02 // effect suppresses its corresponding music channel
)

// Route is the record's routing byte: the YM channel in bits 0-2 and, for
// PCM channels, the hardware slot last assigned in bits 3-6.
type Route uint8

const (
	RouteSuppressed Route = 0x80 // hardware writes skipped, ticking continues
	routeYMMask     Route = 0x07
	routeSlotMask   Route = 0x78
	routeSlotShift        = 3
)

// YM returns the YM2151 channel index.
func (r Route) YM() uint8 {
	return uint8(r & routeYMMask)
}

// Slot returns the PCM hardware slot.
func (r Route) Slot() int {
	return int(r&routeSlotMask) >> routeSlotShift
}

// SampleSlot returns the sample slot last assigned to the channel. ok is
// false for a channel that was never given one.
func (r Route) SampleSlot() (slot int, ok bool) {
	slot = r.Slot()
	return slot, slot >= sampleSlotBase
}

// withSlot returns the route with the hardware slot replaced.
func (r Route) withSlot(slot int) Route {
	return r&^routeSlotMask | Route(slot<<routeSlotShift)&routeSlotMask
}

// MarkerFlags controls the next end-marker computation.
type MarkerFlags uint8

const (
	MarkerLiteral      MarkerFlags = 0x01 // duration byte is used as-is
	MarkerHighFromData MarkerFlags = 0x02 // with MarkerLiteral: a second byte holds the high byte
)

// PCMControl is the sample control byte. Bits 0-1 and 4-6 pass straight
// through to the hardware flags register.
type PCMControl uint8

const (
	CtrlInactive    PCMControl = 0x01
	CtrlLoopDisable PCMControl = 0x02
	CtrlPairSelect  PCMControl = 0x0C
	CtrlBank        PCMControl = 0x70
	CtrlDrum        PCMControl = 0x80

	ctrlHardwareMask = CtrlInactive | CtrlLoopDisable | CtrlBank
)

// PairSelect returns the 2-bit channel-pair category.
func (c PCMControl) PairSelect() int {
	return int(c&CtrlPairSelect) >> 2
}

// Return stack bounds within the record.
const (
	stackTop    = 0x20 // empty stack
	stackBottom = 0x1C // full stack (two slots)
	loopBase    = 0x17 // first loop counter offset
	numLoops    = 5
)

// Channel is one voice's interpreter and playback state.
type Channel struct {
	Flags      ChannelFlags
	Route      Route
	EndScale   uint8  // multiplies duration bytes into ticks
	SeqPos     uint16 // ticks elapsed in the current section
	SeqEnd     uint16 // ticks in the current section
	SeqCmd     uint16 // bytecode address of the next section
	NoteOffset uint8
	StackPtr   uint8 // record offset of the return stack top
	ModSelect  uint8 // modulation table selector, 0 = none
	FMBlock    uint8
	Marker     MarkerFlags
	Command    uint8 // command index that loaded this voice
	ModOffset  uint8
	VolL       uint8 // FM channels: envelope release marker
	VolR       uint8

	// Note is the FM key code, or the PCM start address low byte.
	Note uint8
	// PhaseAmpl is the FM PMS/AMS value, or the PCM start address high byte.
	PhaseAmpl uint8
	EndHi     uint8
	Pitch     uint8
	Control   PCMControl

	Loops [numLoops]uint8
	Stack [2]uint16
}

// Enabled reports whether the channel is running a program.
func (c *Channel) Enabled() bool {
	return c.Flags&FlagEnabled != 0
}

// IsPCM reports whether the channel plays samples.
func (c *Channel) IsPCM() bool {
	return c.Flags&FlagPCM != 0
}

// StartAddr returns the PCM start address held in the Note/PhaseAmpl bytes.
func (c *Channel) StartAddr() uint16 {
	return uint16(c.PhaseAmpl)<<8 | uint16(c.Note)
}

// push saves a return address on the record's stack.
func (c *Channel) push(addr uint16) {
	c.StackPtr -= 2
	if assertions && (c.StackPtr < stackBottom || c.StackPtr > stackTop-2) {
		panic(fmt.Sprintf("sound: return stack overflow (sp=%02X)", c.StackPtr))
	}
	c.Stack[((c.StackPtr-stackBottom)>>1)&1] = addr
}

// pop restores the most recent return address.
func (c *Channel) pop() uint16 {
	if assertions && (c.StackPtr < stackBottom || c.StackPtr > stackTop-2) {
		panic(fmt.Sprintf("sound: return stack underflow (sp=%02X)", c.StackPtr))
	}
	addr := c.Stack[((c.StackPtr-stackBottom)>>1)&1]
	c.StackPtr += 2
	return addr
}

// loopCounter returns the loop counter at a record offset.
func (c *Channel) loopCounter(offset uint8) *uint8 {
	i := int(offset) - loopBase
	if i < 0 || i >= numLoops {
		panic(fmt.Sprintf("sound: loop counter offset %02X outside record", offset))
	}
	return &c.Loops[i]
}

// MarshalBinary encodes the channel in its 32-byte record layout.
func (c *Channel) MarshalBinary() ([]byte, error) {
	buf := make([]byte, ChannelRecordSize)
	c.encode(buf)
	return buf, nil
}

// UnmarshalBinary decodes a 32-byte record.
func (c *Channel) UnmarshalBinary(data []byte) error {
	if len(data) < ChannelRecordSize {
		return errors.New("channel record too short")
	}
	c.decode(data)
	return nil
}

func (c *Channel) encode(buf []byte) {
	buf[0x00] = uint8(c.Flags)
	buf[0x01] = uint8(c.Route)
	buf[0x02] = c.EndScale
	binary.LittleEndian.PutUint16(buf[0x03:], c.SeqPos)
	binary.LittleEndian.PutUint16(buf[0x05:], c.SeqEnd)
	binary.LittleEndian.PutUint16(buf[0x07:], c.SeqCmd)
	buf[0x09] = c.NoteOffset
	buf[0x0A] = c.StackPtr
	buf[0x0B] = c.ModSelect
	buf[0x0C] = c.FMBlock
	buf[0x0D] = uint8(c.Marker)
	buf[0x0E] = c.Command
	buf[0x0F] = c.ModOffset
	buf[0x10] = c.VolL
	buf[0x11] = c.VolR
	buf[0x12] = c.Note
	buf[0x13] = c.PhaseAmpl
	buf[0x14] = c.EndHi
	buf[0x15] = c.Pitch
	buf[0x16] = uint8(c.Control)
	copy(buf[loopBase:], c.Loops[:])
	binary.LittleEndian.PutUint16(buf[stackBottom:], c.Stack[0])
	binary.LittleEndian.PutUint16(buf[stackBottom+2:], c.Stack[1])
}

func (c *Channel) decode(buf []byte) {
	c.Flags = ChannelFlags(buf[0x00])
	c.Route = Route(buf[0x01])
	c.EndScale = buf[0x02]
	c.SeqPos = binary.LittleEndian.Uint16(buf[0x03:])
	c.SeqEnd = binary.LittleEndian.Uint16(buf[0x05:])
	c.SeqCmd = binary.LittleEndian.Uint16(buf[0x07:])
	c.NoteOffset = buf[0x09]
	c.StackPtr = buf[0x0A]
	c.ModSelect = buf[0x0B]
	c.FMBlock = buf[0x0C]
	c.Marker = MarkerFlags(buf[0x0D])
	c.Command = buf[0x0E]
	c.ModOffset = buf[0x0F]
	c.VolL = buf[0x10]
	c.VolR = buf[0x11]
	c.Note = buf[0x12]
	c.PhaseAmpl = buf[0x13]
	c.EndHi = buf[0x14]
	c.Pitch = buf[0x15]
	c.Control = PCMControl(buf[0x16])
	copy(c.Loops[:], buf[loopBase:loopBase+numLoops])
	c.Stack[0] = binary.LittleEndian.Uint16(buf[stackBottom:])
	c.Stack[1] = binary.LittleEndian.Uint16(buf[stackBottom+2:])
}
