package sound

// PCM register file geometry. Each hardware slot owns an 8-byte front half
// at slot*8 and an 8-byte back half at 0x80+slot*8.
const (
	PCMRegisterSize = 0x100
	NumPCMSlots     = 16
	pcmHalfSize     = 8
	pcmBackOffset   = 0x80
)

// Front-half register offsets.
const (
	PCMVolL   = 0x02
	PCMVolR   = 0x03
	PCMLoopLo = 0x04
	PCMLoopHi = 0x05
	PCMEndHi  = 0x06
	PCMDelta  = 0x07
)

// Back-half register offsets (relative to the slot's back half).
const (
	PCMAddrFrac = 0x03
	PCMAddrLo   = 0x04
	PCMAddrHi   = 0x05
	PCMFlags    = 0x06
)

// Hardware flag bits.
const (
	PCMFlagInactive    = 0x01
	PCMFlagLoopDisable = 0x02
)

// Hardware slot allocation.
const (
	engineSlotBase  = 0  // six engine-tone voices
	trafficSlotBase = 6  // four traffic FX voices
	sampleSlotBase  = 10 // six sequenced sample voices
	numSampleSlots  = 6
)

// PCMRegisters is the control RAM shared with the PCM chip model.
type PCMRegisters [PCMRegisterSize]byte

// Front returns a slot's front half.
func (p *PCMRegisters) Front(slot int) []byte {
	base := slot * pcmHalfSize
	return p[base : base+pcmHalfSize]
}

// Back returns a slot's back half.
func (p *PCMRegisters) Back(slot int) []byte {
	base := pcmBackOffset + slot*pcmHalfSize
	return p[base : base+pcmHalfSize]
}

// Flags returns the slot's hardware flags.
func (p *PCMRegisters) Flags(slot int) uint8 {
	return p.Back(slot)[PCMFlags]
}

// SetFlags writes the slot's hardware flags.
func (p *PCMRegisters) SetFlags(slot int, v uint8) {
	p.Back(slot)[PCMFlags] = v
}

// Active reports whether the chip is playing the slot.
func (p *PCMRegisters) Active(slot int) bool {
	return p.Flags(slot)&PCMFlagInactive == 0
}

// Deactivate stops the slot, leaving the other registers intact.
func (p *PCMRegisters) Deactivate(slot int) {
	p.Back(slot)[PCMFlags] |= PCMFlagInactive
}

// Volume returns the left and right volumes.
func (p *PCMRegisters) Volume(slot int) (l, r uint8) {
	f := p.Front(slot)
	return f[PCMVolL], f[PCMVolR]
}

// SetVolume writes the left and right volumes.
func (p *PCMRegisters) SetVolume(slot int, l, r uint8) {
	f := p.Front(slot)
	f[PCMVolL] = l
	f[PCMVolR] = r
}

// Pitch returns the playback delta.
func (p *PCMRegisters) Pitch(slot int) uint8 {
	return p.Front(slot)[PCMDelta]
}

// SetPitch writes the playback delta.
func (p *PCMRegisters) SetPitch(slot int, v uint8) {
	p.Front(slot)[PCMDelta] = v
}

// SetWave points the slot at a waveform: loop and current addresses both
// take start, so playback restarts from the top.
func (p *PCMRegisters) SetWave(slot int, start uint16, endHi uint8) {
	p.SetLoop(slot, start, endHi)
	b := p.Back(slot)
	b[PCMAddrFrac] = 0
	b[PCMAddrLo] = uint8(start)
	b[PCMAddrHi] = uint8(start >> 8)
}

// SetLoop moves the loop point and end of a playing slot without
// restarting it.
func (p *PCMRegisters) SetLoop(slot int, loop uint16, endHi uint8) {
	f := p.Front(slot)
	f[PCMLoopLo] = uint8(loop)
	f[PCMLoopHi] = uint8(loop >> 8)
	f[PCMEndHi] = endHi
}

// Address returns the current playback address (high 16 bits).
func (p *PCMRegisters) Address(slot int) uint16 {
	b := p.Back(slot)
	return uint16(b[PCMAddrHi])<<8 | uint16(b[PCMAddrLo])
}

// EndHi returns the end address high byte.
func (p *PCMRegisters) EndHi(slot int) uint8 {
	return p.Front(slot)[PCMEndHi]
}

// clearSlot zeroes both halves and marks the slot inactive.
func (p *PCMRegisters) clearSlot(slot int) {
	clear(p.Front(slot))
	clear(p.Back(slot))
	p.SetFlags(slot, PCMFlagInactive)
}
