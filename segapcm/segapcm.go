// Package segapcm models the Sega 315-5218 16-channel PCM chip that plays
// the engine, traffic and sample voices. The chip reads its control RAM
// directly: callers hand it the same 256-byte register file the sound
// program writes.
package segapcm

// DefaultClock is the chip clock on the OutRun sound board.
const DefaultClock = 15625000

// clockDivider is the number of chip clocks per native output sample.
const clockDivider = 128

// Register file geometry.
const (
	NumChannels  = 16
	RegisterSize = 0x100
	halfSize     = 8
	backOffset   = 0x80
)

// Front-half register offsets.
const (
	regVolL   = 0x02
	regVolR   = 0x03
	regLoopLo = 0x04
	regLoopHi = 0x05
	regEndHi  = 0x06
	regDelta  = 0x07
)

// Back-half register offsets.
const (
	regAddrFrac = 0x03
	regAddrLo   = 0x04
	regAddrHi   = 0x05
	regFlags    = 0x06
)

// Flag bits.
const (
	flagInactive    = 0x01
	flagLoopDisable = 0x02
	flagBankMask    = 0x70
)

// bankShift turns the flag bank bits into a ROM offset: each bank is 64KB.
const bankShift = 12

const volumeMask = 0x7F

// Chip renders the sixteen PCM channels at a host sample rate.
type Chip struct {
	rom []byte

	clockHz     int
	nativeRate  int
	sampleRate  int
	resampAccum int

	// Box-filter state between two host samples.
	sumL, sumR int64
	sumN       int64

	muted  uint16
	buffer []int16
}

// New creates a chip reading sample data from rom. Banks past the end of
// rom wrap around.
func New(clockHz, sampleRate int, rom []byte) *Chip {
	return &Chip{
		rom:        rom,
		clockHz:    clockHz,
		nativeRate: clockHz / clockDivider,
		sampleRate: sampleRate,
		buffer:     make([]int16, 0, 2048),
	}
}

// NativeRate returns the chip's internal sample rate.
func (c *Chip) NativeRate() int {
	return c.nativeRate
}

// SampleRate returns the host output rate.
func (c *Chip) SampleRate() int {
	return c.sampleRate
}

// ROMSize returns the length of the sample ROM.
func (c *Chip) ROMSize() int {
	return len(c.rom)
}

// ROM returns the sample ROM.
func (c *Chip) ROM() []byte {
	return c.rom
}

// SetMute silences the channels whose bits are set in mask. Muting only
// affects the output; muted channels keep advancing.
func (c *Chip) SetMute(mask uint16) {
	c.muted = mask
}

// Reset clears the resampler. Call it when the register file is replaced
// wholesale, as by a state load.
func (c *Chip) Reset() {
	c.resampAccum = 0
	c.sumL, c.sumR, c.sumN = 0, 0, 0
	c.buffer = c.buffer[:0]
}

// Render advances the chip until frames stereo samples have been produced
// at the host rate and returns them interleaved. The returned slice is
// reused by the next call. regs is updated in place: channel addresses
// advance and one-shot channels set their inactive flag on reaching the end.
func (c *Chip) Render(regs []byte, frames int) []int16 {
	c.buffer = c.buffer[:0]
	if len(regs) < RegisterSize || frames <= 0 || c.nativeRate <= 0 {
		return c.buffer
	}

	for len(c.buffer) < frames*2 {
		l, r := c.step(regs)
		c.sumL += int64(l)
		c.sumR += int64(r)
		c.sumN++

		// Bresenham resample from the native rate down to the host rate
		c.resampAccum += c.sampleRate
		if c.resampAccum >= c.nativeRate {
			c.resampAccum -= c.nativeRate
			c.buffer = append(c.buffer,
				clamp16(c.sumL/c.sumN),
				clamp16(c.sumR/c.sumN))
			c.sumL, c.sumR, c.sumN = 0, 0, 0
		}
	}
	return c.buffer
}

// step produces one native sample from all active channels.
func (c *Chip) step(regs []byte) (left, right int32) {
	for ch := 0; ch < NumChannels; ch++ {
		front := regs[ch*halfSize : ch*halfSize+halfSize]
		back := regs[backOffset+ch*halfSize : backOffset+ch*halfSize+halfSize]

		flags := back[regFlags]
		if flags&flagInactive != 0 {
			continue
		}

		addr := uint32(back[regAddrHi])<<16 | uint32(back[regAddrLo])<<8 | uint32(back[regAddrFrac])
		loop := uint32(front[regLoopHi])<<16 | uint32(front[regLoopLo])<<8
		end := uint32(front[regEndHi]) + 1

		if addr>>16 == end&0xFF {
			if flags&flagLoopDisable != 0 {
				back[regFlags] = flags | flagInactive
				continue
			}
			addr = loop
		}

		v := int32(c.sample(flags, addr>>8)) - 0x80
		if c.muted&(1<<ch) == 0 {
			left += v * int32(front[regVolL]&volumeMask)
			right += v * int32(front[regVolR]&volumeMask)
		}

		addr = (addr + uint32(front[regDelta])) & 0xFFFFFF
		back[regAddrFrac] = uint8(addr)
		back[regAddrLo] = uint8(addr >> 8)
		back[regAddrHi] = uint8(addr >> 16)
	}
	return left, right
}

// sample reads one unsigned 8-bit sample from the bank selected by flags.
func (c *Chip) sample(flags uint8, offset uint32) uint8 {
	if len(c.rom) == 0 {
		return 0x80
	}
	pos := uint32(flags&flagBankMask)<<bankShift | offset&0xFFFF
	return c.rom[int(pos)%len(c.rom)]
}

func clamp16(v int64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
