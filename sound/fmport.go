package sound

// FMChip is the YM2151 model the engine drives. Register emulation lives
// outside this package.
type FMChip interface {
	WriteRegister(reg, val uint8)
	ReadStatus() uint8
}

// FM status bits.
const (
	FMStatusTimer = 0x01 // timer overflowed, ready for reset
	FMStatusBusy  = 0x80
)

// YM2151 registers written by the engine.
const (
	ymKeyOn       = 0x08
	ymNoise       = 0x0F
	ymTimerCtrl   = 0x14
	ymChanCtrl    = 0x20 // + channel: RL, FB, CON
	ymKeyCode     = 0x28 // + channel
	ymPMSAMS      = 0x38 // + channel
	ymReleaseBase = 0xE0 // + channel + 8*operator: D1L, RR

	ymKeyOnAll    = 0x78 // all four operators
	ymTimerReset  = 0x15 // reset timer A flag, keep timer A running with IRQ
	ymPanRight    = 0x80
	ymPanLeft     = 0x40
	ymPanCenter   = 0xC0
	ymPanMask     = 0x3F
	ymNoiseEnable = 0x80
	firstChanReg  = 0x20
)

// NullFM discards writes and is never busy.
type NullFM struct{}

// WriteRegister implements FMChip.
func (NullFM) WriteRegister(reg, val uint8) {}

// ReadStatus implements FMChip.
func (NullFM) ReadStatus() uint8 { return 0 }

// fmPort wraps the chip with busy polling and a shadow of the per-channel
// control registers, which the chip does not let us read back.
type fmPort struct {
	chip    FMChip
	ctrl    [8]uint8
	dropped uint64
}

// write sends one register write, skipping it while the chip is busy.
func (p *fmPort) write(reg, val uint8) {
	if reg >= ymChanCtrl && reg < ymChanCtrl+8 {
		p.ctrl[reg-ymChanCtrl] = val
	}
	if p.chip.ReadStatus()&FMStatusBusy != 0 {
		p.dropped++
		return
	}
	p.chip.WriteRegister(reg, val)
}

// channelWrite offsets per-channel registers by the YM channel. Global
// registers below 0x20 pass through.
func (p *fmPort) channelWrite(ym, reg, val uint8) {
	if reg >= firstChanReg {
		reg += ym
	}
	p.write(reg, val)
}

// keyOff releases all operators of a YM channel.
func (p *fmPort) keyOff(ym uint8) {
	p.write(ymKeyOn, ym&0x07)
}
