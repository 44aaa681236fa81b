package cli

import (
	"github.com/user-none/osound/segapcm"
	"github.com/user-none/osound/sound"
	"github.com/user-none/osound/vgm"
)

// Engine runs the sound program against its chip models one tick at a time.
type Engine struct {
	Sound *sound.Sound
	PCM   *segapcm.Chip
	VGM   *vgm.Writer // nil when not logging

	frameAcc int
	vgmAcc   int
}

// NewEngine wires snd to the PCM chip model and, if rec is non-nil, to a
// VGM log. rec must also be the FM chip snd was created with for FM
// writes to be recorded.
func NewEngine(snd *sound.Sound, pcm *segapcm.Chip, rec *vgm.Writer) *Engine {
	if rec != nil {
		rec.SetPCMROM(pcm.ROM())
	}
	return &Engine{Sound: snd, PCM: pcm, VGM: rec}
}

// Step runs one tick and returns the audio it produced at the PCM chip's
// host rate. The slice is reused by the next Step.
func (e *Engine) Step() []int16 {
	e.Sound.Tick()

	regs := e.Sound.PCMRegisters()[:]
	if e.VGM != nil {
		e.VGM.CapturePCM(regs)
	}

	out := e.PCM.Render(regs, e.nextFrames())

	if e.VGM != nil {
		e.VGM.SyncPCM(regs)
		e.VGM.Wait(e.nextLogSamples())
	}
	return out
}

// Run steps n ticks, discarding the audio.
func (e *Engine) Run(n int) {
	for i := 0; i < n; i++ {
		e.Step()
	}
}

// nextFrames spreads the host rate over ticks without drift.
func (e *Engine) nextFrames() int {
	e.frameAcc += e.PCM.SampleRate()
	n := e.frameAcc / sound.TickRate
	e.frameAcc %= sound.TickRate
	return n
}

func (e *Engine) nextLogSamples() int {
	e.vgmAcc += vgm.SampleRate
	n := e.vgmAcc / sound.TickRate
	e.vgmAcc %= sound.TickRate
	return n
}
