// Package cli runs the sound engine in real time for command-line front
// ends: ticks on a dedicated goroutine, audio through oto, and shared
// state for whatever displays it.
package cli

import (
	"log"
	"time"

	"github.com/user-none/osound/sound"
	"github.com/user-none/osound/ui"
)

// ADT buffer thresholds in bytes (50 and 100 ms at 48 kHz stereo).
const (
	adtMinBuffer = 9600
	adtMaxBuffer = 19200
)

// Runner ticks an Engine at sound.TickRate with audio-driven timing: the
// sleep between ticks stretches or shrinks to hold the audio buffer
// between adtMinBuffer and adtMaxBuffer.
type Runner struct {
	engine      *Engine
	audioPlayer *ui.AudioPlayer

	control  *ui.Control
	input    *ui.HostInput
	snapshot *ui.SharedSnapshot
	done     chan struct{}
}

// NewRunner starts ticking e. Audio initialization failure is non-fatal;
// the runner then paces on the wall clock alone.
func NewRunner(e *Engine, volume float64) *Runner {
	player, err := ui.NewAudioPlayer(e.PCM.SampleRate(), volume)
	if err != nil {
		log.Printf("Warning: audio initialization failed: %v", err)
		player = nil
	}
	return startRunner(e, player)
}

func startRunner(e *Engine, player *ui.AudioPlayer) *Runner {
	r := &Runner{
		engine:      e,
		audioPlayer: player,
		control:     ui.NewControl(),
		input:       &ui.HostInput{},
		snapshot:    &ui.SharedSnapshot{},
		done:        make(chan struct{}),
	}
	go r.tickLoop()
	return r
}

// Input returns the command and telemetry inputs applied before each tick.
func (r *Runner) Input() *ui.HostInput {
	return r.input
}

// Snapshot returns the engine state after the latest tick.
func (r *Runner) Snapshot() ui.Snapshot {
	return r.snapshot.Read()
}

// Pause parks the tick goroutine and silences the device.
func (r *Runner) Pause() {
	r.control.RequestPause()
	if r.audioPlayer != nil {
		r.audioPlayer.Pause()
	}
	r.snapshot.SetPaused(true)
}

// Resume restarts ticking after Pause.
func (r *Runner) Resume() {
	if r.audioPlayer != nil {
		r.audioPlayer.Resume()
	}
	r.snapshot.SetPaused(false)
	r.control.RequestResume()
}

// TogglePause flips between Pause and Resume.
func (r *Runner) TogglePause() {
	if r.control.IsPaused() {
		r.Resume()
		return
	}
	r.Pause()
}

// SaveState serializes the engine between two ticks.
func (r *Runner) SaveState() ([]byte, error) {
	var state []byte
	var err error
	r.withEngine(func(e *Engine) {
		state, err = e.Sound.Serialize()
	})
	return state, err
}

// LoadState restores a state produced by SaveState.
func (r *Runner) LoadState(state []byte) error {
	var err error
	r.withEngine(func(e *Engine) {
		if err = e.Sound.Deserialize(state); err == nil {
			e.PCM.Reset()
		}
	})
	return err
}

// withEngine runs fn while the tick goroutine is parked.
func (r *Runner) withEngine(fn func(e *Engine)) {
	wasPaused := r.control.IsPaused()
	if !wasPaused {
		r.control.RequestPause()
	}
	fn(r.engine)
	if !wasPaused {
		r.control.RequestResume()
	}
}

// Close stops the tick goroutine and releases audio.
func (r *Runner) Close() {
	r.control.Stop()
	<-r.done

	if r.audioPlayer != nil {
		r.audioPlayer.Close()
		r.audioPlayer = nil
	}
}

// tickLoop runs on a dedicated goroutine.
func (r *Runner) tickLoop() {
	defer close(r.done)

	tickTime := time.Second / sound.TickRate
	lastTick := time.Now()

	for {
		if !r.control.CheckPause() {
			return
		}

		r.input.Apply(r.engine.Sound)
		samples := r.engine.Step()

		level := 0
		var overruns uint64
		if r.audioPlayer != nil {
			r.audioPlayer.QueueSamples(samples)
			level = r.audioPlayer.GetBufferLevel()
			overruns = r.audioPlayer.Overruns()
		}
		r.snapshot.Update(r.engine.Sound, level, overruns)

		sleep := tickTime - time.Since(lastTick)
		if r.audioPlayer != nil {
			if level < adtMinBuffer {
				sleep = time.Duration(float64(sleep) * 0.9)
			} else if level > adtMaxBuffer {
				sleep = time.Duration(float64(sleep) * 1.1)
			}
		}
		if sleep > time.Millisecond {
			time.Sleep(sleep)
		}
		lastTick = time.Now()
	}
}
