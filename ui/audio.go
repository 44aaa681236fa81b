package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// DefaultSampleRate is the host output rate. At 125 ticks per second it
// gives a whole 384 frames per tick.
const DefaultSampleRate = 48000

// ringBufferMillis sizes the sample ring.
const ringBufferMillis = 170

// otoBufferMillis is oto's own buffer ahead of the ring.
const otoBufferMillis = 100

// AudioPlayer plays interleaved int16 stereo through oto. The tick
// goroutine pushes samples into a ring buffer which oto's player pulls from.
type AudioPlayer struct {
	player     *oto.Player
	ring       *AudioRingBuffer
	sampleRate int
}

// oto allows one context per process; its rate is fixed by the first player.
var (
	otoCtx      *oto.Context
	otoCtxRate  int
	otoInitOnce sync.Once
	otoInitErr  error
)

func ensureOtoContext(sampleRate int) (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		otoCtxRate = sampleRate
		<-ready
	})
	if otoInitErr == nil && otoCtxRate != sampleRate {
		return nil, fmt.Errorf("audio context already running at %d Hz", otoCtxRate)
	}
	return otoCtx, otoInitErr
}

// NewAudioPlayer opens the audio device at sampleRate and starts playback.
func NewAudioPlayer(sampleRate int, volume float64) (*AudioPlayer, error) {
	ctx, err := ensureOtoContext(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	ring := NewAudioRingBuffer(bytesForMillis(sampleRate, ringBufferMillis))
	player := ctx.NewPlayer(ring)
	player.SetBufferSize(bytesForMillis(sampleRate, otoBufferMillis))
	player.SetVolume(volume)
	player.Play()

	return &AudioPlayer{
		player:     player,
		ring:       ring,
		sampleRate: sampleRate,
	}, nil
}

// bytesForMillis returns the size of ms milliseconds of stereo int16 audio.
func bytesForMillis(sampleRate, ms int) int {
	return sampleRate * ms / 1000 * 4
}

// SampleRate returns the device rate.
func (a *AudioPlayer) SampleRate() int {
	return a.sampleRate
}

// QueueSamples pushes interleaved stereo samples.
func (a *AudioPlayer) QueueSamples(samples []int16) {
	a.ring.WriteSamples(samples)
}

// GetBufferLevel returns the bytes waiting to be heard: the ring plus
// oto's internal buffer. The runner paces ticks against it.
func (a *AudioPlayer) GetBufferLevel() int {
	return a.ring.Buffered() + a.player.BufferedSize()
}

// Overruns returns how many bytes were discarded because the ring was full.
func (a *AudioPlayer) Overruns() uint64 {
	return a.ring.Dropped()
}

// SetVolume sets the playback volume (0.0 = silent, 1.0 = full).
func (a *AudioPlayer) SetVolume(vol float64) {
	a.player.SetVolume(vol)
}

// Pause stops the device and discards queued audio.
func (a *AudioPlayer) Pause() {
	a.player.Pause()
	a.ring.Clear()
}

// Resume restarts the device after Pause.
func (a *AudioPlayer) Resume() {
	a.player.Play()
}

// Close releases the player. The ring is closed first so oto's reader
// unblocks.
func (a *AudioPlayer) Close() {
	if a.ring != nil {
		a.ring.Close()
	}
	if a.player != nil {
		a.player.Close()
	}
}
