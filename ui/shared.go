package ui

import (
	"sync"

	"github.com/user-none/osound/sound"
)

// maxQueuedCommands bounds the host command queue.
const maxQueuedCommands = 16

type trafficInput struct {
	volIndex uint8
	pan      uint8
}

// HostInput holds commands and telemetry written by a front end and applied
// by the tick goroutine before each tick.
type HostInput struct {
	mu sync.Mutex

	commands []uint8

	playerPitch uint16
	playerVol   uint8
	traffic     [sound.NumTrafficVoices]trafficInput
	engines     [4]sound.EngineTelemetry
	revEffect   bool
}

// PostCommand queues a command. The sound program's mailbox holds one
// command per tick, so queued commands are delivered on successive ticks.
// When the queue is full the oldest command is dropped.
func (h *HostInput) PostCommand(cmd uint8) {
	h.mu.Lock()
	if len(h.commands) == maxQueuedCommands {
		h.commands = h.commands[1:]
	}
	h.commands = append(h.commands, cmd)
	h.mu.Unlock()
}

// QueuedCommands returns the number of commands not yet delivered.
func (h *HostInput) QueuedCommands() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.commands)
}

// SetPlayerEngine sets the player's raw engine pitch and volume.
func (h *HostInput) SetPlayerEngine(pitch uint16, vol uint8) {
	h.mu.Lock()
	h.playerPitch = pitch
	h.playerVol = vol
	h.mu.Unlock()
}

// PlayerEngine returns the player's engine input.
func (h *HostInput) PlayerEngine() (pitch uint16, vol uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playerPitch, h.playerVol
}

// SetTrafficFX sets passing-traffic voice i.
func (h *HostInput) SetTrafficFX(i int, volIndex, pan uint8) {
	h.mu.Lock()
	h.traffic[i] = trafficInput{volIndex: volIndex, pan: pan}
	h.mu.Unlock()
}

// SetEngineTelemetry sets traffic car i's engine input.
func (h *HostInput) SetEngineTelemetry(i int, in sound.EngineTelemetry) {
	h.mu.Lock()
	h.engines[i] = in
	h.mu.Unlock()
}

// SetRevEffect enables the standing-start rev effect.
func (h *HostInput) SetRevEffect(on bool) {
	h.mu.Lock()
	h.revEffect = on
	h.mu.Unlock()
}

// RevEffect reports the rev-effect setting.
func (h *HostInput) RevEffect() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.revEffect
}

// Apply copies the inputs into s and posts the next queued command if the
// mailbox is empty. Called by the tick goroutine.
func (h *HostInput) Apply(s *sound.Sound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s.SetPlayerEngine(h.playerPitch, h.playerVol)
	for i, t := range h.traffic {
		s.SetTrafficFX(i, t.volIndex, t.pan)
	}
	for i, e := range h.engines {
		s.SetEngineTelemetry(i, e)
	}
	s.SetRevEffect(h.revEffect)

	if len(h.commands) > 0 && s.PendingCommand() == sound.CmdNone {
		s.SendCommand(h.commands[0])
		h.commands = h.commands[1:]
	}
}

// Snapshot is a copy of the engine state for display.
type Snapshot struct {
	Ticks          uint64
	PendingCommand uint8
	DroppedFM      uint64

	Channels [sound.NumChannels]sound.Channel
	Engine   [sound.NumEngineVoices]sound.EngineVoice
	Traffic  [sound.NumTrafficVoices]sound.TrafficVoice
	PCM      sound.PCMRegisters

	AudioLevel    int
	AudioOverruns uint64
	Paused        bool
}

// SharedSnapshot holds the latest Snapshot written by the tick goroutine.
type SharedSnapshot struct {
	mu   sync.Mutex
	snap Snapshot
}

// Update captures s. Called by the tick goroutine after a tick.
func (ss *SharedSnapshot) Update(s *sound.Sound, audioLevel int, overruns uint64) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.snap.Ticks = s.Ticks()
	ss.snap.PendingCommand = s.PendingCommand()
	ss.snap.DroppedFM = s.DroppedFMWrites()
	for id := range ss.snap.Channels {
		ss.snap.Channels[id] = s.Channel(sound.ChannelID(id))
	}
	for n := range ss.snap.Engine {
		ss.snap.Engine[n] = s.EngineVoice(n)
	}
	for i := range ss.snap.Traffic {
		ss.snap.Traffic[i] = s.TrafficVoice(i)
	}
	ss.snap.PCM = *s.PCMRegisters()
	ss.snap.AudioLevel = audioLevel
	ss.snap.AudioOverruns = overruns
}

// SetPaused records the pause state shown to front ends.
func (ss *SharedSnapshot) SetPaused(p bool) {
	ss.mu.Lock()
	ss.snap.Paused = p
	ss.mu.Unlock()
}

// Read returns a copy of the latest snapshot.
func (ss *SharedSnapshot) Read() Snapshot {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.snap
}
