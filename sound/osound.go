package sound

// TickRate is the rate, in Hz, at which the host must call Tick.
const TickRate = 125

// Telemetry byte positions. The host refreshes the block once per game frame.
const (
	TelemetrySize = 8
	telPitchHi    = 1
	telPitchLo    = 2
	telVolume     = 3
	telTraffic    = 4 // four traffic FX bytes: volume index << 3 | pan index
)

// numTrafficEngines is the number of engine-tone voices driven by
// EngineTelemetry rather than the player's telemetry bytes.
const numTrafficEngines = 4

// EngineTelemetry is one traffic car's engine input.
type EngineTelemetry struct {
	Pitch  uint16
	Volume uint8
}

// Sound is the sound program: command mailbox, channel table, engine-tone
// and traffic synthesizers, and the PCM register file they drive.
//
// A Sound is not safe for concurrent use. Hosts that read the PCM register
// file from an audio thread must serialize that with Tick.
type Sound struct {
	rom    *ROM
	layout Layout
	fm     fmPort
	pcm    PCMRegisters

	ch [NumChannels]Channel

	// PCM slot contents saved when an effect takes over a slot.
	backup      [NumPCMSlots][2 * pcmHalfSize]byte
	backupValid uint16

	engine  [NumEngineVoices]EngineVoice
	rings   [numEngineRings]engineRing
	traffic [NumTrafficVoices]TrafficVoice

	command   uint8
	telemetry [TelemetrySize]byte
	engineIn  [numTrafficEngines]EngineTelemetry
	revEffect bool

	gate       uint8    // synthesizers run when this toggles to 1
	pairToggle [4]uint8 // alternates sample slots per pair-select category
	ticks      uint64
}

// New creates a sound engine reading its tables at DefaultLayout.
func New(rom *ROM, fm FMChip) *Sound {
	return NewWithLayout(rom, DefaultLayout, fm)
}

// NewWithLayout creates a sound engine reading its tables at layout.
func NewWithLayout(rom *ROM, layout Layout, fm FMChip) *Sound {
	if fm == nil {
		fm = NullFM{}
	}
	s := &Sound{
		rom:    rom,
		layout: layout,
		fm:     fmPort{chip: fm},
	}
	s.Init()
	return s
}

// Init returns the engine to its power-on state. Telemetry and the
// rev-effect flag belong to the host and are kept.
func (s *Sound) Init() {
	s.ch = [NumChannels]Channel{}
	s.engine = [NumEngineVoices]EngineVoice{}
	for n := range s.engine {
		s.engine[n].Flags = EngineMute
	}
	s.rings = [numEngineRings]engineRing{}
	s.traffic = [NumTrafficVoices]TrafficVoice{}
	s.backup = [NumPCMSlots][2 * pcmHalfSize]byte{}
	s.backupValid = 0
	s.command = CmdNone
	s.gate = 0
	s.pairToggle = [4]uint8{}
	s.fm.ctrl = [8]uint8{}
	for slot := 0; slot < NumPCMSlots; slot++ {
		s.pcm.clearSlot(slot)
	}
}

// Tick runs one sound interrupt: timer acknowledge, command, all channels,
// then the engine-tone and traffic passes on alternate ticks.
func (s *Sound) Tick() {
	if s.fm.chip.ReadStatus()&FMStatusTimer != 0 {
		s.fm.write(ymTimerCtrl, ymTimerReset)
	}

	s.processCommand()
	s.processChannels()

	s.gate ^= 1
	if s.gate == 1 {
		s.engineTick()
		s.trafficTick()
	}
	s.ticks++
}

// SendCommand posts a command for the next tick. A command already waiting
// is overwritten.
func (s *Sound) SendCommand(cmd uint8) {
	s.command = cmd
}

// PendingCommand returns the command waiting in the mailbox, 0 if none.
func (s *Sound) PendingCommand() uint8 {
	return s.command
}

// SetPlayerEngine sets the player's engine pitch and volume bytes.
func (s *Sound) SetPlayerEngine(pitch uint16, vol uint8) {
	s.telemetry[telPitchHi] = uint8(pitch >> 8)
	s.telemetry[telPitchLo] = uint8(pitch)
	s.telemetry[telVolume] = vol
}

// SetTrafficFX sets one of the four passing-traffic bytes. volIndex is
// 5 bits, pan 3 bits.
func (s *Sound) SetTrafficFX(i int, volIndex, pan uint8) {
	s.telemetry[telTraffic+i] = volIndex<<3 | pan&0x07
}

// SetEngineTelemetry sets the engine input for traffic car i (0-3).
func (s *Sound) SetEngineTelemetry(i int, in EngineTelemetry) {
	s.engineIn[i] = in
}

// SetRevEffect enables the standing-start revving behavior.
func (s *Sound) SetRevEffect(on bool) {
	s.revEffect = on
}

// Channel returns a copy of a channel record.
func (s *Sound) Channel(id ChannelID) Channel {
	return s.ch[id]
}

// EngineVoice returns a copy of an engine-tone record (0-5).
func (s *Sound) EngineVoice(n int) EngineVoice {
	return s.engine[n]
}

// TrafficVoice returns a copy of a traffic FX record (0-3).
func (s *Sound) TrafficVoice(i int) TrafficVoice {
	return s.traffic[i]
}

// PCMRegisters returns the live PCM register file for the chip model.
func (s *Sound) PCMRegisters() *PCMRegisters {
	return &s.pcm
}

// Ticks returns the number of ticks run since creation.
func (s *Sound) Ticks() uint64 {
	return s.ticks
}

// DroppedFMWrites returns how many register writes were skipped because
// the FM chip reported busy.
func (s *Sound) DroppedFMWrites() uint64 {
	return s.fm.dropped
}
