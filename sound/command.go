package sound

import (
	"fmt"
	"strings"
)

// Sound commands posted by the main CPU.
const (
	CmdNone  = 0x00
	CmdReset = 0x80

	CmdMusicBreeze   = 0x81 // Passing Breeze
	CmdMusicSplash   = 0x82 // Splash Wave
	CmdMusicMagical  = 0x83 // Magical Sound Shower
	CmdMusicLastWave = 0x84 // Last Wave

	CmdCoinIn          = 0x85
	CmdYMCheckpoint    = 0x86
	CmdInitSlip        = 0x87
	CmdInitCheers      = 0x88
	CmdStopCheers      = 0x89
	CmdCrash1          = 0x8A
	CmdRebound         = 0x8B
	CmdCrash2          = 0x8C
	CmdStopSlip        = 0x8D
	CmdSignal1         = 0x8E
	CmdSignal2         = 0x8F
	CmdInitWeird       = 0x90
	CmdStopWeird       = 0x91
	CmdRevs            = 0x92
	CmdBeep1           = 0x93
	CmdUFO             = 0x94
	CmdBeep2           = 0x95
	CmdVoiceCheckpoint = 0x96
	CmdVoiceCongrats   = 0x97
	CmdVoiceGetReady   = 0x98
	CmdInitSafetyZone  = 0x99
	CmdStopSafetyZone  = 0x9A

	firstSoundCmd = CmdMusicBreeze
	lastCmd       = CmdStopSafetyZone
)

// commandDest is the first channel each sound command loads into.
var commandDest = map[uint8]ChannelID{
	CmdMusicBreeze:     ChFM1,
	CmdMusicSplash:     ChFM1,
	CmdMusicMagical:    ChFM1,
	CmdMusicLastWave:   ChFM1,
	CmdCoinIn:          ChFMFX1,
	CmdYMCheckpoint:    ChFMFX1,
	CmdInitSlip:        ChPCMFX5,
	CmdInitCheers:      ChPCMFX1,
	CmdCrash1:          ChPCMFX3,
	CmdRebound:         ChPCMFX3,
	CmdCrash2:          ChPCMFX4,
	CmdSignal1:         ChFMFX2,
	CmdSignal2:         ChFMFX2,
	CmdInitWeird:       ChPCMFX6,
	CmdRevs:            ChPCMFX7,
	CmdBeep1:           ChFMFX2,
	CmdBeep2:           ChFMFX2,
	CmdVoiceCheckpoint: ChPCMFX8,
	CmdVoiceCongrats:   ChPCMFX8,
	CmdVoiceGetReady:   ChPCMFX8,
	CmdInitSafetyZone:  ChShadow1,
}

// stopGroups lists the channel records each stop command silences.
var stopGroups = map[uint8][]ChannelID{
	CmdStopCheers:     {ChPCMFX1, ChPCMFX2},
	CmdStopSlip:       {ChPCMFX5},
	CmdStopWeird:      {ChPCMFX6},
	CmdStopSafetyZone: {ChShadow1, ChShadow2},
}

var commandNames = map[uint8]string{
	CmdReset:           "RESET",
	CmdMusicBreeze:     "MUSIC_BREEZE",
	CmdMusicSplash:     "MUSIC_SPLASH",
	CmdMusicMagical:    "MUSIC_MAGICAL",
	CmdMusicLastWave:   "MUSIC_LASTWAVE",
	CmdCoinIn:          "COIN_IN",
	CmdYMCheckpoint:    "YM_CHECKPOINT",
	CmdInitSlip:        "INIT_SLIP",
	CmdInitCheers:      "INIT_CHEERS",
	CmdStopCheers:      "STOP_CHEERS",
	CmdCrash1:          "CRASH1",
	CmdRebound:         "REBOUND",
	CmdCrash2:          "CRASH2",
	CmdStopSlip:        "STOP_SLIP",
	CmdSignal1:         "SIGNAL1",
	CmdSignal2:         "SIGNAL2",
	CmdInitWeird:       "INIT_WEIRD",
	CmdStopWeird:       "STOP_WEIRD",
	CmdRevs:            "REVS",
	CmdBeep1:           "BEEP1",
	CmdUFO:             "UFO",
	CmdBeep2:           "BEEP2",
	CmdVoiceCheckpoint: "VOICE_CHECKPOINT",
	CmdVoiceCongrats:   "VOICE_CONGRATS",
	CmdVoiceGetReady:   "VOICE_GETREADY",
	CmdInitSafetyZone:  "INIT_SAFETY_ZONE",
	CmdStopSafetyZone:  "STOP_SAFETY_ZONE",
}

// CommandName returns a display name for a command byte.
func CommandName(cmd uint8) string {
	if name, ok := commandNames[cmd]; ok {
		return name
	}
	return fmt.Sprintf("CMD_%02X", cmd)
}

// CommandByName looks up a command byte by its CommandName, ignoring case.
func CommandByName(name string) (uint8, bool) {
	for cmd, n := range commandNames {
		if strings.EqualFold(n, name) {
			return cmd, true
		}
	}
	return 0, false
}

// IsMusic reports whether cmd starts a music track.
func IsMusic(cmd uint8) bool {
	return cmd >= CmdMusicBreeze && cmd <= CmdMusicLastWave
}

// processCommand consumes the mailbox command, if any.
func (s *Sound) processCommand() {
	cmd := s.command
	if cmd == CmdNone {
		return
	}
	s.command = CmdNone

	switch {
	case cmd < CmdReset:
		s.Init()
	case cmd == CmdReset:
		s.silence()
	case cmd == CmdUFO || cmd > lastCmd:
		unreachable(fmt.Sprintf("command %02X", cmd))
	default:
		if g, ok := stopGroups[cmd]; ok {
			s.stop(g)
			return
		}
		if IsMusic(cmd) {
			s.stopMusic()
		}
		idx := cmd - firstSoundCmd
		header := s.rom.Read16(s.layout.CommandTable + uint16(idx)*2)
		s.initSound(idx, header, commandDest[cmd])
	}
}

// silence stops every channel and sample slot. Engine tone and traffic
// keep following telemetry.
func (s *Sound) silence() {
	s.ch = [NumChannels]Channel{}
	for ym := uint8(0); ym < 8; ym++ {
		s.fm.keyOff(ym)
	}
	for slot := sampleSlotBase; slot < sampleSlotBase+numSampleSlots; slot++ {
		s.pcm.Deactivate(slot)
	}
	s.backupValid = 0
}

// stopMusic clears the music channels before a new track loads. Channels
// covered by an effect leave the hardware to the effect.
func (s *Sound) stopMusic() {
	for id := ChFM1; id <= ChDrum6; id++ {
		ch := &s.ch[id]
		if ch.Enabled() && ch.Route&RouteSuppressed == 0 {
			if ch.IsPCM() {
				if slot, ok := ch.Route.SampleSlot(); ok {
					s.pcm.Deactivate(slot)
				}
			} else {
				s.fm.keyOff(ch.Route.YM())
			}
		}
		*ch = Channel{}
	}
}

// stop zeroes a group's channel records and stops the sample slots they
// were playing on.
func (s *Sound) stop(group []ChannelID) {
	for _, id := range group {
		ch := &s.ch[id]
		if !ch.Enabled() {
			*ch = Channel{}
			continue
		}
		if slot, ok := ch.Route.SampleSlot(); ok && ch.IsPCM() && ch.Route&RouteSuppressed == 0 {
			s.pcm.Deactivate(slot)
			s.backupValid &^= 1 << slot
		}
		mutes := ch.Flags&FlagMuteMusic != 0
		*ch = Channel{}
		if mutes {
			s.releaseMusic(id)
		}
	}
}
