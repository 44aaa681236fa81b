package sound

import "encoding/binary"

// ChannelRAMSize is the size of the Channel RAM image.
const ChannelRAMSize = 0x800

// Channel RAM image map.
const (
	ramChannels = 0x000 // NumChannels records of ChannelRecordSize
	ramBackup   = 0x3C0 // NumPCMSlots saved slots of 16 bytes
	ramEngine   = 0x500 // engine voices, 16 bytes each
	ramRings    = 0x560 // engine rings, 32 bytes each
	ramTraffic  = 0x5E0 // traffic voices, 16 bytes each
	ramGlobals  = 0x700

	ramVoiceStride = 0x10
	ramRingStride  = 0x20
)

// Global offsets, relative to ramGlobals.
const (
	gCommand     = 0x00
	gGate        = 0x01
	gRevEffect   = 0x02
	gPairToggle  = 0x03 // 4 bytes
	gBackupValid = 0x07 // word
	gTelemetry   = 0x10 // TelemetrySize bytes
	gEngineIn    = 0x18 // 3 bytes per traffic engine
	gFMCtrl      = 0x28 // 8 bytes
	gTicks       = 0x30 // 8 bytes
)

// ChannelRAM returns the engine state as a Channel RAM image.
func (s *Sound) ChannelRAM() []byte {
	buf := make([]byte, ChannelRAMSize)
	s.encodeRAM(buf)
	return buf
}

// ReadChannelRAM returns one byte of the Channel RAM image. Only the part
// of the image holding addr is encoded.
func (s *Sound) ReadChannelRAM(addr uint16) uint8 {
	const backupSize = 2 * pcmHalfSize
	switch {
	case int(addr) >= ChannelRAMSize:
		return 0
	case addr < ramBackup:
		var rec [ChannelRecordSize]byte
		s.ch[addr/ChannelRecordSize].encode(rec[:])
		return rec[addr%ChannelRecordSize]
	case addr < ramEngine:
		slot := int(addr-ramBackup) / backupSize
		if slot >= NumPCMSlots {
			return 0
		}
		return s.backup[slot][int(addr-ramBackup)%backupSize]
	default:
		var tail [ChannelRAMSize - ramEngine]byte
		s.encodeTail(tail[:])
		return tail[addr-ramEngine]
	}
}

func (s *Sound) encodeRAM(buf []byte) {
	for id := range s.ch {
		s.ch[id].encode(buf[ramChannels+id*ChannelRecordSize:])
	}
	for slot := range s.backup {
		copy(buf[ramBackup+slot*len(s.backup[slot]):], s.backup[slot][:])
	}
	s.encodeTail(buf[ramEngine:])
}

// encodeTail encodes the image from ramEngine on into buf.
func (s *Sound) encodeTail(buf []byte) {
	for n := range s.engine {
		s.engine[n].encode(buf[n*ramVoiceStride:])
	}
	for r := range s.rings {
		s.rings[r].encode(buf[ramRings-ramEngine+r*ramRingStride:])
	}
	for i := range s.traffic {
		s.traffic[i].encode(buf[ramTraffic-ramEngine+i*ramVoiceStride:])
	}

	g := buf[ramGlobals-ramEngine:]
	g[gCommand] = s.command
	g[gGate] = s.gate
	g[gRevEffect] = boolByte(s.revEffect)
	copy(g[gPairToggle:], s.pairToggle[:])
	binary.LittleEndian.PutUint16(g[gBackupValid:], s.backupValid)
	copy(g[gTelemetry:], s.telemetry[:])
	for i, in := range s.engineIn {
		off := gEngineIn + i*3
		binary.LittleEndian.PutUint16(g[off:], in.Pitch)
		g[off+2] = in.Volume
	}
	copy(g[gFMCtrl:], s.fm.ctrl[:])
	binary.LittleEndian.PutUint64(g[gTicks:], s.ticks)
}

func (s *Sound) decodeRAM(buf []byte) {
	for id := range s.ch {
		s.ch[id].decode(buf[ramChannels+id*ChannelRecordSize:])
	}
	for slot := range s.backup {
		copy(s.backup[slot][:], buf[ramBackup+slot*len(s.backup[slot]):])
	}
	for n := range s.engine {
		s.engine[n].decode(buf[ramEngine+n*ramVoiceStride:])
	}
	for r := range s.rings {
		s.rings[r].decode(buf[ramRings+r*ramRingStride:])
	}
	for i := range s.traffic {
		s.traffic[i].decode(buf[ramTraffic+i*ramVoiceStride:])
	}

	g := buf[ramGlobals:]
	s.command = g[gCommand]
	s.gate = g[gGate]
	s.revEffect = g[gRevEffect] != 0
	copy(s.pairToggle[:], g[gPairToggle:])
	s.backupValid = binary.LittleEndian.Uint16(g[gBackupValid:])
	copy(s.telemetry[:], g[gTelemetry:])
	for i := range s.engineIn {
		off := gEngineIn + i*3
		s.engineIn[i].Pitch = binary.LittleEndian.Uint16(g[off:])
		s.engineIn[i].Volume = g[off+2]
	}
	copy(s.fm.ctrl[:], g[gFMCtrl:])
	s.ticks = binary.LittleEndian.Uint64(g[gTicks:])
}

func (v *EngineVoice) encode(buf []byte) {
	buf[0] = uint8(v.Flags)
	binary.LittleEndian.PutUint16(buf[1:], v.Pitch)
	buf[3] = v.Vol
	buf[4] = v.Band
	buf[5] = v.VolL
	buf[6] = v.VolR
	buf[7] = v.Delta
}

func (v *EngineVoice) decode(buf []byte) {
	v.Flags = EngineFlags(buf[0])
	v.Pitch = binary.LittleEndian.Uint16(buf[1:])
	v.Vol = buf[3]
	v.Band = buf[4]
	v.VolL = buf[5]
	v.VolR = buf[6]
	v.Delta = buf[7]
}

// Ring layout: pitch words, then volumes, then the write position.
func (r *engineRing) encode(buf []byte) {
	for i, p := range r.pitch {
		binary.LittleEndian.PutUint16(buf[i*2:], p)
	}
	copy(buf[engineRingSize*2:], r.vol[:])
	buf[engineRingSize*3] = r.pos
}

func (r *engineRing) decode(buf []byte) {
	for i := range r.pitch {
		r.pitch[i] = binary.LittleEndian.Uint16(buf[i*2:])
	}
	copy(r.vol[:], buf[engineRingSize*2:])
	r.pos = buf[engineRingSize*3] % engineRingSize
}

func (t *TrafficVoice) encode(buf []byte) {
	buf[0] = uint8(t.Flags)
	buf[1] = t.VolIdx
	buf[2] = t.PanIdx
	buf[3] = t.Pitch
	buf[4] = t.VolL
	buf[5] = t.VolR
}

func (t *TrafficVoice) decode(buf []byte) {
	t.Flags = TrafficFlags(buf[0])
	t.VolIdx = buf[1]
	t.PanIdx = buf[2]
	t.Pitch = buf[3]
	t.VolL = buf[4]
	t.VolR = buf[5]
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
