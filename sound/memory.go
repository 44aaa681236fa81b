package sound

import emucore "github.com/user-none/eblitui/api"

// Compile-time interface checks.
var _ emucore.MemoryInspector = (*Sound)(nil)
var _ emucore.MemoryMapper = (*Sound)(nil)

// Flat address boundaries for ReadMemory.
const (
	channelRAMStart = 0x0000
	channelRAMEnd   = channelRAMStart + ChannelRAMSize - 1
	pcmRegsStart    = 0x0800
	pcmRegsEnd      = pcmRegsStart + PCMRegisterSize - 1
)

// ReadMemory reads from a flat address into buf and returns the number
// of bytes read. Channel RAM is followed by the PCM register file.
func (s *Sound) ReadMemory(addr uint32, buf []byte) uint32 {
	ram := s.ChannelRAM()
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		switch {
		case cur <= channelRAMEnd:
			buf[i] = ram[cur-channelRAMStart]
		case cur >= pcmRegsStart && cur <= pcmRegsEnd:
			buf[i] = s.pcm[cur-pcmRegsStart]
		default:
			return count
		}
		count++
	}
	return count
}

// MemoryMap lists Channel RAM as the system RAM region.
func (s *Sound) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: ChannelRAMSize},
	}
}

// ReadRegion returns a copy of the specified memory region.
func (s *Sound) ReadRegion(regionType int) []byte {
	switch regionType {
	case emucore.MemorySystemRAM:
		return s.ChannelRAM()
	default:
		return nil
	}
}

// WriteRegion writes data to the specified memory region. Short writes
// are ignored.
func (s *Sound) WriteRegion(regionType int, data []byte) {
	switch regionType {
	case emucore.MemorySystemRAM:
		if len(data) >= ChannelRAMSize {
			s.decodeRAM(data)
		}
	}
}
