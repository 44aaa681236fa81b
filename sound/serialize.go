package sound

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "OSoundState\x00"
	stateHeaderSize = 22 // magic(12) + version(2) + romCRC(4) + dataCRC(4)
)

// SerializeSize is the size of a save state: header, Channel RAM image and
// PCM register file.
const SerializeSize = stateHeaderSize + ChannelRAMSize + PCMRegisterSize

// Serialize creates a save state and returns it as a byte slice.
func (s *Sound) Serialize() ([]byte, error) {
	data := make([]byte, SerializeSize)

	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], s.rom.CRC())

	offset := stateHeaderSize
	s.encodeRAM(data[offset : offset+ChannelRAMSize])
	offset += ChannelRAMSize
	copy(data[offset:], s.pcm[:])

	dataCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[18:22], dataCRC)

	return data, nil
}

// Deserialize restores engine state from a save state byte slice. The FM
// chip is not part of the state; the next ticks rewrite what they need.
func (s *Sound) Deserialize(data []byte) error {
	if err := s.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize
	s.decodeRAM(data[offset : offset+ChannelRAMSize])
	offset += ChannelRAMSize
	copy(s.pcm[:], data[offset:offset+PCMRegisterSize])

	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (s *Sound) VerifyState(data []byte) error {
	if len(data) < SerializeSize {
		return errors.New("save state too short")
	}

	if string(data[0:12]) != stateMagic {
		return errors.New("invalid save state magic")
	}

	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return errors.New("unsupported save state version")
	}

	romCRC := binary.LittleEndian.Uint32(data[14:18])
	if romCRC != s.rom.CRC() {
		return errors.New("save state is for a different ROM")
	}

	expectedCRC := binary.LittleEndian.Uint32(data[18:22])
	actualCRC := crc32.ChecksumIEEE(data[stateHeaderSize:SerializeSize])
	if expectedCRC != actualCRC {
		return errors.New("save state data is corrupted")
	}

	return nil
}
