package vgm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// Chip identifies the target of a logged write.
type Chip uint8

const (
	ChipYM2151 Chip = iota
	ChipSegaPCM
)

// Event is one logged register write.
type Event struct {
	Sample uint32
	Chip   Chip
	Addr   uint16
	Value  uint8
}

// Log is a decoded VGM file restricted to the chips this board uses.
type Log struct {
	Version      uint32
	TotalSamples uint32
	YM2151Clock  uint32
	SegaPCMClock uint32
	SegaPCMIntf  uint32
	PCMROM       []byte
	Events       []Event
}

// Load reads and parses a .vgm or .vgz file from fs.
func Load(fs afero.Fs, path string) (*Log, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read vgm: %w", err)
	}
	return Parse(data)
}

// Parse decodes a VGM file. Gzipped input is detected by its magic.
func Parse(data []byte) (*Log, error) {
	if len(data) >= 2 && data[0] == 0x1F && data[1] == 0x8B {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		data, err = io.ReadAll(gz)
		if err != nil {
			return nil, err
		}
	}
	if len(data) < 0x40 {
		return nil, errors.New("vgm too short")
	}
	if !bytes.Equal(data[0:4], []byte("Vgm ")) {
		return nil, errors.New("invalid vgm header")
	}

	out := &Log{
		Version:      binary.LittleEndian.Uint32(data[offVersion:]),
		TotalSamples: binary.LittleEndian.Uint32(data[offTotalSamples:]),
		YM2151Clock:  binary.LittleEndian.Uint32(data[offYM2151Clock:]),
		SegaPCMClock: binary.LittleEndian.Uint32(data[offSegaPCMClock:]),
		SegaPCMIntf:  binary.LittleEndian.Uint32(data[offSegaPCMIntf:]),
	}

	start := 0x40
	if off := binary.LittleEndian.Uint32(data[offDataOffset:]); off != 0 {
		start = offDataOffset + int(off)
	}
	if start >= len(data) {
		return nil, errors.New("vgm data offset out of range")
	}

	var pos uint32
	for i := start; i < len(data); {
		cmd := data[i]
		switch {
		case cmd == cmdEnd:
			return out, nil
		case cmd == cmdYM2151:
			if i+2 >= len(data) {
				return nil, fmt.Errorf("vgm truncated YM2151 write at offset %d", i)
			}
			out.Events = append(out.Events, Event{Sample: pos, Chip: ChipYM2151, Addr: uint16(data[i+1]), Value: data[i+2]})
			i += 3
		case cmd == cmdSegaPCM:
			if i+3 >= len(data) {
				return nil, fmt.Errorf("vgm truncated Sega PCM write at offset %d", i)
			}
			addr := binary.LittleEndian.Uint16(data[i+1:])
			out.Events = append(out.Events, Event{Sample: pos, Chip: ChipSegaPCM, Addr: addr, Value: data[i+3]})
			i += 4
		case cmd == cmdWait:
			if i+2 >= len(data) {
				return nil, fmt.Errorf("vgm truncated wait at offset %d", i)
			}
			pos += uint32(binary.LittleEndian.Uint16(data[i+1:]))
			i += 3
		case cmd == cmdWait735:
			pos += 735
			i++
		case cmd == cmdWait882:
			pos += 882
			i++
		case cmd >= cmdWaitShort && cmd <= cmdWaitShort|0x0F:
			pos += uint32(cmd&0x0F) + 1
			i++
		case cmd == cmdDataBlock:
			if i+6 >= len(data) || data[i+1] != cmdEnd {
				return nil, fmt.Errorf("vgm invalid data block at offset %d", i)
			}
			n := int(binary.LittleEndian.Uint32(data[i+3:]))
			body := i + 7
			if body+n > len(data) {
				return nil, fmt.Errorf("vgm truncated data block at offset %d", i)
			}
			if data[i+2] == blockSegaPCMROM && n >= 8 {
				romSize := binary.LittleEndian.Uint32(data[body:])
				romStart := binary.LittleEndian.Uint32(data[body+4:])
				if len(out.PCMROM) < int(romSize) {
					grown := make([]byte, romSize)
					copy(grown, out.PCMROM)
					out.PCMROM = grown
				}
				copy(out.PCMROM[min(int(romStart), len(out.PCMROM)):], data[body+8:body+n])
			}
			i = body + n
		default:
			return nil, fmt.Errorf("vgm unsupported command 0x%02X at offset %d", cmd, i)
		}
	}
	return nil, errors.New("vgm missing end of data")
}
