package sound

import (
	"fmt"
	"hash/crc32"
)

// ProgramROMSize is the size of the sound CPU program ROM (epr-10187.88).
const ProgramROMSize = 0x8000

// ProgramROMCRC is the CRC32 of the known-good sound program ROM.
const ProgramROMCRC = 0xa10abaa9

// ROM is the immutable sound program image. Addresses are 16-bit and words
// are stored low byte first (the sound CPU's byte order, which is reversed
// relative to the main CPU ROM reader).
//
// Reads outside the image are precondition violations and panic.
type ROM struct {
	data []byte
}

// NewROM wraps data as a sound program image. The slice is not copied.
func NewROM(data []byte) (*ROM, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("sound ROM is empty")
	}
	if len(data) > 0x10000 {
		return nil, fmt.Errorf("sound ROM too large for 16-bit address space (%d bytes)", len(data))
	}
	return &ROM{data: data}, nil
}

// ValidateCRC checks the image against the known program ROM checksum.
func ValidateCRC(data []byte) error {
	if got := crc32.ChecksumIEEE(data); got != ProgramROMCRC {
		return fmt.Errorf("sound ROM CRC mismatch: got %08X, want %08X", got, ProgramROMCRC)
	}
	return nil
}

// Len returns the image size in bytes.
func (r *ROM) Len() int {
	return len(r.data)
}

// CRC returns the CRC32 of the image. Save states are bound to it.
func (r *ROM) CRC() uint32 {
	return crc32.ChecksumIEEE(r.data)
}

// contains reports whether n bytes from addr lie inside the image.
func (r *ROM) contains(addr uint16, n int) bool {
	return int(addr)+n <= len(r.data)
}

// Read8 returns the byte at addr.
func (r *ROM) Read8(addr uint16) uint8 {
	return r.data[addr]
}

// Read16 returns the word at addr, low byte first.
func (r *ROM) Read16(addr uint16) uint16 {
	return uint16(r.data[addr]) | uint16(r.data[addr+1])<<8
}

// LookupFMBlock resolves the address of an FM register block. The command
// index selects a routine table; the routine table entry selects a block
// table, which is indexed by block.
func (r *ROM) LookupFMBlock(l *Layout, cmd, routine, block uint8) uint16 {
	routines := r.Read16(l.FMRoutineTable + uint16(cmd)*2)
	blocks := r.Read16(routines + uint16(routine)*2)
	return r.Read16(blocks + uint16(block)*2)
}

// Cursor is the bytecode stream position shared by the opcode handlers of a
// single Process Section call. It always points at the last byte consumed.
type Cursor struct {
	rom *ROM
	Pos uint16
}

// Peek returns the byte at the cursor without moving it.
func (c *Cursor) Peek() uint8 {
	return c.rom.Read8(c.Pos)
}

// Next advances the cursor and returns the byte it lands on.
func (c *Cursor) Next() uint8 {
	c.Pos++
	return c.rom.Read8(c.Pos)
}

// Next16 advances the cursor over a word and returns it.
func (c *Cursor) Next16() uint16 {
	lo := c.Next()
	hi := c.Next()
	return uint16(hi)<<8 | uint16(lo)
}
