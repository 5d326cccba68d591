// Package baseband implements DVB-S2 mode and stream adaptation: the
// BBHEADER, transport stream sync byte handling, padding and the BBFRAME
// scrambler.
package baseband

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
	"github.com/sigurn/crc8"
)

const (
	HeaderBits  = 80
	HeaderBytes = HeaderBits / 8

	TSPacketSize = 188
	TSSyncByte   = 0x47
)

var (
	ErrHeaderCRC     = errors.New("baseband: BBHEADER CRC mismatch")
	ErrBadHeader     = errors.New("baseband: malformed BBHEADER")
	ErrChunkTooLarge = errors.New("baseband: chunk exceeds data field")
	ErrMisaligned    = errors.New("baseband: chunk breaks transport packet alignment")
)

var crcParams = crc8.Params{
	Poly: 0xD5,
	Init: 0x00,
	Name: "CRC-8/DVB-S2",
}

var crcTable = crc8.MakeTable(crcParams)

// CRC8 is the DVB-S2 CRC used by the BBHEADER and by transport packets.
func CRC8(data []byte) uint8 {
	return crc8.Checksum(data, crcTable)
}

type StreamType int

const (
	TransportStream StreamType = iota
	GenericContinuous
)

func (s StreamType) String() string {
	if s == GenericContinuous {
		return "generic"
	}
	return "ts"
}

func ParseStreamType(s string) (StreamType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ts", "":
		return TransportStream, nil
	case "generic", "gs", "continuous":
		return GenericContinuous, nil
	}
	return TransportStream, modcod.Invalid("stream_type", s, "expected ts or generic")
}

// TS/GS field of MATYPE-1.
func (s StreamType) tsgs() uint8 {
	if s == GenericContinuous {
		return 0b01
	}
	return 0b11
}

// RolloffCode maps a roll-off factor to the MATYPE RO field.
func RolloffCode(rolloff float64) uint8 {
	switch {
	case rolloff > 0.34 && rolloff < 0.36:
		return 0
	case rolloff > 0.24 && rolloff < 0.26:
		return 1
	case rolloff > 0.19 && rolloff < 0.21:
		return 2
	}
	return 3
}

type Header struct {
	Stream  StreamType
	Rolloff uint8
	UPL     uint16 // user packet length in bits
	DFL     uint16 // data field length in bits
	Sync    uint8
	SyncD   uint16
}

// Bytes serializes the header with its CRC-8.
func (h Header) Bytes() [HeaderBytes]byte {
	var b [HeaderBytes]byte
	// Single input stream, constant coding and modulation.
	b[0] = h.Stream.tsgs()<<6 | 1<<5 | 1<<4 | h.Rolloff&3
	b[1] = 0
	b[2], b[3] = byte(h.UPL>>8), byte(h.UPL)
	b[4], b[5] = byte(h.DFL>>8), byte(h.DFL)
	b[6] = h.Sync
	b[7], b[8] = byte(h.SyncD>>8), byte(h.SyncD)
	b[9] = CRC8(b[:9])
	return b
}

func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderBytes {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrBadHeader, len(b))
	}
	if CRC8(b[:9]) != b[9] {
		return Header{}, ErrHeaderCRC
	}
	h := Header{
		Rolloff: b[0] & 3,
		UPL:     uint16(b[2])<<8 | uint16(b[3]),
		DFL:     uint16(b[4])<<8 | uint16(b[5]),
		Sync:    b[6],
		SyncD:   uint16(b[7])<<8 | uint16(b[8]),
	}
	switch b[0] >> 6 {
	case 0b11:
		h.Stream = TransportStream
	case 0b01:
		h.Stream = GenericContinuous
	default:
		return h, fmt.Errorf("%w: unsupported TS/GS field %02b", ErrBadHeader, b[0]>>6)
	}
	if b[0]>>5&1 != 1 || b[0]>>4&1 != 1 {
		return h, fmt.Errorf("%w: multiple streams or ACM/VCM signalled", ErrBadHeader)
	}
	return h, nil
}

func bytesToBits(dst []uint8, src []byte) {
	for i, v := range src {
		for j := 0; j < 8; j++ {
			dst[i*8+j] = v >> (7 - j) & 1
		}
	}
}

func bitsToBytes(dst []byte, src []uint8) {
	for i := range dst {
		var v byte
		for j := 0; j < 8; j++ {
			v = v<<1 | src[i*8+j]&1
		}
		dst[i] = v
	}
}
