// Package plframe builds and parses DVB-S2 physical layer frames: the
// PLHEADER, pilot blocks and PL scrambling.
package plframe

import (
	"errors"
	"math"

	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
)

const (
	HeaderSymbols     = 90
	SlotSymbols       = 90
	PilotBlockSymbols = 36
	PilotPeriod       = 16 // slots between pilot blocks

	sof     = 0x18D2E82
	sofBits = 26
)

var ErrHeaderDecode = errors.New("plframe: PLHEADER not decodable")

// RM(32,6) generator rows for b0..b5.
var plsGenerator = [6]uint32{0x55555555, 0x33333333, 0x0F0F0F0F, 0x00FF00FF, 0x0000FFFF, 0xFFFFFFFF}

var plsScramble = [64]uint8{
	0, 1, 1, 1, 0, 0, 0, 1, 1, 0, 0, 1, 1, 1, 0, 1, 1, 0, 0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 1, 0, 0, 1,
	0, 1, 0, 1, 0, 0, 1, 1, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 1, 0, 1, 0, 0, 1, 0, 0, 0, 0,
}

var (
	// headers[code] is the modulated PLHEADER of a 7 bit PLS code.
	headers [128][HeaderSymbols]complex64
	// Pilot symbol before scrambling.
	Pilot complex64
)

func init() {
	s := float32(math.Sqrt2 / 2)
	Pilot = complex(s, s)
	for code := range headers {
		bits := headerBits(uint8(code))
		for i, b := range bits {
			headers[code][i] = halfPiBPSK(i, b, s)
		}
	}
}

// halfPiBPSK rotates even and odd symbols by pi/2 relative to each other.
func halfPiBPSK(i int, b uint8, s float32) complex64 {
	if i%2 == 0 {
		if b == 0 {
			return complex(s, s)
		}
		return complex(-s, -s)
	}
	if b == 0 {
		return complex(-s, s)
	}
	return complex(s, -s)
}

func headerBits(code uint8) [HeaderSymbols]uint8 {
	var bits [HeaderSymbols]uint8
	for i := 0; i < sofBits; i++ {
		bits[i] = uint8(uint32(sof)>>(sofBits-1-i)) & 1
	}
	var cw uint32
	for i := 0; i < 6; i++ {
		if code&(1<<(6-i)) != 0 {
			cw ^= plsGenerator[i]
		}
	}
	b7 := code & 1
	for i := 0; i < 32; i++ {
		c := uint8(cw>>(31-i)) & 1
		bits[sofBits+2*i] = c ^ plsScramble[2*i]
		bits[sofBits+2*i+1] = c ^ b7 ^ plsScramble[2*i+1]
	}
	return bits
}

// Header returns the 90 PLHEADER symbols of a profile.
func Header(p modcod.Profile) [HeaderSymbols]complex64 {
	return headers[p.PLSCode()&0x7F]
}

// DecodeHeader returns the PLS code whose header best matches symbols,
// which must be phase and amplitude corrected.
func DecodeHeader(symbols []complex64) (uint8, error) {
	if len(symbols) < HeaderSymbols {
		return 0, ErrHeaderDecode
	}
	best, bestScore := -1, float32(0)
	for code := range headers {
		var score float32
		ref := headers[code][sofBits:]
		for i, y := range symbols[sofBits:HeaderSymbols] {
			r := ref[i]
			score += real(y)*real(r) + imag(y)*imag(r)
		}
		if score > bestScore {
			best, bestScore = code, score
		}
	}
	if best < 0 {
		return 0, ErrHeaderDecode
	}
	return uint8(best), nil
}

// ParseCode splits a PLS code into its fields.
func ParseCode(code uint8) (modcodID int, short, pilots bool) {
	return int(code >> 2), code&2 != 0, code&1 != 0
}
