package modcod

import (
	"fmt"
	"strings"
)

type Modulation int

const (
	QPSK Modulation = iota
	PSK8
)

func (m Modulation) String() string {
	switch m {
	case QPSK:
		return "QPSK"
	case PSK8:
		return "8PSK"
	}
	return fmt.Sprintf("Modulation(%d)", int(m))
}

// BitsPerSymbol is eta_MOD.
func (m Modulation) BitsPerSymbol() int {
	if m == PSK8 {
		return 3
	}
	return 2
}

type CodeRate int

const (
	Rate1_4 CodeRate = iota
	Rate1_3
	Rate2_5
	Rate1_2
	Rate3_5
	Rate2_3
	Rate3_4
	Rate4_5
	Rate5_6
	Rate8_9
	Rate9_10
	numRates
)

var rateNames = [numRates]string{"1/4", "1/3", "2/5", "1/2", "3/5", "2/3", "3/4", "4/5", "5/6", "8/9", "9/10"}

func (r CodeRate) String() string {
	if r < 0 || r >= numRates {
		return fmt.Sprintf("CodeRate(%d)", int(r))
	}
	return rateNames[r]
}

type FrameSize int

const (
	Normal FrameSize = iota
	Short
)

func (f FrameSize) String() string {
	if f == Short {
		return "short"
	}
	return "normal"
}

// Bits is the FEC frame length Nldpc.
func (f FrameSize) Bits() int {
	if f == Short {
		return 16200
	}
	return 64800
}

func ParseFrameSize(s string) (FrameSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short", "16200":
		return Short, nil
	case "normal", "64800", "":
		return Normal, nil
	}
	return Normal, Invalid("frame_size", s, "expected normal or short")
}

type bchRow struct {
	kbch, nbch, t int
}

// EN 302 307 tables 5a and 5b. A zero row means the rate is not defined for
// that frame size.
var bchTable = map[FrameSize][numRates]bchRow{
	Normal: {
		{16008, 16200, 12}, {21408, 21600, 12}, {25728, 25920, 12}, {32208, 32400, 12},
		{38688, 38880, 12}, {43040, 43200, 10}, {48408, 48600, 12}, {51648, 51840, 12},
		{53840, 54000, 10}, {57472, 57600, 8}, {58192, 58320, 8},
	},
	Short: {
		{3072, 3240, 12}, {5232, 5400, 12}, {6312, 6480, 12}, {7032, 7200, 12},
		{9552, 9720, 12}, {10632, 10800, 12}, {11712, 11880, 12}, {12432, 12600, 12},
		{13152, 13320, 12}, {14232, 14400, 12}, {},
	},
}

// PLS modcod field values for the constellations handled here.
var (
	qpskIDs = [numRates]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	psk8IDs = [numRates]int{0, 0, 0, 0, 12, 13, 14, 0, 15, 16, 17}
)

// Profile is an immutable modcod selection for one session.
type Profile struct {
	ID         int
	Modulation Modulation
	Rate       CodeRate
	Frame      FrameSize
	Pilots     bool
}

func (p Profile) Name() string {
	return p.Modulation.String() + p.Rate.String()
}

func (p Profile) String() string {
	pilots := "nopilots"
	if p.Pilots {
		pilots = "pilots"
	}
	return fmt.Sprintf("%s/%s/%s", p.Name(), p.Frame, pilots)
}

func (p Profile) FECFrameBits() int { return p.Frame.Bits() }

func (p Profile) Kbch() int { return bchTable[p.Frame][p.Rate].kbch }

// Nbch is also Kldpc.
func (p Profile) Nbch() int { return bchTable[p.Frame][p.Rate].nbch }

func (p Profile) BCHErrors() int { return bchTable[p.Frame][p.Rate].t }

func (p Profile) BitsPerSymbol() int { return p.Modulation.BitsPerSymbol() }

// DataSymbols is the number of modulated symbols carrying one FEC frame.
func (p Profile) DataSymbols() int { return p.FECFrameBits() / p.BitsPerSymbol() }

// Slots is S, the number of 90 symbol slots in the frame.
func (p Profile) Slots() int { return p.DataSymbols() / 90 }

// PilotBlocks is the number of 36 symbol pilot blocks, one after every 16
// slots except after the last slot.
func (p Profile) PilotBlocks() int {
	if !p.Pilots {
		return 0
	}
	return (p.Slots() - 1) / 16
}

func (p Profile) PLFrameSymbols() int {
	return 90 + p.DataSymbols() + 36*p.PilotBlocks()
}

// DataFieldBits is the BBFRAME capacity after the 80 bit BBHEADER.
func (p Profile) DataFieldBits() int { return p.Kbch() - 80 }

// PLSCode is the 7 bit value carried by the PLHEADER.
func (p Profile) PLSCode() uint8 {
	code := uint8(p.ID) << 2
	if p.Frame == Short {
		code |= 2
	}
	if p.Pilots {
		code |= 1
	}
	return code
}

// Lookup returns the profile for a PLS modcod index.
func Lookup(id int, frame FrameSize, pilots bool) (Profile, error) {
	for r := CodeRate(0); r < numRates; r++ {
		if qpskIDs[r] == id {
			return newProfile(QPSK, r, frame, pilots)
		}
		if psk8IDs[r] != 0 && psk8IDs[r] == id {
			return newProfile(PSK8, r, frame, pilots)
		}
	}
	return Profile{}, &ConfigError{Field: "modcod", Value: id, Err: ErrUnknownModcod}
}

// Parse resolves a modcod name such as "QPSK1/2" or "8psk 5/6".
func Parse(name string, frame FrameSize, pilots bool) (Profile, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	var mod Modulation
	switch {
	case strings.HasPrefix(norm, "QPSK"):
		mod = QPSK
		norm = norm[4:]
	case strings.HasPrefix(norm, "8PSK"):
		mod = PSK8
		norm = norm[4:]
	default:
		return Profile{}, &ConfigError{Field: "modcod", Value: name, Err: ErrUnknownModcod}
	}
	for r, rn := range rateNames {
		if rn == norm {
			return newProfile(mod, CodeRate(r), frame, pilots)
		}
	}
	return Profile{}, &ConfigError{Field: "modcod", Value: name, Err: ErrUnknownModcod}
}

func newProfile(mod Modulation, rate CodeRate, frame FrameSize, pilots bool) (Profile, error) {
	id := qpskIDs[rate]
	if mod == PSK8 {
		id = psk8IDs[rate]
	}
	p := Profile{ID: id, Modulation: mod, Rate: rate, Frame: frame, Pilots: pilots}
	if id == 0 {
		return Profile{}, &ConfigError{Field: "modcod", Value: p.Name(), Err: ErrUnknownModcod}
	}
	if frame != Normal && frame != Short {
		return Profile{}, Invalid("frame_size", int(frame), "expected normal or short")
	}
	if p.Kbch() == 0 {
		return Profile{}, Unsupported("modcod", p.Name(), "rate not defined for "+frame.String()+" frames")
	}
	return p, nil
}

// All lists every QPSK and 8PSK modcod defined for the frame size.
func All(frame FrameSize, pilots bool) []Profile {
	var out []Profile
	for _, mod := range []Modulation{QPSK, PSK8} {
		for r := CodeRate(0); r < numRates; r++ {
			if p, err := newProfile(mod, r, frame, pilots); err == nil {
				out = append(out, p)
			}
		}
	}
	return out
}
