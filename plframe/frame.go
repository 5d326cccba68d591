package plframe

import (
	"fmt"

	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
)

type SymbolKind uint8

const (
	KindHeader SymbolKind = iota
	KindData
	KindPilot
)

// Layout describes where every symbol of a PL frame comes from and how it
// is scrambled. It is shared read-only by the framer and the receiver.
type Layout struct {
	Profile  modcod.Profile
	GoldCode int
	Symbols  int
	Header   [HeaderSymbols]complex64
	// Kinds and Rot cover the whole frame; Rot is zero over the header.
	Kinds []SymbolKind
	Rot   []uint8
}

func NewLayout(p modcod.Profile, goldCode int) (*Layout, error) {
	if goldCode < 0 || goldCode > MaxGoldCode {
		return nil, modcod.Invalid("gold_code", goldCode, fmt.Sprintf("must be in [0, %d]", MaxGoldCode))
	}
	l := &Layout{
		Profile:  p,
		GoldCode: goldCode,
		Symbols:  p.PLFrameSymbols(),
		Header:   Header(p),
	}
	l.Kinds = make([]SymbolKind, 0, l.Symbols)
	for i := 0; i < HeaderSymbols; i++ {
		l.Kinds = append(l.Kinds, KindHeader)
	}
	slots := p.Slots()
	for s := 0; s < slots; s++ {
		for i := 0; i < SlotSymbols; i++ {
			l.Kinds = append(l.Kinds, KindData)
		}
		if p.Pilots && (s+1)%PilotPeriod == 0 && s != slots-1 {
			for i := 0; i < PilotBlockSymbols; i++ {
				l.Kinds = append(l.Kinds, KindPilot)
			}
		}
	}
	if len(l.Kinds) != l.Symbols {
		return nil, fmt.Errorf("plframe: layout has %d symbols, want %d", len(l.Kinds), l.Symbols)
	}
	l.Rot = make([]uint8, l.Symbols)
	copy(l.Rot[HeaderSymbols:], goldSequence(goldCode, l.Symbols-HeaderSymbols))
	return l, nil
}

// Rotation returns the scrambling factor applied to symbol k.
func (l *Layout) Rotation(k int) complex64 {
	return rotations[l.Rot[k]]
}

// Build writes the scrambled PL frame carrying data into dst.
func (l *Layout) Build(dst, data []complex64) error {
	if len(data) != l.Profile.DataSymbols() {
		return fmt.Errorf("plframe: %d data symbols, want %d", len(data), l.Profile.DataSymbols())
	}
	if len(dst) < l.Symbols {
		return fmt.Errorf("plframe: output has room for %d symbols, want %d", len(dst), l.Symbols)
	}
	copy(dst, l.Header[:])
	d := 0
	for k := HeaderSymbols; k < l.Symbols; k++ {
		var s complex64
		if l.Kinds[k] == KindData {
			s = data[d]
			d++
		} else {
			s = Pilot
		}
		dst[k] = s * rotations[l.Rot[k]]
	}
	return nil
}

// Deframe descrambles a received PL frame and returns the data symbols in
// dst.
func (l *Layout) Deframe(dst, frame []complex64) error {
	if len(frame) < l.Symbols || len(dst) < l.Profile.DataSymbols() {
		return fmt.Errorf("plframe: frame has %d symbols, want %d", len(frame), l.Symbols)
	}
	d := 0
	for k := HeaderSymbols; k < l.Symbols; k++ {
		if l.Kinds[k] != KindData {
			continue
		}
		r := rotations[l.Rot[k]]
		dst[d] = frame[k] * complex(real(r), -imag(r))
		d++
	}
	return nil
}
