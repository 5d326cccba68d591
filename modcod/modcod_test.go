package modcod

import (
	"errors"
	"testing"
)

func TestPLFrameSymbols(t *testing.T) {
	tests := []struct {
		name   string
		frame  FrameSize
		pilots bool
		want   int
	}{
		{"QPSK1/2", Short, false, 8190},
		{"QPSK1/2", Short, true, 8370},
		{"8PSK2/3", Short, false, 5490},
		{"8PSK2/3", Short, true, 5598},
		{"QPSK3/4", Normal, false, 32490},
		{"QPSK3/4", Normal, true, 33282},
		{"8PSK5/6", Normal, false, 21690},
		{"8PSK5/6", Normal, true, 22194},
	}
	for _, tt := range tests {
		p, err := Parse(tt.name, tt.frame, tt.pilots)
		if err != nil {
			t.Fatalf("Parse(%s): %v", tt.name, err)
		}
		if got := p.PLFrameSymbols(); got != tt.want {
			t.Errorf("%s: PLFrameSymbols() = %d, want %d", p, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		frame   FrameSize
		id      int
		wantErr error
	}{
		{"QPSK1/2", Short, 4, nil},
		{"qpsk 3/4", Short, 7, nil},
		{"8PSK5/6", Short, 15, nil},
		{"8psk 3/5", Normal, 12, nil},
		{"QPSK9/10", Normal, 11, nil},
		{"QPSK9/10", Short, 0, ErrUnsupported},
		{"8PSK1/2", Short, 0, ErrUnknownModcod},
		{"16APSK2/3", Short, 0, ErrUnknownModcod},
		{"QPSK7/8", Short, 0, ErrUnknownModcod},
		{"", Short, 0, ErrUnknownModcod},
	}
	for _, tt := range tests {
		p, err := Parse(tt.in, tt.frame, true)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if !IsConfigError(err) {
				t.Errorf("Parse(%q) error %T is not a ConfigError", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		if p.ID != tt.id {
			t.Errorf("Parse(%q).ID = %d, want %d", tt.in, p.ID, tt.id)
		}
	}
}

func TestLookupRoundTrip(t *testing.T) {
	for _, frame := range []FrameSize{Normal, Short} {
		for _, p := range All(frame, false) {
			got, err := Lookup(p.ID, frame, false)
			if err != nil {
				t.Fatalf("Lookup(%d): %v", p.ID, err)
			}
			if got != p {
				t.Errorf("Lookup(%d) = %v, want %v", p.ID, got, p)
			}
		}
	}
	if _, err := Lookup(28, Short, false); !errors.Is(err, ErrUnknownModcod) {
		t.Errorf("Lookup(28) error = %v", err)
	}
}

func TestGeometry(t *testing.T) {
	for _, frame := range []FrameSize{Normal, Short} {
		for _, p := range All(frame, true) {
			if p.DataSymbols()%90 != 0 {
				t.Errorf("%s: %d data symbols is not a whole number of slots", p, p.DataSymbols())
			}
			if p.Nbch() <= p.Kbch() || p.Nbch() >= p.FECFrameBits() {
				t.Errorf("%s: bad BCH geometry Kbch=%d Nbch=%d", p, p.Kbch(), p.Nbch())
			}
			m := 16
			if frame == Short {
				m = 14
			}
			if p.Nbch()-p.Kbch() != m*p.BCHErrors() {
				t.Errorf("%s: parity %d != %d*t", p, p.Nbch()-p.Kbch(), m)
			}
		}
	}
}

func TestPLSCode(t *testing.T) {
	p, _ := Parse("QPSK1/2", Short, true)
	if got := p.PLSCode(); got != 4<<2|3 {
		t.Errorf("PLSCode() = %#x", got)
	}
}
