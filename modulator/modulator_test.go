package modulator

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/iottrends-tech/dvb-s2-SDR/baseband"
	"github.com/iottrends-tech/dvb-s2-SDR/constellation"
	"github.com/iottrends-tech/dvb-s2-SDR/interleave"
	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
	"github.com/iottrends-tech/dvb-s2-SDR/plframe"
	"github.com/iottrends-tech/dvb-s2-SDR/shaping"
)

func newModulator(t *testing.T, name string, st baseband.StreamType) *Modulator {
	t.Helper()
	p, err := modcod.Parse(name, modcod.Short, true)
	if err != nil {
		t.Fatal(err)
	}
	m, err := New(Config{
		Profile: p,
		Stream:  st,
		Shape:   shaping.Params{SamplesPerSymbol: 2, Rolloff: 0.35, Span: 10},
		Workers: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + 3)
	}
	return b
}

// hardDecode undoes the chain on noiseless symbols and checks every code
// layer on the way.
func hardDecode(t *testing.T, m *Modulator, frame []complex64, st baseband.StreamType) []byte {
	t.Helper()
	p := m.Profile
	data := make([]complex64, p.DataSymbols())
	if err := m.Layout.Deframe(data, frame); err != nil {
		t.Fatal(err)
	}
	bits := make([]uint8, p.FECFrameBits())
	constellation.New(p.Modulation).HardDecision(bits, data)
	cw := make([]uint8, len(bits))
	interleave.Deinterleave(interleave.New(p), cw, bits)
	if !m.ldpc.Check(cw) {
		t.Fatal("codeword fails LDPC parity checks")
	}
	if n, err := m.bch.Decode(cw[:p.Nbch()]); err != nil || n != 0 {
		t.Fatalf("BCH decode: %d flips, %v", n, err)
	}
	out, err := baseband.NewDeframer(p, st).Deframe(cw[:p.Kbch()])
	if err != nil {
		t.Fatal(err)
	}
	return append([]byte(nil), out...)
}

func TestEncodeFrame(t *testing.T) {
	for _, name := range []string{"QPSK1/2", "QPSK3/4", "8PSK2/3", "8PSK5/6"} {
		m := newModulator(t, name, baseband.GenericContinuous)
		chunk := payload(100)
		frame, err := m.EncodeFrame(chunk)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(frame) != m.Layout.Symbols {
			t.Fatalf("%s: %d symbols, want %d", name, len(frame), m.Layout.Symbols)
		}
		if h := plframe.Header(m.Profile); !equal(frame[:plframe.HeaderSymbols], h[:]) {
			t.Errorf("%s: frame does not start with its PLHEADER", name)
		}
		if got := hardDecode(t, m, frame, baseband.GenericContinuous); !bytes.Equal(got, chunk) {
			t.Errorf("%s: payload mismatch", name)
		}
	}
}

func equal(a, b []complex64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return len(a) == len(b)
}

func TestSampleCount(t *testing.T) {
	m := newModulator(t, "QPSK1/2", baseband.GenericContinuous)
	frame, err := m.EncodeFrame(payload(100))
	if err != nil {
		t.Fatal(err)
	}
	if n := len(m.Modulate(frame)); n != 8370*2 || n != m.SamplesPerFrame() {
		t.Errorf("%d samples, want %d", n, 8370*2)
	}
}

func TestEncodeFrameRejects(t *testing.T) {
	m := newModulator(t, "QPSK1/2", baseband.TransportStream)
	if _, err := m.EncodeFrame(make([]byte, m.ChunkSize()+188)); !errors.Is(err, baseband.ErrChunkTooLarge) {
		t.Errorf("oversized chunk: err = %v", err)
	}
	if _, err := m.EncodeFrame(make([]byte, 100)); !errors.Is(err, baseband.ErrMisaligned) {
		t.Errorf("partial packet: err = %v", err)
	}
	p, _ := modcod.Parse("QPSK1/4", modcod.Normal, true)
	if _, err := New(Config{Profile: p, Shape: shaping.Params{SamplesPerSymbol: 2, Rolloff: 0.35, Span: 10}}); !modcod.IsConfigError(err) {
		t.Errorf("rate without LDPC table: err = %v, want ConfigError", err)
	}
}

func TestStartKeepsFrameOrder(t *testing.T) {
	m := newModulator(t, "QPSK1/2", baseband.GenericContinuous)
	ref := newModulator(t, "QPSK1/2", baseband.GenericContinuous)

	in := make(chan []byte)
	out := make(chan []complex64, 2)
	done := make(chan error, 1)
	go func() { done <- m.Start(context.Background(), in, out) }()

	chunks := [][]byte{payload(10), payload(200), make([]byte, m.ChunkSize()+1), payload(0), payload(m.ChunkSize())}
	go func() {
		for _, c := range chunks {
			in <- c
		}
		close(in)
	}()

	var blocks [][]complex64
	for b := range out {
		blocks = append(blocks, b)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	// Four frames plus the filter tail.
	if len(blocks) != 5 {
		t.Fatalf("%d blocks, want 5", len(blocks))
	}
	for i, c := range [][]byte{chunks[0], chunks[1], chunks[3], chunks[4]} {
		frame, err := ref.EncodeFrame(c)
		if err != nil {
			t.Fatal(err)
		}
		if !equal(blocks[i], ref.Modulate(frame)) {
			t.Errorf("block %d differs from sequential encoding", i)
		}
	}
	if tail := len(blocks[4]); tail != 10*2 {
		t.Errorf("tail has %d samples", tail)
	}
	if m.ChunksRejected.Load() != 1 || m.FramesEncoded.Load() != 4 {
		t.Errorf("rejected %d, encoded %d", m.ChunksRejected.Load(), m.FramesEncoded.Load())
	}
}
