package datalink

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/iottrends-tech/dvb-s2-SDR/baseband"
	"github.com/iottrends-tech/dvb-s2-SDR/bch"
	"github.com/iottrends-tech/dvb-s2-SDR/demod"
	"github.com/iottrends-tech/dvb-s2-SDR/ldpc"
	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
	"github.com/iottrends-tech/dvb-s2-SDR/modulator"
	"github.com/iottrends-tech/dvb-s2-SDR/shaping"
)

type fixture struct {
	mod *modulator.Modulator
	dec *Decoder
	rng *rand.Rand
}

func newFixture(t *testing.T, name string, st baseband.StreamType, workers int) *fixture {
	t.Helper()
	p, err := modcod.Parse(name, modcod.Short, true)
	if err != nil {
		t.Fatal(err)
	}
	m, err := modulator.New(modulator.Config{
		Profile: p,
		Stream:  st,
		Shape:   shaping.Params{SamplesPerSymbol: 2, Rolloff: 0.35, Span: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	d, err := New(p, st, workers, 50)
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{mod: m, dec: d, rng: rand.New(rand.NewPCG(21, 22))}
}

// frame encodes chunk and returns it as the demodulator would, with
// complex noise of variance nv added to the data symbols.
func (fx *fixture) frame(t *testing.T, seq uint64, chunk []byte, nv float64) demod.Frame {
	t.Helper()
	plf, err := fx.mod.EncodeFrame(chunk)
	if err != nil {
		t.Fatal(err)
	}
	data := make([]complex64, fx.mod.Profile.DataSymbols())
	if err := fx.mod.Layout.Deframe(data, plf); err != nil {
		t.Fatal(err)
	}
	sigma := math.Sqrt(nv / 2)
	for i := range data {
		data[i] += complex(float32(fx.rng.NormFloat64()*sigma), float32(fx.rng.NormFloat64()*sigma))
	}
	return demod.Frame{Seq: seq, Symbols: data, NoiseVar: max(nv, 1e-3), Resync: seq == 0}
}

func chunkOf(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i*13)
	}
	return b
}

func TestDecodeNoisyFrames(t *testing.T) {
	tests := []struct {
		name string
		nv   float64
	}{
		{"QPSK1/2", 0.3},
		{"QPSK3/4", 0.1},
		{"8PSK2/3", 0.08},
		{"8PSK5/6", 0.05},
	}
	for _, tt := range tests {
		fx := newFixture(t, tt.name, baseband.GenericContinuous, 1)
		chunk := chunkOf(fx.mod.ChunkSize(), 5)
		got, err := fx.dec.Decode(fx.frame(t, 0, chunk, tt.nv))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if !bytes.Equal(got, chunk) {
			t.Errorf("%s: payload mismatch", tt.name)
		}
		if s := fx.dec.Stats(); s.FramesOK != 1 || s.AvgIterations == 0 || !s.FrameLock {
			t.Errorf("%s: stats %+v", tt.name, s)
		}
	}
}

func TestAllModcodsRoundTrip(t *testing.T) {
	supported := 0
	for _, frame := range []modcod.FrameSize{modcod.Short, modcod.Normal} {
		for _, pilots := range []bool{false, true} {
			for _, p := range modcod.All(frame, pilots) {
				if !ldpc.Supported(p) {
					continue
				}
				supported++
				m, err := modulator.New(modulator.Config{
					Profile: p,
					Stream:  baseband.GenericContinuous,
					Shape:   shaping.Params{SamplesPerSymbol: 2, Rolloff: 0.35, Span: 10},
				})
				if err != nil {
					t.Fatalf("%s: %v", p, err)
				}
				d, err := New(p, baseband.GenericContinuous, 1, 50)
				if err != nil {
					t.Fatalf("%s: %v", p, err)
				}
				chunk := chunkOf(m.ChunkSize(), 9)
				plf, err := m.EncodeFrame(chunk)
				if err != nil {
					t.Fatalf("%s: %v", p, err)
				}
				data := make([]complex64, p.DataSymbols())
				if err := m.Layout.Deframe(data, plf); err != nil {
					t.Fatalf("%s: %v", p, err)
				}
				got, err := d.Decode(demod.Frame{Symbols: data, NoiseVar: 1e-2, Resync: true})
				if err != nil {
					t.Fatalf("%s: %v", p, err)
				}
				if !bytes.Equal(got, chunk) {
					t.Errorf("%s: payload mismatch", p)
				}
			}
		}
	}
	// QPSK 1/2 2/3 3/4 5/6 and 8PSK 2/3 3/4 5/6, per frame size and pilot setting.
	if supported != 28 {
		t.Errorf("%d supported profiles, want 28", supported)
	}
}

func TestDecodeGarbageFrame(t *testing.T) {
	fx := newFixture(t, "QPSK1/2", baseband.GenericContinuous, 1)
	f := fx.frame(t, 0, chunkOf(50, 1), 0)
	for i := range f.Symbols {
		f.Symbols[i] = complex(float32(fx.rng.NormFloat64()), float32(fx.rng.NormFloat64()))
	}
	f.NoiseVar = 1
	_, err := fx.dec.Decode(f)
	if !errors.Is(err, bch.ErrUncorrectable) && !errors.Is(err, ErrBadHeader) {
		t.Fatalf("err = %v", err)
	}
	s := fx.dec.Stats()
	if s.Uncorrectable+s.BadHeaders != 1 || s.LDPCFailures != 1 || s.FramesOK != 0 || s.FrameLock {
		t.Errorf("stats %+v", s)
	}
}

func TestStartDeliversInOrder(t *testing.T) {
	fx := newFixture(t, "QPSK1/2", baseband.TransportStream, 4)
	var packets [][]byte
	var stream []byte
	for i := 0; i < 3*7; i++ {
		pkt := chunkOf(baseband.TSPacketSize, byte(i))
		pkt[0] = baseband.TSSyncByte
		packets = append(packets, pkt)
		stream = append(stream, pkt...)
	}
	per := fx.mod.ChunkSize()

	in := make(chan demod.Frame)
	out := make(chan []byte, 1)
	done := make(chan error, 1)
	go func() { done <- fx.dec.Start(context.Background(), in, out) }()

	var frames []demod.Frame
	for off := 0; off < len(stream); off += per {
		frames = append(frames, fx.frame(t, uint64(len(frames)), stream[off:min(off+per, len(stream))], 0.2))
	}
	// Frame 2 arrives as garbage. It is dropped without stalling the rest,
	// and so is every packet with bytes in it.
	const lost = 2
	for i := range frames[lost].Symbols {
		frames[lost].Symbols[i] = 0
	}
	var want []byte
	for i, pkt := range packets {
		first, last := i*baseband.TSPacketSize/per, ((i+1)*baseband.TSPacketSize-1)/per
		if first > lost || last < lost {
			want = append(want, pkt...)
		}
	}

	go func() {
		for _, f := range frames {
			in <- f
		}
		close(in)
	}()
	var got []byte
	for chunk := range out {
		got = append(got, chunk...)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("recovered %d bytes, want %d in order", len(got), len(want))
	}
	s := fx.dec.Stats()
	if s.CRCErrors != 0 || s.FramesOK != uint64(len(frames)-1) {
		t.Errorf("stats %+v", s)
	}
}

func TestPacketsCrossFrames(t *testing.T) {
	fx := newFixture(t, "QPSK3/4", baseband.TransportStream, 1)
	var stream []byte
	for i := 0; i < 30; i++ {
		pkt := chunkOf(baseband.TSPacketSize, byte(i*5))
		pkt[0] = baseband.TSSyncByte
		stream = append(stream, pkt...)
	}
	per := fx.mod.ChunkSize()
	if per%baseband.TSPacketSize == 0 {
		t.Fatalf("data field of %d bytes holds whole packets", per)
	}
	var got []byte
	seq := uint64(0)
	for off := 0; off < len(stream); off += per {
		data, err := fx.dec.Decode(fx.frame(t, seq, stream[off:min(off+per, len(stream))], 0.05))
		if err != nil {
			t.Fatalf("frame %d: %v", seq, err)
		}
		if len(data)%baseband.TSPacketSize != 0 {
			t.Fatalf("frame %d: %d bytes is not whole packets", seq, len(data))
		}
		got = append(got, data...)
		seq++
	}
	if !bytes.Equal(got, stream) {
		t.Fatalf("recovered %d bytes, want %d", len(got), len(stream))
	}
	if s := fx.dec.Stats(); s.CRCErrors != 0 || s.FramesOK != seq {
		t.Errorf("stats %+v", s)
	}
}

func TestNewRejectsUnsupportedRate(t *testing.T) {
	p, _ := modcod.Parse("QPSK1/4", modcod.Normal, false)
	if _, err := New(p, baseband.TransportStream, 1, 50); !modcod.IsConfigError(err) {
		t.Errorf("err = %v, want ConfigError", err)
	}
}
