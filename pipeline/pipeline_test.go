package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/iottrends-tech/dvb-s2-SDR/baseband"
	"github.com/iottrends-tech/dvb-s2-SDR/config"
	"github.com/iottrends-tech/dvb-s2-SDR/datalink"
	"github.com/iottrends-tech/dvb-s2-SDR/demod"
	"github.com/iottrends-tech/dvb-s2-SDR/iqfile"
	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
	"github.com/iottrends-tech/dvb-s2-SDR/modulator"
	"github.com/iottrends-tech/dvb-s2-SDR/plframe"
	"github.com/iottrends-tech/dvb-s2-SDR/shaping"
)

var shape = shaping.Params{SamplesPerSymbol: 2, Rolloff: 0.35, Span: 10}

// transmit runs the transmit chain into a cf32 buffer.
func transmit(t *testing.T, p modcod.Profile, st baseband.StreamType, input []byte) (*modulator.Modulator, []byte) {
	t.Helper()
	m, err := modulator.New(modulator.Config{Profile: p, Stream: st, Shape: shape, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	var iq bytes.Buffer
	err = RunTx(context.Background(), Tx{
		Session:   NewSession(),
		Modulator: m,
		Input:     bytes.NewReader(input),
		Sink:      iqfile.NewSink(&iq),
		Buffer:    4,
	})
	if err != nil {
		t.Fatal(err)
	}
	return m, iq.Bytes()
}

// receive runs the receive chain over a cf32 buffer.
func receive(t *testing.T, p modcod.Profile, st baseband.StreamType, iq []byte) ([]byte, *datalink.Decoder, []demod.Event) {
	t.Helper()
	conf := config.Default().Receiver
	conf.DoFFT = false
	layout, err := plframe.NewLayout(p, 0)
	if err != nil {
		t.Fatal(err)
	}
	d, err := demod.New(layout, shape, conf, 4)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := datalink.New(p, st, 2, conf.LDPCIterations)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	var events []demod.Event
	err = RunRx(context.Background(), Rx{
		Session:  NewSession(),
		Source:   iqfile.NewSource(bytes.NewReader(iq), 4096),
		Demod:    d,
		Decoder:  dec,
		Output:   &out,
		MaxWrite: MaxDatagram,
		Buffer:   4,
		OnEvent:  func(ev demod.Event) { events = append(events, ev) },
	})
	if err != nil {
		t.Fatal(err)
	}
	return out.Bytes(), dec, events
}

func TestLoopbackGeneric(t *testing.T) {
	p, err := modcod.Parse("QPSK1/2", modcod.Short, true)
	if err != nil {
		t.Fatal(err)
	}
	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = byte(i*31 + 7)
	}
	m, iq := transmit(t, p, baseband.GenericContinuous, payload)
	if m.SamplesPerFrame() != 8370*2 {
		t.Fatalf("%d samples per frame, want %d", m.SamplesPerFrame(), 8370*2)
	}
	if n := len(iq) / 8; n != m.SamplesPerFrame()+shape.Span*shape.SamplesPerSymbol {
		t.Fatalf("transmitted %d samples", n)
	}

	got, dec, events := receive(t, p, baseband.GenericContinuous, iq)
	if !bytes.Equal(got, payload) {
		t.Fatalf("recovered %d bytes, want the %d byte payload", len(got), len(payload))
	}
	if s := dec.Stats(); s.FramesOK != 1 || s.Uncorrectable != 0 {
		t.Errorf("decoder stats %+v", s)
	}
	if len(events) == 0 || events[0].Kind != demod.EventLocked {
		t.Errorf("events %+v, want a lock first", events)
	}
}

func TestLoopbackTransportStream(t *testing.T) {
	p, err := modcod.Parse("8PSK2/3", modcod.Short, true)
	if err != nil {
		t.Fatal(err)
	}
	var packets []byte
	for i := range 10 {
		pkt := make([]byte, baseband.TSPacketSize)
		for j := range pkt {
			pkt[j] = byte(i + j*3)
		}
		pkt[0] = baseband.TSSyncByte
		packets = append(packets, pkt...)
	}
	// Leading junk is dropped by the chunker.
	input := append([]byte{1, 2, 3}, packets...)
	m, iq := transmit(t, p, baseband.TransportStream, input)
	if m.FramesEncoded.Load() != 2 {
		t.Fatalf("%d frames encoded, want 2", m.FramesEncoded.Load())
	}

	got, dec, _ := receive(t, p, baseband.TransportStream, iq)
	if !bytes.Equal(got, packets) {
		t.Fatalf("recovered %d bytes, want %d", len(got), len(packets))
	}
	if s := dec.Stats(); s.CRCErrors != 0 || s.FramesOK != 2 {
		t.Errorf("decoder stats %+v", s)
	}
}

func TestChunkerGeneric(t *testing.T) {
	c := NewChunker(bytes.NewReader(make([]byte, 250)), 100, false)
	var sizes []int
	for {
		chunk, err := c.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		sizes = append(sizes, len(chunk))
	}
	if len(sizes) != 3 || sizes[0] != 100 || sizes[1] != 100 || sizes[2] != 50 {
		t.Errorf("chunk sizes %v", sizes)
	}
}

func TestChunkerResyncsPackets(t *testing.T) {
	pkt := func(id byte) []byte {
		b := bytes.Repeat([]byte{id}, baseband.TSPacketSize)
		b[0] = baseband.TSSyncByte
		return b
	}
	var in []byte
	in = append(in, 9, 9)
	in = append(in, pkt(1)...)
	in = append(in, pkt(2)...)
	in = append(in, 5, 5, 5, 5)
	in = append(in, pkt(3)...)
	in = append(in, pkt(4)[:100]...)

	c := NewChunker(bytes.NewReader(in), 250, true)
	out := make(chan []byte, 10)
	if err := c.Start(context.Background(), out); err != nil {
		t.Fatal(err)
	}
	var sizes []int
	var got []byte
	for chunk := range out {
		sizes = append(sizes, len(chunk))
		got = append(got, chunk...)
	}
	// Chunks cut the packet stream anywhere.
	if len(sizes) != 3 || sizes[0] != 250 || sizes[1] != 250 || sizes[2] != 64 {
		t.Errorf("chunk sizes %v", sizes)
	}
	want := append(append(pkt(1), pkt(2)...), pkt(3)...)
	if !bytes.Equal(got, want) {
		t.Error("chunks do not hold the aligned packets")
	}
	// Two leading bytes, four between packets, and the partial packet.
	if c.Dropped != 106 {
		t.Errorf("dropped %d bytes, want 106", c.Dropped)
	}
}

type recorder struct{ writes []int }

func (r *recorder) Write(b []byte) (int, error) {
	r.writes = append(r.writes, len(b))
	return len(b), nil
}

func TestWriteChunksSplits(t *testing.T) {
	in := make(chan []byte, 2)
	in <- make([]byte, 3000)
	in <- make([]byte, 10)
	close(in)
	var r recorder
	if err := WriteChunks(context.Background(), &r, in, MaxDatagram); err != nil {
		t.Fatal(err)
	}
	want := []int{1316, 1316, 368, 10}
	if len(r.writes) != len(want) {
		t.Fatalf("writes %v, want %v", r.writes, want)
	}
	for i := range want {
		if r.writes[i] != want[i] {
			t.Fatalf("writes %v, want %v", r.writes, want)
		}
	}
}
