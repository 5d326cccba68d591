// Package pipeline wires the transmit and receive chains together: byte
// stream in, samples out, and back.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/iottrends-tech/dvb-s2-SDR/baseband"
	"github.com/iottrends-tech/dvb-s2-SDR/datalink"
	"github.com/iottrends-tech/dvb-s2-SDR/demod"
	"github.com/iottrends-tech/dvb-s2-SDR/modulator"
	"golang.org/x/sync/errgroup"
)

// MaxDatagram keeps UDP writes to seven transport packets.
const MaxDatagram = 7 * baseband.TSPacketSize

// SampleSource produces numbered sample blocks and closes out when done.
type SampleSource interface {
	Start(ctx context.Context, out chan<- demod.Block) error
}

// SampleSink consumes sample blocks until in is closed.
type SampleSink interface {
	Start(ctx context.Context, in <-chan []complex64) error
}

func NewSession() string {
	return uuid.New().String()
}

type Tx struct {
	Session   string
	Modulator *modulator.Modulator
	Input     io.Reader
	Sink      SampleSink
	Buffer    int
}

// RunTx modulates Input until it is exhausted or ctx is done.
func RunTx(ctx context.Context, tx Tx) error {
	logger := log.With("session", tx.Session)
	m := tx.Modulator
	logger.Infof("[tx] Starting %s, %d byte chunks, %d samples per frame", m.Profile, m.ChunkSize(), m.SamplesPerFrame())

	g, ctx := errgroup.WithContext(ctx)
	chunks := make(chan []byte, tx.Buffer)
	samples := make(chan []complex64, tx.Buffer)
	chunker := NewChunker(tx.Input, m.ChunkSize(), m.Stream == baseband.TransportStream)

	stop := closeOnDone(ctx, tx.Input)
	defer stop()
	g.Go(func() error { return chunker.Start(ctx, chunks) })
	g.Go(func() error { return m.Start(ctx, chunks, samples) })
	g.Go(func() error { return tx.Sink.Start(ctx, samples) })
	err := g.Wait()
	logger.Infof("[tx] Done: %d frames, %d chunks rejected, %d bytes dropped resyncing", m.FramesEncoded.Load(), m.ChunksRejected.Load(), chunker.Dropped)
	return err
}

type Rx struct {
	Session string
	Source  SampleSource
	Demod   *demod.Demodulator
	Decoder *datalink.Decoder
	Output  io.Writer
	// MaxWrite splits output chunks into writes of at most this many bytes.
	MaxWrite int
	Buffer   int
	// OnEvent is called for every synchronizer event.
	OnEvent func(demod.Event)
}

// RunRx demodulates and decodes Source until it is exhausted or ctx is
// done.
func RunRx(ctx context.Context, rx Rx) error {
	logger := log.With("session", rx.Session)
	logger.Infof("[rx] Starting %s", rx.Decoder.Profile)
	rx.Demod.Sync.Reset()

	g, gctx := errgroup.WithContext(ctx)
	data := make(chan []byte, rx.Buffer)

	g.Go(func() error { return rx.Source.Start(gctx, rx.Demod.SampleInput) })
	g.Go(func() error { return rx.Demod.Start(gctx) })
	g.Go(func() error { return rx.Decoder.Start(gctx, rx.Demod.FrameOutput, data) })
	g.Go(func() error { return WriteChunks(gctx, rx.Output, data, rx.MaxWrite) })

	handle := func(ev demod.Event) {
		logEvent(logger, ev)
		if rx.OnEvent != nil {
			rx.OnEvent(ev)
		}
	}
	stop := make(chan struct{})
	events := make(chan struct{})
	go func() {
		defer close(events)
		for {
			select {
			case ev := <-rx.Demod.Events:
				handle(ev)
			case <-stop:
				// Drain what the last frames published.
				for {
					select {
					case ev := <-rx.Demod.Events:
						handle(ev)
					default:
						return
					}
				}
			}
		}
	}()

	err := g.Wait()
	close(stop)
	<-events
	s := rx.Decoder.Stats()
	logger.Infof("[rx] Done: %d frames, %d ok, %d uncorrectable, %d bytes out", s.TotalFramesProcessed, s.FramesOK, s.Uncorrectable+s.BadHeaders, s.BytesOut)
	return err
}

func logEvent(logger *log.Logger, ev demod.Event) {
	switch ev.Kind {
	case demod.EventLocked:
		logger.Infof("[rx] Frame lock at sample %d", ev.Sample)
	case demod.EventSyncLost:
		logger.Warnf("[rx] Lost frame lock at sample %d", ev.Sample)
	case demod.EventOverrun:
		logger.Warnf("[rx] Sample overrun at sample %d, reacquiring", ev.Sample)
	}
}

// WriteChunks writes chunks from in to w until in is closed, splitting each
// into writes of at most maxWrite bytes when maxWrite > 0.
func WriteChunks(ctx context.Context, w io.Writer, in <-chan []byte, maxWrite int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-in:
			if !ok {
				return nil
			}
			for len(chunk) > 0 {
				n := len(chunk)
				if maxWrite > 0 {
					n = min(n, maxWrite)
				}
				if _, err := w.Write(chunk[:n]); err != nil {
					return fmt.Errorf("pipeline: writing output: %w", err)
				}
				chunk = chunk[n:]
			}
		}
	}
}

// closeOnDone closes r when ctx is done so a blocked Read returns. The
// returned func stops the watch.
func closeOnDone(ctx context.Context, r io.Reader) func() {
	c, ok := r.(io.Closer)
	if !ok {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}
