// Package modulator turns byte chunks into DVB-S2 baseband samples: mode
// adaptation, BCH and LDPC encoding, bit interleaving, mapping, PL framing
// and RRC pulse shaping.
package modulator

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/iottrends-tech/dvb-s2-SDR/baseband"
	"github.com/iottrends-tech/dvb-s2-SDR/bch"
	"github.com/iottrends-tech/dvb-s2-SDR/constellation"
	"github.com/iottrends-tech/dvb-s2-SDR/interleave"
	"github.com/iottrends-tech/dvb-s2-SDR/ldpc"
	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
	"github.com/iottrends-tech/dvb-s2-SDR/plframe"
	"github.com/iottrends-tech/dvb-s2-SDR/pool"
	"github.com/iottrends-tech/dvb-s2-SDR/shaping"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Profile  modcod.Profile
	Stream   baseband.StreamType
	GoldCode int
	Shape    shaping.Params
	Workers  int
}

type Modulator struct {
	Profile modcod.Profile
	Stream  baseband.StreamType
	Layout  *plframe.Layout
	Shape   shaping.Params

	framer  *baseband.Framer
	bch     *bch.Code
	ldpc    *ldpc.Code
	il      *interleave.Interleaver
	constel *constellation.Constellation
	shaper  *shaping.Interpolator
	workers int

	FramesEncoded  atomic.Uint64
	ChunksRejected atomic.Uint64
}

func New(conf Config) (*Modulator, error) {
	p := conf.Profile
	framer, err := baseband.NewFramer(p, conf.Stream, conf.Shape.Rolloff)
	if err != nil {
		return nil, err
	}
	bc, err := bch.ForProfile(p)
	if err != nil {
		return nil, err
	}
	lc, err := ldpc.NewCode(p)
	if err != nil {
		return nil, err
	}
	layout, err := plframe.NewLayout(p, conf.GoldCode)
	if err != nil {
		return nil, err
	}
	shaper, err := shaping.NewInterpolator(conf.Shape)
	if err != nil {
		return nil, err
	}
	m := &Modulator{
		Profile: p,
		Stream:  conf.Stream,
		Layout:  layout,
		Shape:   conf.Shape,
		framer:  framer,
		bch:     bc,
		ldpc:    lc,
		il:      interleave.New(p),
		constel: constellation.New(p.Modulation),
		shaper:  shaper,
		workers: max(conf.Workers, 1),
	}
	log.Debugf("[modulator] %s, %d byte chunks, %d symbols per frame, %d workers", p, m.ChunkSize(), layout.Symbols, m.workers)
	return m, nil
}

// ChunkSize is the largest chunk one frame carries.
func (m *Modulator) ChunkSize() int {
	return m.framer.ChunkSize()
}

// SamplesPerFrame is the number of output samples per PL frame.
func (m *Modulator) SamplesPerFrame() int {
	return m.Layout.Symbols * m.Shape.SamplesPerSymbol
}

// EncodeFrame returns the PL frame symbols carrying chunk. Frames must be
// encoded in stream order since transport packet CRCs chain across them.
func (m *Modulator) EncodeFrame(chunk []byte) ([]complex64, error) {
	bb, err := m.bbframe(chunk)
	if err != nil {
		return nil, err
	}
	return m.encodeSymbols(bb)
}

func (m *Modulator) bbframe(chunk []byte) ([]uint8, error) {
	bb := make([]uint8, m.Profile.Kbch())
	if err := m.framer.Frame(bb, chunk); err != nil {
		return nil, err
	}
	return bb, nil
}

// encodeSymbols runs the stateless part of the chain and is safe for
// concurrent use.
func (m *Modulator) encodeSymbols(bb []uint8) ([]complex64, error) {
	p := m.Profile
	cw := make([]uint8, p.FECFrameBits())
	if err := m.bch.Encode(cw, bb); err != nil {
		return nil, fmt.Errorf("modulator: bch: %w", err)
	}
	if err := m.ldpc.Encode(cw, cw[:p.Nbch()]); err != nil {
		return nil, fmt.Errorf("modulator: ldpc: %w", err)
	}
	bits := make([]uint8, len(cw))
	interleave.Interleave(m.il, bits, cw)
	data := make([]complex64, p.DataSymbols())
	m.constel.Map(data, bits)
	frame := make([]complex64, m.Layout.Symbols)
	if err := m.Layout.Build(frame, data); err != nil {
		return nil, err
	}
	m.FramesEncoded.Add(1)
	return frame, nil
}

// Modulate shapes PL frame symbols into samples, exactly sps per symbol.
// Filter state carries over between calls.
func (m *Modulator) Modulate(symbols []complex64) []complex64 {
	return m.shaper.Process(symbols)
}

// Flush drains the pulse shaping filter.
func (m *Modulator) Flush() []complex64 {
	return m.shaper.Flush()
}

// Start encodes chunks from in and writes sample blocks, one per frame, to
// out until in is closed or ctx is done. Chunks that do not fit a frame are
// logged and dropped. out is closed on return.
func (m *Modulator) Start(ctx context.Context, in <-chan []byte, out chan<- []complex64) error {
	defer close(out)
	g, ctx := errgroup.WithContext(ctx)
	bbframes := make(chan []uint8, m.workers)
	frames := make(chan []complex64, m.workers)

	g.Go(func() error {
		defer close(bbframes)
		for {
			var chunk []byte
			select {
			case c, ok := <-in:
				if !ok {
					return nil
				}
				chunk = c
			case <-ctx.Done():
				return ctx.Err()
			}
			bb, err := m.bbframe(chunk)
			if err != nil {
				m.ChunksRejected.Add(1)
				log.Warnf("[modulator] Dropping chunk of %d bytes: %v", len(chunk), err)
				continue
			}
			select {
			case bbframes <- bb:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
	g.Go(func() error {
		defer close(frames)
		return pool.Ordered(ctx, m.workers, bbframes, frames, func(_ int, bb []uint8) ([]complex64, error) {
			return m.encodeSymbols(bb)
		})
	})
	g.Go(func() error {
		for syms := range frames {
			select {
			case out <- m.Modulate(syms):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case out <- m.Flush():
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})
	return g.Wait()
}
