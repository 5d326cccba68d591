// Package datalink recovers the byte stream from demodulated PL frames:
// soft demapping, deinterleaving, LDPC and BCH decoding, and BBFRAME
// deframing.
package datalink

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/iottrends-tech/dvb-s2-SDR/baseband"
	"github.com/iottrends-tech/dvb-s2-SDR/bch"
	"github.com/iottrends-tech/dvb-s2-SDR/constellation"
	"github.com/iottrends-tech/dvb-s2-SDR/demod"
	"github.com/iottrends-tech/dvb-s2-SDR/interleave"
	"github.com/iottrends-tech/dvb-s2-SDR/ldpc"
	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
	"github.com/iottrends-tech/dvb-s2-SDR/pool"
	"golang.org/x/sync/errgroup"
)

// ErrBadHeader wraps BBHEADER failures of frames that passed FEC.
var ErrBadHeader = errors.New("datalink: BBFRAME rejected")

type Stats struct {
	TotalFramesProcessed uint64
	FramesOK             uint64
	Uncorrectable        uint64 // BCH gave up
	BadHeaders           uint64 // BBHEADER CRC or field check failed
	LDPCFailures         uint64 // LDPC did not converge
	LDPCRescued          uint64 // LDPC did not converge, BCH fixed the rest
	BCHCorrections       uint64
	CRCErrors            uint64 // transport packets with a bad CRC-8
	BytesOut             uint64
	AvgIterations        float32
	SigQuality           float32 // percent of the LDPC iteration budget left unused
	FrameLock            bool
}

// fecResult is a frame after FEC, before the sequential deframing step.
type fecResult struct {
	seq        uint64
	bits       []uint8 // Kbch bits, nil when uncorrectable
	resync     bool
	iterations int
	converged  bool
	corrected  int
	err        error
}

type worker struct {
	ldpc *ldpc.Decoder
	llr  []float32
	cw   []float32
}

type Decoder struct {
	Profile modcod.Profile
	Stream  baseband.StreamType

	bch      *bch.Code
	code     *ldpc.Code
	il       *interleave.Interleaver
	constel  *constellation.Constellation
	deframer *baseband.Deframer
	workers  []*worker
	// Sequence number expected next; packet fragments only carry over
	// between consecutive frames.
	nextSeq uint64

	statsMutex sync.RWMutex
	stats      Stats
}

func New(p modcod.Profile, st baseband.StreamType, workers, maxIterations int) (*Decoder, error) {
	bc, err := bch.ForProfile(p)
	if err != nil {
		return nil, err
	}
	code, err := ldpc.NewCode(p)
	if err != nil {
		return nil, err
	}
	d := &Decoder{
		Profile:  p,
		Stream:   st,
		bch:      bc,
		code:     code,
		il:       interleave.New(p),
		constel:  constellation.New(p.Modulation),
		deframer: baseband.NewDeframer(p, st),
	}
	for range max(workers, 1) {
		d.workers = append(d.workers, &worker{
			ldpc: ldpc.NewDecoder(code, maxIterations),
			llr:  make([]float32, p.FECFrameBits()),
			cw:   make([]float32, p.FECFrameBits()),
		})
	}
	log.Debugf("[datalink] %s, %s stream, %d workers, %d LDPC iterations", p, st, len(d.workers), d.workers[0].ldpc.MaxIterations)
	return d, nil
}

// decodeFEC runs on worker w. It touches only that worker's buffers and
// the shared read-only code tables.
func (d *Decoder) decodeFEC(w int, f demod.Frame) (fecResult, error) {
	ws := d.workers[w]
	r := fecResult{seq: f.Seq, resync: f.Resync}
	if len(f.Symbols) != d.Profile.DataSymbols() {
		return fecResult{}, fmt.Errorf("datalink: frame %d has %d symbols, want %d", f.Seq, len(f.Symbols), d.Profile.DataSymbols())
	}
	d.constel.Demap(ws.llr, f.Symbols, float32(f.NoiseVar))
	interleave.Deinterleave(d.il, ws.cw, ws.llr)

	res := ws.ldpc.Decode(ws.cw)
	r.iterations, r.converged = res.Iterations, res.Converged
	bits := append([]uint8(nil), res.Bits[:d.Profile.Nbch()]...)
	n, err := d.bch.Decode(bits)
	if err != nil {
		r.err = err
		return r, nil
	}
	r.corrected = n
	r.bits = bits[:d.Profile.Kbch()]
	return r, nil
}

// Decode runs the whole chain on one frame. It must not be called while
// Start is running.
func (d *Decoder) Decode(f demod.Frame) ([]byte, error) {
	r, err := d.decodeFEC(0, f)
	if err != nil {
		return nil, err
	}
	return d.deframe(r)
}

func (d *Decoder) deframe(r fecResult) ([]byte, error) {
	if r.resync || r.seq != d.nextSeq {
		d.deframer.Reset()
	}
	d.nextSeq = r.seq + 1
	d.statsMutex.Lock()
	defer d.statsMutex.Unlock()
	s := &d.stats
	s.TotalFramesProcessed++
	n := float32(s.TotalFramesProcessed)
	s.AvgIterations += (float32(r.iterations) - s.AvgIterations) / n
	if budget := float32(d.workers[0].ldpc.MaxIterations); budget > 0 {
		s.SigQuality = 100 * max(0, budget-s.AvgIterations) / budget
	}
	if !r.converged {
		s.LDPCFailures++
	}
	if r.err != nil {
		s.Uncorrectable++
		s.FrameLock = false
		d.deframer.Reset()
		return nil, r.err
	}
	if !r.converged {
		s.LDPCRescued++
	}
	s.BCHCorrections += uint64(r.corrected)

	crcBefore := d.deframer.CRCErrors
	data, err := d.deframer.Deframe(r.bits)
	s.CRCErrors += uint64(d.deframer.CRCErrors - crcBefore)
	if err != nil {
		s.BadHeaders++
		s.FrameLock = false
		d.deframer.Reset()
		return nil, fmt.Errorf("%w: %w", ErrBadHeader, err)
	}
	s.FramesOK++
	s.FrameLock = true
	s.BytesOut += uint64(len(data))
	return append([]byte(nil), data...), nil
}

// Start decodes frames from in on the worker pool and writes the recovered
// chunks to out in frame order until in is closed or ctx is done. Frames
// that fail to decode are counted and skipped. out is closed on return.
func (d *Decoder) Start(ctx context.Context, in <-chan demod.Frame, out chan<- []byte) error {
	defer close(out)
	g, ctx := errgroup.WithContext(ctx)
	results := make(chan fecResult, len(d.workers))

	g.Go(func() error {
		defer close(results)
		return pool.Ordered(ctx, len(d.workers), in, results, d.decodeFEC)
	})
	g.Go(func() error {
		for r := range results {
			data, err := d.deframe(r)
			if err != nil {
				log.Debugf("[datalink] Dropping frame %d: %v", r.seq, err)
				continue
			}
			if len(data) == 0 {
				continue
			}
			select {
			case out <- data:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	return g.Wait()
}

func (d *Decoder) Stats() Stats {
	d.statsMutex.RLock()
	defer d.statsMutex.RUnlock()
	return d.stats
}
