// Package demod turns baseband IQ samples into PL frame symbols: matched
// filtering, frame acquisition, and timing and carrier tracking.
package demod

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/iottrends-tech/dvb-s2-SDR/config"
	"github.com/iottrends-tech/dvb-s2-SDR/plframe"
	"github.com/iottrends-tech/dvb-s2-SDR/shaping"
)

// Block is a chunk of IQ samples. Seq increases by one per block; a gap
// means samples were dropped upstream.
type Block struct {
	Seq     uint64
	Samples []complex64
}

type Stats struct {
	Sync       Status
	CurrentSNR float64
	PeakSNR    float64
	AvgSNR     float64
	Blocks     uint64
	Overruns   uint64
}

type Demodulator struct {
	SampleInput chan Block
	FrameOutput chan Frame
	Events      chan Event

	Layout        *plframe.Layout
	MatchedFilter *shaping.MatchedFilter
	Sync          *Synchronizer
	SNR           *SNRCalc

	CurrentFFT  []float64
	DoFFT       bool
	FFTWorking  bool
	FFTMutex    sync.RWMutex
	fftInterval time.Duration

	statsMutex sync.RWMutex
	CurrentSNR float64
	PeakSNR    float64
	AvgSNR     float64

	blocks   atomic.Uint64
	overruns atomic.Uint64
	lastSeq  uint64
	started  bool
}

func New(layout *plframe.Layout, shape shaping.Params, conf config.ReceiverConf, bufsize int) (*Demodulator, error) {
	mf, err := shaping.NewMatchedFilter(shape)
	if err != nil {
		return nil, err
	}
	s, err := NewSynchronizer(layout, shape.SamplesPerSymbol, conf)
	if err != nil {
		return nil, err
	}
	d := &Demodulator{
		SampleInput:   make(chan Block, bufsize),
		FrameOutput:   make(chan Frame, bufsize),
		Events:        make(chan Event, 16),
		Layout:        layout,
		MatchedFilter: mf,
		Sync:          s,
		SNR:           NewSNRCalc(),
		DoFFT:         conf.DoFFT,
		fftInterval:   500 * time.Millisecond,
	}
	s.OnEvent = d.publish
	log.Debugf("[demod] %s, %s, %d samples per symbol", layout.Profile, mf, shape.SamplesPerSymbol)
	return d, nil
}

// publish forwards an event without blocking; events nobody reads are
// dropped.
func (d *Demodulator) publish(ev Event) {
	select {
	case d.Events <- ev:
	default:
	}
}

// Start demodulates blocks until the input is closed or ctx is done, then
// closes FrameOutput.
func (d *Demodulator) Start(ctx context.Context) error {
	defer close(d.FrameOutput)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b, ok := <-d.SampleInput:
			if !ok {
				log.Debug("[demod] Sample input closed")
				return d.flush(ctx)
			}
			if err := d.demodBlock(ctx, b); err != nil {
				return err
			}
		}
	}
}

func (d *Demodulator) demodBlock(ctx context.Context, b Block) error {
	if d.started && b.Seq != d.lastSeq+1 {
		log.Warnf("[demod] Sample overrun: %d blocks lost", b.Seq-d.lastSeq-1)
		d.overruns.Add(1)
		d.MatchedFilter.Reset()
		d.Sync.Reset()
		d.publish(Event{Kind: EventOverrun, Sample: d.Sync.base})
	}
	d.started = true
	d.lastSeq = b.Seq
	d.blocks.Add(1)

	log.Debugf("[demod] Applying matched filter to block %d (%d samples)", b.Seq, len(b.Samples))
	out := d.MatchedFilter.Work(b.Samples)

	d.FFTMutex.Lock()
	if d.DoFFT && !d.FFTWorking {
		d.FFTWorking = true
		go d.doFFT(append([]complex64(nil), out...))
	}
	d.FFTMutex.Unlock()

	for _, f := range d.Sync.Process(out) {
		d.updateSNR(f.Symbols)
		select {
		case d.FrameOutput <- f:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (d *Demodulator) flush(ctx context.Context) error {
	tail := d.MatchedFilter.Work(make([]complex64, d.MatchedFilter.Delay()))
	frames := append(d.Sync.Process(tail), d.Sync.Flush()...)
	for _, f := range frames {
		d.updateSNR(f.Symbols)
		select {
		case d.FrameOutput <- f:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (d *Demodulator) updateSNR(symbols []complex64) {
	snr := d.SNR.Update(symbols)
	d.statsMutex.Lock()
	defer d.statsMutex.Unlock()
	if snr > d.PeakSNR {
		d.PeakSNR = snr
	}
	// Skip zeros so the average does not collapse.
	if snr > 0 {
		d.AvgSNR += snr
		d.AvgSNR /= 2
	}
	d.CurrentSNR = snr
}

func (d *Demodulator) Stats() Stats {
	d.statsMutex.RLock()
	defer d.statsMutex.RUnlock()
	return Stats{
		Sync:       d.Sync.Snapshot(),
		CurrentSNR: d.CurrentSNR,
		PeakSNR:    d.PeakSNR,
		AvgSNR:     d.AvgSNR,
		Blocks:     d.blocks.Load(),
		Overruns:   d.overruns.Load(),
	}
}
