package radio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/iottrends-tech/dvb-s2-SDR/config"
	"github.com/samuel/go-hackrf/hackrf"
)

var errTxDone = errors.New("radio: transmission finished")

// Transmitter plays sample blocks through a HackRF.
type Transmitter struct {
	Frequency   float64
	SampleRate  float64
	Gain        int
	AmpEnable   bool
	DigitalGain float32

	pending []complex64
	closed  bool

	// Underruns counts device buffers zero-filled because no samples were
	// ready.
	Underruns atomic.Uint64
	Sent      atomic.Uint64
	lastWarn  time.Time
}

func NewTransmitter(conf config.RadioConf) *Transmitter {
	return &Transmitter{
		Frequency:   conf.Frequency,
		SampleRate:  conf.SampleRate,
		Gain:        conf.TxGain,
		AmpEnable:   conf.AmpEnable,
		DigitalGain: float32(conf.DigitalGain),
	}
}

// pack converts samples to the HackRF's interleaved int8 format.
func pack(dst []byte, samples []complex64, gain float32) {
	for i, s := range samples {
		dst[2*i] = byte(clampInt8(real(s) * gain))
		dst[2*i+1] = byte(clampInt8(imag(s) * gain))
	}
}

func clampInt8(v float32) int8 {
	return int8(max(-127, min(127, math.Round(float64(v)))))
}

// fill is the TX callback. It runs on the libhackrf transfer thread and is
// the only user of pending.
func (t *Transmitter) fill(buf []byte, in <-chan []complex64, done chan<- struct{}) error {
	n := len(buf) / 2
	i := 0
copying:
	for i < n {
		if len(t.pending) == 0 {
			if t.closed {
				break
			}
			select {
			case s, ok := <-in:
				if !ok {
					t.closed = true
				} else {
					t.pending = s
				}
				continue
			default:
				break copying
			}
		}
		k := min(n-i, len(t.pending))
		pack(buf[2*i:], t.pending[:k], t.DigitalGain)
		t.pending = t.pending[k:]
		i += k
	}
	if i < n {
		clear(buf[2*i:])
		if t.closed {
			close(done)
			return errTxDone
		}
		t.Underruns.Add(1)
		if time.Since(t.lastWarn) > time.Second {
			log.Warnf("[radio] Transmit underrun, %d buffers zero-filled so far", t.Underruns.Load())
			t.lastWarn = time.Now()
		}
	}
	t.Sent.Add(uint64(i))
	return nil
}

// Start transmits blocks from in until it is closed and drained or ctx is
// done.
func (t *Transmitter) Start(ctx context.Context, in <-chan []complex64) error {
	if err := hackrf.Init(); err != nil {
		return fmt.Errorf("radio: hackrf init: %w", err)
	}
	defer hackrf.Exit()

	dev, err := hackrf.Open()
	if err != nil {
		return fmt.Errorf("radio: opening hackrf: %w", err)
	}
	defer dev.Close()

	log.Debugf("[radio] HackRF TX at %.0f Hz, %.0f S/s, %d dB", t.Frequency, t.SampleRate, t.Gain)
	if err := dev.SetFreq(uint64(t.Frequency)); err != nil {
		return fmt.Errorf("radio: setting frequency: %w", err)
	}
	if err := dev.SetSampleRate(t.SampleRate); err != nil {
		return fmt.Errorf("radio: setting sample rate: %w", err)
	}
	if err := dev.SetTXVGAGain(t.Gain); err != nil {
		return fmt.Errorf("radio: setting gain: %w", err)
	}
	if err := dev.SetAmpEnable(t.AmpEnable); err != nil {
		return fmt.Errorf("radio: setting amp: %w", err)
	}

	done := make(chan struct{})
	var finished atomic.Bool
	err = dev.StartTX(func(buf []byte) error {
		if finished.Load() {
			clear(buf)
			return errTxDone
		}
		if err := t.fill(buf, in, done); err != nil {
			finished.Store(true)
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("radio: starting transmission: %w", err)
	}
	log.Info("[radio] Transmission is live")

	select {
	case <-done:
		log.Info("[radio] Input drained")
	case <-ctx.Done():
	}
	finished.Store(true)
	if err := dev.StopTX(); err != nil {
		return fmt.Errorf("radio: stopping transmission: %w", err)
	}
	log.Infof("[radio] Transmission stopped: %d samples sent, %d underruns", t.Sent.Load(), t.Underruns.Load())
	return ctx.Err()
}
