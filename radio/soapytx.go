package radio

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/iottrends-tech/dvb-s2-SDR/config"
	"github.com/pothosware/go-soapy-sdr/pkg/device"
)

const (
	soapyTxChunk   = 8192
	soapyTxTimeout = uint(100000)
	// A zero-length write this many times in a row means the device is gone.
	maxStalledWrites = 50
)

var errTxStalled = errors.New("radio: device stopped accepting samples")

// SoapyTransmitter plays sample blocks through any SoapySDR device with a
// TX channel.
type SoapyTransmitter struct {
	Driver      string
	DeviceIndex int
	Frequency   float64
	SampleRate  float64
	Gain        int
	// DigitalGain keeps the HackRF meaning: the int8 value a unit sample
	// maps to. CF32 full scale is 1.
	DigitalGain float32

	device *device.SDRDevice
	stream *device.SDRStreamCF32
	buffer [][]complex64

	// Underruns counts writes that timed out without taking samples.
	Underruns atomic.Uint64
	Sent      atomic.Uint64
}

func NewSoapyTransmitter(conf config.RadioConf) *SoapyTransmitter {
	InitSoapySDR()
	return &SoapyTransmitter{
		Driver:      conf.Driver,
		DeviceIndex: conf.DeviceIndex,
		Frequency:   conf.Frequency,
		SampleRate:  conf.SampleRate,
		Gain:        conf.TxGain,
		DigitalGain: float32(conf.DigitalGain),
		buffer:      [][]complex64{make([]complex64, soapyTxChunk)},
	}
}

func (t *SoapyTransmitter) connect() error {
	args := map[string]string{"driver": t.Driver}
	if t.DeviceIndex > 0 {
		args["index"] = fmt.Sprint(t.DeviceIndex)
	}
	var err error
	if t.device, err = device.Make(args); err != nil {
		return fmt.Errorf("radio: creating SoapySDR device: %w", err)
	}
	log.Debugf("[radio] SoapySDR TX at %.0f Hz, %.0f S/s, %d dB", t.Frequency, t.SampleRate, t.Gain)
	if err := t.device.SetSampleRate(device.DirectionTX, 0, t.SampleRate); err != nil {
		return fmt.Errorf("radio: setting sample rate: %w", err)
	}
	if err := t.device.SetFrequency(device.DirectionTX, 0, t.Frequency, nil); err != nil {
		return fmt.Errorf("radio: setting frequency: %w", err)
	}
	if err := t.device.SetGain(device.DirectionTX, 0, float64(t.Gain)); err != nil {
		return fmt.Errorf("radio: setting gain: %w", err)
	}
	if t.stream, err = t.device.SetupSDRStreamCF32(device.DirectionTX, []uint{0}, nil); err != nil {
		return fmt.Errorf("radio: setting up stream: %w", err)
	}
	if err := t.stream.Activate(0, 0, 0); err != nil {
		return fmt.Errorf("radio: activating stream: %w", err)
	}
	return nil
}

func (t *SoapyTransmitter) write(samples []complex64) (int, error) {
	n := copy(t.buffer[0], samples)
	flags := make([]int, 1)
	written, err := t.stream.Write(t.buffer, uint(n), flags, 0, soapyTxTimeout)
	return int(written), err
}

// writeAll scales samples to CF32 full scale and hands them to write until
// all are taken. Zero-length writes count as underruns.
func writeAll(write func([]complex64) (int, error), samples []complex64, gain float32, underruns *atomic.Uint64) error {
	scaled := make([]complex64, len(samples))
	g := complex(gain/127, 0)
	for i, s := range samples {
		scaled[i] = s * g
	}
	stalled := 0
	for len(scaled) > 0 {
		n, err := write(scaled[:min(len(scaled), soapyTxChunk)])
		if err != nil {
			return fmt.Errorf("radio: writing samples: %w", err)
		}
		if n == 0 {
			underruns.Add(1)
			if stalled++; stalled >= maxStalledWrites {
				return errTxStalled
			}
			continue
		}
		stalled = 0
		scaled = scaled[n:]
	}
	return nil
}

// Start transmits blocks from in until it is closed or ctx is done.
func (t *SoapyTransmitter) Start(ctx context.Context, in <-chan []complex64) error {
	if err := t.connect(); err != nil {
		t.close()
		return err
	}
	defer t.close()
	log.Info("[radio] Transmission is live")

	var lastWarn time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case block, ok := <-in:
			if !ok {
				log.Infof("[radio] Input drained: %d samples sent, %d underruns", t.Sent.Load(), t.Underruns.Load())
				return nil
			}
			before := t.Underruns.Load()
			if err := writeAll(t.write, block, t.DigitalGain, &t.Underruns); err != nil {
				return err
			}
			t.Sent.Add(uint64(len(block)))
			if t.Underruns.Load() > before && time.Since(lastWarn) > time.Second {
				log.Warnf("[radio] Transmit stalled, %d writes timed out so far", t.Underruns.Load())
				lastWarn = time.Now()
			}
		}
	}
}

func (t *SoapyTransmitter) close() {
	if t.stream != nil {
		if err := t.stream.Deactivate(0, 0); err != nil {
			log.Warnf("[radio] Deactivating TX stream: %v", err)
		}
		if err := t.stream.Close(); err != nil {
			log.Warnf("[radio] Closing TX stream: %v", err)
		}
		t.stream = nil
	}
	if t.device != nil {
		if err := t.device.Unmake(); err != nil {
			log.Warnf("[radio] Releasing device: %v", err)
		}
		t.device = nil
	}
}
