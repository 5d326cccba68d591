// Package radio connects the chains to hardware. Reception goes through
// SoapySDR; transmission through libhackrf or SoapySDR.
package radio

// #cgo CFLAGS: -g -Wall
// #cgo LDFLAGS: -lSoapySDR
import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/iottrends-tech/dvb-s2-SDR/config"
	"github.com/iottrends-tech/dvb-s2-SDR/demod"
	SatHelper "github.com/opensatelliteproject/libsathelper"
	"github.com/pothosware/go-soapy-sdr/pkg/device"
)

// Receiver streams CF32 samples from a SoapySDR device.
type Receiver struct {
	Driver      string
	Address     string
	DeviceIndex int
	SampleRate  float64
	Frequency   float64
	Gain        int
	BlockSize   uint

	// AGC normalizes the level ahead of the matched filter when set.
	AGC SatHelper.AGC

	device *device.SDRDevice
	stream *device.SDRStreamCF32
	buffer [][]complex64

	// Dropped counts blocks discarded because the consumer fell behind.
	Dropped atomic.Uint64
}

func NewReceiver(conf config.RadioConf, agcConf config.AGCConf, blockSize uint) *Receiver {
	log.Debug("[radio] Initing SoapySDR")
	InitSoapySDR()
	r := &Receiver{
		Driver:      conf.Driver,
		Address:     conf.Address,
		DeviceIndex: conf.DeviceIndex,
		SampleRate:  conf.SampleRate,
		Frequency:   conf.Frequency,
		Gain:        conf.Gain,
		BlockSize:   blockSize,
		buffer:      [][]complex64{make([]complex64, blockSize)},
	}
	if agcConf.Enabled {
		r.AGC = SatHelper.NewAGC(agcConf.Rate, agcConf.Reference, agcConf.Gain, agcConf.MaxGain)
	}
	return r
}

func (r *Receiver) Connect() error {
	args := map[string]string{"driver": r.Driver}
	if r.Driver == "rtltcp" {
		args["rtltcp"] = r.Address
	}
	if r.Driver == "hackrf" && r.DeviceIndex > 0 {
		args["index"] = fmt.Sprint(r.DeviceIndex)
	}
	var err error
	if r.device, err = device.Make(args); err != nil {
		return fmt.Errorf("radio: creating SoapySDR device: %w", err)
	}

	log.Debugf("[radio] Setting sample rate to %f", r.SampleRate)
	if err := r.device.SetSampleRate(device.DirectionRX, 0, r.SampleRate); err != nil {
		return fmt.Errorf("radio: setting sample rate: %w", err)
	}
	log.Debugf("[radio] Setting frequency to %f", r.Frequency)
	if err := r.device.SetFrequency(device.DirectionRX, 0, r.Frequency, nil); err != nil {
		return fmt.Errorf("radio: setting frequency: %w", err)
	}
	log.Debugf("[radio] Setting gain to %d dB", r.Gain)
	if err := r.device.SetGain(device.DirectionRX, 0, float64(r.Gain)); err != nil {
		return fmt.Errorf("radio: setting gain: %w", err)
	}
	log.Debugf("[radio] Initialized device: %v", r.Driver)
	if r.Driver != "rtltcp" {
		LogAvailSettings(r.device)
	}

	log.Debug("[radio] Creating the IQ stream")
	if r.stream, err = r.device.SetupSDRStreamCF32(device.DirectionRX, []uint{0}, nil); err != nil {
		return fmt.Errorf("radio: setting up stream: %w", err)
	}
	log.Debug("[radio] Activating IQ stream")
	if err := r.stream.Activate(0, 0, 0); err != nil {
		return fmt.Errorf("radio: activating stream: %w", err)
	}
	// Discard the first samples so we start on clean data.
	r.read(1024)
	return nil
}

func (r *Receiver) read(num uint) ([]complex64, error) {
	flags := make([]int, 1)
	timeout := uint(100000)
	_, n, err := r.stream.Read(r.buffer, min(num, uint(len(r.buffer[0]))), flags, timeout)
	if err != nil {
		return nil, err
	}
	return r.buffer[0][:n], nil
}

// Start reads blocks of BlockSize samples until ctx is done. The device is
// never blocked: when out is full the block is dropped and the sequence gap
// tells the demodulator to reacquire. out is closed on return.
func (r *Receiver) Start(ctx context.Context, out chan<- demod.Block) error {
	defer close(out)
	var seq uint64
	var lastWarn time.Time
	block := make([]complex64, 0, r.BlockSize)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		samples, err := r.read(r.BlockSize - uint(len(block)))
		if err != nil {
			log.Debugf("[radio] Read: %v", err)
			time.Sleep(5 * time.Millisecond)
			continue
		}
		block = append(block, samples...)
		if uint(len(block)) < r.BlockSize {
			continue
		}
		if r.AGC != nil {
			agc := make([]complex64, len(block))
			r.AGC.Work(&block[0], &agc[0], len(block))
			block = agc
		}
		select {
		case out <- demod.Block{Seq: seq, Samples: block}:
		default:
			r.Dropped.Add(1)
			if time.Since(lastWarn) > time.Second {
				log.Warnf("[radio] Receive overrun, %d blocks dropped so far", r.Dropped.Load())
				lastWarn = time.Now()
			}
		}
		seq++
		block = make([]complex64, 0, r.BlockSize)
	}
}

func (r *Receiver) Close() error {
	log.Debug("[radio] Closing IQ stream")
	if r.stream != nil {
		if err := r.stream.Deactivate(0, 0); err != nil {
			return fmt.Errorf("radio: deactivating stream: %w", err)
		}
		if err := r.stream.Close(); err != nil {
			return fmt.Errorf("radio: closing stream: %w", err)
		}
		r.stream = nil
	}
	if r.device != nil {
		err := r.device.Unmake()
		r.device = nil
		return err
	}
	return nil
}
