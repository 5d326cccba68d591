package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/iottrends-tech/dvb-s2-SDR/baseband"
	"github.com/iottrends-tech/dvb-s2-SDR/config"
	"github.com/iottrends-tech/dvb-s2-SDR/datalink"
	"github.com/iottrends-tech/dvb-s2-SDR/demod"
	"github.com/iottrends-tech/dvb-s2-SDR/iqfile"
	"github.com/iottrends-tech/dvb-s2-SDR/ldpc"
	"github.com/iottrends-tech/dvb-s2-SDR/metrics"
	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
	"github.com/iottrends-tech/dvb-s2-SDR/modulator"
	"github.com/iottrends-tech/dvb-s2-SDR/pipeline"
	"github.com/iottrends-tech/dvb-s2-SDR/plframe"
	"github.com/iottrends-tech/dvb-s2-SDR/radio"
	"github.com/iottrends-tech/dvb-s2-SDR/shaping"
	"github.com/iottrends-tech/dvb-s2-SDR/tui"
)

func listModcods(frame string, pilots bool) error {
	fs, err := modcod.ParseFrameSize(frame)
	if err != nil {
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("modcod", "PLS", "Kbch", "t", "slots", "pilot blocks", "PL symbols", "data field bytes", "supported")
	for _, p := range modcod.All(fs, pilots) {
		t.Row(p.Name(), fmt.Sprintf("0x%02x", p.PLSCode()), fmt.Sprint(p.Kbch()), fmt.Sprint(p.BCHErrors()),
			fmt.Sprint(p.Slots()), fmt.Sprint(p.PilotBlocks()), fmt.Sprint(p.PLFrameSymbols()),
			fmt.Sprint(baseband.ChunkSize(p, baseband.TransportStream)), fmt.Sprint(ldpc.Supported(p)))
	}
	fmt.Println(t.Render())
	return nil
}

// session is the chain setup shared by tx and rx.
type session struct {
	id      string
	profile modcod.Profile
	stream  baseband.StreamType
	shape   shaping.Params
	metrics *metrics.Metrics
}

func newSession(ctx context.Context, conf config.Config) (*session, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	fs, err := modcod.ParseFrameSize(conf.DVBS2.FrameSize)
	if err != nil {
		return nil, err
	}
	p, err := modcod.Parse(conf.DVBS2.Modcod, fs, conf.DVBS2.Pilots)
	if err != nil {
		return nil, err
	}
	st, err := baseband.ParseStreamType(conf.DVBS2.StreamType)
	if err != nil {
		return nil, err
	}
	s := &session{
		id:      pipeline.NewSession(),
		profile: p,
		stream:  st,
		shape: shaping.Params{
			SamplesPerSymbol: conf.DVBS2.SamplesPerSymbol,
			Rolloff:          conf.DVBS2.Rolloff,
			Span:             conf.DVBS2.RRCSpan,
		},
	}
	if err := s.shape.Validate(); err != nil {
		return nil, err
	}
	log.Infof("Session %s: %s, %s stream, %.0f symbols/s", s.id, p, st, conf.SymbolRate())
	if conf.Metrics.Listen != "" {
		s.metrics = metrics.New(s.id)
		go func() {
			if err := s.metrics.Serve(ctx, conf.Metrics.Listen); err != nil {
				log.Errorf("Metrics server: %v", err)
			}
		}()
	}
	return s, nil
}

func openInput(path, udp string) (io.Reader, error) {
	switch path {
	case "-":
		return os.Stdin, nil
	case "":
		if udp == "" {
			return nil, fmt.Errorf("no input file and no input.udp_address")
		}
		addr, err := net.ResolveUDPAddr("udp", udp)
		if err != nil {
			return nil, err
		}
		log.Infof("Listening for transport stream on udp://%s", udp)
		return net.ListenUDP("udp", addr)
	}
	return os.Open(path)
}

func openOutput(path, udp string) (io.WriteCloser, int, error) {
	switch path {
	case "-":
		return os.Stdout, 0, nil
	case "":
		log.Infof("Sending output to udp://%s", udp)
		conn, err := net.Dial("udp", udp)
		return conn, pipeline.MaxDatagram, err
	}
	f, err := os.Create(path)
	return f, 0, err
}

func runTx(ctx context.Context, conf config.Config) error {
	s, err := newSession(ctx, conf)
	if err != nil {
		return err
	}
	m, err := modulator.New(modulator.Config{
		Profile:  s.profile,
		Stream:   s.stream,
		GoldCode: conf.DVBS2.GoldCode,
		Shape:    s.shape,
		Workers:  conf.Receiver.Workers,
	})
	if err != nil {
		return err
	}
	in, err := openInput(cli.Tx.Input, conf.Input.UDPAddress)
	if err != nil {
		return err
	}
	if c, ok := in.(io.Closer); ok && in != os.Stdin {
		defer c.Close()
	}

	var sink pipeline.SampleSink
	if cli.Tx.IQFile != "" {
		f, err := os.Create(cli.Tx.IQFile)
		if err != nil {
			return err
		}
		defer f.Close()
		sink = iqfile.NewSink(f)
	} else {
		var underruns func() uint64
		if conf.Radio.TxBackend == "soapy" {
			t := radio.NewSoapyTransmitter(conf.Radio)
			underruns, sink = t.Underruns.Load, t
		} else {
			t := radio.NewTransmitter(conf.Radio)
			underruns, sink = t.Underruns.Load, t
		}
		if s.metrics != nil {
			s.metrics.Counter("tx_underruns_total", "Transmit buffers the device was starved of", underruns)
		}
	}
	if s.metrics != nil {
		s.metrics.WatchTransmitter(m)
	}
	return pipeline.RunTx(ctx, pipeline.Tx{
		Session:   s.id,
		Modulator: m,
		Input:     in,
		Sink:      sink,
		Buffer:    conf.Stream.BufferBlocks,
	})
}

func runRx(ctx context.Context, conf config.Config) error {
	s, err := newSession(ctx, conf)
	if err != nil {
		return err
	}
	layout, err := plframe.NewLayout(s.profile, conf.DVBS2.GoldCode)
	if err != nil {
		return err
	}
	demodulator, err := demod.New(layout, s.shape, conf.Receiver, conf.Stream.BufferBlocks)
	if err != nil {
		return err
	}
	decoder, err := datalink.New(s.profile, s.stream, conf.Receiver.Workers, conf.Receiver.LDPCIterations)
	if err != nil {
		return err
	}

	var source pipeline.SampleSource
	if cli.Rx.IQFile != "" {
		f, err := os.Open(cli.Rx.IQFile)
		if err != nil {
			return err
		}
		defer f.Close()
		src := iqfile.NewSource(f, int(conf.Stream.ChunkSize))
		src.Loop = cli.Rx.Loop || conf.Input.Loop
		if cli.Rx.Realtime {
			src.Rate = conf.Radio.SampleRate
		}
		source = src
	} else {
		r := radio.NewReceiver(conf.Radio, conf.AGC, conf.Stream.ChunkSize)
		if err := r.Connect(); err != nil {
			return err
		}
		defer r.Close()
		if s.metrics != nil {
			s.metrics.Counter("rx_dropped_blocks_total", "Sample blocks dropped at the device", r.Dropped.Load)
		}
		source = r
	}

	out, maxWrite, err := openOutput(cli.Rx.Output, conf.Output.UDPAddress)
	if err != nil {
		return err
	}
	if out != os.Stdout {
		defer out.Close()
	}

	rx := pipeline.Rx{
		Session:  s.id,
		Source:   source,
		Demod:    demodulator,
		Decoder:  decoder,
		Output:   out,
		MaxWrite: maxWrite,
		Buffer:   conf.Stream.BufferBlocks,
	}
	if s.metrics != nil {
		s.metrics.WatchReceiver(demodulator, decoder)
		rx.OnEvent = s.metrics.Event
	}
	if !cli.Rx.Tui {
		return pipeline.RunRx(ctx, rx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- pipeline.RunRx(ctx, rx) }()
	if err := tui.StartUI(ctx, cancel, decoder, demodulator, conf.Tui); err != nil {
		return err
	}
	return <-done
}
