// Package metrics exports receiver and transmitter counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/iottrends-tech/dvb-s2-SDR/datalink"
	"github.com/iottrends-tech/dvb-s2-SDR/demod"
	"github.com/iottrends-tech/dvb-s2-SDR/modulator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dvbs2"

type Metrics struct {
	Registry *prometheus.Registry

	factory    promauto.Factory
	syncEvents *prometheus.CounterVec
}

// New creates a registry whose metrics all carry the session label.
func New(session string) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"session": session}, reg))
	return &Metrics{
		Registry: reg,
		factory:  f,
		syncEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_events_total",
				Help:      "Synchronizer events by kind",
			},
			[]string{"kind"},
		),
	}
}

// Event counts a synchronizer event.
func (m *Metrics) Event(ev demod.Event) {
	m.syncEvents.WithLabelValues(strings.ReplaceAll(ev.Kind.String(), " ", "_")).Inc()
}

// Counter exports fn as a counter.
func (m *Metrics) Counter(name, help string, fn func() uint64) {
	m.factory.NewCounterFunc(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, func() float64 {
		return float64(fn())
	})
}

// Gauge exports fn as a gauge.
func (m *Metrics) Gauge(name, help string, fn func() float64) {
	m.factory.NewGaugeFunc(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help}, fn)
}

// WatchReceiver exports the demodulator and decoder statistics.
func (m *Metrics) WatchReceiver(d *demod.Demodulator, dec *datalink.Decoder) {
	rx := func() datalink.Stats { return dec.Stats() }
	m.Counter("frames_total", "FEC frames processed", func() uint64 { return rx().TotalFramesProcessed })
	m.Counter("frames_ok_total", "Frames delivered", func() uint64 { return rx().FramesOK })
	m.Counter("frames_uncorrectable_total", "Frames the BCH decoder gave up on", func() uint64 { return rx().Uncorrectable })
	m.Counter("frames_bad_header_total", "Frames with a rejected BBHEADER", func() uint64 { return rx().BadHeaders })
	m.Counter("ldpc_failures_total", "Frames where LDPC did not converge", func() uint64 { return rx().LDPCFailures })
	m.Counter("bch_corrections_total", "Bits corrected by BCH", func() uint64 { return rx().BCHCorrections })
	m.Counter("ts_crc_errors_total", "Transport packets with a bad CRC-8", func() uint64 { return rx().CRCErrors })
	m.Counter("bytes_out_total", "Payload bytes delivered", func() uint64 { return rx().BytesOut })
	m.Gauge("ldpc_iterations_avg", "Average LDPC iterations per frame", func() float64 { return float64(rx().AvgIterations) })

	m.Counter("sample_blocks_total", "Sample blocks demodulated", func() uint64 { return d.Stats().Blocks })
	m.Counter("sample_overruns_total", "Sequence gaps in the sample stream", func() uint64 { return d.Stats().Overruns })
	m.Gauge("snr_db", "M2M4 SNR of the last frame", func() float64 { return d.Stats().CurrentSNR })
	m.Gauge("esn0_db", "Es/N0 from the last frame's known symbols", func() float64 {
		s := d.Stats().Sync
		if s.NoiseVar <= 0 {
			return 0
		}
		return demod.EsN0(s.NoiseVar)
	})
	m.Gauge("locked", "1 while the synchronizer holds frame lock", func() float64 {
		if d.Stats().Sync.State == demod.Locked {
			return 1
		}
		return 0
	})
	m.Gauge("carrier_offset_cycles", "Carrier offset in cycles per symbol", func() float64 { return d.Stats().Sync.Freq })
	m.Gauge("timing_offset_samples", "Timing rate correction in samples per symbol", func() float64 { return d.Stats().Sync.Omega })
}

// WatchTransmitter exports the modulator counters.
func (m *Metrics) WatchTransmitter(mod *modulator.Modulator) {
	m.Counter("frames_encoded_total", "PL frames transmitted", mod.FramesEncoded.Load)
	m.Counter("chunks_rejected_total", "Input chunks that could not be framed", mod.ChunksRejected.Load)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Serve exposes /metrics on listen until ctx is done.
func (m *Metrics) Serve(ctx context.Context, listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()
	log.Infof("[metrics] Serving on http://%s/metrics", listen)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
