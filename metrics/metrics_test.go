package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iottrends-tech/dvb-s2-SDR/baseband"
	"github.com/iottrends-tech/dvb-s2-SDR/demod"
	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
	"github.com/iottrends-tech/dvb-s2-SDR/modulator"
	"github.com/iottrends-tech/dvb-s2-SDR/shaping"
)

func TestEventsAndCounters(t *testing.T) {
	m := New("abc")
	m.Event(demod.Event{Kind: demod.EventLocked})
	m.Event(demod.Event{Kind: demod.EventSyncLost})
	m.Event(demod.Event{Kind: demod.EventLocked})
	var underruns uint64 = 7
	m.Counter("tx_underruns_total", "Zero-filled transmit buffers", func() uint64 { return underruns })

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			name := mf.GetName()
			for _, l := range metric.GetLabel() {
				if l.GetName() == "kind" {
					name += "/" + l.GetValue()
				}
				if l.GetName() == "session" && l.GetValue() != "abc" {
					t.Errorf("%s has session %q", name, l.GetValue())
				}
			}
			got[name] = metric.GetCounter().GetValue()
		}
	}
	want := map[string]float64{
		"dvbs2_sync_events_total/locked":    2,
		"dvbs2_sync_events_total/sync_lost": 1,
		"dvbs2_tx_underruns_total":          7,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestHandlerExportsTransmitter(t *testing.T) {
	p, _ := modcod.Parse("QPSK1/2", modcod.Short, true)
	mod, err := modulator.New(modulator.Config{
		Profile: p,
		Stream:  baseband.GenericContinuous,
		Shape:   shaping.Params{SamplesPerSymbol: 2, Rolloff: 0.35, Span: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mod.EncodeFrame(make([]byte, 10)); err != nil {
		t.Fatal(err)
	}
	m := New("s1")
	m.WatchTransmitter(mod)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `dvbs2_frames_encoded_total{session="s1"} 1`) {
		t.Errorf("missing frame counter in:\n%s", body)
	}
}
