package demod

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/iottrends-tech/dvb-s2-SDR/config"
	"github.com/iottrends-tech/dvb-s2-SDR/constellation"
	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
	"github.com/iottrends-tech/dvb-s2-SDR/plframe"
)

type State int

const (
	Searching State = iota
	Locked
)

func (s State) String() string {
	if s == Locked {
		return "LOCKED"
	}
	return "SEARCHING"
}

type EventKind int

const (
	EventLocked EventKind = iota
	EventSyncLost
	EventOverrun
)

func (k EventKind) String() string {
	switch k {
	case EventLocked:
		return "locked"
	case EventSyncLost:
		return "sync lost"
	case EventOverrun:
		return "overrun"
	}
	return "unknown"
}

// Event reports a synchronizer state change. Sample is the absolute
// matched filter sample index where it happened.
type Event struct {
	Kind   EventKind
	Sample int64
}

// Frame is one recovered PL frame.
type Frame struct {
	// Seq counts frame slots since the synchronizer was created, missed
	// headers included, so a gap means frames were lost.
	Seq      uint64
	Start    float64 // absolute sample index of the first header symbol
	Symbols  []complex64
	NoiseVar float64
	EsN0     float64
	Metric   float64
	Freq     float64 // carrier offset in cycles per symbol
	Omega    float64 // timing correction in samples per symbol
	// Resync marks the first frame after an acquisition. Stream state
	// carried between frames must be dropped.
	Resync bool
}

type Status struct {
	State      State
	Metric     float64
	Freq       float64
	Omega      float64
	NoiseVar   float64
	Misses     int
	Frames     uint64
	Acquired   uint64
	SyncLosses uint64
}

const (
	minNoiseVar = 1e-4
	// Bound on the timing correction as a fraction of a symbol.
	omegaLimit = 0.005
	// Bound on the normalized Gardner error of one symbol.
	maxTimingError = 1.0
)

// Synchronizer finds PL frames in matched filter output and tracks timing
// and carrier while locked. Process is not safe for concurrent use;
// Snapshot is.
type Synchronizer struct {
	layout  *plframe.Layout
	conf    config.ReceiverConf
	sps     int
	constel *constellation.Constellation
	// dref[k] = H[k+1]*conj(H[k]), the differential header reference.
	dref [plframe.HeaderSymbols - 1]complex64
	code uint8

	OnEvent func(Event)

	buf  []complex64
	base int64 // absolute index of buf[0]
	scan int   // next search position in buf

	state  State
	t      float64 // next frame start in buf
	theta  float64
	w      float64
	omega  float64
	prev   complex64
	misses int
	seq    uint64
	resync bool

	mu     sync.RWMutex
	status Status
}

func NewSynchronizer(layout *plframe.Layout, sps int, conf config.ReceiverConf) (*Synchronizer, error) {
	if sps < 2 {
		return nil, modcod.Invalid("samples_per_symbol", sps, "must be at least 2")
	}
	if conf.DetectionThreshold <= 0 || conf.DetectionThreshold >= 1 {
		return nil, modcod.Invalid("detection_threshold", conf.DetectionThreshold, "must be in (0, 1)")
	}
	if conf.MaxMisses <= 0 {
		return nil, modcod.Invalid("max_misses", conf.MaxMisses, "must be positive")
	}
	s := &Synchronizer{
		layout:  layout,
		conf:    conf,
		sps:     sps,
		constel: constellation.New(layout.Profile.Modulation),
		code:    layout.Profile.PLSCode() & 0x7F,
		scan:    2,
	}
	for k := range s.dref {
		s.dref[k] = layout.Header[k+1] * conj(layout.Header[k])
	}
	return s, nil
}

// Snapshot returns a copy of the tracking state.
func (s *Synchronizer) Snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Synchronizer) State() State {
	return s.Snapshot().State
}

func (s *Synchronizer) emit(kind EventKind, sample int64) {
	if s.OnEvent != nil {
		s.OnEvent(Event{Kind: kind, Sample: sample})
	}
}

// Reset drops buffered samples and returns to SEARCHING. Used after a gap
// in the sample stream.
func (s *Synchronizer) Reset() {
	if s.state == Locked {
		s.loseLock()
	}
	s.base += int64(len(s.buf))
	s.buf = s.buf[:0]
	s.scan = 2
}

// Process appends matched filter samples and returns every frame that can
// be completed with the samples buffered so far.
func (s *Synchronizer) Process(samples []complex64) []Frame {
	s.buf = append(s.buf, samples...)
	var frames []Frame
	for {
		if s.state == Searching {
			if !s.search() {
				break
			}
			continue
		}
		if !s.frameReady() {
			break
		}
		if f, ok := s.track(); ok {
			frames = append(frames, f)
		}
	}
	s.trim()
	return frames
}

// Flush pads the buffer with silence so a frame that ends right at the end
// of a finite input can complete.
func (s *Synchronizer) Flush() []Frame {
	if s.state != Locked {
		return nil
	}
	pad := int(float64(s.layout.Symbols*s.sps)*omegaLimit) + 2*s.sps + 8
	return s.Process(make([]complex64, pad))
}

// headerCorr correlates the differential header reference against samples
// spaced one symbol apart from t. It returns the correlation and the
// energy of each third of the header.
func (s *Synchronizer) headerCorr(sample func(k int) complex64) (complex128, [3]float64) {
	var (
		d      complex128
		energy [3]float64
		last   complex64
	)
	for k := 0; k < plframe.HeaderSymbols; k++ {
		v := sample(k)
		energy[k/30] += abs2(v)
		if k > 0 {
			d += complex128(v * conj(last) * conj(s.dref[k-1]))
		}
		last = v
	}
	return d, energy
}

// metricAt is the normalized header correlation at integer sample p, zero
// when the energy over the header window is too uneven to be a frame.
func (s *Synchronizer) metricAt(p int) (float64, complex128) {
	d, e := s.headerCorr(func(k int) complex64 { return s.buf[p+k*s.sps] })
	total := e[0] + e[1] + e[2]
	if total == 0 || min(e[0], e[1], e[2]) < 0.5*max(e[0], e[1], e[2]) {
		return 0, d
	}
	return cmplx.Abs(d) / total, d
}

func (s *Synchronizer) metricFrac(t float64) (float64, complex128) {
	sps := float64(s.sps)
	d, e := s.headerCorr(func(k int) complex64 { return cubic(s.buf, t+float64(k)*sps) })
	total := e[0] + e[1] + e[2]
	if total == 0 {
		return 0, d
	}
	return cmplx.Abs(d) / total, d
}

func (s *Synchronizer) search() bool {
	sps := s.sps
	need := (plframe.HeaderSymbols+2)*sps + 3
	for ; s.scan+need < len(s.buf); s.scan++ {
		p := s.scan
		if m, _ := s.metricAt(p); m < s.conf.DetectionThreshold {
			continue
		}
		best, bm := p, 0.0
		for q := p; q < p+2*sps; q++ {
			if m, _ := s.metricAt(q); m > bm {
				best, bm = q, m
			}
		}
		ml, _ := s.metricAt(best - 1)
		mr, _ := s.metricAt(best + 1)
		frac := 0.0
		if den := ml - 2*bm + mr; den < 0 {
			frac = max(-0.5, min(0.5, 0.5*(ml-mr)/den))
		}
		s.acquire(float64(best)+frac, bm)
		return true
	}
	return false
}

func (s *Synchronizer) acquire(t, metric float64) {
	_, d := s.metricFrac(t)
	s.w = angle(d)
	var acc complex128
	for k := 0; k < plframe.HeaderSymbols; k++ {
		y := cubic(s.buf, t+float64(k*s.sps))
		acc += complex128(y * conj(s.layout.Header[k]) * expj(-s.w*float64(k)))
	}
	s.theta = angle(acc)
	s.t = t
	s.omega = 0
	s.prev = 0
	s.misses = 0
	s.resync = true
	s.state = Locked

	at := s.base + int64(t)
	log.Infof("[sync] Frame lock at sample %d (metric %.2f, carrier offset %.4f cycles/symbol)", at, metric, s.w/(2*math.Pi))
	s.mu.Lock()
	s.status.State = Locked
	s.status.Metric = metric
	s.status.Freq = s.w / (2 * math.Pi)
	s.status.Misses = 0
	s.status.Acquired++
	s.mu.Unlock()
	s.emit(EventLocked, at)
}

func (s *Synchronizer) loseLock() {
	s.state = Searching
	s.scan = max(2, int(s.t)+1)
	at := s.base + int64(s.t)
	log.Warnf("[sync] Frame lock lost at sample %d after %d missed headers", at, s.misses)
	s.w, s.omega, s.prev = 0, 0, 0
	s.mu.Lock()
	s.status.State = Searching
	s.status.Freq = 0
	s.status.Omega = 0
	s.status.NoiseVar = 0
	s.status.SyncLosses++
	s.mu.Unlock()
	s.emit(EventSyncLost, at)
}

func (s *Synchronizer) frameReady() bool {
	l := float64(s.layout.Symbols)
	sps := float64(s.sps)
	need := s.t + l*sps*(1+omegaLimit) + 2*sps + 4
	return need < float64(len(s.buf))
}

// track demodulates the frame starting at s.t, running the Gardner timing
// loop and the decision directed carrier loop over every symbol. The header
// is checked first; on a miss the loops are left alone and s.t moves one
// frame ahead at the current timing estimate.
func (s *Synchronizer) track() (Frame, bool) {
	l := s.layout
	sps := float64(s.sps)
	metric, _ := s.metricFrac(s.t)

	var acc complex128
	for k := 0; k < plframe.HeaderSymbols; k++ {
		y := cubic(s.buf, s.t+float64(k)*sps)
		acc += complex128(y * conj(l.Header[k]) * expj(-(s.theta + s.w*float64(k))))
	}
	amp := cmplx.Abs(acc) / plframe.HeaderSymbols
	theta := s.theta + angle(acc)

	var hdr [plframe.HeaderSymbols]complex64
	code := uint8(0xFF)
	if metric >= s.conf.DetectionThreshold && amp > 0 {
		inv := complex(float32(1/amp), 0)
		for k := range hdr {
			hdr[k] = cubic(s.buf, s.t+float64(k)*sps) * expj(-(theta + s.w*float64(k))) * inv
		}
		if c, err := plframe.DecodeHeader(hdr[:]); err == nil {
			code = c
		}
	}
	if code != s.code {
		s.miss(metric, code)
		return Frame{}, false
	}
	s.misses = 0
	s.theta = theta
	inv := complex(float32(1/amp), 0)
	ampSq := amp * amp

	data := make([]complex64, l.Profile.DataSymbols())
	known := make([]complex64, 0, plframe.HeaderSymbols+l.Profile.PilotBlocks()*plframe.PilotBlockSymbols)
	refs := make([]complex64, 0, cap(known))

	// tk stays within the drift the timing loop can produce over one frame
	// and within the buffer frameReady checked.
	start := s.t
	drift := float64(l.Symbols)*sps*omegaLimit + sps
	lo := sps/2 + 1
	hi := float64(len(s.buf) - 3)
	tk := s.t
	maxOmega := omegaLimit * sps
	d := 0
	for k := 0; k < l.Symbols; k++ {
		y := cubic(s.buf, tk)
		var e float64
		if s.prev != 0 {
			mid := cubic(s.buf, tk-sps/2)
			e = float64(real((s.prev - y) * conj(mid))) / ampSq
			e = max(-maxTimingError, min(maxTimingError, e))
		}
		s.prev = y

		z := y * expj(-s.theta) * inv
		var ref complex64
		switch l.Kinds[k] {
		case plframe.KindHeader:
			ref = l.Header[k]
			known = append(known, z)
			refs = append(refs, ref)
		case plframe.KindPilot:
			ref = plframe.Pilot * l.Rotation(k)
			known = append(known, z)
			refs = append(refs, ref)
		default:
			r := l.Rotation(k)
			zd := z * conj(r)
			data[d] = zd
			d++
			_, dec := s.constel.Nearest(zd)
			ref = dec * r
		}

		pe := angle(complex128(z * conj(ref)))
		s.w += s.conf.CarrierGainI * pe
		s.theta += s.w + s.conf.CarrierGainP*pe
		s.omega = max(-maxOmega, min(maxOmega, s.omega+s.conf.TimingGainI*e))
		tk += sps + s.omega + s.conf.TimingGainP*e
		nominal := start + float64(k+1)*sps
		tk = max(lo, nominal-drift, min(hi, nominal+drift, tk))
	}
	s.theta = wrap(s.theta)
	s.w = wrap(s.w)
	s.t = tk

	nv := s.conf.NoiseVariance
	if nv <= 0 {
		nv = max(evmNoise(known, refs), minNoiseVar)
	}
	f := Frame{
		Seq:      s.seq,
		Start:    float64(s.base) + start,
		Symbols:  data,
		NoiseVar: nv,
		EsN0:     EsN0(nv),
		Metric:   metric,
		Freq:     s.w / (2 * math.Pi),
		Omega:    s.omega,
		Resync:   s.resync,
	}
	s.seq++
	s.resync = false

	s.mu.Lock()
	s.status.Metric = metric
	s.status.Freq = f.Freq
	s.status.Omega = f.Omega
	s.status.NoiseVar = nv
	s.status.Misses = 0
	s.status.Frames++
	s.mu.Unlock()
	return f, true
}

// miss skips the frame at s.t. The frame sequence number still advances so
// the gap is visible downstream.
func (s *Synchronizer) miss(metric float64, code uint8) {
	l := float64(s.layout.Symbols)
	s.misses++
	s.seq++
	s.prev = 0
	log.Debugf("[sync] Header miss %d/%d (metric %.2f, pls %d)", s.misses, s.conf.MaxMisses, metric, code)
	s.mu.Lock()
	s.status.Metric = metric
	s.status.Misses = s.misses
	s.mu.Unlock()
	if s.misses >= s.conf.MaxMisses {
		s.loseLock()
		return
	}
	s.theta = wrap(s.theta + s.w*l)
	s.t += l * (float64(s.sps) + s.omega)
}

// trim discards samples that can no longer be needed.
func (s *Synchronizer) trim() {
	var cut int
	if s.state == Searching {
		cut = s.scan - 2
	} else {
		cut = int(s.t) - 2*s.sps - 2
	}
	if cut <= 0 {
		return
	}
	cut = min(cut, len(s.buf))
	n := copy(s.buf, s.buf[cut:])
	s.buf = s.buf[:n]
	s.base += int64(cut)
	s.scan -= cut
	s.t -= float64(cut)
}
