// Package iqfile reads and writes raw interleaved little-endian float32 IQ
// ("cf32") sample streams, the format used by GNU Radio file sources and
// sinks.
package iqfile

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/iottrends-tech/dvb-s2-SDR/demod"
)

const sampleBytes = 8

func decode(dst []complex64, b []byte) {
	for i := range dst {
		re := math.Float32frombits(binary.LittleEndian.Uint32(b[i*sampleBytes:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(b[i*sampleBytes+4:]))
		dst[i] = complex(re, im)
	}
}

func encode(dst []byte, samples []complex64) {
	for i, s := range samples {
		binary.LittleEndian.PutUint32(dst[i*sampleBytes:], math.Float32bits(real(s)))
		binary.LittleEndian.PutUint32(dst[i*sampleBytes+4:], math.Float32bits(imag(s)))
	}
}

// Source emits blocks read from a cf32 stream.
type Source struct {
	r         io.Reader
	seek      io.Seeker
	BlockSize int
	// Loop rewinds seekable inputs at EOF.
	Loop bool
	// Rate throttles output to this many samples per second when set.
	Rate float64
}

func NewSource(r io.Reader, blockSize int) *Source {
	s := &Source{r: bufio.NewReaderSize(r, 1<<16), BlockSize: blockSize}
	if sk, ok := r.(io.Seeker); ok {
		s.seek = sk
	}
	return s
}

// ReadBlock reads up to BlockSize samples. A trailing partial sample is
// dropped.
func (s *Source) ReadBlock() ([]complex64, error) {
	buf := make([]byte, s.BlockSize*sampleBytes)
	n, err := io.ReadFull(s.r, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	if n < sampleBytes {
		if err == nil {
			err = io.EOF
		}
		return nil, err
	}
	out := make([]complex64, n/sampleBytes)
	decode(out, buf)
	return out, err
}

// Start sends blocks with consecutive sequence numbers until EOF or ctx is
// done, then closes out.
func (s *Source) Start(ctx context.Context, out chan<- demod.Block) error {
	defer close(out)
	var seq uint64
	start := time.Now()
	var sent float64
	empty := true
	for {
		samples, err := s.ReadBlock()
		if errors.Is(err, io.EOF) && s.Loop && s.seek != nil && !empty {
			empty = true
			if _, err := s.seek.Seek(0, io.SeekStart); err != nil {
				return fmt.Errorf("iqfile: rewinding: %w", err)
			}
			s.r.(*bufio.Reader).Reset(s.seek.(io.Reader))
			log.Debug("[iqfile] Rewinding input")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("iqfile: %w", err)
		}
		empty = false
		if s.Rate > 0 {
			sent += float64(len(samples))
			if ahead := time.Duration(sent/s.Rate*float64(time.Second)) - time.Since(start); ahead > 0 {
				select {
				case <-time.After(ahead):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		select {
		case out <- demod.Block{Seq: seq, Samples: samples}:
			seq++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Sink writes sample blocks to a cf32 stream.
type Sink struct {
	w       *bufio.Writer
	buf     []byte
	Samples uint64
}

func NewSink(w io.Writer) *Sink {
	return &Sink{w: bufio.NewWriterSize(w, 1<<16)}
}

func (s *Sink) Write(samples []complex64) error {
	if need := len(samples) * sampleBytes; cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	b := s.buf[:len(samples)*sampleBytes]
	encode(b, samples)
	if _, err := s.w.Write(b); err != nil {
		return fmt.Errorf("iqfile: %w", err)
	}
	s.Samples += uint64(len(samples))
	return nil
}

// Start writes blocks from in until it is closed or ctx is done, then
// flushes.
func (s *Sink) Start(ctx context.Context, in <-chan []complex64) error {
	for {
		select {
		case <-ctx.Done():
			s.w.Flush()
			return ctx.Err()
		case samples, ok := <-in:
			if !ok {
				return s.w.Flush()
			}
			if err := s.Write(samples); err != nil {
				return err
			}
		}
	}
}

func (s *Sink) Flush() error {
	return s.w.Flush()
}
