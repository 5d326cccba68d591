package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/iottrends-tech/dvb-s2-SDR/baseband"
)

// Chunker cuts a byte stream into chunks of at most Size bytes, one per
// BBFRAME. In transport stream mode only whole aligned packets are passed
// on, as one continuous stream that chunks cut anywhere; bytes up to the
// next sync byte are dropped whenever alignment is lost.
type Chunker struct {
	r    io.Reader
	Size int
	TS   bool
	buf  []byte
	// pending is unread input; packets holds validated packets.
	pending []byte
	packets []byte
	err     error

	// Dropped counts bytes discarded while resynchronizing to packets.
	Dropped uint64
}

func NewChunker(r io.Reader, size int, ts bool) *Chunker {
	return &Chunker{r: r, Size: size, TS: ts, buf: make([]byte, 1<<16)}
}

// Next returns the next chunk. The remainder is returned once the reader
// is exhausted, then io.EOF.
func (c *Chunker) Next() ([]byte, error) {
	for {
		src := &c.pending
		if c.TS {
			c.validate()
			src = &c.packets
		}
		if len(*src) >= c.Size {
			return take(src, c.Size), nil
		}
		if c.err != nil {
			if len(*src) > 0 {
				return take(src, len(*src)), nil
			}
			c.Dropped += uint64(len(c.pending))
			c.pending = nil
			return nil, c.err
		}
		n, err := c.r.Read(c.buf)
		c.pending = append(c.pending, c.buf[:n]...)
		if err != nil {
			c.err = err
		}
	}
}

// validate moves whole aligned packets from pending to packets.
func (c *Chunker) validate() {
	for {
		c.align()
		if len(c.pending) < baseband.TSPacketSize {
			return
		}
		c.packets = append(c.packets, c.pending[:baseband.TSPacketSize]...)
		c.pending = c.pending[baseband.TSPacketSize:]
	}
}

func (c *Chunker) align() {
	if len(c.pending) == 0 || c.pending[0] == baseband.TSSyncByte {
		return
	}
	i := bytes.IndexByte(c.pending, baseband.TSSyncByte)
	if i < 0 {
		i = len(c.pending)
	}
	log.Debugf("[chunker] Dropping %d bytes to resync on a packet boundary", i)
	c.Dropped += uint64(i)
	c.pending = c.pending[i:]
}

func take(src *[]byte, n int) []byte {
	out := append([]byte(nil), (*src)[:n]...)
	*src = (*src)[n:]
	return out
}

// Start sends chunks until the reader is exhausted or ctx is done, then
// closes out.
func (c *Chunker) Start(ctx context.Context, out chan<- []byte) error {
	defer close(out)
	for {
		chunk, err := c.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		select {
		case out <- chunk:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
