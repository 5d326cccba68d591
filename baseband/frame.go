package baseband

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/iottrends-tech/dvb-s2-SDR/modcod"
	"github.com/sigurn/crc8"
)

// ChunkSize is the largest input chunk, in bytes, carried by one BBFRAME.
// Transport packets may cross frame boundaries, so both stream types fill
// the whole data field.
func ChunkSize(p modcod.Profile, st StreamType) int {
	return p.DataFieldBits() / 8
}

// NoSyncD is the SYNCD value of a data field in which no packet starts.
const NoSyncD = 0xFFFF

// Framer builds scrambled BBFRAMEs from input chunks. In transport stream
// mode the chunks are consecutive pieces of a packet stream, cut anywhere.
type Framer struct {
	profile modcod.Profile
	stream  StreamType
	rolloff uint8
	kbch    int
	// Packet phase: bytes of the current packet already framed, and the
	// running CRC-8 over them.
	pos int
	crc uint8
	// CRC-8 of the last complete packet, carried in place of the next
	// packet's sync byte.
	lastCRC uint8
	buf     []byte
}

func NewFramer(p modcod.Profile, st StreamType, rolloff float64) (*Framer, error) {
	if ChunkSize(p, st) == 0 {
		return nil, modcod.Unsupported("stream_type", st.String(), "data field too small for "+p.Name())
	}
	return &Framer{
		profile: p,
		stream:  st,
		rolloff: RolloffCode(rolloff),
		kbch:    p.Kbch(),
		buf:     make([]byte, p.Kbch()/8),
	}, nil
}

func (f *Framer) ChunkSize() int {
	return ChunkSize(f.profile, f.stream)
}

// Frame writes the Kbch bit BBFRAME for chunk into dst. Short chunks are
// padded with zeros and signalled through DFL. A rejected chunk leaves the
// packet phase untouched.
func (f *Framer) Frame(dst []uint8, chunk []byte) error {
	if len(dst) < f.kbch {
		return fmt.Errorf("baseband: output has room for %d bits, want %d", len(dst), f.kbch)
	}
	if len(chunk) > f.ChunkSize() {
		return fmt.Errorf("%w: %d > %d bytes", ErrChunkTooLarge, len(chunk), f.ChunkSize())
	}
	h := Header{
		Stream:  f.stream,
		Rolloff: f.rolloff,
		DFL:     uint16(len(chunk) * 8),
	}
	clear(f.buf)
	data := f.buf[HeaderBytes:]
	copy(data, chunk)

	if f.stream == TransportStream {
		first := (TSPacketSize - f.pos) % TSPacketSize
		for off := first; off < len(chunk); off += TSPacketSize {
			if chunk[off] != TSSyncByte {
				return fmt.Errorf("%w: packet at offset %d has sync byte %#02x", ErrMisaligned, off, chunk[off])
			}
		}
		h.UPL = TSPacketSize * 8
		h.Sync = TSSyncByte
		h.SyncD = NoSyncD
		if first < len(chunk) {
			h.SyncD = uint16(first * 8)
		}
		f.packetize(data[:len(chunk)])
	}

	hdr := h.Bytes()
	copy(f.buf, hdr[:])
	clear(dst[:f.kbch])
	bytesToBits(dst, f.buf[:HeaderBytes+len(chunk)])
	Scramble(dst[:f.kbch])
	return nil
}

// packetize replaces sync bytes with the CRC-8 of the previous packet,
// carrying the packet phase across calls.
func (f *Framer) packetize(data []byte) {
	for len(data) > 0 {
		if f.pos == 0 {
			data[0] = f.lastCRC
			data = data[1:]
			f.pos = 1
			f.crc = crc8.Init(crcTable)
			continue
		}
		n := min(TSPacketSize-f.pos, len(data))
		f.crc = crc8.Update(f.crc, data[:n], crcTable)
		data = data[n:]
		f.pos += n
		if f.pos == TSPacketSize {
			f.lastCRC = crc8.Complete(f.crc, crcTable)
			f.pos = 0
		}
	}
}

// Deframer recovers input chunks from descrambled BBFRAME bits.
type Deframer struct {
	profile modcod.Profile
	stream  StreamType
	kbch    int
	buf     []byte
	out     []byte

	// pkt holds the start of a packet that continues in the next frame.
	pkt     []byte
	synced  bool
	lastCRC uint8
	haveCRC bool

	CRCErrors int
}

func NewDeframer(p modcod.Profile, st StreamType) *Deframer {
	return &Deframer{
		profile: p,
		stream:  st,
		kbch:    p.Kbch(),
		buf:     make([]byte, p.Kbch()/8),
		pkt:     make([]byte, 0, TSPacketSize),
	}
}

// Reset forgets the packet fragment and CRC carried between frames, for use
// after a gap in the frame sequence.
func (d *Deframer) Reset() {
	d.pkt = d.pkt[:0]
	d.synced = false
	d.haveCRC = false
}

// Deframe descrambles a BBFRAME in place and returns its payload. The
// returned slice is valid until the next call. In transport stream mode
// the payload is the packets completed by this frame with their sync bytes
// restored; a packet whose CRC-8 does not match is counted in CRCErrors
// but still delivered.
func (d *Deframer) Deframe(bits []uint8) ([]byte, error) {
	if len(bits) != d.kbch {
		return nil, fmt.Errorf("%w: frame has %d bits, want %d", ErrBadHeader, len(bits), d.kbch)
	}
	Scramble(bits)
	bitsToBytes(d.buf, bits)

	h, err := ParseHeader(d.buf)
	if err != nil {
		return nil, err
	}
	if h.Stream != d.stream {
		return nil, fmt.Errorf("%w: stream type %s, session expects %s", ErrBadHeader, h.Stream, d.stream)
	}
	if int(h.DFL) > d.profile.DataFieldBits() || h.DFL%8 != 0 {
		return nil, fmt.Errorf("%w: DFL %d", ErrBadHeader, h.DFL)
	}
	data := d.buf[HeaderBytes : HeaderBytes+int(h.DFL)/8]
	if d.stream != TransportStream {
		return data, nil
	}

	if h.UPL != TSPacketSize*8 || (h.SyncD != NoSyncD && (h.SyncD%8 != 0 || h.SyncD >= h.DFL)) {
		return nil, fmt.Errorf("%w: UPL %d SYNCD %d DFL %d", ErrBadHeader, h.UPL, h.SyncD, h.DFL)
	}
	first := len(data)
	if h.SyncD != NoSyncD {
		first = int(h.SyncD) / 8
	}
	d.out = d.out[:0]
	if d.synced && !d.continues(first, h.SyncD == NoSyncD) {
		log.Debugf("[baseband] Dropping %d byte packet fragment, SYNCD %d", len(d.pkt), h.SyncD)
		d.Reset()
	}
	if d.synced {
		d.collect(data[:first], h.Sync)
	}
	if d.synced || h.SyncD != NoSyncD {
		d.synced = true
		d.collect(data[first:], h.Sync)
	}
	return d.out, nil
}

// continues reports whether a data field whose first packet starts at byte
// first picks up where the carried fragment ends.
func (d *Deframer) continues(first int, noStart bool) bool {
	frag := len(d.pkt)
	if noStart {
		return first == 0 || (frag > 0 && frag+first < TSPacketSize)
	}
	return (frag == 0 && first == 0) || (frag > 0 && frag+first == TSPacketSize)
}

// collect appends packet bytes, emitting each packet as it completes.
func (d *Deframer) collect(b []byte, sync uint8) {
	for len(b) > 0 {
		n := min(TSPacketSize-len(d.pkt), len(b))
		d.pkt = append(d.pkt, b[:n]...)
		b = b[n:]
		if len(d.pkt) < TSPacketSize {
			return
		}
		if d.haveCRC && d.pkt[0] != d.lastCRC {
			d.CRCErrors++
		}
		d.pkt[0] = sync
		d.lastCRC = CRC8(d.pkt[1:])
		d.haveCRC = true
		d.out = append(d.out, d.pkt...)
		d.pkt = d.pkt[:0]
	}
}
