// Package tzif reads and writes the Time Zone Information Format (TZif) of RFC 8536.
// https://datatracker.ietf.org/doc/html/rfc8536
//
// A TZif file carries the transition history of one IANA time zone. The zone
// engine compiles the decoded Data into an offset lookup table; the codec here
// only deals with the binary layout.
package tzif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Multi-octet integers are big-endian two's complement.
var order = binary.BigEndian

// Version identifies the format version of a TZif file. Version 1 stores time
// values in four octets; version 2 and later add a second data block with
// eight-octet time values followed by a footer.
type Version byte

func (v Version) String() string {
	switch v {
	case V1:
		return "V1 (0x00)"
	case V2:
		return "V2 (0x32)"
	case V3:
		return "V3 (0x33)"
	case V4:
		return "V4 (0x34)"
	default:
		return fmt.Sprintf("<undefined version (%d)>", v)
	}
}

const (
	// V1 files contain only the version 1 header and data block.
	V1 Version = 0x00
	// V2 files add a 64-bit data block and a POSIX TZ string footer.
	V2 Version = 0x32
	// V3 files may use the TZ string extensions of RFC 8536 Section 3.3.1:
	// hours in the range -167..167 and DST all year.
	V3 Version = 0x33
	// V4 files may truncate the leap second table, see tzfile(5).
	V4 Version = 0x34
)

// TimeSize returns the number of octets per time value in the data block that
// belongs to a header of this version.
func (v Version) TimeSize() int {
	if v == V1 {
		return 4
	}
	return 8
}

// Magic is "TZif", the first four octets of every header.
var Magic = [4]byte{'T', 'Z', 'i', 'f'}

// Header precedes each data block:
//
//	+---------------+---+
//	|  magic    (4) |ver|
//	+---------------+---+---------------------------------------+
//	|           [unused - reserved for future use] (15)         |
//	+---------------+---------------+---------------+-----------+
//	|  isutcnt  (4) |  isstdcnt (4) |  leapcnt  (4) |
//	+---------------+---------------+---------------+
//	|  timecnt  (4) |  typecnt  (4) |  charcnt  (4) |
//	+---------------+---------------+---------------+
type Header struct {
	Version  Version
	Reserved [15]byte

	Isutcnt  uint32 // UT/local indicators, zero or Typecnt.
	Isstdcnt uint32 // Standard/wall indicators, zero or Typecnt.
	Leapcnt  uint32 // Leap second records.
	Timecnt  uint32 // Transition times.
	Typecnt  uint32 // Local time type records, never zero.
	Charcnt  uint32 // Octets of designations including the trailing NUL, never zero.
}

// Write writes the magic and the header to w.
func (h Header) Write(w io.Writer) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	return binary.Write(w, order, h)
}

// ReadHeader reads a header including its magic.
func ReadHeader(r io.Reader) (Header, error) {
	var (
		h     Header
		magic [4]byte
	)
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return h, fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(magic[:], Magic[:]) {
		return h, fmt.Errorf("invalid magic: %v", magic)
	}
	err := binary.Read(r, order, &h)
	return h, err
}

// DataBlock is the body following a header:
//
//	+---------------------------------------------------------+
//	|  transition times          (timecnt x TIME_SIZE)        |
//	+---------------------------------------------------------+
//	|  transition types          (timecnt)                    |
//	+---------------------------------------------------------+
//	|  local time type records   (typecnt x 6)                |
//	+---------------------------------------------------------+
//	|  time zone designations    (charcnt)                    |
//	+---------------------------------------------------------+
//	|  leap-second records       (leapcnt x (TIME_SIZE + 4))  |
//	+---------------------------------------------------------+
//	|  standard/wall indicators  (isstdcnt)                   |
//	+---------------------------------------------------------+
//	|  UT/local indicators       (isutcnt)                    |
//	+---------------------------------------------------------+
//
// TIME_SIZE is 4 in the version 1 block and 8 in the version 2+ block. Times
// are widened to int64 in memory regardless of their encoded size.
type DataBlock struct {
	// TransitionTimes are Unix seconds in strictly ascending order.
	TransitionTimes []int64

	// TransitionTypes index LocalTimeTypes, one per transition time.
	TransitionTypes []uint8

	LocalTimeTypes []LocalTimeType

	// Designations holds NUL-terminated abbreviations such as "PST\x00PDT\x00".
	Designations []byte

	LeapSeconds []LeapSecond

	StandardWallIndicators []bool
	UTLocalIndicators      []bool
}

// Header returns a header describing b with the given version.
func (b DataBlock) Header(v Version) Header {
	return Header{
		Version:  v,
		Isutcnt:  uint32(len(b.UTLocalIndicators)),
		Isstdcnt: uint32(len(b.StandardWallIndicators)),
		Leapcnt:  uint32(len(b.LeapSeconds)),
		Timecnt:  uint32(len(b.TransitionTimes)),
		Typecnt:  uint32(len(b.LocalTimeTypes)),
		Charcnt:  uint32(len(b.Designations)),
	}
}

// Designation returns the NUL-terminated string starting at idx.
func (b DataBlock) Designation(idx uint8) string {
	if int(idx) >= len(b.Designations) {
		return ""
	}
	s := b.Designations[idx:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s)
}

func writeTime(w io.Writer, t int64, size int) error {
	if size == 4 {
		return binary.Write(w, order, int32(t))
	}
	return binary.Write(w, order, t)
}

func readTime(r io.Reader, size int) (int64, error) {
	if size == 4 {
		var t int32
		err := binary.Read(r, order, &t)
		return int64(t), err
	}
	var t int64
	err := binary.Read(r, order, &t)
	return t, err
}

// Write encodes b with time values of size octets.
func (b DataBlock) Write(w io.Writer, size int) error {
	for _, t := range b.TransitionTimes {
		if err := writeTime(w, t, size); err != nil {
			return err
		}
	}
	if _, err := w.Write(b.TransitionTypes); err != nil {
		return err
	}
	for _, r := range b.LocalTimeTypes {
		if err := r.Write(w); err != nil {
			return err
		}
	}
	if _, err := w.Write(b.Designations); err != nil {
		return err
	}
	for _, r := range b.LeapSeconds {
		if err := writeTime(w, r.Occur, size); err != nil {
			return err
		}
		if err := binary.Write(w, order, r.Corr); err != nil {
			return err
		}
	}
	if err := binary.Write(w, order, b.StandardWallIndicators); err != nil {
		return err
	}
	return binary.Write(w, order, b.UTLocalIndicators)
}

// ReadDataBlock reads the data block described by h.
func ReadDataBlock(r io.Reader, h Header) (DataBlock, error) {
	var (
		b    DataBlock
		size = h.Version.TimeSize()
	)
	if h.Timecnt > 0 {
		b.TransitionTimes = make([]int64, h.Timecnt)
		for i := range b.TransitionTimes {
			t, err := readTime(r, size)
			if err != nil {
				return b, fmt.Errorf("reading transition times: %w", err)
			}
			b.TransitionTimes[i] = t
		}
		b.TransitionTypes = make([]uint8, h.Timecnt)
		if _, err := io.ReadFull(r, b.TransitionTypes); err != nil {
			return b, fmt.Errorf("reading transition types: %w", err)
		}
	}
	if h.Typecnt > 0 {
		b.LocalTimeTypes = make([]LocalTimeType, h.Typecnt)
		if err := binary.Read(r, order, b.LocalTimeTypes); err != nil {
			return b, fmt.Errorf("reading local time type records: %w", err)
		}
	}
	if h.Charcnt > 0 {
		b.Designations = make([]byte, h.Charcnt)
		if _, err := io.ReadFull(r, b.Designations); err != nil {
			return b, fmt.Errorf("reading time zone designations: %w", err)
		}
	}
	if h.Leapcnt > 0 {
		b.LeapSeconds = make([]LeapSecond, h.Leapcnt)
		for i := range b.LeapSeconds {
			occur, err := readTime(r, size)
			if err != nil {
				return b, fmt.Errorf("reading leap second record: %w", err)
			}
			b.LeapSeconds[i].Occur = occur
			if err := binary.Read(r, order, &b.LeapSeconds[i].Corr); err != nil {
				return b, fmt.Errorf("reading leap second record: %w", err)
			}
		}
	}
	if h.Isstdcnt > 0 {
		b.StandardWallIndicators = make([]bool, h.Isstdcnt)
		if err := binary.Read(r, order, b.StandardWallIndicators); err != nil {
			return b, fmt.Errorf("reading standard/wall indicators: %w", err)
		}
	}
	if h.Isutcnt > 0 {
		b.UTLocalIndicators = make([]bool, h.Isutcnt)
		if err := binary.Read(r, order, b.UTLocalIndicators); err != nil {
			return b, fmt.Errorf("reading UT/local indicators: %w", err)
		}
	}
	return b, nil
}

// LeapSecond is a leap second record:
//
//	+---------------+---------------+
//	|  occur (TIME_SIZE)  | corr (4)|
//	+---------------+---------------+
type LeapSecond struct {
	// Occur is the Unix leap time at which the correction applies.
	Occur int64
	// Corr is the total correction (LEAPCORR) on or after Occur.
	Corr int32
}

// LocalTimeType is a six-octet local time type record:
//
//	+---------------+---+---+
//	|  utoff (4)    |dst|idx|
//	+---------------+---+---+
type LocalTimeType struct {
	// Utoff is added to UT to obtain local time, in seconds. It must not be -2**31.
	Utoff int32
	// Dst marks daylight saving time.
	Dst bool
	// Idx selects the designation in DataBlock.Designations.
	Idx uint8
}

// Write encodes the record.
func (r LocalTimeType) Write(w io.Writer) error {
	return binary.Write(w, order, r)
}

// Footer follows the version 2+ data block:
//
//	+---+--------------------+---+
//	| NL|  TZ string (0...)  |NL |
//	+---+--------------------+---+
//
// A nonempty TZ string describes local time after the last transition.
type Footer struct {
	TZString []byte
}

const newline = byte('\n')

// Write writes the footer including both newlines.
func (f Footer) Write(w io.Writer) error {
	buf := make([]byte, 0, len(f.TZString)+2)
	buf = append(buf, newline)
	buf = append(buf, f.TZString...)
	buf = append(buf, newline)
	_, err := w.Write(buf)
	return err
}

// ReadFooter reads a footer up to and including the closing newline.
func ReadFooter(r io.Reader) (Footer, error) {
	var (
		f   Footer
		buf [1]byte
	)
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return f, fmt.Errorf("reading newline: %w", err)
	}
	if buf[0] != newline {
		return f, fmt.Errorf("expected newline: %v", buf[0])
	}
	var b []byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return f, fmt.Errorf("reading TZ string: %w", err)
		}
		if buf[0] == newline {
			break
		}
		b = append(b, buf[0])
	}
	f.TZString = b
	return f, nil
}

// V1Block derives a version 1 data block from a 64-bit one by dropping
// transitions and leap seconds that do not fit in 32 bits.
func V1Block(b DataBlock) DataBlock {
	v1 := b
	v1.TransitionTimes = nil
	v1.TransitionTypes = nil
	for i, t := range b.TransitionTimes {
		if t < math.MinInt32 || t > math.MaxInt32 {
			continue
		}
		v1.TransitionTimes = append(v1.TransitionTimes, t)
		v1.TransitionTypes = append(v1.TransitionTypes, b.TransitionTypes[i])
	}
	v1.LeapSeconds = nil
	for _, l := range b.LeapSeconds {
		if l.Occur <= math.MaxInt32 {
			v1.LeapSeconds = append(v1.LeapSeconds, l)
		}
	}
	return v1
}
