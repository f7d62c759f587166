package tzif

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestHeader_Write(t *testing.T) {
	buf := bytes.Buffer{}
	header := Header{
		Version:  V2,
		Isutcnt:  1,
		Isstdcnt: 2,
		Leapcnt:  3,
		Timecnt:  4,
		Typecnt:  5,
		Charcnt:  6,
	}
	if err := header.Write(&buf); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	want := []byte{
		'T', 'Z', 'i', 'f',
		'2',
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
		0, 0, 0, 1, // isutcnt
		0, 0, 0, 2, // isstdcnt
		0, 0, 0, 3, // leapcnt
		0, 0, 0, 4, // timecnt
		0, 0, 0, 5, // typecnt
		0, 0, 0, 6, // charcnt
	}
	if diff := cmp.Diff(want, buf.Bytes()); diff != "" {
		t.Errorf("Write() mismatch (-want +got):\n%s", diff)
	}

	got, err := ReadHeader(bytes.NewReader(want))
	if err != nil {
		t.Fatalf("ReadHeader() failed: %v", err)
	}
	if diff := cmp.Diff(header, got); diff != "" {
		t.Errorf("ReadHeader() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadHeader_InvalidMagic(t *testing.T) {
	_, err := ReadHeader(strings.NewReader("TZig2"))
	if err == nil || !strings.Contains(err.Error(), "invalid magic") {
		t.Errorf("ReadHeader() error = %v, want invalid magic", err)
	}
}

// utcWithLeapSeconds is example B.1 of RFC 8536.
func utcWithLeapSeconds() DataBlock {
	return DataBlock{
		LocalTimeTypes: []LocalTimeType{{Utoff: 0, Dst: false, Idx: 0}},
		Designations:   []byte("UTC\x00"),
		LeapSeconds: []LeapSecond{
			{78796800, 1}, {94694401, 2}, {126230402, 3}, {157766403, 4},
			{189302404, 5}, {220924805, 6}, {252460806, 7}, {283996807, 8},
			{315532808, 9}, {362793609, 10}, {394329610, 11}, {425865611, 12},
			{489024012, 13}, {567993613, 14}, {631152014, 15}, {662688015, 16},
			{709948816, 17}, {741484817, 18}, {773020818, 19}, {820454419, 20},
			{867715220, 21}, {915148821, 22}, {1136073622, 23}, {1230768023, 24},
			{1341100824, 25}, {1435708825, 26}, {1483228826, 27},
		},
		StandardWallIndicators: []bool{false},
		UTLocalIndicators:      []bool{false},
	}
}

// pacificHonolulu is example B.2 of RFC 8536.
func pacificHonolulu() DataBlock {
	return DataBlock{
		TransitionTimes: []int64{
			-2334101314,
			-1157283000,
			-1155436200,
			-880198200,
			-769395600,
			-765376200,
			-712150200,
		},
		TransitionTypes: []uint8{1, 2, 1, 3, 4, 1, 5},
		LocalTimeTypes: []LocalTimeType{
			{Utoff: -37886, Dst: false, Idx: 0},
			{Utoff: -37800, Dst: false, Idx: 4},
			{Utoff: -34200, Dst: true, Idx: 8},
			{Utoff: -34200, Dst: true, Idx: 12},
			{Utoff: -34200, Dst: true, Idx: 16},
			{Utoff: -36000, Dst: false, Idx: 4},
		},
		Designations:           []byte("LMT\x00HST\x00HDT\x00HWT\x00HPT\x00"),
		StandardWallIndicators: []bool{false, false, false, false, true, false},
		UTLocalIndicators:      []bool{false, false, false, false, true, false},
	}
}

func TestV1FileRepresentingUTCWithLeapSeconds(t *testing.T) {
	d := New(V1, utcWithLeapSeconds(), "ignored")

	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	// 44 octets of header, 6 for the time type, 4 for "UTC\x00",
	// 27 leap seconds of 8 octets and two indicators.
	if got, want := buf.Len(), 44+6+4+27*8+2; got != want {
		t.Errorf("Encode() wrote %d octets, want %d", got, want)
	}
	if got := buf.Bytes()[4]; got != byte(V1) {
		t.Errorf("Encode() wrote version %#x, want %#x", got, byte(V1))
	}

	decoded, err := DecodeData(&buf)
	if err != nil {
		t.Fatalf("DecodeData() failed: %v", err)
	}
	if diff := cmp.Diff(d, decoded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("DecodeData() mismatch (-want +got):\n%s", diff)
	}
	if decoded.TZString() != "" {
		t.Errorf("TZString() = %q, want empty for V1", decoded.TZString())
	}
	if err := Validate(decoded); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestV2FileRepresentingPacificHonolulu(t *testing.T) {
	d := New(V2, pacificHonolulu(), "HST10")

	// The first transition does not fit in 32 bits.
	if got := len(d.V1Data.TransitionTimes); got != 6 {
		t.Errorf("len(V1Data.TransitionTimes) = %d, want 6", got)
	}
	if d.V1Header.Version != V2 {
		t.Errorf("V1Header.Version = %v, want %v", d.V1Header.Version, V2)
	}

	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("\nHST10\n")) {
		t.Errorf("Encode() did not end with the footer")
	}

	decoded, err := DecodeData(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeData() failed: %v", err)
	}
	if diff := cmp.Diff(d, decoded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("DecodeData() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(pacificHonolulu(), decoded.Block(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Block() mismatch (-want +got):\n%s", diff)
	}
	if err := Validate(decoded); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestV3FileRepresentingAsiaJerusalem(t *testing.T) {
	// This is example B.3 of RFC 8536 with a consistent version 1 header.
	in := []byte{
		// v1 header
		0x54, 0x5a, 0x69, 0x66, // magic
		0x33, // version
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // isutcnt
		0x00, 0x00, 0x00, 0x00, // isstdcnt
		0x00, 0x00, 0x00, 0x00, // leapcnt
		0x00, 0x00, 0x00, 0x00, // timecnt
		0x00, 0x00, 0x00, 0x00, // typecnt
		0x00, 0x00, 0x00, 0x00, // charcnt
		// v3 header
		0x54, 0x5a, 0x69, 0x66, // magic
		0x33, // version
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x01, // isutcnt
		0x00, 0x00, 0x00, 0x01, // isstdcnt
		0x00, 0x00, 0x00, 0x00, // leapcnt
		0x00, 0x00, 0x00, 0x01, // timecnt
		0x00, 0x00, 0x00, 0x01, // typecnt
		0x00, 0x00, 0x00, 0x04, // charcnt
		// v3 block
		0x00, 0x00, 0x00, 0x00, // trans time[0]
		0x7f, 0xe8, 0x17, 0x80,
		0x00, // trans type[0]
		// localtimetype[0]
		0x00, 0x00, 0x1c, 0x20, // utcoff
		0x00,                   // isdst
		0x00,                   // desigidx
		0x49, 0x53, 0x54, 0x00, // designations[0]
		0x01, // standard/wall[0]
		0x01, // UT/local[0]
		// v3 footer
		0x0a, // NL
		'I', 'S', 'T', '-', '2', 'I', 'D', 'T', ',',
		'M', '3', '.', '4', '.', '4', '/', '2', '6', ',',
		'M', '1', '0', '.', '5', '.', '0',
		0x0a, // NL
	}
	d, err := DecodeData(bytes.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeData() failed: %v", err)
	}
	want := DataBlock{
		TransitionTimes:        []int64{2145916800},
		TransitionTypes:        []uint8{0},
		LocalTimeTypes:         []LocalTimeType{{Utoff: 7200, Dst: false, Idx: 0}},
		Designations:           []byte("IST\x00"),
		StandardWallIndicators: []bool{true},
		UTLocalIndicators:      []bool{true},
	}
	if diff := cmp.Diff(want, d.Block()); diff != "" {
		t.Errorf("Block() mismatch (-want +got):\n%s", diff)
	}
	if got, want := d.TZString(), "IST-2IDT,M3.4.4/26,M10.5.0"; got != want {
		t.Errorf("TZString() = %q, want %q", got, want)
	}

	// The empty version 1 block violates the typecnt and charcnt rules.
	err = Validate(d)
	if err == nil {
		t.Fatal("Validate() = nil, want errors for the empty v1 block")
	}
	for _, s := range []string{"invalid v1 typecnt", "invalid v1 charcnt"} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("Validate() = %v, want it to contain %q", err, s)
		}
	}
	if strings.Contains(err.Error(), "v2") || strings.Contains(err.Error(), "footer") {
		t.Errorf("Validate() = %v, want no v2 or footer errors", err)
	}

	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if diff := cmp.Diff(in, buf.Bytes()); diff != "" {
		t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeData_Truncated(t *testing.T) {
	var buf bytes.Buffer
	if err := New(V2, pacificHonolulu(), "HST10").Encode(&buf); err != nil {
		t.Fatal(err)
	}
	full := buf.Bytes()
	for _, n := range []int{3, 30, 60, len(full) / 2, len(full) - 1} {
		_, err := DecodeData(bytes.NewReader(full[:n]))
		if err == nil {
			t.Errorf("DecodeData(%d of %d octets) = nil error", n, len(full))
			continue
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			t.Errorf("DecodeData(%d of %d octets) = %v, want EOF", n, len(full), err)
		}
	}
}

func TestDesignation(t *testing.T) {
	b := pacificHonolulu()
	cases := []struct {
		idx  uint8
		want string
	}{
		{0, "LMT"},
		{4, "HST"},
		{16, "HPT"},
		{17, "PT"},
		{19, ""},
		{200, ""},
	}
	for _, c := range cases {
		if got := b.Designation(c.idx); got != c.want {
			t.Errorf("Designation(%d) = %q, want %q", c.idx, got, c.want)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(b *DataBlock)
		tz     string
		want   string
	}{
		{
			name: "transitions out of order",
			modify: func(b *DataBlock) {
				b.TransitionTimes[2], b.TransitionTimes[3] = b.TransitionTimes[3], b.TransitionTimes[2]
			},
			tz:   "HST10",
			want: "invalid v2 transition times",
		},
		{
			name:   "transition type out of range",
			modify: func(b *DataBlock) { b.TransitionTypes[0] = 6 },
			tz:     "HST10",
			want:   "invalid v2 transition type 0",
		},
		{
			name:   "designation index out of range",
			modify: func(b *DataBlock) { b.LocalTimeTypes[1].Idx = 20 },
			tz:     "HST10",
			want:   "designation index 20 out of range",
		},
		{
			name:   "missing null terminator",
			modify: func(b *DataBlock) { b.Designations[len(b.Designations)-1] = 'X' },
			tz:     "HST10",
			want:   "missing null terminator",
		},
		{
			name:   "UT indicator without standard indicator",
			modify: func(b *DataBlock) { b.StandardWallIndicators[4] = false },
			tz:     "HST10",
			want:   "type 4 is UT but not standard time",
		},
		{
			name:   "unparsable footer",
			modify: func(b *DataBlock) {},
			tz:     "HST",
			want:   "invalid footer",
		},
		{
			name:   "footer disagrees with last transition",
			modify: func(b *DataBlock) {},
			tz:     "HST9",
			want:   "inconsistent footer",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := pacificHonolulu()
			c.modify(&b)
			d := New(V2, b, c.tz)
			err := Validate(d)
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", c.want)
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, c.want)
			}
		})
	}
}
