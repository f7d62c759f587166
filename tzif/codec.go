package tzif

import (
	"fmt"
	"io"
)

// Data is a decoded TZif file.
type Data struct {
	Version Version

	V1Header Header
	V1Data   DataBlock

	// The version 2+ fields are zero for V1 files.
	V2Header Header
	V2Data   DataBlock
	Footer   Footer
}

// New builds version v data around a 64-bit data block. The version 1 block is
// derived with V1Block. For V1 the TZ string is ignored.
func New(v Version, b DataBlock, tz string) Data {
	v1 := V1Block(b)
	d := Data{
		Version:  v,
		V1Header: v1.Header(v),
		V1Data:   v1,
	}
	if v > V1 {
		d.V2Header = b.Header(v)
		d.V2Data = b
		d.Footer = Footer{TZString: []byte(tz)}
	}
	return d
}

// Block returns the most precise data block: the 64-bit one for version 2+ files.
func (d Data) Block() DataBlock {
	if d.Version > V1 {
		return d.V2Data
	}
	return d.V1Data
}

// TZString returns the footer rule, which is empty for V1 files.
func (d Data) TZString() string {
	if d.Version > V1 {
		return string(d.Footer.TZString)
	}
	return ""
}

// Encode writes the TZif data to w.
// The version 2+ header, data and footer are written only for version 2+.
func (d Data) Encode(w io.Writer) error {
	if err := d.V1Header.Write(w); err != nil {
		return fmt.Errorf("write v1 header: %w", err)
	}
	if err := d.V1Data.Write(w, V1.TimeSize()); err != nil {
		return fmt.Errorf("write v1 data: %w", err)
	}
	if d.Version > V1 {
		if err := d.V2Header.Write(w); err != nil {
			return fmt.Errorf("write v2 header: %w", err)
		}
		if err := d.V2Data.Write(w, d.Version.TimeSize()); err != nil {
			return fmt.Errorf("write v2 data: %w", err)
		}
		if err := d.Footer.Write(w); err != nil {
			return fmt.Errorf("write v2 footer: %w", err)
		}
	}
	return nil
}

// DecodeData reads TZif data from r.
func DecodeData(r io.Reader) (Data, error) {
	var (
		d   Data
		err error
	)
	d.V1Header, err = ReadHeader(r)
	if err != nil {
		return d, fmt.Errorf("read v1 header: %w", err)
	}
	d.Version = d.V1Header.Version

	// The first data block always uses 32-bit times, whatever the version.
	v1 := d.V1Header
	v1.Version = V1
	d.V1Data, err = ReadDataBlock(r, v1)
	if err != nil {
		return d, fmt.Errorf("read v1 data block: %w", err)
	}

	if d.Version > V1 {
		d.V2Header, err = ReadHeader(r)
		if err != nil {
			return d, fmt.Errorf("read v2 header: %w", err)
		}
		if d.V2Header.Version < V2 {
			return d, fmt.Errorf("invalid v2 header version: %v", d.V2Header.Version)
		}
		d.V2Data, err = ReadDataBlock(r, d.V2Header)
		if err != nil {
			return d, fmt.Errorf("read v2 data block: %w", err)
		}
		d.Footer, err = ReadFooter(r)
		if err != nil {
			return d, fmt.Errorf("read footer: %w", err)
		}
	}

	return d, nil
}
