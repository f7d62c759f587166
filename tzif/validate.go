package tzif

import (
	"errors"
	"fmt"

	"github.com/ngrash/go-temporal/internal/tzrule"
)

// Validate checks d against the structural requirements of RFC 8536 and
// returns all violations joined into one error.
func Validate(d Data) error {
	var errs []error
	if d.Version != d.V1Header.Version || (d.Version > V1 && d.V1Header.Version != d.V2Header.Version) {
		errs = append(errs, fmt.Errorf("inconsistent version: file = %v, v1 header = %v, v2 header = %v", d.Version, d.V1Header.Version, d.V2Header.Version))
	}

	errs = append(errs, validateBlock("v1", d.V1Header, d.V1Data)...)

	if d.Version > V1 {
		errs = append(errs, validateBlock("v2", d.V2Header, d.V2Data)...)
		if err := validateFooter(d); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func validateBlock(name string, header Header, data DataBlock) []error {
	var err []error

	// Isutcnt
	if header.Isutcnt != 0 && header.Isutcnt != header.Typecnt {
		err = append(err, fmt.Errorf("invalid %s isutcnt (%d): must be 0 or equal to typecnt (%d)", name, header.Isutcnt, header.Typecnt))
	}
	if len(data.UTLocalIndicators) != int(header.Isutcnt) {
		err = append(err, fmt.Errorf("invalid %s isutcnt: header = %d, data = %d", name, header.Isutcnt, len(data.UTLocalIndicators)))
	}

	// Isstdcnt
	if header.Isstdcnt != 0 && header.Isstdcnt != header.Typecnt {
		err = append(err, fmt.Errorf("invalid %s isstdcnt (%d): must be 0 or equal to typecnt (%d)", name, header.Isstdcnt, header.Typecnt))
	}
	if len(data.StandardWallIndicators) != int(header.Isstdcnt) {
		err = append(err, fmt.Errorf("invalid %s isstdcnt: header = %d, data = %d", name, header.Isstdcnt, len(data.StandardWallIndicators)))
	}
	for i, ut := range data.UTLocalIndicators {
		if ut && i < len(data.StandardWallIndicators) && !data.StandardWallIndicators[i] {
			err = append(err, fmt.Errorf("invalid %s indicators: type %d is UT but not standard time", name, i))
		}
	}

	// Leapcnt
	if len(data.LeapSeconds) != int(header.Leapcnt) {
		err = append(err, fmt.Errorf("invalid %s leapcnt: header = %d, data = %d", name, header.Leapcnt, len(data.LeapSeconds)))
	}

	// Timecnt
	if len(data.TransitionTimes) != int(header.Timecnt) {
		err = append(err, fmt.Errorf("invalid %s timecnt: header = %d, transition times = %d", name, header.Timecnt, len(data.TransitionTimes)))
	}
	if times, types := len(data.TransitionTimes), len(data.TransitionTypes); times != types {
		err = append(err, fmt.Errorf("inconsistent %s transitions: transition times = %d, transition types = %d", name, times, types))
	}
	for i := 1; i < len(data.TransitionTimes); i++ {
		if data.TransitionTimes[i] <= data.TransitionTimes[i-1] {
			err = append(err, fmt.Errorf("invalid %s transition times: time %d is not after time %d", name, i, i-1))
			break
		}
	}
	for i, typ := range data.TransitionTypes {
		if int(typ) >= len(data.LocalTimeTypes) {
			err = append(err, fmt.Errorf("invalid %s transition type %d: index %d out of range", name, i, typ))
		}
	}

	// Typecnt
	if header.Typecnt == 0 {
		err = append(err, fmt.Errorf("invalid %s typecnt: must not be zero", name))
	}
	if len(data.LocalTimeTypes) != int(header.Typecnt) {
		err = append(err, fmt.Errorf("invalid %s typecnt: header = %d, data = %d", name, header.Typecnt, len(data.LocalTimeTypes)))
	}
	for i, lt := range data.LocalTimeTypes {
		if int(lt.Idx) >= len(data.Designations) {
			err = append(err, fmt.Errorf("invalid %s local time type %d: designation index %d out of range", name, i, lt.Idx))
		}
	}

	// Charcnt
	if header.Charcnt == 0 {
		err = append(err, fmt.Errorf("invalid %s charcnt: must not be zero", name))
	}
	if len(data.Designations) != int(header.Charcnt) {
		err = append(err, fmt.Errorf("invalid %s charcnt: header = %d, data = %d", name, header.Charcnt, len(data.Designations)))
	}
	if len(data.Designations) > 0 && data.Designations[len(data.Designations)-1] != 0 {
		err = append(err, fmt.Errorf("invalid %s time zone designations: missing null terminator", name))
	}
	return err
}

func validateFooter(d Data) error {
	tz := d.TZString()
	if tz == "" {
		return nil
	}
	rule, err := tzrule.Parse(tz)
	if err != nil {
		return fmt.Errorf("invalid footer: %w", err)
	}

	// The footer must agree with the last transition.
	b := d.V2Data
	n := len(b.TransitionTimes)
	if n == 0 || n != len(b.TransitionTypes) || int(b.TransitionTypes[n-1]) >= len(b.LocalTimeTypes) {
		return nil
	}
	last := b.LocalTimeTypes[b.TransitionTypes[n-1]]
	off, dst, _ := rule.Lookup(b.TransitionTimes[n-1])
	if off != int64(last.Utoff) || dst != last.Dst {
		return fmt.Errorf("inconsistent footer: TZ string yields offset %d (dst %v) at the last transition, data = %d (dst %v)", off, dst, last.Utoff, last.Dst)
	}
	return nil
}
