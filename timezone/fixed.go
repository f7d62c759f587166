package timezone

// FixedZone is a zone with a constant offset, identified as ±HH:MM or UTC.
type FixedZone struct {
	id     string
	offset int64 // seconds
}

// UTC is the zone with offset zero.
var UTC = &FixedZone{id: "UTC"}

// Fixed returns a zone with the given constant offset in seconds east of UTC.
func Fixed(offsetSeconds int64) *FixedZone {
	return &FixedZone{
		id:     FormatOffset(offsetSeconds * nsPerSecond),
		offset: offsetSeconds,
	}
}

func (z *FixedZone) ID() string { return z.id }

func (z *FixedZone) Kind() Kind { return KindIANA }

func (z *FixedZone) String() string { return z.id }

// OffsetSeconds returns the constant offset.
func (z *FixedZone) OffsetSeconds() int64 { return z.offset }

func (z *FixedZone) OffsetNanosecondsFor(int64) int64 {
	return z.offset * nsPerSecond
}

func (z *FixedZone) PossibleOffsets(int64) []int64 {
	return []int64{z.offset * nsPerSecond}
}

// NextTransition reports that fixed zones never change their offset.
func (z *FixedZone) NextTransition(int64) (int64, bool) { return 0, false }

// PreviousTransition reports that fixed zones never change their offset.
func (z *FixedZone) PreviousTransition(int64) (int64, bool) { return 0, false }
