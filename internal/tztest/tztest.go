// Package tztest builds TZif files in memory so tests never depend on the
// zoneinfo database of the host.
package tztest

import (
	"bytes"
	"testing/fstest"

	"github.com/ngrash/go-temporal/tzif"
)

// Footers maps zone identifiers to the TZ strings used by FS. The zones have
// no transition table, so the rule applies to all times.
var Footers = map[string]string{
	"America/Los_Angeles": "PST8PDT,M3.2.0,M11.1.0",
	"America/New_York":    "EST5EDT,M3.2.0,M11.1.0",
	"Europe/Berlin":       "CET-1CEST,M3.5.0,M10.5.0/3",
	"Australia/Sydney":    "AEST-10AEDT,M10.1.0,M4.1.0/3",
	"Asia/Kolkata":        "IST-5:30",
	"Etc/GMT+7":           "<-07>7",
}

// Encode encodes a version 2 file.
func Encode(b tzif.DataBlock, tz string) []byte {
	var buf bytes.Buffer
	if err := tzif.New(tzif.V2, b, tz).Encode(&buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// FooterOnly returns a file without transitions whose footer rule applies to
// all times. stdOffset and abbr describe the single standard time type.
func FooterOnly(tz string, stdOffset int32, abbr string) []byte {
	return Encode(tzif.DataBlock{
		LocalTimeTypes: []tzif.LocalTimeType{{Utoff: stdOffset, Idx: 0}},
		Designations:   []byte(abbr + "\x00"),
	}, tz)
}

var stdTypes = map[string]struct {
	offset int32
	abbr   string
}{
	"America/Los_Angeles": {-8 * 3600, "PST"},
	"America/New_York":    {-5 * 3600, "EST"},
	"Europe/Berlin":       {1 * 3600, "CET"},
	"Australia/Sydney":    {10 * 3600, "AEST"},
	"Asia/Kolkata":        {5*3600 + 1800, "IST"},
	"Etc/GMT+7":           {-7 * 3600, "-07"},
}

// File returns the TZif file of one of the zones in Footers.
func File(id string) []byte {
	t, ok := stdTypes[id]
	if !ok {
		panic("tztest: unknown zone " + id)
	}
	return FooterOnly(Footers[id], t.offset, t.abbr)
}

// LosAngelesHistory returns a file with a transition table that ends in 2021
// and the US footer rule after it:
//
//	before 1883-11-18T20:00Z  LMT -7:52:58
//	1883-11-18T20:00Z         PST
//	2021-03-14T10:00Z         PDT
//	2021-11-07T09:00Z         PST
func LosAngelesHistory() []byte {
	return Encode(tzif.DataBlock{
		TransitionTimes: []int64{-2717640000, 1615716000, 1636275600},
		TransitionTypes: []uint8{2, 1, 2},
		LocalTimeTypes: []tzif.LocalTimeType{
			{Utoff: -28378, Dst: false, Idx: 0},
			{Utoff: -25200, Dst: true, Idx: 4},
			{Utoff: -28800, Dst: false, Idx: 8},
		},
		Designations: []byte("LMT\x00PDT\x00PST\x00"),
	}, "PST8PDT,M3.2.0,M11.1.0")
}

// FS returns a zoneinfo tree with every zone of Footers.
func FS() fstest.MapFS {
	fsys := fstest.MapFS{}
	for id := range Footers {
		fsys[id] = &fstest.MapFile{Data: File(id)}
	}
	return fsys
}
