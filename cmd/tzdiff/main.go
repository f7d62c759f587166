package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ngrash/go-temporal/internal/config"
	"github.com/ngrash/go-temporal/timezone"
	"github.com/ngrash/go-temporal/tzif"
)

var (
	configFlag = flag.String("config", "", "YAML configuration file")
	fromFlag   = flag.Int("from", 1970, "First year of the compared transitions")
	toFlag     = flag.Int("to", 2037, "Year after the last compared transition")
	rawFlag    = flag.Bool("raw", false, "Also diff the decoded TZif data")
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// transition is an offset change as observed by the engine.
type transition struct {
	At     int64
	Offset string
	Abbr   string
	DST    bool
}

func run() error {
	flag.Parse()
	args := flag.Args()
	if len(args) != 2 {
		return errors.New("Usage: tzdiff <tzif file A> <tzif file B>")
	}
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	adata, a, err := load(args[0])
	if err != nil {
		return err
	}
	bdata, b, err := load(args[1])
	if err != nil {
		return err
	}

	if *rawFlag {
		if diff := cmp.Diff(adata, bdata); diff != "" {
			fmt.Println("data is different: -A +B")
			fmt.Println(diff)
		}
	}

	from := yearStart(*fromFlag)
	to := yearStart(*toFlag)
	at, bt := transitions(a, from, to), transitions(b, from, to)
	logger.Debug("transitions compared", "a", len(at), "b", len(bt), "from", from, "to", to)
	if diff := cmp.Diff(at, bt); diff != "" {
		fmt.Println("zones are different: -A +B")
		fmt.Println(diff)
	} else {
		fmt.Println("zones are identical")
	}
	return nil
}

func load(path string) (tzif.Data, *timezone.Zone, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return tzif.Data{}, nil, err
	}
	data, err := tzif.DecodeData(bytes.NewReader(b))
	if err != nil {
		return tzif.Data{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	z, err := timezone.FromTZif(path, data)
	if err != nil {
		return tzif.Data{}, nil, err
	}
	return data, z, nil
}

func yearStart(year int) int64 {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
}

// transitions lists the offset changes of z in [from, to) together with the
// local time type in effect at from.
func transitions(z *timezone.Zone, from, to int64) []transition {
	lt := z.Lookup(from)
	out := []transition{{At: from, Offset: timezone.FormatOffset(lt.Offset * 1e9), Abbr: lt.Abbr, DST: lt.DST}}
	for t, ok := z.NextTransition(from); ok && t < to; t, ok = z.NextTransition(t) {
		lt := z.Lookup(t)
		out = append(out, transition{At: t, Offset: timezone.FormatOffset(lt.Offset * 1e9), Abbr: lt.Abbr, DST: lt.DST})
	}
	return out
}
