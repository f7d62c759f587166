package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	temporal "github.com/ngrash/go-temporal"
	"github.com/ngrash/go-temporal/internal/config"
	"github.com/ngrash/go-temporal/timezone"
	"github.com/ngrash/go-temporal/tzif"
)

var (
	configFlag      = flag.String("config", "", "YAML configuration file")
	envFlag         = flag.String("env", ".env", "file with TEMPORAL_* variables")
	printV1Flag     = flag.Bool("v1", false, "Always print v1 header and data")
	headerFlag      = flag.Bool("header", true, "Print the TZif header and data blocks")
	transitionsFlag = flag.Int("transitions", 5, "Number of upcoming transitions to print")
	atFlag          = flag.String("at", "", "Resolve a wall-clock time such as 2022-03-13T02:30 in the zone")
	metricsFlag     = flag.Bool("metrics", false, "Print registry metrics on exit")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		return errors.New("Usage: tzinfo [flags] <zone identifier>")
	}
	id := args[0]

	if err := config.LoadEnv(*envFlag); err != nil {
		return err
	}
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	logger := cfg.Logger()
	promReg := prometheus.NewRegistry()
	reg := cfg.Registry(timezone.WithMetrics(timezone.NewMetrics(promReg)))

	if len(cfg.Preload) > 0 {
		if err := reg.Preload(context.Background(), cfg.Preload...); err != nil {
			logger.Warn("preload failed", "error", err)
		}
	}

	if *headerFlag {
		if err := printFile(os.DirFS(cfg.Zoneinfo), id); err != nil {
			return err
		}
	}

	tz, err := reg.Get(id)
	if err != nil {
		return err
	}
	cal, err := cfg.CalendarValue()
	if err != nil {
		return err
	}
	now, err := temporal.NewZonedDateTime(big.NewInt(time.Now().UnixNano()), tz, cal)
	if err != nil {
		return err
	}
	if err := printZoned("Now", now); err != nil {
		return err
	}
	if err := printTransitions(now, *transitionsFlag); err != nil {
		return err
	}

	if *atFlag != "" {
		disambiguation, err := cfg.DisambiguationValue()
		if err != nil {
			return err
		}
		if err := printResolution(tz, *atFlag, disambiguation); err != nil {
			return err
		}
	}

	if *metricsFlag {
		return printMetrics(promReg)
	}
	return nil
}

// printFile dumps the TZif file of id. Identifiers without a file, such as
// UTC or fixed offsets, are skipped.
func printFile(fsys fs.FS, id string) error {
	b, err := fs.ReadFile(fsys, id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil
		}
		return fmt.Errorf("reading file: %w", err)
	}

	r := bytes.NewReader(b)
	data, err := tzif.DecodeData(r)
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	if err := tzif.Validate(data); err != nil {
		fmt.Println("validation:", err)
		fmt.Println()
	}

	printData(data)
	return printRest(r)
}

func printData(d tzif.Data) {
	if d.Version == tzif.V1 || *printV1Flag {
		printBlock(d.V1Header, d.V1Data)
	}
	if d.Version > tzif.V1 {
		printBlock(d.V2Header, d.V2Data)
		printFooter(d.Footer)
	}
}

func printFooter(f tzif.Footer) {
	fmt.Println("Footer")
	fmt.Println("  TZString =", string(f.TZString))
	fmt.Println()
}

func printRest(r *bytes.Reader) error {
	if r.Len() == 0 {
		return nil
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading remaining data: %w", err)
	}
	fmt.Println("remaining data:", len(rest), "bytes")
	fmt.Println(string(rest))
	return nil
}

func printHeader(h tzif.Header) {
	fmt.Println("Header")
	fmt.Println("  version  =", h.Version)
	fmt.Println("  isutcnt  =", h.Isutcnt)
	fmt.Println("  isstdcnt =", h.Isstdcnt)
	fmt.Println("  leapcnt  =", h.Leapcnt)
	fmt.Println("  timecnt  =", h.Timecnt)
	fmt.Println("  typecnt  =", h.Typecnt)
	fmt.Println("  charcnt  =", h.Charcnt)
	fmt.Println()
}

func printBlock(h tzif.Header, b tzif.DataBlock) {
	printHeader(h)

	fmt.Println("Data block", h.Version)
	fmt.Printf("  TransitionTimes (%d) = %v\n", len(b.TransitionTimes), b.TransitionTimes)
	fmt.Printf("  TransitionTypes (%d) = %v\n", len(b.TransitionTypes), b.TransitionTypes)
	fmt.Printf("  LocalTimeTypes (%d) = %+v\n", len(b.LocalTimeTypes), b.LocalTimeTypes)
	fmt.Printf("  Designations (%d) = %v\n", len(b.Designations), strings.Split(strings.TrimSuffix(string(b.Designations), "\x00"), "\x00"))
	fmt.Printf("  LeapSeconds (%d) = %+v\n", len(b.LeapSeconds), b.LeapSeconds)
	fmt.Printf("  StandardWallIndicators (%d) = %v\n", len(b.StandardWallIndicators), b.StandardWallIndicators)
	fmt.Printf("  UTLocalIndicators (%d) = %v\n", len(b.UTLocalIndicators), b.UTLocalIndicators)
	fmt.Println()
}

func printZoned(label string, z temporal.ZonedDateTime) error {
	s, err := z.ToString()
	if err != nil {
		return err
	}
	hours, err := z.HoursInDay()
	if err != nil {
		return err
	}
	fmt.Printf("%s = %s (hours in day %g)\n", label, s, hours)
	return nil
}

func printTransitions(from temporal.ZonedDateTime, n int) error {
	fmt.Println("Transitions")
	z := from
	for i := 0; i < n; i++ {
		next, ok, err := z.NextTransition()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("  none")
			break
		}
		s, err := next.ToString()
		if err != nil {
			return err
		}
		fmt.Println(" ", s)
		z = next
	}
	fmt.Println()
	return nil
}

func printResolution(tz timezone.TimeZone, at string, disambiguation temporal.Disambiguation) error {
	t, err := time.Parse("2006-01-02T15:04", at)
	if err != nil {
		return fmt.Errorf("parse -at: %w", err)
	}
	dt, err := temporal.NewPlainDateTime(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), 0, 0, 0, 0, nil)
	if err != nil {
		return err
	}
	z, err := dt.ToZonedDateTime(tz, disambiguation)
	if err != nil {
		return fmt.Errorf("resolve %s (%v): %w", dt, disambiguation, err)
	}
	return printZoned(fmt.Sprintf("%s (%v)", dt, disambiguation), z)
}

func printMetrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	fmt.Println("Metrics")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Printf("  %s = %g\n", mf.GetName(), m.GetCounter().GetValue())
		}
	}
	return nil
}
