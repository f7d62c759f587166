package timezone

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ngrash/go-temporal/errs"
)

// DefaultZoneinfo is where TZif files are read from unless WithFS is given.
const DefaultZoneinfo = "/usr/share/zoneinfo"

// Metrics counts zone resolution in a Registry.
type Metrics struct {
	ZonesLoaded  prometheus.Counter
	LoadFailures prometheus.Counter
	CacheHits    prometheus.Counter
}

// NewMetrics creates the registry metrics and registers them with reg. A nil
// reg creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ZonesLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "temporal_timezone_zones_loaded_total",
			Help: "Total number of TZif zones compiled",
		}),
		LoadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "temporal_timezone_load_failures_total",
			Help: "Total number of zone identifiers that failed to resolve",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "temporal_timezone_cache_hits_total",
			Help: "Total number of zone lookups served from memory",
		}),
	}
}

// Registry resolves zone identifiers. Each TZif zone is compiled at most once
// and then shared; concurrent first requests for the same identifier wait for
// one load. Rule-based zones are resolved only after Register.
type Registry struct {
	fsys    fs.FS
	logger  *slog.Logger
	metrics *Metrics

	zones sync.Map // identifier -> TimeZone
	rules sync.Map // identifier -> *RuleZone
	group singleflight.Group
}

// Option configures a Registry.
type Option func(r *Registry)

// WithFS reads TZif files from fsys, with paths such as "America/New_York".
func WithFS(fsys fs.FS) Option {
	return func(r *Registry) {
		r.fsys = fsys
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry creates a registry reading from DefaultZoneinfo.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	if r.fsys == nil {
		r.fsys = os.DirFS(DefaultZoneinfo)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.metrics == nil {
		r.metrics = NewMetrics(nil)
	}
	return r
}

// Register makes a rule-based zone resolvable by its identifier. Identifiers
// of fixed offsets and UTC cannot be taken.
func (r *Registry) Register(z *RuleZone) error {
	id := z.ID()
	if _, ok := fixedZone(id); ok {
		return errs.Range("cannot register rule zone under reserved identifier %q", id)
	}
	if _, loaded := r.rules.LoadOrStore(id, z); loaded {
		return errs.Range("rule zone %q already registered", id)
	}
	r.logger.Debug("rule zone registered", "id", id, "observances", len(z.obs))
	return nil
}

// IsIANA reports whether id resolves to a named zone rather than a registered
// rule-based one. It does not load the zone.
func (r *Registry) IsIANA(id string) bool {
	if _, ok := r.rules.Load(id); ok {
		return false
	}
	if _, ok := fixedZone(id); ok {
		return true
	}
	if _, ok := r.zones.Load(id); ok {
		return true
	}
	if !validZoneName(id) {
		return false
	}
	info, err := fs.Stat(r.fsys, id)
	return err == nil && !info.IsDir()
}

func fixedZone(id string) (TimeZone, bool) {
	if strings.EqualFold(id, "UTC") || strings.EqualFold(id, "Etc/UTC") || strings.EqualFold(id, "Z") {
		return UTC, true
	}
	if off, ok := ParseOffsetID(id); ok {
		return Fixed(off), true
	}
	return nil, false
}

func validZoneName(id string) bool {
	return id != "" && fs.ValidPath(id) && !strings.HasPrefix(path.Base(id), ".")
}

// Get resolves an identifier to a zone.
func (r *Registry) Get(id string) (TimeZone, error) {
	if z, ok := fixedZone(id); ok {
		return z, nil
	}
	if z, ok := r.rules.Load(id); ok {
		return z.(*RuleZone), nil
	}
	if z, ok := r.zones.Load(id); ok {
		r.metrics.CacheHits.Inc()
		return z.(TimeZone), nil
	}
	if !validZoneName(id) {
		r.metrics.LoadFailures.Inc()
		return nil, errs.Range("invalid time zone identifier %q", id)
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		if z, ok := r.zones.Load(id); ok {
			return z, nil
		}
		z, err := r.load(id)
		if err != nil {
			return nil, err
		}
		r.zones.Store(id, z)
		return z, nil
	})
	if err != nil {
		r.metrics.LoadFailures.Inc()
		r.logger.Warn("time zone load failed", "id", id, "error", err)
		return nil, err
	}
	return v.(TimeZone), nil
}

func (r *Registry) load(id string) (TimeZone, error) {
	f, err := r.fsys.Open(id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Range("unknown time zone %q", id)
		}
		return nil, errs.Wrap(err, errs.CodeRange, "open time zone "+id)
	}
	defer f.Close()

	z, err := Load(id, f)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeRange, "load time zone "+id)
	}
	r.metrics.ZonesLoaded.Inc()
	r.logger.Debug("time zone loaded", "id", id, "transitions", len(z.times), "footer", z.rule != nil)
	return z, nil
}

// Preload resolves the given identifiers concurrently and returns the first error.
func (r *Registry) Preload(ctx context.Context, ids ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := r.Get(id)
			return err
		})
	}
	return g.Wait()
}
