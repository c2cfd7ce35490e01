// Package options holds the tunable knobs of a zclient.Client: a plain
// struct with a Default constructor and a Validate method, no flags and
// no file parsing. The functional-options entry points (With...) let
// embedders override just the handful of knobs that matter without
// constructing the struct by hand.
package options

import (
	"os"
	"time"

	"github.com/uestchp/zclient/wire"
	"github.com/uestchp/zclient/zerrors"
	"github.com/uestchp/zclient/zmetrics"
	"github.com/uestchp/zclient/zstats"
)

// Options configures a Client. Construct with Default and override fields
// directly, or pass Option values to Default.
type Options struct {
	// ServPath is the UNIX-domain socket path used when the client is
	// built for UNIX transport. Overridden at runtime via WithServPath;
	// an override that exists but is not a socket file is rejected with
	// a warning and the default kept.
	ServPath string

	// TCPAddr is used instead of ServPath when UseTCP is set.
	UseTCP  bool
	TCPAddr string

	// Connect-retry backoff schedule.
	ShortBackoff    time.Duration
	LongBackoff     time.Duration
	ShortBackoffMax int // fail_count threshold below which ShortBackoff applies
	MaxFailCount    int // fail_count at/above which no further retry is scheduled

	InterfaceAddrEncoding wire.HWAddrEncoding

	// DefaultInformation requests default-route redistribution on
	// connect.
	DefaultInformation bool

	// Stats receives the client's log-worthy events; defaults to
	// zstats.NewLog().
	Stats zstats.Stats

	// Metrics, when non-nil, receives counter updates. nil disables
	// collection.
	Metrics *zmetrics.Metrics
}

// Option mutates an Options value produced by Default.
type Option func(*Options)

// WithServPath overrides the compiled-in UNIX socket path.
func WithServPath(path string) Option {
	return func(o *Options) { o.ServPath = path }
}

// WithTCP switches the client to loopback TCP transport on addr.
func WithTCP(addr string) Option {
	return func(o *Options) {
		o.UseTCP = true
		o.TCPAddr = addr
	}
}

// WithMaxBackoff overrides the long (fail_count>=3) retry backoff.
func WithMaxBackoff(d time.Duration) Option {
	return func(o *Options) { o.LongBackoff = d }
}

// WithInterfaceAddrEncoding picks the wire shape of the interface-add
// notification's hardware-address tail, which must match how the server
// was built.
func WithInterfaceAddrEncoding(enc wire.HWAddrEncoding) Option {
	return func(o *Options) { o.InterfaceAddrEncoding = enc }
}

// WithDefaultInformation requests default-route redistribution.
func WithDefaultInformation() Option {
	return func(o *Options) { o.DefaultInformation = true }
}

// WithStats substitutes the stats sink, e.g. zstats.Noop{} for silence.
func WithStats(st zstats.Stats) Option {
	return func(o *Options) { o.Stats = st }
}

// WithMetrics enables Prometheus collection through m.
func WithMetrics(m *zmetrics.Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

const defaultServPath = "/var/run/quagga/zserv.api"
const defaultTCPAddr = "127.0.0.1:2600"

// Default returns an Options with the stock defaults, then applies opts
// in order. A ServPath override that exists but is not a socket file is
// rejected here: the stats sink gets a warning and the default path is
// kept, so a bad override degrades to the stock endpoint instead of
// failing construction.
func Default(opts ...Option) *Options {
	o := &Options{
		ServPath:              defaultServPath,
		TCPAddr:               defaultTCPAddr,
		ShortBackoff:          10 * time.Second,
		LongBackoff:           60 * time.Second,
		ShortBackoffMax:       3,
		MaxFailCount:          10,
		InterfaceAddrEncoding: wire.HWAddrLengthPrefixed,
		Stats:                 zstats.NewLog(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if !o.UseTCP && !servPathUsable(o.ServPath) {
		o.Stats.ServPathRejected(o.ServPath)
		o.ServPath = defaultServPath
	}
	return o
}

// Validate runs cheap sanity checks once at construction, not on every
// access.
func (o *Options) Validate() error {
	if o.MaxFailCount < 1 || o.ShortBackoffMax < 0 {
		return zerrors.ErrBadOptions
	}
	if o.ShortBackoff <= 0 || o.LongBackoff <= 0 {
		return zerrors.ErrBadOptions
	}
	if o.Stats == nil {
		return zerrors.ErrBadOptions
	}
	return nil
}

// servPathUsable reports whether path can serve as the dial target. A
// path that does not exist yet is usable: the daemon we dial may simply
// not have started. Only a path that exists as something other than a
// socket is rejected.
func servPathUsable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return true
	}
	return fi.Mode()&os.ModeSocket != 0
}
