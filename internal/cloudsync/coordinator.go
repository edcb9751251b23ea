// Package cloudsync moves the whole journal between the local store and the remote
// store. Every run is a full replace: identifiers are regenerated on each pass and
// foreign keys are remapped through per-call maps.
package cloudsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/MyAgentHubs/logifyer/internal/db"
	"github.com/MyAgentHubs/logifyer/internal/metrics"
	"github.com/MyAgentHubs/logifyer/internal/remote"
)

// DefaultCallTimeout bounds each remote round-trip.
const DefaultCallTimeout = 15 * time.Second

// SubscriptionFree is written to the profile row on first upload.
const SubscriptionFree = "free"

var (
	// ErrSyncInProgress is returned when a sync is started while another is running.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrNoUser is returned when a sync is requested without a user id.
	ErrNoUser = errors.New("no user id")
	// ErrRemoteHasData is returned by Push when the remote already holds people for the user.
	ErrRemoteHasData = errors.New("remote already holds data for this user")
)

// Direction names which way a sync moved data.
type Direction string

const (
	LocalToCloud Direction = "local_to_cloud"
	CloudToLocal Direction = "cloud_to_local"
)

// Report summarizes one sync run.
type Report struct {
	Direction  Direction `json:"direction"`
	People     int       `json:"people"`
	Categories int       `json:"categories"`
	Incidents  int       `json:"incidents"`
	Settings   bool      `json:"settings"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
}

// Coordinator runs sync operations between one local store and one remote store.
// It is safe for concurrent use; overlapping runs are rejected.
type Coordinator struct {
	local       *db.DB
	remote      remote.Store
	log         *slog.Logger
	metrics     *metrics.Sync
	callTimeout time.Duration
	newID       func() string
	now         func() time.Time

	running atomic.Bool
	signIns singleflight.Group
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithMetrics records run and row counters on m.
func WithMetrics(m *metrics.Sync) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithCallTimeout bounds each remote call; non-positive values keep the default.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

// WithIDGenerator replaces uuid.NewString for remote identifiers.
func WithIDGenerator(fn func() string) Option {
	return func(c *Coordinator) { c.newID = fn }
}

// WithClock replaces time.Now for run timing.
func WithClock(fn func() time.Time) Option {
	return func(c *Coordinator) { c.now = fn }
}

// New returns a Coordinator for local and rs.
func New(local *db.DB, rs remote.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		local:       local,
		remote:      rs,
		log:         slog.Default(),
		callTimeout: DefaultCallTimeout,
		newID:       uuid.NewString,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) acquire() error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	return nil
}

func (c *Coordinator) release() { c.running.Store(false) }

// LocalToCloud uploads every local row under userID with fresh remote identifiers.
func (c *Coordinator) LocalToCloud(ctx context.Context, userID string) (Report, error) {
	if userID == "" {
		return Report{}, ErrNoUser
	}
	if err := c.acquire(); err != nil {
		return Report{}, err
	}
	defer c.release()
	return c.timed(LocalToCloud, func() (Report, error) { return c.push(ctx, userID) })
}

// Push is LocalToCloud for an explicit upload. Every upload writes fresh remote ids, so
// unless overwrite is set it refuses when the remote already holds people for userID.
func (c *Coordinator) Push(ctx context.Context, userID string, overwrite bool) (Report, error) {
	if userID == "" {
		return Report{}, ErrNoUser
	}
	if err := c.acquire(); err != nil {
		return Report{}, err
	}
	defer c.release()

	if !overwrite {
		n, err := c.remotePeople(ctx, userID)
		if err != nil {
			return Report{}, err
		}
		if n > 0 {
			return Report{}, fmt.Errorf("%w: %d people stored remotely", ErrRemoteHasData, n)
		}
	}
	return c.timed(LocalToCloud, func() (Report, error) { return c.push(ctx, userID) })
}

// remotePeople counts the people stored remotely for userID.
func (c *Coordinator) remotePeople(ctx context.Context, userID string) (int, error) {
	var existing []remote.Person
	if err := c.call(ctx, func(ctx context.Context) error {
		return c.remote.SelectWhere(ctx, remote.TablePeople, remote.ColumnUserID, userID, &existing)
	}); err != nil {
		return 0, fmt.Errorf("check remote data: %w", err)
	}
	return len(existing), nil
}

// CloudToLocal replaces the local journal with the rows stored remotely for userID.
func (c *Coordinator) CloudToLocal(ctx context.Context, userID string) (Report, error) {
	if userID == "" {
		return Report{}, ErrNoUser
	}
	if err := c.acquire(); err != nil {
		return Report{}, err
	}
	defer c.release()
	return c.timed(CloudToLocal, func() (Report, error) { return c.pull(ctx, userID) })
}

// ClearLocal removes the user's local data, keeping default categories. It makes no
// remote calls and is idempotent.
func (c *Coordinator) ClearLocal(ctx context.Context) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	if err := c.local.ClearLocalData(ctx); err != nil {
		return fmt.Errorf("clear local data: %w", err)
	}
	c.log.Info("local data cleared")
	return nil
}

// SignOut ends the authenticated session by clearing local data.
func (c *Coordinator) SignOut(ctx context.Context) error {
	return c.ClearLocal(ctx)
}

type signInResult struct {
	dir    Direction
	report Report
}

// SignIn picks the sync direction for a freshly authenticated user: if the remote already
// holds people for userID the local store is replaced from the cloud, otherwise local data
// is uploaded. Concurrent calls for the same user share one run.
func (c *Coordinator) SignIn(ctx context.Context, userID string) (Direction, Report, error) {
	if userID == "" {
		return "", Report{}, ErrNoUser
	}
	v, err, shared := c.signIns.Do(userID, func() (any, error) {
		if err := c.acquire(); err != nil {
			return signInResult{}, err
		}
		defer c.release()

		existing, err := c.remotePeople(ctx, userID)
		if err != nil {
			return signInResult{}, err
		}

		dir := LocalToCloud
		run := c.push
		if existing > 0 {
			dir = CloudToLocal
			run = c.pull
		}
		c.log.Info("sign-in sync", "user", userID, "direction", dir, "remote_people", existing)
		report, err := c.timed(dir, func() (Report, error) { return run(ctx, userID) })
		return signInResult{dir: dir, report: report}, err
	})
	if shared {
		c.log.Debug("sign-in sync shared", "user", userID)
	}
	res, _ := v.(signInResult)
	return res.dir, res.report, err
}

func (c *Coordinator) timed(dir Direction, fn func() (Report, error)) (Report, error) {
	start := c.now()
	report, err := fn()
	report.Direction = dir
	elapsed := c.now().Sub(start)
	c.metrics.Run(string(dir), elapsed, err)

	if err != nil {
		c.log.Error("sync failed", "direction", dir, "error", err, "elapsed", elapsed)
		return report, err
	}
	c.log.Info("sync complete",
		"direction", dir,
		"people", report.People,
		"categories", report.Categories,
		"incidents", report.Incidents,
		"settings", report.Settings,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"elapsed", elapsed,
	)
	return report, nil
}

// call runs fn with the per-call timeout.
func (c *Coordinator) call(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return fn(ctx)
}

// fatal reports whether a per-row error should abort the whole run.
func fatal(ctx context.Context, err error) bool {
	return errors.Is(err, remote.ErrUnreachable) || ctx.Err() != nil
}
