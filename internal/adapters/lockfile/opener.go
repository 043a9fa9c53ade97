package lockfile

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.LockStoreOpener = (*Opener)(nil)

const defaultRetryDelay = 100 * time.Millisecond

// Opener opens lock documents.
type Opener struct {
	fs         afero.Fs
	logger     ports.Logger
	fileLock   bool
	retryDelay time.Duration
}

// Option configures an Opener.
type Option func(*Opener)

// WithFileLock holds an advisory flock on "<document>.lock" while the store is open.
// The lock is taken on the host filesystem, so it only makes sense with afero.OsFs.
func WithFileLock() Option {
	return func(o *Opener) {
		o.fileLock = true
	}
}

// WithRetryDelay sets how often a held lock is polled.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Opener) {
		o.retryDelay = d
	}
}

// NewOpener creates a new Opener.
func NewOpener(fsys afero.Fs, logger ports.Logger, opts ...Option) *Opener {
	o := &Opener{
		fs:         fsys,
		logger:     logger,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open loads the document at path, creating it when missing or corrupt.
// With file locking enabled, Open waits for the lock until ctx is done when ctx
// has a deadline, and makes a single attempt otherwise.
func (o *Opener) Open(ctx context.Context, path string) (ports.LockStore, error) {
	s := &Store{
		fs:      o.fs,
		path:    path,
		logger:  o.logger,
		entries: make(map[string]domain.Fingerprint),
	}

	if o.fileLock {
		lk, err := o.acquire(ctx, path+domain.LockSuffix)
		if err != nil {
			return nil, err
		}
		s.lock = lk
	}

	if err := s.load(); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

func (o *Opener) acquire(ctx context.Context, path string) (*flock.Flock, error) {
	lk := flock.New(path)

	var (
		locked bool
		err    error
	)
	if _, ok := ctx.Deadline(); ok {
		locked, err = lk.TryLockContext(ctx, o.retryDelay)
	} else {
		locked, err = lk.TryLock()
	}

	switch {
	case locked:
		return lk, nil
	case err == nil, errors.Is(err, context.DeadlineExceeded):
		return nil, zerr.With(zerr.Wrap(domain.ErrLockHeld, "timed out waiting for lock"), "path", path)
	case errors.Is(err, context.Canceled):
		return nil, zerr.Wrap(err, "interrupted while waiting for lock")
	default:
		return nil, errors.Join(domain.ErrLockWriteFailed,
			zerr.With(zerr.Wrap(err, "failed to acquire lock"), "path", path))
	}
}
