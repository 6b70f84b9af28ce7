package twofactor

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockStorage) Activate(ctx context.Context, a Activation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockStorage) ReplaceRecoveryCodes(ctx context.Context, accountID string, hashes []string) error {
	args := m.Called(ctx, accountID, hashes)
	return args.Error(0)
}

func (m *MockStorage) ConsumeRecoveryCode(ctx context.Context, accountID, hash string) (bool, error) {
	args := m.Called(ctx, accountID, hash)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) Disable(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

// racingSessionStore loses every optimistic update.
type racingSessionStore struct {
	*MemorySessionStore
}

func (racingSessionStore) Update(context.Context, *Enrollment, time.Duration) error {
	return ErrRevisionMismatch
}

var errStoreTimeout = errors.New("session store: i/o timeout")

// flakySessionStore fails the Updates numbered in failOn (1-based) with err,
// or errStoreTimeout when err is nil. Like a network store it refuses writes
// on a cancelled context. afterUpdate runs after every successful Update.
type flakySessionStore struct {
	*MemorySessionStore
	failOn      []int
	err         error
	afterUpdate func(e *Enrollment)

	mu      sync.Mutex
	updates int
}

func (f *flakySessionStore) Update(ctx context.Context, e *Enrollment, ttl time.Duration) error {
	f.mu.Lock()
	f.updates++
	fail := slices.Contains(f.failOn, f.updates)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if fail {
		if f.err != nil {
			return f.err
		}
		return errStoreTimeout
	}
	if err := f.MemorySessionStore.Update(ctx, e, ttl); err != nil {
		return err
	}
	if f.afterUpdate != nil {
		f.afterUpdate(e)
	}
	return nil
}

// recordingObserver counts reported outcomes.
type recordingObserver struct {
	mu       sync.Mutex
	finished []string
	verified []string
	redeemed []string
}

func (o *recordingObserver) EnrollmentFinished(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, result)
}

func (o *recordingObserver) CodeVerified(kind, result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.verified = append(o.verified, kind+":"+result)
}

func (o *recordingObserver) RecoveryCodeRedeemed(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.redeemed = append(o.redeemed, result)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
