package twofactor

import (
	"context"
	"crypto/subtle"
	"slices"
	"sync"
	"time"
)

type memoryAccount struct {
	secret    []byte
	enabled   bool
	version   int64
	enabledAt time.Time
	codes     []memoryCode
}

type memoryCode struct {
	hash   string
	usedAt time.Time
}

// MemoryStorage is a process-local Storage for tests and single-instance
// deployments.
type MemoryStorage struct {
	mu       sync.Mutex
	accounts map[string]*memoryAccount
	now      func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		accounts: make(map[string]*memoryAccount),
		now:      time.Now,
	}
}

func (m *MemoryStorage) GetAccount(_ context.Context, accountID string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	remaining := 0
	for _, c := range a.codes {
		if c.usedAt.IsZero() {
			remaining++
		}
	}
	return &Account{
		AccountID:              accountID,
		SealedSecret:           slices.Clone(a.secret),
		Enabled:                a.enabled,
		Version:                a.version,
		EnabledAt:              a.enabledAt,
		RecoveryCodesRemaining: remaining,
	}, nil
}

func (m *MemoryStorage) Activate(_ context.Context, act Activation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[act.AccountID]
	if !ok {
		a = &memoryAccount{}
	}
	if a.enabled || a.version != act.ExpectedVersion {
		return ErrPersistenceConflict
	}

	a.secret = slices.Clone(act.SealedSecret)
	a.enabled = true
	a.enabledAt = act.At
	a.version++
	a.codes = newMemoryCodes(act.RecoveryCodeHashes)
	m.accounts[act.AccountID] = a
	return nil
}

func (m *MemoryStorage) ReplaceRecoveryCodes(_ context.Context, accountID string, hashes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok || !a.enabled {
		return ErrNotEnabled
	}
	a.codes = newMemoryCodes(hashes)
	a.version++
	return nil
}

func (m *MemoryStorage) ConsumeRecoveryCode(_ context.Context, accountID, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok || !a.enabled {
		return false, nil
	}
	for i := range a.codes {
		c := &a.codes[i]
		if subtle.ConstantTimeCompare([]byte(c.hash), []byte(hash)) == 1 {
			if !c.usedAt.IsZero() {
				return false, nil
			}
			c.usedAt = m.now()
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStorage) Disable(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok || !a.enabled {
		return ErrNotEnabled
	}
	a.secret = nil
	a.codes = nil
	a.enabled = false
	a.enabledAt = time.Time{}
	a.version++
	return nil
}

func newMemoryCodes(hashes []string) []memoryCode {
	codes := make([]memoryCode, len(hashes))
	for i, h := range hashes {
		codes[i] = memoryCode{hash: h}
	}
	return codes
}
