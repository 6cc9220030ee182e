package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/gospelrpg/internal/game/session"
)

type memRepo struct {
	mu      sync.Mutex
	records map[string]*session.Record
	saves   int
	failErr error
}

func newMemRepo() *memRepo { return &memRepo{records: make(map[string]*session.Record)} }

func (r *memRepo) Save(_ context.Context, slot string, rec *session.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.saves++
	r.records[slot] = rec
	return nil
}

func (r *memRepo) Load(_ context.Context, slot string) (*session.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	rec, ok := r.records[slot]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return rec, nil
}

func (r *memRepo) Delete(_ context.Context, slot string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, slot)
	return nil
}

func TestManager_OpenStartsNewGame(t *testing.T) {
	c := loadContent(t)
	core, logs := observer.New(zap.InfoLevel)
	m := session.NewManager(newMemRepo(), c.chars, c.items, zap.New(core))

	s, created, err := m.Open(context.Background(), "slot1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{"jesus", "simon"}, partyIDs(s))
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 1, logs.FilterMessage("new game started").Len())

	again, created, err := m.Open(context.Background(), "slot1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, s, again)
}

func TestManager_SaveThenReopen(t *testing.T) {
	c := loadContent(t)
	repo := newMemRepo()
	m := session.NewManager(repo, c.chars, c.items, nil)
	ctx := context.Background()

	s, _, err := m.Open(ctx, "slot1")
	require.NoError(t, err)
	enc, _ := c.encounters.ForChapter(1)
	_, err = s.ApplyVictory(enc, c.items, c.chars)
	require.NoError(t, err)

	require.NoError(t, m.Close(ctx, "slot1"))
	assert.Equal(t, 0, m.Count())
	require.Contains(t, repo.records, "slot1")
	assert.False(t, repo.records["slot1"].SavedAt.IsZero())

	reopened, created, err := m.Open(ctx, "slot1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.NotSame(t, s, reopened)
	assert.Equal(t, 2, reopened.Chapter())
	assert.Len(t, reopened.Party(), 5)
}

func TestManager_SaveUnknownSlot(t *testing.T) {
	c := loadContent(t)
	m := session.NewManager(newMemRepo(), c.chars, c.items, nil)
	assert.Error(t, m.Save(context.Background(), "nope"))
}

func TestManager_OpenEmptySlot(t *testing.T) {
	c := loadContent(t)
	m := session.NewManager(newMemRepo(), c.chars, c.items, nil)
	_, _, err := m.Open(context.Background(), "")
	assert.Error(t, err)
}

func TestManager_OpenPropagatesRepositoryError(t *testing.T) {
	c := loadContent(t)
	repo := newMemRepo()
	repo.failErr = errors.New("disk on fire")
	m := session.NewManager(repo, c.chars, c.items, nil)
	_, _, err := m.Open(context.Background(), "slot1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Equal(t, 0, m.Count())
}

func TestManager_CloseFailureKeepsSessionOpen(t *testing.T) {
	c := loadContent(t)
	repo := newMemRepo()
	m := session.NewManager(repo, c.chars, c.items, nil)
	ctx := context.Background()
	_, _, err := m.Open(ctx, "slot1")
	require.NoError(t, err)

	repo.failErr = errors.New("read-only")
	assert.Error(t, m.Close(ctx, "slot1"))
	_, ok := m.Get("slot1")
	assert.True(t, ok)
}

func TestManager_ResetDeletesRecord(t *testing.T) {
	c := loadContent(t)
	repo := newMemRepo()
	m := session.NewManager(repo, c.chars, c.items, nil)
	ctx := context.Background()
	_, _, err := m.Open(ctx, "slot1")
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, "slot1"))

	require.NoError(t, m.Reset(ctx, "slot1"))
	assert.NotContains(t, repo.records, "slot1")
	_, created, err := m.Open(ctx, "slot1")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestManager_ConcurrentOpenSameSlot(t *testing.T) {
	c := loadContent(t)
	m := session.NewManager(newMemRepo(), c.chars, c.items, nil)
	ctx := context.Background()

	const n = 16
	got := make([]*session.Session, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, _, err := m.Open(ctx, "shared")
			assert.NoError(t, err)
			got[i] = s
		}(i)
	}
	wg.Wait()
	for _, s := range got[1:] {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, 1, m.Count())
}

func TestManager_SavedAtIsUTC(t *testing.T) {
	c := loadContent(t)
	repo := newMemRepo()
	m := session.NewManager(repo, c.chars, c.items, nil)
	ctx := context.Background()
	_, _, err := m.Open(ctx, "slot1")
	require.NoError(t, err)
	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, m.Save(ctx, "slot1"))
	saved := repo.records["slot1"].SavedAt
	assert.Equal(t, time.UTC, saved.Location())
	assert.True(t, saved.After(before))
}
