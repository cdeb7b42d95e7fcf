package repository

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merit/internal/domain"
)

func TestDailyRepository_TryReserveCapMonotone(t *testing.T) {
	repo := NewDailyRepository(newTestDB(t))
	const day = "2026-08-31"

	for i := 1; i <= 3; i++ {
		res, err := repo.TryReserve(1, day, domain.CategoryPosts, 3, 0)
		require.NoError(t, err)
		assert.True(t, res.Granted, "attempt %d should be granted", i)
		assert.Equal(t, i, res.CountToday)
		assert.Equal(t, 3-i, res.Remaining)
	}

	// Fourth attempt hits the cap and leaves the counter untouched.
	res, err := repo.TryReserve(1, day, domain.CategoryPosts, 3, 0)
	require.NoError(t, err)
	assert.False(t, res.Granted)
	assert.Equal(t, 3, res.CountToday)
	assert.Zero(t, res.Remaining)
}

func TestDailyRepository_TryReserveConcurrent(t *testing.T) {
	repo := NewDailyRepository(newTestDB(t))
	const (
		day      = "2026-08-31"
		dailyCap = 3
		workers  = 16
	)

	var (
		wg      sync.WaitGroup
		granted atomic.Int32
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			res, err := repo.TryReserve(1, day, domain.CategoryJournals, dailyCap, 0)
			if err != nil {
				t.Error(err)
				return
			}
			if res.Granted {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	// Racing reservations must never over-grant past the cap.
	assert.Equal(t, int32(dailyCap), granted.Load())
	d, err := repo.GetOrCreate(1, day)
	require.NoError(t, err)
	assert.Equal(t, dailyCap, d.JournalsRewarded)
	assert.Equal(t, dailyCap, d.TotalRewarded)
}

func TestDailyRepository_CountersIsolatedByUserAndDay(t *testing.T) {
	repo := NewDailyRepository(newTestDB(t))

	res, err := repo.TryReserve(1, "2026-08-31", domain.CategoryPosts, 1, 0)
	require.NoError(t, err)
	require.True(t, res.Granted)

	// Same user, same cap category, next reward-day: fresh counter.
	res, err = repo.TryReserve(1, "2026-09-01", domain.CategoryPosts, 1, 0)
	require.NoError(t, err)
	assert.True(t, res.Granted)

	// Different user, same day: also fresh.
	res, err = repo.TryReserve(2, "2026-08-31", domain.CategoryPosts, 1, 0)
	require.NoError(t, err)
	assert.True(t, res.Granted)
}

func TestDailyRepository_TotalCeiling(t *testing.T) {
	repo := NewDailyRepository(newTestDB(t))
	const day = "2026-08-31"

	// Category caps would allow more, but the actor's total ceiling is 2.
	res, err := repo.TryReserve(1, day, domain.CategoryPosts, 5, 2)
	require.NoError(t, err)
	assert.True(t, res.Granted)

	res, err = repo.TryReserve(1, day, domain.CategoryJournals, 5, 2)
	require.NoError(t, err)
	assert.True(t, res.Granted)

	res, err = repo.TryReserve(1, day, domain.CategoryComments, 5, 2)
	require.NoError(t, err)
	assert.False(t, res.Granted, "total ceiling must hold across categories")
	assert.Zero(t, res.CountToday)
}

func TestDailyRepository_Release(t *testing.T) {
	repo := NewDailyRepository(newTestDB(t))
	const day = "2026-08-31"

	res, err := repo.TryReserve(1, day, domain.CategoryJournals, 1, 0)
	require.NoError(t, err)
	require.True(t, res.Granted)

	// Slot is taken: a second reservation is refused.
	res, err = repo.TryReserve(1, day, domain.CategoryJournals, 1, 0)
	require.NoError(t, err)
	require.False(t, res.Granted)

	// Releasing the failed credit frees the slot again.
	require.NoError(t, repo.Release(1, day, domain.CategoryJournals))
	res, err = repo.TryReserve(1, day, domain.CategoryJournals, 1, 0)
	require.NoError(t, err)
	assert.True(t, res.Granted)

	// Release on an empty counter is a no-op, never negative.
	require.NoError(t, repo.Release(2, day, domain.CategoryJournals))
	d, err := repo.GetOrCreate(2, day)
	require.NoError(t, err)
	assert.Zero(t, d.JournalsRewarded)
	assert.Zero(t, d.TotalRewarded)
}

func TestDailyRepository_UnknownCategory(t *testing.T) {
	repo := NewDailyRepository(newTestDB(t))
	_, err := repo.TryReserve(1, "2026-08-31", "bogus", 3, 0)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestDailyRepository_AddCoinsAndPrune(t *testing.T) {
	repo := NewDailyRepository(newTestDB(t))

	_, err := repo.GetOrCreate(1, "2026-08-30")
	require.NoError(t, err)
	_, err = repo.GetOrCreate(1, "2026-08-31")
	require.NoError(t, err)

	require.NoError(t, repo.AddCoins(1, "2026-08-31", 4500))
	require.NoError(t, repo.AddCoins(1, "2026-08-31", 2000))
	d, err := repo.GetOrCreate(1, "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, int64(6500), d.TotalCoinsToday)

	n, err := repo.PruneBefore("2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
