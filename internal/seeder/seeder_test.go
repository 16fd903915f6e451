package seeder

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwops/metastack/pkg/common"
)

func TestStoreFixtures(t *testing.T) {
	stores := StoreFixtures()
	require.Len(t, stores, StoreCount)

	codes := make(map[string]bool)
	for _, st := range stores {
		assert.NotZero(t, st.ID)
		assert.NotEmpty(t, st.Name)
		assert.Equal(t, common.ENABLED, st.Status)
		codes[st.Code] = true
	}
	// codes are unique and follow the BW prefix
	require.Len(t, codes, StoreCount)
	for code := range codes {
		assert.Regexp(t, `^BW\d{3}$`, code)
	}
}

func TestGenSalesShape(t *testing.T) {
	s := NewDeterministic(nil, 42)
	sales := s.GenSales(1001, HistoryDays)
	require.Len(t, sales, HistoryDays)

	for _, row := range sales {
		assert.Equal(t, int64(1001), row.StoreID)
		assert.Greater(t, row.GrossSales, 0.0)
		assert.Less(t, row.NetSales, row.GrossSales)
		assert.Greater(t, row.OrderCount, 0)
		assert.GreaterOrEqual(t, row.GuestCount, row.OrderCount)
		assert.False(t, row.BusinessDate.After(time.Now()))
	}

	// series ends yesterday and moves forward one day at a time
	for i := 1; i < len(sales); i++ {
		assert.True(t, sales[i].BusinessDate.After(sales[i-1].BusinessDate))
	}
}

func TestGenSalesWeekendBump(t *testing.T) {
	s := NewDeterministic(nil, 7)
	sales := s.GenSales(1, 365)

	var weekendSum, weekdaySum float64
	var weekendN, weekdayN int
	for _, row := range sales {
		wd := row.BusinessDate.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			weekendSum += row.GrossSales
			weekendN++
		} else {
			weekdaySum += row.GrossSales
			weekdayN++
		}
	}
	require.NotZero(t, weekendN)
	require.NotZero(t, weekdayN)
	assert.Greater(t, weekendSum/float64(weekendN), weekdaySum/float64(weekdayN))
}

func TestHistoryWorkersUseIndependentRandom(t *testing.T) {
	s := NewDeterministic(nil, 42)

	// mirror Run's fan-out: one worker per store, each generating its
	// series concurrently; passes under the race detector because every
	// worker holds a forked random source
	var wg sync.WaitGroup
	results := make([]int, StoreCount)
	for i := 0; i < StoreCount; i++ {
		i := i
		w := s.fork()
		wg.Add(1)
		go func() {
			defer wg.Done()
			sales := w.GenSales(int64(i+1), HistoryDays)
			labor := w.GenLabor(int64(i+1), HistoryDays)
			results[i] = len(sales) + len(labor)
		}()
	}
	wg.Wait()

	for i, n := range results {
		assert.Equal(t, 2*HistoryDays, n, "store %d", i+1)
	}
}

func TestForkDeterministic(t *testing.T) {
	a := NewDeterministic(nil, 9).fork().GenSales(1, 30)
	b := NewDeterministic(nil, 9).fork().GenSales(1, 30)
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].GrossSales, b[i].GrossSales)
	}
}

func TestGenSalesDeterministic(t *testing.T) {
	a := NewDeterministic(nil, 99).GenSales(5, 30)
	b := NewDeterministic(nil, 99).GenSales(5, 30)
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].GrossSales, b[i].GrossSales)
		assert.Equal(t, a[i].OrderCount, b[i].OrderCount)
	}
}

func TestGenLabor(t *testing.T) {
	s := NewDeterministic(nil, 3)
	labor := s.GenLabor(7, 14)
	require.Len(t, labor, 14)
	for _, row := range labor {
		assert.GreaterOrEqual(t, row.Hours, 80.0)
		assert.LessOrEqual(t, row.Hours, 120.0)
		assert.Greater(t, row.Cost, row.Hours*16*0.99)
		assert.GreaterOrEqual(t, row.Headcount, 10)
	}
}

func TestAccessFixturesAdminSeesAll(t *testing.T) {
	s := NewDeterministic(nil, 1)
	users := s.userFixtures()
	stores := StoreFixtures()
	rows := s.accessFixtures(users, stores)

	var adminID int64
	for _, u := range users {
		if u.Role == "admin" {
			adminID = u.ID
		}
	}
	require.NotZero(t, adminID)

	adminStores := 0
	seen := make(map[[2]int64]bool)
	for _, r := range rows {
		key := [2]int64{r.UserID, r.StoreID}
		assert.False(t, seen[key], "duplicate access grant")
		seen[key] = true
		if r.UserID == adminID {
			adminStores++
		}
	}
	assert.Equal(t, StoreCount, adminStores)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 12.34, round2(12.341))
	assert.Equal(t, 12.35, round2(12.349))
	assert.Equal(t, 100.0, round2(99.999))
	assert.Equal(t, 0.0, round2(0))
}
