// Package seeder rebuilds the illustrative BI schema and fills it with
// synthetic demonstration rows, replacing the SQL seed file of the original
// deployment. The row shape matches what the shipped dashboards expect.
package seeder

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bwops/metastack/internal/domain"
	"github.com/bwops/metastack/pkg/common"
)

// StoreCount is the fixed number of demonstration stores. The smoke check
// after seeding asserts this exact count.
const StoreCount = 5

// HistoryDays is how far back the sales and labor series reach.
const HistoryDays = 90

type Seeder struct {
	db  *gorm.DB
	rnd *rand.Rand
}

func New(db *gorm.DB) *Seeder {
	return &Seeder{db: db, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewDeterministic returns a seeder with a fixed random source, used by tests.
func NewDeterministic(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{db: db, rnd: rand.New(rand.NewSource(seed))}
}

// fork derives a seeder with its own random source. rand.Rand is not safe
// for concurrent use, so every history worker gets a private one.
func (s *Seeder) fork() *Seeder {
	return &Seeder{db: s.db, rnd: rand.New(rand.NewSource(s.rnd.Int63()))}
}

// Run rebuilds the BI schema and inserts synthetic rows. With drop=false the
// schema is only migrated and existing rows are kept when present.
func (s *Seeder) Run(ctx context.Context, drop bool) error {
	if drop {
		if err := s.db.Migrator().DropTable(domain.BiTables...); err != nil {
			return errors.Wrap(err, "drop bi tables")
		}
	}
	if err := s.db.Migrator().AutoMigrate(domain.BiTables...); err != nil {
		return errors.Wrap(err, "migrate bi tables")
	}

	var count int64
	s.db.Model(&domain.Store{}).Count(&count)
	if count > 0 && !drop {
		zap.L().Info("bi schema already seeded, skipping", zap.Int64("stores", count))
		return nil
	}

	stores := StoreFixtures()
	if err := s.db.Create(&stores).Error; err != nil {
		return errors.Wrap(err, "insert stores")
	}

	users := s.userFixtures()
	if err := s.db.Create(&users).Error; err != nil {
		return errors.Wrap(err, "insert users")
	}

	if err := s.db.Create(s.accessFixtures(users, stores)).Error; err != nil {
		return errors.Wrap(err, "insert store access")
	}

	// Per-store history generation fans out over a bounded worker pool.
	pool, err := ants.NewPool(StoreCount)
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	errs := make(chan error, StoreCount)
	for _, st := range stores {
		st := st
		w := s.fork()
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := w.seedStoreHistory(st); err != nil {
				errs <- err
			}
		})
		if submitErr != nil {
			wg.Done()
			errs <- submitErr
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}

	zap.L().Info("bi seed completed",
		zap.Int("stores", len(stores)),
		zap.Int("users", len(users)),
		zap.Int("history_days", HistoryDays))
	return s.Verify()
}

// Verify is the post-seed smoke check: the stores table holds exactly
// StoreCount rows.
func (s *Seeder) Verify() error {
	var count int64
	if err := s.db.Model(&domain.Store{}).Count(&count).Error; err != nil {
		return err
	}
	if count != StoreCount {
		return fmt.Errorf("seed verification failed: stores=%d, want %d", count, StoreCount)
	}
	return nil
}

func (s *Seeder) seedStoreHistory(st domain.Store) error {
	sales := s.GenSales(st.ID, HistoryDays)
	if err := s.db.CreateInBatches(&sales, 200).Error; err != nil {
		return errors.Wrapf(err, "insert sales for %s", st.Code)
	}
	labor := s.GenLabor(st.ID, HistoryDays)
	if err := s.db.CreateInBatches(&labor, 200).Error; err != nil {
		return errors.Wrapf(err, "insert labor for %s", st.Code)
	}
	return nil
}

// StoreFixtures returns the five demonstration stores.
func StoreFixtures() []domain.Store {
	now := time.Now()
	mk := func(code, name, city, state string) domain.Store {
		return domain.Store{
			ID:        common.UUIDint64(),
			Code:      code,
			Name:      name,
			City:      city,
			State:     state,
			Timezone:  "America/New_York",
			OpenedAt:  now.AddDate(-2, 0, 0),
			Status:    common.ENABLED,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return []domain.Store{
		mk("BW001", "Downtown Flagship", "New York", "NY"),
		mk("BW002", "Riverside Plaza", "Jersey City", "NJ"),
		mk("BW003", "Harbor Point", "Stamford", "CT"),
		mk("BW004", "Midtown Express", "New York", "NY"),
		mk("BW005", "Garden State Mall", "Paramus", "NJ"),
	}
}

func (s *Seeder) userFixtures() []domain.PortalUser {
	now := time.Now()
	mk := func(email, first, last, role string) domain.PortalUser {
		return domain.PortalUser{
			ID:        common.UUIDint64(),
			Email:     email,
			FirstName: first,
			LastName:  last,
			Role:      role,
			Status:    common.ENABLED,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return []domain.PortalUser{
		mk("ops@example.com", "Olivia", "Park", "admin"),
		mk("gm.ny@example.com", "Marcus", "Reed", "manager"),
		mk("gm.nj@example.com", "Dana", "Whitfield", "manager"),
		mk("analyst1@example.com", "Priya", "Shah", "viewer"),
		mk("analyst2@example.com", "Tomas", "Alvarez", "viewer"),
		mk("finance@example.com", "Grace", "Lin", "viewer"),
	}
}

// accessFixtures grants the admin every store and spreads the rest.
func (s *Seeder) accessFixtures(users []domain.PortalUser, stores []domain.Store) []domain.StoreAccess {
	now := time.Now()
	var rows []domain.StoreAccess
	add := func(u domain.PortalUser, st domain.Store) {
		rows = append(rows, domain.StoreAccess{
			ID:        common.UUIDint64(),
			UserID:    u.ID,
			StoreID:   st.ID,
			CreatedAt: now,
		})
	}
	for i, u := range users {
		switch u.Role {
		case "admin":
			for _, st := range stores {
				add(u, st)
			}
		case "manager":
			// managers see a contiguous slice of stores
			for j, st := range stores {
				if j%2 == i%2 {
					add(u, st)
				}
			}
		default:
			add(u, stores[i%len(stores)])
		}
	}
	return rows
}

// GenSales produces a daily sales series ending yesterday. Values are
// pseudo-random around a per-store baseline with a weekend bump.
func (s *Seeder) GenSales(storeID int64, days int) []domain.SalesDaily {
	now := time.Now()
	base := 4000 + s.rnd.Float64()*3000
	out := make([]domain.SalesDaily, 0, days)
	for i := days; i >= 1; i-- {
		day := now.AddDate(0, 0, -i)
		gross := base * (0.85 + s.rnd.Float64()*0.3)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			gross *= 1.35
		}
		orders := int(gross / (18 + s.rnd.Float64()*10))
		out = append(out, domain.SalesDaily{
			ID:           common.UUIDint64(),
			StoreID:      storeID,
			BusinessDate: day.Truncate(24 * time.Hour),
			GrossSales:   round2(gross),
			NetSales:     round2(gross * 0.93),
			OrderCount:   orders,
			GuestCount:   orders + s.rnd.Intn(orders/3+1),
			CreatedAt:    now,
		})
	}
	return out
}

// GenLabor produces the matching labor series.
func (s *Seeder) GenLabor(storeID int64, days int) []domain.LaborShift {
	now := time.Now()
	out := make([]domain.LaborShift, 0, days)
	for i := days; i >= 1; i-- {
		day := now.AddDate(0, 0, -i)
		hours := 80 + s.rnd.Float64()*40
		out = append(out, domain.LaborShift{
			ID:           common.UUIDint64(),
			StoreID:      storeID,
			BusinessDate: day.Truncate(24 * time.Hour),
			Hours:        round2(hours),
			Cost:         round2(hours * (16 + s.rnd.Float64()*6)),
			Headcount:    10 + s.rnd.Intn(8),
			CreatedAt:    now,
		})
	}
	return out
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
