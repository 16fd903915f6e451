package seeder

import (
	"io"

	"github.com/gocarina/gocsv"
	"gorm.io/gorm"

	"github.com/bwops/metastack/internal/domain"
)

// storeCSV flattens a store row for CSV export.
type storeCSV struct {
	Code     string `csv:"code"`
	Name     string `csv:"name"`
	City     string `csv:"city"`
	State    string `csv:"state"`
	Timezone string `csv:"timezone"`
	Status   string `csv:"status"`
}

type salesCSV struct {
	StoreCode    string  `csv:"store_code"`
	BusinessDate string  `csv:"business_date"`
	GrossSales   float64 `csv:"gross_sales"`
	NetSales     float64 `csv:"net_sales"`
	OrderCount   int     `csv:"order_count"`
	GuestCount   int     `csv:"guest_count"`
}

// ExportStoresCSV writes all stores as CSV.
func ExportStoresCSV(db *gorm.DB, w io.Writer) error {
	var stores []domain.Store
	if err := db.Order("code").Find(&stores).Error; err != nil {
		return err
	}
	rows := make([]storeCSV, 0, len(stores))
	for _, s := range stores {
		rows = append(rows, storeCSV{
			Code:     s.Code,
			Name:     s.Name,
			City:     s.City,
			State:    s.State,
			Timezone: s.Timezone,
			Status:   s.Status,
		})
	}
	return gocsv.Marshal(&rows, w)
}

// ExportSalesCSV writes the sales series for one store code (or all stores
// when code is empty) as CSV.
func ExportSalesCSV(db *gorm.DB, storeCode string, w io.Writer) error {
	q := db.Model(&domain.SalesDaily{}).
		Select("stores.code as store_code, sales_daily.business_date, sales_daily.gross_sales, sales_daily.net_sales, sales_daily.order_count, sales_daily.guest_count").
		Joins("join stores on stores.id = sales_daily.store_id").
		Order("stores.code, sales_daily.business_date")
	if storeCode != "" {
		q = q.Where("stores.code = ?", storeCode)
	}

	var raw []struct {
		StoreCode    string
		BusinessDate string
		GrossSales   float64
		NetSales     float64
		OrderCount   int
		GuestCount   int
	}
	if err := q.Scan(&raw).Error; err != nil {
		return err
	}
	rows := make([]salesCSV, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, salesCSV(r))
	}
	return gocsv.Marshal(&rows, w)
}
