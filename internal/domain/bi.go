package domain

import "time"

// BI demonstration schema. These tables back the dashboards shipped with the
// stack and are filled with synthetic rows by the seeder.

// Store is a retail location.
type Store struct {
	ID        int64     `json:"id,string" form:"id"`
	Code      string    `gorm:"uniqueIndex" json:"code" form:"code"` // short store code, e.g. BW001
	Name      string    `json:"name" form:"name"`
	City      string    `json:"city" form:"city"`
	State     string    `json:"state" form:"state"`
	Timezone  string    `json:"timezone" form:"timezone"`
	OpenedAt  time.Time `json:"opened_at"`
	Status    string    `json:"status" form:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Store) TableName() string {
	return "stores"
}

// PortalUser is a dashboard viewer account provisioned into the BI tool.
type PortalUser struct {
	ID        int64     `json:"id,string" form:"id"`
	Email     string    `gorm:"uniqueIndex" json:"email" form:"email"`
	FirstName string    `json:"first_name" form:"first_name"`
	LastName  string    `json:"last_name" form:"last_name"`
	Role      string    `json:"role" form:"role"` // admin / manager / viewer
	Status    string    `json:"status" form:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (PortalUser) TableName() string {
	return "users"
}

// StoreAccess grants a portal user visibility into a store.
type StoreAccess struct {
	ID        int64       `json:"id,string" form:"id"`
	UserID    int64       `gorm:"uniqueIndex:idx_user_store" json:"user_id,string" form:"user_id"`
	StoreID   int64       `gorm:"uniqueIndex:idx_user_store" json:"store_id,string" form:"store_id"`
	User      *PortalUser `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Store     *Store      `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// TableName Specify table name
func (StoreAccess) TableName() string {
	return "user_store_access"
}

// SalesDaily is one day of sales for one store.
type SalesDaily struct {
	ID           int64     `json:"id,string" form:"id"`
	StoreID      int64     `gorm:"uniqueIndex:idx_store_day" json:"store_id,string" form:"store_id"`
	Store        *Store    `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	BusinessDate time.Time `gorm:"uniqueIndex:idx_store_day;type:date" json:"business_date"`
	GrossSales   float64   `json:"gross_sales" form:"gross_sales"`
	NetSales     float64   `json:"net_sales" form:"net_sales"`
	OrderCount   int       `json:"order_count" form:"order_count"`
	GuestCount   int       `json:"guest_count" form:"guest_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName Specify table name
func (SalesDaily) TableName() string {
	return "sales_daily"
}

// LaborShift is one day of labor hours and cost for one store.
type LaborShift struct {
	ID           int64     `json:"id,string" form:"id"`
	StoreID      int64     `gorm:"uniqueIndex:idx_labor_store_day" json:"store_id,string" form:"store_id"`
	Store        *Store    `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	BusinessDate time.Time `gorm:"uniqueIndex:idx_labor_store_day;type:date" json:"business_date"`
	Hours        float64   `json:"hours" form:"hours"`
	Cost         float64   `json:"cost" form:"cost"`
	Headcount    int       `json:"headcount" form:"headcount"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName Specify table name
func (LaborShift) TableName() string {
	return "labor_daily"
}
