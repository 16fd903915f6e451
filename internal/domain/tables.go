package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpr{},
	&SysOprLog{},
	// Ops
	&OpsScheduler{},
	&OpsBackup{},
	&EtlRun{},
	&SslCertificate{},
	// BI seed schema
	&Store{},
	&PortalUser{},
	&StoreAccess{},
	&SalesDaily{},
	&LaborShift{},
}

// BiTables is the subset dropped and recreated by the seeder.
var BiTables = []interface{}{
	&Store{},
	&PortalUser{},
	&StoreAccess{},
	&SalesDaily{},
	&LaborShift{},
}

// BiTableNames lists the seed schema tables in dependency order, used by the
// logical SQL dump.
var BiTableNames = []string{
	"stores",
	"users",
	"user_store_access",
	"sales_daily",
	"labor_daily",
}
