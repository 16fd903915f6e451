package adminapi

// Register attaches all admin API routes to the web server. Call after
// webserver.Init and before webserver.Start.
func Register() {
	registerAuthRoutes()
	registerStackRoutes()
	registerBiRoutes()
	registerSchedulerRoutes()
	registerBackupRoutes()
	registerEtlRoutes()
	registerCertRoutes()
	registerSettingsRoutes()
	registerMetricsRoutes()
}
