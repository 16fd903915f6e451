package cli

const rootDescription = `metastack manages the full lifecycle of a Metabase analytics stack:
the docker compose services (Metabase, PostgreSQL, Redis, nginx), TLS
certificates, the sample BI dataset, SharePoint imports, remote rollout
over SSH and scheduled maintenance.

Configuration is read from a YAML file (default /etc/metastack.yml) and
can be overridden with METASTACK_* environment variables. Run
"metastack initcfg" to generate a starter file.`

const serverDescription = `Run the controller daemon. The daemon keeps the database-backed
schedulers running (health checks, certificate renewal, nightly import,
backups) and serves the admin API used by the web console.`

const stackDescription = `Control the docker compose services. "up" also waits until Metabase,
PostgreSQL, Redis and the proxy all answer, so provisioning scripts can
chain commands without their own polling.`

const seedDescription = `Create and fill the sample BI schema: five stores, portal users,
per-user store access and a rolling window of daily sales and labor
rows. Re-running without --drop is a no-op once data exists.`

const sslDescription = `Manage the TLS certificate for the configured domain. "bootstrap"
attempts a certbot issuance and, when that fails (no DNS yet, rate
limits), falls back to a locally generated self-signed certificate so
nginx always has something to serve.`

const etlDescription = `Download the configured workbooks from SharePoint via the Microsoft
Graph API and load them into PostgreSQL. Each workbook replaces its
destination table wholesale and gets an import_timestamp column.`

const deployDescription = `Push the compose bundle to a remote host over SSH, restart the stack
there, install the maintenance crontab and verify Metabase answers.
The first failing remote command aborts the rollout.`

const backupDescription = `Create, list and restore compressed pg_dump backups of the analytics
database. "sweep" trims old files down to the configured retention.`
