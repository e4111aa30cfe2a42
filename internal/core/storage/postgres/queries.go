package postgres

// SQL for item metrics storage.

const (
	querySchemaExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = 'item_metrics'
		)
	`

	// queryInsertItemMetrics stores one flattened record. Nullable columns
	// receive NULL for fields the response did not carry.
	queryInsertItemMetrics = `
		INSERT INTO item_metrics (
			run_id, report, project_id, project_name, start_time_unix, end_time_unix,
			item_id, title, counter, level, status, environment,
			assigned_user_id, occurrence_count, ip_address_count, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	queryCountRun = `SELECT COUNT(*) FROM item_metrics WHERE run_id = $1`
)
