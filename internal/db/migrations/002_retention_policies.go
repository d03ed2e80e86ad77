package migrations

// RetentionPolicies bounds raw position and statistics history and adds
// hourly and daily rollups.
var RetentionPolicies = &Migration{
	Name: "002_retention_policies",
	UpSQL: `
	SELECT add_retention_policy('vessel_positions', INTERVAL '30 days');
	SELECT add_retention_policy('system_stats', INTERVAL '90 days');

	CREATE MATERIALIZED VIEW IF NOT EXISTS vessel_positions_hourly
	WITH (timescaledb.continuous) AS
	SELECT
		time_bucket('1 hour', time) AS hour,
		mmsi,
		COUNT(*) AS position_count,
		MAX(speed) AS max_speed,
		LAST(latitude, time) AS last_latitude,
		LAST(longitude, time) AS last_longitude
	FROM vessel_positions
	GROUP BY hour, mmsi
	WITH NO DATA;

	CREATE MATERIALIZED VIEW IF NOT EXISTS system_stats_daily
	WITH (timescaledb.continuous) AS
	SELECT
		time_bucket('1 day', time) AS day,
		MAX(total_messages) AS total_messages,
		MAX(parsed_messages) AS parsed_messages,
		MAX(failed_messages) AS failed_messages,
		MAX(duplicate_messages) AS duplicate_messages,
		MAX(stored_positions) AS stored_positions,
		MAX(created_voyages) AS created_voyages,
		MAX(ended_voyages) AS ended_voyages
	FROM system_stats
	GROUP BY day
	WITH NO DATA;
	`,
	DownSQL: `
	DROP MATERIALIZED VIEW IF EXISTS system_stats_daily;
	DROP MATERIALIZED VIEW IF EXISTS vessel_positions_hourly;
	SELECT remove_retention_policy('vessel_positions');
	SELECT remove_retention_policy('system_stats');
	`,
}
