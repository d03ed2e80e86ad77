package migrations

// InitialSchema creates the position hypertable, vessel profiles, voyages
// and statistics tables.
var InitialSchema = &Migration{
	Name: "001_initial_schema",
	UpSQL: `
		CREATE EXTENSION IF NOT EXISTS timescaledb;

		CREATE TABLE IF NOT EXISTS vessel_positions (
			time TIMESTAMPTZ NOT NULL,
			mmsi BIGINT NOT NULL,
			msg_type SMALLINT NOT NULL,
			class TEXT NOT NULL,
			navigation_status SMALLINT,
			rate_of_turn DOUBLE PRECISION,
			speed DOUBLE PRECISION,
			course DOUBLE PRECISION,
			heading SMALLINT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			geohash BIGINT,
			position_accuracy BOOLEAN NOT NULL DEFAULT FALSE,
			voyage_id TEXT
		);

		SELECT create_hypertable('vessel_positions', 'time');

		CREATE INDEX IF NOT EXISTS idx_vessel_positions_mmsi ON vessel_positions (mmsi, time DESC);
		CREATE INDEX IF NOT EXISTS idx_vessel_positions_geohash ON vessel_positions (geohash);

		CREATE TABLE IF NOT EXISTS vessels (
			mmsi BIGINT PRIMARY KEY,
			imo_number BIGINT,
			name TEXT,
			call_sign TEXT,
			vessel_type SMALLINT,
			to_bow INTEGER,
			to_stern INTEGER,
			to_port INTEGER,
			to_starboard INTEGER,
			draught DOUBLE PRECISION,
			destination TEXT,
			eta TIMESTAMPTZ,
			source_type SMALLINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_vessels_name ON vessels (name);
		CREATE INDEX IF NOT EXISTS idx_vessels_imo ON vessels (imo_number);

		CREATE TABLE IF NOT EXISTS voyages (
			voyage_id TEXT PRIMARY KEY,
			mmsi BIGINT NOT NULL,
			name TEXT,
			started_at TIMESTAMPTZ NOT NULL,
			last_seen_at TIMESTAMPTZ NOT NULL,
			ended_at TIMESTAMPTZ,
			first_latitude DOUBLE PRECISION,
			first_longitude DOUBLE PRECISION,
			last_latitude DOUBLE PRECISION,
			last_longitude DOUBLE PRECISION,
			max_speed DOUBLE PRECISION,
			position_count INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_voyages_mmsi ON voyages (mmsi);
		CREATE INDEX IF NOT EXISTS idx_voyages_active ON voyages (ended_at) WHERE ended_at IS NULL;

		CREATE TABLE IF NOT EXISTS system_stats (
			time TIMESTAMPTZ NOT NULL,
			total_messages BIGINT NOT NULL,
			parsed_messages BIGINT NOT NULL,
			failed_messages BIGINT NOT NULL,
			duplicate_messages BIGINT NOT NULL,
			stored_positions BIGINT NOT NULL,
			stored_vessels BIGINT NOT NULL,
			created_voyages BIGINT NOT NULL,
			updated_voyages BIGINT NOT NULL,
			ended_voyages BIGINT NOT NULL,
			active_vessels BIGINT NOT NULL,
			active_voyages BIGINT NOT NULL,
			message_types BIGINT[] NOT NULL,
			processing_time_ms BIGINT NOT NULL,
			uptime_seconds BIGINT NOT NULL
		);

		SELECT create_hypertable('system_stats', 'time');
	`,
	DownSQL: `
		DROP TABLE IF EXISTS system_stats;
		DROP TABLE IF EXISTS voyages;
		DROP TABLE IF EXISTS vessels;
		DROP TABLE IF EXISTS vessel_positions;
	`,
}
