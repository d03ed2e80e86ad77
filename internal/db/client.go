package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/saviobatista/ais-logger/internal/types"
)

// Client wraps the TimescaleDB connection
type Client struct {
	db *sql.DB
}

// New creates a new database client
func New(connStr string) (*Client, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Client{db: db}, nil
}

// NewWithDB wraps an existing connection
func NewWithDB(db *sql.DB) *Client {
	return &Client{db: db}
}

// DB returns the underlying connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// GetActiveVoyages retrieves all voyages that have not ended
func (c *Client) GetActiveVoyages() ([]*types.Voyage, error) {
	query := `
		SELECT voyage_id, mmsi, name, started_at, last_seen_at,
			first_latitude, first_longitude, last_latitude, last_longitude,
			max_speed, position_count
		FROM voyages
		WHERE ended_at IS NULL
	`
	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active voyages: %w", err)
	}
	defer rows.Close()

	var voyages []*types.Voyage
	for rows.Next() {
		var (
			v    types.Voyage
			mmsi int64
			name sql.NullString
		)
		if err := rows.Scan(
			&v.VoyageID, &mmsi, &name, &v.StartedAt, &v.LastSeenAt,
			&v.FirstLatitude, &v.FirstLongitude, &v.LastLatitude, &v.LastLongitude,
			&v.MaxSpeed, &v.PositionCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan voyage: %w", err)
		}
		v.MMSI = uint32(mmsi)
		v.Name = name.String
		voyages = append(voyages, &v)
	}
	return voyages, rows.Err()
}

// CreateVoyage creates a new voyage
func (c *Client) CreateVoyage(voyage *types.Voyage) error {
	query := `
		INSERT INTO voyages (
			voyage_id, mmsi, name, started_at, last_seen_at,
			first_latitude, first_longitude, last_latitude, last_longitude,
			max_speed, position_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := c.db.Exec(query,
		voyage.VoyageID, int64(voyage.MMSI), voyage.Name, voyage.StartedAt, voyage.LastSeenAt,
		voyage.FirstLatitude, voyage.FirstLongitude, voyage.LastLatitude, voyage.LastLongitude,
		voyage.MaxSpeed, voyage.PositionCount,
	)
	if err != nil {
		return fmt.Errorf("failed to create voyage: %w", err)
	}
	return nil
}

// UpdateVoyage updates an existing voyage. A zero EndedAt keeps it open.
func (c *Client) UpdateVoyage(voyage *types.Voyage) error {
	query := `
		UPDATE voyages SET
			name = $1, ended_at = $2, last_seen_at = $3,
			last_latitude = $4, last_longitude = $5,
			max_speed = $6, position_count = $7
		WHERE voyage_id = $8
	`
	var endedAt sql.NullTime
	if !voyage.EndedAt.IsZero() {
		endedAt = sql.NullTime{Time: voyage.EndedAt, Valid: true}
	}

	_, err := c.db.Exec(query,
		voyage.Name, endedAt, voyage.LastSeenAt,
		voyage.LastLatitude, voyage.LastLongitude,
		voyage.MaxSpeed, voyage.PositionCount,
		voyage.VoyageID,
	)
	if err != nil {
		return fmt.Errorf("failed to update voyage: %w", err)
	}
	return nil
}

// StorePosition stores one position report. Absent fields are stored as NULL.
func (c *Client) StorePosition(state *types.VesselState) error {
	query := `
		INSERT INTO vessel_positions (
			time, mmsi, msg_type, class, navigation_status,
			rate_of_turn, speed, course, heading,
			latitude, longitude, geohash, position_accuracy, voyage_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	var geohash sql.NullInt64
	if state.HasPosition() {
		geohash = sql.NullInt64{Int64: int64(state.Geohash), Valid: true}
	}
	var voyageID sql.NullString
	if state.VoyageID != "" {
		voyageID = sql.NullString{String: state.VoyageID, Valid: true}
	}

	_, err := c.db.Exec(query,
		state.Timestamp, int64(state.MMSI), state.MsgType, state.Class, state.NavigationStatus,
		state.RateOfTurn, state.Speed, state.Course, state.Heading,
		state.Latitude, state.Longitude, geohash, state.PositionAccuracy, voyageID,
	)
	if err != nil {
		return fmt.Errorf("failed to store position: %w", err)
	}
	return nil
}

// UpsertVessel inserts or replaces a vessel profile
func (c *Client) UpsertVessel(vessel *types.Vessel) error {
	query := `
		INSERT INTO vessels (
			mmsi, imo_number, name, call_sign, vessel_type,
			to_bow, to_stern, to_port, to_starboard,
			draught, destination, eta, source_type, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (mmsi) DO UPDATE SET
			imo_number = COALESCE(EXCLUDED.imo_number, vessels.imo_number),
			name = COALESCE(NULLIF(EXCLUDED.name, ''), vessels.name),
			call_sign = COALESCE(NULLIF(EXCLUDED.call_sign, ''), vessels.call_sign),
			vessel_type = COALESCE(EXCLUDED.vessel_type, vessels.vessel_type),
			to_bow = EXCLUDED.to_bow,
			to_stern = EXCLUDED.to_stern,
			to_port = EXCLUDED.to_port,
			to_starboard = EXCLUDED.to_starboard,
			draught = COALESCE(EXCLUDED.draught, vessels.draught),
			destination = COALESCE(NULLIF(EXCLUDED.destination, ''), vessels.destination),
			eta = COALESCE(EXCLUDED.eta, vessels.eta),
			source_type = EXCLUDED.source_type,
			updated_at = EXCLUDED.updated_at
	`
	_, err := c.db.Exec(query,
		int64(vessel.MMSI), vessel.IMONumber, vessel.Name, vessel.CallSign, vessel.VesselType,
		vessel.ToBow, vessel.ToStern, vessel.ToPort, vessel.ToStarboard,
		vessel.Draught, vessel.Destination, vessel.ETA, vessel.SourceType, vessel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vessel: %w", err)
	}
	return nil
}

// StoreSystemStats stores system statistics
func (c *Client) StoreSystemStats(stats map[string]interface{}) error {
	query := `
		INSERT INTO system_stats (
			time, total_messages, parsed_messages, failed_messages, duplicate_messages,
			stored_positions, stored_vessels, created_voyages, updated_voyages, ended_voyages,
			active_vessels, active_voyages, message_types,
			processing_time_ms, uptime_seconds
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	msgTypes, ok := stats["message_types"].([64]uint64)
	if !ok {
		return fmt.Errorf("invalid message_types value: %T", stats["message_types"])
	}
	msgTypesArray := make([]int64, len(msgTypes))
	for i, v := range msgTypes {
		msgTypesArray[i] = int64(v)
	}

	processingTime, _ := stats["processing_time"].(time.Duration)
	uptime, _ := stats["uptime"].(time.Duration)

	counter := func(key string) int64 {
		v, _ := stats[key].(uint64)
		return int64(v)
	}

	_, err := c.db.Exec(query,
		time.Now(),
		counter("total_messages"),
		counter("parsed_messages"),
		counter("failed_messages"),
		counter("duplicate_messages"),
		counter("stored_positions"),
		counter("stored_vessels"),
		counter("created_voyages"),
		counter("updated_voyages"),
		counter("ended_voyages"),
		counter("active_vessels"),
		counter("active_voyages"),
		pq.Array(msgTypesArray),
		processingTime.Milliseconds(),
		int64(uptime.Seconds()),
	)
	if err != nil {
		return fmt.Errorf("failed to store system stats: %w", err)
	}
	return nil
}

// GetSystemStats retrieves system statistics for a time range
func (c *Client) GetSystemStats(start, end time.Time) ([]map[string]interface{}, error) {
	query := `
		SELECT
			time, total_messages, parsed_messages, failed_messages, duplicate_messages,
			stored_positions, stored_vessels, created_voyages, updated_voyages, ended_voyages,
			active_vessels, active_voyages, message_types,
			processing_time_ms, uptime_seconds
		FROM system_stats
		WHERE time BETWEEN $1 AND $2
		ORDER BY time DESC
	`

	rows, err := c.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query system stats: %w", err)
	}
	defer rows.Close()

	var stats []map[string]interface{}
	for rows.Next() {
		var (
			timestamp         time.Time
			totalMessages     int64
			parsedMessages    int64
			failedMessages    int64
			duplicateMessages int64
			storedPositions   int64
			storedVessels     int64
			createdVoyages    int64
			updatedVoyages    int64
			endedVoyages      int64
			activeVessels     int64
			activeVoyages     int64
			messageTypes      []int64
			processingTimeMs  int64
			uptimeSeconds     int64
		)

		if err := rows.Scan(
			&timestamp,
			&totalMessages,
			&parsedMessages,
			&failedMessages,
			&duplicateMessages,
			&storedPositions,
			&storedVessels,
			&createdVoyages,
			&updatedVoyages,
			&endedVoyages,
			&activeVessels,
			&activeVoyages,
			pq.Array(&messageTypes),
			&processingTimeMs,
			&uptimeSeconds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan system stats: %w", err)
		}

		msgTypes := [64]uint64{}
		for i, v := range messageTypes {
			if i < len(msgTypes) {
				msgTypes[i] = uint64(v)
			}
		}

		stats = append(stats, map[string]interface{}{
			"time":               timestamp,
			"total_messages":     totalMessages,
			"parsed_messages":    parsedMessages,
			"failed_messages":    failedMessages,
			"duplicate_messages": duplicateMessages,
			"stored_positions":   storedPositions,
			"stored_vessels":     storedVessels,
			"created_voyages":    createdVoyages,
			"updated_voyages":    updatedVoyages,
			"ended_voyages":      endedVoyages,
			"active_vessels":     activeVessels,
			"active_voyages":     activeVoyages,
			"message_types":      msgTypes,
			"processing_time":    time.Duration(processingTimeMs) * time.Millisecond,
			"uptime_seconds":     uptimeSeconds,
		})
	}

	return stats, rows.Err()
}
