// Package sqlite stores committed samples in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bft-labs/shiplog/internal/domain"
	"github.com/bft-labs/shiplog/internal/ports"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SourceAIS tags nmea_raw rows holding the AIS sentence that triggered a
// commit.
const SourceAIS = "ais"

// pragmas are applied by the driver to every new connection.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

// dsn turns a file path into a modernc DSN carrying the pragmas. Paths that
// already hold a query string are used as given.
func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	q := make([]string, len(pragmas))
	for i, p := range pragmas {
		q[i] = "_pragma=" + p
	}
	return "file:" + path + "?" + strings.Join(q, "&")
}

const insertEntrySQL = `INSERT INTO log_entry (
	session_id, recorded_at, timestamp_utc, latitude, longitude,
	course_over_ground, speed_over_ground, heading, rudder_angle,
	wind_direction, wind_speed, barometric_pressure, air_temp, water_temp,
	engine_rpm, nav_status, sampling_delay_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertRawSQL = `INSERT INTO nmea_raw (log_entry_id, sentence, source, talker_type, mmsi)
VALUES (?, ?, ?, ?, ?)`

// Store implements ports.RecordSink and ports.RecordPruner.
type Store struct {
	db     *sql.DB
	logger ports.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema.
func Open(path string, logger ports.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One writer connection; samplers of all sessions share it.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := migrateUp(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	version, _, err := schemaVersion(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("database ready", ports.String("path", path), ports.Int("schema_version", int(version)))

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Commit inserts the sample's entry and its triggering sentence in one
// transaction.
func (s *Store) Commit(ctx context.Context, sample domain.Sample) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	e := sample.Entry
	res, err := tx.ExecContext(ctx, insertEntrySQL,
		sample.SessionID,
		s.now().UTC().Format(timeLayout),
		nullTime(e.TimestampUTC),
		nullFloat(e.Latitude),
		nullFloat(e.Longitude),
		nullFloat(e.CourseOverGround),
		nullFloat(e.SpeedOverGround),
		nullFloat(e.Heading),
		nullFloat(e.RudderAngle),
		nullFloat(e.WindDirection),
		nullFloat(e.WindSpeed),
		nullFloat(e.BarometricPressure),
		nullFloat(e.AirTemp),
		nullFloat(e.WaterTemp),
		nullFloat(e.EngineRPM),
		sample.NavStatus,
		sample.Delay.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert log_entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("log_entry id: %w", err)
	}

	if sample.Trigger != "" {
		if _, err = tx.ExecContext(ctx, insertRawSQL,
			id, sample.Trigger, SourceAIS, talkerType(sample.Trigger), sql.NullInt64{Int64: int64(sample.MMSI), Valid: sample.MMSI != 0},
		); err != nil {
			return fmt.Errorf("insert nmea_raw: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Prune deletes entries recorded before the cutoff together with their raw
// sentences, and reports how many entries were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (n int64, err error) {
	cutoff := before.UTC().Format(timeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM nmea_raw WHERE log_entry_id IN
		(SELECT id FROM log_entry WHERE recorded_at < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("prune nmea_raw: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM log_entry WHERE recorded_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune log_entry: %w", err)
	}
	if n, err = res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("prune log_entry: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// Row is a stored log entry.
type Row struct {
	ID         int64
	SessionID  string
	RecordedAt time.Time
	Entry      domain.LogEntry
	NavStatus  int
	Delay      time.Duration
	Sentence   string
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) (rows []Row, err error) {
	stmt, err := s.db.PrepareContext(ctx, `
		SELECT e.id, e.session_id, e.recorded_at, e.timestamp_utc, e.latitude,
			e.longitude, e.course_over_ground, e.speed_over_ground, e.heading,
			e.rudder_angle, e.wind_direction, e.wind_speed, e.barometric_pressure,
			e.air_temp, e.water_temp, e.engine_rpm, e.nav_status,
			e.sampling_delay_ms, COALESCE(r.sentence, '')
		FROM log_entry e
		LEFT JOIN nmea_raw r ON r.log_entry_id = e.id
		ORDER BY e.id DESC
		LIMIT ?`)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	q, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer closeWithError(q, &err)

	for q.Next() {
		var (
			r                     Row
			recordedAt            string
			ts                    sql.NullString
			lat, lon, cog, sog    sql.NullFloat64
			hdg, rudder, wd, ws   sql.NullFloat64
			baro, air, water, rpm sql.NullFloat64
			delayMS               int64
		)
		if err := q.Scan(&r.ID, &r.SessionID, &recordedAt, &ts, &lat, &lon, &cog, &sog,
			&hdg, &rudder, &wd, &ws, &baro, &air, &water, &rpm, &r.NavStatus, &delayMS, &r.Sentence,
		); err != nil {
			return nil, fmt.Errorf("scan log_entry: %w", err)
		}
		if r.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		if ts.Valid {
			t, err := time.Parse(timeLayout, ts.String)
			if err != nil {
				return nil, fmt.Errorf("parse timestamp_utc: %w", err)
			}
			r.Entry.TimestampUTC = &t
		}
		r.Entry.Latitude = fromNull(lat)
		r.Entry.Longitude = fromNull(lon)
		r.Entry.CourseOverGround = fromNull(cog)
		r.Entry.SpeedOverGround = fromNull(sog)
		r.Entry.Heading = fromNull(hdg)
		r.Entry.RudderAngle = fromNull(rudder)
		r.Entry.WindDirection = fromNull(wd)
		r.Entry.WindSpeed = fromNull(ws)
		r.Entry.BarometricPressure = fromNull(baro)
		r.Entry.AirTemp = fromNull(air)
		r.Entry.WaterTemp = fromNull(water)
		r.Entry.EngineRPM = fromNull(rpm)
		r.Delay = time.Duration(delayMS) * time.Millisecond
		rows = append(rows, r)
	}
	if err := q.Err(); err != nil {
		return nil, fmt.Errorf("iterate log_entry: %w", err)
	}
	return rows, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// talkerType returns the sentence header without its marker, e.g. "AIVDM".
func talkerType(sentence string) string {
	head, _, _ := strings.Cut(sentence, ",")
	return strings.TrimLeft(head, "$!")
}
