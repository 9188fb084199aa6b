package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/launchdash/launchdash/dataset"
)

// ErrNoSnapshot is returned when the store holds no snapshot yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// timeLayout sorts lexicographically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Snapshot describes one stored copy of the dataset.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetchedAt"`
	RowCount  int       `json:"rowCount"`
}

type dbSnapshot struct {
	ID        uuid.UUID `db:"id"`
	Source    string    `db:"source"`
	FetchedAt string    `db:"fetched_at"`
	RowCount  int       `db:"row_count"`
}

type dbLaunch struct {
	FlightNumber           int     `db:"flight_number"`
	LaunchSite             string  `db:"launch_site"`
	MissionOutcome         string  `db:"mission_outcome"`
	Class                  int     `db:"class"`
	PayloadMassKg          float64 `db:"payload_mass_kg"`
	BoosterVersion         string  `db:"booster_version"`
	BoosterVersionCategory string  `db:"booster_version_category"`
}

func toSnapshot(s dbSnapshot) (*Snapshot, error) {
	fetchedAt, err := time.Parse(timeLayout, s.FetchedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing fetched_at of snapshot %s", s.ID)
	}
	return &Snapshot{ID: s.ID, Source: s.Source, FetchedAt: fetchedAt, RowCount: s.RowCount}, nil
}

func toLaunch(l dbLaunch) dataset.Launch {
	return dataset.Launch(l)
}

// SaveSnapshot stores launches as a new snapshot in a single transaction.
func (repo *Repository) SaveSnapshot(ctx context.Context, source string, launches []dataset.Launch) (*Snapshot, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "generating uuid")
	}
	snap := &Snapshot{
		ID:        id,
		Source:    source,
		FetchedAt: time.Now().UTC(),
		RowCount:  len(launches),
	}

	tx, err := repo.dbConn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO snapshot(id, source, fetched_at, row_count) VALUES (?,?,?,?)`,
		snap.ID, snap.Source, snap.FetchedAt.Format(timeLayout), snap.RowCount)
	if err != nil {
		return nil, errors.Wrap(err, "inserting snapshot")
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO launch(
		snapshot_id, position, flight_number, launch_site, mission_outcome,
		class, payload_mass_kg, booster_version, booster_version_category
	) VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return nil, errors.Wrap(err, "preparing launch insert")
	}
	defer stmt.Close()

	for i, l := range launches {
		_, err := stmt.ExecContext(ctx, snap.ID, i, l.FlightNumber, l.LaunchSite, l.MissionOutcome,
			l.Class, l.PayloadMassKg, l.BoosterVersion, l.BoosterVersionCategory)
		if err != nil {
			return nil, errors.Wrapf(err, "inserting launch %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing snapshot")
	}
	return snap, nil
}

// LatestSnapshot returns the newest snapshot and its launches in their
// original order.
func (repo *Repository) LatestSnapshot(ctx context.Context) (*Snapshot, []dataset.Launch, error) {
	var row dbSnapshot
	err := repo.dbConn.GetContext(ctx, &row,
		`SELECT id, source, fetched_at, row_count FROM snapshot ORDER BY fetched_at DESC, id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "getting latest snapshot")
	}

	snap, err := toSnapshot(row)
	if err != nil {
		return nil, nil, err
	}

	launches, err := repo.launches(ctx, snap.ID)
	if err != nil {
		return nil, nil, err
	}
	return snap, launches, nil
}

// Snapshots lists stored snapshots, newest first.
func (repo *Repository) Snapshots(ctx context.Context) ([]*Snapshot, error) {
	var rows []dbSnapshot
	err := repo.dbConn.SelectContext(ctx, &rows,
		`SELECT id, source, fetched_at, row_count FROM snapshot ORDER BY fetched_at DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "listing snapshots")
	}

	snaps := make([]*Snapshot, 0, len(rows))
	for _, r := range rows {
		s, err := toSnapshot(r)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, nil
}

// Prune deletes all but the newest keep snapshots and returns how many were removed.
func (repo *Repository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := repo.dbConn.ExecContext(ctx, `DELETE FROM snapshot WHERE id NOT IN (
		SELECT id FROM snapshot ORDER BY fetched_at DESC, id DESC LIMIT ?
	)`, keep)
	if err != nil {
		return 0, errors.Wrap(err, "pruning snapshots")
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "fetching rows affected")
	}
	return removed, nil
}

func (repo *Repository) launches(ctx context.Context, snapshotID uuid.UUID) ([]dataset.Launch, error) {
	var rows []dbLaunch
	err := repo.dbConn.SelectContext(ctx, &rows, `SELECT
		flight_number, launch_site, mission_outcome, class, payload_mass_kg,
		booster_version, booster_version_category
		FROM launch WHERE snapshot_id = ? ORDER BY position`, snapshotID)
	if err != nil {
		return nil, errors.Wrapf(err, "getting launches of snapshot %s", snapshotID)
	}

	launches := make([]dataset.Launch, len(rows))
	for i, r := range rows {
		launches[i] = toLaunch(r)
	}
	return launches, nil
}
