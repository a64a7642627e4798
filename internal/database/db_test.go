package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func addSite(t *testing.T, db *DB, name string) *Site {
	t.Helper()
	site := &Site{Name: name, Address: "Rabat"}
	require.NoError(t, db.Sites.Create(context.Background(), site))
	return site
}

func addShipment(t *testing.T, db *DB, siteID string, count int64, date Date) *Shipment {
	t.Helper()
	shipment := &Shipment{SiteID: siteID, HandlerCount: count, ShipmentDate: date}
	require.NoError(t, db.Shipments.Create(context.Background(), shipment))
	return shipment
}

func TestOpen_CreatesSchema(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"sites", "shipments", "users"} {
		var name string
		err := db.Get(&name, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
	assert.NoError(t, db.IsHealthy(context.Background()))
}

func TestSiteStore(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateDefaults", func(t *testing.T) {
		db := openTestDB(t)
		site := addSite(t, db, "Usine Textile Casablanca")

		assert.NotEmpty(t, site.ID)
		assert.Equal(t, StatusActive, site.Status)

		got, err := db.Sites.GetByID(ctx, site.ID)
		require.NoError(t, err)
		assert.Equal(t, *site, *got)
	})

	t.Run("ListKeepsInsertionOrderAndFilters", func(t *testing.T) {
		db := openTestDB(t)
		a := addSite(t, db, "Zone Franche Kénitra")
		b := addSite(t, db, "Centre Commercial Agdal")
		require.NoError(t, db.Sites.UpdateStatus(ctx, b.ID, StatusInactive))

		all, err := db.Sites.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, a.ID, all[0].ID)
		assert.Equal(t, b.ID, all[1].ID)

		inactive, err := db.Sites.List(ctx, StatusInactive)
		require.NoError(t, err)
		require.Len(t, inactive, 1)
		assert.Equal(t, b.ID, inactive[0].ID)
	})

	t.Run("UpdateAndMissing", func(t *testing.T) {
		db := openTestDB(t)
		site := addSite(t, db, "Marché Central")

		update := &Site{Name: "Marché Central Marrakech", Address: "Marrakech", Status: StatusInactive}
		require.NoError(t, db.Sites.Update(ctx, site.ID, update))
		assert.Equal(t, site.ID, update.ID)

		got, err := db.Sites.GetByID(ctx, site.ID)
		require.NoError(t, err)
		assert.Equal(t, "Marché Central Marrakech", got.Name)
		assert.Equal(t, StatusInactive, got.Status)

		assert.ErrorIs(t, db.Sites.Update(ctx, "missing", update), sql.ErrNoRows)
		assert.ErrorIs(t, db.Sites.UpdateStatus(ctx, "missing", StatusActive), sql.ErrNoRows)
		assert.ErrorIs(t, db.Sites.Delete(ctx, "missing"), sql.ErrNoRows)

		_, err = db.Sites.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("RejectsUnknownStatus", func(t *testing.T) {
		db := openTestDB(t)
		err := db.Sites.Create(ctx, &Site{Name: "X", Status: "actif"})
		assert.Error(t, err)
	})
}

func TestShipmentStore(t *testing.T) {
	ctx := context.Background()

	t.Run("ListOrderedByDateDescending", func(t *testing.T) {
		db := openTestDB(t)
		site := addSite(t, db, "Entrepôt Logistique Tanger")
		addShipment(t, db, site.ID, 5, NewDate(2025, time.January, 10))
		addShipment(t, db, site.ID, 7, NewDate(2025, time.February, 5))
		addShipment(t, db, site.ID, 3, NewDate(2025, time.January, 20))

		shipments, err := db.Shipments.List(ctx)
		require.NoError(t, err)
		require.Len(t, shipments, 3)
		assert.Equal(t, "2025-02-05", shipments[0].ShipmentDate.String())
		assert.Equal(t, "2025-01-20", shipments[1].ShipmentDate.String())
		assert.Equal(t, "2025-01-10", shipments[2].ShipmentDate.String())
		assert.Equal(t, int64(7*UnitRate), shipments[0].Cost())
	})

	t.Run("UnknownSiteRejected", func(t *testing.T) {
		db := openTestDB(t)
		err := db.Shipments.Create(ctx, &Shipment{SiteID: "nope", HandlerCount: 2, ShipmentDate: NewDate(2025, 1, 1)})
		assert.ErrorIs(t, err, ErrSiteNotFound)
	})

	t.Run("NonPositiveCountRejected", func(t *testing.T) {
		db := openTestDB(t)
		site := addSite(t, db, "S")
		err := db.Shipments.Create(ctx, &Shipment{SiteID: site.ID, HandlerCount: 0, ShipmentDate: NewDate(2025, 1, 1)})
		assert.Error(t, err)
	})

	t.Run("DeleteSiteCascadesOnlyItsShipments", func(t *testing.T) {
		db := openTestDB(t)
		a := addSite(t, db, "A")
		b := addSite(t, db, "B")
		addShipment(t, db, a.ID, 4, NewDate(2025, 3, 1))
		addShipment(t, db, a.ID, 6, NewDate(2025, 3, 2))
		kept := addShipment(t, db, b.ID, 9, NewDate(2025, 3, 3))

		require.NoError(t, db.Sites.Delete(ctx, a.ID))

		remaining, err := db.Shipments.List(ctx)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, kept.ID, remaining[0].ID)

		forA, err := db.Shipments.ListBySite(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, forA)
	})

	t.Run("Delete", func(t *testing.T) {
		db := openTestDB(t)
		site := addSite(t, db, "S")
		shipment := addShipment(t, db, site.ID, 1, NewDate(2025, 1, 1))

		require.NoError(t, db.Shipments.Delete(ctx, shipment.ID))
		assert.ErrorIs(t, db.Shipments.Delete(ctx, shipment.ID), sql.ErrNoRows)

		_, err := db.Shipments.GetByID(ctx, shipment.ID)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	user := &User{Email: "admin@example.com", PasswordHash: "$argon2id$stub", FullName: "Administrateur"}
	require.NoError(t, db.Users.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	got, err := db.Users.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, *user, *got)

	_, err = db.Users.GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.Error(t, db.Users.Create(ctx, &User{Email: "admin@example.com", PasswordHash: "x"}), "duplicate email")
}

func TestShipmentJSON(t *testing.T) {
	shipment := Shipment{ID: "sh-1", SiteID: "site-1", HandlerCount: 4, ShipmentDate: NewDate(2025, time.May, 2)}

	data, err := json.Marshal(shipment)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"sh-1","site_id":"site-1","handler_count":4,"shipment_date":"2025-05-02","cost_total":600}`, string(data))

	var decoded Shipment
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, shipment, decoded)
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2025-01-31"))
	assert.Equal(t, "2025-01-31", d.String())

	require.NoError(t, d.Scan([]byte("2024-12-01T00:00:00Z")))
	assert.Equal(t, "2024-12-01", d.String())

	require.NoError(t, d.Scan(time.Date(2023, 7, 4, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2023-07-04", d.String())

	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("31/01/2025"))
}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return New(sqlx.NewDb(sqlDB, "sqlite3")), mock
}

func TestSiteStore_ListPropagatesStoreFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, address, status FROM sites ORDER BY rowid`)).
		WillReturnError(errors.New("disk I/O error"))

	_, err := db.Sites.List(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list sites")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShipmentStore_CreateRollsBackOnInsertFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM sites WHERE id = ?`)).
		WithArgs("site-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO shipments`)).
		WithArgs(sqlmock.AnyArg(), "site-1", int64(3), "2025-02-05").
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err := db.Shipments.Create(context.Background(), &Shipment{
		SiteID:       "site-1",
		HandlerCount: 3,
		ShipmentDate: NewDate(2025, time.February, 5),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create shipment")
	assert.NoError(t, mock.ExpectationsWereMet())
}
