package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ShipmentStore handles database operations for shipments
type ShipmentStore struct {
	db *sqlx.DB
}

func NewShipmentStore(db *sqlx.DB) *ShipmentStore {
	return &ShipmentStore{db: db}
}

const shipmentColumns = `id, site_id, handler_count, shipment_date`

// List returns all shipments, most recent date first
func (s *ShipmentStore) List(ctx context.Context) ([]Shipment, error) {
	shipments := []Shipment{}
	err := s.db.SelectContext(ctx, &shipments,
		`SELECT `+shipmentColumns+` FROM shipments ORDER BY shipment_date DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}
	return shipments, nil
}

// ListBySite returns the shipments of one site, most recent date first
func (s *ShipmentStore) ListBySite(ctx context.Context, siteID string) ([]Shipment, error) {
	shipments := []Shipment{}
	err := s.db.SelectContext(ctx, &shipments,
		`SELECT `+shipmentColumns+` FROM shipments WHERE site_id = ? ORDER BY shipment_date DESC, rowid DESC`,
		siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments for site %s: %w", siteID, err)
	}
	return shipments, nil
}

// GetByID returns a shipment by ID
func (s *ShipmentStore) GetByID(ctx context.Context, id string) (*Shipment, error) {
	var shipment Shipment
	err := s.db.GetContext(ctx, &shipment, `SELECT `+shipmentColumns+` FROM shipments WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// Create records a shipment. It returns ErrSiteNotFound when the site does not exist.
func (s *ShipmentStore) Create(ctx context.Context, shipment *Shipment) error {
	if shipment.ID == "" {
		shipment.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists, `SELECT 1 FROM sites WHERE id = ?`, shipment.SiteID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSiteNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check site: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO shipments (id, site_id, handler_count, shipment_date) VALUES (?, ?, ?, ?)`,
		shipment.ID, shipment.SiteID, shipment.HandlerCount, shipment.ShipmentDate)
	if err != nil {
		return fmt.Errorf("failed to create shipment: %w", err)
	}

	return tx.Commit()
}

// Delete removes a shipment
func (s *ShipmentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shipments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shipment: %w", err)
	}
	return expectOneRow(result)
}
