package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SiteStore handles database operations for client sites
type SiteStore struct {
	db *sqlx.DB
}

func NewSiteStore(db *sqlx.DB) *SiteStore {
	return &SiteStore{db: db}
}

// List returns sites in insertion order. An empty status returns every site.
func (s *SiteStore) List(ctx context.Context, status SiteStatus) ([]Site, error) {
	query := `SELECT id, name, address, status FROM sites`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY rowid`

	sites := []Site{}
	if err := s.db.SelectContext(ctx, &sites, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return sites, nil
}

// GetByID returns a site by ID
func (s *SiteStore) GetByID(ctx context.Context, id string) (*Site, error) {
	var site Site
	err := s.db.GetContext(ctx, &site, `SELECT id, name, address, status FROM sites WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &site, nil
}

// Create inserts a new site, assigning an ID and the active status when absent
func (s *SiteStore) Create(ctx context.Context, site *Site) error {
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	if site.Status == "" {
		site.Status = StatusActive
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sites (id, name, address, status) VALUES (?, ?, ?, ?)`,
		site.ID, site.Name, site.Address, site.Status)
	if err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}
	return nil
}

// Update replaces the name, address and status of a site
func (s *SiteStore) Update(ctx context.Context, id string, site *Site) error {
	if site.Status == "" {
		site.Status = StatusActive
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE sites SET name = ?, address = ?, status = ? WHERE id = ?`,
		site.Name, site.Address, site.Status, id)
	if err != nil {
		return fmt.Errorf("failed to update site: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return err
	}

	site.ID = id
	return nil
}

// UpdateStatus changes only the status of a site
func (s *SiteStore) UpdateStatus(ctx context.Context, id string, status SiteStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE sites SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update site status: %w", err)
	}
	return expectOneRow(result)
}

// Delete removes a site. Its shipments go with it.
func (s *SiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	return expectOneRow(result)
}

// expectOneRow maps a statement that touched nothing to sql.ErrNoRows
func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
