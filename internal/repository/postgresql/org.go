package postgresql

import (
	"context"
	"errors"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/org"
	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type directoryRepository struct {
	db *database.DB
}

func NewDirectoryRepository(db *database.DB) org.DirectoryRepository {
	return &directoryRepository{db: db}
}

// GetEmployee implements org.DirectoryRepository.
func (r *directoryRepository) GetEmployee(ctx context.Context, id string) (org.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, establishment_id, full_name, active, created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	var e org.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.EstablishmentID, &e.FullName, &e.Active, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return org.Employee{}, org.ErrEmployeeNotFound
		}
		return org.Employee{}, storeErr("failed to get employee", err)
	}

	return e, nil
}

// GetAncestry implements org.DirectoryRepository.
func (r *directoryRepository) GetAncestry(ctx context.Context, establishmentID string) (org.Ancestry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.site_id, s.company_id
		FROM establishments e
		JOIN sites s ON s.id = e.site_id
		WHERE e.id = $1
	`

	var ancestry org.Ancestry
	err := q.QueryRow(ctx, query, establishmentID).Scan(
		&ancestry.EstablishmentID, &ancestry.SiteID, &ancestry.CompanyID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return org.Ancestry{}, org.ErrEstablishmentNotFound
		}
		return org.Ancestry{}, storeErr("failed to get establishment ancestry", err)
	}

	return ancestry, nil
}

// ListActiveEmployees implements org.DirectoryRepository. The scope level
// only widens or narrows the WHERE clause; the selected columns and the
// downstream treatment are identical across levels.
func (r *directoryRepository) ListActiveEmployees(ctx context.Context, scope org.Scope) ([]org.Employee, error) {
	q := GetQuerier(ctx, r.db)

	base := `
		SELECT emp.id, emp.establishment_id, emp.full_name, emp.active, emp.created_at, emp.updated_at
		FROM employees emp
	`

	var query string
	switch scope.Level {
	case org.ScopeEstablishment:
		query = base + `
		WHERE emp.establishment_id = $1
		  AND emp.active
		ORDER BY emp.full_name ASC
		`
	case org.ScopeSite:
		query = base + `
		JOIN establishments est ON est.id = emp.establishment_id
		WHERE est.site_id = $1
		  AND emp.active
		ORDER BY emp.full_name ASC
		`
	case org.ScopeCompany:
		query = base + `
		JOIN establishments est ON est.id = emp.establishment_id
		JOIN sites st ON st.id = est.site_id
		WHERE st.company_id = $1
		  AND emp.active
		ORDER BY emp.full_name ASC
		`
	default:
		return nil, org.ErrUnknownScopeLevel
	}

	rows, err := q.Query(ctx, query, scope.ID)
	if err != nil {
		return nil, storeErr("failed to list active employees", err)
	}
	defer rows.Close()

	var employees []org.Employee
	for rows.Next() {
		var e org.Employee
		if err := rows.Scan(&e.ID, &e.EstablishmentID, &e.FullName, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, storeErr("failed to scan employee", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate employees", err)
	}

	return employees, nil
}

// ListSites implements org.DirectoryRepository.
func (r *directoryRepository) ListSites(ctx context.Context, companyID string) ([]org.Site, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, created_at, updated_at
		FROM sites
		WHERE company_id = $1
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, storeErr("failed to list sites", err)
	}
	defer rows.Close()

	var sites []org.Site
	for rows.Next() {
		var s org.Site
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, storeErr("failed to scan site", err)
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate sites", err)
	}

	return sites, nil
}

// ListEstablishments implements org.DirectoryRepository.
func (r *directoryRepository) ListEstablishments(ctx context.Context, siteID string) ([]org.Establishment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, site_id, name, created_at, updated_at
		FROM establishments
		WHERE site_id = $1
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query, siteID)
	if err != nil {
		return nil, storeErr("failed to list establishments", err)
	}
	defer rows.Close()

	var establishments []org.Establishment
	for rows.Next() {
		var e org.Establishment
		if err := rows.Scan(&e.ID, &e.SiteID, &e.Name, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, storeErr("failed to scan establishment", err)
		}
		establishments = append(establishments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate establishments", err)
	}

	return establishments, nil
}
