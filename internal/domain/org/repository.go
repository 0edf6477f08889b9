package org

import "context"

// DirectoryRepository is the read-only view of the organizational tree.
// Employee and hierarchy CRUD belongs to the HR system and is out of scope.
type DirectoryRepository interface {
	// GetEmployee returns a single employee record
	GetEmployee(ctx context.Context, id string) (Employee, error)

	// GetAncestry resolves an establishment to its site and company
	GetAncestry(ctx context.Context, establishmentID string) (Ancestry, error)

	// ListActiveEmployees returns active employees under a scope.
	// The scope level only changes the selection predicate, never the
	// per-employee treatment downstream.
	ListActiveEmployees(ctx context.Context, scope Scope) ([]Employee, error)

	// ListSites returns the sites of a company
	ListSites(ctx context.Context, companyID string) ([]Site, error)

	// ListEstablishments returns the establishments of a site
	ListEstablishments(ctx context.Context, siteID string) ([]Establishment, error)
}
