package org

import "time"

// The directory is a strict three-level containment hierarchy:
// Company -> Site -> Establishment -> Employee. It is owned by HR CRUD
// elsewhere; this domain only reads it.

type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Site struct {
	ID        string
	CompanyID string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Establishment struct {
	ID        string
	SiteID    string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Employee struct {
	ID              string
	EstablishmentID string
	FullName        string
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Ancestry resolves an establishment to its single site and company.
type Ancestry struct {
	EstablishmentID string
	SiteID          string
	CompanyID       string
}

type ScopeLevel string

const (
	ScopeCompany       ScopeLevel = "COMPANY"
	ScopeSite          ScopeLevel = "SITE"
	ScopeEstablishment ScopeLevel = "ESTABLISHMENT"
)

var ScopeLevelValues = []string{
	string(ScopeCompany),
	string(ScopeSite),
	string(ScopeEstablishment),
}

// Scope selects an aggregation subtree. It is always passed explicitly;
// there is no ambient "current company" state anywhere in the core.
type Scope struct {
	Level ScopeLevel `json:"level"`
	ID    string     `json:"id"`
}
