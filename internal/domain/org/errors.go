package org

import "errors"

var (
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrEstablishmentNotFound = errors.New("establishment not found")
	ErrUnknownScopeLevel     = errors.New("unknown scope level")
)
