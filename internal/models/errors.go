// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "errors"

// Domain errors returned by the service layer. Handlers map them to
// HTTP status codes with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadySigned = errors.New("contract is already signed")
	ErrValidation    = errors.New("validation failed")
	ErrExportFailed  = errors.New("document export failed")
	ErrTransaction   = errors.New("transaction failed")
)
