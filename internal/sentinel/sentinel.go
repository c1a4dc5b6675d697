package sentinel

import "errors"

// Sentinel errors for storage facts. Repositories return these (optionally
// wrapped) so the command and query services can translate them into domain
// errors.
//
//   - ErrNotFound: no row for the requested key
//   - ErrConflict: a unique key (username, email, SSN, account number) is taken
//   - ErrDependency: a foreign key still references the row, or the referenced row is gone
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrDependency = errors.New("dependency")
)
