// Package migrations carries the versioned SQL schema of the ledger database.
// The files are embedded so the server and the migrate CLI never depend on the working directory.
package migrations

import "embed"

// FS holds every *.up.sql / *.down.sql pair in golang-migrate naming
//
//go:embed *.sql
var FS embed.FS
