// Package repomanager wires repository constructors to database handles and
// runs schema migrations (via goose) at startup.
package repomanager

import (
	"github.com/dmitrijs2005/filedrop/internal/dbx"
	"github.com/dmitrijs2005/filedrop/internal/server/repositories/entries"
)

// RepositoryManager hands out repositories bound to a particular DBTX, so a
// service can run several repository calls inside one transaction.
type RepositoryManager interface {
	Entries(db dbx.DBTX) entries.Repository
}
