package application

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	gerrors "github.com/go-faster/errors"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// MigrationManager collects embedded schema filesystems from modules and
// applies them with goose at startup. Each module tracks its own version
// table so module migration histories stay independent.
type MigrationManager struct {
	schemas []schemaFS
}

type schemaFS struct {
	module string
	fsys   fs.FS
	dir    string
}

func NewMigrationManager() *MigrationManager {
	return &MigrationManager{}
}

// RegisterSchema adds a module's embedded migration directory. dir is the
// path of the migration files within the embed FS.
func (m *MigrationManager) RegisterSchema(module string, fsys *embed.FS, dir string) {
	m.schemas = append(m.schemas, schemaFS{module: module, fsys: fsys, dir: dir})
}

// Run applies all registered migrations against the given DSN, in module
// registration order.
func (m *MigrationManager) Run(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return gerrors.Wrap(err, "open migration connection")
	}
	defer func() { _ = db.Close() }()

	for _, schema := range m.schemas {
		sub, err := fs.Sub(schema.fsys, schema.dir)
		if err != nil {
			return gerrors.Wrap(err, "read embedded schema")
		}
		store, err := database.NewStore(database.DialectPostgres, fmt.Sprintf("goose_%s_version", schema.module))
		if err != nil {
			return gerrors.Wrap(err, "create migration store")
		}
		provider, err := goose.NewProvider("", db, sub, goose.WithStore(store))
		if err != nil {
			return gerrors.Wrap(err, "create migration provider")
		}
		if _, err := provider.Up(ctx); err != nil {
			return gerrors.Wrapf(err, "apply %s migrations", schema.module)
		}
	}
	return nil
}
