// internal/db/queries.go
package db

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/qustavo/dotsql"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// Queries serves named SQL from the embedded .sql files, rebound to the
// connected driver's placeholder style.
type Queries struct {
	dot *dotsql.DotSql
	db  *sqlx.DB
}

func LoadQueries(conn *sqlx.DB) (*Queries, error) {
	var combined strings.Builder

	err := fs.WalkDir(queriesFS, "queries", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}
		content, err := queriesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		combined.Write(content)
		combined.WriteString("\n")
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load query files: %w", err)
	}

	dot, err := dotsql.LoadFromString(combined.String())
	if err != nil {
		return nil, fmt.Errorf("parse queries: %w", err)
	}

	return &Queries{dot: dot, db: conn}, nil
}

// Raw returns the named query with placeholders rebound.
func (q *Queries) Raw(name string) (string, error) {
	query, err := q.dot.Raw(name)
	if err != nil {
		return "", fmt.Errorf("query not found: %s", name)
	}
	return q.db.Rebind(query), nil
}

// In expands slice arguments of the named query (sqlx.In) and rebinds.
func (q *Queries) In(name string, args ...interface{}) (string, []interface{}, error) {
	query, err := q.dot.Raw(name)
	if err != nil {
		return "", nil, fmt.Errorf("query not found: %s", name)
	}
	query, args, err = sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("expand %s: %w", name, err)
	}
	return q.db.Rebind(query), args, nil
}
