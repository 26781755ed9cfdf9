// Package sqlxrepos implements the repositories on PostgreSQL with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type repository struct {
	db *sqlx.DB
}

// getExec prefers a service-provided executor (typically a transaction) over
// the repository's own connection.
func (repo repository) getExec(svcExec []core.DBExecutor) sqlx.ExtContext {
	if len(svcExec) > 0 {
		switch e := svcExec[0].(type) {
		case sqlx.ExtContext:
			return e
		case *sql.Tx:
			return &sqlx.Tx{Tx: e, Mapper: repo.db.Mapper}
		}
	}
	return repo.db
}

// withTx runs fn in a new transaction, unless the service already provided an
// executor; in that case the caller owns the transaction boundaries.
func (repo repository) withTx(ctx context.Context, svcExec []core.DBExecutor, fn func(ext sqlx.ExtContext) error) error {
	if len(svcExec) > 0 {
		return fn(repo.getExec(svcExec))
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// whereClause joins conditions with AND, empty when there are none.
func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func orderClause(ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return ""
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return " ORDER BY " + strings.Join(orderList, ", ")
}

// selectIn expands an IN query for the executor's bindvar type and selects
// into dest.
func selectIn(ctx context.Context, ext sqlx.ExtContext, dest interface{}, query string, args ...interface{}) error {
	q, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, ext, dest, ext.Rebind(q), inArgs...)
}

func execIn(ctx context.Context, ext sqlx.ExtContext, query string, args ...interface{}) (sql.Result, error) {
	q, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	return ext.ExecContext(ctx, ext.Rebind(q), inArgs...)
}
