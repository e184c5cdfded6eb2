package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errTxClosed = errors.New("transaction fermée")

// TxConn sous-ensemble de pgx.Tx utilisé par Transaction
type TxConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxFunc travail exécuté dans une transaction ; une erreur annule tout
type TxFunc func(tx *Transaction) error

// TxRunner exécute un TxFunc dans une transaction (TransactionManager en production)
type TxRunner interface {
	WithTransaction(ctx context.Context, fn TxFunc) error
}

// Transaction Querier lié à une transaction ouverte ; inutilisable après Commit/Rollback
type Transaction struct {
	conn   TxConn
	closed bool
}

func NewTransaction(conn TxConn) *Transaction {
	return &Transaction{conn: conn}
}

func (t *Transaction) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	if t.closed {
		return nil, errTxClosed
	}
	return t.conn.Query(ctx, sql, args...)
}

// QueryRow l'erreur de transaction fermée remonte au Scan
func (t *Transaction) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	if t.closed {
		return errRow{errTxClosed}
	}
	return t.conn.QueryRow(ctx, sql, args...)
}

func (t *Transaction) Exec(ctx context.Context, sql string, args ...interface{}) error {
	if t.closed {
		return errTxClosed
	}
	_, err := t.conn.Exec(ctx, sql, args...)
	return err
}

func (t *Transaction) Commit(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}
	t.closed = true
	return t.conn.Commit(ctx)
}

// Rollback sans effet sur une transaction déjà terminée
func (t *Transaction) Rollback(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Rollback(ctx)
}

func (t *Transaction) IsClosed() bool {
	return t.closed
}

// Savepoint un lot d'import en échec n'annule pas les lots précédents
func (t *Transaction) Savepoint(ctx context.Context, name string) error {
	return t.Exec(ctx, "SAVEPOINT "+pgx.Identifier{name}.Sanitize())
}

func (t *Transaction) RollbackToSavepoint(ctx context.Context, name string) error {
	return t.Exec(ctx, "ROLLBACK TO SAVEPOINT "+pgx.Identifier{name}.Sanitize())
}

func (t *Transaction) ReleaseSavepoint(ctx context.Context, name string) error {
	return t.Exec(ctx, "RELEASE SAVEPOINT "+pgx.Identifier{name}.Sanitize())
}

type errRow struct{ err error }

func (r errRow) Scan(...interface{}) error { return r.err }

// TransactionManager ouvre les transactions sur le pool du Client
type TransactionManager struct {
	client *Client
}

func NewTransactionManager(client *Client) *TransactionManager {
	return &TransactionManager{client: client}
}

// WithTransaction exécute fn dans une transaction au niveau d'isolation par défaut
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn TxFunc) error {
	return tm.WithTransactionIsolation(ctx, "", fn)
}

func (tm *TransactionManager) WithTransactionIsolation(ctx context.Context, isoLevel pgx.TxIsoLevel, fn TxFunc) error {
	if tm.client.pool == nil {
		return errors.New("pool PostgreSQL nil")
	}

	pgxTx, err := tm.client.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: isoLevel})
	if err != nil {
		return fmt.Errorf("début transaction: %w", err)
	}
	return Run(ctx, NewTransaction(pgxTx), fn)
}

// Run applique fn puis valide ; rollback si fn échoue ou panique
func Run(ctx context.Context, tx *Transaction, fn TxFunc) (err error) {
	defer func() {
		if tx.IsClosed() {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			fmt.Printf("[POSTGRES] ⚠️ Rollback échoué: %v\n", rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
