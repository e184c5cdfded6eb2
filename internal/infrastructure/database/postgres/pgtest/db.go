// Package pgtest base PostgreSQL en mémoire pour les tests de services :
// chaque requête est servie par un handler enregistré sur son texte SQL exact.
package pgtest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"crm-pharma-core/internal/infrastructure/database/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Result lignes retournées par un handler ; Err simule une erreur SQL
type Result struct {
	Rows [][]interface{}
	Err  error
}

// Row raccourci pour un résultat d'une ligne
func Row(values ...interface{}) Result {
	return Result{Rows: [][]interface{}{values}}
}

func Fail(err error) Result {
	return Result{Err: err}
}

type Handler func(args []interface{}) Result

// Call requête reçue ; Tx vaut 0 hors transaction, sinon le numéro de la transaction
type Call struct {
	SQL  string
	Args []interface{}
	Tx   int
}

// DB implémente postgres.Querier et postgres.TxRunner
type DB struct {
	mu        sync.Mutex
	handlers  map[string]Handler
	calls     []Call
	txSeq     int
	Commits   int
	Rollbacks int
}

var (
	_ postgres.Querier  = (*DB)(nil)
	_ postgres.TxRunner = (*DB)(nil)
)

func New() *DB {
	return &DB{handlers: map[string]Handler{}}
}

// On enregistre le handler d'une requête ; remplace le précédent
func (db *DB) On(sql string, h Handler) *DB {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.handlers[sql] = h
	return db
}

// Returns handler à résultat fixe
func (db *DB) Returns(sql string, res Result) *DB {
	return db.On(sql, func([]interface{}) Result { return res })
}

func (db *DB) Calls() []Call {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]Call(nil), db.calls...)
}

// CallsTo appels reçus pour une requête donnée, dans l'ordre
func (db *DB) CallsTo(sql string) []Call {
	var out []Call
	for _, c := range db.Calls() {
		if c.SQL == sql {
			out = append(out, c)
		}
	}
	return out
}

// Index position du premier appel à sql, -1 si absent
func (db *DB) Index(sql string) int {
	for i, c := range db.Calls() {
		if c.SQL == sql {
			return i
		}
	}
	return -1
}

func (db *DB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return db.query(0, sql, args)
}

func (db *DB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	rows, err := db.query(0, sql, args)
	return &row{rows: rows, err: err}
}

func (db *DB) Exec(ctx context.Context, sql string, args ...interface{}) error {
	_, err := db.query(0, sql, args)
	return err
}

// WithTransaction exécute fn via postgres.Run, comme le TransactionManager
func (db *DB) WithTransaction(ctx context.Context, fn postgres.TxFunc) error {
	db.mu.Lock()
	db.txSeq++
	id := db.txSeq
	db.mu.Unlock()
	return postgres.Run(ctx, postgres.NewTransaction(&conn{db: db, tx: id}), fn)
}

func (db *DB) query(tx int, sql string, args []interface{}) (*rows, error) {
	db.mu.Lock()
	db.calls = append(db.calls, Call{SQL: sql, Args: args, Tx: tx})
	h, ok := db.handlers[sql]
	db.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("pgtest: requête inattendue: %s", sql)
	}
	res := h(args)
	if res.Err != nil {
		return nil, res.Err
	}
	return &rows{data: res.Rows, pos: -1}, nil
}

type conn struct {
	db *DB
	tx int
}

func (c *conn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.db.query(c.tx, sql, args)
}

func (c *conn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	rows, err := c.db.query(c.tx, sql, args)
	return &row{rows: rows, err: err}
}

func (c *conn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	_, err := c.db.query(c.tx, sql, args)
	return pgconn.NewCommandTag(""), err
}

func (c *conn) Commit(context.Context) error {
	c.db.mu.Lock()
	c.db.Commits++
	c.db.mu.Unlock()
	return nil
}

func (c *conn) Rollback(context.Context) error {
	c.db.mu.Lock()
	c.db.Rollbacks++
	c.db.mu.Unlock()
	return nil
}

type row struct {
	rows *rows
	err  error
}

func (r *row) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	if !r.rows.Next() {
		return pgx.ErrNoRows
	}
	return r.rows.Scan(dest...)
}

type rows struct {
	data [][]interface{}
	pos  int
}

func (r *rows) Close()                                       {}
func (r *rows) Err() error                                   { return nil }
func (r *rows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("") }
func (r *rows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *rows) RawValues() [][]byte                          { return nil }
func (r *rows) Conn() *pgx.Conn                              { return nil }

func (r *rows) Next() bool {
	r.pos++
	return r.pos < len(r.data)
}

func (r *rows) Values() ([]any, error) {
	return r.data[r.pos], nil
}

func (r *rows) Scan(dest ...any) error {
	values := r.data[r.pos]
	if len(values) != len(dest) {
		return fmt.Errorf("pgtest: %d colonnes pour %d destinations", len(values), len(dest))
	}
	for i, d := range dest {
		if err := assign(d, values[i]); err != nil {
			return fmt.Errorf("pgtest: colonne %d: %w", i, err)
		}
	}
	return nil
}

// assign copie v dans *dest ; nil remet à zéro, un pointeur de destination est alloué
func assign(dest, v interface{}) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return fmt.Errorf("destination %T non pointeur", dest)
	}
	target := dv.Elem()

	if v == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}

	val := reflect.ValueOf(v)
	switch {
	case val.Type().AssignableTo(target.Type()):
		target.Set(val)
	case val.Kind() == target.Kind() && val.Type().ConvertibleTo(target.Type()):
		target.Set(val.Convert(target.Type()))
	case target.Kind() == reflect.Ptr && val.Type().AssignableTo(target.Type().Elem()):
		p := reflect.New(target.Type().Elem())
		p.Elem().Set(val)
		target.Set(p)
	default:
		return fmt.Errorf("%T vers %s", v, target.Type())
	}
	return nil
}
