package store

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/audiokeeper/internal/common"
	"github.com/dmitrijs2005/audiokeeper/internal/dbx"
	"github.com/dmitrijs2005/audiokeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dmitrijs2005/audiokeeper/internal/server/store"

// mapper resolves `db` tags the same way sqlx does.
var mapper = reflectx.NewMapperFunc("db", strings.ToLower)

// Fields carries column values for Create and Update, keyed by column name.
type Fields map[string]any

// Validator inspects the candidate row inside the write transaction, after
// the requested changes were applied and before they are written. A non-nil
// error aborts the transaction; conflicts should be built with common.Conflict.
type Validator[T any] func(ctx context.Context, tx dbx.DBTX, candidate *T) error

// Row is satisfied by pointers to structs embedding models.Record.
type Row[T any] interface {
	*T
	Meta() *models.Record
}

// Gateway performs CRUD on one table. Writes run in a single transaction
// using the store's transaction options, so a validator's reads and the
// following write are atomic with respect to concurrent writers.
type Gateway[T any, P Row[T]] struct {
	db     *sqlx.DB
	table  Table
	txOpts *sql.TxOptions
	now    func() time.Time
	newID  func() string
	tracer trace.Tracer

	selectSQL string
	insertSQL string
}

// NewGateway binds table to db. now is the clock used for timestamps.
func NewGateway[T any, P Row[T]](db *sqlx.DB, table Table, txOpts *sql.TxOptions, now func() time.Time) *Gateway[T, P] {
	if now == nil {
		now = time.Now
	}

	named := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		named[i] = ":" + c
	}

	return &Gateway[T, P]{
		db:        db,
		table:     table,
		txOpts:    txOpts,
		now:       now,
		newID:     uuid.NewString,
		tracer:    otel.Tracer(tracerName),
		selectSQL: fmt.Sprintf("SELECT %s FROM %s", strings.Join(table.Columns, ", "), table.Name),
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table.Name, strings.Join(table.Columns, ", "), strings.Join(named, ", ")),
	}
}

// Create builds a row from fields, assigns a new id and created_at, runs
// validate against it and inserts it.
func (g *Gateway[T, P]) Create(ctx context.Context, fields Fields, validate Validator[T]) (_ P, err error) {
	ctx, span := g.startSpan(ctx, "create")
	defer func() { endSpan(span, err) }()

	row := P(new(T))
	if err := g.apply(row, fields); err != nil {
		return nil, err
	}
	meta := row.Meta()
	meta.ID = g.newID()
	meta.CreatedAt = g.now().Unix()

	err = dbx.WithTx(ctx, g.db, g.txOpts, func(ctx context.Context, tx dbx.DBTX) error {
		if validate != nil {
			if err := validate(ctx, tx, (*T)(row)); err != nil {
				return err
			}
		}
		_, err := sqlx.NamedExecContext(ctx, tx, g.insertSQL, row)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	return row, nil
}

// Retrieve returns the live row with the given id or common.ErrorNotFound.
func (g *Gateway[T, P]) Retrieve(ctx context.Context, id string) (_ P, err error) {
	ctx, span := g.startSpan(ctx, "retrieve")
	defer func() { endSpan(span, err) }()

	row := P(new(T))
	if err := g.db.GetContext(ctx, row, g.db.Rebind(g.selectSQL+" WHERE id = ? AND deleted_at IS NULL"), id); err != nil {
		return nil, classify(err)
	}

	return row, nil
}

// RetrieveBy returns every live row whose column equals value. No match is
// an empty slice, not an error.
func (g *Gateway[T, P]) RetrieveBy(ctx context.Context, column string, value any) (_ []P, err error) {
	ctx, span := g.startSpan(ctx, "retrieve_by")
	defer func() { endSpan(span, err) }()

	if !g.table.hasColumn(column) {
		return nil, common.Invalid(fmt.Sprintf("unknown column %q", column))
	}

	rows := make([]P, 0)
	query := g.db.Rebind(fmt.Sprintf("%s WHERE %s = ? AND deleted_at IS NULL ORDER BY created_at, id", g.selectSQL, column))
	if err := g.db.SelectContext(ctx, &rows, query, value); err != nil {
		return nil, classify(err)
	}

	return rows, nil
}

// Update loads the live row, applies fields, stamps updated_at, runs
// validate on the merged row and writes only the supplied columns.
func (g *Gateway[T, P]) Update(ctx context.Context, id string, fields Fields, validate Validator[T]) (_ P, err error) {
	ctx, span := g.startSpan(ctx, "update")
	defer func() { endSpan(span, err) }()

	row := P(new(T))
	err = dbx.WithTx(ctx, g.db, g.txOpts, func(ctx context.Context, tx dbx.DBTX) error {
		if err := sqlx.GetContext(ctx, tx, row, tx.Rebind(g.selectSQL+" WHERE id = ? AND deleted_at IS NULL"), id); err != nil {
			return err
		}
		if err := g.apply(row, fields); err != nil {
			return err
		}
		updated := g.now().Unix()
		row.Meta().UpdatedAt = &updated

		if validate != nil {
			if err := validate(ctx, tx, (*T)(row)); err != nil {
				return err
			}
		}

		columns := sortedKeys(fields)
		sets := make([]string, 0, len(columns)+1)
		args := make([]any, 0, len(columns)+2)
		for _, c := range columns {
			v, _ := fieldOf(reflect.ValueOf(row), c)
			sets = append(sets, c+" = ?")
			args = append(args, v.Interface())
		}
		sets = append(sets, "updated_at = ?")
		args = append(args, updated, id)

		query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND deleted_at IS NULL", g.table.Name, strings.Join(sets, ", "))
		_, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	return row, nil
}

// Delete removes the live row according to the table's DeletePolicy,
// following its cascade rules in the same transaction.
func (g *Gateway[T, P]) Delete(ctx context.Context, id string) (err error) {
	ctx, span := g.startSpan(ctx, "delete")
	defer func() { endSpan(span, err) }()

	policy := g.table.Delete
	span.SetAttributes(attribute.String("store.delete_mode", policy.Mode.String()))

	err = dbx.WithTx(ctx, g.db, g.txOpts, func(ctx context.Context, tx dbx.DBTX) error {
		if policy.Mode == HardDelete {
			for _, c := range policy.Cascade {
				q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", c.Table, c.ForeignKey)
				if _, err := tx.ExecContext(ctx, tx.Rebind(q), id); err != nil {
					return err
				}
			}
			q := fmt.Sprintf("DELETE FROM %s WHERE id = ? AND deleted_at IS NULL", g.table.Name)
			return execOne(ctx, tx, q, id)
		}

		now := g.now().Unix()
		q := fmt.Sprintf("UPDATE %s SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL", g.table.Name)
		if err := execOne(ctx, tx, q, now, now, id); err != nil {
			return err
		}
		for _, c := range policy.Cascade {
			q := fmt.Sprintf("UPDATE %s SET deleted_at = ?, updated_at = ? WHERE %s = ? AND deleted_at IS NULL", c.Table, c.ForeignKey)
			if _, err := tx.ExecContext(ctx, tx.Rebind(q), now, now, id); err != nil {
				return err
			}
		}
		return nil
	})

	return classify(err)
}

// execOne runs query and reports common.ErrorNotFound when no row was touched.
func execOne(ctx context.Context, tx dbx.DBTX, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// apply copies fields onto row. Only mutable columns are accepted.
func (g *Gateway[T, P]) apply(row P, fields Fields) error {
	v := reflect.ValueOf(row).Elem()
	names := mapper.TypeMap(v.Type()).Names
	for _, col := range sortedKeys(fields) {
		if !g.table.isMutable(col) {
			return common.Invalid(fmt.Sprintf("column %q cannot be set", col))
		}
		fi, ok := names[col]
		if !ok {
			return common.Invalid(fmt.Sprintf("unknown column %q", col))
		}
		dst := reflectx.FieldByIndexes(v, fi.Index)
		if err := assign(dst, col, fields[col]); err != nil {
			return err
		}
	}
	return nil
}

// fieldOf returns the field of row mapped to col without allocating nil
// pointers along the way, so untouched nullable columns stay NULL.
func fieldOf(row reflect.Value, col string) (reflect.Value, bool) {
	v := reflect.Indirect(row)
	fi, ok := mapper.TypeMap(v.Type()).Names[col]
	if !ok {
		return reflect.Value{}, false
	}
	return reflectx.FieldByIndexesReadOnly(v, fi.Index), true
}

func assign(dst reflect.Value, col string, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	src := reflect.ValueOf(v)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case dst.Kind() == reflect.Pointer && src.Type().AssignableTo(dst.Type().Elem()):
		p := reflect.New(dst.Type().Elem())
		p.Elem().Set(src)
		dst.Set(p)
	case src.Kind() == reflect.Pointer && !src.IsNil() && src.Elem().Type().AssignableTo(dst.Type()):
		dst.Set(src.Elem())
	case src.Kind() == dst.Kind() && src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return common.Invalid(fmt.Sprintf("invalid value for %s", col))
	}
	return nil
}

func sortedKeys(fields Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (g *Gateway[T, P]) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return g.tracer.Start(ctx, "store."+g.table.Name+"."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.sql.table", g.table.Name)),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, common.Reason(err))
	}
	span.End()
}
