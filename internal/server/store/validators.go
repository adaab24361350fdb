package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/audiokeeper/internal/common"
	"github.com/dmitrijs2005/audiokeeper/internal/dbx"
)

// UniqueExcludingSelf rejects a candidate when another live row of table
// already holds the candidate's value in any of columns. The candidate's own
// row is ignored, so re-saving an unchanged value passes. The conflict
// reason names the first offending column in argument order.
func UniqueExcludingSelf[T any, P Row[T]](table string, columns ...string) Validator[T] {
	return func(ctx context.Context, tx dbx.DBTX, candidate *T) error {
		conds := make([]string, 0, len(columns))
		want := make([]string, 0, len(columns))
		args := []any{P(candidate).Meta().ID}
		for _, c := range columns {
			v, ok := fieldOf(reflect.ValueOf(candidate), c)
			if !ok {
				return fmt.Errorf("unique check: unknown column %q", c)
			}
			conds = append(conds, c+" = ?")
			want = append(want, fmt.Sprint(v.Interface()))
			args = append(args, v.Interface())
		}

		query := fmt.Sprintf("SELECT %s FROM %s WHERE id <> ? AND deleted_at IS NULL AND (%s)",
			strings.Join(columns, ", "), table, strings.Join(conds, " OR "))

		rows, err := tx.QueryxContext(ctx, tx.Rebind(query), args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		taken := make([]bool, len(columns))
		for rows.Next() {
			got, err := rows.SliceScan()
			if err != nil {
				return err
			}
			for i := range columns {
				if fmt.Sprint(scalar(got[i])) == want[i] {
					taken[i] = true
				}
			}
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for i, c := range columns {
			if taken[i] {
				return common.Conflict(c + " already exists")
			}
		}
		return nil
	}
}

// LiveReference requires the candidate's column to point at a live row of
// parent. A dangling reference is reported as a conflict with reason.
func LiveReference[T any](column, parent, reason string) Validator[T] {
	return func(ctx context.Context, tx dbx.DBTX, candidate *T) error {
		v, ok := fieldOf(reflect.ValueOf(candidate), column)
		if !ok {
			return fmt.Errorf("reference check: unknown column %q", column)
		}

		var n int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ? AND deleted_at IS NULL", parent)
		if err := tx.QueryRowxContext(ctx, tx.Rebind(query), v.Interface()).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return common.Conflict(reason)
		}
		return nil
	}
}

// Chain runs validators in order and stops at the first failure.
func Chain[T any](validators ...Validator[T]) Validator[T] {
	return func(ctx context.Context, tx dbx.DBTX, candidate *T) error {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v(ctx, tx, candidate); err != nil {
				return err
			}
		}
		return nil
	}
}

// scalar normalises driver values so they compare by their text form.
func scalar(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
