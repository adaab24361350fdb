// Package models defines server-side data models persisted in the database.
package models

// Record holds the columns every table shares. Timestamps are unix epoch
// seconds; a non-nil DeletedAt marks a soft-deleted row.
type Record struct {
	ID        string `db:"id"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt *int64 `db:"updated_at"`
	DeletedAt *int64 `db:"deleted_at"`
}

// Meta gives generic code access to the shared columns of any row type
// that embeds Record.
func (r *Record) Meta() *Record {
	return r
}

// Live reports whether the row has not been soft-deleted.
func (r *Record) Live() bool {
	return r.DeletedAt == nil
}
