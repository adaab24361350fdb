package store

// DeleteMode selects how a row is removed.
type DeleteMode int

const (
	// SoftDelete stamps deleted_at and keeps the row.
	SoftDelete DeleteMode = iota
	// HardDelete removes the row.
	HardDelete
)

func (m DeleteMode) String() string {
	if m == HardDelete {
		return "hard"
	}
	return "soft"
}

// Cascade names a child table whose rows follow the parent on delete.
type Cascade struct {
	Table      string
	ForeignKey string
}

// DeletePolicy describes what Delete does for a table. Child rows listed in
// Cascade are removed with the same mode as the parent.
type DeletePolicy struct {
	Mode    DeleteMode
	Cascade []Cascade
}

// Table describes the SQL table behind a Gateway. Columns lists every column
// in insert order, Mutable the ones callers may set through Fields.
type Table struct {
	Name    string
	Columns []string
	Mutable []string
	Delete  DeletePolicy
}

func (t Table) hasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

func (t Table) isMutable(name string) bool {
	for _, c := range t.Mutable {
		if c == name {
			return true
		}
	}
	return false
}

// UsersTable is soft-deleted; its audio files are soft-deleted with it.
var UsersTable = Table{
	Name:    "users",
	Columns: []string{"id", "username", "email", "password_hash", "full_name", "role", "disabled", "created_at", "updated_at", "deleted_at"},
	Mutable: []string{"username", "email", "password_hash", "full_name", "role", "disabled"},
	Delete: DeletePolicy{
		Mode:    SoftDelete,
		Cascade: []Cascade{{Table: "audio_files", ForeignKey: "user_id"}},
	},
}

// AudioFilesTable rows are removed outright.
var AudioFilesTable = Table{
	Name:    "audio_files",
	Columns: []string{"id", "user_id", "description", "category", "audio_data", "created_at", "updated_at", "deleted_at"},
	Mutable: []string{"user_id", "description", "category", "audio_data"},
	Delete:  DeletePolicy{Mode: HardDelete},
}
