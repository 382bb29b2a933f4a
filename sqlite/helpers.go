package sqlite

import "database/sql"

// nullString maps an empty validator to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
