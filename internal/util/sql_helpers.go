package util

import (
	"database/sql"
)

// NullFloat64ToPtr converts a nullable column to a pointer; NULL becomes nil.
func NullFloat64ToPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
