package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// queryer is satisfied by *sql.DB and *sql.Tx so row helpers work inside
// imports and plain calls alike.
type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func validatePositiveFloat(name string, value float64) error {
	if !(value > 0) {
		return fmt.Errorf("%s must be > 0", name)
	}
	return nil
}

func validatePositiveInt(name string, value int) error {
	if value <= 0 {
		return fmt.Errorf("%s must be > 0", name)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// ParseMixtureID accepts the decimal ids shown by `mixture list`.
func ParseMixtureID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid mixture id %q", value)
	}
	return id, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
