package repository

import (
	"strconv"
	"strings"

	"github.com/quantbench/backtester/database"
)

// GetSQLDialect returns the normalised driver of the shared instance
func GetSQLDialect() string {
	return database.DB.Dialect()
}

// Rebind rewrites ? placeholders into the positional form postgres expects
func Rebind(dialect, query string) string {
	if dialect != database.DBPostgreSQL {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			sb.WriteByte(query[i])
			continue
		}
		n++
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(n))
	}
	return sb.String()
}
