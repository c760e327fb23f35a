package database

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation es el código SQLSTATE de PostgreSQL para claves duplicadas
const uniqueViolation = "23505"

// isUniqueViolation indica si el error proviene de una restricción UNIQUE
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
