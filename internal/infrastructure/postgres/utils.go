package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE unique_violation: restricción UNIQUE o clave primaria.
const codeUniqueViolation = "23505"

// isUniqueViolation indica si err (posiblemente envuelto) es una violación de
// restricción única. pgx v5 siempre entrega *pgconn.PgError en la cadena, no
// hace falta inspeccionar el texto.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
