package database

import "fmt"

// Dialect names as reported by gorm.Dialector.Name().
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// DatePart a calendar component extracted from a date column.
type DatePart int

const (
	Year DatePart = iota
	Month
)

// DatePartExpr returns an integer SQL expression for part of column.
// column must be a trusted identifier, never user input.
func DatePartExpr(dialect, column string, part DatePart) string {
	switch dialect {
	case DialectSQLite:
		f := "%Y"
		if part == Month {
			f = "%m"
		}
		return fmt.Sprintf("CAST(strftime('%s', %s) AS INTEGER)", f, column)
	case DialectMySQL:
		if part == Month {
			return fmt.Sprintf("MONTH(%s)", column)
		}
		return fmt.Sprintf("YEAR(%s)", column)
	default:
		unit := "YEAR"
		if part == Month {
			unit = "MONTH"
		}
		return fmt.Sprintf("CAST(EXTRACT(%s FROM %s) AS INTEGER)", unit, column)
	}
}

// DatePartEq returns the predicate "part-of(column) = ?" for the dialect.
func DatePartEq(dialect, column string, part DatePart) string {
	return DatePartExpr(dialect, column, part) + " = ?"
}

// likeOp is the case-insensitive LIKE of the dialect.
func likeOp(dialect, column string) string {
	if dialect == DialectPostgres {
		return column + " ILIKE ?"
	}
	return "LOWER(" + column + ") LIKE LOWER(?)"
}
