/*
 * Copyright 2026 quarrydb.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLErrorKind is a driver-independent classification of database errors.
// The repository layer never classifies; this is for callers that need to
// branch on constraint violations and similar conditions.
type SQLErrorKind int

const (
	SQLErrUnknown SQLErrorKind = iota
	SQLErrNoRows
	SQLErrDuplicateKey
	SQLErrNotNullViolation
	SQLErrForeignKeyViolation
	SQLErrCheckViolation
	SQLErrNoTable
	SQLErrTableExists
	SQLErrNoColumn
	SQLErrColumnExists
	SQLErrNoIndex
	SQLErrIndexExists
	SQLErrDataTruncated
	SQLErrInvalidCast
)

func (k SQLErrorKind) String() string {
	switch k {
	case SQLErrNoRows:
		return "no rows"
	case SQLErrDuplicateKey:
		return "duplicate key"
	case SQLErrNotNullViolation:
		return "not-null violation"
	case SQLErrForeignKeyViolation:
		return "foreign key violation"
	case SQLErrCheckViolation:
		return "check constraint violation"
	case SQLErrNoTable:
		return "table does not exist"
	case SQLErrTableExists:
		return "table already exists"
	case SQLErrNoColumn:
		return "column does not exist"
	case SQLErrColumnExists:
		return "column already exists"
	case SQLErrNoIndex:
		return "index does not exist"
	case SQLErrIndexExists:
		return "index already exists"
	case SQLErrDataTruncated:
		return "data truncated"
	case SQLErrInvalidCast:
		return "invalid type cast"
	default:
		return "unknown"
	}
}

// ClassifySQLError maps a driver error onto a SQLErrorKind. The second
// return value reports whether the error was recognized as a database error
// at all.
func ClassifySQLError(err error) (SQLErrorKind, bool) {
	if err == nil {
		return SQLErrUnknown, false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return SQLErrNoRows, true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return classifyMySQLNumber(mysqlErr.Number), true
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return classifySQLState(pgxErr.Code), true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifySQLState(string(pqErr.Code)), true
	}

	return classifyMessage(err.Error())
}

func classifyMySQLNumber(number uint16) SQLErrorKind {
	switch number {
	case 1062:
		return SQLErrDuplicateKey
	case 1048:
		return SQLErrNotNullViolation
	case 1216, 1217, 1451, 1452:
		return SQLErrForeignKeyViolation
	case 3819:
		return SQLErrCheckViolation
	case 1146:
		return SQLErrNoTable
	case 1050:
		return SQLErrTableExists
	case 1054:
		return SQLErrNoColumn
	case 1060:
		return SQLErrColumnExists
	case 1091:
		return SQLErrNoIndex
	case 1061:
		return SQLErrIndexExists
	case 1265:
		return SQLErrDataTruncated
	default:
		return SQLErrUnknown
	}
}

func classifySQLState(code string) SQLErrorKind {
	switch code {
	case "23505":
		return SQLErrDuplicateKey
	case "23502":
		return SQLErrNotNullViolation
	case "23503":
		return SQLErrForeignKeyViolation
	case "23514":
		return SQLErrCheckViolation
	case "42P01":
		return SQLErrNoTable
	case "42P07":
		return SQLErrTableExists
	case "42703":
		return SQLErrNoColumn
	case "42701":
		return SQLErrColumnExists
	case "42704":
		return SQLErrNoIndex
	case "22001":
		return SQLErrDataTruncated
	case "42804":
		return SQLErrInvalidCast
	default:
		return SQLErrUnknown
	}
}

// classifyMessage is the fallback for drivers without a structured error
// type, mainly SQLite.
func classifyMessage(msg string) (SQLErrorKind, bool) {
	s := strings.ToLower(msg)
	switch {
	case strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "unique constraint failed"),
		strings.Contains(s, "sqlstate 23505"):
		return SQLErrDuplicateKey, true
	case strings.Contains(s, "not-null constraint"),
		strings.Contains(s, "not null constraint failed"),
		strings.Contains(s, "sqlstate 23502"):
		return SQLErrNotNullViolation, true
	case strings.Contains(s, "foreign key constraint failed"),
		strings.Contains(s, "foreign key violation"),
		strings.Contains(s, "sqlstate 23503"):
		return SQLErrForeignKeyViolation, true
	case strings.Contains(s, "check constraint"),
		strings.Contains(s, "sqlstate 23514"):
		return SQLErrCheckViolation, true
	case strings.Contains(s, "no such table"),
		strings.Contains(s, "undefined table"),
		strings.Contains(s, "sqlstate 42p01"):
		return SQLErrNoTable, true
	case strings.Contains(s, "already exists") && strings.Contains(s, "index"):
		return SQLErrIndexExists, true
	case strings.Contains(s, "already exists") &&
		(strings.Contains(s, "table") || strings.Contains(s, "relation")):
		return SQLErrTableExists, true
	case strings.Contains(s, "no such column"),
		strings.Contains(s, "undefined column"),
		strings.Contains(s, "sqlstate 42703"):
		return SQLErrNoColumn, true
	case strings.Contains(s, "no such index"),
		strings.Contains(s, "sqlstate 42704"):
		return SQLErrNoIndex, true
	case strings.Contains(s, "string data right truncation"),
		strings.Contains(s, "data truncated"),
		strings.Contains(s, "sqlstate 22001"):
		return SQLErrDataTruncated, true
	case strings.Contains(s, "datatype mismatch"),
		strings.Contains(s, "sqlstate 42804"):
		return SQLErrInvalidCast, true
	default:
		return SQLErrUnknown, false
	}
}
