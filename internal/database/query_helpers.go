// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/eventide/internal/metrics"
)

// queryBuilder helps construct SQL queries with filters.
type queryBuilder struct {
	baseQuery string
	args      []interface{}
	filters   []string
}

// newQueryBuilder creates a new query builder. baseQuery must end in a
// WHERE clause; filters are appended with AND.
func newQueryBuilder(baseQuery string) *queryBuilder {
	return &queryBuilder{
		baseQuery: baseQuery,
		args:      make([]interface{}, 0, 8),
		filters:   make([]string, 0, 4),
	}
}

// addFilter adds a custom filter condition.
func (qb *queryBuilder) addFilter(condition string, args ...interface{}) *queryBuilder {
	qb.filters = append(qb.filters, condition)
	qb.args = append(qb.args, args...)
	return qb
}

// addInFilter adds "column IN (...)" (or NOT IN) for non-empty values.
func (qb *queryBuilder) addInFilter(column string, values []string, negate bool) *queryBuilder {
	if len(values) == 0 {
		return qb
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		qb.args = append(qb.args, v)
	}
	op := "IN"
	if negate {
		op = "NOT IN"
	}
	qb.filters = append(qb.filters, fmt.Sprintf("%s %s (%s)", column, op, strings.Join(placeholders, ",")))
	return qb
}

// addLimit appends a LIMIT argument (the placeholder belongs in the suffix).
func (qb *queryBuilder) addLimit(limit int) *queryBuilder {
	qb.args = append(qb.args, limit)
	return qb
}

// build constructs the final query and returns it with args.
func (qb *queryBuilder) build(suffix string) (string, []interface{}) {
	query := qb.baseQuery
	if len(qb.filters) > 0 {
		query += " AND " + strings.Join(qb.filters, " AND ")
	}
	if suffix != "" {
		query += " " + suffix
	}
	return query, qb.args
}

// scanFunc scans a single row into a result type.
type scanFunc[T any] func(*sql.Rows) (T, error)

// queryAndScan executes a query and scans all rows using the provided scan function.
func queryAndScan[T any](ctx context.Context, db *sql.DB, query string, args []interface{}, scan scanFunc[T]) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "rows")

	var results []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// observe records query latency and errors for (operation, table).
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}
