// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"
	"time"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"
)

const credentialsTable = "credentials"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func buildGetQuery(key string) (string, []any, error) {
	query, args, err := psql.
		Select("value").
		From(credentialsTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildUpsertQuery replaces the row for key in a single statement.
func buildUpsertQuery(key, value string, now time.Time) (string, []any, error) {
	query, args, err := psql.
		Insert(credentialsTable).
		Columns("key", "value", "updated_at").
		Values(key, value, now.UTC()).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildDeleteQuery(key string) (string, []any, error) {
	query, args, err := psql.
		Delete(credentialsTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildKeysQuery matches by substr rather than LIKE so that '_' and '%' in
// service names are not wildcards.
func buildKeysQuery(prefix string) (string, []any, error) {
	builder := psql.
		Select("key").
		From(credentialsTable).
		OrderBy("key")
	if prefix != "" {
		builder = builder.Where(sq.Expr("substr(key, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
