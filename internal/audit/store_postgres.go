// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhvhoang/edugate/internal/platform/database/schema"
)

// # Repository Implementation

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres implementation of the audit trail.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Append persists one event to the gateway.auditevent table.

Parameters:
  - context: context.Context
  - event: *Event

Returns:
  - error: Insert failures
*/
func (repository *PostgresRepository) Append(context context.Context, event *Event) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.GatewayAuditEvent.Table,
		schema.GatewayAuditEvent.ID, schema.GatewayAuditEvent.EventType,
		schema.GatewayAuditEvent.Actor, schema.GatewayAuditEvent.Detail,
		schema.GatewayAuditEvent.SourceIP, schema.GatewayAuditEvent.OccurredAt,
	)

	_, err := repository.pool.Exec(context, query,
		event.ID,
		event.EventType,
		event.Actor,
		event.Detail,
		event.SourceIP,
		event.OccurredAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_audit_repo_append_failed: %w", err)
	}

	return nil
}

/*
List returns events newest-first with the total row count.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []Event: Page of events
  - int: Total number of events in the trail
  - error: Retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]Event, int, error) {

	// 1. Count the full trail for pagination metadata
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.GatewayAuditEvent.Table)

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_repo_count_failed: %w", err)
	}

	// 2. Fetch the requested page, newest first
	listQuery := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		ORDER BY %s DESC
		LIMIT $1 OFFSET $2`,
		schema.GatewayAuditEvent.ID, schema.GatewayAuditEvent.EventType,
		schema.GatewayAuditEvent.Actor, schema.GatewayAuditEvent.Detail,
		schema.GatewayAuditEvent.SourceIP, schema.GatewayAuditEvent.OccurredAt,
		schema.GatewayAuditEvent.Table,
		schema.GatewayAuditEvent.ID,
	)

	rows, err := repository.pool.Query(context, listQuery, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_repo_list_failed: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var event Event
		if err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.Actor,
			&event.Detail,
			&event.SourceIP,
			&event.OccurredAt,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_audit_repo_scan_failed: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_repo_rows_failed: %w", err)
	}

	return events, total, nil
}
