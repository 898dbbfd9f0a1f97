// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/saddlebag/internal/platform/database/schema"
	"github.com/taibuivan/saddlebag/internal/platform/dberr"
)

// # Link Repository

// PostgresLinkRepository implements [LinkRepository] on users.discord_link.
type PostgresLinkRepository struct {
	pool *pgxpool.Pool
}

// NewLinkRepository creates a new PostgreSQL implementation of the LinkRepository.
func NewLinkRepository(pool *pgxpool.Pool) *PostgresLinkRepository {
	return &PostgresLinkRepository{pool: pool}
}

/*
Upsert inserts or refreshes the ledger row for link.DiscordID.

Description: linkedat keeps its first value across re-logins; unlinkedat is
reset because the identity is linked again.

Parameters:
  - context: context.Context
  - link: Link

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresLinkRepository) Upsert(context context.Context, link Link) error {
	table := schema.UserDiscordLink
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, NULL)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = COALESCE(EXCLUDED.%s, %s.%s),
			%s = NULL`,
		table.Table, strings.Join(table.Columns(), ", "),
		table.DiscordID,
		table.Username, table.Username,
		table.Avatar, table.Avatar,
		table.Roles, table.Roles,
		table.RefreshedAt, table.RefreshedAt, table.Table, table.RefreshedAt,
		table.UnlinkedAt)

	if link.LinkedAt.IsZero() {
		link.LinkedAt = time.Now()
	}

	roles := link.Roles
	if roles == nil {
		roles = []string{}
	}

	_, err := repository.pool.Exec(context, query,
		link.DiscordID,
		link.Username,
		link.Avatar,
		roles,
		link.RefreshedAt,
		link.LinkedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_link_repo_upsert_failed: %w", dberr.Wrap(err, "upsert discord link"))
	}

	return nil
}

/*
MarkUnlinked sets unlinkedat on an existing row. Unknown ids are ignored.

Parameters:
  - context: context.Context
  - discordID: string
  - at: time.Time

Returns:
  - error: Database errors
*/
func (repository *PostgresLinkRepository) MarkUnlinked(context context.Context, discordID string, at time.Time) error {
	table := schema.UserDiscordLink
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2
		WHERE %s = $1 AND %s IS NULL`,
		table.Table, table.UnlinkedAt, table.DiscordID, table.UnlinkedAt)

	if _, err := repository.pool.Exec(context, query, discordID, at); err != nil {
		return fmt.Errorf("postgres_link_repo_unlink_failed: %w", dberr.Wrap(err, "unlink discord link"))
	}

	return nil
}
