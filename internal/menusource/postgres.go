package menusource

import (
	"context"
	"fmt"
	"strings"

	"menu-photo-services/internal/photoassign"
	"menu-photo-services/internal/sqlgen"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresSource struct {
	Pool       *pgxpool.Pool
	Table      string
	IDColumn   string
	NameColumn string
}

func (s PostgresSource) query() (string, error) {
	table := strings.TrimSpace(s.Table)
	if table == "" {
		table = "menu_items"
	}
	idCol := strings.TrimSpace(s.IDColumn)
	if idCol == "" {
		idCol = "id"
	}
	nameCol := strings.TrimSpace(s.NameColumn)
	if nameCol == "" {
		nameCol = "name"
	}
	for _, name := range []string{table, idCol, nameCol} {
		if !sqlgen.ValidSQLName(name) {
			return "", photoassign.ConfigError(photoassign.ErrTemplateInvalid, fmt.Sprintf("%q is not a valid table or column name", name), nil)
		}
	}
	return fmt.Sprintf("select %s::text, %s from %s order by %s asc", idCol, nameCol, table, idCol), nil
}

// Items reads every row ordered by id so repeated runs see the same order.
func (s PostgresSource) Items(ctx context.Context) ([]photoassign.MenuItem, error) {
	if s.Pool == nil {
		return nil, fmt.Errorf("menu item database is not configured")
	}
	query, err := s.query()
	if err != nil {
		return nil, err
	}

	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()

	items := make([]photoassign.MenuItem, 0)
	for rows.Next() {
		var id, name pgtype.Text
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		item, err := itemFromRow(len(items), id, name)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read menu items: %w", err)
	}
	return items, nil
}

// itemFromRow rejects NULL or blank columns, naming the row ordinal and id.
func itemFromRow(position int, id, name pgtype.Text) (photoassign.MenuItem, error) {
	itemID := strings.TrimSpace(id.String)
	if !id.Valid || itemID == "" {
		return photoassign.MenuItem{}, photoassign.ConfigError(photoassign.ErrItemMalformed,
			fmt.Sprintf("menu item row %d has no id", position),
			map[string]any{"position": position, "name": name.String})
	}
	itemName := strings.TrimSpace(name.String)
	if !name.Valid || itemName == "" {
		return photoassign.MenuItem{}, photoassign.ConfigError(photoassign.ErrItemMalformed,
			fmt.Sprintf("menu item %s (row %d) has no name", itemID, position),
			map[string]any{"position": position, "id": itemID})
	}
	return photoassign.MenuItem{ID: itemID, Name: itemName}, nil
}
