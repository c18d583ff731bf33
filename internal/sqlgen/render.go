package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"menu-photo-services/internal/photoassign"
)

var (
	sqlNamePattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	itemIDPattern     = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

type Options struct {
	Table       string `json:"table,omitempty"`
	IDColumn    string `json:"idColumn,omitempty"`
	URLColumn   string `json:"urlColumn,omitempty"`
	URLTemplate string `json:"urlTemplate,omitempty"`
}

func DefaultOptions() Options {
	return Options{
		Table:       "menu_items",
		IDColumn:    "id",
		URLColumn:   "image_url",
		URLTemplate: DefaultURLTemplate,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if strings.TrimSpace(o.Table) != "" {
		d.Table = strings.TrimSpace(o.Table)
	}
	if strings.TrimSpace(o.IDColumn) != "" {
		d.IDColumn = strings.TrimSpace(o.IDColumn)
	}
	if strings.TrimSpace(o.URLColumn) != "" {
		d.URLColumn = strings.TrimSpace(o.URLColumn)
	}
	if strings.TrimSpace(o.URLTemplate) != "" {
		d.URLTemplate = strings.TrimSpace(o.URLTemplate)
	}
	return d
}

func ValidSQLName(name string) bool {
	return sqlNamePattern.MatchString(name)
}

// ValidIdentifier reports whether a photo identifier is safe to place in a
// url path and a quoted literal.
func ValidIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}

// Render builds the batch UPDATE plus verification queries. Any value that
// cannot be embedded as a quoted literal aborts the whole render.
func Render(assignments []photoassign.Assignment, opts Options) (string, error) {
	opts = opts.withDefaults()
	for _, name := range []string{opts.Table, opts.IDColumn, opts.URLColumn} {
		if !ValidSQLName(name) {
			return "", photoassign.ConfigError(photoassign.ErrTemplateInvalid, fmt.Sprintf("%q is not a valid table or column name", name), map[string]any{"name": name})
		}
	}
	if err := ValidateTemplate(opts.URLTemplate); err != nil {
		return "", err
	}

	type branch struct {
		id  string
		url string
	}
	branches := make([]branch, 0, len(assignments))
	distinct := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		if !itemIDPattern.MatchString(a.Item.ID) {
			return "", photoassign.EmissionError(photoassign.ErrEmitUnsafeValue, fmt.Sprintf("menu item id %q at position %d cannot be embedded in the statement", a.Item.ID, a.Position), map[string]any{
				"position": a.Position,
				"id":       a.Item.ID,
				"name":     a.Item.Name,
			})
		}
		if !ValidIdentifier(a.Identifier) {
			return "", photoassign.EmissionError(photoassign.ErrEmitUnsafeValue, fmt.Sprintf("photo identifier %q for item %s cannot be embedded in a url", a.Identifier, a.Item.ID), map[string]any{
				"position":   a.Position,
				"id":         a.Item.ID,
				"identifier": a.Identifier,
			})
		}
		url := ExpandURL(opts.URLTemplate, a.Identifier)
		if hasUnsafeLiteralChars(url) {
			return "", photoassign.EmissionError(photoassign.ErrEmitUnsafeValue, fmt.Sprintf("url for item %s cannot be quoted", a.Item.ID), map[string]any{
				"position": a.Position,
				"id":       a.Item.ID,
				"url":      url,
			})
		}
		distinct[a.Identifier] = true
		branches = append(branches, branch{id: a.Item.ID, url: url})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "-- Menu photo assignment for %s\n", opts.Table)
	fmt.Fprintf(&b, "-- items: %d, distinct photos: %d, reused: %d\n\n", len(branches), len(distinct), len(branches)-len(distinct))

	if len(branches) == 0 {
		b.WriteString("-- nothing to update\n")
		return b.String(), nil
	}

	fmt.Fprintf(&b, "UPDATE %s\nSET %s = CASE %s\n", opts.Table, opts.URLColumn, opts.IDColumn)
	for _, br := range branches {
		fmt.Fprintf(&b, "  WHEN '%s' THEN '%s'\n", br.id, br.url)
	}
	fmt.Fprintf(&b, "  ELSE %s\nEND\n", opts.URLColumn)

	ids := make([]string, len(branches))
	for i, br := range branches {
		ids[i] = "'" + br.id + "'"
	}
	fmt.Fprintf(&b, "WHERE %s IN (%s);\n\n", opts.IDColumn, strings.Join(ids, ", "))

	b.WriteString("-- Verification\n")
	fmt.Fprintf(&b, "SELECT COUNT(*) AS total_items, COUNT(%s) AS items_with_image, COUNT(DISTINCT %s) AS distinct_images\nFROM %s;\n\n",
		opts.URLColumn, opts.URLColumn, opts.Table)
	fmt.Fprintf(&b, "SELECT %s, COUNT(*) AS usage_count\nFROM %s\nWHERE %s IS NOT NULL\nGROUP BY %s\nHAVING COUNT(*) > 1\nORDER BY usage_count DESC, %s;\n\n",
		opts.URLColumn, opts.Table, opts.URLColumn, opts.URLColumn, opts.URLColumn)
	fmt.Fprintf(&b, "SELECT %s\nFROM %s\nWHERE %s IN (%s)\n  AND (%s IS NULL OR %s = '');\n",
		opts.IDColumn, opts.Table, opts.IDColumn, strings.Join(ids, ", "), opts.URLColumn, opts.URLColumn)

	return b.String(), nil
}
