package menusource

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"menu-photo-services/internal/photoassign"

	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported menu item file format")

type rawItem struct {
	ID   any    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// ReadFile loads menu items from a .json, .csv, .yaml or .yml export. File
// order is kept.
func ReadFile(path string) ([]photoassign.MenuItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu items %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".csv":
		return ParseCSV(bytes.NewReader(data))
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func ParseJSON(data []byte) ([]photoassign.MenuItem, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []rawItem
	if err := dec.Decode(&raw); err != nil {
		return nil, photoassign.ConfigError(photoassign.ErrItemMalformed, "menu items are not a json array of {id, name}: "+err.Error(), nil)
	}
	return normalize(raw)
}

func ParseYAML(data []byte) ([]photoassign.MenuItem, error) {
	var raw []rawItem
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, photoassign.ConfigError(photoassign.ErrItemMalformed, "menu items are not a yaml list of {id, name}: "+err.Error(), nil)
	}
	return normalize(raw)
}

func ParseCSV(r io.Reader) ([]photoassign.MenuItem, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, photoassign.ConfigError(photoassign.ErrItemMalformed, "menu items csv is malformed: "+err.Error(), nil)
	}
	if len(records) == 0 {
		return []photoassign.MenuItem{}, nil
	}

	idCol, nameCol := -1, -1
	for i, header := range records[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case "id":
			idCol = i
		case "name":
			nameCol = i
		}
	}
	if idCol < 0 || nameCol < 0 {
		return nil, photoassign.ConfigError(photoassign.ErrItemMalformed, "menu items csv needs id and name columns", nil)
	}

	items := make([]photoassign.MenuItem, 0, len(records)-1)
	for _, row := range records[1:] {
		item := photoassign.MenuItem{}
		if idCol < len(row) {
			item.ID = strings.TrimSpace(row[idCol])
		}
		if nameCol < len(row) {
			item.Name = strings.TrimSpace(row[nameCol])
		}
		items = append(items, item)
	}
	return items, nil
}

func normalize(raw []rawItem) ([]photoassign.MenuItem, error) {
	items := make([]photoassign.MenuItem, 0, len(raw))
	for i, r := range raw {
		id, err := idString(r.ID)
		if err != nil {
			return nil, photoassign.ConfigError(photoassign.ErrItemMalformed, fmt.Sprintf("menu item at position %d has an invalid id", i), map[string]any{"position": i})
		}
		items = append(items, photoassign.MenuItem{ID: id, Name: strings.TrimSpace(r.Name)})
	}
	return items, nil
}

func idString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return "", fmt.Errorf("non-integer id %s", v)
		}
		return strconv.FormatInt(n, 10), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		if v != float64(int64(v)) {
			return "", fmt.Errorf("fractional id %v", v)
		}
		return strconv.FormatInt(int64(v), 10), nil
	default:
		return "", fmt.Errorf("invalid id type %T", value)
	}
}
