package photoassign

import "strings"

type MenuItem struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func ValidateItems(items []MenuItem) error {
	seen := make(map[string]int, len(items))
	for i, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return ConfigError(ErrItemMalformed, "menu item is missing an id", map[string]any{"position": i, "name": item.Name})
		}
		if strings.TrimSpace(item.Name) == "" {
			return ConfigError(ErrItemMalformed, "menu item "+id+" is missing a name", map[string]any{"position": i, "id": id})
		}
		if first, ok := seen[id]; ok {
			return ConfigError(ErrItemDuplicate, "menu item id "+id+" appears more than once", map[string]any{
				"position":      i,
				"firstPosition": first,
				"id":            id,
			})
		}
		seen[id] = i
	}
	return nil
}
