package sqlgen

import (
	"strings"

	"menu-photo-services/internal/photoassign"
)

const (
	IDPlaceholder      = "{id}"
	DefaultURLTemplate = "https://images.pexels.com/photos/{id}/pexels-photo-{id}.jpeg?auto=compress&cs=tinysrgb&w=800&h=600&fit=crop"
)

func ValidateTemplate(template string) error {
	if !strings.Contains(template, IDPlaceholder) {
		return photoassign.ConfigError(photoassign.ErrTemplateInvalid, "url template must contain "+IDPlaceholder, map[string]any{"template": template})
	}
	if hasUnsafeLiteralChars(template) {
		return photoassign.ConfigError(photoassign.ErrTemplateInvalid, "url template contains characters that cannot be quoted", map[string]any{"template": template})
	}
	return nil
}

func ExpandURL(template string, id string) string {
	return strings.ReplaceAll(template, IDPlaceholder, id)
}

func hasUnsafeLiteralChars(value string) bool {
	for _, r := range value {
		if r == '\'' || r == '\\' || r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}
