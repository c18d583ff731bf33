package review

import (
	"bytes"
	"fmt"
	"testing"

	"menu-photo-services/internal/photoassign"
)

func TestRenderPDF(t *testing.T) {
	result := photoassign.Result{}
	for i := 0; i < 80; i++ {
		result.Assignments = append(result.Assignments, photoassign.Assignment{
			Position:   i,
			Item:       photoassign.MenuItem{ID: fmt.Sprintf("item-%d", i), Name: "A very long menu item name that will not fit inside the column"},
			Identifier: "100",
			Source:     photoassign.SourceReuse,
		})
	}
	result.Warnings = []photoassign.Warning{{Message: "pool exhausted: item item-1 reuses identifier 100"}}

	out, err := RenderPDF(result, Options{RunID: "run-1", PhotoSet: "photoset.yaml"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("expected a pdf document")
	}
}
