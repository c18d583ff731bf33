package photoset

import (
	"path/filepath"
	"testing"

	"menu-photo-services/internal/photoassign"

	"github.com/google/go-cmp/cmp"
)

func TestLoadAndBuild(t *testing.T) {
	set, err := Load(filepath.Join("testdata", "photoset.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	pool, classifier, err := set.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if diff := cmp.Diff([]string{"100", "200", "300", "400", "500"}, pool.IDs()); diff != "" {
		t.Fatalf("pool mismatch (-want +got):\n%s", diff)
	}
	rice, _ := pool.Bucket("rice")
	if diff := cmp.Diff([]string{"200", "300"}, rice); diff != "" {
		t.Fatalf("range bucket mismatch (-want +got):\n%s", diff)
	}
	if bucket, ok := classifier.Classify("Chicken Biryani"); !ok || bucket != "rice" {
		t.Fatalf("expected rice, got %q", bucket)
	}

	opts := set.RenderOptions()
	if opts.Table != "menu_items" || opts.URLTemplate != "https://img.example/photos/{id}.jpg?w=800" {
		t.Fatalf("unexpected render options %+v", opts)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		code photoassign.ErrorCode
	}{
		{
			name: "unknown key",
			doc:  "version: 1\nidentifiers: [\"1\"]\nbukets: {}\n",
			code: photoassign.ErrPhotoSetInvalid,
		},
		{
			name: "wrong version",
			doc:  "version: 2\nidentifiers: [\"1\"]\n",
			code: photoassign.ErrPhotoSetInvalid,
		},
		{
			name: "template without placeholder",
			doc:  "version: 1\nurl_template: \"https://img.example/a.jpg\"\nidentifiers: [\"1\"]\n",
			code: photoassign.ErrTemplateInvalid,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			e, ok := photoassign.AsError(err)
			if !ok || e.Code != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		code photoassign.ErrorCode
	}{
		{
			name: "empty pool",
			doc:  "version: 1\nidentifiers: []\n",
			code: photoassign.ErrPoolEmpty,
		},
		{
			name: "bucket typo",
			doc:  "version: 1\nidentifiers: [\"1\"]\nbuckets:\n  pizza: { ids: [\"11\"] }\n",
			code: photoassign.ErrBucketUnknownIdentifier,
		},
		{
			name: "range out of bounds",
			doc:  "version: 1\nidentifiers: [\"1\", \"2\"]\nbuckets:\n  pizza: { ranges: [{ from: 0, to: 3 }] }\n",
			code: photoassign.ErrBucketRangeInvalid,
		},
		{
			name: "rule for undeclared bucket",
			doc:  "version: 1\nidentifiers: [\"1\"]\nrules:\n  - { bucket: pizza, keywords: [pizza] }\n",
			code: photoassign.ErrRuleUnknownBucket,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set, err := Parse([]byte(tc.doc))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			_, _, err = set.Build()
			e, ok := photoassign.AsError(err)
			if !ok || e.Code != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			if e.Kind != photoassign.KindConfiguration {
				t.Fatalf("expected configuration kind, got %s", e.Kind)
			}
		})
	}
}

func TestExamplePhotoSetBuilds(t *testing.T) {
	set, err := Load(filepath.Join("..", "..", "photoset.example.yaml"))
	if err != nil {
		t.Fatalf("load example: %v", err)
	}
	pool, classifier, err := set.Build()
	if err != nil {
		t.Fatalf("build example: %v", err)
	}
	if pool.Len() != 16 {
		t.Fatalf("expected 16 identifiers, got %d", pool.Len())
	}

	cases := map[string]string{
		"Chicken Biryani":     "rice",
		"Grilled Salmon":      "seafood",
		"Spicy Chicken Wings": "chicken",
		"Iced Latte":          "drink",
	}
	for name, want := range cases {
		if got, ok := classifier.Classify(name); !ok || got != want {
			t.Fatalf("%s: expected %s, got %q", name, want, got)
		}
	}
}
