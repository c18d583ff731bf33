package photoset

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"menu-photo-services/internal/photoassign"
	"menu-photo-services/internal/sqlgen"

	"gopkg.in/yaml.v3"
)

const CurrentVersion = 1

type Range struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

type Bucket struct {
	IDs    []string `yaml:"ids"`
	Ranges []Range  `yaml:"ranges"`
}

// PhotoSet is the versioned curation file: the identifier list, the buckets
// over it and the keyword priority list.
type PhotoSet struct {
	Version     int                `yaml:"version"`
	URLTemplate string             `yaml:"url_template"`
	Identifiers []string           `yaml:"identifiers"`
	Buckets     map[string]Bucket  `yaml:"buckets"`
	Rules       []photoassign.Rule `yaml:"rules"`
	Target      *Target            `yaml:"target,omitempty"`
}

type Target struct {
	Table     string `yaml:"table"`
	IDColumn  string `yaml:"id_column"`
	URLColumn string `yaml:"url_column"`
}

func Load(path string) (PhotoSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PhotoSet{}, fmt.Errorf("read photo set %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (PhotoSet, error) {
	var set PhotoSet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil {
		return PhotoSet{}, photoassign.ConfigError(photoassign.ErrPhotoSetInvalid, "photo set is not valid yaml: "+err.Error(), nil)
	}
	if set.Version != CurrentVersion {
		return PhotoSet{}, photoassign.ConfigError(photoassign.ErrPhotoSetInvalid, fmt.Sprintf("unsupported photo set version %d", set.Version), map[string]any{"version": set.Version})
	}
	if strings.TrimSpace(set.URLTemplate) == "" {
		set.URLTemplate = sqlgen.DefaultURLTemplate
	}
	if err := sqlgen.ValidateTemplate(set.URLTemplate); err != nil {
		return PhotoSet{}, err
	}
	return set, nil
}

// Build resolves buckets against the deduplicated pool and compiles the
// rules. Bucket names are processed in sorted order.
func (s PhotoSet) Build() (*photoassign.Pool, *photoassign.Classifier, error) {
	base, err := photoassign.LoadPool(s.Identifiers, nil)
	if err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(s.Buckets))
	for name := range s.Buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]photoassign.BucketSpec, 0, len(names))
	for _, name := range names {
		bucket := s.Buckets[name]
		members := append([]string(nil), bucket.IDs...)
		for _, r := range bucket.Ranges {
			if r.From < 0 || r.To > base.Len() || r.From >= r.To {
				return nil, nil, photoassign.ConfigError(photoassign.ErrBucketRangeInvalid,
					fmt.Sprintf("bucket %s range [%d, %d) is outside the pool of %d identifiers", name, r.From, r.To, base.Len()),
					map[string]any{"bucket": name, "from": r.From, "to": r.To})
			}
			for i := r.From; i < r.To; i++ {
				members = append(members, base.At(i))
			}
		}
		specs = append(specs, photoassign.BucketSpec{Name: name, Members: members})
	}

	pool, err := photoassign.LoadPool(s.Identifiers, specs)
	if err != nil {
		return nil, nil, err
	}
	classifier, err := photoassign.NewClassifier(s.Rules)
	if err != nil {
		return nil, nil, err
	}
	if err := classifier.CheckBuckets(pool); err != nil {
		return nil, nil, err
	}
	return pool, classifier, nil
}

func (s PhotoSet) RenderOptions() sqlgen.Options {
	opts := sqlgen.Options{URLTemplate: s.URLTemplate}
	if s.Target != nil {
		opts.Table = s.Target.Table
		opts.IDColumn = s.Target.IDColumn
		opts.URLColumn = s.Target.URLColumn
	}
	return opts
}
