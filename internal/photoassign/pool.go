package photoassign

import (
	"fmt"
	"sort"
	"strings"
)

type BucketSpec struct {
	Name    string
	Members []string
}

// Pool is the ordered, deduplicated set of photo identifiers plus the named
// buckets over it. Buckets may overlap.
type Pool struct {
	ids     []string
	index   map[string]int
	buckets map[string][]string
}

func LoadPool(raw []string, buckets []BucketSpec) (*Pool, error) {
	ids := make([]string, 0, len(raw))
	index := make(map[string]int, len(raw))
	for i, value := range raw {
		id := strings.TrimSpace(value)
		if id == "" {
			return nil, ConfigError(ErrPoolBlankIdentifier, fmt.Sprintf("identifier at position %d is blank", i), map[string]any{"position": i})
		}
		if _, ok := index[id]; ok {
			continue
		}
		index[id] = len(ids)
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ConfigError(ErrPoolEmpty, "resource pool is empty", nil)
	}

	p := &Pool{ids: ids, index: index, buckets: make(map[string][]string, len(buckets))}
	for _, spec := range buckets {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, ConfigError(ErrBucketEmpty, "bucket name is blank", nil)
		}
		if _, ok := p.buckets[name]; ok {
			return nil, ConfigError(ErrBucketDuplicate, "bucket "+name+" is declared twice", map[string]any{"bucket": name})
		}
		members := make([]string, 0, len(spec.Members))
		seen := make(map[string]bool, len(spec.Members))
		for _, value := range spec.Members {
			id := strings.TrimSpace(value)
			if _, ok := index[id]; !ok {
				return nil, ConfigError(ErrBucketUnknownIdentifier, fmt.Sprintf("bucket %s references identifier %q which is not in the pool", name, id), map[string]any{
					"bucket":     name,
					"identifier": id,
				})
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			members = append(members, id)
		}
		if len(members) == 0 {
			return nil, ConfigError(ErrBucketEmpty, "bucket "+name+" has no identifiers", map[string]any{"bucket": name})
		}
		p.buckets[name] = members
	}
	return p, nil
}

func (p *Pool) Len() int {
	return len(p.ids)
}

func (p *Pool) IDs() []string {
	return append([]string(nil), p.ids...)
}

func (p *Pool) At(i int) string {
	return p.ids[i]
}

func (p *Pool) Contains(id string) bool {
	_, ok := p.index[id]
	return ok
}

func (p *Pool) Bucket(name string) ([]string, bool) {
	members, ok := p.buckets[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), members...), true
}

func (p *Pool) BucketNames() []string {
	names := make([]string, 0, len(p.buckets))
	for name := range p.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
