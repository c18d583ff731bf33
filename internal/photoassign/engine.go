package photoassign

import "fmt"

type Source string

const (
	SourceBucket Source = "bucket"
	SourcePool   Source = "pool"
	SourceReuse  Source = "reuse"
)

type Assignment struct {
	Position   int      `json:"position"`
	Item       MenuItem `json:"item"`
	Identifier string   `json:"identifier"`
	Bucket     string   `json:"bucket,omitempty"`
	Source     Source   `json:"source"`
}

// Warning records a forced reuse. It is the only way an assignment can be
// non-injective.
type Warning struct {
	Position   int    `json:"position"`
	ItemID     string `json:"itemId"`
	ItemName   string `json:"itemName"`
	Identifier string `json:"identifier"`
	Message    string `json:"message"`
}

func (w Warning) String() string {
	return w.Message
}

type Result struct {
	Assignments []Assignment `json:"assignments"`
	Warnings    []Warning    `json:"warnings"`
}

// Identifiers returns the assigned identifiers in first-seen order.
func (r Result) Identifiers() []string {
	seen := make(map[string]bool, len(r.Assignments))
	out := make([]string, 0, len(r.Assignments))
	for _, a := range r.Assignments {
		if seen[a.Identifier] {
			continue
		}
		seen[a.Identifier] = true
		out = append(out, a.Identifier)
	}
	return out
}

func (r Result) Distinct() int {
	return len(r.Identifiers())
}

func (r Result) Injective() bool {
	return r.Distinct() == len(r.Assignments)
}

// Assign gives every item one identifier from pool, in input order. Same
// inputs always produce the same Result.
//
// pool must be non-empty; LoadPool guarantees that. Given a nil or empty pool
// no item can be assigned, so each item gets a warning and no assignment.
func Assign(items []MenuItem, pool *Pool, classifier Categorizer) Result {
	result := Result{
		Assignments: make([]Assignment, 0, len(items)),
		Warnings:    []Warning{},
	}
	if pool == nil || pool.Len() == 0 {
		for pos, item := range items {
			result.Warnings = append(result.Warnings, Warning{
				Position: pos,
				ItemID:   item.ID,
				ItemName: item.Name,
				Message:  fmt.Sprintf("photo pool is empty: item %s (%s) left unassigned", item.ID, item.Name),
			})
		}
		return result
	}

	used := make(map[string]bool, pool.Len())
	bucketSeen := make(map[string]int)
	size := pool.Len()

	for pos, item := range items {
		assignment := Assignment{Position: pos, Item: item}

		bucket := ""
		if classifier != nil {
			if name, ok := classifier.Classify(item.Name); ok {
				bucket = name
			}
		}

		if members, ok := pool.buckets[bucket]; ok && bucket != "" {
			assignment.Bucket = bucket
			offset := bucketSeen[bucket] % len(members)
			bucketSeen[bucket]++
			for k := 0; k < len(members); k++ {
				candidate := members[(offset+k)%len(members)]
				if !used[candidate] {
					assignment.Identifier = candidate
					assignment.Source = SourceBucket
					break
				}
			}
		}

		if assignment.Source == "" {
			start := pos % size
			for k := 0; k < size; k++ {
				candidate := pool.ids[(start+k)%size]
				if !used[candidate] {
					assignment.Identifier = candidate
					assignment.Source = SourcePool
					break
				}
			}
		}

		if assignment.Source == "" {
			assignment.Identifier = pool.ids[pos%size]
			assignment.Source = SourceReuse
			result.Warnings = append(result.Warnings, Warning{
				Position:   pos,
				ItemID:     item.ID,
				ItemName:   item.Name,
				Identifier: assignment.Identifier,
				Message: fmt.Sprintf("pool exhausted: item %s (%s) reuses identifier %s",
					item.ID, item.Name, assignment.Identifier),
			})
		}

		used[assignment.Identifier] = true
		result.Assignments = append(result.Assignments, assignment)
	}

	return result
}
