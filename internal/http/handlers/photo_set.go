package handlers

import (
	"net/http"

	"menu-photo-services/internal/photoassign"
	"menu-photo-services/pkg/response"
)

func (h *Handler) AdminPhotoSetGet(w http.ResponseWriter, r *http.Request) {
	set, err := h.loadPhotoSet()
	if err != nil {
		h.writePlanError(w, err, "load photo set")
		return
	}
	pool, classifier, err := set.Build()
	if err != nil {
		h.writePlanError(w, err, "load photo set")
		return
	}

	buckets := make([]map[string]any, 0)
	for _, name := range pool.BucketNames() {
		members, _ := pool.Bucket(name)
		buckets = append(buckets, map[string]any{
			"name": name,
			"size": len(members),
		})
	}

	rules := make([]map[string]any, 0)
	for i, rule := range classifier.Rules() {
		rules = append(rules, map[string]any{
			"priority": i + 1,
			"bucket":   rule.Bucket,
			"keywords": rule.Keywords,
		})
	}

	response.Success(w, map[string]any{
		"version":     set.Version,
		"urlTemplate": set.URLTemplate,
		"poolSize":    pool.Len(),
		"buckets":     buckets,
		"rules":       rules,
		"target":      set.RenderOptions(),
	})
}

func assignmentSummary(result photoassign.Result) map[string]any {
	return map[string]any{
		"itemCount":     len(result.Assignments),
		"distinctCount": result.Distinct(),
		"warningCount":  len(result.Warnings),
		"injective":     result.Injective(),
	}
}
