package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"menu-photo-services/internal/batch"
	"menu-photo-services/internal/photoassign"
	"menu-photo-services/internal/photoset"
	"menu-photo-services/internal/queue"
	"menu-photo-services/internal/review"
	"menu-photo-services/pkg/response"

	"go.uber.org/zap"
)

type plannedRun struct {
	out  batch.Output
	set  photoset.PhotoSet
	body assignmentRequest
}

func (h *Handler) plan(r *http.Request) (plannedRun, error) {
	body, err := readAssignmentRequest(r, h.Config.MaxFileSizeBytes)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			return plannedRun{}, err
		}
		return plannedRun{}, photoassign.ConfigError(photoassign.ErrItemMalformed, "request body is not valid json: "+err.Error(), nil)
	}
	items, err := h.itemsFor(r, body)
	if err != nil {
		return plannedRun{}, err
	}
	set, err := h.loadPhotoSet()
	if err != nil {
		return plannedRun{}, err
	}
	out, err := batch.Plan(items, set)
	if err != nil {
		return plannedRun{}, err
	}
	if len(out.Result.Warnings) > 0 {
		h.Logger.Warn("photo pool exhausted; identifiers reused",
			zap.String("runId", out.RunID),
			zap.Int("warnings", len(out.Result.Warnings)),
		)
	}
	return plannedRun{out: out, set: set, body: body}, nil
}

// AdminPhotoAssignmentsPreview plans without writing anything. With
// "publish": true the run is announced so the mirror worker picks it up.
func (h *Handler) AdminPhotoAssignmentsPreview(w http.ResponseWriter, r *http.Request) {
	run, err := h.plan(r)
	if err != nil {
		h.writePlanError(w, err, "preview photo assignments")
		return
	}
	out := run.out

	published := false
	if run.body.Publish && h.Queue != nil {
		if err := queue.PublishPhotosGenerated(r.Context(), h.Queue, queue.PhotosGenerated{
			RunID:          out.RunID,
			SourceTemplate: run.set.URLTemplate,
			ItemCount:      len(out.Result.Assignments),
			WarningCount:   len(out.Result.Warnings),
			Identifiers:    out.Result.Identifiers(),
		}); err != nil {
			h.Logger.Warn("photos generated event not published", zap.String("runId", out.RunID), zap.Error(err))
		} else {
			published = true
		}
	}

	response.Success(w, map[string]any{
		"runId":       out.RunID,
		"summary":     assignmentSummary(out.Result),
		"assignments": out.Result.Assignments,
		"warnings":    nonNilWarnings(out.Result.Warnings),
		"sql":         out.SQL,
		"published":   published,
	})
}

func (h *Handler) AdminPhotoAssignmentsReview(w http.ResponseWriter, r *http.Request) {
	run, err := h.plan(r)
	if err != nil {
		h.writePlanError(w, err, "render photo review")
		return
	}
	out := run.out

	pdf, err := review.RenderPDF(out.Result, review.Options{
		Title:    run.body.Title,
		RunID:    out.RunID,
		PhotoSet: h.Config.PhotoSetPath,
	})
	if err != nil {
		h.writePlanError(w, err, "render photo review")
		return
	}

	filename := fmt.Sprintf("photo_review_%s.pdf", sanitizeFilename(out.RunID))
	response.Inline(w, "application/pdf", filename, pdf)
}

// AdminPhotoAssignmentsMirror copies the assigned photos into the object store
// and re-renders the statement against the mirrored urls.
func (h *Handler) AdminPhotoAssignmentsMirror(w http.ResponseWriter, r *http.Request) {
	if h.Mirror == nil {
		response.Error(w, http.StatusServiceUnavailable, "MIRROR_DISABLED", "Object store is not configured")
		return
	}

	run, err := h.plan(r)
	if err != nil {
		h.writePlanError(w, err, "mirror photos")
		return
	}
	out := run.out

	photos, err := h.Mirror.Mirror(r.Context(), run.set.URLTemplate, out.Result.Identifiers())
	if err != nil {
		h.Logger.Error("photo mirror failed", zap.String("runId", out.RunID), zap.Error(err))
		response.Error(w, http.StatusBadGateway, "MIRROR_FAILED", "Failed to mirror photos")
		return
	}

	opts := run.set.RenderOptions()
	opts.URLTemplate = h.Mirror.URLTemplate()
	mirrored, err := batch.Render(out, opts)
	if err != nil {
		h.writePlanError(w, err, "mirror photos")
		return
	}

	response.Success(w, map[string]any{
		"runId":       out.RunID,
		"summary":     assignmentSummary(out.Result),
		"urlTemplate": opts.URLTemplate,
		"photos":      photos,
		"warnings":    nonNilWarnings(out.Result.Warnings),
		"sql":         mirrored,
	})
}

func nonNilWarnings(warnings []photoassign.Warning) []photoassign.Warning {
	if warnings == nil {
		return []photoassign.Warning{}
	}
	return warnings
}
