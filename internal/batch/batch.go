package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"menu-photo-services/internal/photoassign"
	"menu-photo-services/internal/photoset"
	"menu-photo-services/internal/sqlgen"

	"github.com/google/uuid"
)

type Output struct {
	RunID  string
	Result photoassign.Result
	SQL    string
}

// Plan validates items, assigns photos and renders the statement. Any error
// is returned before output exists.
func Plan(items []photoassign.MenuItem, set photoset.PhotoSet) (Output, error) {
	return PlanWithOptions(items, set, set.RenderOptions())
}

func PlanWithOptions(items []photoassign.MenuItem, set photoset.PhotoSet, opts sqlgen.Options) (Output, error) {
	if err := photoassign.ValidateItems(items); err != nil {
		return Output{}, err
	}
	pool, classifier, err := set.Build()
	if err != nil {
		return Output{}, err
	}

	result := photoassign.Assign(items, pool, classifier)
	sql, err := sqlgen.Render(result.Assignments, opts)
	if err != nil {
		return Output{}, err
	}
	return Output{RunID: uuid.NewString(), Result: result, SQL: sql}, nil
}

// Render re-emits a planned result against different options, for example a
// mirrored url template.
func Render(out Output, opts sqlgen.Options) (string, error) {
	return sqlgen.Render(out.Result.Assignments, opts)
}

// WriteArtifact replaces path atomically so readers never see a partial file.
func WriteArtifact(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}
