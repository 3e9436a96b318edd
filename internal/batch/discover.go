package batch

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/JaimeStill/umleval/pkg/storage"
)

// Discover lists the ground truth documents directly under dir and returns
// their sample identifiers. File names matching any of the gitignore-style
// exclude patterns are skipped.
func Discover(ctx context.Context, store storage.System, dir string, exclude []string) ([]string, error) {
	keys, err := store.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	matcher := ignore.CompileIgnoreLines(exclude...)

	samples := make([]string, 0, len(keys))
	for _, key := range keys {
		name := path.Base(key)
		id, ok := strings.CutSuffix(name, GroundTruthSuffix)
		if !ok || id == "" {
			continue
		}
		if matcher.MatchesPath(name) {
			continue
		}
		samples = append(samples, id)
	}

	slices.SortFunc(samples, compareSamples)
	return samples, nil
}
