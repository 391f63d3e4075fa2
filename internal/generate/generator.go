package generate

import (
	"context"
	"fmt"
	"time"

	"cuentomagico/internal/story"
)

// GenerationError is any failure between submitting preferences and
// holding a parsed story. It is retry-eligible: the customization screen
// stays re-enterable with the preferences intact.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("story generation failed (%s): %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator turns preferences into a paginated Story. MinDisplay is the
// minimum elapsed time before Generate returns, a pacing policy for the
// generating screen; tests run with zero.
type Generator struct {
	Source     TextSource
	PageSize   int
	MaxPages   int
	MinDisplay time.Duration
}

// Generate builds the prompt, fetches the raw text, and parses it into a
// Story with a fresh unique id. One call is outstanding per session at a
// time; navigating away abandons the pending result.
func (g *Generator) Generate(ctx context.Context, prefs story.UserPreferences) (story.Story, error) {
	start := time.Now()

	raw, err := g.Source.GenerateText(ctx, story.BuildPrompt(prefs))
	if err != nil {
		return story.Story{}, &GenerationError{Stage: "request", Err: err}
	}

	title, paragraphs, err := story.Parse(raw)
	if err != nil {
		return story.Story{}, &GenerationError{Stage: "parse", Err: err}
	}

	st := story.New(title, paragraphs, raw, g.PageSize, g.MaxPages)

	if remaining := g.MinDisplay - time.Since(start); remaining > 0 {
		select {
		case <-time.After(remaining):
		case <-ctx.Done():
			return story.Story{}, &GenerationError{Stage: "wait", Err: ctx.Err()}
		}
	}
	return st, nil
}
