package render

import (
	"context"
	"os"

	"gocausal/app"
	"gocausal/internal/errors"
)

// FileSink writes the markdown rendering of each run to a fixed path.
type FileSink struct {
	Path string
}

func (s FileSink) Name() string { return "markdown:" + s.Path }

func (s FileSink) Write(_ context.Context, res *app.RunResult) error {
	if err := os.WriteFile(s.Path, Markdown(res), 0644); err != nil {
		return errors.ExportFailed(s.Path, err)
	}
	return nil
}
