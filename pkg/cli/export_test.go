package cli

import (
	"context"
	"io"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/intake"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/renderers/tui"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/submission"
)

// RunWithOutput runs the command line writing results to out
func RunWithOutput(ctx context.Context, args []string, out io.Writer) error {
	return run(ctx, args, "test", out)
}

// RunSessionForTest drives an intake session with a scripted driver
func RunSessionForTest(ctx context.Context, machine *intake.Machine, tax intake.Taxonomy, driver tui.PromptDriver, readFile func(string) ([]byte, error)) (submission.Result, error) {
	s := newSession(machine, tax, driver, "en", render.DefaultCatalog())
	s.readFile = readFile
	return s.run(ctx)
}
