package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eic/datamodel-glue/internal/codegen/generator"
)

// Datamodel holds the flags shared by every command that reads a data-model installation.
type Datamodel struct {
	Root      string `help:"Data-model installation root; collection headers are read from <root>/include/<namespace>/" env:"EDM4HEP_ROOT"`
	Namespace string `help:"C++ namespace of the data model, also its include sub-directory" default:"edm4hep" env:"DATAMODEL_GLUE_NAMESPACE"`
	Output    string `help:"Path of the generated header" default:"datamodel_glue.h" env:"DATAMODEL_GLUE_OUTPUT"`
}

func (d Datamodel) options() generator.Options {
	return generator.Options{Namespace: d.Namespace, Output: d.Output}
}

type Generate struct {
	Datamodel `embed:""`
	Check     bool `help:"Fail if the output file is missing or out of date instead of writing it" env:"DATAMODEL_GLUE_CHECK"`
}

// Run is called by Kong when the generate command is executed.
func (c *Generate) Run(logger *slog.Logger) error {
	opts := c.options()
	opts.Check = c.Check
	_, err := generator.New(opts, logger).Generate(c.Root)
	return err
}

type Watch struct {
	Datamodel `embed:""`
	Debounce  time.Duration `help:"Quiet period after the last header change before regenerating" default:"250ms" env:"DATAMODEL_GLUE_WATCH_DEBOUNCE"`
}

// Run is called by Kong when the watch command is executed.
func (w *Watch) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.Watch(ctx, logger)
}

func (w *Watch) Watch(ctx context.Context, logger *slog.Logger) error {
	logger.Info("Starting datamodel glue watcher", "root", w.Root, "namespace", w.Namespace, "output", w.Output)
	return generator.New(w.options(), logger).Watch(ctx, w.Root, w.Debounce, nil)
}
