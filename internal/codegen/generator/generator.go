package generator

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/eic/datamodel-glue/internal/codegen/meta"
	"github.com/eic/datamodel-glue/internal/codegen/scanner"
	"github.com/eic/datamodel-glue/internal/log"
)

// DefaultOutput is the file name the I/O plugin includes.
const DefaultOutput = "datamodel_glue.h"

type Options struct {
	Namespace string
	Output    string
	Check     bool // compare with Output instead of writing it
}

// GeneratedFile describes the result of one generation run.
type GeneratedFile struct {
	Path    string
	Types   []scanner.CollectionType
	Content []byte
	Changed bool // false when Output already held Content
}

type Generator struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Generator {
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	return &Generator{
		opts:   opts,
		logger: logger,
	}
}

// Generate scans root and writes (or checks) the glue header.
// Nothing is written unless the scan and render both succeed.
func (g *Generator) Generate(root string) (*GeneratedFile, error) {
	g.logger.Info("Generating glue header", "output", g.opts.Output, "root", root, "namespace", g.opts.Namespace)

	dm, err := g.Scan(root)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Render(&buf, dm); err != nil {
		return nil, err
	}

	out := &GeneratedFile{
		Path:    g.opts.Output,
		Types:   dm.Types,
		Content: buf.Bytes(),
	}

	if g.opts.Check {
		if err := checkFile(out.Path, out.Content); err != nil {
			return nil, err
		}
		g.logger.Info("Glue header is up to date", "file", out.Path)
		return out, nil
	}

	changed, err := writeFileAtomic(out.Path, out.Content)
	if err != nil {
		return nil, err
	}
	out.Changed = changed
	if changed {
		g.logger.Info("Generated glue header", "file", out.Path, "types", len(out.Types))
	} else {
		g.logger.Info("Glue header unchanged", "file", out.Path, "types", len(out.Types))
	}
	return out, nil
}

func (g *Generator) Scan(root string) (*meta.Datamodel, error) {
	g.logger.Debug("Scanning collection headers", "dir", scanner.IncludeDir(root, g.opts.Namespace))

	types, err := scanner.ScanCollections(root, g.opts.Namespace)
	if err != nil {
		return nil, err
	}
	for _, ct := range types {
		g.logger.Log(context.Background(), log.LevelTrace, "Found collection type", "type", ct.QualifiedName(), "header", ct.HeaderPath)
	}
	g.logger.Info("Found collection types", "count", len(types))

	return &meta.Datamodel{
		Namespace: g.opts.Namespace,
		Types:     types,
	}, nil
}
