package generator

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eic/datamodel-glue/internal/codegen/common"
	"github.com/eic/datamodel-glue/internal/codegen/meta"
	"github.com/eic/datamodel-glue/internal/codegen/scanner"
)

const clusterParticleGlue = `// This file automatically generated by datamodel-glue. DO NOT EDIT.
#pragma once

#include <JANA/JEvent.h>
#include <JANA/JFactory.h>
#include <podio/EventStore.h>

#include <iostream>

template <class T, class C> void GetPODIODataT(const char *collection_name, std::shared_ptr<JEvent> &event, podio::EventStore &store);
template <class T, class C> void PutPODIODataT(JFactory *fac, podio::EventStore &store);

#include <edm4hep/ClusterCollection.h>
#include <edm4hep/MCParticleCollection.h>

static void GetPODIOData(const std::string &collection_name, const std::string &collection_type, std::shared_ptr<JEvent> &event, podio::EventStore &store) {
    if (collection_type == "edm4hep::Cluster")
        { GetPODIODataT<edm4hep::Cluster, edm4hep::ClusterCollection>(collection_name.c_str(), event, store); return; }
    if (collection_type == "edm4hep::MCParticle")
        { GetPODIODataT<edm4hep::MCParticle, edm4hep::MCParticleCollection>(collection_name.c_str(), event, store); return; }
    std::cerr << "Unknown collection type: " << collection_type << std::endl;
}

// Test data type held in given factory against being any of the known edm4hep data types.
// Call PutPODIODataT if match is found. (Factory must have called EnableAs for edm4hep type.)
static void PutPODIOData(JFactory *fac, podio::EventStore &store) {
    if (!fac->GetAs<edm4hep::Cluster>().empty())
        { PutPODIODataT<edm4hep::Cluster, edm4hep::ClusterCollection>(fac, store); return; }
    if (!fac->GetAs<edm4hep::MCParticle>().empty())
        { PutPODIODataT<edm4hep::MCParticle, edm4hep::MCParticleCollection>(fac, store); return; }
}
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeDatamodel(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	dir := scanner.IncludeDir(root, "edm4hep")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("#pragma once\n"), 0o644))
	}
	return root
}

type glueCounts struct {
	includes, getBranches, putBranches, fallbacks int
}

func countGlue(content string) glueCounts {
	var c glueCounts
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "#include <edm4hep/"):
			c.includes++
		case strings.HasPrefix(line, "    if (collection_type == "):
			c.getBranches++
		case strings.HasPrefix(line, "    if (!fac->GetAs<"):
			c.putBranches++
		case strings.Contains(line, UnknownTypeMessage):
			c.fallbacks++
		}
	}
	return c
}

func TestGenerate_Example(t *testing.T) {
	root := makeDatamodel(t, "MCParticleCollection.h", "ClusterCollection.h", "Cluster.h")
	out := filepath.Join(t.TempDir(), DefaultOutput)

	gf, err := New(Options{Namespace: "edm4hep", Output: out}, testLogger()).Generate(root)
	require.NoError(t, err)
	assert.True(t, gf.Changed)
	require.Len(t, gf.Types, 2)
	assert.Equal(t, "Cluster", gf.Types[0].Basename)
	assert.Equal(t, "MCParticle", gf.Types[1].Basename)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, clusterParticleGlue, string(data))
	assert.Equal(t, data, gf.Content)
}

func TestGenerate_BranchCounts(t *testing.T) {
	for _, k := range []int{0, 1, 5, 23} {
		t.Run(fmt.Sprintf("%d types", k), func(t *testing.T) {
			var files []string
			for i := 0; i < k; i++ {
				files = append(files, fmt.Sprintf("Type%02dCollection.h", i))
			}
			root := makeDatamodel(t, files...)
			out := filepath.Join(t.TempDir(), DefaultOutput)

			gf, err := New(Options{Namespace: "edm4hep", Output: out}, testLogger()).Generate(root)
			require.NoError(t, err)
			assert.Equal(t, glueCounts{includes: k, getBranches: k, putBranches: k, fallbacks: 1}, countGlue(string(gf.Content)))
		})
	}
}

func TestGenerate_EmptyDirectoryKeepsShells(t *testing.T) {
	root := makeDatamodel(t)
	out := filepath.Join(t.TempDir(), DefaultOutput)

	gf, err := New(Options{Namespace: "edm4hep", Output: out}, testLogger()).Generate(root)
	require.NoError(t, err)

	content := string(gf.Content)
	assert.Contains(t, content, "#include <podio/EventStore.h>")
	assert.Contains(t, content, "template <class T, class C> void GetPODIODataT(")
	assert.Contains(t, content, "template <class T, class C> void PutPODIODataT(")
	assert.Contains(t, content, "static void GetPODIOData(")
	assert.Contains(t, content, "static void PutPODIOData(")
	assert.Equal(t, 1, strings.Count(content, UnknownTypeMessage))
	assert.Empty(t, gf.Types)
	assert.Contains(t, content, "podio::EventStore &store);\n\nstatic void GetPODIOData(")
	assert.NotContains(t, content, "\n\n\n")
}

func TestScan_ReturnsDatamodel(t *testing.T) {
	root := makeDatamodel(t, "TrackCollection.h")

	dm, err := New(Options{Namespace: "edm4hep"}, testLogger()).Scan(root)
	require.NoError(t, err)
	assert.Equal(t, &meta.Datamodel{
		Namespace: "edm4hep",
		Types: []scanner.CollectionType{
			{Basename: "Track", Namespace: "edm4hep", HeaderPath: "edm4hep/TrackCollection.h"},
		},
	}, dm)
}

func TestGenerate_Idempotent(t *testing.T) {
	root := makeDatamodel(t, "TrackCollection.h", "VertexCollection.h", "CaloHitCollection.h")
	out := filepath.Join(t.TempDir(), DefaultOutput)
	gen := New(Options{Namespace: "edm4hep", Output: out}, testLogger())

	first, err := gen.Generate(root)
	require.NoError(t, err)
	assert.True(t, first.Changed)

	// an unchanged header keeps its mtime so dependent builds stay cached
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(out, past, past))

	second, err := gen.Generate(root)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, first.Content, second.Content)

	st, err := os.Stat(out)
	require.NoError(t, err)
	assert.WithinDuration(t, past, st.ModTime(), time.Second)
}

func TestGenerate_MissingRootWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), DefaultOutput)

	_, err := New(Options{Namespace: "edm4hep", Output: out}, testLogger()).Generate("")
	require.ErrorIs(t, err, common.ErrConfiguration)

	_, statErr := os.Stat(out)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestGenerate_ScanFailureKeepsExistingOutput(t *testing.T) {
	root := makeDatamodel(t, "Collection.h")
	out := filepath.Join(t.TempDir(), DefaultOutput)
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0o644))

	_, err := New(Options{Namespace: "edm4hep", Output: out}, testLogger()).Generate(root)
	require.ErrorIs(t, err, common.ErrInvalidName)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestGenerate_UnwritableOutput(t *testing.T) {
	root := makeDatamodel(t, "TrackCollection.h")
	out := filepath.Join(t.TempDir(), "missing-dir", DefaultOutput)

	_, err := New(Options{Namespace: "edm4hep", Output: out}, testLogger()).Generate(root)
	assert.ErrorIs(t, err, common.ErrIO)
}

func TestGenerate_Check(t *testing.T) {
	root := makeDatamodel(t, "ClusterCollection.h", "MCParticleCollection.h")
	out := filepath.Join(t.TempDir(), DefaultOutput)

	check := New(Options{Namespace: "edm4hep", Output: out, Check: true}, testLogger())

	_, err := check.Generate(root)
	require.ErrorIs(t, err, common.ErrStale)
	_, statErr := os.Stat(out)
	require.ErrorIs(t, statErr, os.ErrNotExist, "check mode must not write")

	require.NoError(t, os.WriteFile(out, []byte(clusterParticleGlue), 0o644))
	gf, err := check.Generate(root)
	require.NoError(t, err)
	assert.False(t, gf.Changed)

	require.NoError(t, os.WriteFile(filepath.Join(scanner.IncludeDir(root, "edm4hep"), "TrackCollection.h"), nil, 0o644))
	_, err = check.Generate(root)
	assert.ErrorIs(t, err, common.ErrStale)
}

func TestGenerate_DefaultOutput(t *testing.T) {
	gen := New(Options{Namespace: "edm4hep"}, testLogger())
	assert.Equal(t, DefaultOutput, gen.opts.Output)
}

func TestRender_IncludeOrderMatchesBranches(t *testing.T) {
	dm := &meta.Datamodel{
		Namespace: "edm4hep",
		Types: []scanner.CollectionType{
			{Basename: "Vertex", Namespace: "edm4hep", HeaderPath: "edm4hep/VertexCollection.h"},
			{Basename: "Track", Namespace: "edm4hep", HeaderPath: "edm4hep/TrackCollection.h"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, dm))
	content := buf.String()

	// Render keeps the order it is given; sorting is the scanner's job.
	assert.Less(t, strings.Index(content, "VertexCollection.h>"), strings.Index(content, "TrackCollection.h>"))
	assert.Less(t, strings.Index(content, `"edm4hep::Vertex"`), strings.Index(content, `"edm4hep::Track"`))
	assert.Less(t, strings.Index(content, "GetAs<edm4hep::Vertex>"), strings.Index(content, "GetAs<edm4hep::Track>"))
}
