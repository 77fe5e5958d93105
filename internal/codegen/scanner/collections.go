package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/eic/datamodel-glue/internal/codegen/common"
)

// CollectionSuffix is the file name suffix that marks a collection header.
const CollectionSuffix = "Collection.h"

// CollectionType is one data-model type discovered from a <Type>Collection.h header.
type CollectionType struct {
	Basename   string // "MCParticle"
	Namespace  string // "edm4hep"
	HeaderPath string // "edm4hep/MCParticleCollection.h", relative to <root>/include
}

// QualifiedName returns the C++ name of the record type, e.g. "edm4hep::MCParticle".
func (c CollectionType) QualifiedName() string {
	return c.Namespace + "::" + c.Basename
}

// CollectionClass returns the C++ name of the collection type, e.g. "edm4hep::MCParticleCollection".
func (c CollectionType) CollectionClass() string {
	return c.QualifiedName() + "Collection"
}

// IncludeDir returns the directory holding a namespace's headers.
func IncludeDir(root, namespace string) string {
	return filepath.Join(root, "include", namespace)
}

// IsCollectionHeader reports whether a file name looks like a collection header.
// Hidden files are ignored the same way shell globs ignore them.
func IsCollectionHeader(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.HasSuffix(name, CollectionSuffix)
}

// ParseCollectionHeader derives the collection type for a single header file name.
func ParseCollectionHeader(namespace, name string) (CollectionType, error) {
	base, ok := strings.CutSuffix(name, CollectionSuffix)
	if !ok {
		return CollectionType{}, &common.NameError{File: name, Reason: "missing " + CollectionSuffix + " suffix"}
	}
	if base == "" {
		return CollectionType{}, &common.NameError{File: name, Reason: "empty type name"}
	}
	if !common.IsIdentifier(base) {
		return CollectionType{}, &common.NameError{File: name, Reason: "type name " + base + " is not a valid C++ identifier"}
	}
	return CollectionType{
		Basename:   base,
		Namespace:  namespace,
		HeaderPath: path.Join(namespace, name),
	}, nil
}

// ScanCollections lists <root>/include/<namespace>/*Collection.h (not recursive)
// and returns the discovered types sorted by file name.
func ScanCollections(root, namespace string) ([]CollectionType, error) {
	if root == "" {
		return nil, &common.ConfigurationError{Field: "root", Message: "data-model root is not set (use --root or EDM4HEP_ROOT)"}
	}
	if !common.IsIdentifier(namespace) {
		return nil, &common.ConfigurationError{Field: "namespace", Message: fmt.Sprintf("%q is not a valid C++ identifier", namespace)}
	}

	dir := IncludeDir(root, namespace)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &common.IOError{Op: "list", Path: dir, Err: err}
	}

	var names []string
	for _, entry := range entries {
		if !IsCollectionHeader(entry.Name()) || !isRegularFile(dir, entry) {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	types := make([]CollectionType, 0, len(names))
	for _, name := range names {
		ct, err := ParseCollectionHeader(namespace, name)
		if err != nil {
			return nil, err
		}
		types = append(types, ct)
	}
	return types, nil
}

// isRegularFile follows symlinks; dangling links are not regular files.
func isRegularFile(dir string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}
