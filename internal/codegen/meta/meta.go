package meta

import "github.com/eic/datamodel-glue/internal/codegen/scanner"

// Datamodel holds everything scanned from a data-model installation that the
// glue header template needs.
type Datamodel struct {
	Namespace string
	Types     []scanner.CollectionType // sorted by header file name
}
