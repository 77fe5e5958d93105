package generator

import (
	"fmt"
	"io"
	"text/template"

	"github.com/eic/datamodel-glue/internal/codegen/common"
	"github.com/eic/datamodel-glue/internal/codegen/meta"
	"github.com/eic/datamodel-glue/internal/codegen/scanner"
)

// UnknownTypeMessage is printed by the generated GetPODIOData for names it
// does not recognize. It is a warning; the event is not aborted.
const UnknownTypeMessage = "Unknown collection type: "

const glueTemplate = `// This file automatically generated by {{.Tool}}. DO NOT EDIT.
#pragma once

#include <JANA/JEvent.h>
#include <JANA/JFactory.h>
#include <podio/EventStore.h>

#include <iostream>

template <class T, class C> void GetPODIODataT(const char *collection_name, std::shared_ptr<JEvent> &event, podio::EventStore &store);
template <class T, class C> void PutPODIODataT(JFactory *fac, podio::EventStore &store);
{{- if .Types}}
{{range .Types}}
#include <{{.HeaderPath}}>
{{- end}}
{{- end}}

static void GetPODIOData(const std::string &collection_name, const std::string &collection_type, std::shared_ptr<JEvent> &event, podio::EventStore &store) {
{{- range .Types}}
    if (collection_type == "{{.QualifiedName}}")
        { GetPODIODataT<{{.QualifiedName}}, {{.CollectionClass}}>(collection_name.c_str(), event, store); return; }
{{- end}}
    std::cerr << "{{.UnknownTypeMessage}}" << collection_type << std::endl;
}

// Test data type held in given factory against being any of the known {{.Namespace}} data types.
// Call PutPODIODataT if match is found. (Factory must have called EnableAs for {{.Namespace}} type.)
static void PutPODIOData(JFactory *fac, podio::EventStore &store) {
{{- range .Types}}
    if (!fac->GetAs<{{.QualifiedName}}>().empty())
        { PutPODIODataT<{{.QualifiedName}}, {{.CollectionClass}}>(fac, store); return; }
{{- end}}
}
`

var glueTmpl = template.Must(template.New("glue").Parse(glueTemplate))

// Render writes the glue header for dm to w.
func Render(w io.Writer, dm *meta.Datamodel) error {
	data := struct {
		Tool               string
		Namespace          string
		Types              []scanner.CollectionType
		UnknownTypeMessage string
	}{
		Tool:               common.ToolName,
		Namespace:          dm.Namespace,
		Types:              dm.Types,
		UnknownTypeMessage: UnknownTypeMessage,
	}
	if err := glueTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute glue template: %w", err)
	}
	return nil
}
