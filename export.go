/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package rowkit

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rowkit/rowkit/store"
)

// schemaDoc is the YAML shape shared by ExportYAML and LoadSchema.
type schemaDoc struct {
	Tables []store.TableSchema `yaml:"tables"`
}

// ExportText renders the registry in the store bootstrap dialect:
//
//	Person{ name : string ; age : integer ; }
//
// one clause per table in registration order, columns in wire order. A foreign
// column's type is the referenced table's name.
func ExportText(reg *Registry) string {
	var b strings.Builder
	for _, schema := range reg.Schemas() {
		b.WriteString(schema.Name)
		b.WriteString("{ ")
		for _, col := range schema.Columns {
			b.WriteString(col.Name)
			b.WriteString(" : ")
			b.WriteString(col.Type)
			b.WriteString(" ; ")
		}
		b.WriteString("} ")
	}
	return strings.TrimSpace(b.String())
}

// ExportYAML renders the registry's flat schemas as a YAML document, the
// machine-readable counterpart of ExportText.
func ExportYAML(reg *Registry) ([]byte, error) {
	return yaml.Marshal(schemaDoc{Tables: reg.Schemas()})
}
