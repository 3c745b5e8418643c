/*
Package rowkit maps typed, named row declarations onto the flat, ordered value
streams exchanged with a storage engine.

A table is declared once against a Registry, which validates every field and
fixes the flat column order — the wire contract with the store:

	reg := rowkit.NewRegistry()
	people, err := reg.Register("Person",
	    rowkit.String("name"),
	    rowkit.Int("age", rowkit.Default(0)),
	)

Rows move through a small lifecycle: Transient until the first Save, Persisted
afterwards (carrying the store-assigned pk and an optimistic-concurrency
version), Transient again after Delete:

	st := memstore.New(reg.Schemas()...)
	row, err := people.New(st, map[string]any{"name": "Ann"})
	err = row.Save(ctx, true)   // insert; row adopts pk and version
	err = row.Set("age", 31)
	err = row.Save(ctx, true)   // conditional update; stale version -> ErrConflict

Queries translate one criterion into store scans. Multi-slot fields (DateTime,
Coordinate) probe each slot and combine the pk sets:

	adults, err := people.Filter(ctx, st, rowkit.Gt("age", 17))
	all, err := people.Filter(ctx, st, rowkit.All())
	n, err := people.Count(ctx, st, rowkit.Where("age__lt", 30))

Foreign fields hold a Ref — unset, a lazy pk, or an eagerly held row. Save
cascades depth first through unsaved eager references; Deref resolves a lazy
one against the store.

Store backends live under store/: memstore (in-memory reference), sqlitestore,
and ddb (DynamoDB). ExportText/ExportYAML derive a store bootstrap description
from a Registry, and LoadSchema builds a Registry from a YAML declaration.
*/
package rowkit
