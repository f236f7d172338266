// Package core provides the domain logic for turning spreadsheet rows that
// describe microwave-link sites into canonical site records.
//
// This package has no I/O. It is used by the pipeline, the emitters and the
// tests without modification.
//
// # Source Columns
//
// The input sheet must carry the columns listed in [SourceColumns]. Values may
// be empty: every field has a fallback, so a sparse row still yields a record.
// [ValidateHeaders] checks the header and returns a [HeaderIndex] used by
// [RowFromCells] to pick cells by column name.
//
// # Canonical Record
//
// [Transformer.Canonicalize] is the single derivation of a [SiteRecord] from
// an [InputRow]. Both the SQL script and the bulk-upload CSV are rendered from
// its output, so the two files always agree on identifiers, names, region and
// coordinates:
//
//	t := core.NewTransformer(core.DefaultPlaceholderGrid)
//	rec := t.Canonicalize(row, i)
//
// # Placeholder Coordinates
//
// The input carries no geolocation. [PlaceholderGrid] lays sites out on a
// synthetic grid offset by row index so that no two rows collide. These are
// NOT surveyed positions; every record has SyntheticCoordinates set and every
// output flags them.
//
// # Error Handling
//
// Loader, header and run errors wrap the sentinels in error_messages.go.
// [MapError] turns an error chain into an operator message with a support
// code:
//
//   - FILE001-FILE006: input file errors (missing, format, sheet, header)
//   - VAL004: missing required column
//   - OUT001: output could not be written
//   - CFG001: invalid configuration
//   - RUN001: run cancelled
package core
