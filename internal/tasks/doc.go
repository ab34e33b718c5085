// Package tasks implements the bulk CSV import pipeline and catalog seeding.
//
// # Pipeline
//
//  1. [DecodeTable] : bytes to a [Table]
//     - XLSX workbooks (first sheet), or delimited text in UTF-8, UTF-16 with BOM, or Windows-1252
//     - header row lowercased; every data row keeps its 1-based file row number
//
//  2. [Pick] and the column alias table : tolerant header matching (exact, then substring)
//
//  3. [Resolver] : case-insensitive find-or-create of skills, hobbies and startups with a per-batch cache
//
//  4. reconciler : required-field checks, email dedupe ([DedupeMode]), founder create or update
//
//  5. [ImportEngine] : runs every row in file order in its own unit of work and assembles a models.ImportResult
//
// # Failure model
//
// [*DecodeError] and [*SchemaError] reject the whole batch. Anything else that goes wrong is recorded against
// the row it happened on, and later rows are processed normally. A dry run performs every lookup and check
// but writes nothing.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Updates use select with default to prevent blocking.
package tasks
