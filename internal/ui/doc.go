// Package ui renders import results for the terminal and implements an interactive import review
// using bubbletea's Elm architecture.
//
// The review walks through:
//  1. [LoadingView] : Decode the file and dry-run every row
//  2. [ReviewView] : Browse (and filter) the per-row outcomes of the dry run
//  3. [ConfirmView] : Confirm the import
//  4. [ImportView] : Monitor progress updates while rows are written
//  5. [ResultView] : Counters and the rows that were not imported
//
// Progress flows through a channel from the [tasks.ImportEngine]; the engine never blocks on a slow renderer.
//
// [RenderSummary] is the non-interactive counterpart used by the import command.
package ui
