package ui

import (
	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/tasks"
)

// previewDoneMsg carries the dry run shown in the review list.
type previewDoneMsg struct {
	table  *tasks.Table
	result *models.ImportResult
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

// importDoneMsg carries the outcome of the real import.
type importDoneMsg struct {
	result *models.ImportResult
	err    error
}
