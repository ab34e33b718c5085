package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/founders/internal/models"
)

var _ list.Item = outcomeItem{}

// outcomeItem wraps [models.RowOutcome] to implement [list.Item].
type outcomeItem struct {
	outcome models.RowOutcome
}

func (i outcomeItem) FilterValue() string {
	return strings.Join([]string{i.outcome.Email, i.outcome.Status, i.outcome.Reason}, " ")
}

func (i outcomeItem) Title() string {
	if i.outcome.Email == "" {
		return fmt.Sprintf("Row %d", i.outcome.Row)
	}
	return fmt.Sprintf("Row %d • %s", i.outcome.Row, i.outcome.Email)
}

func (i outcomeItem) Description() string {
	desc := i.outcome.Status
	switch {
	case i.outcome.Reason != "":
		desc = fmt.Sprintf("%s • %s", desc, i.outcome.Reason)
	case i.outcome.Action != "":
		desc = fmt.Sprintf("%s • %s", desc, strings.ReplaceAll(i.outcome.Action, "_", " "))
	}
	return desc
}

func outcomeItems(result *models.ImportResult) []list.Item {
	items := make([]list.Item, len(result.Details))
	for i, o := range result.Details {
		items[i] = outcomeItem{outcome: o}
	}
	return items
}
