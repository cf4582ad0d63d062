package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/promptbridge/promptbridge/models"
)

// maxTaskWidth caps the tasks column so one long file name does not
// blow up the whole table.
const maxTaskWidth = 60

// StageTable renders the per-stage queue contents as a compact
// terminal table.
type StageTable struct {
	// Rows maps each stage to its task names, in listing order.
	Rows map[models.Stage][]string
}

// Render outputs the table to a string.
func (t *StageTable) Render() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	cellStyle := lipgloss.NewStyle().Foreground(ColorText)
	dimStyle := lipgloss.NewStyle().Foreground(ColorSecondary)

	stageWidth := len("Completed")
	taskWidth := len("Tasks")
	for _, stage := range models.Stages() {
		for _, name := range t.Rows[stage] {
			if len(name) > taskWidth {
				taskWidth = len(name)
			}
		}
	}
	if taskWidth > maxTaskWidth {
		taskWidth = maxTaskWidth
	}

	var sb strings.Builder
	sb.WriteString(" " + headerStyle.Render(padRight("Stage", stageWidth)) + "  " +
		headerStyle.Render(padRight("Tasks", taskWidth)) + "\n")
	sb.WriteString(" " + dimStyle.Render(strings.Repeat("─", stageWidth)) + "──" +
		dimStyle.Render(strings.Repeat("─", taskWidth)) + "\n")

	for _, stage := range models.Stages() {
		names := t.Rows[stage]
		if len(names) == 0 {
			sb.WriteString(" " + stageStyle(stage).Render(padRight(titleCase(stage.String()), stageWidth)) + "  " +
				dimStyle.Render("(empty)") + "\n")
			continue
		}
		for i, name := range names {
			label := ""
			if i == 0 {
				label = titleCase(stage.String())
			}
			sb.WriteString(" " + stageStyle(stage).Render(padRight(label, stageWidth)) + "  " +
				cellStyle.Render(padRight(truncate(name, taskWidth), taskWidth)) + "\n")
		}
	}

	return sb.String()
}

func stageStyle(stage models.Stage) lipgloss.Style {
	switch stage {
	case models.StageBuilding:
		return StyleStageBuilding
	case models.StageCompleted:
		return StyleStageCompleted
	default:
		return StyleStagePending
	}
}

// padRight pads a string to the specified width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
