// Package report emits claimed task content for consumption by an
// external agent. Emission is fire-and-forget: no acknowledgment or
// consumption protocol exists.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/promptbridge/promptbridge/internal/ui"
	"github.com/promptbridge/promptbridge/models"
)

const ruleWidth = 50

// Reporter surfaces a claimed task's identity and content to a
// human/agent-visible channel.
type Reporter interface {
	Emit(task models.Task) error
}

// ConsoleReporter writes framed task content to a writer, typically
// stdout. The frame delimiters let a downstream reader segment
// multiple emissions.
type ConsoleReporter struct {
	w      io.Writer
	styled bool
}

// NewConsoleReporter creates a plain console reporter.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// NewStyledConsoleReporter creates a reporter that colors the frame
// for interactive terminals.
func NewStyledConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w, styled: true}
}

// Emit writes the task's name and full content between framing rules.
func (r *ConsoleReporter) Emit(task models.Task) error {
	rule := strings.Repeat("=", ruleWidth)
	dashes := strings.Repeat("-", ruleWidth)
	header := fmt.Sprintf("TASK CONTENT FROM %s:", task.Name)

	if r.styled {
		rule = ui.StyleFrameRule.Render(rule)
		dashes = ui.StyleFrameRule.Render(dashes)
		header = ui.StyleTaskName.Render(header)
	}

	_, err := fmt.Fprintf(r.w, "\n%s\n%s\n%s\n%s\n%s\n\n", rule, header, dashes, task.Content, rule)
	return err
}
