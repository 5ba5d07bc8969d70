package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/capstan/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return "", err
		}
		return r.Render(markdown)
	}
}

// TaskTable renders tasks as a markdown table.
func TaskTable(tasks []*domain.Task) string {
	var sb strings.Builder
	sb.WriteString("| Task | Description |\n")
	sb.WriteString("| --- | --- |\n")
	for _, t := range tasks {
		desc := strings.ReplaceAll(t.Description, "|", "\\|")
		sb.WriteString(fmt.Sprintf("| `%s` | %s |\n", t.FullyQualifiedName(), desc))
	}
	return sb.String()
}
