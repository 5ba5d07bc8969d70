package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/capstan/internal/logging"
	"github.com/aretw0/capstan/internal/presentation/graph"
	"github.com/aretw0/capstan/internal/presentation/tui"
)

// ListTasks prints the recipe's tasks. Raw markdown is printed when plain is set or
// the terminal renderer fails.
func ListTasks(opts Options, w io.Writer, plain bool) error {
	engine, err := createEngine(opts, logging.NewNop(), io.Discard)
	if err != nil {
		return err
	}

	table := tui.TaskTable(engine.Tasks())
	if !plain {
		if rendered, err := tui.NewRenderer()(table); err == nil {
			table = rendered
		}
	}
	_, err = fmt.Fprint(w, table)
	return err
}

// PrintGraph writes the recipe's task tree as a Mermaid flowchart.
func PrintGraph(opts Options, w io.Writer) error {
	engine, err := createEngine(opts, logging.NewNop(), io.Discard)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, graph.GenerateMermaid(engine.Root(), nil))
	return err
}
