package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/capstan/pkg/domain"
)

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	ExecutedTasks []string
	FailedTask    string
}

// GenerateMermaid produces a Mermaid flowchart of the task tree under root.
// Namespaces become subgraphs and each hook task points at the task it wraps:
// - Task: [Rectangle]
// - Hook (before_/after_): ([Stadium])
// It also applies overlay styles (Executed/Failed) if provided.
func GenerateMermaid(root *domain.Namespace, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	writeNamespace(&sb, root, "    ")

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef executed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.ExecutedTasks {
			id := sanitizeMermaidID(name)
			if !seen[id] && id != "" && name != overlay.FailedTask {
				seen[id] = true
				sb.WriteString(fmt.Sprintf("    class %s executed;\n", id))
			}
		}
		if overlay.FailedTask != "" {
			sb.WriteString(fmt.Sprintf("    class %s failed;\n", sanitizeMermaidID(overlay.FailedTask)))
		}
	}

	return sb.String()
}

func writeNamespace(sb *strings.Builder, ns *domain.Namespace, indent string) {
	for _, task := range ns.Tasks() {
		fqn := task.FullyQualifiedName()
		opener, closer := "[", "]"
		target, isHook := hookTarget(task.Name)
		if isHook {
			opener, closer = "([", "])"
		}
		sb.WriteString(fmt.Sprintf("%s%s%s\"%s\"%s\n", indent, sanitizeMermaidID(fqn), opener, task.Name, closer))

		if isHook {
			if wrapped, ok := ns.Lookup(target); ok {
				sb.WriteString(fmt.Sprintf("%s%s -.-> %s\n", indent, sanitizeMermaidID(fqn), sanitizeMermaidID(wrapped.FullyQualifiedName())))
			}
		}
	}

	for _, child := range ns.Namespaces() {
		fqn := child.FullyQualifiedName()
		sb.WriteString(fmt.Sprintf("%ssubgraph ns_%s[\"%s\"]\n", indent, sanitizeMermaidID(fqn), fqn))
		writeNamespace(sb, child, indent+"    ")
		sb.WriteString(indent + "end\n")
	}
}

func hookTarget(name string) (string, bool) {
	for _, prefix := range []string{domain.BeforeHookPrefix, domain.AfterHookPrefix} {
		if target, ok := strings.CutPrefix(name, prefix); ok && target != "" {
			return target, true
		}
	}
	return "", false
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, domain.Separator, "__")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
