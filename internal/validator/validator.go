package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/capstan/pkg/domain"
	"github.com/aretw0/capstan/pkg/recipe"
)

// node is a flattened task of the recipe.
type node struct {
	ns   string
	name string
	spec recipe.TaskSpec
}

// ValidateRecipe reports recipe mistakes that compile cleanly but are almost certainly
// unintended:
//   - a before_/after_ hook whose task does not exist, so it never fires;
//   - rollback commands on a task no transaction ever reaches, so they never run.
//
// Broken invoke targets are left to Compile, which rejects them.
func ValidateRecipe(r *recipe.Recipe) error {
	nodes := make(map[string]node)
	flatten(nodes, "", r.Tasks, r.Namespaces)

	var problems []string
	for _, fqn := range sortedKeys(nodes) {
		n := nodes[fqn]
		for _, prefix := range []string{domain.BeforeHookPrefix, domain.AfterHookPrefix} {
			target, ok := strings.CutPrefix(n.name, prefix)
			if !ok || target == "" {
				continue
			}
			if _, exists := nodes[qualify(n.ns, target)]; !exists {
				problems = append(problems, fmt.Sprintf("Hook '%s' has no task '%s' to wrap", fqn, qualify(n.ns, target)))
			}
		}
	}

	// Crawl from every transactional task.
	visited := make(map[string]bool)
	var queue []string
	for fqn, n := range nodes {
		if n.spec.Transaction {
			queue = append(queue, fqn)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		n := nodes[current]
		for _, path := range n.spec.Invoke {
			target := path
			if !strings.Contains(path, domain.Separator) {
				target = qualify(n.ns, path)
			}
			if _, ok := nodes[target]; !ok {
				continue
			}
			queue = append(queue, target)

			// Invoking a task also runs its hooks.
			ns, name := split(target)
			for _, hook := range []string{domain.BeforeHookPrefix + name, domain.AfterHookPrefix + name} {
				if _, ok := nodes[qualify(ns, hook)]; ok {
					queue = append(queue, qualify(ns, hook))
				}
			}
		}
	}

	for _, fqn := range sortedKeys(nodes) {
		if len(nodes[fqn].spec.Rollback) > 0 && !visited[fqn] {
			problems = append(problems, fmt.Sprintf("Rollback of '%s' never runs: no transaction invokes it", fqn))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("found %d problems:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

func flatten(out map[string]node, ns string, tasks map[string]recipe.TaskSpec, namespaces map[string]recipe.NamespaceSpec) {
	for name, spec := range tasks {
		out[qualify(ns, name)] = node{ns: ns, name: name, spec: spec}
	}
	for name, child := range namespaces {
		flatten(out, qualify(ns, name), child.Tasks, child.Namespaces)
	}
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + domain.Separator + name
}

func split(fqn string) (string, string) {
	i := strings.LastIndex(fqn, domain.Separator)
	if i < 0 {
		return "", fqn
	}
	return fqn[:i], fqn[i+len(domain.Separator):]
}

func sortedKeys(m map[string]node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
