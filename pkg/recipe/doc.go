// Package recipe loads task definitions from YAML and compiles them into a
// namespace tree the runtime can execute.
//
// A recipe declares tasks and nested namespaces. Each task can run shell
// commands, call a registered action, invoke other tasks and register rollback
// commands. Setting "transaction: true" wraps a task's steps in a transaction,
// so a failure runs the rollbacks registered by every task it reached.
package recipe
