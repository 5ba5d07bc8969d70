// Package runtime implements the capstan execution core: the task call stack, the
// dispatcher that wraps every task with its before_/after_ hooks, transaction scopes
// and the rollback sweep that runs registered compensations when a transaction fails.
//
// An Engine is single-threaded state. Run independent task trees on independent
// engines, or serialize access to a shared one from the outside.
package runtime
