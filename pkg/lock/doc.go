/*
Package lock serializes capstan runs that target the same resource.

The engine itself is single-threaded state with no internal locking; callers that may
start several runs concurrently (the HTTP adapter, several CLI invocations sharing a
Redis) route them through a Manager keyed by stage or application, so two deploys of
the same target never overlap. A Manager combines an in-process mutex per key with an
optional distributed lock for coordination across replicas.
*/
package lock
