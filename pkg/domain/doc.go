/*
Package domain contains the core domain models shared by the capstan engine and its adapters.

It defines the task registry (Namespaces and Tasks), the capability interface handed to
task bodies, lifecycle events and the error taxonomy. This package is kept free of I/O
and persistence concerns so that the runtime, the recipe compiler and the adapters can
all depend on it.

# Key Entities

  - Namespace: A node in the task tree. Owns tasks and child namespaces.
  - Task: A named unit of deployment work with a Body.
  - Executor: What a Body sees of the engine (Execute, Transaction, OnRollback).
  - LifecycleHooks: Callbacks for observing task, transaction and rollback activity.
*/
package domain
