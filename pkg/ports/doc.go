/*
Package ports defines the driven ports (interfaces) around the capstan engine.

These interfaces decouple recipes and run orchestration from concrete implementations,
so commands can run locally or be faked in tests, and runs can be serialized in-process
or across replicas.

# Key Interfaces

  - CommandRunner: Executes the shell commands a recipe task declares.
  - DistributedLocker: Provides distributed locking so two deploys of the same target never overlap.
*/
package ports
