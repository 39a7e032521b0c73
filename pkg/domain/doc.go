/*
Package domain contains the core data model of the GenSON expansion engine.

It defines the compiled form of a schema and the values produced while
expanding it. This package is kept pure and free of I/O: schemas are
compiled elsewhere (pkg/schema) and expanded by the runtime.

# Key Entities

  - Schema: the mapping of node keys to NodeDefinitions.
  - NodeDefinition: title, line, props and the Slot that produces children.
  - Slot and Term: tagged unions describing how children are generated.
  - Descriptor: one expanded node, carrying a lazy Expand for drill-down.
  - LifecycleHooks: callbacks fired while a tree is expanded.
*/
package domain
