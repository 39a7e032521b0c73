/*
Package ports defines the driven ports (interfaces) for the GenSON engine.

These interfaces decouple schema compilation and expansion from where node
definitions are stored.

# Key Interfaces

  - SchemaLoader: Responsible for serving raw node definitions by key (e.g., from Loam, Redis or memory).

Adapters verify themselves against the reusable suite in package tests.
*/
package ports
