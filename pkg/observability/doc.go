/*
Package observability provides tools for monitoring the GenSON expansion engine.

Everything here is fed through domain.LifecycleHooks: Prometheus collectors
for expansion counts, branch choices and truncated loops, and structured
logging hooks. Combine several with LifecycleHooks.Merge.
*/
package observability
