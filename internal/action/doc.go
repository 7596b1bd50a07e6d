// Package action is the global action registry (component C1): it assigns
// a stable, hash-derived identifier to every callable entry point in the
// process and knows how to decode a wire payload, invoke the callable, and
// re-encode its result. Every action is registered once, at package
// initialization time, identically on every peer — there is no runtime
// negotiation of identifiers.
package action
