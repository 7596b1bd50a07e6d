// Package config reads the process-wide knobs that describe the shape of
// the peer mesh: how many nodes, processes and worker threads the operator
// expects, and the static table of peer addresses the transport dials at
// bootstrap.
package config
