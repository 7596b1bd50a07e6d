// Package term implements the termination protocol (component C8): a
// 4-stage tree barrier, fanout 3, rooted at rank 0, that shuts the event
// loop down without losing in-flight work (spec §4.8). Stage 1 tells
// every process to stop submitting new user work; stage 2 is each
// process (and its subtree) acknowledging it is idle; stage 3 tells
// every process to start refusing new sends; stage 4 is each process
// acknowledging its subtree has drained. Only after stage 4 completes at
// the root does it broadcast the user program's exit code to every
// process.
package term
