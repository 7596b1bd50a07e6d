// Package gptr implements the global pointer (component C5): a
// non-owning (rank, opaque address) pair identifying an object that lives
// on one specific process. Dereferencing only succeeds on the home
// process; everywhere else the pointer is just a serializable value.
//
// Go has no portable way to serialize a raw memory address, so "address"
// here is an opaque handle into a process-wide object table (see
// store.go) rather than a literal pointer value. The observable contract
// — stamp the creating rank, deref only locally, bitwise/structural
// equality, verbatim two-field serialization — is unchanged.
package gptr
