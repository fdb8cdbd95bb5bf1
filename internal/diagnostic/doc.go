// Package diagnostic accumulates the outcome of a generation run.
//
// Schema and target problems stop a run before anything is written; every
// later problem is scoped to one output unit and recorded here while the
// remaining units complete.
package diagnostic
