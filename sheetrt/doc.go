// Package sheetrt is the runtime imported by Go code that sheetgen emits.
//
// Generated row types implement Decodable by calling Field for every
// member. The decoding mode is fixed at generation time and travels in the
// Decoder: Strict stops at the first missing required field or type
// mismatch and leaves the destination untouched, Lenient skips such fields
// and keeps their zero values.
package sheetrt
