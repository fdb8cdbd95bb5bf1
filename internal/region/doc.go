// Package region preserves hand-written code across regeneration.
//
// Generated files carry protected regions: spans between a start and an
// end marker line, keyed by tag name. Merge takes the previously generated
// file and the freshly rendered one and carries every region body whose
// tag still exists into the fresh text. Marker lines are always written in
// the current style, so files produced with a legacy marker spelling are
// upgraded in place. Regions whose tag disappeared are dropped.
package region
