package transform

// SectionResult accumulates per-entity migration counters. Skipped stays
// zero for users; images count rows rejected by classification or
// referential checks.
type SectionResult struct {
	Processed int
	Inserted  int
	Updated   int
	Skipped   int
}
