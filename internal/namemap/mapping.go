package namemap

// Mapping ties one protein name to the identifier of the entry it was
// found in and to the organism of the run.
type Mapping struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	Organism string `json:"organism"`
}

// Summary counts what a walk saw and produced.
type Summary struct {
	Entries  int
	Skipped  int
	Mappings int
}
