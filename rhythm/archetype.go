package rhythm

// An archetype is a stock rhythmic figure inserted whole so the generator
// can produce syncopation and sixteenth activity without emitting
// unplayable fragments.
type Archetype struct {
	ID         string
	Beats      int
	Syncopated bool
	Notations  []string
}

var singleBeatArchetypes = []Archetype{
	{
		ID:        "twoSixteenthsThenEighth",
		Beats:     1,
		Notations: []string{"16", "16", "8"},
	},
	{
		ID:        "eighthThenTwoSixteenths",
		Beats:     1,
		Notations: []string{"8", "16", "16"},
	},
	{
		ID:        "dottedEighthSixteenth",
		Beats:     1,
		Notations: []string{"8.", "16"},
	},
}

var multiBeatArchetypes = []Archetype{
	{
		ID:         "eighthQuarterEighth",
		Beats:      2,
		Syncopated: true,
		Notations:  []string{"8", "q", "8"},
	},
	{
		ID:        "dottedQuarterEighth",
		Beats:     2,
		Notations: []string{"q.", "8"},
	},
}

func ArchetypeByID(id string) (Archetype, bool) {
	for _, a := range singleBeatArchetypes {
		if a.ID == id {
			return a, true
		}
	}
	for _, a := range multiBeatArchetypes {
		if a.ID == id {
			return a, true
		}
	}
	return Archetype{}, false
}
