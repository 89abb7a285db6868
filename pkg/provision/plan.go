package provision

import "github.com/newtron-network/psktron/pkg/credential"

// Planned is a credential name a run would create. It never carries a
// passphrase; passphrases exist only once a run submits them.
type Planned struct {
	Index int    `json:"index"`
	Unit  string `json:"unit"`
	Name  string `json:"name"`
}

// Plan previews a run without generating passphrases or calling the API.
func Plan(units []string, prefix string, namer credential.Namer) []Planned {
	planned := make([]Planned, len(units))
	for i, unit := range units {
		planned[i] = Planned{Index: i, Unit: unit, Name: namer.Name(prefix, unit)}
	}
	return planned
}

// DuplicateNames returns display names that appear more than once in a plan,
// in first-seen order. Duplicate units are still provisioned; this only lets
// callers warn before submitting.
func DuplicateNames(planned []Planned) []string {
	count := make(map[string]int)
	var order []string
	for _, p := range planned {
		if count[p.Name] == 0 {
			order = append(order, p.Name)
		}
		count[p.Name]++
	}
	var dups []string
	for _, name := range order {
		if count[name] > 1 {
			dups = append(dups, name)
		}
	}
	return dups
}
