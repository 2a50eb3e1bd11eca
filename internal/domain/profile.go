package domain

import "strings"

// Location is a pincode resolved to its jurisdiction and coordinates.
type Location struct {
	District  string
	State     string
	Latitude  float64
	Longitude float64
}

// CandidateProfile is the immutable input to one case run. Name, father name
// and jurisdiction strings are held lowercased; ModifiedName is an alternate
// spelling hypothesis built from the father's name.
type CandidateProfile struct {
	Name            string
	FatherName      string
	Pincode         string
	State           string
	District        string
	Latitude        float64
	Longitude       float64
	ModifiedName    string
	UseModifiedName bool
}

// NewCandidateProfile builds a profile from the request fields and the
// resolved pincode location.
//
// The modified name splices the first father-name token that does not occur
// in the candidate's own name in as the second-to-last name token: a common
// north-Indian convention records the father's given name inside the son's
// full name, so "ram kumar" with father "kumar singh shyam" is also searched
// as "ram singh kumar". When every father-name token already occurs in the
// name, ModifiedName equals the lowercased name and UseModifiedName is false.
func NewCandidateProfile(name, fatherName, pincode string, loc Location) CandidateProfile {
	p := CandidateProfile{
		Name:       strings.ToLower(name),
		FatherName: strings.ToLower(fatherName),
		Pincode:    pincode,
		State:      strings.ToLower(loc.State),
		District:   strings.ToLower(loc.District),
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
	}

	p.ModifiedName, p.UseModifiedName = modifiedName(p.Name, p.FatherName)
	return p
}

// modifiedName returns the alternate spelling and whether it differs from
// name. Both inputs must already be lowercased. The first father token absent
// from the name (in the father name's own order) is the one spliced in.
func modifiedName(name, father string) (string, bool) {
	nameTokens := strings.Fields(name)
	if len(nameTokens) == 0 {
		return name, false
	}

	seen := make(map[string]struct{}, len(nameTokens))
	for _, t := range nameTokens {
		seen[t] = struct{}{}
	}

	for _, t := range strings.Fields(father) {
		if _, ok := seen[t]; ok {
			continue
		}
		spliced := make([]string, 0, len(nameTokens)+1)
		spliced = append(spliced, nameTokens[:len(nameTokens)-1]...)
		spliced = append(spliced, t, nameTokens[len(nameTokens)-1])
		return strings.Join(spliced, " "), true
	}

	return name, false
}
