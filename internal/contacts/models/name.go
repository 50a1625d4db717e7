package models

import "strings"

// Name is a person's first and last name.
type Name struct {
	First string `json:"first_name"`
	Last  string `json:"last_name"`
}

func (n Name) Equal(other Name) bool {
	return n == other
}

// Compare orders names by the concatenation of last and first name, so the
// last name is the primary key and the first name breaks ties.
func (n Name) Compare(other Name) int {
	return strings.Compare(n.Last+n.First, other.Last+other.First)
}

// String renders "Last, First".
func (n Name) String() string {
	return n.Last + ", " + n.First
}
