package models

import "strconv"

// Address is a postal address. Two addresses are equal when all four fields match.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	// State is a two letter code, e.g. "CA".
	State string `json:"state"`
	// Zip is a five digit code held as an integer.
	Zip int `json:"zip"`
}

func (a Address) Equal(other Address) bool {
	return a == other
}

// String renders the address over two lines:
//
//	123 Main Street
//	San Francisco, CA 12345
func (a Address) String() string {
	return a.Street + "\n" + a.City + ", " + a.State + " " + strconv.Itoa(a.Zip)
}
