package models

import (
	"strings"

	id "addressbook/pkg/domain"
)

// ContactRequest is the flat JSON body accepted when creating or updating a contact.
type ContactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       int    `json:"zip"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// Normalize trims surrounding whitespace and upper-cases the state code.
func (r *ContactRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Street = strings.TrimSpace(r.Street)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.ToUpper(strings.TrimSpace(r.State))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.TrimSpace(r.Email)
}

// ToEntry builds an entry carrying contactID (nil for creations).
func (r *ContactRequest) ToEntry(contactID id.ContactID) Entry {
	return Entry{
		ID:      contactID,
		Name:    Name{First: r.FirstName, Last: r.LastName},
		Address: Address{Street: r.Street, City: r.City, State: r.State, Zip: r.Zip},
		Phone:   r.Phone,
		Email:   r.Email,
	}
}

// ContactResponse is the JSON representation returned by the API.
type ContactResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       int    `json:"zip"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Display   string `json:"display"`
}

func NewContactResponse(e Entry) ContactResponse {
	return ContactResponse{
		ID:        e.ID.String(),
		FirstName: e.Name.First,
		LastName:  e.Name.Last,
		Street:    e.Address.Street,
		City:      e.Address.City,
		State:     e.Address.State,
		Zip:       e.Address.Zip,
		Phone:     e.Phone,
		Email:     e.Email,
		Display:   e.Name.String(),
	}
}

// ContactListResponse wraps a search result.
type ContactListResponse struct {
	Contacts []ContactResponse `json:"contacts"`
	Count    int               `json:"count"`
}

func NewContactListResponse(entries []Entry) ContactListResponse {
	contacts := make([]ContactResponse, 0, len(entries))
	for _, e := range entries {
		contacts = append(contacts, NewContactResponse(e))
	}
	return ContactListResponse{Contacts: contacts, Count: len(contacts)}
}

// ImportResponse summarizes a bulk import.
type ImportResponse struct {
	Imported int              `json:"imported"`
	Rejected []ImportRejected `json:"rejected"`
}

// ImportRejected describes a record that failed validation or persistence.
type ImportRejected struct {
	Record int    `json:"record"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}
