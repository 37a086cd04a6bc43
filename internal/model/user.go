package model

import (
	"strings"
	"time"
)

// User mirrors the `users` table. A user is the identity record shared
// by donor and patient profiles; a user with type "both" may own one of
// each. Username and email are unique.
//
// Fields:
//  ID           – primary key identifier.
//  Username     – unique handle chosen at signup.
//  Email        – unique contact address, stored lower-cased.
//  FirstName    – given name.
//  LastName     – family name.
//  Phone        – optional contact number.
//  BloodGroup   – one of the eight ABO/Rh groups.
//  UserType     – patient, donor or both.
//  Location     – free-form locality string shown on dashboards.
//  Availability – optional free-form availability note.
//  IsVerified   – whether the profile has been verified.
//  Lat, Lng     – geocoordinate used for distance display.
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        string    `json:"phone,omitempty"`
	BloodGroup   string    `json:"bloodGroup"`
	UserType     string    `json:"userType"`
	Location     string    `json:"location"`
	Availability string    `json:"availability,omitempty"`
	IsVerified   bool      `json:"isVerified"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Normalize trims identity fields and lower-cases the email so that
// uniqueness checks behave consistently.
func (u *User) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.BloodGroup = strings.ToUpper(strings.TrimSpace(u.BloodGroup))
	u.UserType = strings.ToLower(strings.TrimSpace(u.UserType))
}

// ValidateUser checks required identity fields and enumerations.
// It returns a map of field name to problem, or nil when valid.
func ValidateUser(u *User) map[string]string {
	errs := map[string]string{}
	if u.Username == "" {
		errs["username"] = "required"
	}
	if u.Email == "" {
		errs["email"] = "required"
	} else if !validEmail(u.Email) {
		errs["email"] = "malformed"
	}
	if u.FirstName == "" {
		errs["firstName"] = "required"
	}
	if u.LastName == "" {
		errs["lastName"] = "required"
	}
	if !IsValidBloodGroup(u.BloodGroup) {
		errs["bloodGroup"] = "must be one of A+,A-,B+,B-,AB+,AB-,O+,O-"
	}
	if !IsValidUserType(u.UserType) {
		errs["userType"] = "must be patient, donor or both"
	}
	if u.Location == "" {
		errs["location"] = "required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IsValidEmail reports whether s passes the structural email check.
func IsValidEmail(s string) bool { return validEmail(s) }

// validEmail applies a minimal structural check: one '@' with a dot in
// the domain part. Deliberately loose; delivery is the real check.
func validEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	if strings.IndexByte(domain, '@') >= 0 {
		return false
	}
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}
