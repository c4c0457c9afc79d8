package models

import "time"

// Sex of the registered child.
type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

// Status of a registration. Every USSD registration starts provisional;
// upgrading to a full registration happens at a Registry office and is out
// of this service's hands.
type Status string

const (
	StatusProvisional Status = "Provisionally Registered"
	StatusConfirmed   Status = "Registered"
)

// BirthRecord is a completed registration. During a session it is assembled
// in memory from validated answers; the store owns the persisted form, keyed
// by UBRN.
type BirthRecord struct {
	ChildName   string
	DateOfBirth time.Time
	Sex         Sex
	PlaceName   string

	MotherName string
	MotherNIN  string

	// Father details are optional; both fields are set or both empty.
	FatherName string
	FatherNIN  string

	// ContactPhone receives the confirmation SMS, canonical +233 form.
	ContactPhone string

	RegionCode   string
	DistrictCode string

	// RegisteredBy is empty for parent/guardian registrations and carries
	// the health worker ID (HW-123456) otherwise.
	RegisteredBy string

	Status       Status
	RegisteredAt time.Time
}

// HasFather reports whether optional father details were supplied.
func (r *BirthRecord) HasFather() bool {
	return r.FatherName != "" && r.FatherNIN != ""
}
