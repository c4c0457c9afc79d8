package engine

import (
	"time"

	"ebirth/internal/refdata"
	"ebirth/internal/registry/models"
	"ebirth/internal/validate"
)

// Flow is one of the top-level menu branches.
type Flow string

const (
	FlowParent       Flow = "parent"
	FlowHealthWorker Flow = "health_worker"
	FlowVerify       Flow = "verify"
	FlowHelp         Flow = "help"
)

// Draft is the session working state, rebuilt from scratch on every turn by
// replaying the accumulated answers. It is never persisted.
type Draft struct {
	Flow Flow

	// CallerPhone is the transport-supplied MSISDN. In the parent flow the
	// caller is the informant, so it doubles as the SMS target.
	CallerPhone string

	ChildName   string
	DateOfBirth time.Time
	Sex         models.Sex
	District    refdata.District

	MotherName string
	MotherNIN  string
	FatherName string
	FatherNIN  string

	// ContactPhone is only collected in the health worker flow; the
	// registrar's own number is not the SMS target.
	ContactPhone string

	WorkerID string

	VerifyCandidate string
	HelpTopic       string
}

// Record assembles the BirthRecord for a completed registration flow.
func (d *Draft) Record() *models.BirthRecord {
	contact := d.ContactPhone
	if contact == "" {
		if normalized, err := validate.Phone(d.CallerPhone); err == nil {
			contact = normalized
		} else {
			contact = d.CallerPhone
		}
	}

	registeredBy := ""
	if d.Flow == FlowHealthWorker {
		registeredBy = "HW-" + d.WorkerID
	}

	return &models.BirthRecord{
		ChildName:    d.ChildName,
		DateOfBirth:  d.DateOfBirth,
		Sex:          d.Sex,
		PlaceName:    d.District.Name,
		MotherName:   d.MotherName,
		MotherNIN:    d.MotherNIN,
		FatherName:   d.FatherName,
		FatherNIN:    d.FatherNIN,
		ContactPhone: contact,
		RegionCode:   d.District.RegionCode,
		DistrictCode: d.District.Code,
		RegisteredBy: registeredBy,
		Status:       models.StatusProvisional,
	}
}
