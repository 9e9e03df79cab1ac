package conversation

import (
	"encoding/json"
	"fmt"
)

// Draft is the flow-scoped accumulator of validated answers. Exactly one
// variant is set, selected by Flow; an empty Flow means no draft.
//
// Serialized form:
//
//	{"flow":"DONATE","donation":{"food_type":"Arroz","qty":"5kg"}}
type Draft struct {
	Flow      Flow            `json:"flow,omitempty"`
	Donation  *DonationDraft  `json:"donation,omitempty"`
	Org       *OrgDraft       `json:"org,omitempty"`
	Seek      *SeekDraft      `json:"seek,omitempty"`
	Volunteer *VolunteerDraft `json:"volunteer,omitempty"`
}

type DonationDraft struct {
	FoodType  string `json:"food_type,omitempty"`
	Qty       string `json:"qty,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Location  string `json:"location,omitempty"`
}

type OrgDraft struct {
	Name         string `json:"name,omitempty"`
	CoverageArea string `json:"coverage_area,omitempty"`
	CanPickup    *bool  `json:"can_pickup,omitempty"`
	Hours        string `json:"hours,omitempty"`
}

type SeekDraft struct {
	Item     string `json:"item,omitempty"`
	Location string `json:"location,omitempty"`
}

type VolunteerDraft struct {
	Region       string `json:"region,omitempty"`
	Availability string `json:"availability,omitempty"`
	HasTransport *bool  `json:"has_transport,omitempty"`
	Location     string `json:"location,omitempty"`
}

func DonationPatch(p DonationDraft) Draft   { return Draft{Flow: FlowDonate, Donation: &p} }
func OrgPatch(p OrgDraft) Draft             { return Draft{Flow: FlowOrg, Org: &p} }
func SeekPatch(p SeekDraft) Draft           { return Draft{Flow: FlowSeek, Seek: &p} }
func VolunteerPatch(p VolunteerDraft) Draft { return Draft{Flow: FlowVolunteer, Volunteer: &p} }

func (d Draft) IsEmpty() bool { return d.Flow == "" }

// Merge applies the non-empty fields of patch over d. A patch for another flow
// starts from an empty draft instead, so fields never leak across flows.
func (d Draft) Merge(patch Draft) Draft {
	if patch.IsEmpty() {
		return d
	}
	if d.Flow != patch.Flow {
		d = Draft{Flow: patch.Flow}
	}

	switch patch.Flow {
	case FlowDonate:
		v := d.AsDonation()
		if p := patch.Donation; p != nil {
			v.FoodType = pick(v.FoodType, p.FoodType)
			v.Qty = pick(v.Qty, p.Qty)
			v.ExpiresAt = pick(v.ExpiresAt, p.ExpiresAt)
			v.Location = pick(v.Location, p.Location)
		}
		d.Donation = &v
	case FlowOrg:
		v := d.AsOrg()
		if p := patch.Org; p != nil {
			v.Name = pick(v.Name, p.Name)
			v.CoverageArea = pick(v.CoverageArea, p.CoverageArea)
			v.Hours = pick(v.Hours, p.Hours)
			if p.CanPickup != nil {
				b := *p.CanPickup
				v.CanPickup = &b
			}
		}
		d.Org = &v
	case FlowSeek:
		v := d.AsSeek()
		if p := patch.Seek; p != nil {
			v.Item = pick(v.Item, p.Item)
			v.Location = pick(v.Location, p.Location)
		}
		d.Seek = &v
	case FlowVolunteer:
		v := d.AsVolunteer()
		if p := patch.Volunteer; p != nil {
			v.Region = pick(v.Region, p.Region)
			v.Availability = pick(v.Availability, p.Availability)
			v.Location = pick(v.Location, p.Location)
			if p.HasTransport != nil {
				b := *p.HasTransport
				v.HasTransport = &b
			}
		}
		d.Volunteer = &v
	}
	return d
}

func pick(current, patch string) string {
	if patch != "" {
		return patch
	}
	return current
}

// AsDonation returns a copy of the donation variant, zero when absent.
func (d Draft) AsDonation() DonationDraft {
	if d.Flow != FlowDonate || d.Donation == nil {
		return DonationDraft{}
	}
	return *d.Donation
}

func (d Draft) AsOrg() OrgDraft {
	if d.Flow != FlowOrg || d.Org == nil {
		return OrgDraft{}
	}
	return *d.Org
}

func (d Draft) AsSeek() SeekDraft {
	if d.Flow != FlowSeek || d.Seek == nil {
		return SeekDraft{}
	}
	return *d.Seek
}

func (d Draft) AsVolunteer() VolunteerDraft {
	if d.Flow != FlowVolunteer || d.Volunteer == nil {
		return VolunteerDraft{}
	}
	return *d.Volunteer
}

// Encode serializes the draft; an empty draft encodes as {}.
func (d Draft) Encode() ([]byte, error) {
	if d.IsEmpty() {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

// DecodeDraft parses a stored draft. Variants that do not belong to the
// declared flow are dropped.
func DecodeDraft(data []byte) (Draft, error) {
	if len(data) == 0 {
		return Draft{}, nil
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft: %w", err)
	}

	switch d.Flow {
	case "":
		return Draft{}, nil
	case FlowDonate:
		return Draft{Flow: d.Flow, Donation: d.Donation}, nil
	case FlowOrg:
		return Draft{Flow: d.Flow, Org: d.Org}, nil
	case FlowSeek:
		return Draft{Flow: d.Flow, Seek: d.Seek}, nil
	case FlowVolunteer:
		return Draft{Flow: d.Flow, Volunteer: d.Volunteer}, nil
	}
	return Draft{}, fmt.Errorf("decode draft: unknown flow %q", d.Flow)
}
