package conversation

import "strings"

// Flow is one of the top-level conversation intents.
type Flow string

const (
	FlowMenu      Flow = "MENU"
	FlowDonate    Flow = "DONATE"
	FlowOrg       Flow = "ORG"
	FlowSeek      Flow = "SEEK"
	FlowVolunteer Flow = "VOL"
)

// Step is the persisted label of the input a phone is expected to send next.
type Step string

const (
	StepMenu Step = "MENU"

	StepDonateFoodType  Step = "DONATE_FOOD_TYPE"
	StepDonateQty       Step = "DONATE_QTY"
	StepDonateExpires   Step = "DONATE_EXPIRES"
	StepDonateLocation  Step = "DONATE_LOCATION"
	StepDonateConfirm   Step = "DONATE_CONFIRM"
	StepDonatePostMatch Step = "DONATE_POST_MATCH"

	StepOrgName      Step = "ORG_NAME"
	StepOrgCoverage  Step = "ORG_COVERAGE"
	StepOrgPickup    Step = "ORG_PICKUP"
	StepOrgHours     Step = "ORG_HOURS"
	StepOrgConfirm   Step = "ORG_CONFIRM"
	StepOrgCompleted Step = "ORG_COMPLETED"

	StepSeekItem      Step = "SEEK_ITEM"
	StepSeekLocation  Step = "SEEK_LOCATION"
	StepSeekCompleted Step = "SEEK_COMPLETED"

	StepVolunteerRegion       Step = "VOLUNTEER_REGION"
	StepVolunteerAvailability Step = "VOLUNTEER_AVAILABILITY"
	StepVolunteerTransport    Step = "VOLUNTEER_TRANSPORT"
	StepVolunteerLocation     Step = "VOLUNTEER_LOCATION"
	StepVolunteerConfirm      Step = "VOLUNTEER_CONFIRM"
	StepVolunteerCompleted    Step = "VOLUNTEER_COMPLETED"
)

// flowPrefixes is the only place a step label is mapped to its flow.
var flowPrefixes = []struct {
	prefix string
	flow   Flow
}{
	{"DONATE_", FlowDonate},
	{"ORG_", FlowOrg},
	{"SEEK", FlowSeek},
	{"VOL", FlowVolunteer},
}

// Flow derives the flow owning s. Any label without a known prefix belongs
// to the menu, so the mapping is total.
func (s Step) Flow() Flow {
	for _, p := range flowPrefixes {
		if strings.HasPrefix(string(s), p.prefix) {
			return p.flow
		}
	}
	return FlowMenu
}

// collectsRegistration reports flows where greeting shortcuts are not honored,
// so a stray "oi" does not throw away a half-typed registration.
func (f Flow) collectsRegistration() bool {
	return f == FlowOrg || f == FlowSeek || f == FlowVolunteer
}
