package models

import "time"

type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationMatched   DonationStatus = "matched"
	DonationCollected DonationStatus = "collected"
	DonationExpired   DonationStatus = "expired"
	DonationCancelled DonationStatus = "cancelled"
)

type MatchStatus string

const (
	MatchSuggested MatchStatus = "suggested"
	MatchAccepted  MatchStatus = "accepted"
	MatchRejected  MatchStatus = "rejected"
	MatchExpired   MatchStatus = "expired"
)

type DistributionStatus string

const (
	DistributionActive    DistributionStatus = "active"
	DistributionExpired   DistributionStatus = "expired"
	DistributionCancelled DistributionStatus = "cancelled"
)

type UserRole string

const (
	RoleDonor     UserRole = "donor"
	RoleOrg       UserRole = "org"
	RoleSeeker    UserRole = "seeker"
	RoleVolunteer UserRole = "volunteer"
	RoleUnknown   UserRole = "unknown"
)

// ConversationState is the persisted position of one phone in the conversation.
// Draft holds the serialized flow-scoped draft; its shape is owned by the
// conversation package.
type ConversationState struct {
	Phone     string
	Step      string
	Flow      string
	Draft     []byte
	UpdatedAt time.Time
}

// Donation is created when a donor confirms the donate flow
type Donation struct {
	ID         int64
	DonorPhone string
	FoodType   string
	Qty        string // free text, e.g. "5kg"
	ExpiresAt  string // free text, e.g. "hoje 18h"
	Location   string
	Status     DonationStatus
	CreatedAt  time.Time
}

// Organization receives donation suggestions for its coverage area
type Organization struct {
	ID           int64
	Name         string
	Phone        string
	CoverageArea string // comma-separated neighborhoods
	CanPickup    bool
	Hours        string
	Active       bool
	CreatedAt    time.Time
}

// ActiveDistribution is a volunteer handing out food right now
type ActiveDistribution struct {
	ID             int64
	VolunteerPhone string
	FoodType       string
	Qty            string
	Location       string
	ExpiresAt      time.Time
	Status         DistributionStatus
	CreatedAt      time.Time
}

// Match pairs a donation with an organization
type Match struct {
	ID         int64
	DonationID int64
	OrgID      int64
	Status     MatchStatus
	CreatedAt  time.Time
}

// Volunteer is an entry of the volunteer roster
type Volunteer struct {
	ID           int64
	Phone        string
	Region       string
	Availability string
	HasTransport bool
	Location     string
	CreatedAt    time.Time
}

// ProcessedMessage marks an inbound message id as already handled
type ProcessedMessage struct {
	MessageID string
	Phone     string
	CreatedAt time.Time
}
