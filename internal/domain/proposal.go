package domain

import "time"

// ProposalStatus mirrors the DAO voting subsystem's lifecycle values. The
// engine only writes ProposalStatusDraft at creation; every other transition
// belongs to the voting subsystem.
type ProposalStatus string

const (
	ProposalStatusDraft    ProposalStatus = "draft"
	ProposalStatusActive   ProposalStatus = "active"
	ProposalStatusPassed   ProposalStatus = "passed"
	ProposalStatusRejected ProposalStatus = "rejected"
)

// Approved reports whether the proposal reached the approved terminal state.
func (s ProposalStatus) Approved() bool { return s == ProposalStatusPassed }

// Proposal is the DAO proposal linked to a change request. The engine creates
// it with category and voting type chosen by the category router and then
// only ever reads its status.
type Proposal struct {
	ID              string
	Title           string
	Description     string
	FullDescription string
	Category        string
	VotingType      string
	Status          ProposalStatus
	ChangeRequestID string
	Tags            []string
	CreatedAt       time.Time
}
