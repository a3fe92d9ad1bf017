package governance

// Domain identifies one of the five DAO organizations that proposals are
// routed to.
type Domain int

const (
	DomainPlatformGovernance Domain = iota
	DomainFinancialTreasury
	DomainCommunityEcosystem
	DomainBusinessMerchant
	DomainInnovationDevelopment
)

// String returns the DAO organization name.
func (d Domain) String() string {
	switch d {
	case DomainPlatformGovernance:
		return "Platform Governance DAO"
	case DomainFinancialTreasury:
		return "Financial & Treasury DAO"
	case DomainCommunityEcosystem:
		return "Community & Ecosystem DAO"
	case DomainBusinessMerchant:
		return "Business & Merchant DAO"
	case DomainInnovationDevelopment:
		return "Innovation & Development DAO"
	default:
		return "Platform Governance DAO"
	}
}

// Priority determines the voting threshold a proposal must clear.
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Voting types required by proposal priority.
const (
	VotingSuperMajority  = "super_majority"
	VotingSimpleMajority = "simple_majority"
)

// Route is the governance destination for a proposal category.
type Route struct {
	Domain   Domain
	Priority Priority
}

// VotingType returns the ballot type the route's priority demands.
func (r Route) VotingType() string {
	if r.Priority == PriorityHigh {
		return VotingSuperMajority
	}
	return VotingSimpleMajority
}

// Classify maps a proposal category to its DAO organization and priority.
// Unknown categories fail closed: they route to Platform Governance with a
// high priority so an unrecognized change can never slip through on a weak
// vote.
func Classify(category string) Route {
	switch category {
	case "governance", "general":
		return Route{DomainPlatformGovernance, PriorityHigh}
	case "technical", "security", "blockchain", "privacy", "legal":
		return Route{DomainPlatformGovernance, PriorityHigh}
	case "infrastructure", "api":
		return Route{DomainPlatformGovernance, PriorityMedium}
	case "treasury", "investment", "economics", "defi":
		return Route{DomainFinancialTreasury, PriorityHigh}
	case "asset":
		return Route{DomainFinancialTreasury, PriorityMedium}
	case "partnership", "ecosystem":
		return Route{DomainCommunityEcosystem, PriorityHigh}
	case "community", "marketing", "environment", "social", "ux":
		return Route{DomainCommunityEcosystem, PriorityMedium}
	case "education", "support":
		return Route{DomainCommunityEcosystem, PriorityLow}
	case "business":
		return Route{DomainBusinessMerchant, PriorityHigh}
	case "merchant", "nft", "rewards":
		return Route{DomainBusinessMerchant, PriorityMedium}
	case "research", "governance_innovation":
		return Route{DomainInnovationDevelopment, PriorityMedium}
	default:
		return Route{DomainPlatformGovernance, PriorityHigh}
	}
}
