package services

import "janmitra/internal/models"

// Approver role names used in approval chains.
const (
	ApproverEventManager     = "event_manager"
	ApproverCampaignDirector = "campaign_director"
	ApproverSecurityLead     = "security_lead"
	ApproverChiefOfStaff     = "chief_of_staff"
)

// ApprovalChains maps an event type to its ordered approver roles.
// Unmapped types fall back to a single event_manager approval.
var ApprovalChains = map[string][]string{
	"press_conference":  {ApproverEventManager, ApproverCampaignDirector, ApproverChiefOfStaff},
	"rally":             {ApproverEventManager, ApproverSecurityLead, ApproverCampaignDirector},
	"town_hall":         {ApproverEventManager, ApproverCampaignDirector},
	"emergency_meeting": {ApproverChiefOfStaff},
}

var defaultChain = []string{ApproverEventManager}

// resolveApprovalChain returns a fresh copy of the chain for the event
// type. Urgent events escalate to chief_of_staff unless the chain already
// includes that role.
func resolveApprovalChain(eventType string, priority models.EventPriority) []string {
	base, ok := ApprovalChains[eventType]
	if !ok {
		base = defaultChain
	}
	chain := make([]string, len(base))
	copy(chain, base)

	if priority == models.EventPriorityUrgent && !containsRole(chain, ApproverChiefOfStaff) {
		chain = append(chain, ApproverChiefOfStaff)
	}
	return chain
}

func containsRole(chain []string, role string) bool {
	for _, r := range chain {
		if r == role {
			return true
		}
	}
	return false
}
