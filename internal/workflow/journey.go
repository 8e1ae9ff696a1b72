package workflow

import "meridian/internal/rbac"

// Journey lifecycle statuses. Draft is the single initial state and Archived
// the single terminal state; the only backward edges are the explicit
// return-to-draft transitions.
const (
	StatusDraft            Status = "Draft"
	StatusRMReview         Status = "RM_Review"
	StatusComplianceReview Status = "Compliance_Review"
	StatusApproved         Status = "Approved"
	StatusPresented        Status = "Presented"
	StatusExecuted         Status = "Executed"
	StatusArchived         Status = "Archived"
)

// Journey transition events.
const (
	EventSubmitForReview     Event = "SUBMIT_FOR_REVIEW"
	EventEscalateCompliance  Event = "ESCALATE_TO_COMPLIANCE"
	EventReturnToDraft       Event = "RETURN_TO_DRAFT"
	EventApprove             Event = "APPROVE"
	EventReject              Event = "REJECT"
	EventPresentToClient     Event = "PRESENT_TO_CLIENT"
	EventMarkExecuted        Event = "MARK_EXECUTED"
	EventArchive             Event = "ARCHIVE"
	EventArchiveFromApproved Event = "ARCHIVE_UNUSED"
)

// JourneyTable declares the journey lifecycle. Permission checks are bound
// per transition, not per state: approve and reject both leave compliance
// review but could diverge in required role later.
func JourneyTable() *Table {
	statuses := []Status{
		StatusDraft, StatusRMReview, StatusComplianceReview,
		StatusApproved, StatusPresented, StatusExecuted, StatusArchived,
	}
	write := RequiredPermission{rbac.PermissionWrite, rbac.ResourceJourney}
	approve := RequiredPermission{rbac.PermissionApprove, rbac.ResourceJourney}

	return NewTable(rbac.ResourceJourney, StatusDraft, StatusArchived, statuses, []Transition{
		{From: StatusDraft, Event: EventSubmitForReview, Next: StatusRMReview, Required: write, Label: "Submit for Review"},
		{From: StatusRMReview, Event: EventEscalateCompliance, Next: StatusComplianceReview, Required: write, Label: "Escalate to Compliance"},
		{From: StatusRMReview, Event: EventReturnToDraft, Next: StatusDraft, Required: write, Label: "Return to Draft"},
		{From: StatusComplianceReview, Event: EventApprove, Next: StatusApproved, Required: approve},
		{From: StatusComplianceReview, Event: EventReject, Next: StatusDraft, Required: approve},
		{From: StatusApproved, Event: EventPresentToClient, Next: StatusPresented, Required: write, Label: "Present to Client"},
		{From: StatusApproved, Event: EventArchiveFromApproved, Next: StatusArchived, Required: write, Label: "Archive Unused"},
		{From: StatusPresented, Event: EventMarkExecuted, Next: StatusExecuted, Required: approve, Label: "Mark Executed"},
		{From: StatusPresented, Event: EventReturnToDraft, Next: StatusDraft, Required: write, Label: "Return to Draft"},
		{From: StatusExecuted, Event: EventArchive, Next: StatusArchived, Required: write},
	})
}
