package notifications

// Notification types persisted in the ntype column.
const (
	TypeLeaveApproved = "leave_approved"
	TypeLeaveRejected = "leave_rejected"
	TypeAutoAbsent    = "auto_absent"
)
