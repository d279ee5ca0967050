package email

const (
	subjectLeadAssignedFmt  = "New lead assigned: %s"
	subjectLeadConvertedFmt = "Lead converted: %s"
	subjectTaskReminderFmt  = "Reminder: %s due %s"
)
