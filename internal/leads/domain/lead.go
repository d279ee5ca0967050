// Package domain provides core business rules for the leads bounded context.
package domain

// Lead pipeline statuses. NEW is initial; CONVERTED and LOST are terminal.
const (
	StatusNew        = "NEW"
	StatusAssigned   = "ASSIGNED"
	StatusInProgress = "IN_PROGRESS"
	StatusFollowUp   = "FOLLOW_UP"
	StatusConverted  = "CONVERTED"
	StatusLost       = "LOST"
)

// Lead temperature, engagement intensity distinct from pipeline status.
const (
	TemperatureCold = "COLD"
	TemperatureWarm = "WARM"
	TemperatureHot  = "HOT"
)

// Activity types recorded on a lead's timeline.
const (
	ActivityCall              = "CALL"
	ActivityWhatsApp          = "WHATSAPP"
	ActivityEmail             = "EMAIL"
	ActivityNote              = "NOTE"
	ActivityStatusChange      = "STATUS_CHANGE"
	ActivityTemperatureChange = "TEMPERATURE_CHANGE"
	ActivityTaskCreated       = "TASK_CREATED"
	ActivityDocumentUploaded  = "DOCUMENT_UPLOADED"
)

var knownStatuses = map[string]struct{}{
	StatusNew:        {},
	StatusAssigned:   {},
	StatusInProgress: {},
	StatusFollowUp:   {},
	StatusConverted:  {},
	StatusLost:       {},
}

var knownTemperatures = map[string]struct{}{
	TemperatureCold: {},
	TemperatureWarm: {},
	TemperatureHot:  {},
}

var knownActivityTypes = map[string]struct{}{
	ActivityCall:              {},
	ActivityWhatsApp:          {},
	ActivityEmail:             {},
	ActivityNote:              {},
	ActivityStatusChange:      {},
	ActivityTemperatureChange: {},
	ActivityTaskCreated:       {},
	ActivityDocumentUploaded:  {},
}

// terminalStatuses are statuses where no further status-changing operation
// may be applied.
var terminalStatuses = map[string]bool{
	StatusConverted: true,
	StatusLost:      true,
}

// IsKnownStatus reports whether status is a valid pipeline status.
func IsKnownStatus(status string) bool {
	_, ok := knownStatuses[status]
	return ok
}

// IsKnownTemperature reports whether temperature is a valid value.
func IsKnownTemperature(temperature string) bool {
	_, ok := knownTemperatures[temperature]
	return ok
}

// IsKnownActivityType reports whether activityType is a valid timeline entry type.
func IsKnownActivityType(activityType string) bool {
	_, ok := knownActivityTypes[activityType]
	return ok
}

// IsTerminalStatus returns true once a lead can no longer change status.
func IsTerminalStatus(status string) bool {
	return terminalStatuses[status]
}

// IsMutableActivity reports whether an activity of the given type may be
// edited after creation. Only notes are mutable; every other type is a
// write-once audit record.
func IsMutableActivity(activityType string) bool {
	return activityType == ActivityNote
}
