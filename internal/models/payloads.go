package models

// These structs define the JSON payloads exchanged with the caller that
// activates an export and with the notification channel.

// EmptyExportFileName and NoItemsMessage mark a run that found no records.
const (
	EmptyExportFileName = "empty-export"
	NoItemsMessage      = "No items found"
)

// ExportTrigger identifies one activation of the exporter.
type ExportTrigger struct {
	ExecutionID string `json:"executionId"`
	Source      string `json:"source,omitempty"`
}

// ExportOutcome is the single result of one export run. It is built once
// and never modified afterwards.
type ExportOutcome struct {
	Success      bool   `json:"success"`
	FileName     string `json:"fileName,omitempty"`
	DownloadURL  string `json:"downloadUrl,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// EmptyOutcome is returned when the store holds no records.
func EmptyOutcome() ExportOutcome {
	return ExportOutcome{Success: true, FileName: EmptyExportFileName, ErrorMessage: NoItemsMessage}
}

// SuccessOutcome is returned after the artifact was stored and announced.
func SuccessOutcome(fileName, downloadURL string) ExportOutcome {
	return ExportOutcome{Success: true, FileName: fileName, DownloadURL: downloadURL}
}

// FailureOutcome carries the message of the first failure of a run.
func FailureOutcome(err error) ExportOutcome {
	return ExportOutcome{Success: false, ErrorMessage: err.Error()}
}

// ExportDetails is the machine readable part of a completion notification.
type ExportDetails struct {
	FileName    string `json:"fileName"`
	DownloadURL string `json:"downloadUrl"`
	Timestamp   string `json:"timestamp"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
}

// Notification is one completion message handed to the notification channel.
type Notification struct {
	Subject string
	Message string
	Details ExportDetails
}

// NotificationData is the body published on the notification channel.
type NotificationData struct {
	Message string        `json:"message"`
	Details ExportDetails `json:"details"`
}
