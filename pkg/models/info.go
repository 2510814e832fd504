package models

// Info identifies the owner of a list.
type Info struct {
	UserID     int    `json:"user_id"`
	UserName   string `json:"user_name"`
	ExportType string `json:"user_export_type,omitempty"`
}
