package types

import "fmt"

// ToolStatus represents the moderation status of a submitted tool
type ToolStatus string

const (
	ToolStatusPending   ToolStatus = "pending"
	ToolStatusPublished ToolStatus = "published"
	ToolStatusRejected  ToolStatus = "rejected"
)

// AllToolStatuses returns all valid tool statuses
func AllToolStatuses() []ToolStatus {
	return []ToolStatus{
		ToolStatusPending,
		ToolStatusPublished,
		ToolStatusRejected,
	}
}

// IsValid checks if the tool status is valid
func (s ToolStatus) IsValid() bool {
	switch s {
	case ToolStatusPending,
		ToolStatusPublished,
		ToolStatusRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation of the tool status
func (s ToolStatus) String() string {
	return string(s)
}

// ParseToolStatus parses a string into a ToolStatus
func ParseToolStatus(s string) (ToolStatus, error) {
	status := ToolStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid tool status: %s", s)
	}
	return status, nil
}
