package types

import (
	"fmt"
	"strings"
)

// Classification is the category assigned to a generation request
type Classification string

const (
	ClassificationTextTool  Classification = "TEXT_TOOL"
	ClassificationImageTool Classification = "IMAGE_TOOL"
	ClassificationDataTool  Classification = "DATA_TOOL"
	ClassificationWorkflow  Classification = "WORKFLOW"
	ClassificationRejected  Classification = "REJECTED"
)

// AllClassifications returns all valid classifications
func AllClassifications() []Classification {
	return []Classification{
		ClassificationTextTool,
		ClassificationImageTool,
		ClassificationDataTool,
		ClassificationWorkflow,
		ClassificationRejected,
	}
}

// IsValid checks if the classification is one of the five legal tokens
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationTextTool,
		ClassificationImageTool,
		ClassificationDataTool,
		ClassificationWorkflow,
		ClassificationRejected:
		return true
	default:
		return false
	}
}

// IsBuildable reports whether a generation strategy exists for c
func (c Classification) IsBuildable() bool {
	return c.IsValid() && c != ClassificationRejected
}

// String returns the string representation of the classification
func (c Classification) String() string {
	return string(c)
}

// NormalizeClassification maps raw model output to a classification. The
// output is trimmed and matched case-sensitively; anything else is REJECTED.
func NormalizeClassification(raw string) Classification {
	c := Classification(strings.TrimSpace(raw))
	if !c.IsValid() {
		return ClassificationRejected
	}
	return c
}

// ParseClassification parses a string into a Classification
func ParseClassification(s string) (Classification, error) {
	c := Classification(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid classification: %s", s)
	}
	return c, nil
}
