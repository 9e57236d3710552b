package entity

import (
	"errors"
	"fmt"
)

// DeliveryCondition is the requester-chosen constraint on when funds are sent
type DeliveryCondition string

const (
	ConditionASAP     DeliveryCondition = "ASAP"
	ConditionOnline   DeliveryCondition = "online"
	ConditionHospital DeliveryCondition = "hospital"
	ConditionFlying   DeliveryCondition = "flying"
)

var conditionLabels = map[DeliveryCondition]string{
	ConditionASAP:     "ASAP",
	ConditionOnline:   "Only if I am online",
	ConditionHospital: "Only if I am in Hospital",
	ConditionFlying:   "Only if I am Flying",
}

// ErrUnknownCondition is returned for a value outside the fixed enumeration
var ErrUnknownCondition = errors.New("unknown delivery condition")

// AllDeliveryConditions returns the conditions in display order
func AllDeliveryConditions() []DeliveryCondition {
	return []DeliveryCondition{ConditionASAP, ConditionOnline, ConditionHospital, ConditionFlying}
}

// ParseDeliveryCondition validates a raw select value
func ParseDeliveryCondition(value string) (DeliveryCondition, error) {
	c := DeliveryCondition(value)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCondition, value)
	}
	return c, nil
}

// IsValid reports whether the condition is one of the fixed enumeration
func (c DeliveryCondition) IsValid() bool {
	_, ok := conditionLabels[c]
	return ok
}

// Label returns the human-readable text shown to members and approvers
func (c DeliveryCondition) Label() string {
	if label, ok := conditionLabels[c]; ok {
		return label
	}
	return string(c)
}

// Description returns the optional select-menu hint
func (c DeliveryCondition) Description() string {
	if c == ConditionASAP {
		return "Send as soon as approved"
	}
	return ""
}

// String returns the raw value
func (c DeliveryCondition) String() string {
	return string(c)
}
