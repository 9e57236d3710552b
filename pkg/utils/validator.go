package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var snowflakePattern = regexp.MustCompile(`^[0-9]{1,20}$`)

// ParseIDList splits a comma-separated id list. Entries are trimmed and
// empty or "0" entries, which mean unset, are dropped.
func ParseIDList(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" || id == "0" {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// NormalizeID treats "0" as unset
func NormalizeID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "0" {
		return ""
	}
	return id
}

// ValidateSnowflake checks that an id is a decimal platform id
func ValidateSnowflake(id string) error {
	if !snowflakePattern.MatchString(id) {
		return fmt.Errorf("invalid id %q: must be numeric", id)
	}
	return nil
}
