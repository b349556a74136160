package domain

import (
	"strings"
)

// MasterSheetPrefix starts every MasterSheet document id.
const MasterSheetPrefix = "EMP"

const employeeNumberWidth = 4

// NormalizeEmployeeNumber trims and left-pads a number to four digits.
// Longer values are kept as they are.
func NormalizeEmployeeNumber(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	return padLeft(s, employeeNumberWidth, '0')
}

// ToMasterSheetID maps "7", "0007", "emp7" and "EMP0007" to "EMP0007".
// Applying it to its own output returns the same id.
func ToMasterSheetID(employeeNumber string) string {
	s := strings.TrimSpace(employeeNumber)
	if len(s) >= len(MasterSheetPrefix) && strings.EqualFold(s[:len(MasterSheetPrefix)], MasterSheetPrefix) {
		s = s[len(MasterSheetPrefix):]
	}
	if s == "" {
		return ""
	}
	return MasterSheetPrefix + padLeft(s, employeeNumberWidth, '0')
}

// TeamMemberID resolves one token of a manager's team list. Tokens that
// already start with "EMP" are used as given.
func TeamMemberID(token string) string {
	t := strings.TrimSpace(token)
	if t == "" || strings.HasPrefix(t, MasterSheetPrefix) {
		return t
	}
	return MasterSheetPrefix + padLeft(t, employeeNumberWidth, '0')
}

// ParseTeamMembers splits a comma separated list, dropping blanks.
func ParseTeamMembers(list string) []string {
	members := []string{}
	for _, part := range strings.Split(list, ",") {
		if p := strings.TrimSpace(part); p != "" {
			members = append(members, p)
		}
	}
	return members
}

// ManagerIDCandidates lists the ids a manager's device token may be stored
// under: the id itself, then the id with the prefix removed or added.
func ManagerIDCandidates(managerID string) []string {
	if strings.HasPrefix(managerID, MasterSheetPrefix) {
		return []string{managerID, strings.TrimPrefix(managerID, MasterSheetPrefix)}
	}
	return []string{managerID, MasterSheetPrefix + managerID}
}

func padLeft(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(string(pad), width-len(s)) + s
}
