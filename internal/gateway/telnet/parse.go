package telnet

import (
	"regexp"
	"strings"
)

// vlanLineRegex matches the id column of a "show vlan brief" row. Rows
// continue onto extra lines when the port list wraps; those
// continuation lines carry no id and are skipped.
var vlanLineRegex = regexp.MustCompile(`^(\d{1,4})\s+(\S+)\s+(\S+)`)

type vlanEntry struct {
	ID     string
	Name   string
	Status string
}

// parseVLANBrief extracts VLAN rows from "show vlan brief" output.
// Header, separator and wrapped-port continuation lines are dropped.
func parseVLANBrief(output string) []vlanEntry {
	var entries []vlanEntry
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "VLAN") || strings.HasPrefix(trimmed, "----") {
			continue
		}
		match := vlanLineRegex.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		entries = append(entries, vlanEntry{
			ID:     match[1],
			Name:   match[2],
			Status: match[3],
		})
	}
	return entries
}
