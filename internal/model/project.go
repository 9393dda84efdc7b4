package model

import (
	"regexp"
	"strings"
)

var (
	drivePrefix = regexp.MustCompile(`^[A-Za-z]--`)
	// Home directories ("Users-alice-") and common parent folders are noise
	// in a project label.
	knownParents = regexp.MustCompile(`^(?:Users|home|user)-[^-]+-|^(?:GitHub|GitLab|git|Projects|projects|workspace|Workspace|Desktop|Documents|source|src|dev|Dev|code|Code|repos|Repos)-`)
)

// ProjectShort turns an encoded project directory name into a short path.
//
//	"-Users-alice-projects-claudetop" -> "claudetop"
//	"-home-bob-src-api-server"        -> "api/server"
func ProjectShort(dir string) string {
	if dir == "" {
		return "-"
	}
	s := strings.TrimPrefix(dir, "-")
	s = drivePrefix.ReplaceAllString(s, "")
	for {
		next := knownParents.ReplaceAllString(s, "")
		if next == s || next == "" {
			s = next
			break
		}
		s = next
	}
	if s == "" {
		s = strings.TrimPrefix(dir, "-")
	}
	return strings.ReplaceAll(s, "-", "/")
}
