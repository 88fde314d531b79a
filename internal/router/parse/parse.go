// Package parse turns the appliance's key=value print output into canonical
// user records. The output shape is a versioned contract: any change on the
// appliance side must be reflected here and in the simulation backend
// together.
package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rapidwifi/zone/internal/router/domain"
)

const DefaultProfile = "default"

var tokenRe = regexp.MustCompile(`([A-Za-z][\w.-]*)=(?:"([^"]*)"|(\S+))`)

// Fields extracts key=value tokens from one line, accepting quoted and bare
// values in any order.
func Fields(line string) map[string]string {
	fields := make(map[string]string)
	for _, m := range tokenRe.FindAllStringSubmatch(line, -1) {
		key := m[1]
		value := m[2]
		if value == "" && m[3] != "" {
			value = m[3]
		}
		fields[key] = value
	}
	return fields
}

// Parse converts raw print output into user records. Lines without a name=
// token are skipped; lines with a name but missing other tokens still yield a
// record with defaults, so local and remote counts cannot drift on a partial
// line.
func Parse(raw string) []domain.RemoteUserRecord {
	var records []domain.RemoteUserRecord
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := Fields(line)
		name, ok := fields["name"]
		if !ok || name == "" {
			continue
		}

		profile := fields["profile"]
		if profile == "" {
			profile = DefaultProfile
		}

		records = append(records, domain.RemoteUserRecord{
			Name:     name,
			Password: fields["password"],
			Profile:  profile,
			Comment:  fields["comment"],
			Disabled: isTruthy(fields["disabled"]),
		})
	}
	return records
}

// Serialize renders records in the same shape the appliance prints. Used by
// the simulation backend so both channel variants stay byte-compatible.
func Serialize(records []domain.RemoteUserRecord) string {
	var b strings.Builder
	for i, r := range records {
		disabled := "no"
		if r.Disabled {
			disabled = "yes"
		}
		fmt.Fprintf(&b, " %d   name=%q password=%q profile=%q comment=%q disabled=%s\n",
			i, r.Name, r.Password, r.Profile, r.Comment, disabled)
	}
	return b.String()
}

func isTruthy(value string) bool {
	switch strings.ToLower(value) {
	case "yes", "true":
		return true
	default:
		return false
	}
}
