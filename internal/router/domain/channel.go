package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Channel sends one command to the access point and returns its raw text
// output. Implementations serialize commands internally; a single instance
// must never have two commands in flight.
type Channel interface {
	Execute(ctx context.Context, command string) (string, error)
}

// RemoteUserRecord is the appliance's view of a hotspot user. Records are
// produced by the output parser only, never hand-built by business code.
type RemoteUserRecord struct {
	Name     string
	Password string
	Profile  string
	Comment  string
	Disabled bool
}

var (
	// ErrChannelUnavailable wraps connection, auth and timeout failures on
	// the command channel.
	ErrChannelUnavailable = errors.New("channel_unavailable")

	// ErrUserExists is reported when the appliance rejects an add for a name
	// it already has.
	ErrUserExists = errors.New("user_exists")
)

// The four-verb command vocabulary. Anything beyond these is out of scope for
// the voucher core.

func AddUser(name, password, profile, comment string) string {
	return fmt.Sprintf("/ip hotspot user add name=%s password=%s profile=%s comment=%q",
		name, password, profile, comment)
}

func ListUsers() string {
	return "/ip hotspot user print detail"
}

func DisableUser(name string) string {
	return fmt.Sprintf("/ip hotspot user set [find name=%s] disabled=yes", name)
}

func RemoveUser(name string) string {
	return fmt.Sprintf("/ip hotspot user remove [find name=%s]", name)
}

// CommandFailure reports whether the raw output is an appliance-side failure
// line, returning its message. Both backends use the same failure shape.
func CommandFailure(output string) (string, bool) {
	trimmed := strings.TrimSpace(output)
	if strings.HasPrefix(trimmed, "failure:") {
		return strings.TrimSpace(strings.TrimPrefix(trimmed, "failure:")), true
	}
	return "", false
}
