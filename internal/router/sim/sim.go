// Package sim is the in-process command channel backend. It owns its user
// table outright, so independent instances never share state, and it
// recognizes exactly the same command vocabulary as the real appliance,
// producing byte-compatible output through parse.Serialize.
package sim

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rapidwifi/zone/internal/router/domain"
	"github.com/rapidwifi/zone/internal/router/parse"
)

var findNameRe = regexp.MustCompile(`\[find name=([^\]\s]+)\]`)

type Backend struct {
	mu       sync.Mutex
	users    []domain.RemoteUserRecord
	failNext error
}

func New() *Backend {
	return &Backend{}
}

// FailNext makes the next Execute call fail with err, simulating a channel
// outage for exactly one command.
func (b *Backend) FailNext(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = err
}

// Users returns a snapshot of the simulated user table.
func (b *Backend) Users() []domain.RemoteUserRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.RemoteUserRecord, len(b.users))
	copy(out, b.users)
	return out
}

func (b *Backend) Execute(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrChannelUnavailable, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failNext != nil {
		err := b.failNext
		b.failNext = nil
		return "", fmt.Errorf("%w: %v", domain.ErrChannelUnavailable, err)
	}

	command = strings.TrimSpace(command)
	switch {
	case strings.HasPrefix(command, "/ip hotspot user add "):
		return b.addUser(command)
	case command == domain.ListUsers():
		return parse.Serialize(b.users), nil
	case strings.HasPrefix(command, "/ip hotspot user set "):
		return b.setDisabled(command)
	case strings.HasPrefix(command, "/ip hotspot user remove "):
		return b.removeUser(command)
	default:
		return fmt.Sprintf("failure: unknown command %q", command), nil
	}
}

func (b *Backend) addUser(command string) (string, error) {
	fields := parse.Fields(command)
	name := fields["name"]
	if name == "" {
		return "failure: no name given", nil
	}
	for _, u := range b.users {
		if u.Name == name {
			return fmt.Sprintf("failure: already have user with name %s", name), nil
		}
	}

	profile := fields["profile"]
	if profile == "" {
		profile = parse.DefaultProfile
	}
	b.users = append(b.users, domain.RemoteUserRecord{
		Name:     name,
		Password: fields["password"],
		Profile:  profile,
		Comment:  fields["comment"],
	})
	return "", nil
}

func (b *Backend) setDisabled(command string) (string, error) {
	name, ok := findTarget(command)
	if !ok {
		return "failure: no such item", nil
	}
	for i := range b.users {
		if b.users[i].Name == name {
			b.users[i].Disabled = true
			return "", nil
		}
	}
	return "failure: no such item", nil
}

func (b *Backend) removeUser(command string) (string, error) {
	name, ok := findTarget(command)
	if !ok {
		return "failure: no such item", nil
	}
	for i := range b.users {
		if b.users[i].Name == name {
			b.users = append(b.users[:i], b.users[i+1:]...)
			return "", nil
		}
	}
	return "failure: no such item", nil
}

func findTarget(command string) (string, bool) {
	m := findNameRe.FindStringSubmatch(command)
	if m == nil {
		return "", false
	}
	return m[1], true
}
