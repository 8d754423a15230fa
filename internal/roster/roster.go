// Package roster holds the fixed set of known users. The default roster is
// embedded at build time; there is no runtime user creation.
package roster

import (
	_ "embed"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/winvault/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed roster.yaml
var defaultRoster []byte

type file struct {
	Users []models.User `yaml:"users"`
}

// Roster is an immutable, ordered list of users.
type Roster struct {
	users []models.User
	byID  map[string]int
}

// Default returns the embedded roster. It panics if the embedded definition
// is malformed, which can only happen at build time.
func Default() *Roster {
	r, err := Parse(defaultRoster)
	if err != nil {
		panic(fmt.Sprintf("embedded roster: %v", err))
	}
	return r
}

// Parse decodes a YAML roster and validates ids, names and teams.
func Parse(data []byte) (*Roster, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return New(f.Users)
}

// New validates users and builds a Roster.
func New(users []models.User) (*Roster, error) {
	r := &Roster{users: slices.Clone(users), byID: make(map[string]int, len(users))}
	for i, u := range r.users {
		if u.ID == "" || u.Name == "" {
			return nil, fmt.Errorf("user #%d: id and name are required", i)
		}
		if _, err := models.ParseTeam(string(u.Team)); err != nil {
			return nil, fmt.Errorf("user %s: %w", u.ID, err)
		}
		if _, dup := r.byID[u.ID]; dup {
			return nil, fmt.Errorf("user %s: duplicate id", u.ID)
		}
		r.byID[u.ID] = i
	}
	return r, nil
}

// All returns the users in roster order.
func (r *Roster) All() []models.User {
	return slices.Clone(r.users)
}

// Lookup resolves a user id.
func (r *Roster) Lookup(id string) (models.User, bool) {
	i, ok := r.byID[id]
	if !ok {
		return models.User{}, false
	}
	return r.users[i], true
}

// Others returns every user except the one with the given id, in roster order.
// These are the candidate collaborators of that user.
func (r *Roster) Others(id string) []models.User {
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}
