// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/wikigraph/internal/wikitext"
	"github.com/pdiddy/wikigraph/pkg/types"
)

// ErrCollision is returned under the reject policy when a title sanitizes to
// a name already held by a different title.
var ErrCollision = errors.New("subject name collision")

// Collision records two titles that sanitized to the same name.
type Collision struct {
	Title string `json:"title" yaml:"title"`
	Owner string `json:"owner" yaml:"owner"`
	Base  string `json:"base" yaml:"base"`
	Name  string `json:"name" yaml:"name"`
}

// Minter assigns URI local names to page titles. The same title always
// receives the same name. When two distinct titles share a SafeName the
// configured policy decides: suffix gives the later title _2, _3 and so on;
// reject refuses it; merge lets both share the name.
type Minter struct {
	policy     types.CollisionPolicy
	byTitle    map[string]string
	owner      map[string]string
	collisions []Collision
}

// NewMinter returns a Minter for policy. An empty policy means suffix.
func NewMinter(policy types.CollisionPolicy) *Minter {
	if policy == "" {
		policy = types.CollisionSuffix
	}
	return &Minter{
		policy:  policy,
		byTitle: make(map[string]string),
		owner:   make(map[string]string),
	}
}

// Mint returns the local name for title, reserving it on first use.
func (m *Minter) Mint(title string) (string, error) {
	key := titleKey(title)
	if name, ok := m.byTitle[key]; ok {
		return name, nil
	}

	base := wikitext.SafeName(title)
	holder, taken := m.owner[base]
	if !taken {
		m.reserve(key, base)
		return base, nil
	}

	switch m.policy {
	case types.CollisionReject:
		return "", fmt.Errorf("%w: %q and %q both map to %s", ErrCollision, holder, strings.TrimSpace(title), base)
	case types.CollisionMerge:
		m.byTitle[key] = base
		m.record(title, holder, base, base)
		return base, nil
	}

	name := base
	for n := 2; ; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
		if _, used := m.owner[name]; !used {
			break
		}
	}
	m.reserve(key, name)
	m.record(title, holder, base, name)
	return name, nil
}

// Ref returns the name a link to title should point at. A title first seen
// as a link target claims its name here, exactly as Mint would, so a page
// minted later under a colliding title cannot take over the link.
func (m *Minter) Ref(title string) (string, error) {
	return m.Mint(title)
}

// Collisions returns every collision resolved so far.
func (m *Minter) Collisions() []Collision {
	return append([]Collision(nil), m.collisions...)
}

func (m *Minter) reserve(key, name string) {
	m.byTitle[key] = name
	m.owner[name] = key
}

func (m *Minter) record(title, owner, base, name string) {
	m.collisions = append(m.collisions, Collision{
		Title: strings.TrimSpace(title),
		Owner: owner,
		Base:  base,
		Name:  name,
	})
}

// titleKey folds the spellings MediaWiki treats as one title.
func titleKey(title string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(title, "_", " ")), " ")
}
