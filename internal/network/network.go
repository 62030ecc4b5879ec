package network

import (
	"fmt"
	"strings"
)

// Network identifies the mobile operator a subscriber number belongs to.
type Network string

const (
	MTN     Network = "MTN"
	Telecel Network = "TELECEL"
	AT      Network = "AT"
	Unknown Network = "UNKNOWN"
)

const countryCode = "233"

// ErrMalformedPhone is returned when a raw phone value cannot be reduced to
// the canonical local form.
var ErrMalformedPhone = fmt.Errorf("malformed phone number")

// Classifier resolves subscriber numbers to networks using a three-digit
// local prefix table. The table is fixed at construction time.
type Classifier struct {
	prefixes map[string]Network
}

// DefaultPrefixes is the authoritative prefix assignment. 027 and 057 belong
// to AT after the airtelTigo consolidation, not Telecel.
func DefaultPrefixes() map[Network][]string {
	return map[Network][]string{
		MTN:     {"024", "025", "053", "054", "055", "059"},
		Telecel: {"020", "050"},
		AT:      {"026", "027", "056", "057"},
	}
}

// NewClassifier builds a classifier from a prefix assignment. It rejects
// tables where a prefix appears under more than one network.
func NewClassifier(assignment map[Network][]string) (*Classifier, error) {
	prefixes := make(map[string]Network)
	for net, list := range assignment {
		for _, p := range list {
			if len(p) != 3 || !strings.HasPrefix(p, "0") {
				return nil, fmt.Errorf("invalid prefix %q for network %s", p, net)
			}
			if owner, ok := prefixes[p]; ok && owner != net {
				return nil, fmt.Errorf("prefix %q assigned to both %s and %s", p, owner, net)
			}
			prefixes[p] = net
		}
	}
	return &Classifier{prefixes: prefixes}, nil
}

// NewDefaultClassifier builds a classifier from DefaultPrefixes.
func NewDefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultPrefixes())
	if err != nil {
		// The built-in table is validated by tests; this is unreachable.
		panic(err)
	}
	return c
}

// Normalize reduces a raw subscriber number to canonical local form: a
// leading zero followed by nine digits. International formats (+233..., 233...)
// are rewritten to local form. Anything else fails explicitly.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.TrimPrefix(s, "+")

	if strings.HasPrefix(s, countryCode) {
		s = "0" + s[len(countryCode):]
	}

	if len(s) != 10 || !strings.HasPrefix(s, "0") {
		return "", fmt.Errorf("%w: %q", ErrMalformedPhone, raw)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrMalformedPhone, raw)
		}
	}
	return s, nil
}

// Classify normalizes rawPhone and resolves its network. Malformed input and
// unlisted prefixes both yield Unknown; classification failure is a terminal
// outcome for the caller, not an error.
func (c *Classifier) Classify(rawPhone string) Network {
	msisdn, err := Normalize(rawPhone)
	if err != nil {
		return Unknown
	}
	if net, ok := c.prefixes[msisdn[:3]]; ok {
		return net
	}
	return Unknown
}

// FromConfig converts env-sourced prefix overrides into an assignment,
// falling back to the default table for any network left unset.
func FromConfig(mtn, telecel, at []string) map[Network][]string {
	assignment := DefaultPrefixes()
	if len(mtn) > 0 {
		assignment[MTN] = mtn
	}
	if len(telecel) > 0 {
		assignment[Telecel] = telecel
	}
	if len(at) > 0 {
		assignment[AT] = at
	}
	return assignment
}
