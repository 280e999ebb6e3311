package core

import "strings"

// AdminPolicy decides whether an email address should hold the admin flag.
type AdminPolicy interface {
	ShouldBeAdmin(email string) bool
}

// AdminPolicyFunc adapts a plain function to AdminPolicy.
type AdminPolicyFunc func(email string) bool

func (f AdminPolicyFunc) ShouldBeAdmin(email string) bool { return f(email) }

// EmailSuffixPolicy grants admin to addresses ending in one of its suffixes.
type EmailSuffixPolicy struct {
	suffixes []string
}

// NewEmailSuffixPolicy builds a case-insensitive suffix policy. Blank suffixes are ignored,
// so an empty list grants admin to nobody.
func NewEmailSuffixPolicy(suffixes ...string) *EmailSuffixPolicy {
	p := &EmailSuffixPolicy{}
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			p.suffixes = append(p.suffixes, s)
		}
	}
	return p
}

func (p *EmailSuffixPolicy) ShouldBeAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, s := range p.suffixes {
		if strings.HasSuffix(email, s) {
			return true
		}
	}
	return false
}
