// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package tls

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	gerrors "github.com/tochemey/tlsmgr/errors"
)

var (
	// ErrCipherSyntax is returned when a cipher policy cannot be parsed
	ErrCipherSyntax = errors.New("cipher policy syntax error")
	// ErrNoCipherMatch is returned when a cipher policy selects no suite
	ErrNoCipherMatch = errors.New("no cipher match")
)

// minimum symmetric strength per security level
var securityLevels = [...]int{0, 80, 112, 128, 192, 256}

// CipherList is the ordered selection produced by a cipher policy.
type CipherList struct {
	suites        []*Suite
	unknown       []string
	securityLevel int
}

// Suites returns the selected suites in preference order
func (l *CipherList) Suites() []*Suite {
	return slices.Clone(l.suites)
}

// IDs returns the selected suite identifiers in preference order
func (l *CipherList) IDs() []uint16 {
	ids := make([]uint16, len(l.suites))
	for i, suite := range l.suites {
		ids[i] = suite.ID
	}
	return ids
}

// Names returns the OpenSSL names of the selected suites
func (l *CipherList) Names() []string {
	names := make([]string, len(l.suites))
	for i, suite := range l.suites {
		names[i] = suite.openssl
	}
	return names
}

// Unknown returns the words of the policy that named neither an alias nor a suite.
// Like OpenSSL they select nothing and are not an error on their own.
func (l *CipherList) Unknown() []string {
	return slices.Clone(l.unknown)
}

// SecurityLevel returns the level set with @SECLEVEL, zero by default
func (l *CipherList) SecurityLevel() int {
	return l.securityLevel
}

// Len returns the number of selected suites
func (l *CipherList) Len() int {
	return len(l.suites)
}

// For returns the subset of the list usable with the given protocol.
func (l *CipherList) For(protocol Protocol) *CipherList {
	usable := make([]*Suite, 0, len(l.suites))
	for _, suite := range l.suites {
		if suite.UsableWith(protocol) {
			usable = append(usable, suite)
		}
	}
	return &CipherList{suites: usable, unknown: l.unknown, securityLevel: l.securityLevel}
}

// ParseCipherList applies an OpenSSL cipher policy to the table.
//
// The policy is a list of words separated by colons, commas or spaces.
// A word is an alias (HIGH, kECDHE, AESGCM, ...), a suite name in OpenSSL
// or IANA form, or several of them joined with '+' to select their
// intersection. Prefixes change what happens with the selection:
//
//	X    append the matching suites not yet selected
//	-X   remove the matching suites, later words may add them back
//	!X   remove the matching suites for good
//	+X   move the matching selected suites to the end
//
// @STRENGTH sorts the selection by strength and @SECLEVEL=n drops suites
// weaker than the level allows.
func ParseCipherList(table *CipherTable, policy string) (*CipherList, error) {
	if table == nil {
		return nil, gerrors.ErrEngineNotInitialized
	}

	words := strings.FieldsFunc(policy, func(r rune) bool {
		return r == ':' || r == ',' || r == ' ' || r == '\t'
	})
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: empty policy", ErrCipherSyntax)
	}

	s := &selector{table: table, killed: make(map[uint16]struct{})}
	for _, word := range words {
		if err := s.apply(word); err != nil {
			return nil, err
		}
	}

	minBits := securityLevels[s.level]
	selected := s.active[:0]
	for _, suite := range s.active {
		if suite.bits >= minBits {
			selected = append(selected, suite)
		}
	}

	return &CipherList{suites: selected, unknown: s.unknown, securityLevel: s.level}, nil
}

type selector struct {
	table   *CipherTable
	active  []*Suite
	killed  map[uint16]struct{}
	unknown []string
	level   int
}

func (s *selector) apply(word string) error {
	if command, ok := strings.CutPrefix(word, "@"); ok {
		return s.command(command)
	}

	var op byte
	switch word[0] {
	case '!', '-', '+':
		op = word[0]
		word = word[1:]
	}
	if word == "" {
		return fmt.Errorf("%w: dangling operator %q", ErrCipherSyntax, string(op))
	}

	match, err := s.predicate(word)
	if err != nil {
		return err
	}

	switch op {
	case '!':
		s.remove(match, true)
	case '-':
		s.remove(match, false)
	case '+':
		s.moveToEnd(match)
	default:
		s.add(match)
	}
	return nil
}

func (s *selector) command(command string) error {
	if command == "STRENGTH" {
		slices.SortStableFunc(s.active, func(a, b *Suite) int {
			return cmp.Compare(b.bits, a.bits)
		})
		return nil
	}

	if value, ok := strings.CutPrefix(command, "SECLEVEL="); ok {
		level, err := strconv.Atoi(value)
		if err != nil || level < 0 || level >= len(securityLevels) {
			return fmt.Errorf("%w: invalid security level %q", ErrCipherSyntax, value)
		}
		s.level = level
		return nil
	}

	return fmt.Errorf("%w: unknown command @%s", ErrCipherSyntax, command)
}

func (s *selector) predicate(expression string) (func(*Suite) bool, error) {
	terms := strings.Split(expression, "+")
	predicates := make([]func(*Suite) bool, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			return nil, fmt.Errorf("%w: empty term in %q", ErrCipherSyntax, expression)
		}
		if !validTerm(term) {
			return nil, fmt.Errorf("%w: illegal character in %q", ErrCipherSyntax, term)
		}

		if alias, ok := s.table.aliases[term]; ok {
			predicates = append(predicates, alias)
			continue
		}

		if suite, ok := s.table.Lookup(term); ok {
			id := suite.ID
			predicates = append(predicates, func(candidate *Suite) bool { return candidate.ID == id })
			continue
		}

		s.unknown = append(s.unknown, term)
		predicates = append(predicates, none)
	}

	return func(suite *Suite) bool {
		for _, predicate := range predicates {
			if !predicate(suite) {
				return false
			}
		}
		return true
	}, nil
}

func (s *selector) add(match func(*Suite) bool) {
	for _, suite := range s.table.suites {
		if !match(suite) || s.isKilled(suite) || slices.Contains(s.active, suite) {
			continue
		}
		s.active = append(s.active, suite)
	}
}

func (s *selector) remove(match func(*Suite) bool, kill bool) {
	for _, suite := range s.table.suites {
		if match(suite) && kill {
			s.killed[suite.ID] = struct{}{}
		}
	}
	s.active = slices.DeleteFunc(s.active, match)
}

func (s *selector) moveToEnd(match func(*Suite) bool) {
	kept := make([]*Suite, 0, len(s.active))
	moved := make([]*Suite, 0, len(s.active))
	for _, suite := range s.active {
		if match(suite) {
			moved = append(moved, suite)
			continue
		}
		kept = append(kept, suite)
	}
	s.active = append(kept, moved...)
}

func (s *selector) isKilled(suite *Suite) bool {
	_, ok := s.killed[suite.ID]
	return ok
}

func validTerm(term string) bool {
	for _, r := range term {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
