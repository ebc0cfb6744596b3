// Package nra issues membership registration numbers (NRA).
//
// An NRA has the form "{seq}/UKM_IK/{marker}/{year}": a strictly increasing
// sequence number, the organization tag, a Roman-numeral batch marker that
// advances once per calendar year of issuance, and the four-digit year.
package nra

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/utdi/ukmik/be/internal/core/roman"
)

// OrgTag is the fixed organization segment of every NRA.
const OrgTag = "UKM_IK"

// Components is one NRA split into its segments. Marker and Year hold the
// raw segment text; either may be empty for legacy/malformed records.
type Components struct {
	Sequence int
	Marker   string
	Year     string
}

// Parse splits s into its NRA segments. It fails only when the first
// segment is not an integer; missing trailing segments are left empty.
func Parse(s string) (Components, error) {
	parts := strings.Split(s, "/")
	seq, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Components{}, fmt.Errorf("nra: %q has no numeric sequence segment", s)
	}
	c := Components{Sequence: seq}
	if len(parts) > 2 {
		c.Marker = strings.TrimSpace(parts[2])
	}
	if len(parts) > 3 {
		c.Year = strings.TrimSpace(parts[3])
	}
	return c, nil
}

// Allocate computes the next NRA given every previously issued one.
//
// The new sequence number is one above the maximum across all parseable
// entries. The batch marker is taken from the entry with that maximum
// sequence: reused when its year equals the issuance year, advanced one
// Roman step otherwise. Unparseable entries are skipped; a missing marker
// on the latest entry is read as "I" and a missing year never matches the
// issuance year, so the marker advances.
//
// Allocate is read-only over existing and has no side effects. Callers
// racing on the same store must serialize around it (see approval.Service).
func Allocate(existing []string, year int) (string, error) {
	maxSeq := 0
	var latest *Components
	for _, s := range existing {
		if strings.TrimSpace(s) == "" {
			continue
		}
		c, err := Parse(s)
		if err != nil {
			continue
		}
		if latest == nil || c.Sequence > maxSeq {
			maxSeq = c.Sequence
			cc := c
			latest = &cc
		}
	}

	marker := "I"
	if latest != nil {
		last := latest.Marker
		if last == "" {
			last = "I"
		}
		if latest.Year == strconv.Itoa(year) {
			marker = last
		} else {
			m, err := roman.ToRoman(roman.FromRoman(last) + 1)
			if err != nil {
				return "", fmt.Errorf("nra: advance batch marker %q: %w", last, err)
			}
			marker = m
		}
	}

	return fmt.Sprintf("%d/%s/%s/%d", maxSeq+1, OrgTag, marker, year), nil
}
