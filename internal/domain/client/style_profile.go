package client

import (
	"regexp"
	"strings"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

const (
	maxProfileSummary = 2000
	maxProfileNotes   = 5000
	maxProfileList    = 50
)

// StyleProfile captures a client's style preferences. There is at most one per client.
type StyleProfile struct {
	ClientID  uuid.UUID
	Summary   string
	Styles    []string
	Colors    []string
	Sizes     map[string]string
	Notes     string
	UpdatedAt time.Time
}

// EmptyStyleProfile returns the profile shown for clients that have none yet
func EmptyStyleProfile(clientID uuid.UUID) *StyleProfile {
	return &StyleProfile{
		ClientID: clientID,
		Styles:   []string{},
		Colors:   []string{},
		Sizes:    map[string]string{},
	}
}

// Update replaces the profile contents after validating them
func (p *StyleProfile) Update(summary string, styles, colors []string, sizes map[string]string, notes string) error {
	if len(summary) > maxProfileSummary {
		return shared.NewDomainError("INVALID_PROFILE", "Summary cannot exceed 2000 characters")
	}
	if len(notes) > maxProfileNotes {
		return shared.NewDomainError("INVALID_PROFILE", "Notes cannot exceed 5000 characters")
	}
	if len(styles) > maxProfileList || len(colors) > maxProfileList || len(sizes) > maxProfileList {
		return shared.NewDomainError("INVALID_PROFILE", "Too many profile entries")
	}

	cleanStyles := make([]string, 0, len(styles))
	for _, s := range styles {
		s = strings.TrimSpace(s)
		if s != "" {
			cleanStyles = append(cleanStyles, s)
		}
	}

	cleanColors := make([]string, 0, len(colors))
	for _, c := range colors {
		if !hexColorRegex.MatchString(c) {
			return shared.NewDomainError("INVALID_COLOR", "Colors must be hex values like #A1B2C3")
		}
		cleanColors = append(cleanColors, strings.ToUpper(c))
	}

	cleanSizes := make(map[string]string, len(sizes))
	for k, v := range sizes {
		k = strings.TrimSpace(k)
		if k == "" {
			return shared.NewDomainError("INVALID_PROFILE", "Size labels cannot be empty")
		}
		cleanSizes[k] = strings.TrimSpace(v)
	}

	p.Summary = strings.TrimSpace(summary)
	p.Styles = cleanStyles
	p.Colors = cleanColors
	p.Sizes = cleanSizes
	p.Notes = notes
	p.UpdatedAt = time.Now()
	return nil
}

// IsHexColor reports whether s is a #RRGGBB color
func IsHexColor(s string) bool {
	return hexColorRegex.MatchString(s)
}
