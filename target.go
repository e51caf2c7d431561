package freeboost

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jpalmerr/freeboost/internal/catalog"
	"github.com/jpalmerr/freeboost/internal/resolver"
)

var (
	// ErrUnknownPlatform is returned when the target platform is not in the catalog.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrMissingLink is returned when the target has no primary link.
	ErrMissingLink = errors.New("primary link is required")

	// ErrContentID is returned when the platform needs a content id and the
	// secondary link does not contain one.
	ErrContentID = errors.New("could not parse content id")
)

// Target is what to boost.
type Target struct {
	// Platform is the platform id, matched case-insensitively.
	Platform string

	// PrimaryLink is the profile, channel or page URL.
	PrimaryLink string

	// SecondaryLink is the video, post or tweet URL. Optional.
	SecondaryLink string
}

// resolvedTarget is a validated [Target] with its content id extracted.
type resolvedTarget struct {
	Target
	contentID string
}

// resolve validates t against cat and extracts the content id when the
// platform needs one. An empty secondary link is accepted; orders then go out
// without a content id.
func (t Target) resolve(cat *catalog.Catalog) (resolvedTarget, error) {
	t.Platform = strings.ToLower(strings.TrimSpace(t.Platform))
	t.PrimaryLink = strings.TrimSpace(t.PrimaryLink)
	t.SecondaryLink = strings.TrimSpace(t.SecondaryLink)

	if t.Platform == "" || !cat.Has(t.Platform) {
		return resolvedTarget{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, t.Platform)
	}
	if t.PrimaryLink == "" {
		return resolvedTarget{}, ErrMissingLink
	}

	rt := resolvedTarget{Target: t}
	if resolver.NeedsContentID(t.Platform) && t.SecondaryLink != "" {
		id, ok := resolver.ResolveID(t.Platform, t.SecondaryLink)
		if !ok {
			return resolvedTarget{}, fmt.Errorf("%w from %q", ErrContentID, t.SecondaryLink)
		}
		rt.contentID = id
	}
	return rt, nil
}
