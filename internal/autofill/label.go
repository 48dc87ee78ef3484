package autofill

import (
	"context"
	"strings"

	"github.com/ternarybob/pursuit/internal/interfaces"
)

// deriveLabel resolves the human question text for an element. First
// non-empty source wins:
//
//	<label for=id> (element frame, then top document)
//	parent <label> direct text
//	div.field > label sibling
//	ancestor <fieldset><legend>
//	aria-label, placeholder, name, id
func deriveLabel(ctx context.Context, page interfaces.Page, el *interfaces.ElementInfo) string {
	if el.ID != "" {
		if label, err := page.LabelForID(ctx, el.FrameID, el.ID); err == nil && strings.TrimSpace(label) != "" {
			return clean(label)
		}
		if el.FrameID != "" {
			if label, err := page.LabelForID(ctx, "", el.ID); err == nil && strings.TrimSpace(label) != "" {
				return clean(label)
			}
		}
	}

	if label, err := page.ParentLabelText(ctx, el.FrameID, el.Selector); err == nil && strings.TrimSpace(label) != "" {
		return clean(label)
	}

	if label, err := page.SiblingFieldLabel(ctx, el.FrameID, el.Selector); err == nil && strings.TrimSpace(label) != "" {
		return clean(label)
	}

	if label, err := page.AncestorLegend(ctx, el.FrameID, el.Selector); err == nil && strings.TrimSpace(label) != "" {
		return clean(label)
	}

	if el.AriaLabel != "" {
		return clean(el.AriaLabel)
	}
	if el.Placeholder != "" {
		return clean(el.Placeholder)
	}
	if el.Name != "" {
		return clean(el.Name)
	}
	return clean(el.ID)
}

// clean trims and collapses whitespace, and drops the trailing required
// marker many forms append to label text
func clean(label string) string {
	label = strings.Join(strings.Fields(label), " ")
	label = strings.TrimSuffix(label, "*")
	return strings.TrimSpace(label)
}
