package tracker

import (
	"fmt"
	"strings"
)

// Palette is the fixed set of categories a task or subtask may use.
var Palette = []Category{
	{Label: "Ibadah", Color: "#22C55E"},
	{Label: "Work", Color: "#3B82F6"},
	{Label: "Study", Color: "#A855F7"},
	{Label: "Family", Color: "#F97316"},
	{Label: "Health", Color: "#EF4444"},
	{Label: "Personal", Color: "#EAB308"},
	{Label: "Other", Color: "#6B7280"},
}

// LookupCategory finds a palette entry by label, ignoring case.
func LookupCategory(label string) (Category, error) {
	label = strings.TrimSpace(label)
	for _, c := range Palette {
		if strings.EqualFold(c.Label, label) {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, label)
}

func validCategory(c *Category) error {
	if c == nil {
		return nil
	}
	for _, p := range Palette {
		if p == *c {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownCategory, c.Label)
}

// PaletteLabels lists the labels in palette order.
func PaletteLabels() []string {
	out := make([]string, len(Palette))
	for i, c := range Palette {
		out[i] = c.Label
	}
	return out
}
