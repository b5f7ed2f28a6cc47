package main

import "strings"

// defaultColorClasses is the substring table used when the config does not
// override it. Category precedence is fixed (green, red, amber) regardless
// of the order classes appear on the cell.
var defaultColorClasses = map[ColorBand][]string{
	ColorGreen: {"green"},
	ColorRed:   {"red"},
	ColorAmber: {"orange", "amber", "yellow"},
}

// ColorClassifier maps a cell's CSS classes to a severity band by
// case-insensitive substring match. The class-name drift of the source page
// is a config change, not a code change: the substring table is injected.
type ColorClassifier struct {
	classes map[ColorBand][]string
}

func NewColorClassifier(overrides map[string][]string) *ColorClassifier {
	classes := make(map[ColorBand][]string, len(defaultColorClasses))
	for band, subs := range defaultColorClasses {
		classes[band] = subs
	}
	for name, subs := range overrides {
		if len(subs) == 0 {
			continue
		}
		switch band := ColorBand(strings.ToLower(name)); band {
		case ColorGreen, ColorAmber, ColorRed:
			lowered := make([]string, len(subs))
			for i, s := range subs {
				lowered[i] = strings.ToLower(s)
			}
			classes[band] = lowered
		}
	}
	return &ColorClassifier{classes: classes}
}

// Classify returns the band for a set of CSS classes. Total function: any
// input yields a band, ColorNone when nothing matches.
func (c *ColorClassifier) Classify(cssClasses []string) ColorBand {
	for _, band := range []ColorBand{ColorGreen, ColorRed, ColorAmber} {
		for _, class := range cssClasses {
			lower := strings.ToLower(class)
			for _, sub := range c.classes[band] {
				if strings.Contains(lower, sub) {
					return band
				}
			}
		}
	}
	return ColorNone
}
