package forecast

import "github.com/lox/picnicweather/internal/models"

// Palette defines the colours used to render a day card.
type Palette struct {
	// Card is the card background
	Card string
	// CardBorder is the card outline
	CardBorder string
	// Text is the primary text colour on the card
	Text string
	// TextMuted is the secondary text colour on the card
	TextMuted string
	// Label is a short human description of the condition
	Label string
}

// DefaultPalette is used for unknown conditions.
var DefaultPalette = Palette{
	Card:       "#1a1a2e",
	CardBorder: "#2a2a4e",
	Text:       "#eeeeee",
	TextMuted:  "#888888",
	Label:      "Unknown",
}

var palettes = map[models.Condition]Palette{
	models.ConditionGreen: {
		Card:       "#22c55e",
		CardBorder: "#15803d",
		Text:       "#ffffff",
		TextMuted:  "#dcfce7",
		Label:      "Picnic perfect",
	},
	models.ConditionYellow: {
		Card:       "#eab308",
		CardBorder: "#a16207",
		Text:       "#ffffff",
		TextMuted:  "#fef9c3",
		Label:      "Could work",
	},
	models.ConditionRed: {
		Card:       "#ef4444",
		CardBorder: "#b91c1c",
		Text:       "#ffffff",
		TextMuted:  "#fee2e2",
		Label:      "Stay inside",
	},
}

// GetPalette returns the palette for a condition.
func GetPalette(c models.Condition) Palette {
	if p, ok := palettes[c]; ok {
		return p
	}
	return DefaultPalette
}
