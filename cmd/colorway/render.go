package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MJE43/colorway-poker/internal/games"
	"github.com/MJE43/colorway-poker/internal/rules"
	"github.com/MJE43/colorway-poker/internal/wheel"
)

var (
	clrSubtle = lipgloss.Color("#8b949e")
	clrGreen  = lipgloss.Color("#3fb950")
	clrRed    = lipgloss.Color("#f85149")
	clrTitle  = lipgloss.Color("#58a6ff")

	titleStyle = lipgloss.NewStyle().Foreground(clrTitle).Bold(true)
	subtle     = lipgloss.NewStyle().Foreground(clrSubtle)
	okStyle    = lipgloss.NewStyle().Foreground(clrGreen).Bold(true)
	badStyle   = lipgloss.NewStyle().Foreground(clrRed).Bold(true)
)

// textOn picks black or white text for legibility on a hex background.
func textOn(hex string) lipgloss.Color {
	var r, g, b int
	if _, err := fmt.Sscanf(strings.TrimPrefix(hex, "#"), "%02x%02x%02x", &r, &g, &b); err != nil {
		return lipgloss.Color("#ffffff")
	}
	if (299*r+587*g+114*b)/1000 > 140 {
		return lipgloss.Color("#000000")
	}
	return lipgloss.Color("#ffffff")
}

func swatch(h wheel.Hue, position int, marked bool) string {
	border := lipgloss.RoundedBorder()
	borderColor := clrSubtle
	if marked {
		border = lipgloss.DoubleBorder()
		borderColor = clrGreen
	}
	face := lipgloss.NewStyle().
		Background(lipgloss.Color(h.Hex())).
		Foreground(textOn(h.Hex())).
		Width(12).
		Height(3).
		Align(lipgloss.Center, lipgloss.Center).
		Render(fmt.Sprintf("%d\n%s", position+1, h.Name()))
	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(borderColor).
		Render(face)
}

// renderDeal draws the goal header and one swatch per card. Cards whose
// hue is in highlight get a double border.
func renderDeal(deal games.Deal, highlight []wheel.Hue) string {
	marked := make(map[wheel.Hue]bool, len(highlight))
	for _, h := range highlight {
		marked[h] = true
	}

	cells := make([]string, len(deal.Cards))
	for i, c := range deal.Cards {
		cells[i] = swatch(c.Hue, i, marked[c.Hue])
		// Mark each highlighted hue once even when it is dealt twice.
		delete(marked, c.Hue)
	}

	header := titleStyle.Render(deal.Goal.Label) + "  " +
		subtle.Render(fmt.Sprintf("%s · %d pts · %d solution(s)", deal.Goal.Description, deal.Goal.BasePoints, deal.Solutions))
	return lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
}

func renderVerdict(v rules.ValidationResult) string {
	if v.Valid {
		return okStyle.Render("VALID") + " " + v.Message
	}
	return badStyle.Render("INVALID") + " " + v.Message
}
