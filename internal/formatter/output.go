// Package formatter prints analysis results for the terminal client.
package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rahul4469/toplane-guide/internal/models"
	"github.com/rahul4469/toplane-guide/internal/report"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists the accepted --output values.
var Formats = []string{FormatHuman, FormatJSON, FormatYAML}

// ValidFormat reports whether format is one of Formats.
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// DisplayResults formats and writes result to w
func DisplayResults(w io.Writer, result *models.AnalysisResult, format string) error {
	switch format {
	case FormatJSON:
		return displayJSON(w, result)
	case FormatYAML:
		return displayYAML(w, result)
	case FormatHuman:
		fallthrough
	default:
		displayHuman(w, result)
	}
	return nil
}

func displayJSON(w io.Writer, result *models.AnalysisResult) error {
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// displayYAML goes through the JSON encoding so keys keep the service's
// snake_case names and raw metadata is emitted as a document.
func displayYAML(w io.Writer, result *models.AnalysisResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	output, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}

func displayHuman(w io.Writer, result *models.AnalysisResult) {
	// Colors
	bold := color.New(color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	magenta := color.New(color.FgMagenta, color.Bold)

	page := report.Build(result)
	rule := strings.Repeat("=", 70)

	fmt.Fprintln(w, rule)
	bold.Fprintf(w, "Top Lane Guide - patch %s\n", orUnknown(page.Version))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	// Summary
	cyan.Fprintln(w, "📝 SUMMARY:")
	fmt.Fprintln(w, indent(page.Summary, "   "))
	for _, trend := range page.PlaystyleTrends {
		fmt.Fprintf(w, "   • %s\n", trend)
	}
	fmt.Fprintln(w)

	// Tier list
	cyan.Fprintln(w, "🏆 TIER LIST:")
	for _, row := range page.TierList {
		tierColor(row.Tier).Fprintf(w, "   %s ", row.Tier)
		if row.Empty() {
			fmt.Fprintln(w, color.HiBlackString(report.NoChampions))
			continue
		}
		names := make([]string, len(row.Champions))
		for i, entry := range row.Champions {
			names[i] = fmt.Sprintf("%s (%s)", entry.Champion, entry.Reason)
		}
		fmt.Fprintln(w, strings.Join(names, ", "))
	}
	fmt.Fprintln(w)

	// Champion changes
	yellow.Fprintf(w, "🦸 CHAMPION CHANGES (Total: %d):\n", page.ChampionChanges.Total)
	for i, change := range page.ChampionChanges.Changes {
		fmt.Fprintf(w, "   %d. %s %s (%s)\n", i+1, change.Glyph, change.Champion, change.Relevance)
	}
	fmt.Fprintln(w)

	printOtherChanges(w, yellow, "⚔️  ITEM CHANGES", page.ItemChanges)
	printOtherChanges(w, yellow, "🎮 SYSTEM CHANGES", page.SystemChanges)

	// Impact analysis
	magenta.Fprintln(w, "📈 IMPACT ANALYSIS:")
	if page.Impact.Empty {
		fmt.Fprintf(w, "   %s\n\n", color.HiBlackString(report.NoImpactData))
	}
	for _, card := range page.Impact.Cards {
		bold.Fprintf(w, "   %s %s\n", card.Glyph, card.Champion)
		fmt.Fprintf(w, "      Laning phase:     %s\n", card.Laning)
		fmt.Fprintf(w, "      Teamfight role:   %s\n", card.Teamfight)
		fmt.Fprintf(w, "      Build adjustment: %s\n", card.Build)
		fmt.Fprintf(w, "      Tier prediction:  %s (%s)\n", card.TierPrediction, card.TierChange)
		fmt.Fprintf(w, "      Counters:         %s\n", card.Counters)
		fmt.Fprintf(w, "      Synergy items:    %s\n", card.SynergyItems)
		fmt.Fprintf(w, "      Strength:         %s\n", strengthLabel(card.StrengthScore))
		fmt.Fprintf(w, "      Win rate trend:   %s\n", card.WinRateTrend)
		fmt.Fprintf(w, "      Worth practicing: %s\n", card.WorthPracticing)
		fmt.Fprintf(w, "      Reasoning:        %s\n", card.Reasoning)
		fmt.Fprintln(w)
	}

	// Token usage
	if usage, ok := report.Usage(result); ok {
		green.Fprintln(w, "💰 TOKEN USAGE:")
		fmt.Fprintf(w, "   Prompt: %d  Completion: %d  Total: %d\n\n",
			usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
	}

	// Footer
	fmt.Fprintln(w, strings.Repeat("─", 70))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func printOtherChanges(w io.Writer, heading *color.Color, title string, changes []report.OtherChange) {
	if len(changes) == 0 {
		return
	}
	heading.Fprintf(w, "%s (%d):\n", title, len(changes))
	for i, change := range changes {
		fmt.Fprintf(w, "   %d. %s\n", i+1, change.Name)
		fmt.Fprintf(w, "      └─ %s\n", change.Change)
	}
	fmt.Fprintln(w)
}

func tierColor(tier string) *color.Color {
	switch tier {
	case "S":
		return color.New(color.FgRed, color.Bold)
	case "A":
		return color.New(color.FgHiRed, color.Bold)
	case "B":
		return color.New(color.FgYellow, color.Bold)
	case "C":
		return color.New(color.FgGreen, color.Bold)
	default:
		return color.New(color.FgBlue, color.Bold)
	}
}

func strengthLabel(score string) string {
	if score == report.NotAvailable {
		return score
	}
	return score + "/10"
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
