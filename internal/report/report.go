// Package report derives the display projections of a patch analysis.
//
// Every projection is a pure function of one *models.AnalysisResult and
// substitutes a fixed placeholder for anything the service left out, so a
// partially populated result always renders.
package report

import (
	"strings"

	"github.com/rahul4469/toplane-guide/internal/models"
)

// Placeholders and labels shown in place of missing data.
const (
	NotAvailable        = "N/A"
	SummaryPending      = "Summary report is being generated..."
	NoChampions         = NotAvailable
	NoImpactData        = "No impact analysis data yet"
	RelevanceMainstream = "Mainstream"
	RelevanceNiche      = "Niche"
)

// Direction glyphs for a champion change.
const (
	GlyphBuff    = "⬆️"
	GlyphNerf    = "⬇️"
	GlyphNeutral = "🔄"
)

// Tiers is the fixed, ordered set of tier labels. All of them are always
// displayed.
var Tiers = []string{"S", "A", "B", "C", "D"}

// Summary returns the executive summary, or SummaryPending.
func Summary(result *models.AnalysisResult) string {
	if result == nil || result.SummaryReport == nil || result.SummaryReport.ExecutiveSummary == "" {
		return SummaryPending
	}
	return result.SummaryReport.ExecutiveSummary
}

// PlaystyleTrends returns the meta trends attached to the summary, if any.
func PlaystyleTrends(result *models.AnalysisResult) []string {
	if result == nil || result.SummaryReport == nil || result.SummaryReport.MetaEcosystem == nil {
		return nil
	}
	return result.SummaryReport.MetaEcosystem.PlaystyleTrends
}

// TierRow is one bucket of the tier list.
type TierRow struct {
	Tier      string
	Champions []models.TierEntry
}

// Empty reports whether the row renders the NoChampions placeholder.
func (r TierRow) Empty() bool {
	return len(r.Champions) == 0
}

// TierList returns exactly one row per label in Tiers, in order. Missing
// tiers become empty rows.
func TierList(result *models.AnalysisResult) []TierRow {
	var tierList map[string][]models.TierEntry
	if result != nil && result.SummaryReport != nil {
		tierList = result.SummaryReport.TierList
	}

	rows := make([]TierRow, len(Tiers))
	for i, tier := range Tiers {
		champions := tierList[tier]
		if champions == nil {
			champions = []models.TierEntry{}
		}
		rows[i] = TierRow{Tier: tier, Champions: champions}
	}
	return rows
}

// ChampionChange is one displayed champion change.
type ChampionChange struct {
	Champion  string
	Glyph     string
	Relevance string
}

// ChampionChanges is the champion-changes view. Total counts every entry of
// top_lane_changes, not only the champion ones listed in Changes.
type ChampionChanges struct {
	Total   int
	Changes []ChampionChange
}

// ChampionChangeList filters top_lane_changes down to champion records.
func ChampionChangeList(result *models.AnalysisResult) ChampionChanges {
	if result == nil {
		return ChampionChanges{Changes: []ChampionChange{}}
	}

	view := ChampionChanges{
		Total:   len(result.TopLaneChanges),
		Changes: []ChampionChange{},
	}
	for _, change := range result.TopLaneChanges {
		if change.Type != models.ChangeKindChampion {
			continue
		}
		view.Changes = append(view.Changes, ChampionChange{
			Champion:  change.Champion,
			Glyph:     DirectionGlyph(change.ChangeType),
			Relevance: RelevanceLabel(change.Relevance),
		})
	}
	return view
}

// DirectionGlyph maps a change_type to its glyph. Only "buff" and "nerf" have
// their own glyph; everything else, including "", is neutral.
func DirectionGlyph(changeType string) string {
	switch changeType {
	case "buff":
		return GlyphBuff
	case "nerf":
		return GlyphNerf
	default:
		return GlyphNeutral
	}
}

// RelevanceLabel maps a relevance to its label. Anything but "primary" is niche.
func RelevanceLabel(relevance string) string {
	if relevance == "primary" {
		return RelevanceMainstream
	}
	return RelevanceNiche
}

// OtherChange is an item or system change.
type OtherChange struct {
	Name   string
	Change string
}

// ItemChanges lists the item records of top_lane_changes.
func ItemChanges(result *models.AnalysisResult) []OtherChange {
	return otherChanges(result, models.ChangeKindItem, func(c models.Change) string { return c.Item })
}

// SystemChanges lists the system records of top_lane_changes.
func SystemChanges(result *models.AnalysisResult) []OtherChange {
	return otherChanges(result, models.ChangeKindSystem, func(c models.Change) string { return c.Category })
}

func otherChanges(result *models.AnalysisResult, kind string, name func(models.Change) string) []OtherChange {
	out := []OtherChange{}
	if result == nil {
		return out
	}
	for _, change := range result.TopLaneChanges {
		if change.Type != kind {
			continue
		}
		out = append(out, OtherChange{
			Name:   orNA(name(change)),
			Change: orNA(change.Change),
		})
	}
	return out
}

// ImpactCard is the fully resolved view of one champion analysis. Every
// string field is either the service value or NotAvailable.
type ImpactCard struct {
	Champion string
	Glyph    string

	Laning    string
	Teamfight string
	Build     string

	TierPrediction string
	TierChange     string
	Counters       string
	SynergyItems   string

	StrengthScore   string
	WinRateTrend    string
	WorthPracticing string
	Reasoning       string
}

// ImpactAnalysis is the impact-analysis view. When Empty is true only the
// NoImpactData placeholder is rendered.
type ImpactAnalysis struct {
	Empty bool
	Cards []ImpactCard
}

// Impact projects the first impact report. Later reports are ignored.
func Impact(result *models.AnalysisResult) ImpactAnalysis {
	first := result.FirstImpactReport()
	if first == nil || len(first.ChampionAnalyses) == 0 {
		return ImpactAnalysis{Empty: true, Cards: []ImpactCard{}}
	}

	cards := make([]ImpactCard, len(first.ChampionAnalyses))
	for i, analysis := range first.ChampionAnalyses {
		cards[i] = impactCard(analysis)
	}
	return ImpactAnalysis{Cards: cards}
}

func impactCard(a models.ChampionAnalysis) ImpactCard {
	card := ImpactCard{
		Champion: a.Champion,
		Glyph:    DirectionGlyph(a.ChangeType),
	}

	var gameplay models.GameplayChanges
	if a.GameplayChanges != nil {
		gameplay = *a.GameplayChanges
	}
	card.Laning = orNA(gameplay.LaningPhase)
	card.Teamfight = orNA(gameplay.TeamfightRole)
	card.Build = orNA(gameplay.BuildAdjustment)

	var meta models.MetaImpact
	if a.MetaImpact != nil {
		meta = *a.MetaImpact
	}
	card.TierPrediction = orNA(meta.TierPrediction)
	card.TierChange = orNA(meta.TierChange)
	card.Counters = orNA(strings.Join(meta.CounterChanges, ", "))
	card.SynergyItems = orNA(strings.Join(meta.SynergyItems, ", "))

	var overall models.OverallAssessment
	if a.OverallAssessment != nil {
		overall = *a.OverallAssessment
	}
	card.StrengthScore = NotAvailable
	if overall.StrengthScore != nil && *overall.StrengthScore != 0 {
		card.StrengthScore = overall.StrengthScore.String()
	}
	card.WinRateTrend = orNA(overall.WinRateTrend)
	card.WorthPracticing = "No"
	if overall.WorthPracticing != nil && *overall.WorthPracticing {
		card.WorthPracticing = "Yes"
	}
	card.Reasoning = orNA(overall.Reasoning)

	return card
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
