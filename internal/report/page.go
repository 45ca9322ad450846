package report

import "github.com/rahul4469/toplane-guide/internal/models"

// Page bundles every projection of one result. The projections do not
// depend on each other.
type Page struct {
	Version         string
	Summary         string
	PlaystyleTrends []string
	TierList        []TierRow
	ChampionChanges ChampionChanges
	ItemChanges     []OtherChange
	SystemChanges   []OtherChange
	Impact          ImpactAnalysis
}

// Build projects result into a Page.
func Build(result *models.AnalysisResult) Page {
	page := Page{
		Summary:         Summary(result),
		PlaystyleTrends: PlaystyleTrends(result),
		TierList:        TierList(result),
		ChampionChanges: ChampionChangeList(result),
		ItemChanges:     ItemChanges(result),
		SystemChanges:   SystemChanges(result),
		Impact:          Impact(result),
	}
	if result != nil {
		page.Version = result.Version
	}
	return page
}
