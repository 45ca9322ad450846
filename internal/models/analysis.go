package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Change record discriminators used in top_lane_changes.
const (
	ChangeKindChampion = "champion"
	ChangeKindItem     = "item"
	ChangeKindSystem   = "system"
)

// AnalysisResult is the patch analysis document returned by the analysis
// service. Nothing below the top level is guaranteed to be present.
type AnalysisResult struct {
	Version        string          `json:"version"`
	TopLaneChanges []Change        `json:"top_lane_changes"`
	ImpactAnalyses []ImpactReport  `json:"impact_analyses"`
	SummaryReport  *SummaryReport  `json:"summary_report"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

// Change is one entry of top_lane_changes. Which fields are set depends on Type.
type Change struct {
	Type       string          `json:"type"`
	Champion   string          `json:"champion,omitempty"`
	ChangeType string          `json:"change_type,omitempty"` // buff, nerf, adjust
	Relevance  string          `json:"relevance,omitempty"`   // primary, secondary
	Details    json.RawMessage `json:"details,omitempty"`

	// item and system changes
	Item     string `json:"item,omitempty"`
	Category string `json:"category,omitempty"`
	Change   string `json:"change,omitempty"`
}

// ImpactReport is one element of impact_analyses.
type ImpactReport struct {
	ChampionAnalyses []ChampionAnalysis `json:"champion_analyses"`
}

type ChampionAnalysis struct {
	Champion          string             `json:"champion"`
	ChangeType        string             `json:"change_type,omitempty"`
	GameplayChanges   *GameplayChanges   `json:"gameplay_changes,omitempty"`
	MetaImpact        *MetaImpact        `json:"meta_impact,omitempty"`
	OverallAssessment *OverallAssessment `json:"overall_assessment,omitempty"`
}

type GameplayChanges struct {
	LaningPhase     string `json:"laning_phase,omitempty"`
	TeamfightRole   string `json:"teamfight_role,omitempty"`
	BuildAdjustment string `json:"build_adjustment,omitempty"`
}

type MetaImpact struct {
	TierPrediction string   `json:"tier_prediction,omitempty"`
	TierChange     string   `json:"tier_change,omitempty"`
	CounterChanges []string `json:"counter_changes,omitempty"`
	SynergyItems   []string `json:"synergy_items,omitempty"`
}

type OverallAssessment struct {
	StrengthScore   *Score `json:"strength_score,omitempty"`
	WinRateTrend    string `json:"win_rate_trend,omitempty"`
	WorthPracticing *bool  `json:"worth_practicing,omitempty"`
	Reasoning       string `json:"reasoning,omitempty"`
}

// SummaryReport holds the aggregated tier list and executive summary.
type SummaryReport struct {
	ExecutiveSummary string                 `json:"executive_summary,omitempty"`
	TierList         map[string][]TierEntry `json:"tier_list,omitempty"`
	MetaEcosystem    *MetaEcosystem         `json:"meta_ecosystem,omitempty"`
}

type TierEntry struct {
	Champion string `json:"champion"`
	Reason   string `json:"reason"`
}

type MetaEcosystem struct {
	PlaystyleTrends []string `json:"playstyle_trends,omitempty"`
}

// Score is a strength score that the service emits either as a JSON number
// or as a numeric string. Anything else decodes to zero.
type Score float64

func (s *Score) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return nil
		}
		raw = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*s = 0
		return nil
	}
	*s = Score(v)
	return nil
}

// String formats the score without a trailing ".0" for whole numbers.
func (s Score) String() string {
	return strconv.FormatFloat(float64(s), 'f', -1, 64)
}

// FirstImpactReport returns the only impact report that is ever displayed.
func (r *AnalysisResult) FirstImpactReport() *ImpactReport {
	if r == nil || len(r.ImpactAnalyses) == 0 {
		return nil
	}
	return &r.ImpactAnalyses[0]
}

// DecodeAnalysisResult decodes an analysis document verbatim.
func DecodeAnalysisResult(data []byte) (*AnalysisResult, error) {
	var result AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
