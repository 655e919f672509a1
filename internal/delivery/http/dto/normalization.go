package dto

import (
	"skillgap/internal/usecase"

	"github.com/google/uuid"
)

type NormalizeOptionsRequest struct {
	ConfidenceThreshold *float64 `json:"confidence_threshold"`
	MaxMatches          *int     `json:"max_matches"`
	IncludeHierarchy    *bool    `json:"include_hierarchy"`
}

// NormalizeRequest keeps raw_skills loosely typed: entries that are not
// strings are normalized as empty input instead of failing the whole batch.
type NormalizeRequest struct {
	RawSkills []any                    `json:"raw_skills"`
	Options   *NormalizeOptionsRequest `json:"options"`
}

// Strings flattens RawSkills, mapping every non-string entry to "".
func (r NormalizeRequest) Strings() []string {
	out := make([]string, len(r.RawSkills))
	for i, v := range r.RawSkills {
		if s, ok := v.(string); ok {
			out[i] = s
		}
	}
	return out
}

func (o *NormalizeOptionsRequest) ToUsecase() usecase.NormalizeOptions {
	var opts usecase.NormalizeOptions
	if o == nil {
		return opts
	}
	opts.ConfidenceThreshold = o.ConfidenceThreshold
	if o.MaxMatches != nil {
		opts.MaxMatches = *o.MaxMatches
	}
	opts.IncludeHierarchy = o.IncludeHierarchy
	return opts
}

type CandidateMatchResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	SimilarityScore float64   `json:"similarity_score"`
	Category        *string   `json:"category"`
	Subcategory     *string   `json:"subcategory"`
	Group           *string   `json:"group"`
}

type NormalizationResponse struct {
	RawSkill          string                   `json:"raw_skill"`
	TaxonomySkillID   *uuid.UUID               `json:"taxonomy_skill_id"`
	TaxonomySkillName *string                  `json:"taxonomy_skill_name"`
	Confidence        float64                  `json:"confidence"`
	Matches           []CandidateMatchResponse `json:"matches"`
	Outcome           string                   `json:"outcome"`
	Error             string                   `json:"error,omitempty"`
}

func NewNormalizationResponse(r usecase.NormalizationResult) NormalizationResponse {
	matches := make([]CandidateMatchResponse, 0, len(r.Matches))
	for _, m := range r.Matches {
		matches = append(matches, CandidateMatchResponse{
			ID:              m.ID,
			Name:            m.Name,
			SimilarityScore: m.SimilarityScore,
			Category:        m.Category,
			Subcategory:     m.Subcategory,
			Group:           m.Group,
		})
	}
	res := NormalizationResponse{
		RawSkill:          r.RawSkill,
		TaxonomySkillID:   r.TaxonomySkillID,
		TaxonomySkillName: r.TaxonomySkillName,
		Confidence:        r.Confidence,
		Matches:           matches,
		Outcome:           string(r.Outcome),
	}
	if r.Err != nil {
		res.Error = "taxonomy lookup failed"
	}
	return res
}

func NewNormalizationResponses(results []usecase.NormalizationResult) []NormalizationResponse {
	res := make([]NormalizationResponse, 0, len(results))
	for _, r := range results {
		res = append(res, NewNormalizationResponse(r))
	}
	return res
}

type NormalizeSummary struct {
	Total     int `json:"total"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Degraded  int `json:"degraded"`
}

type NormalizeResponse struct {
	Results []NormalizationResponse `json:"results"`
	Summary NormalizeSummary        `json:"summary"`
}

func NewNormalizeResponse(results []usecase.NormalizationResult) NormalizeResponse {
	sum := NormalizeSummary{Total: len(results)}
	for _, r := range results {
		switch r.Outcome {
		case usecase.OutcomeMatched:
			sum.Matched++
		case usecase.OutcomeDegraded:
			sum.Degraded++
		default:
			sum.Unmatched++
		}
	}
	return NormalizeResponse{Results: NewNormalizationResponses(results), Summary: sum}
}

type ClusterRequest struct {
	RawSkills []string `json:"raw_skills"`
	Threshold *float64 `json:"threshold"`
}

type ClusterResponse struct {
	Clusters [][]string `json:"clusters"`
}
