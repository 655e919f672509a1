package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"skillgap/internal/domain/similarity"
	"skillgap/internal/domain/taxonomy"
	"skillgap/internal/metrics"
	"skillgap/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultConfidenceThreshold = 0.7
	DefaultMaxMatches          = 5
	DefaultBatchSize           = 5

	NormalizeCachePrefix  = "normalize:"
	NormalizeCachePattern = NormalizeCachePrefix + "*"

	// A misspelled input rarely is a substring of the intended item, so when
	// exact and substring lookups find nothing the leading part of the input
	// is searched instead: half of it, at least minFallbackPrefix runes.
	minFallbackInput  = 4
	minFallbackPrefix = 3
)

type Outcome string

const (
	OutcomeMatched    Outcome = "matched"
	OutcomeUnmatched  Outcome = "unmatched"
	OutcomeEmptyInput Outcome = "empty_input"
	OutcomeDegraded   Outcome = "degraded"
)

// NormalizeOptions tunes a normalization run. Zero values fall back to the
// normalizer defaults. ConfidenceThreshold and IncludeHierarchy are pointers so
// an explicit 0 or false is kept.
type NormalizeOptions struct {
	ConfidenceThreshold *float64
	MaxMatches          int
	IncludeHierarchy    *bool
	BatchSize           int
}

func (o NormalizeOptions) withDefaults(base NormalizeOptions) NormalizeOptions {
	if o.ConfidenceThreshold == nil {
		o.ConfidenceThreshold = base.ConfidenceThreshold
	}
	if o.ConfidenceThreshold == nil {
		v := DefaultConfidenceThreshold
		o.ConfidenceThreshold = &v
	}
	if o.MaxMatches <= 0 {
		o.MaxMatches = base.MaxMatches
	}
	if o.MaxMatches <= 0 {
		o.MaxMatches = DefaultMaxMatches
	}
	if o.BatchSize <= 0 {
		o.BatchSize = base.BatchSize
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.IncludeHierarchy == nil {
		o.IncludeHierarchy = base.IncludeHierarchy
	}
	if o.IncludeHierarchy == nil {
		v := true
		o.IncludeHierarchy = &v
	}
	return o
}

type CandidateMatch struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	SimilarityScore float64   `json:"similarity_score"`
	Category        *string   `json:"category"`
	Subcategory     *string   `json:"subcategory"`
	Group           *string   `json:"group"`
}

// NormalizationResult maps one raw skill onto the taxonomy. TaxonomySkillID is
// set only when the best match clears the confidence threshold; Matches is
// sorted by descending similarity either way.
type NormalizationResult struct {
	RawSkill          string           `json:"raw_skill"`
	TaxonomySkillID   *uuid.UUID       `json:"taxonomy_skill_id"`
	TaxonomySkillName *string          `json:"taxonomy_skill_name"`
	Confidence        float64          `json:"confidence"`
	Matches           []CandidateMatch `json:"matches"`
	Outcome           Outcome          `json:"outcome"`

	// Err is set on degraded results and holds a *NormalizationError.
	Err error `json:"-"`
}

func (r NormalizationResult) Accepted() bool {
	return r.TaxonomySkillID != nil
}

// NormalizationError reports which taxonomy lookup failed for a raw skill.
type NormalizationError struct {
	RawSkill string
	Stage    string
	Err      error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %q: %s lookup: %v", e.RawSkill, e.Stage, e.Err)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// NormalizationCache stores finished results. Implementations treat an
// unreachable backend as a miss.
type NormalizationCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type NormalizerUsecase interface {
	NormalizeSkill(ctx context.Context, rawSkill string, opts NormalizeOptions) NormalizationResult
	NormalizeSkills(ctx context.Context, rawSkills []string, opts NormalizeOptions) []NormalizationResult
	ClusterSkills(rawSkills []string, threshold float64) [][]string
}

type Normalizer struct {
	repo     repository.TaxonomyRepository
	resolver HierarchyResolver
	cache    NormalizationCache
	defaults NormalizeOptions
	metrics  *metrics.Metrics
	logger   logrus.FieldLogger
}

func NewNormalizer(repo repository.TaxonomyRepository, cache NormalizationCache, defaults NormalizeOptions, m *metrics.Metrics, logger logrus.FieldLogger) *Normalizer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "normalizer")
	return &Normalizer{
		repo:     repo,
		resolver: NewHierarchyResolver(repo, m, logger),
		cache:    cache,
		defaults: defaults.withDefaults(NormalizeOptions{}),
		metrics:  m,
		logger:   logger,
	}
}

// CleanRawSkill applies NFKC and collapses whitespace runs to single spaces.
func CleanRawSkill(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

func (n *Normalizer) NormalizeSkill(ctx context.Context, rawSkill string, opts NormalizeOptions) NormalizationResult {
	opts = opts.withDefaults(n.defaults)
	res := n.normalize(ctx, rawSkill, opts)
	n.metrics.ObserveNormalization(string(res.Outcome))
	return res
}

// NormalizeSkills keeps input order. Items of one batch run concurrently and
// the next batch starts only once the previous one finished, so at most
// BatchSize taxonomy lookups are in flight.
func (n *Normalizer) NormalizeSkills(ctx context.Context, rawSkills []string, opts NormalizeOptions) []NormalizationResult {
	opts = opts.withDefaults(n.defaults)
	results := make([]NormalizationResult, len(rawSkills))

	for start := 0; start < len(rawSkills); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(rawSkills))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = n.NormalizeSkill(gctx, rawSkills[i], opts)
				return nil
			})
		}
		_ = g.Wait()
	}

	return results
}

// ClusterSkills groups near-duplicate raw skills. Blank entries are dropped.
func (n *Normalizer) ClusterSkills(rawSkills []string, threshold float64) [][]string {
	if threshold <= 0 {
		threshold = similarity.DefaultGroupThreshold
	}
	cleaned := make([]string, 0, len(rawSkills))
	for _, s := range rawSkills {
		if s = CleanRawSkill(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return similarity.GroupSimilarStrings(cleaned, threshold)
}

func (n *Normalizer) normalize(ctx context.Context, rawSkill string, opts NormalizeOptions) NormalizationResult {
	cleaned := CleanRawSkill(rawSkill)
	if cleaned == "" {
		return NormalizationResult{
			RawSkill: rawSkill,
			Matches:  []CandidateMatch{},
			Outcome:  OutcomeEmptyInput,
		}
	}

	key := normalizeCacheKey(cleaned, opts)
	if res, ok := n.cached(ctx, key); ok {
		res.RawSkill = rawSkill
		return res
	}

	candidates, err := n.candidates(ctx, cleaned)
	if err != nil {
		nerr := &NormalizationError{RawSkill: rawSkill, Stage: StageCandidates, Err: err}
		n.metrics.ObserveLookupFailure(StageCandidates)
		n.logger.WithError(err).WithFields(logrus.Fields{
			"raw_skill": rawSkill,
			"stage":     StageCandidates,
		}).Warn("normalization degraded")
		return NormalizationResult{
			RawSkill: rawSkill,
			Matches:  []CandidateMatch{},
			Outcome:  OutcomeDegraded,
			Err:      nerr,
		}
	}

	scored := make([]CandidateMatch, 0, len(candidates))
	for _, it := range candidates {
		scored = append(scored, CandidateMatch{
			ID:              it.ID,
			Name:            it.Name,
			SimilarityScore: similarity.Similarity(cleaned, it.Name),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SimilarityScore > scored[j].SimilarityScore
	})
	if len(scored) > opts.MaxMatches {
		scored = scored[:opts.MaxMatches]
	}

	// Results with a failed hierarchy lookup are served but not cached, the
	// store may answer on the next call.
	complete := true
	if *opts.IncludeHierarchy {
		byID := make(map[uuid.UUID]taxonomy.Item, len(candidates))
		for _, it := range candidates {
			byID[it.ID] = it
		}
		for i := range scored {
			h, ok := n.resolver.Resolve(ctx, byID[scored[i].ID])
			complete = complete && ok
			scored[i].Category, scored[i].Subcategory, scored[i].Group = h.Category, h.Subcategory, h.Group
		}
	}

	res := NormalizationResult{
		RawSkill: rawSkill,
		Matches:  scored,
		Outcome:  OutcomeUnmatched,
	}
	if len(scored) > 0 {
		top := scored[0]
		res.Confidence = top.SimilarityScore
		if top.SimilarityScore >= *opts.ConfidenceThreshold {
			id, name := top.ID, top.Name
			res.TaxonomySkillID = &id
			res.TaxonomySkillName = &name
			res.Outcome = OutcomeMatched
		}
	}

	if complete {
		n.store(ctx, key, res)
	}
	return res
}

// candidates returns exact-name matches followed by substring matches, each
// item at most once. With no hit at all it retries with fallbackFragment.
func (n *Normalizer) candidates(ctx context.Context, cleaned string) ([]taxonomy.Item, error) {
	out, err := n.lookupCandidates(ctx, cleaned)
	if err != nil || len(out) > 0 {
		return out, err
	}
	fragment, ok := fallbackFragment(cleaned)
	if !ok {
		return out, nil
	}
	return n.repo.FindItemsByNameContaining(ctx, fragment)
}

func fallbackFragment(cleaned string) (string, bool) {
	r := []rune(cleaned)
	if len(r) < minFallbackInput {
		return "", false
	}
	return string(r[:max((len(r)+1)/2, minFallbackPrefix)]), true
}

func (n *Normalizer) lookupCandidates(ctx context.Context, cleaned string) ([]taxonomy.Item, error) {
	exact, err := n.repo.FindItemsByExactName(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	partial, err := n.repo.FindItemsByNameContaining(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(exact)+len(partial))
	out := make([]taxonomy.Item, 0, len(exact)+len(partial))
	for _, list := range [][]taxonomy.Item{exact, partial} {
		for _, it := range list {
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
			out = append(out, it)
		}
	}
	return out, nil
}

func (n *Normalizer) cached(ctx context.Context, key string) (NormalizationResult, bool) {
	if n.cache == nil {
		return NormalizationResult{}, false
	}
	var res NormalizationResult
	ok, err := n.cache.GetJSON(ctx, key, &res)
	if err != nil {
		n.logger.WithError(err).WithField("key", key).Debug("normalize cache read failed")
		return NormalizationResult{}, false
	}
	if !ok {
		return NormalizationResult{}, false
	}
	if res.Matches == nil {
		res.Matches = []CandidateMatch{}
	}
	n.metrics.ObserveCacheHit()
	return res, true
}

func (n *Normalizer) store(ctx context.Context, key string, res NormalizationResult) {
	if n.cache == nil {
		return
	}
	if err := n.cache.SetJSON(ctx, key, res, 0); err != nil {
		n.logger.WithError(err).WithField("key", key).Debug("normalize cache write failed")
	}
}

type normalizeCacheKeyInput struct {
	Skill            string  `json:"skill"`
	Threshold        float64 `json:"threshold"`
	MaxMatches       int     `json:"max_matches"`
	IncludeHierarchy bool    `json:"include_hierarchy"`
}

func normalizeCacheKey(cleaned string, opts NormalizeOptions) string {
	in := normalizeCacheKeyInput{
		Skill:            strings.ToLower(cleaned),
		Threshold:        *opts.ConfidenceThreshold,
		MaxMatches:       opts.MaxMatches,
		IncludeHierarchy: opts.IncludeHierarchy != nil && *opts.IncludeHierarchy,
	}
	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return NormalizeCachePrefix + hex.EncodeToString(sum[:])
}
