// Package ambiguity decides whether a query needs clarification before it is
// worth running a full retrieval answer. Two signals feed the decision:
// admin-authored keyword rules and the document-type distribution of an
// already-retrieved result set.
package ambiguity

import (
	"context"
	"sort"
	"strings"
	"time"

	"hof-chatbot-be/internal/entity"
	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/pkg/rag/template"
	"hof-chatbot-be/pkg/vectorstore"

	gocache "github.com/patrickmn/go-cache"
)

// Reason tells the caller which signal (or combination) asked for
// clarification.
const (
	ReasonNone               = "none"
	ReasonKeywordMatch       = "keyword_match"
	ReasonResultDistribution = "result_distribution"
	ReasonBoth               = "both"
)

const (
	// DefaultScoreThreshold flags two document-type clusters as competing
	// when the second best top score is within 15% of the first.
	DefaultScoreThreshold = 0.15

	// MinResultsPerType is how many matches a type cluster needs before it
	// counts as a real competitor rather than a stray hit.
	MinResultsPerType = 2

	// RuleCacheTTL bounds how stale the active rule set may get.
	RuleCacheTTL = 5 * time.Minute

	ruleCacheKey = "ambiguity_rules_active"
)

// RuleSource supplies the active rule set, typically backed by the
// ambiguity_rules table.
type RuleSource interface {
	FindActive(ctx context.Context) ([]*entity.AmbiguityRule, error)
}

// Assessment is the outcome of one detection pass.
type Assessment struct {
	NeedsClarification bool
	Reason             string
	Rule               *entity.AmbiguityRule
	// CompetingTypes holds the two document types whose clusters scored
	// within threshold of each other, when the distribution signal fired.
	CompetingTypes []string
	Question       string
	Options        []entity.ClarificationOption
}

type Detector struct {
	rules  RuleSource
	cache  *gocache.Cache
	logger logger.ILogger
}

func NewDetector(rules RuleSource, log logger.ILogger) *Detector {
	return &Detector{
		rules:  rules,
		cache:  gocache.New(RuleCacheTTL, 2*RuleCacheTTL),
		logger: log,
	}
}

// Detect runs both signals against the query. matches may be nil when no
// retrieval has happened yet; the distribution signal is then skipped.
//
// The combination is conservative: a keyword rule alone asks for
// clarification only when no result set is available to check against; when
// results exist, the distribution must confirm the competition. An explicit
// "only this template" phrase in the query bypasses everything.
func (d *Detector) Detect(ctx context.Context, query string, matches []vectorstore.Match) Assessment {
	if _, ok := template.MatchTrigger(query); ok {
		return Assessment{Reason: ReasonNone}
	}

	rule := d.matchRule(ctx, query)

	threshold := DefaultScoreThreshold
	if rule != nil && rule.ScoreThreshold > 0 {
		threshold = rule.ScoreThreshold
	}
	competing := competingTypes(matches, threshold)

	switch {
	case rule != nil && len(matches) == 0:
		// No results to consult, err toward asking.
		return d.fromRule(rule, nil, ReasonKeywordMatch)
	case rule != nil && len(competing) == 2:
		return d.fromRule(rule, competing, ReasonBoth)
	case rule != nil:
		// Results exist and one type clearly wins; trust them.
		return Assessment{Reason: ReasonNone}
	case len(competing) == 2:
		return d.synthesize(competing)
	default:
		return Assessment{Reason: ReasonNone}
	}
}

func (d *Detector) fromRule(rule *entity.AmbiguityRule, competing []string, reason string) Assessment {
	a := Assessment{
		NeedsClarification: true,
		Reason:             reason,
		Rule:               rule,
		CompetingTypes:     competing,
		Question:           rule.ClarificationQuestion,
		Options:            rule.Options,
	}
	if len(a.Options) == 0 {
		a.Options = optionsForTemplates(rule.CompetingTemplates)
	}
	return a
}

// synthesize builds a clarification from the two competing document types
// when no admin rule covered the query.
func (d *Detector) synthesize(competing []string) Assessment {
	options := make([]entity.ClarificationOption, 0, len(competing))
	labels := make([]string, 0, len(competing))
	for _, docType := range competing {
		def, ok := template.ForDocType(docType)
		if !ok {
			def = template.Definition{ID: docType, Label: docType}
		}
		options = append(options, entity.ClarificationOption{
			Value:       def.ID,
			Label:       def.Label,
			Description: def.Description,
		})
		labels = append(labels, def.Label)
	}
	return Assessment{
		NeedsClarification: true,
		Reason:             ReasonResultDistribution,
		CompetingTypes:     competing,
		Question:           strings.Join(labels, "와(과) ") + " 중 어떤 내용을 찾으시나요?",
		Options:            options,
	}
}

func optionsForTemplates(templateIDs []string) []entity.ClarificationOption {
	options := make([]entity.ClarificationOption, 0, len(templateIDs))
	for _, id := range templateIDs {
		def, ok := template.ByID(id)
		if !ok {
			def = template.Definition{ID: id, Label: id}
		}
		options = append(options, entity.ClarificationOption{
			Value:       def.ID,
			Label:       def.Label,
			Description: def.Description,
		})
	}
	return options
}

// matchRule returns the highest-priority active rule with a keyword present
// in the query, or nil. Rules come back from the repository already sorted by
// priority.
func (d *Detector) matchRule(ctx context.Context, query string) *entity.AmbiguityRule {
	lower := strings.ToLower(query)
	for _, rule := range d.activeRules(ctx) {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return rule
			}
		}
	}
	return nil
}

func (d *Detector) activeRules(ctx context.Context) []*entity.AmbiguityRule {
	if cached, ok := d.cache.Get(ruleCacheKey); ok {
		return cached.([]*entity.AmbiguityRule)
	}

	rules, err := d.rules.FindActive(ctx)
	if err != nil {
		d.logger.Warn(logger.ModuleAmbiguity, "failed to load ambiguity rules, keyword signal disabled for this request", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	d.cache.Set(ruleCacheKey, rules, gocache.DefaultExpiration)
	return rules
}

// InvalidateRules drops the cached rule set so the next request reloads it.
func (d *Detector) InvalidateRules() {
	d.cache.Delete(ruleCacheKey)
}

// competingTypes groups matches by document type and returns the top two
// types when their best scores sit within threshold of each other and both
// clusters are populated. Returns nil otherwise.
func competingTypes(matches []vectorstore.Match, threshold float64) []string {
	type cluster struct {
		docType string
		top     float64
		count   int
	}

	byType := make(map[string]*cluster)
	for _, m := range matches {
		dt := m.Metadata.DocType
		if dt == "" {
			continue
		}
		c, ok := byType[dt]
		if !ok {
			c = &cluster{docType: dt}
			byType[dt] = c
		}
		c.count++
		if m.Score > c.top {
			c.top = m.Score
		}
	}
	if len(byType) < 2 {
		return nil
	}

	clusters := make([]*cluster, 0, len(byType))
	for _, c := range byType {
		clusters = append(clusters, c)
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].top != clusters[j].top {
			return clusters[i].top > clusters[j].top
		}
		return clusters[i].docType < clusters[j].docType
	})

	first, second := clusters[0], clusters[1]
	if first.count < MinResultsPerType || second.count < MinResultsPerType {
		return nil
	}
	if first.top <= 0 {
		return nil
	}
	if second.top/first.top >= 1-threshold {
		return []string{first.docType, second.docType}
	}
	return nil
}
