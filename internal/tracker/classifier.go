package tracker

import (
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/nao1215/privacygrade/internal/model"
)

// Confidence values reported for each matching tier.
const (
	confidenceExact     = 1.0
	confidenceContains  = 0.8
	confidenceHeuristic = 0.6
	confidenceParam     = 0.4
)

// categoryList is one curated list in match priority order.
type categoryList struct {
	category model.Category
	domains  []string
}

// keywordPattern is a compiled heuristic with its source text.
type keywordPattern struct {
	source string
	re     *regexp.Regexp
}

// Classifier maps request targets to tracker categories.
type Classifier struct {
	lists    []categoryList
	keywords []keywordPattern
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithDomains adds domains to a category list. Unknown categories are
// filed under the heuristic list, which is checked after the curated ones.
func WithDomains(category string, domains ...string) Option {
	return func(c *Classifier) {
		target := model.ParseCategory(category)
		for i := range c.lists {
			if c.lists[i].category == target {
				c.lists[i].domains = appendDomains(c.lists[i].domains, domains)
				return
			}
		}
		c.lists = append(c.lists, categoryList{
			category: target,
			domains:  appendDomains(nil, domains),
		})
	}
}

// appendDomains normalizes and deduplicates domains onto dst.
func appendDomains(dst, domains []string) []string {
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), ".")
		if d == "" || slices.Contains(dst, d) {
			continue
		}
		dst = append(dst, d)
	}
	return dst
}

// NewClassifier creates a Classifier with the built-in lists.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{}
	for _, category := range model.ListCategories() {
		c.lists = append(c.lists, categoryList{
			category: category,
			domains:  appendDomains(nil, defaultDomains[category]),
		})
	}
	for _, p := range heuristicPatterns {
		c.keywords = append(c.keywords, keywordPattern{
			source: p,
			re:     regexp.MustCompile(`(?i)` + p),
		})
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClassifyHost classifies a bare hostname. Only the list and keyword
// tiers can match since there is no URL to inspect.
func (c *Classifier) ClassifyHost(hostname string, isThirdParty bool) model.ClassificationResult {
	return c.Classify(&url.URL{Host: hostname}, isThirdParty)
}

// Classify classifies a request target. A nil URL or a first-party
// request is never a tracker.
func (c *Classifier) Classify(target *url.URL, isThirdParty bool) model.ClassificationResult {
	if target == nil {
		return model.ClassificationResult{}
	}
	hostname := strings.ToLower(target.Hostname())
	notTracker := model.ClassificationResult{Domain: hostname, Risk: model.RiskLow}
	if !isThirdParty || hostname == "" {
		return notTracker
	}

	if category, domain, ok := c.matchList(hostname, matchesExactOrSuffix); ok {
		return listResult(category, hostname, domain, confidenceExact)
	}
	if category, domain, ok := c.matchList(hostname, strings.Contains); ok {
		return listResult(category, hostname, domain, confidenceContains)
	}

	full := target.String()
	for _, kw := range c.keywords {
		if kw.re.MatchString(hostname) || kw.re.MatchString(full) {
			return model.ClassificationResult{
				IsTracker:  true,
				Category:   model.CategoryHeuristic,
				Domain:     hostname,
				Risk:       model.CategoryHeuristic.Risk(),
				Confidence: confidenceHeuristic,
				Pattern:    kw.source,
			}
		}
	}

	if param, ok := trackingParam(target); ok {
		return model.ClassificationResult{
			IsTracker:  true,
			Category:   model.CategoryTrackingParams,
			Domain:     hostname,
			Risk:       model.CategoryTrackingParams.Risk(),
			Confidence: confidenceParam,
			Pattern:    param,
		}
	}

	return notTracker
}

// matchList walks the lists in priority order and returns the first
// category with a domain accepted by match.
func (c *Classifier) matchList(hostname string, match func(hostname, domain string) bool) (model.Category, string, bool) {
	for _, list := range c.lists {
		for _, domain := range list.domains {
			if match(hostname, domain) {
				return list.category, domain, true
			}
		}
	}
	return model.CategoryNone, "", false
}

// matchesExactOrSuffix reports whether hostname is domain or a subdomain of it.
func matchesExactOrSuffix(hostname, domain string) bool {
	return hostname == domain || strings.HasSuffix(hostname, "."+domain)
}

func listResult(category model.Category, hostname, domain string, confidence float64) model.ClassificationResult {
	return model.ClassificationResult{
		IsTracker:  true,
		Category:   category,
		Domain:     hostname,
		Risk:       category.Risk(),
		Confidence: confidence,
		Pattern:    domain,
	}
}

// trackingParam returns the first known tracking parameter in the query.
func trackingParam(target *url.URL) (string, bool) {
	if target.RawQuery == "" {
		return "", false
	}
	query, err := url.ParseQuery(target.RawQuery)
	if err != nil && len(query) == 0 {
		return "", false
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		lower := strings.ToLower(key)
		if slices.Contains(trackingParams, lower) {
			return lower, true
		}
		for _, prefix := range trackingParamPrefixes {
			if strings.HasPrefix(lower, prefix) {
				return lower, true
			}
		}
	}
	return "", false
}
