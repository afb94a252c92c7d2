package tracker

import "github.com/nao1215/privacygrade/internal/model"

// defaultDomains holds the curated tracker lists per category.
// Some domains legitimately appear in more than one list; the category
// priority order decides which one wins.
var defaultDomains = map[model.Category][]string{
	model.CategoryAnalytics: {
		"google-analytics.com",
		"googletagmanager.com",
		"googlesyndication.com",
		"adobe.com",
		"omniture.com",
		"scorecardresearch.com",
		"quantserve.com",
		"chartbeat.com",
		"newrelic.com",
		"hotjar.com",
		"fullstory.com",
		"mixpanel.com",
		"segment.com",
		"amplitude.com",
		"heap.io",
	},
	model.CategoryAdvertising: {
		"doubleclick.net",
		"googlesyndication.com",
		"googleadservices.com",
		"amazon-adsystem.com",
		"adsystem.amazon.com",
		"adsystem.amazon.co.uk",
		"facebook.com",
		"bing.com",
		"yahoo.com",
		"outbrain.com",
		"taboola.com",
		"criteo.com",
		"pubmatic.com",
		"rubiconproject.com",
		"openx.com",
	},
	model.CategorySocial: {
		"facebook.net",
		"facebook.com",
		"twitter.com",
		"linkedin.com",
		"pinterest.com",
		"instagram.com",
		"youtube.com",
		"tiktok.com",
		"snapchat.com",
		"reddit.com",
		"tumblr.com",
	},
	model.CategoryFingerprinting: {
		"fingerprintjs.com",
		"maxmind.com",
		"device-api.com",
		"trustpilot.com",
		"iovation.com",
		"threatmetrix.com",
		"white-ops.com",
		"perimeterx.com",
	},
	model.CategoryHeatmaps: {
		"hotjar.com",
		"crazyegg.com",
		"mouseflow.com",
		"luckyorange.com",
		"inspectlet.com",
		"clicktale.com",
		"sessioncam.com",
	},
}

// heuristicPatterns are keyword expressions that suggest a tracking endpoint.
// Short keywords are anchored on a leading word boundary so that hosts such
// as "static.example.com" or "shadow.example.com" are not flagged. "ads"
// stays open at the end for ad servers such as "adserver" and "adsystem",
// and "advert" covers "advertisement".
var heuristicPatterns = []string{
	`analytic`,
	`tracking`,
	`tracker`,
	`metrics?`,
	`\bstats?\b`,
	`pixel`,
	`beacon`,
	`collect`,
	`\bevents?\b`,
	`\bads?\b`,
	`\bads`,
	`advert`,
	`doubleclick`,
	`facebook`,
	`google.*analytics`,
	`\bgtag\b`,
	`\bgtm\b`,
}

// trackingParamPrefixes and trackingParams identify click and campaign
// identifiers carried in query strings.
var (
	trackingParamPrefixes = []string{"utm_"}
	trackingParams        = []string{"fbclid", "gclid", "msclkid", "_ga", "mc_eid"}
)
