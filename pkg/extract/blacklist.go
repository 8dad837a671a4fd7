package extract

import (
	"strings"

	"edgarkg/pkg/model"
)

// commonWords are generic business/technical terms that pattern-match
// like company names but never are, ported verbatim from
// competitor_extraction.py's COMMON_WORDS — the set exists entirely from
// false-positive experience against real 10-K text (e.g. "ARM" the
// architecture vs. ARM Holdings the company), so it is kept as a flat
// list rather than re-derived.
var commonWords = map[string]bool{
	"company": true, "companies": true, "corporation": true, "corporations": true,
	"business": true, "businesses": true, "industry": true, "industries": true,
	"market": true, "markets": true, "product": true, "products": true,
	"service": true, "services": true, "customer": true, "customers": true,
	"competitor": true, "competitors": true, "competition": true, "competitive": true,
	"the": true, "and": true, "other": true, "certain": true, "various": true,
	"many": true, "some": true, "all": true, "our": true, "their": true,
	"these": true, "those": true, "such": true, "including": true,
	"particularly": true, "especially": true, "primarily": true, "mainly": true,
	"software": true, "hardware": true, "platform": true, "platforms": true,
	"technology": true, "technologies": true, "solution": true, "solutions": true,
	"system": true, "systems": true, "application": true, "applications": true,
	"item": true, "risk": true, "factors": true, "overview": true, "table": true,
	"contents": true,
	"global": true, "rock": true, "live": true, "usa": true, "new": true,
	"big": true, "sun": true, "sky": true, "sea": true, "pro": true, "one": true,
	"two": true, "now": true, "core": true, "next": true, "fast": true,
	"best": true, "well": true, "high": true, "true": true, "real": true,
	"open": true, "free": true, "safe": true, "good": true, "hope": true,
	"care": true, "play": true, "life": true, "love": true, "star": true,
	"gold": true, "blue": true, "peak": true, "plus": true, "key": true,
	"way": true, "act": true, "fit": true, "hub": true, "win": true, "max": true,
	"air": true, "net": true, "icon": true,
	"west": true, "east": true, "north": true, "south": true, "central": true,
	"national": true, "international": true, "foreign": true, "domestic": true,
	"local": true, "regional": true, "federal": true, "state": true, "city": true,
	"united": true, "american": true, "first": true, "second": true, "third": true,
	"primary": true, "large": true, "small": true, "mid": true, "medium": true,
	"capital": true, "resources": true, "science": true, "synergy": true,
	"energy": true, "power": true, "dynamic": true, "strategic": true, "advanced": true,
	"adaptive": true, "fpga": true, "cpu": true, "gpu": true, "dpu": true,
	"soc": true, "asic": true, "arm": true, "semiconductor": true, "semiconductors": true,
	"microprocessor": true, "microprocessors": true, "embedded": true, "discrete": true,
	"integrated": true,
	"group": true, "holdings": true, "partners": true, "associates": true,
	"ventures": true, "enterprises": true, "management": true, "investment": true,
	"investments": true, "financial": true, "securities": true,
	"china": true, "taiwan": true, "europe": true, "asia": true, "latin": true,
	"america": true, "southeast": true, "pacific": true, "atlantic": true,
	"cloud": true, "dgx": true, "omniverse": true, "foundations": true,
	"gdpr": true, "manufacturing": true, "limited": true, "micro": true,
	"devices": true, "networks": true,
	"australian": true, "canadian": true, "british": true, "european": true,
	"asian": true, "african": true, "northern": true, "southern": true,
	"eastern": true, "western": true, "continental": true, "coastal": true,
	"mobile": true, "emerald": true, "diamond": true, "platinum": true,
	"silver": true, "bronze": true,
	"independent": true, "commercial": true, "industrial": true, "residential": true,
	"municipal": true, "retail": true, "wholesale": true,
	"states": true, "united states": true, "california": true, "texas": true,
	"canada": true, "goose": true, "health": true, "medical": true,
	"scientific": true, "information": true, "enterprise": true,
}

func isCommonWord(word string) bool {
	return commonWords[strings.ToLower(word)]
}

// CleanupFalsePositives re-applies the blacklist to already-written
// relationship edges, dropping any whose raw mention is a common word.
// This exists as a standalone post-pass (distinct from the filtering
// extractNamesFromText already does on fresh extraction) so edges
// written before a blacklist update, or loaded back from the graph for
// an audit, can be re-screened without re-running extraction — matching
// original_source/scripts/cleanup_false_positives.py, which runs
// against the graph's existing relationships rather than fresh text.
func CleanupFalsePositives(edges []model.RelationshipEdge) []model.RelationshipEdge {
	out := edges[:0:0]
	for _, e := range edges {
		if isCommonWord(e.RawMention) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// contextSensitiveRule names a raw mention that collides with a real
// ticker and the context phrases (lowercased) that confirm the mention
// is actually about that ticker's company. An empty ContextPhrases means
// the collision is never legitimate and the edge is always dropped.
type contextSensitiveRule struct {
	Ticker         string
	ContextPhrases []string
}

// contextSensitiveRules is the canonical false-positive blacklist named in
// spec §6: generic words that happen to equal a real ticker symbol, most
// of which (Joint, Cost, CRM, Regis) are never a genuine mention of that
// company in 10-K prose, plus two (Target, Nasdaq) that are only false
// positives in specific phrasings ("target business/company" when talking
// about an acquisition target, "listed on nasdaq" when talking about the
// exchange, not the company Nasdaq Inc.).
var contextSensitiveRules = map[string]contextSensitiveRule{
	"joint": {Ticker: "JYNT"},
	"cost":  {Ticker: "COST"},
	"crm":   {Ticker: "CRM"},
	"regis": {Ticker: "RGS"},
	"target": {
		Ticker:         "TGT",
		ContextPhrases: []string{"target business", "target company"},
	},
	"nasdaq": {
		Ticker:         "NDAQ",
		ContextPhrases: []string{"listed on nasdaq", "nasdaq stock", "nasdaq-listed", "nasdaq global", "nasdaq capital"},
	},
}

// CleanupContextSensitive drops edges where raw_mention collides with a
// ticker per contextSensitiveRules: unconditionally for the words with no
// ContextPhrases, or only when the edge's context matches one of the
// listed phrases for Target/Nasdaq. tickerByCIK resolves each edge's
// ToCIK to the ticker it was matched against, so a rule only fires when
// the resolved company is actually the colliding ticker (e.g. an edge
// correctly resolved to the real JYNT is filtered only when raw_mention
// is the bare word "joint", never when it's "Joint Corp" naming a
// different company).
func CleanupContextSensitive(edges []model.RelationshipEdge, tickerByCIK map[string]string) []model.RelationshipEdge {
	out := edges[:0:0]
	for _, e := range edges {
		rule, ok := contextSensitiveRules[strings.ToLower(e.RawMention)]
		if !ok || tickerByCIK[e.ToCIK] != rule.Ticker {
			out = append(out, e)
			continue
		}
		if len(rule.ContextPhrases) == 0 {
			continue // unconditional collision: Joint, Cost, CRM, Regis
		}
		if containsAny(strings.ToLower(e.Context), rule.ContextPhrases) {
			continue // confirmed false positive per context
		}
		out = append(out, e)
	}
	return out
}

func containsAny(haystack string, substrings []string) bool {
	for _, s := range substrings {
		if strings.Contains(haystack, s) {
			return true
		}
	}
	return false
}
