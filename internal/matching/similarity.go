package matching

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"backend/internal/config"
	"backend/internal/models"
)

// Similarity is the result of comparing one promise against one action record.
type Similarity struct {
	Score         float64  `json:"score"` // 0-1
	SharedTokens  []string `json:"shared_tokens"`
	CategoryMatch bool     `json:"category_match"`
}

// Matcher computes lexical similarity between promise text and action
// descriptions. It is stateless after construction and safe for concurrent
// use.
type Matcher struct {
	stopWords     map[string]struct{}
	synonyms      map[string]string // stem -> canonical group token
	minTokenLen   int
	stemLen       int
	categoryBonus float64
}

// deaccent folds "é" to "e", "ç" to "c" and so on. Promise text is mostly
// French, action descriptions come from official records with inconsistent
// accenting.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Built-in stop words, French first since that is what the upstream data
// speaks. Only words long enough to survive the minimum-token-length filter
// matter here.
var baseStopWords = []string{
	"avec", "dans", "pour", "sans", "sous", "chez", "vers", "afin",
	"cette", "cettes", "leurs", "elles", "nous", "vous", "tous", "tout",
	"toute", "toutes", "autre", "autres", "comme", "aussi", "bien", "tres",
	"plus", "moins", "ainsi", "alors", "donc", "mais", "sont", "etre",
	"avoir", "sera", "seront", "etait", "etaient", "fait", "faire", "faut",
	"notamment", "dont", "cela", "celui", "celle", "celles", "entre",
	"avant", "apres", "depuis", "pendant", "contre", "notre", "votre",
	"lors", "selon", "encore", "toujours", "jamais", "peut", "doit",
	"devra", "doivent",
	// English, for the odd record that comes back untranslated.
	"the", "and", "for", "with", "that", "this", "from", "will", "would",
	"shall", "been", "have", "has", "are", "was", "were", "not", "but",
	"they", "their", "them", "our", "your", "about", "into", "over",
}

// synonymGroups folds known domain synonyms into one canonical token before
// the set comparison. Promises use everyday vocabulary ("SMIC") while action
// records use the administrative register ("salaire minimum"); without this
// table those pairs share nothing lexically. Grouped by theme for
// maintainability only; the fold itself is global.
var synonymGroups = map[models.ThemeCategory][][]string{
	models.ThemeEconomic: {
		{"smic", "salaire", "remuneration", "paie"},
		{"impot", "taxe", "fiscalite", "fiscal"},
		{"chomage", "emploi"},
		{"retraite", "pension"},
		{"pouvoir", "achat"},
	},
	models.ThemeEnvironmental: {
		{"climat", "climatique", "rechauffement"},
		{"pollution", "polluant", "emission"},
		{"energie", "energetique"},
	},
	models.ThemeHealthcare: {
		{"hopital", "hospitalier"},
		{"medecin", "medical", "soignant"},
	},
	models.ThemeSecurity: {
		{"police", "policier", "gendarmerie"},
		{"delinquance", "criminalite"},
	},
	models.ThemeEducation: {
		{"ecole", "scolaire", "etablissement"},
		{"enseignant", "professeur"},
	},
	models.ThemeImmigration: {
		{"immigration", "immigre", "etranger"},
		{"asile", "refugie"},
	},
	models.ThemeJustice: {
		{"tribunal", "judiciaire", "magistrat"},
		{"prison", "penitentiaire", "detention"},
	},
}

// NewMatcher builds a matcher from the scoring configuration.
func NewMatcher(cfg config.ScoringConfig) *Matcher {
	m := &Matcher{
		stopWords:     make(map[string]struct{}, len(baseStopWords)+len(cfg.ExtraStopWords)),
		synonyms:      make(map[string]string),
		minTokenLen:   cfg.MinTokenLength,
		stemLen:       cfg.StemLength,
		categoryBonus: cfg.CategoryBonus,
	}
	for _, w := range baseStopWords {
		m.stopWords[w] = struct{}{}
	}
	for _, w := range cfg.ExtraStopWords {
		m.stopWords[normalize(w)] = struct{}{}
	}
	for _, groups := range synonymGroups {
		for _, group := range groups {
			canonical := group[0]
			for _, member := range group {
				m.synonyms[m.stem(normalize(member))] = canonical
			}
		}
	}
	return m
}

// normalize lowercases, strips accents and replaces punctuation with spaces.
func normalize(text string) string {
	folded, _, err := transform.String(deaccent, strings.ToLower(text))
	if err != nil {
		folded = strings.ToLower(text)
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// Tokens normalizes text and returns the significant tokens: stop words
// removed, short tokens dropped.
func (m *Matcher) Tokens(text string) []string {
	fields := strings.Fields(normalize(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := m.stopWords[f]; stop {
			continue
		}
		if len([]rune(f)) < m.minTokenLen {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// stem truncates a token to the configured prefix length so inflected forms
// ("augmenter", "augmentation") compare equal.
func (m *Matcher) stem(token string) string {
	r := []rune(token)
	if len(r) <= m.stemLen {
		return token
	}
	return string(r[:m.stemLen])
}

// canonical maps a token to its comparison key: synonym group if known,
// otherwise its stem.
func (m *Matcher) canonical(token string) string {
	s := m.stem(token)
	if group, ok := m.synonyms[s]; ok {
		return group
	}
	return s
}

// Compare scores a promise against an action record. The score is the Jaccard
// similarity of the canonicalized token sets, plus a fixed bonus when both
// carry the same non-"other" theme, clamped to [0,1]. Shared tokens are
// reported in original form for explainability; when the two sides matched
// through different surface forms both are shown ("smic~salaire").
func (m *Matcher) Compare(promiseText string, promiseCat models.ThemeCategory, actionText string, actionCat models.ThemeCategory) Similarity {
	promiseKeys := m.keyed(promiseText)
	actionKeys := m.keyed(actionText)

	categoryMatch := promiseCat == actionCat && promiseCat != models.ThemeOther && promiseCat != ""

	if len(promiseKeys) == 0 || len(actionKeys) == 0 {
		return Similarity{CategoryMatch: categoryMatch}
	}

	shared := make([]string, 0)
	union := len(actionKeys)
	for key, pTok := range promiseKeys {
		aTok, ok := actionKeys[key]
		if !ok {
			union++
			continue
		}
		if pTok == aTok {
			shared = append(shared, pTok)
		} else {
			shared = append(shared, pTok+"~"+aTok)
		}
	}
	sort.Strings(shared)

	score := float64(len(shared)) / float64(union)
	if categoryMatch {
		score += m.categoryBonus
	}
	if score > 1 {
		score = 1
	}

	return Similarity{Score: score, SharedTokens: shared, CategoryMatch: categoryMatch}
}

// keyed returns comparison key -> first original token carrying it.
func (m *Matcher) keyed(text string) map[string]string {
	keys := make(map[string]string)
	for _, tok := range m.Tokens(text) {
		key := m.canonical(tok)
		if _, seen := keys[key]; !seen {
			keys[key] = tok
		}
	}
	return keys
}
