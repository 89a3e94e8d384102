package textsafety

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Span is a half-open byte range [Start, End) inside the scanned text.
type Span struct {
	Start int
	End   int
}

// LexicalPattern is a named, stateless recognizer. All patterns are compiled
// once at package init and are safe for concurrent use.
type LexicalPattern struct {
	Name   string
	re     *regexp.Regexp
	accept func(text string, loc []int) bool
}

func newPattern(name string, expr string, accept func(string, []int) bool) *LexicalPattern {
	return &LexicalPattern{
		Name:   name,
		re:     regexp.MustCompile(expr),
		accept: accept,
	}
}

// FindAll returns every non-overlapping span matched by the pattern.
func (p *LexicalPattern) FindAll(text string) []Span {
	locs := p.re.FindAllStringIndex(text, -1)
	spans := make([]Span, 0, len(locs))
	for _, loc := range locs {
		if p.accept != nil && !p.accept(text, loc) {
			continue
		}
		spans = append(spans, Span{Start: loc[0], End: loc[1]})
	}
	return spans
}

// Find returns the leftmost accepted span.
func (p *LexicalPattern) Find(text string) (Span, bool) {
	if p.accept == nil {
		loc := p.re.FindStringIndex(text)
		if loc == nil {
			return Span{}, false
		}
		return Span{Start: loc[0], End: loc[1]}, true
	}

	spans := p.FindAll(text)
	if len(spans) == 0 {
		return Span{}, false
	}
	return spans[0], true
}

func (p *LexicalPattern) Match(text string) bool {
	_, ok := p.Find(text)
	return ok
}

// separator is the character class allowed between the letters of a keyword
// ("微 信", "w_x", "V·X", "加，我").
const separator = `[\s\-_·.,，。:：|/\\~` + "`" + `!@#$%^&*()\[\]{}<>“”"'＋+＝=]*`

// spaced joins the runes of word with the separator class so that any run of
// separators between them still matches.
func spaced(word string) string {
	var b strings.Builder
	for i, r := range []rune(word) {
		if i > 0 {
			b.WriteString(separator)
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return b.String()
}

func alternation(flags string, words ...string) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, spaced(w))
	}
	return flags + "(?:" + strings.Join(parts, "|") + ")"
}

// Keyword spellings include homophones (薇/威/维) and latin abbreviations.
var contactKeywords = []string{"微信", "薇信", "威信", "维信", "v信", "wx", "vx", "wechat", "weixin"}

var callToActionPhrases = []string{"加我", "加v", "私信", "联系", "来聊", "找我"}

var (
	URLPattern = newPattern("url", `(?i)(?:https?://|www\.)\S+`, nil)

	// PhonePattern scans maximal digit runs so a mobile number embedded in a
	// longer run of digits, of any script, never matches.
	PhonePattern = newPattern("phone", `[0-9]+`, func(text string, loc []int) bool {
		return mobileNumber.MatchString(text[loc[0]:loc[1]]) && !digitAdjacent(text, loc)
	})

	ContactKeywordPattern = newPattern("contact_keyword", alternation("(?i)", contactKeywords...), nil)

	CallToActionPattern = newPattern("call_to_action", alternation("(?i)", callToActionPhrases...), nil)

	// BareIdentifierPattern over-approximates handles; it also matches most
	// latin words and is never sufficient on its own.
	BareIdentifierPattern = newPattern("bare_identifier", `[a-zA-Z][a-zA-Z0-9_-]{3,19}`, nil)

	BareDigitRunPattern = newPattern("bare_digits", `[1-9][0-9]{4,11}`, nil)

	// AbbreviationPattern matches "vx"/"wx" only as a standalone token.
	AbbreviationPattern = newPattern("abbreviation", `(?i)vx|wx`, standaloneToken)
)

var mobileNumber = regexp.MustCompile(`^1[3-9][0-9]{9}$`)

func digitAdjacent(text string, loc []int) bool {
	if loc[0] > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:loc[0]]); unicode.IsDigit(r) {
			return true
		}
	}
	if loc[1] < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[loc[1]:]); unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// standaloneToken reports whether the match has a word boundary on both
// sides. CJK characters count as word characters.
func standaloneToken(text string, loc []int) bool {
	if loc[0] > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:loc[0]])
		if isWordRune(r) {
			return false
		}
	}
	if loc[1] < len(text) {
		r, _ := utf8.DecodeRuneInString(text[loc[1]:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// scanView folds full-width latin letters, digits and punctuation to their
// narrow forms so "ｗｘ１２３４５" is scanned like "wx12345".
func scanView(text string) string {
	return width.Fold.String(text)
}

// runeWindow returns at most n runes of text starting at byte offset start.
func runeWindow(text string, start int, n int) string {
	rest := text[start:]
	count := 0
	for i := range rest {
		if count == n {
			return rest[:i]
		}
		count++
	}
	return rest
}
