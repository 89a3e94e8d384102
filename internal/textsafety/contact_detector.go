package textsafety

// Rule names reported in Verdict.Rule.
const (
	RuleURL                      = "url"
	RulePhone                    = "phone"
	RuleKeywordWindow            = "keyword_window"
	RuleCTACorroborated          = "cta_corroborated"
	RuleAbbreviationCorroborated = "abbreviation_corroborated"
	RuleThreatWindow             = "threat_window"
)

// keywordWindowRunes is how far past a contact keyword we look for a handle.
const keywordWindowRunes = 40

// Detector inspects normalized text and reports the rule that fired.
type Detector interface {
	Detect(text string) (rule string, hit bool)
}

// ContactAdDetector flags leaked contact details and advertising. A single
// weak signal (an identifier-shaped token, a digit run) is never enough: it
// has to sit next to a contact keyword or co-occur with a call to action.
type ContactAdDetector struct{}

func NewContactAdDetector() *ContactAdDetector {
	return &ContactAdDetector{}
}

func (d *ContactAdDetector) Detect(text string) (string, bool) {
	s := scanView(text)

	if URLPattern.Match(s) {
		return RuleURL, true
	}
	if PhonePattern.Match(s) {
		return RulePhone, true
	}

	keyword, hasKeyword := ContactKeywordPattern.Find(s)
	if hasKeyword {
		tail := runeWindow(s, keyword.End, keywordWindowRunes)
		if BareIdentifierPattern.Match(tail) || BareDigitRunPattern.Match(tail) {
			return RuleKeywordWindow, true
		}
	}

	hasIdentifier := BareIdentifierPattern.Match(s)

	if CallToActionPattern.Match(s) && (hasKeyword || hasIdentifier) {
		return RuleCTACorroborated, true
	}

	if hasIdentifier && AbbreviationPattern.Match(s) {
		return RuleAbbreviationCorroborated, true
	}

	return "", false
}
