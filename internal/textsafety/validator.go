// Package textsafety decides whether user-supplied titles and comments are
// safe to publish on the public map. Validation is pure: it keeps no state
// between calls, never mutates its input, and may run concurrently.
package textsafety

// ReasonCode is the machine-readable cause of a rejection.
type ReasonCode string

const (
	ReasonNone                  ReasonCode = ""
	ReasonEmpty                 ReasonCode = "EMPTY"
	ReasonTooShort              ReasonCode = "TOO_SHORT"
	ReasonTooLong               ReasonCode = "TOO_LONG"
	ReasonContactOrAdNotAllowed ReasonCode = "CONTACT_OR_AD_NOT_ALLOWED"
	ReasonViolentThreat         ReasonCode = "VIOLENT_THREAT"
)

// Policy is supplied per call. Bounds are inclusive rune counts.
type Policy struct {
	MinLen       int  `json:"min_len" yaml:"min_len"`
	MaxLen       int  `json:"max_len" yaml:"max_len"`
	CheckContact bool `json:"check_contact" yaml:"check_contact"`
	CheckThreat  bool `json:"check_threat" yaml:"check_threat"`
}

var (
	TitlePolicy   = Policy{MinLen: 1, MaxLen: 30, CheckContact: true, CheckThreat: true}
	CommentPolicy = Policy{MinLen: 1, MaxLen: 300, CheckContact: true, CheckThreat: true}
)

// Verdict is the single outcome of a validation. CleanedText is always the
// normalized input, accepted or not.
type Verdict struct {
	OK          bool       `json:"ok"`
	CleanedText string     `json:"cleaned_text"`
	Reason      ReasonCode `json:"reason,omitempty"`
	Rule        string     `json:"rule,omitempty"`
}

type Validator struct {
	contact Detector
	threat  Detector
}

func NewValidator(contact Detector, threat Detector) *Validator {
	return &Validator{
		contact: contact,
		threat:  threat,
	}
}

var defaultValidator = NewValidator(NewContactAdDetector(), NewThreatDetector())

// Validate runs the checks in a fixed order: length, contact, threat. The
// first failing check decides the verdict and later checks are skipped. A nil
// text is reported as EMPTY.
func (v *Validator) Validate(text *string, policy Policy) Verdict {
	if text == nil {
		return Verdict{OK: false, CleanedText: "", Reason: ReasonEmpty}
	}

	cleaned := Normalize(*text)

	if reason := NewLengthChecker(policy.MinLen, policy.MaxLen).Check(cleaned); reason != ReasonNone {
		return Verdict{OK: false, CleanedText: cleaned, Reason: reason}
	}

	if policy.CheckContact {
		if rule, hit := v.contact.Detect(cleaned); hit {
			return Verdict{OK: false, CleanedText: cleaned, Reason: ReasonContactOrAdNotAllowed, Rule: rule}
		}
	}

	if policy.CheckThreat {
		if rule, hit := v.threat.Detect(cleaned); hit {
			return Verdict{OK: false, CleanedText: cleaned, Reason: ReasonViolentThreat, Rule: rule}
		}
	}

	return Verdict{OK: true, CleanedText: cleaned}
}

// Validate uses the shared default validator.
func Validate(text *string, policy Policy) Verdict {
	return defaultValidator.Validate(text, policy)
}

func ValidateString(text string, policy Policy) Verdict {
	return defaultValidator.Validate(&text, policy)
}
