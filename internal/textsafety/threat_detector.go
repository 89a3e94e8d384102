package textsafety

import (
	"fmt"
	"regexp"
	"strings"
)

// maxSlotGap bounds the number of characters between consecutive threat slots.
const maxSlotGap = 12

var (
	intentPhrases  = []string{"我要", "我会", "我准备", "我打算", "去", "来", "带人", "叫人", "今晚", "明天", "等我", "给你", "必须", "应该", "一起"}
	violenceVerbs  = []string{"杀", "弄死", "砍", "捅", "打死", "烧", "炸", "放火", "下毒", "投毒"}
	targetPhrases  = []string{"你", "他", "她", "TA", "某人", "人", "店", "店家", "老板", "物业", "邻居", "小区", "学校", "公司"}
	threatSequence = regexp.MustCompile(fmt.Sprintf(`(?i)(?:%s).{0,%d}(?:%s).{0,%d}(?:%s)`,
		literalAlternation(intentPhrases), maxSlotGap,
		literalAlternation(violenceVerbs), maxSlotGap,
		literalAlternation(targetPhrases),
	))
)

func literalAlternation(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return strings.Join(quoted, "|")
}

// ThreatDetector flags explicit first-person violent intent aimed at a
// target: intent phrase, then a violence verb, then a target, each gap at
// most maxSlotGap characters. A violence word on its own ("投毒", "毒死") never
// matches, so reports about poisonings stay expressible.
type ThreatDetector struct{}

func NewThreatDetector() *ThreatDetector {
	return &ThreatDetector{}
}

func (d *ThreatDetector) Detect(text string) (string, bool) {
	if threatSequence.MatchString(scanView(text)) {
		return RuleThreatWindow, true
	}
	return "", false
}
