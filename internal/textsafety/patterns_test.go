package textsafety

import (
	"reflect"
	"testing"
)

func TestPhonePattern_FindAll(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Span
	}{
		{
			name: "embedded between letters",
			text: "a13812345678b",
			want: []Span{{Start: 1, End: 12}},
		},
		{
			name: "two numbers",
			text: "13812345678,15912345678",
			want: []Span{{Start: 0, End: 11}, {Start: 12, End: 23}},
		},
		{
			name: "longer digit run is not a phone",
			text: "138123456789",
			want: []Span{},
		},
		{
			name: "second digit out of range",
			text: "12812345678",
			want: []Span{},
		},
		{
			name: "arabic-indic digit before",
			text: "١13812345678",
			want: []Span{},
		},
		{
			name: "devanagari digit after",
			text: "13812345678५",
			want: []Span{},
		},
		{
			name: "ten digits",
			text: "1381234567",
			want: []Span{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PhonePattern.FindAll(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindAll(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestContactKeywordPattern(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"微信", true},
		{"微  信", true},
		{"薇信", true},
		{"威信", true},
		{"维信", true},
		{"V信", true},
		{"w_x", true},
		{"V·X", true},
		{"we chat", true},
		{"WeChat", true},
		{"wei-xin", true},
		{"wax", false},
		{"weather", false},
		{"信微", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ContactKeywordPattern.Match(tt.text); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestAbbreviationPattern(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"vx 123", true},
		{"加 WX", true},
		{"(wx)", true},
		{"wx", true},
		{"我vx", false},
		{"vxabc", false},
		{"a_wx", false},
		{"wx2", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := AbbreviationPattern.Match(tt.text); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestURLPattern(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"看 https://example.com/a", true},
		{"HTTP://EXAMPLE.COM", true},
		{"www.example.com", true},
		{"http:/example", false},
		{"example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := URLPattern.Match(tt.text); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestBareIdentifierPattern(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"abc_123", true},
		{"dog-mom", true},
		{"abc", false},
		{"1234abc", false},
		{"1234abcd", true},
		{"猫猫", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := BareIdentifierPattern.Match(tt.text); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestBareDigitRunPattern(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"12345", true},
		{"1234", false},
		{"01234", false},
		{"x012345", true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := BareDigitRunPattern.Match(tt.text); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestRuneWindow(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		start int
		n     int
		want  string
	}{
		{"middle", "一二三四五", 3, 2, "二三"},
		{"past end", "一二三", 3, 10, "二三"},
		{"at end", "abc", 3, 5, ""},
		{"zero", "abc", 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runeWindow(tt.text, tt.start, tt.n); got != tt.want {
				t.Errorf("runeWindow(%q, %d, %d) = %q, want %q", tt.text, tt.start, tt.n, got, tt.want)
			}
		})
	}
}

func TestScanView_FoldsFullWidth(t *testing.T) {
	if got := scanView("ｗｘ：１２３４５"); got != "wx:12345" {
		t.Errorf("scanView = %q, want %q", got, "wx:12345")
	}
}
