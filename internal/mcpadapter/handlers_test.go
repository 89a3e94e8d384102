package mcpadapter

import (
	"context"
	"strings"
	"testing"

	"github.com/povarna/pet-poison-map/internal/config"
	"github.com/povarna/pet-poison-map/internal/executor"
	"github.com/povarna/pet-poison-map/internal/textsafety"
	"github.com/rs/zerolog"
)

func newModerator() *executor.Executor {
	logger := zerolog.Nop()
	engine := textsafety.NewValidator(textsafety.NewContactAdDetector(), textsafety.NewThreatDetector())
	return executor.NewExecutor(engine, config.DefaultPoliciesConfig(), nil, &logger)
}

func strPtr(s string) *string {
	return &s
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		name         string
		input        ValidateTextInput
		expectOK     bool
		expectReason textsafety.ReasonCode
		expectPolicy string
	}{
		{
			name:         "clean comment",
			input:        ValidateTextInput{Text: strPtr("这里发现了毒饵，遛狗注意")},
			expectOK:     true,
			expectPolicy: "comment",
		},
		{
			name:         "title field uses title policy",
			input:        ValidateTextInput{Field: "title", Text: strPtr(strings.Repeat("长", 31))},
			expectReason: textsafety.ReasonTooLong,
			expectPolicy: "title",
		},
		{
			name:         "url rejected",
			input:        ValidateTextInput{Text: strPtr("详情见 https://example.com")},
			expectReason: textsafety.ReasonContactOrAdNotAllowed,
			expectPolicy: "comment",
		},
		{
			name:         "null text",
			input:        ValidateTextInput{RequestID: "r1"},
			expectReason: textsafety.ReasonEmpty,
			expectPolicy: "comment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, result, err := ValidateText(context.Background(), newModerator(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res != nil {
				t.Errorf("expected structured result only")
			}
			if result.Verdict.OK != tt.expectOK || result.Verdict.Reason != tt.expectReason {
				t.Errorf("unexpected verdict %+v", result.Verdict)
			}
			if result.Policy != tt.expectPolicy {
				t.Errorf("expected policy %s, got %s", tt.expectPolicy, result.Policy)
			}
		})
	}
}

func TestListPolicies(t *testing.T) {
	out := ListPolicies(config.DefaultPoliciesConfig())

	if len(out.Policies) < 2 {
		t.Fatalf("expected at least title and comment, got %+v", out.Policies)
	}
	found := map[string]textsafety.Policy{}
	for _, p := range out.Policies {
		found[p.Name] = p.Policy
	}
	if found["title"] != textsafety.TitlePolicy || found["comment"] != textsafety.CommentPolicy {
		t.Errorf("unexpected presets %+v", found)
	}
}

func TestNewServer(t *testing.T) {
	if NewServer(newModerator(), config.DefaultPoliciesConfig(), "test") == nil {
		t.Fatal("expected server")
	}
}
