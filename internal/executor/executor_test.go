package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/povarna/pet-poison-map/internal/events"
	"github.com/povarna/pet-poison-map/internal/executor/mocks"
	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/povarna/pet-poison-map/internal/textsafety"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func strPtr(s string) *string {
	return &s
}

func TestExecutor_Execute(t *testing.T) {
	tests := []struct {
		name          string
		req           models.ModerationRequest
		lookupName    string
		lookupFound   bool
		verdict       textsafety.Verdict
		expectPolicy  string
		expectEmit    bool
		expectOK      bool
		expectRequest string
	}{
		{
			name: "accepted comment - no event",
			req: models.ModerationRequest{
				RequestID: "req-001",
				Field:     models.FieldComment,
				Text:      strPtr("这里有人投毒，大家小心"),
			},
			lookupName:    "comment",
			lookupFound:   true,
			verdict:       textsafety.Verdict{OK: true, CleanedText: "这里有人投毒，大家小心"},
			expectPolicy:  "comment",
			expectEmit:    false,
			expectOK:      true,
			expectRequest: "req-001",
		},
		{
			name: "rejected title - event emitted",
			req: models.ModerationRequest{
				RequestID: "req-002",
				Field:     models.FieldTitle,
				Text:      strPtr("加微信 abc12345"),
			},
			lookupName:  "title",
			lookupFound: true,
			verdict: textsafety.Verdict{
				OK:          false,
				CleanedText: "加微信 abc12345",
				Reason:      textsafety.ReasonContactOrAdNotAllowed,
				Rule:        textsafety.RuleKeywordWindow,
			},
			expectPolicy:  "title",
			expectEmit:    true,
			expectOK:      false,
			expectRequest: "req-002",
		},
		{
			name: "explicit policy overrides field",
			req: models.ModerationRequest{
				RequestID: "req-003",
				Field:     models.FieldComment,
				Text:      strPtr("小心"),
				Policy:    "nickname",
			},
			lookupName:    "nickname",
			lookupFound:   true,
			verdict:       textsafety.Verdict{OK: true, CleanedText: "小心"},
			expectPolicy:  "nickname",
			expectOK:      true,
			expectRequest: "req-003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			engine := mocks.NewMockEngine(ctrl)
			policies := mocks.NewMockPolicySource(ctrl)
			emitter := mocks.NewMockEventEmitter(ctrl)

			policies.EXPECT().
				Lookup(tt.lookupName).
				Return(textsafety.CommentPolicy, tt.lookupFound)

			engine.EXPECT().
				Validate(tt.req.Text, textsafety.CommentPolicy).
				Return(tt.verdict)

			if tt.expectEmit {
				emitter.EXPECT().
					Emit(gomock.Any(), gomock.Any()).
					Do(func(ctx context.Context, event events.ModerationEvent) {
						if event.RequestID != tt.expectRequest {
							t.Errorf("expected event request %s, got %s", tt.expectRequest, event.RequestID)
						}
						if event.Decision != models.DecisionReject {
							t.Errorf("expected reject decision, got %s", event.Decision)
						}
					})
			}

			exec := NewExecutor(engine, policies, emitter, testLogger())
			result := exec.Execute(context.Background(), tt.req)

			if result.Verdict.OK != tt.expectOK {
				t.Errorf("expected ok=%v, got %v", tt.expectOK, result.Verdict.OK)
			}
			if result.Policy != tt.expectPolicy {
				t.Errorf("expected policy %s, got %s", tt.expectPolicy, result.Policy)
			}
			if result.RequestID != tt.expectRequest {
				t.Errorf("expected request %s, got %s", tt.expectRequest, result.RequestID)
			}
		})
	}
}

func TestExecutor_Execute_UnknownPolicyFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := mocks.NewMockEngine(ctrl)
	policies := mocks.NewMockPolicySource(ctrl)

	gomock.InOrder(
		policies.EXPECT().Lookup("shouting").Return(textsafety.Policy{}, false),
		policies.EXPECT().Lookup("comment").Return(textsafety.Policy{}, false),
	)
	engine.EXPECT().
		Validate(gomock.Any(), textsafety.CommentPolicy).
		Return(textsafety.Verdict{OK: true, CleanedText: "ok"})

	exec := NewExecutor(engine, policies, nil, testLogger())
	result := exec.Execute(context.Background(), models.ModerationRequest{
		Field:  models.FieldComment,
		Text:   strPtr("ok"),
		Policy: "shouting",
	})

	if result.Policy != "comment" {
		t.Errorf("expected fallback to comment, got %s", result.Policy)
	}
	if result.RequestID == "" {
		t.Error("expected generated request id")
	}
}

func TestExecutor_Moderate(t *testing.T) {
	tests := []struct {
		name        string
		verdict     textsafety.Verdict
		expectText  string
		expectErr   error
		expectRule  string
		expectEmits int
	}{
		{
			name:       "accepted returns cleaned text",
			verdict:    textsafety.Verdict{OK: true, CleanedText: "注意安全"},
			expectText: "注意安全",
		},
		{
			name: "rejected returns rejection error",
			verdict: textsafety.Verdict{
				OK:          false,
				CleanedText: "我要杀了你",
				Reason:      textsafety.ReasonViolentThreat,
				Rule:        textsafety.RuleThreatWindow,
			},
			expectErr:   ErrContentRejected,
			expectRule:  textsafety.RuleThreatWindow,
			expectEmits: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			engine := mocks.NewMockEngine(ctrl)
			policies := mocks.NewMockPolicySource(ctrl)
			emitter := mocks.NewMockEventEmitter(ctrl)

			policies.EXPECT().Lookup("comment").Return(textsafety.CommentPolicy, true)
			engine.EXPECT().Validate(gomock.Any(), textsafety.CommentPolicy).Return(tt.verdict)
			emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).Times(tt.expectEmits)

			exec := NewExecutor(engine, policies, emitter, testLogger())
			text, err := exec.Moderate(context.Background(), models.FieldComment, "  input  ", "")

			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected error %v, got %v", tt.expectErr, err)
				}
				var rejection *RejectionError
				if !errors.As(err, &rejection) {
					t.Fatalf("expected *RejectionError, got %T", err)
				}
				if rejection.Rule != tt.expectRule {
					t.Errorf("expected rule %s, got %s", tt.expectRule, rejection.Rule)
				}
				if rejection.Field != models.FieldComment {
					t.Errorf("expected field comment, got %s", rejection.Field)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text != tt.expectText {
				t.Errorf("expected text %q, got %q", tt.expectText, text)
			}
		})
	}
}

func TestExecutor_WithRealValidator(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	policies := mocks.NewMockPolicySource(ctrl)
	policies.EXPECT().Lookup("title").Return(textsafety.TitlePolicy, true).AnyTimes()

	exec := NewExecutor(textsafety.NewValidator(textsafety.NewContactAdDetector(), textsafety.NewThreatDetector()), policies, nil, testLogger())

	if _, err := exec.Moderate(context.Background(), models.FieldTitle, "www.example.com", ""); !errors.Is(err, ErrContentRejected) {
		t.Errorf("expected URL title rejected, got %v", err)
	}

	text, err := exec.Moderate(context.Background(), models.FieldTitle, "  小区门口有毒饵  ", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "小区门口有毒饵" {
		t.Errorf("expected trimmed title, got %q", text)
	}
}
