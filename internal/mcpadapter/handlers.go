package mcpadapter

import (
	"context"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/povarna/pet-poison-map/internal/textsafety"
)

type Moderator interface {
	Execute(ctx context.Context, req models.ModerationRequest) models.ModerationResult
}

// PolicyCatalog lists configured policies.
type PolicyCatalog interface {
	Names() []string
	Lookup(name string) (textsafety.Policy, bool)
}

// ValidateTextInput is the MCP tool input schema (matches the stream payload).
type ValidateTextInput struct {
	RequestID string  `json:"request_id,omitempty" jsonschema:"optional request identifier"`
	Field     string  `json:"field,omitempty" jsonschema:"title or comment, defaults to comment"`
	Text      *string `json:"text" jsonschema:"raw user text to check"`
	Policy    string  `json:"policy,omitempty" jsonschema:"policy name, defaults to the field name"`
}

type PolicyInfo struct {
	Name   string            `json:"name"`
	Policy textsafety.Policy `json:"policy"`
}

type ListPoliciesInput struct{}

type ListPoliciesOutput struct {
	Policies []PolicyInfo `json:"policies"`
}

// NewValidateTextHandler returns a tool handler that uses the given moderator.
// Pass the returned function to mcp.AddTool.
func NewValidateTextHandler(moderator Moderator) func(context.Context, *mcp.CallToolRequest, ValidateTextInput) (*mcp.CallToolResult, models.ModerationResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ValidateTextInput) (*mcp.CallToolResult, models.ModerationResult, error) {
		return ValidateText(ctx, moderator, input)
	}
}

// ValidateText runs the text through moderation. A rejection is a normal
// result, not a tool error.
func ValidateText(ctx context.Context, moderator Moderator, input ValidateTextInput) (*mcp.CallToolResult, models.ModerationResult, error) {
	field := models.FieldComment
	if input.Field == string(models.FieldTitle) {
		field = models.FieldTitle
	}

	result := moderator.Execute(ctx, models.ModerationRequest{
		RequestID: input.RequestID,
		Field:     field,
		Text:      input.Text,
		Policy:    input.Policy,
	})
	return nil, result, nil
}

func NewListPoliciesHandler(catalog PolicyCatalog) func(context.Context, *mcp.CallToolRequest, ListPoliciesInput) (*mcp.CallToolResult, ListPoliciesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListPoliciesInput) (*mcp.CallToolResult, ListPoliciesOutput, error) {
		return nil, ListPolicies(catalog), nil
	}
}

func ListPolicies(catalog PolicyCatalog) ListPoliciesOutput {
	names := catalog.Names()
	sort.Strings(names)

	out := ListPoliciesOutput{Policies: make([]PolicyInfo, 0, len(names))}
	for _, name := range names {
		if policy, ok := catalog.Lookup(name); ok {
			out.Policies = append(out.Policies, PolicyInfo{Name: name, Policy: policy})
		}
	}
	return out
}

// NewServer builds the MCP server with every moderation tool registered.
func NewServer(moderator Moderator, catalog PolicyCatalog, version string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "pet-poison-map-moderation",
			Version: version,
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_text",
		Description: "Check a title or comment for contact details, ads, violent threats and length limits before it is published on the pet poison map",
	}, NewValidateTextHandler(moderator))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_policies",
		Description: "List the configured text policies and their limits",
	}, NewListPoliciesHandler(catalog))

	return server
}
