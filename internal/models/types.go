package models

import (
	"time"

	"github.com/povarna/pet-poison-map/internal/textsafety"
)

type Field string

const (
	FieldTitle   Field = "title"
	FieldComment Field = "comment"
)

type Decision string

const (
	DecisionAllow  Decision = "allow"
	DecisionReject Decision = "reject"
)

// Incident is a reported hazard pinned on the map.
type Incident struct {
	IncidentID string    `json:"incident_id" dynamodbav:"incident_id" description:"Incident identifier"`
	Lng        float64   `json:"lng" dynamodbav:"lng" description:"Longitude in [-180, 180]"`
	Lat        float64   `json:"lat" dynamodbav:"lat" description:"Latitude in [-90, 90]"`
	Title      string    `json:"title" dynamodbav:"title" description:"Cleaned title"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
	UserSub    string    `json:"user_sub,omitempty" dynamodbav:"user_sub,omitempty"`
}

type Comment struct {
	CommentID  string    `json:"comment_id" dynamodbav:"comment_id"`
	IncidentID string    `json:"incident_id" dynamodbav:"incident_id"`
	SortKey    string    `json:"-" dynamodbav:"sort_key"`
	Content    string    `json:"content" dynamodbav:"content"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
	UserSub    string    `json:"user_sub,omitempty" dynamodbav:"user_sub,omitempty"`
	Nickname   string    `json:"nickname,omitempty" dynamodbav:"nickname,omitempty"`
	Avatar     string    `json:"avatar,omitempty" dynamodbav:"avatar,omitempty"`
}

// sortKeyLayout keeps a fixed number of fractional digits so sort keys order
// lexicographically by time.
const sortKeyLayout = "2006-01-02T15:04:05.000000Z07:00"

// CommentSortKey builds "<created_at>#<comment_id>".
func CommentSortKey(createdAt time.Time, commentID string) string {
	return createdAt.UTC().Format(sortKeyLayout) + "#" + commentID
}

// User is the authenticated author taken from the app token.
type User struct {
	Sub      string `json:"sub"`
	Provider string `json:"provider"`
	Nickname string `json:"nickname,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Input message

type ModerationRequest struct {
	RequestID string  `json:"request_id" jsonschema:"unique request identifier"`
	Field     Field   `json:"field" jsonschema:"field being moderated: title or comment"`
	Text      *string `json:"text" jsonschema:"raw user text"`
	Policy    string  `json:"policy,omitempty" jsonschema:"policy name, defaults to the field name"`
}

// Output emitted to the results stream
type ModerationResult struct {
	RequestID string             `json:"request_id"`
	Field     Field              `json:"field"`
	Policy    string             `json:"policy"`
	Verdict   textsafety.Verdict `json:"verdict"`
}

func (r ModerationResult) Decision() Decision {
	if r.Verdict.OK {
		return DecisionAllow
	}
	return DecisionReject
}

// HTTP DTOs

type IncidentCreateRequest struct {
	Lng   float64 `json:"lng" description:"Longitude"`
	Lat   float64 `json:"lat" description:"Latitude"`
	Title string  `json:"title" description:"Incident title, 1-30 characters"`
}

type IncidentCreateResponse struct {
	Incident Incident `json:"incident"`
}

type CommentCreateRequest struct {
	IncidentID string `json:"incident_id" description:"Incident the comment belongs to"`
	Content    string `json:"content" description:"Comment text, 1-300 characters"`
}

type CommentCreateResponse struct {
	OK        bool   `json:"ok"`
	CommentID string `json:"comment_id"`
}

type CommentListResponse struct {
	IncidentID string    `json:"incident_id"`
	Items      []Comment `json:"items"`
}

type ValidateTextRequest struct {
	Text   *string `json:"text" description:"Raw text to validate"`
	Policy string  `json:"policy" description:"Policy name: title, comment or a configured custom policy"`
}

type AuthCallbackRequest struct {
	Code        string `json:"code" description:"Douyin authorization code"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

type AuthCallbackResponse struct {
	AppToken string         `json:"app_token"`
	Profile  map[string]any `json:"profile,omitempty"`
}
