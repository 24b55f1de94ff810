package core

import "encoding/json"

// ActionKind is the wire tag carried in the "type" field.
type ActionKind string

const (
	KindReset        ActionKind = "reset"
	KindSetPrompt    ActionKind = "set-prompt"
	KindSetResponses ActionKind = "set-responses"
	KindVote         ActionKind = "vote"
)

// Permission says who may apply an action to a room.
type Permission int

const (
	PermissionOwner Permission = iota
	PermissionAll
)

// Action is a parsed mutation request against a room.
// The set of implementations is closed: ResetAction, SetPromptAction,
// SetResponsesAction and VoteAction.
type Action interface {
	Kind() ActionKind
	Permission() Permission
	isAction()
}

type ResetAction struct{}

type SetPromptAction struct {
	Prompt string
}

type SetResponsesAction struct {
	Responses []string
}

// VoteAction carries the chosen option. A nil Option never matches a response.
type VoteAction struct {
	Option *string
}

func (ResetAction) Kind() ActionKind        { return KindReset }
func (SetPromptAction) Kind() ActionKind    { return KindSetPrompt }
func (SetResponsesAction) Kind() ActionKind { return KindSetResponses }
func (VoteAction) Kind() ActionKind         { return KindVote }

func (ResetAction) Permission() Permission        { return PermissionOwner }
func (SetPromptAction) Permission() Permission    { return PermissionOwner }
func (SetResponsesAction) Permission() Permission { return PermissionOwner }
func (VoteAction) Permission() Permission         { return PermissionAll }

func (ResetAction) isAction()        {}
func (SetPromptAction) isAction()    {}
func (SetResponsesAction) isAction() {}
func (VoteAction) isAction()         {}

// ParseAction decodes one inbound message. It reports false for anything
// that is not a JSON object with a known "type"; other fields are optional
// and fall back to their zero value when missing or of the wrong type.
func ParseAction(data []byte) (Action, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, false
	}
	raw, ok := fields["type"]
	if !ok {
		return nil, false
	}
	var kind ActionKind
	if err := json.Unmarshal(raw, &kind); err != nil {
		return nil, false
	}

	switch kind {
	case KindReset:
		return ResetAction{}, true
	case KindSetPrompt:
		return SetPromptAction{Prompt: stringField(fields, "prompt")}, true
	case KindSetResponses:
		return SetResponsesAction{Responses: stringsField(fields, "responses")}, true
	case KindVote:
		return VoteAction{Option: optionalStringField(fields, "vote")}, true
	default:
		return nil, false
	}
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var s string
	if raw, ok := fields[key]; ok {
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
	}
	return s
}

func stringsField(fields map[string]json.RawMessage, key string) []string {
	var out []string
	if raw, ok := fields[key]; ok {
		if err := json.Unmarshal(raw, &out); err != nil {
			return []string{}
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func optionalStringField(fields map[string]json.RawMessage, key string) *string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return s
}
