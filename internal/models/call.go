package models

import "encoding/json"

// ToolFinalizeOutcome is the tool the agent invokes to report the call result.
const ToolFinalizeOutcome = "finalize_outcome"

// Knowledge is the static knowledge handed to the voice agent.
type Knowledge struct {
	Products []string `json:"products"`
}

// Tool describes a tool call the agent may perform.
type Tool struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

// AgentSpec is the agent section of a call request.
type AgentSpec struct {
	SystemPrompt string    `json:"system_prompt"`
	Knowledge    Knowledge `json:"knowledge"`
	Tools        []Tool    `json:"tools"`
}

// CallContext is echoed back by the voice API on every event of the call.
type CallContext struct {
	LeadID any  `json:"lead_id"`
	Lead   Lead `json:"lead"`
}

// CallRequest is the payload sent to the voice API to start an outbound call.
type CallRequest struct {
	From       string      `json:"from"`
	To         string      `json:"to"`
	WebhookURL string      `json:"webhook_url"`
	Agent      AgentSpec   `json:"agent"`
	Context    CallContext `json:"context"`
}

// NewCallRequest builds a call request for a validated lead.
func NewCallRequest(lead Lead, agent AgentSpec, callerID, webhookURL string) *CallRequest {
	phone, _ := lead.Phone()
	return &CallRequest{
		From:       callerID,
		To:         phone,
		WebhookURL: webhookURL,
		Agent:      agent,
		Context: CallContext{
			LeadID: lead.LeadID(),
			Lead:   lead,
		},
	}
}

// CallStartResponse is the subset of the voice API response the relay uses.
type CallStartResponse struct {
	SessionID string `json:"session_id"`
}
