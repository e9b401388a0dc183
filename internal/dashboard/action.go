package dashboard

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownAction = errors.New("unknown action")

// Action is something a user can do from a table row.
type Action int

const (
	ActionView Action = iota
	ActionEdit
	ActionDelete
	ActionIssueCard
	ActionScheduleEvent
	ActionAssignAgent
	ActionSendMessage
	ActionChangeStage

	actionCount
)

type actionInfo struct {
	tag   string
	label string
	icon  string
}

// Indexed by Action. Every slot must be filled.
var actionTable = [actionCount]actionInfo{
	ActionView:          {tag: "view", label: "View details", icon: "eye"},
	ActionEdit:          {tag: "edit", label: "Edit", icon: "pencil"},
	ActionDelete:        {tag: "delete", label: "Delete", icon: "trash"},
	ActionIssueCard:     {tag: "issue_card", label: "Issue card", icon: "credit-card"},
	ActionScheduleEvent: {tag: "schedule_event", label: "Schedule event", icon: "calendar"},
	ActionAssignAgent:   {tag: "assign_agent", label: "Assign agent", icon: "user-plus"},
	ActionSendMessage:   {tag: "send_message", label: "Send message", icon: "mail"},
	ActionChangeStage:   {tag: "change_stage", label: "Change stage", icon: "arrow-right"},
}

// Actions lists every action in menu order.
func Actions() []Action {
	out := make([]Action, actionCount)
	for i := range out {
		out[i] = Action(i)
	}
	return out
}

func (a Action) valid() bool {
	return a >= 0 && a < actionCount
}

func (a Action) String() string {
	if !a.valid() {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionTable[a].tag
}

func (a Action) Label() string {
	if !a.valid() {
		return ""
	}
	return actionTable[a].label
}

func (a Action) Icon() string {
	if !a.valid() {
		return ""
	}
	return actionTable[a].icon
}

func ParseAction(tag string) (Action, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for i, info := range actionTable {
		if info.tag == tag && tag != "" {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, tag)
}

var (
	studentActions     = []Action{ActionView, ActionEdit, ActionIssueCard, ActionScheduleEvent, ActionAssignAgent, ActionSendMessage, ActionDelete}
	applicationActions = []Action{ActionView, ActionChangeStage, ActionDelete}
	partnerActions     = []Action{ActionView, ActionEdit, ActionDelete}
	eventActions       = []Action{ActionView, ActionDelete}
)
