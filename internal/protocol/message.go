// Package protocol defines the wire format: one JSON object per line in
// each direction, strictly request then response.
package protocol

import (
	"github.com/udisondev/robotworld/internal/model"
)

// Result values.
const (
	ResultOK    = "OK"
	ResultError = "ERROR"
)

// Request is one client command.
type Request struct {
	Robot     string `json:"robot"`
	Command   string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

// Response answers exactly one Request.
type Response struct {
	Result string         `json:"result"`
	Data   map[string]any `json:"data"`
	State  *State         `json:"state,omitempty"`
}

// IsOK reports whether the command succeeded.
func (r Response) IsOK() bool {
	return r.Result == ResultOK
}

// Message returns data.message, or "" when absent.
func (r Response) Message() string {
	s, _ := r.Data["message"].(string)
	return s
}

// State is the robot block attached to robot-scoped responses.
type State struct {
	Position  [2]int `json:"position"`
	Direction string `json:"direction"`
	Shields   int    `json:"shields"`
	Shots     int    `json:"shots"`
	Status    string `json:"status"`
}

// NewState renders a robot state for the wire.
func NewState(st model.RobotState) *State {
	return &State{
		Position:  [2]int{st.Position.X, st.Position.Y},
		Direction: st.Direction.String(),
		Shields:   st.Shields,
		Shots:     st.Shots,
		Status:    st.Status.String(),
	}
}

// OK builds a successful response. data may be nil.
func OK(data map[string]any, st *State) Response {
	if data == nil {
		data = map[string]any{}
	}
	return Response{Result: ResultOK, Data: data, State: st}
}

// OKMessage builds a successful response carrying only data.message.
func OKMessage(msg string, st *State) Response {
	return OK(map[string]any{"message": msg}, st)
}

// Error builds a failed response with data.message set to msg.
func Error(msg string) Response {
	return Response{Result: ResultError, Data: map[string]any{"message": msg}}
}
