package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Defines values for InviteStatus.
const (
	InviteStatusConfirmed InviteStatus = "confirmed"
	InviteStatusDeclined  InviteStatus = "declined"
	InviteStatusPending   InviteStatus = "pending"
)

// Counts defines model for Counts.
type Counts struct {
	Adults  *int `json:"adults,omitempty"`
	Infants *int `json:"infants,omitempty"`
	Kids    *int `json:"kids,omitempty"`
	Teens   *int `json:"teens,omitempty"`
}

// Error defines model for Error.
type Error struct {
	Code    *string `json:"code,omitempty"`
	Message string  `json:"message"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status string `json:"status"`
}

// Invite defines model for Invite.
type Invite struct {
	Allotment   Counts             `json:"allotment"`
	Companions  Names              `json:"companions"`
	Confirmed   Counts             `json:"confirmed"`
	Id          openapi_types.UUID `json:"id"`
	Name        string             `json:"name"`
	Notes       *string            `json:"notes,omitempty"`
	RespondedAt *time.Time         `json:"respondedAt,omitempty"`
	Status      InviteStatus       `json:"status"`
}

// InviteStatus defines model for Invite.Status.
type InviteStatus string

// NameList defines model for NameList.
type NameList = []string

// Names defines model for Names.
type Names struct {
	Adults  *NameList `json:"adults,omitempty"`
	Infants *NameList `json:"infants,omitempty"`
	Kids    *NameList `json:"kids,omitempty"`
	Teens   *NameList `json:"teens,omitempty"`
}

// RsvpRequest defines model for RsvpRequest.
type RsvpRequest struct {
	Attending  bool    `json:"attending"`
	Companions *Names  `json:"companions,omitempty"`
	Confirmed  *Counts `json:"confirmed,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// EventId defines model for EventId.
type EventId = string

// PutInviteJSONRequestBody defines body for PutInvite for application/json ContentType.
type PutInviteJSONRequestBody = RsvpRequest
