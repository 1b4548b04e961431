package domain

import (
	"fmt"
	"time"
)

const (
	StageShape     = "shape"
	StageSize      = "size"
	StageRateLimit = "rate_limit"
	StageSlot      = "slot"
	StageRoundTrip = "round_trip"
	StageProbe     = "probe"
)

type Rejection struct {
	Stage  string
	Reason string
	Digest string
}

func (r Rejection) Error() string {
	return fmt.Sprintf("image rejected at stage '%s': %s", r.Stage, r.Reason)
}

type RejectionEvent struct {
	Id       string
	At       time.Time
	ViewerId string
	RecordId string
	Field    string
	Stage    string
	Reason   string
	Digest   string
}
