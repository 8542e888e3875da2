package models

import (
	"fmt"
	"net/http"
	"strings"
)

// RejectKind classifies why a whole batch was refused
type RejectKind int

const (
	RejectInternal RejectKind = iota
	RejectMissingOrg
	RejectMissingStream
	RejectInvalidStreamType
	RejectInvalidMetadata
	RejectPayloadTooLarge
	RejectMalformedPayload
	RejectUnsupportedType
	RejectStreamDeleting
	RejectStreamNotFound
	RejectQuotaExceeded
	RejectSinkUnavailable
)

var rejectKindNames = map[RejectKind]string{
	RejectInternal:          "internal",
	RejectMissingOrg:        "missing_org",
	RejectMissingStream:     "missing_stream",
	RejectInvalidStreamType: "invalid_stream_type",
	RejectInvalidMetadata:   "invalid_metadata",
	RejectPayloadTooLarge:   "payload_too_large",
	RejectMalformedPayload:  "malformed_payload",
	RejectUnsupportedType:   "unsupported_type",
	RejectStreamDeleting:    "stream_deleting",
	RejectStreamNotFound:    "stream_not_found",
	RejectQuotaExceeded:     "quota_exceeded",
	RejectSinkUnavailable:   "sink_unavailable",
}

func (k RejectKind) String() string {
	if name, ok := rejectKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("reject_kind(%d)", int(k))
}

// StatusCode maps the kind onto the HTTP-style status returned to callers
func (k RejectKind) StatusCode() int32 {
	switch k {
	case RejectMissingOrg, RejectMissingStream, RejectInvalidStreamType, RejectInvalidMetadata,
		RejectMalformedPayload, RejectUnsupportedType, RejectStreamDeleting:
		return http.StatusBadRequest
	case RejectPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case RejectStreamNotFound:
		return http.StatusNotFound
	case RejectQuotaExceeded:
		return http.StatusTooManyRequests
	case RejectSinkUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Response is the uniform acknowledgement of one call
type Response struct {
	StatusCode int32
	Message    string
}

// Outcome is the result of admitting one batch: Accepted, Rejected or
// PartiallyAccepted.
type Outcome interface {
	Response() Response
	isOutcome()
}

// Accepted means every decoded record was written
type Accepted struct {
	Count int
}

func (o Accepted) Response() Response {
	return Response{StatusCode: http.StatusOK, Message: fmt.Sprintf("%d record(s) accepted", o.Count)}
}

func (Accepted) isOutcome() {}

// Rejected means nothing from the batch was written
type Rejected struct {
	Kind    RejectKind
	Message string
}

func (o Rejected) Response() Response {
	msg := o.Message
	if msg == "" {
		msg = o.Kind.String()
	}
	return Response{StatusCode: o.Kind.StatusCode(), Message: msg}
}

func (Rejected) isOutcome() {}

// maxReportedErrors bounds how many per-record reasons go into a response message
const maxReportedErrors = 3

// PartiallyAccepted means some records were not written. Accepted is zero
// when every line of a multi-record payload failed to decode. Written records
// stay written.
type PartiallyAccepted struct {
	Accepted int
	Rejected int
	Errors   []RecordError
}

func (o PartiallyAccepted) Response() Response {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d record(s) accepted, %d record(s) rejected", o.Accepted, o.Rejected)
	for i, e := range o.Errors {
		if i == maxReportedErrors {
			fmt.Fprintf(&sb, "; and %d more", len(o.Errors)-maxReportedErrors)
			break
		}
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString("; ")
		}
		sb.WriteString(e.String())
	}
	return Response{StatusCode: http.StatusMultiStatus, Message: sb.String()}
}

func (PartiallyAccepted) isOutcome() {}
