package service

import (
	"fmt"
	"strings"

	"ingestgw/internal/models"
	"ingestgw/storage/store"
)

const maxMetadataEntries = 64

// ValidationError rejects a request before any decoding work
type ValidationError struct {
	Kind    models.RejectKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validator checks request envelopes
type Validator struct {
	maxPayloadBytes int
}

// NewValidator creates a Validator; maxPayloadBytes <= 0 disables the size check
func NewValidator(maxPayloadBytes int) *Validator {
	return &Validator{maxPayloadBytes: maxPayloadBytes}
}

// Validate returns the target stream of req with its name normalized
func (v *Validator) Validate(req *models.IngestRequest) (store.StreamKey, error) {
	if strings.TrimSpace(req.OrgID) == "" {
		return store.StreamKey{}, &ValidationError{Kind: models.RejectMissingOrg, Message: "missing org_id"}
	}
	name := FormatStreamName(req.StreamName)
	if name == "" {
		return store.StreamKey{}, &ValidationError{Kind: models.RejectMissingStream, Message: "missing stream_name"}
	}
	streamType, ok := models.ParseStreamType(req.StreamType)
	if !ok {
		return store.StreamKey{}, &ValidationError{
			Kind:    models.RejectInvalidStreamType,
			Message: fmt.Sprintf("invalid stream_type: %s", req.StreamType),
		}
	}
	if len(req.Metadata) > maxMetadataEntries {
		return store.StreamKey{}, &ValidationError{
			Kind:    models.RejectInvalidMetadata,
			Message: fmt.Sprintf("metadata has %d entries, at most %d allowed", len(req.Metadata), maxMetadataEntries),
		}
	}
	for k := range req.Metadata {
		if strings.TrimSpace(k) == "" {
			return store.StreamKey{}, &ValidationError{Kind: models.RejectInvalidMetadata, Message: "metadata key must not be empty"}
		}
	}
	if v.maxPayloadBytes > 0 && len(req.Data) > v.maxPayloadBytes {
		return store.StreamKey{}, &ValidationError{
			Kind:    models.RejectPayloadTooLarge,
			Message: fmt.Sprintf("payload of %d bytes exceeds limit of %d bytes", len(req.Data), v.maxPayloadBytes),
		}
	}
	return store.StreamKey{OrgID: req.OrgID, StreamName: name, StreamType: streamType}, nil
}

// FormatStreamName lower-cases name and replaces every character outside
// [a-z0-9_] with an underscore
func FormatStreamName(name string) string {
	name = strings.TrimSpace(name)
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// metadataValue looks key up case-insensitively
func metadataValue(md map[string]string, key string) string {
	if v, ok := md[key]; ok {
		return v
	}
	for k, v := range md {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
