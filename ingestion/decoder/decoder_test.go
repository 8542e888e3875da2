package decoder

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestgw/internal/models"
)

func decodeErrKind(t *testing.T, err error) models.RejectKind {
	t.Helper()
	var de *DecodeError
	require.True(t, errors.As(err, &de), "expected *DecodeError, got %v", err)
	return de.Kind
}

func TestDecodeJSON(t *testing.T) {
	b, err := Decode(models.IngestionJSON, []byte(`{"msg":"hi"}`))
	require.NoError(t, err)
	require.Len(t, b.Records, 1)
	assert.Equal(t, "hi", b.Records[0].Fields["msg"])
	assert.Zero(t, b.Records[0].Timestamp)
	assert.Equal(t, RouteNone, b.Route)

	b, err = Decode(models.IngestionJSON, []byte(`[{"a":1},{"a":2},{"a":3}]`))
	require.NoError(t, err)
	require.Len(t, b.Records, 3)
	assert.Equal(t, json.Number("2"), b.Records[1].Fields["a"])

	b, err = Decode(models.IngestionJSON, []byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, b.Records)
}

func TestDecodeJSONRejectsMalformedPayloads(t *testing.T) {
	for name, payload := range map[string]string{
		"empty":          "  ",
		"syntax":         `{"msg":`,
		"scalar":         `42`,
		"non-object":     `[{"a":1}, 2]`,
		"trailing value": `{"a":1} {"a":2}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(models.IngestionJSON, []byte(payload))
			assert.Equal(t, models.RejectMalformedPayload, decodeErrKind(t, err))
		})
	}
}

func TestDecodeUnsupportedType(t *testing.T) {
	_, err := Decode(models.IngestionType(42), []byte(`{}`))
	assert.Equal(t, models.RejectUnsupportedType, decodeErrKind(t, err))
}

func TestDecodeMultiCountsBadLines(t *testing.T) {
	payload := []byte("{\"a\":1}\nnot json\n\n{\"a\":2}\n[1,2]\n{\"a\":3}\n")
	b, err := Decode(models.IngestionMulti, payload)
	require.NoError(t, err)
	assert.Len(t, b.Records, 3)
	require.Len(t, b.Errors, 2)
	assert.Equal(t, 1, b.Errors[0].Index)
	assert.Equal(t, 4, b.Errors[1].Index)
	assert.Equal(t, models.StageDecode, b.Errors[0].Stage)

	_, err = Decode(models.IngestionMulti, []byte("\n\n"))
	assert.Equal(t, models.RejectMalformedPayload, decodeErrKind(t, err))
}

func TestDecodeIsDeterministicAndDoesNotMutateInput(t *testing.T) {
	payload := []byte("{\"_timestamp\":1700000000,\"a\":\"x\"}\n{\"b\":2.5}\nbad\n")
	orig := append([]byte(nil), payload...)

	first, err := Decode(models.IngestionMulti, payload)
	require.NoError(t, err)
	second, err := Decode(models.IngestionMulti, payload)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, orig, payload)
}

func TestTimestampExtraction(t *testing.T) {
	cases := map[string]int64{
		`{"_timestamp":1700000000}`:                     1700000000000000,
		`{"_timestamp":1700000000123}`:                  1700000000123000,
		`{"_timestamp":1700000000123456}`:               1700000000123456,
		`{"_timestamp":1700000000123456789}`:            1700000000123456,
		`{"@timestamp":"2023-11-14T22:13:20Z"}`:         1700000000000000,
		`{"timestamp":"1700000000"}`:                    1700000000000000,
		`{"timestamp":"yesterday","_timestamp":"later"}`: 0,
	}
	for payload, want := range cases {
		b, err := Decode(models.IngestionJSON, []byte(payload))
		require.NoError(t, err, payload)
		assert.Equal(t, want, b.Records[0].Timestamp, payload)
	}

	b, err := Decode(models.IngestionJSON, []byte(`{"_timestamp":1700000000,"a":1}`))
	require.NoError(t, err)
	assert.NotContains(t, b.Records[0].Fields, models.TimestampField)
}

func TestDecodeRoutedTypes(t *testing.T) {
	b, err := Decode(models.IngestionRUM, []byte(`{"view":"/home"}`))
	require.NoError(t, err)
	assert.Equal(t, RouteRUM, b.Route)

	b, err = Decode(models.IngestionUsage, []byte(`[{"event":"search"}]`))
	require.NoError(t, err)
	assert.Equal(t, RouteUsage, b.Route)
	assert.Len(t, b.Records, 1)
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestDecodeGCP(t *testing.T) {
	envelope := `{"message":{"data":"` + b64(`{"severity":"INFO","text":"up"}`) + `",
		"attributes":{"logging.googleapis.com/timestamp":"x","region":"eu"},
		"messageId":"1","publishTime":"2023-11-14T22:13:20Z"},"subscription":"projects/p/subscriptions/s"}`
	b, err := Decode(models.IngestionGCP, []byte(envelope))
	require.NoError(t, err)
	require.Len(t, b.Records, 1)
	rec := b.Records[0]
	assert.Equal(t, "up", rec.Fields["text"])
	assert.Equal(t, "eu", rec.Fields["attributes_region"])
	assert.Equal(t, int64(1700000000000000), rec.Timestamp)

	multi := `{"message":{"data":"` + b64("{\"a\":1}\n{\"a\":2}") + `"}}`
	b, err = Decode(models.IngestionGCP, []byte(multi))
	require.NoError(t, err)
	assert.Len(t, b.Records, 2)

	for _, bad := range []string{`not json`, `{"subscription":"s"}`, `{"message":{"data":"%%%"}}`} {
		_, err := Decode(models.IngestionGCP, []byte(bad))
		assert.Equal(t, models.RejectMalformedPayload, decodeErrKind(t, err), bad)
	}
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecodeFirehose(t *testing.T) {
	cloudwatch := gzipped(t, `{"messageType":"DATA_MESSAGE","owner":"123","logGroup":"/aws/lambda/f",
		"logStream":"s","logEvents":[{"id":"e1","timestamp":1700000000000,"message":"start"},
		{"id":"e2","timestamp":1700000001000,"message":"end"}]}`)
	envelope := `{"requestId":"r-1","timestamp":1700000005000,"records":[
		{"data":"` + b64(`{"level":"warn"}`) + `"},
		{"data":"not base64 !!"},
		{"data":"` + base64.StdEncoding.EncodeToString(cloudwatch) + `"}]}`

	b, err := Decode(models.IngestionKinesisFH, []byte(envelope))
	require.NoError(t, err)
	require.Len(t, b.Records, 3)
	require.Len(t, b.Errors, 1)
	assert.Equal(t, 1, b.Errors[0].Index)

	assert.Equal(t, "warn", b.Records[0].Fields["level"])
	assert.Equal(t, int64(1700000005000000), b.Records[0].Timestamp, "falls back to delivery time")
	assert.Equal(t, "start", b.Records[1].Fields["message"])
	assert.Equal(t, "/aws/lambda/f", b.Records[1].Fields["log_group"])
	assert.Equal(t, int64(1700000001000000), b.Records[2].Timestamp)

	_, err = Decode(models.IngestionKinesisFH, []byte(`{"requestId":"r-2"}`))
	assert.Equal(t, models.RejectMalformedPayload, decodeErrKind(t, err))
}

func TestDecompress(t *testing.T) {
	payload := `{"msg":"compressed"}`

	out, err := Decompress("gzip", gzipped(t, payload), 0)
	require.NoError(t, err)
	assert.Equal(t, payload, string(out))

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	out, err = Decompress("ZSTD", enc.EncodeAll([]byte(payload), nil), 0)
	require.NoError(t, err)
	assert.Equal(t, payload, string(out))

	raw := []byte(payload)
	out, err = Decompress("", raw, 0)
	require.NoError(t, err)
	assert.Equal(t, raw, out)

	_, err = Decompress("gzip", gzipped(t, payload), 4)
	assert.Equal(t, models.RejectMalformedPayload, decodeErrKind(t, err))

	_, err = Decompress("br", raw, 0)
	assert.Equal(t, models.RejectMalformedPayload, decodeErrKind(t, err))

	_, err = Decompress("gzip", raw, 0)
	assert.Equal(t, models.RejectMalformedPayload, decodeErrKind(t, err))
}
