package share

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travel-calendar/backend/internal/storage/models"
)

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleEvents() []models.Event {
	return []models.Event{
		{ID: 1, Title: "Tokyo", Start: utcDay(2025, time.October, 29), End: utcDay(2025, time.October, 31), AllDay: true},
		{ID: 2, Title: "Osaka Trip", Start: utcDay(2025, time.November, 1), End: utcDay(2025, time.November, 3), AllDay: true},
	}
}

// TestEncode_Decode_RoundTrip verifies that id, title and the
// day-granularity dates survive a full round trip through the current
// token format.
func TestEncode_Decode_RoundTrip(t *testing.T) {
	codec := NewCodec(nil)

	token := codec.Encode(sampleEvents())
	require.NotEmpty(t, token)
	assert.True(t, len(token) > 3 && token[:3] == "v3:")

	decoded := codec.Decode(token)
	require.Len(t, decoded, 2)

	assert.Equal(t, int64(1), decoded[0].ID)
	assert.Equal(t, "Tokyo", decoded[0].Title)
	assert.True(t, decoded[0].Start.Equal(utcDay(2025, time.October, 29)))
	assert.True(t, decoded[0].End.Equal(utcDay(2025, time.October, 31)))
	assert.True(t, decoded[0].AllDay)

	assert.Equal(t, int64(2), decoded[1].ID)
	assert.Equal(t, "Osaka Trip", decoded[1].Title)
}

// TestEncode_Empty verifies the empty-set convention: no events encode
// to the empty string, and the empty string decodes to no events.
func TestEncode_Empty(t *testing.T) {
	codec := NewCodec(nil)

	assert.Equal(t, "", codec.Encode(nil))
	assert.Equal(t, "", codec.Encode([]models.Event{}))
	assert.Empty(t, codec.Decode(""))
}

// TestEncode_URLSafe verifies that tokens never contain characters that
// would need escaping inside a URL query value beyond percent rules.
func TestEncode_URLSafe(t *testing.T) {
	codec := NewCodec(nil)

	events := []models.Event{
		{ID: 99, Title: "Ünïcode & spaces / slashes?", Start: utcDay(2025, time.January, 1), End: utcDay(2025, time.January, 2)},
	}
	token := codec.Encode(events)
	for _, r := range token[3:] {
		assert.Contains(t,
			"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_",
			string(r), "unexpected character %q in token", r)
	}

	decoded := codec.Decode(token)
	require.Len(t, decoded, 1)
	assert.Equal(t, "Ünïcode & spaces / slashes?", decoded[0].Title)
}

// TestDecode_V2 verifies that the delimited second-generation format
// still decodes, including percent-encoded titles.
func TestDecode_V2(t *testing.T) {
	codec := NewCodec(nil)

	decoded := codec.Decode("v2:1,Tokyo,20390,20392;2,Osaka%20Trip,20393,20395")
	require.Len(t, decoded, 2)

	assert.Equal(t, int64(1), decoded[0].ID)
	assert.Equal(t, "Tokyo", decoded[0].Title)
	assert.True(t, decoded[0].Start.Equal(utcDay(2025, time.October, 29)))
	assert.True(t, decoded[0].End.Equal(utcDay(2025, time.October, 31)))

	assert.Equal(t, "Osaka Trip", decoded[1].Title)
}

// TestDecode_V2_SkipsMalformedRecords verifies per-record error
// handling: a record with an unparsable field drops only that record.
func TestDecode_V2_SkipsMalformedRecords(t *testing.T) {
	codec := NewCodec(nil)

	decoded := codec.Decode("v2:1,Tokyo,20390,20392;oops,Bad,x,y;not-enough-fields")
	require.Len(t, decoded, 1)
	assert.Equal(t, "Tokyo", decoded[0].Title)
}

// TestDecode_Legacy verifies that first-generation tokens, base64 over
// JSON with ISO dates and no version prefix, still decode.
func TestDecode_Legacy(t *testing.T) {
	codec := NewCodec(nil)

	payload := `[{"id":1,"title":"Tokyo","start":"2025-10-29","end":"2025-10-31"}]`
	token := base64.StdEncoding.EncodeToString([]byte(payload))

	decoded := codec.Decode(token)
	require.Len(t, decoded, 1)
	assert.Equal(t, int64(1), decoded[0].ID)
	assert.Equal(t, "Tokyo", decoded[0].Title)
	assert.True(t, decoded[0].Start.Equal(utcDay(2025, time.October, 29)))
	assert.True(t, decoded[0].End.Equal(utcDay(2025, time.October, 31)))
	assert.True(t, decoded[0].AllDay)
}

// TestDecode_Legacy_StrippedPadding verifies tolerance for tokens whose
// base64 padding was lost in URL handling.
func TestDecode_Legacy_StrippedPadding(t *testing.T) {
	codec := NewCodec(nil)

	payload := `[{"id":7,"title":"Kyoto","start":"2025-12-01","end":"2025-12-02"}]`
	token := base64.StdEncoding.EncodeToString([]byte(payload))
	for len(token) > 0 && token[len(token)-1] == '=' {
		token = token[:len(token)-1]
	}

	decoded := codec.Decode(token)
	require.Len(t, decoded, 1)
	assert.Equal(t, "Kyoto", decoded[0].Title)
}

// TestDecode_Garbage verifies the degrade-to-empty contract: broken
// input yields an empty slice, never a nil slice or a panic.
func TestDecode_Garbage(t *testing.T) {
	codec := NewCodec(nil)

	for _, token := range []string{
		"not base64 at all!!!",
		"v3:%%%%",
		"v3:" + base64.RawURLEncoding.EncodeToString([]byte("not json")),
		"v2:",
		base64.StdEncoding.EncodeToString([]byte("{broken")),
	} {
		decoded := codec.Decode(token)
		assert.NotNil(t, decoded, "token %q", token)
		assert.Empty(t, decoded, "token %q", token)
	}
}

// TestDecode_OldFormatsMatchCurrent verifies that the same itinerary
// expressed in every generation decodes to identical events.
func TestDecode_OldFormatsMatchCurrent(t *testing.T) {
	codec := NewCodec(nil)

	current := codec.Decode(codec.Encode([]models.Event{
		{ID: 1, Title: "Tokyo", Start: utcDay(2025, time.October, 29), End: utcDay(2025, time.October, 31)},
	}))
	v2 := codec.Decode("v2:1,Tokyo,20390,20392")
	legacy := codec.Decode(base64.StdEncoding.EncodeToString(
		[]byte(`[{"id":1,"title":"Tokyo","start":"2025-10-29","end":"2025-10-31"}]`)))

	require.Len(t, current, 1)
	require.Len(t, v2, 1)
	require.Len(t, legacy, 1)

	for _, got := range [][]models.Event{v2, legacy} {
		assert.Equal(t, current[0].ID, got[0].ID)
		assert.Equal(t, current[0].Title, got[0].Title)
		assert.True(t, current[0].Start.Equal(got[0].Start))
		assert.True(t, current[0].End.Equal(got[0].End))
	}
}
