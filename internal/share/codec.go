// Package share implements the versioned URL token codec for itineraries.
//
// Three wire formats exist and all of them stay decodable forever,
// because shared links never expire:
//
//	v3:<base64url(JSON [{i,t,s,e}])>   current, s/e are epoch-day counts
//	v2:<id,pctTitle,startDay,endDay;…> delimited legacy
//	<base64(pctEncoded(JSON events))>  oldest, ISO-8601 dates, no prefix
//
// Encoding always produces the newest format. Only id, title and the
// day-granularity start/end survive a round trip; attendee lists and
// type tags are intentionally not part of the token.
package share

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/travel-calendar/backend/internal/dates"
	"github.com/travel-calendar/backend/internal/storage/models"
)

const (
	prefixV3 = "v3:"
	prefixV2 = "v2:"
)

// Codec encodes and decodes share tokens. Decoding failures are logged
// and degrade to an empty event list; they never surface as errors.
type Codec struct {
	logger *zap.Logger
}

// NewCodec creates a codec. A nil logger disables decode diagnostics.
func NewCodec(logger *zap.Logger) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{logger: logger}
}

// wireEvent is the minimal v3 representation of one event.
type wireEvent struct {
	I int64  `json:"i"`
	T string `json:"t"`
	S int64  `json:"s"`
	E int64  `json:"e"`
}

// Encode serializes events into a v3 token. An empty input yields the
// empty string; callers must treat "" as "no data parameter" rather
// than a valid encoded empty set.
func (c *Codec) Encode(events []models.Event) string {
	if len(events) == 0 {
		return ""
	}

	minimal := make([]wireEvent, 0, len(events))
	for _, ev := range events {
		minimal = append(minimal, wireEvent{
			I: ev.ID,
			T: ev.Title,
			S: dates.ToEpochDays(ev.Start),
			E: dates.ToEpochDays(ev.End),
		})
	}

	// wireEvent marshals cleanly; an error here would mean a broken type.
	data, err := json.Marshal(minimal)
	if err != nil {
		c.logger.Error("Failed to marshal share token", zap.Error(err))
		return ""
	}

	return prefixV3 + base64.RawURLEncoding.EncodeToString(data)
}

// Decode parses a token of any supported version into events. Malformed
// input returns an empty slice, never an error: a broken link degrades
// to an empty calendar. Decoded events carry only ID, Title, Start, End
// and AllDay=true.
func (c *Codec) Decode(token string) []models.Event {
	if token == "" {
		return []models.Event{}
	}

	switch {
	case strings.HasPrefix(token, prefixV3):
		return c.decodeV3(strings.TrimPrefix(token, prefixV3))
	case strings.HasPrefix(token, prefixV2):
		return c.decodeV2(strings.TrimPrefix(token, prefixV2))
	default:
		return c.decodeLegacy(token)
	}
}

func (c *Codec) decodeV3(data string) []models.Event {
	raw, err := base64URLDecode(data)
	if err != nil {
		c.logger.Warn("Invalid base64url in v3 token", zap.Error(err))
		return []models.Event{}
	}

	var minimal []wireEvent
	if err := json.Unmarshal(raw, &minimal); err != nil {
		c.logger.Warn("Invalid JSON in v3 token", zap.Error(err))
		return []models.Event{}
	}

	events := make([]models.Event, 0, len(minimal))
	for _, w := range minimal {
		events = append(events, models.Event{
			ID:     w.I,
			Title:  w.T,
			Start:  dates.FromEpochDays(w.S),
			End:    dates.FromEpochDays(w.E),
			AllDay: true,
		})
	}
	return events
}

func (c *Codec) decodeV2(data string) []models.Event {
	events := make([]models.Event, 0)
	for _, record := range strings.Split(data, ";") {
		fields := strings.Split(record, ",")
		if len(fields) != 4 {
			c.logger.Warn("Malformed v2 record skipped", zap.String("record", record))
			continue
		}

		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			c.logger.Warn("Unparsable id in v2 record", zap.String("record", record))
			continue
		}
		startDay, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			c.logger.Warn("Unparsable start day in v2 record", zap.String("record", record))
			continue
		}
		endDay, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			c.logger.Warn("Unparsable end day in v2 record", zap.String("record", record))
			continue
		}

		// Titles were percent-encoded before joining so the delimiters
		// stay unambiguous. A failed unescape keeps the raw title.
		title, err := url.PathUnescape(fields[1])
		if err != nil {
			title = fields[1]
		}

		events = append(events, models.Event{
			ID:     id,
			Title:  title,
			Start:  dates.FromEpochDays(startDay),
			End:    dates.FromEpochDays(endDay),
			AllDay: true,
		})
	}
	return events
}

// legacyEvent matches the original full-JSON wire shape with ISO dates.
type legacyEvent struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func (c *Codec) decodeLegacy(data string) []models.Event {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		// Tokens that traveled through URL handling may have lost padding.
		raw, err = base64.RawStdEncoding.DecodeString(data)
		if err != nil {
			c.logger.Warn("Invalid base64 in legacy token", zap.Error(err))
			return []models.Event{}
		}
	}

	unescaped, err := url.PathUnescape(string(raw))
	if err != nil {
		c.logger.Warn("Invalid percent encoding in legacy token", zap.Error(err))
		return []models.Event{}
	}

	var parsed []legacyEvent
	if err := json.Unmarshal([]byte(unescaped), &parsed); err != nil {
		c.logger.Warn("Invalid JSON in legacy token", zap.Error(err))
		return []models.Event{}
	}

	events := make([]models.Event, 0, len(parsed))
	for _, l := range parsed {
		start, err := parseISODate(l.Start)
		if err != nil {
			c.logger.Warn("Unparsable start date in legacy event", zap.Int64("id", l.ID))
			continue
		}
		end, err := parseISODate(l.End)
		if err != nil {
			c.logger.Warn("Unparsable end date in legacy event", zap.Int64("id", l.ID))
			continue
		}
		events = append(events, models.Event{
			ID:     l.ID,
			Title:  l.Title,
			Start:  start,
			End:    end,
			AllDay: true,
		})
	}
	return events
}

// base64URLDecode decodes a base64url string with or without padding.
func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

// parseISODate accepts the ISO-8601 variants the legacy format produced.
func parseISODate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
