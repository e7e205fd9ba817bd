package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

func bodyDigest(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

// validReqID accepts a lowercase uuid or 32-char hex id.
func validReqID(id string) bool {
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

type stamp struct {
	requestID string
	actorID   string
	at        time.Time
}

// readStamp collects the headers that identify a retryable request. A
// non-empty string describes the first problem found.
func readStamp(c echo.Context) (stamp, string) {
	h := c.Request().Header
	st := stamp{requestID: strings.ToLower(strings.TrimSpace(h.Get(HeaderRequestID)))}
	if st.requestID == "" {
		return st, "missing " + HeaderRequestID
	}
	if !validReqID(st.requestID) {
		return st, "invalid " + HeaderRequestID + " format"
	}

	at, err := parseRequestAt(h.Get(HeaderRequestAt))
	if err != nil {
		return st, err.Error()
	}
	now := nowUTC()
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return st, HeaderRequestAt + " too skewed"
	}
	st.at = at

	st.actorID = strings.TrimSpace(h.Get(HeaderActorID))
	if a, ok := ActorFrom(c); ok {
		st.actorID = a.ID
	}
	if st.actorID == "" {
		return st, "missing " + HeaderActorID
	}
	return st, ""
}

// parseRequestAt accepts:
//   - epoch seconds (e.g., "1736123456")
//   - epoch milliseconds (e.g., "1736123456789")
//   - RFC3339 / RFC3339Nano with timezone (e.g., "2025-09-05T10:00:00+07:00" or "...Z")
//
// Naive local timestamps without timezone are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}
