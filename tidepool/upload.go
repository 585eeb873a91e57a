package tidepool

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperr "github.com/diatide/diatide/errors"
	"github.com/diatide/diatide/glucose"
)

const (
	DEVICE_TIME = "2006-01-02T15:04:05"
	UTC_TIME    = "2006-01-02T15:04:05-07:00"
)

// Payload is the Tidepool data record for a single glucose reading. Field order is the order
// of the serialized JSON object.
type Payload struct {
	Type             string  `json:"type"`
	SubType          string  `json:"subType,omitempty"`
	Units            string  `json:"units"`
	Value            float64 `json:"value"`
	ClockDriftOffset int     `json:"clockDriftOffset"`
	ConversionOffset int     `json:"conversionOffset"`
	DeviceID         string  `json:"deviceId"`
	DeviceTime       string  `json:"deviceTime"`
	Time             string  `json:"time"`
	TimezoneOffset   int     `json:"timezoneOffset"`
	UploadID         string  `json:"uploadId"`
}

// Result summarises a single upload batch.
type Result struct {
	UploadID  string
	Kind      glucose.Kind
	Attempted int
	Uploaded  int
	Failed    int
}

// UploadID returns a new upload batch identifier for a device, derived from the device ID and
// the current time.
func (c *Client) UploadID(deviceID string) string {
	now := c.now().Format("2006-01-02 15:04:05.000000")
	hash := md5.Sum([]byte(deviceID + "_" + now))

	return "upid_" + hex.EncodeToString(hash[:])[:12]
}

// Payload builds the upload record for a reading. The reading timestamp is the local wall clock
// time which is localised to the reference timezone to derive the UTC offset.
func (c *Client) Payload(reading glucose.Reading, deviceID string, kind glucose.Kind, uploadID string) Payload {
	t := reading.Timestamp
	local, offset := c.localise(t)

	payload := Payload{
		Type:             string(kind),
		Units:            glucose.Units,
		Value:            reading.Value,
		ClockDriftOffset: 0,
		ConversionOffset: 0,
		DeviceID:         deviceID,
		DeviceTime:       isoformat(t, DEVICE_TIME),
		Time:             isoformat(local, UTC_TIME),
		TimezoneOffset:   offset / 60,
		UploadID:         uploadID,
	}

	if kind == glucose.SMBG {
		payload.SubType = "manual"
	}

	return payload
}

// UploadBatch uploads a list of readings for a device as a single upload batch, one POST per
// reading. Failed uploads are logged and counted but do not stop the batch.
func (c *Client) UploadBatch(ctx context.Context, session *Session, readings []glucose.Reading, deviceID string, kind glucose.Kind) (*Result, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, apperr.NewConfigError("missing device ID for %v upload", kind)
	}

	if !kind.Valid() {
		return nil, apperr.NewConfigError("invalid data type '%v'", kind)
	}

	if session == nil {
		return nil, apperr.NewAuthError(nil, "not logged in")
	}

	result := Result{
		UploadID: c.UploadID(deviceID),
		Kind:     kind,
	}

	log := c.log.With(zap.String("upload_id", result.UploadID), zap.Stringer("type", kind))

	for _, reading := range readings {
		result.Attempted++

		payload := c.Payload(reading, deviceID, kind, result.UploadID)
		if err := c.post(ctx, session, payload); err != nil {
			result.Failed++
			log.Warn("upload failed", append(apperr.Fields(err), zap.Stringer("reading", reading))...)
			continue
		}

		result.Uploaded++
		log.Info("uploaded", zap.Stringer("reading", reading))
	}

	log.Info("upload complete",
		zap.Int("attempted", result.Attempted),
		zap.Int("uploaded", result.Uploaded),
		zap.Int("failed", result.Failed))

	return &result, nil
}

// localise interprets the wall clock time of t in the reference timezone. A wall clock time in
// the daylight saving gap keeps its wall clock and takes the offset in effect before the transition,
// and a repeated wall clock time takes the standard time offset.
func (c *Client) localise(t time.Time) (time.Time, int) {
	local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), c.zone)
	_, offset := local.Zone()

	if local.Day() != t.Day() || local.Hour() != t.Hour() || local.Minute() != t.Minute() {
		_, offset = local.Add(-time.Hour).Zone()
		local = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.FixedZone("", offset))
	}

	return local, offset
}

func (c *Client) post(ctx context.Context, session *Session, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	rq, err := c.authorised(session, http.MethodPost, c.upload+"/data", bytes.NewReader(body))
	if err != nil {
		return err
	}

	rq.Header.Set("Content-Type", "application/json")

	response, _, err := c.do(ctx, rq)
	if err != nil {
		return apperr.NewTransportError(err, "upload")
	}

	if !ok(response) {
		return apperr.NewTransportError(nil, "upload").WithContext("status", response.Status)
	}

	return nil
}

// isoformat renders a time with a fractional seconds part only if it is not zero.
func isoformat(t time.Time, layout string) string {
	if t.Nanosecond()/1000 == 0 {
		return t.Format(layout)
	}

	return t.Format(strings.Replace(layout, "05", "05.000000", 1))
}
