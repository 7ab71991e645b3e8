// Package payload assembles, validates and serializes the configuration
// message sent to the companion device.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/blinky-companion/sync-agent/internal/models"
	srvErrors "github.com/blinky-companion/sync-agent/pkg/errors"
)

// wirePayload is the contract consumed by the device firmware. Field order
// and names must not change.
type wirePayload struct {
	LedState    int    `json:"ledState" validate:"oneof=0 1"`
	CurrentTime uint64 `json:"currentTime"`
	AlarmHour   uint8  `json:"alarmHour" validate:"max=23"`
	AlarmMinute uint8  `json:"alarmMinute" validate:"max=59"`
	SSID        string `json:"ssid" validate:"required"`
	Password    string `json:"password"`
}

type buildInput struct {
	AlarmHour   int    `json:"alarmHour" validate:"min=0,max=23"`
	AlarmMinute int    `json:"alarmMinute" validate:"min=0,max=59"`
	SSID        string `json:"ssid" validate:"required"`
	CurrentTime int64  `json:"currentTime" validate:"min=0"`
}

// Builder turns a UI snapshot into a SyncPayload.
type Builder struct {
	location *time.Location
	validate *validator.Validate
}

// NewBuilder returns a builder that applies the offset of loc to the current
// instant. A nil loc means the local zone.
func NewBuilder(loc *time.Location) *Builder {
	if loc == nil {
		loc = time.Local
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Builder{location: loc, validate: v}
}

// Build validates the snapshot and computes the device-local time in whole
// seconds: the Unix time of now plus the zone offset (standard and daylight
// saving) in effect at now.
func (b *Builder) Build(ledOn bool, now time.Time, alarmHour, alarmMinute int, ssid, password string) (models.SyncPayload, error) {
	_, offset := now.In(b.location).Zone()
	input := buildInput{
		AlarmHour:   alarmHour,
		AlarmMinute: alarmMinute,
		SSID:        ssid,
		CurrentTime: now.Unix() + int64(offset),
	}
	if err := b.check(input); err != nil {
		return models.SyncPayload{}, err
	}

	return models.SyncPayload{
		LedOn:              ledOn,
		CurrentTimeSeconds: uint64(input.CurrentTime),
		AlarmHour:          uint8(alarmHour),
		AlarmMinute:        uint8(alarmMinute),
		SSID:               ssid,
		Password:           password,
	}, nil
}

// Serialize renders the payload in its wire form:
//
//	{"ledState":1,"currentTime":1700000000,"alarmHour":7,"alarmMinute":30,"ssid":"home","password":"pw"}
func Serialize(p models.SyncPayload) ([]byte, error) {
	wire := wirePayload{
		CurrentTime: p.CurrentTimeSeconds,
		AlarmHour:   p.AlarmHour,
		AlarmMinute: p.AlarmMinute,
		SSID:        p.SSID,
		Password:    p.Password,
	}
	if p.LedOn {
		wire.LedState = 1
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// keep '<', '>' and '&' literal for the firmware parser
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wire); err != nil {
		return nil, fmt.Errorf("encoding sync payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Parse is the inverse of Serialize.
func (b *Builder) Parse(data []byte) (models.SyncPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var wire wirePayload
	if err := dec.Decode(&wire); err != nil {
		return models.SyncPayload{}, fmt.Errorf("decoding sync payload: %w", err)
	}
	if err := b.check(wire); err != nil {
		return models.SyncPayload{}, err
	}

	return models.SyncPayload{
		LedOn:              wire.LedState == 1,
		CurrentTimeSeconds: wire.CurrentTime,
		AlarmHour:          wire.AlarmHour,
		AlarmMinute:        wire.AlarmMinute,
		SSID:               wire.SSID,
		Password:           wire.Password,
	}, nil
}

func (b *Builder) check(s any) error {
	err := b.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return fmt.Errorf("validating sync payload: %w", err)
	}

	fe := validationErrs[0]
	return srvErrors.NewValidationError(fe.Field(), reason(fe))
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
