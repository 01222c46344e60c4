package handler

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/FooledKiwi/flighttrack/internal/service"
	"github.com/FooledKiwi/flighttrack/internal/storage"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("airportcode", validAirportCode)
		_ = v.RegisterValidation("nonblank", nonBlank)
	}
}

func nonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validAirportCode checks the trimmed length in characters. Blank values pass;
// pair it with nonblank where a code is mandatory.
func validAirportCode(fl validator.FieldLevel) bool {
	code := service.NormalizeAirportCode(fl.Field().String())
	return utf8.RuneCountInString(code) <= storage.MaxAirportCodeLen
}

// Request bodies and query strings are bound with the same structs for the
// HTML forms and the JSON API.

type nthRouteRequest struct {
	AirportCode string `form:"airport_code" json:"airport_code" binding:"required,nonblank,airportcode"`
	Position    string `form:"position" json:"position" binding:"required,oneof=L R"`
	N           int    `form:"n" json:"n" binding:"required,min=1"`
}

type createRouteRequest struct {
	AirportCode string `form:"airport_code" json:"airport_code" binding:"required,nonblank,airportcode"`
	Position    string `form:"position" json:"position" binding:"required,oneof=L R"`
	Duration    *int   `form:"duration" json:"duration" binding:"required"`
}

type shortestRouteRequest struct {
	Start string `form:"start" json:"start" binding:"airportcode"`
	End   string `form:"end" json:"end" binding:"airportcode"`
}

var fieldLabels = map[string]string{
	"AirportCode":  "Airport Code",
	"airport_code": "Airport Code",
	"Position":     "Position",
	"position":     "Position",
	"N":            "N",
	"n":            "N",
	"Duration":     "Duration",
	"Start":        "Start",
	"End":          "End",
}

func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

// bindErrorMessage turns a binding failure into a message fit for a form or
// a JSON error body.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid input: " + err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label := fieldLabel(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, label+" is required")
		case "nonblank":
			msgs = append(msgs, label+" must not be blank")
		case "airportcode":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %d characters", label, storage.MaxAirportCodeLen))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", label, fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", label, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", label, strings.ReplaceAll(fe.Param(), " ", ", ")))
		default:
			msgs = append(msgs, label+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

// invalidRouteMessage renders a service-side rejection for the caller.
func invalidRouteMessage(err error) string {
	var ire *service.InvalidRouteError
	if errors.As(err, &ire) {
		return fieldLabel(ire.Field) + " " + ire.Message
	}
	return "invalid route"
}

// normalize trims the code fields so forms are re-presented the way the
// service sees them.
func (r *nthRouteRequest) normalize() { r.AirportCode = service.NormalizeAirportCode(r.AirportCode) }
func (r *createRouteRequest) normalize() { r.AirportCode = service.NormalizeAirportCode(r.AirportCode) }
func (r *shortestRouteRequest) normalize() {
	r.Start = service.NormalizeAirportCode(r.Start)
	r.End = service.NormalizeAirportCode(r.End)
}

func (r createRouteRequest) duration() int {
	if r.Duration == nil {
		return 0
	}
	return *r.Duration
}

func (r nthRouteRequest) position() storage.Position    { return storage.Position(r.Position) }
func (r createRouteRequest) position() storage.Position { return storage.Position(r.Position) }
