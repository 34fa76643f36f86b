package advisory

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/irrigation-advisor/internal/domain"
)

// ErrInvalidRequest is returned when a request fails field validation.
var ErrInvalidRequest = errors.New("invalid advisory request")

// requestValidate is shared by all requests; validator caches struct metadata.
var requestValidate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Request asks for an advisory at one location. Keys are resolved against
// the parameter tables; RootDepthMeters and HorizonDays fall back to the crop
// default and the service horizon when zero.
type Request struct {
	Latitude        float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude       float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Crop            string  `json:"crop" validate:"required"`
	Stage           string  `json:"stage" validate:"required"`
	Soil            string  `json:"soil" validate:"required"`
	Method          string  `json:"method" validate:"required"`
	RootDepthMeters float64 `json:"root_depth_m,omitempty" validate:"omitempty,gt=0,lte=5"`
	LastIrrigation  string  `json:"last_irrigation,omitempty" validate:"omitempty,datetime=2006-01-02"`
	HorizonDays     int     `json:"horizon_days,omitempty" validate:"omitempty,min=1,max=16"`
}

// Validate checks field ranges and formats. It does not resolve table keys.
func (r Request) Validate() error {
	err := requestValidate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Field(), rule))
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}

// Location returns the request coordinates.
func (r Request) Location() domain.Location {
	return domain.Location{Latitude: r.Latitude, Longitude: r.Longitude}
}

// lastIrrigation parses the optional last irrigation date.
func (r Request) lastIrrigation() (*time.Time, error) {
	if r.LastIrrigation == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, r.LastIrrigation)
	if err != nil {
		return nil, fmt.Errorf("%w: last_irrigation: %w", ErrInvalidRequest, err)
	}
	return &t, nil
}

// resolve looks up every table key. The first unknown key is returned as a
// *domain.ConfigurationError.
func (r Request) resolve(tables *domain.Tables) (domain.Inputs, error) {
	crop, err := tables.Crop(r.Crop)
	if err != nil {
		return domain.Inputs{}, err
	}
	stage, err := domain.ParseStage(r.Stage)
	if err != nil {
		return domain.Inputs{}, err
	}
	soil, err := tables.Soil(r.Soil)
	if err != nil {
		return domain.Inputs{}, err
	}
	method, err := tables.Method(r.Method)
	if err != nil {
		return domain.Inputs{}, err
	}
	last, err := r.lastIrrigation()
	if err != nil {
		return domain.Inputs{}, err
	}

	rootDepth := r.RootDepthMeters
	if rootDepth == 0 {
		rootDepth = crop.DefaultRootDepthMeters
	}

	return domain.Inputs{
		Crop:            crop,
		Stage:           stage,
		Soil:            soil,
		Method:          method,
		RootDepthMeters: rootDepth,
		LastIrrigation:  last,
	}, nil
}
