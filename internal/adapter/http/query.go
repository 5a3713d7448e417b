package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/couchcryptid/tokyo-flow-dashboard/internal/dashboard"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/domain"
	"github.com/go-playground/validator/v10"
)

type mapParams struct {
	Category string `query:"category" validate:"omitempty,max=32"`
	Start    string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string `query:"end" validate:"omitempty,datetime=2006-01-02"`
}

type seriesParams struct {
	Category string   `query:"category" validate:"omitempty,max=32"`
	Areas    []string `query:"area" validate:"max=100,dive,required,max=64"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})
	return v
}

// parseMapQuery fills a missing start or end with the dataset's span. A
// reversed range is passed through and yields an empty result.
func (s *Server) parseMapQuery(r *http.Request) (dashboard.MapQuery, error) {
	values := r.URL.Query()
	p := mapParams{
		Category: values.Get("category"),
		Start:    values.Get("start"),
		End:      values.Get("end"),
	}
	if err := s.check(p); err != nil {
		return dashboard.MapQuery{}, err
	}

	q := dashboard.MapQuery{Category: parseCategory(p.Category)}
	if p.Start == "" || p.End == "" {
		if opts, err := s.views.Options(); err == nil && opts.MinDate != nil {
			q.Start, q.End = *opts.MinDate, *opts.MaxDate
		}
	}
	var err error
	if p.Start != "" {
		if q.Start, err = domain.ParseDate(p.Start); err != nil {
			return dashboard.MapQuery{}, err
		}
	}
	if p.End != "" {
		if q.End, err = domain.ParseDate(p.End); err != nil {
			return dashboard.MapQuery{}, err
		}
	}
	return q, nil
}

// parseSeriesQuery maps one area parameter to OneArea and repeated
// parameters to AreaList. No area parameter selects nothing.
func (s *Server) parseSeriesQuery(r *http.Request) (dashboard.SeriesQuery, error) {
	values := r.URL.Query()
	p := seriesParams{
		Category: values.Get("category"),
		Areas:    values["area"],
	}
	if err := s.check(p); err != nil {
		return dashboard.SeriesQuery{}, err
	}

	q := dashboard.SeriesQuery{Category: parseCategory(p.Category)}
	switch len(p.Areas) {
	case 0:
		q.Areas = domain.AreaList{}
	case 1:
		q.Areas = domain.OneArea(p.Areas[0])
	default:
		q.Areas = domain.AreaList(p.Areas)
	}
	return q, nil
}

func parseCategory(s string) domain.Category {
	if s == "" {
		return domain.CategoryAll
	}
	return domain.ParseCategory(s)
}

func (s *Server) check(params any) error {
	err := s.validate.Struct(params)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "datetime":
		return fmt.Sprintf("%s: %q is not a YYYY-MM-DD date", fe.Field(), fe.Value())
	case "required":
		return fmt.Sprintf("%s: must not be empty", fe.Field())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s: at most %s values", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s: longer than %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag())
	}
}
