package entry

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"sellout-dashboard/internal/models"
)

var (
	ErrUnknownKind = errors.New("unknown dataset kind")

	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)

	validate = newValidator()
)

// newValidator reports payload fields by their JSON names so errors match
// the form inputs.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// ValidationError lists the required fields a submission left empty or
// filled with an out-of-range value.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "data tidak lengkap atau tidak valid: " + strings.Join(e.Fields, ", ")
}

type TrainingPayload struct {
	Timestamp      *string `json:"timestamp"`
	Month          string  `json:"bulan" validate:"required"`
	Region         string  `json:"region" validate:"required"`
	BranchArea     string  `json:"cabang_area" validate:"required"`
	SupervisorName string  `json:"nama_atasan_langsung" validate:"required"`
	Subject        string  `json:"materi_pelatihan" validate:"required"`
	FullName       string  `json:"nama_lengkap_sesuai_ktp" validate:"required"`
	Position       string  `json:"jabatan" validate:"required"`
	TotalScore     float64 `json:"total_nilai"`
	EssayScore     float64 `json:"nilai_essay"`
	Total          float64 `json:"total"`
}

type ColorisPayload struct {
	Timestamp      *string `json:"timestamp"`
	Month          string  `json:"bulan" validate:"required"`
	Region         string  `json:"region" validate:"required"`
	Branch         string  `json:"cabang" validate:"required"`
	Subject        string  `json:"materi" validate:"required"`
	SupervisorName string  `json:"nama_atasan_langsung" validate:"required"`
	StoreName      string  `json:"nama_toko" validate:"required"`
	FullName       string  `json:"nama_lengkap_sesuai_ktp" validate:"required"`
	ChoiceScore    float64 `json:"nilai_pg"`
	FinalScore     float64 `json:"nilai_akhir"`
	Total          float64 `json:"total"`
}

type SelloutPayload struct {
	Year           int     `json:"tahun" validate:"min=1"`
	Month          int     `json:"bulan" validate:"min=1,max=12"`
	Region         string  `json:"reg" validate:"required"`
	Branch         string  `json:"cabang" validate:"required"`
	Outlet         string  `json:"outlet" validate:"required"`
	ColoristName   string  `json:"nama_colorist" validate:"required"`
	RegistrationNo string  `json:"no_reg" validate:"required"`
	Channel        string  `json:"chl" validate:"required"`
	SelloutTT      float64 `json:"sellout_tt"`
	SelloutRM      float64 `json:"sellout_rm"`
	TotalSellout   float64 `json:"total_sellout"`
}

// Builder turns submitted forms into upstream create payloads.
type Builder struct {
	// Location interprets datetime-local values, which carry no zone.
	Location *time.Location
}

func NewBuilder(loc *time.Location) *Builder {
	if loc == nil {
		loc = time.Local
	}
	return &Builder{Location: loc}
}

// Build validates form against the fields of kind and returns the JSON
// payload for the upstream create endpoint.
func (b *Builder) Build(kind models.DatasetKind, form url.Values) (any, error) {
	fields := Fields(kind)
	if fields == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	payload := b.payload(kind, form)
	if err := check(fields, form, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (b *Builder) payload(kind models.DatasetKind, form url.Values) any {
	get := func(name string) string { return strings.TrimSpace(form.Get(name)) }

	switch kind {
	case models.KindTraining:
		return TrainingPayload{
			Timestamp:      b.timestamp(get("timestamp")),
			Month:          get("bulan"),
			Region:         get("region"),
			BranchArea:     get("cabang_area"),
			SupervisorName: get("nama_atasan_langsung"),
			Subject:        get("materi_pelatihan"),
			FullName:       get("nama_lengkap_sesuai_ktp"),
			Position:       get("jabatan"),
			TotalScore:     ParseScore(get("total_nilai")),
			EssayScore:     ParseNumber(get("nilai_essay")),
			Total:          ParseNumber(get("total")),
		}
	case models.KindColoris:
		return ColorisPayload{
			Timestamp:      b.timestamp(get("timestamp")),
			Month:          get("bulan"),
			Region:         get("region"),
			Branch:         get("cabang"),
			Subject:        get("materi"),
			SupervisorName: get("nama_atasan_langsung"),
			StoreName:      get("nama_toko"),
			FullName:       get("nama_lengkap_sesuai_ktp"),
			ChoiceScore:    ParseScore(get("nilai_pg")),
			FinalScore:     ParseNumber(get("nilai_akhir")),
			Total:          ParseNumber(get("total")),
		}
	default:
		return SelloutPayload{
			Year:           ParseInt(get("tahun")),
			Month:          ParseInt(get("bulan")),
			Region:         get("reg"),
			Branch:         get("cabang"),
			Outlet:         get("outlet"),
			ColoristName:   get("nama_colorist"),
			RegistrationNo: get("no_reg"),
			Channel:        get("chl"),
			SelloutTT:      ParseNumber(get("sellout_tt")),
			SelloutRM:      ParseNumber(get("sellout_rm")),
			TotalSellout:   ParseNumber(get("total_sellout")),
		}
	}
}

// check reports every form field left empty plus every payload field that
// breaks its validate tag.
func check(fields []Field, form url.Values, payload any) error {
	var invalid []string
	for _, f := range fields {
		if strings.TrimSpace(form.Get(f.Name)) == "" {
			invalid = append(invalid, f.Name)
		}
	}

	if err := validate.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate payload: %w", err)
		}
		for _, fe := range verrs {
			if !slices.Contains(invalid, fe.Field()) {
				invalid = append(invalid, fe.Field())
			}
		}
	}

	if len(invalid) > 0 {
		return &ValidationError{Fields: invalid}
	}
	return nil
}

// timestamp converts a datetime-local value to RFC 3339 UTC with
// milliseconds. Empty or unparseable input yields nil.
func (b *Builder) timestamp(v string) *string {
	if v == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, v, b.Location); err == nil {
			s := t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
			return &s
		}
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		s := t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
		return &s
	}
	return nil
}

// ParseScore reads a score written either as "90" or as "90/100". Only the
// numerator counts. Unparseable input is 0.
func ParseScore(s string) float64 {
	if num, _, ok := strings.Cut(s, "/"); ok {
		s = num
	}
	return ParseNumber(s)
}

// ParseNumber reads the leading decimal number of s, so "12.5kg" is 12.5.
// Input without a leading number is 0.
func ParseNumber(s string) float64 {
	m := leadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseInt reads the leading base-10 integer of s. Input without one is 0.
func ParseInt(s string) int {
	m := leadingInt.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return v
}
