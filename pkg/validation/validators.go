package validation

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// E164-like phone: optional +, digits 7-15 length
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

var (
	schema     *validator.Validate
	schemaOnce sync.Once
)

// New returns a validator with the candidate schema rules registered.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	RegisterValidators(v)
	return v
}

// Schema returns the process-wide validator shared by the API and the forms.
func Schema() *validator.Validate {
	schemaOnce.Do(func() {
		schema = New()
	})
	return schema
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("numeric_text", NumericText)
	_ = v.RegisterValidation("not_blank", NotBlank)
}

// NotBlank rejects strings made only of whitespace
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidPhone validates a phone number structure
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(val)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if isEmoji(r) {
			return false
		}
	}
	return true
}

// emojiRanges covers the pictographic blocks plus the joiners and selectors
// that only appear inside emoji sequences.
var emojiRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200d, Hi: 0x200d, Stride: 1},
		{Lo: 0x2300, Hi: 0x23ff, Stride: 1},
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1},
		{Lo: 0x2b00, Hi: 0x2bff, Stride: 1},
		{Lo: 0xfe0f, Hi: 0xfe0f, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1},
		{Lo: 0xe0020, Hi: 0xe007f, Stride: 1},
	},
}

func isEmoji(r rune) bool {
	return unicode.Is(emojiRanges, r)
}

// NumericText accepts an empty string or a whole number written as text.
// The optional param "min max" bounds the parsed value.
func NumericText(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	if val == "" {
		return true
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return false
	}
	bounds := strings.Fields(fl.Param())
	if len(bounds) == 2 {
		lo, errLo := strconv.Atoi(bounds[0])
		hi, errHi := strconv.Atoi(bounds[1])
		if errLo == nil && errHi == nil && (n < lo || n > hi) {
			return false
		}
	}
	return true
}
