package validation

import (
	"errors"
	"math"
	"strconv"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-product-search/internal/apierror"
)

// rule tags reported by the struct-level validation, in reporting order.
const (
	tagQueryString = "query_string"
	tagQueryLength = "query_length"
	tagPageNumber  = "page_number"
	tagPageMin     = "page_min"
)

var ruleMessages = map[string]string{
	tagQueryString: "Query must be a string.",
	tagQueryLength: "Query length must be between 3 and 10 characters.",
	tagPageNumber:  "Page must be a number.",
	tagPageMin:     "Page must be greater than or equal to 1.",
}

// maxPage caps the normalized page so offset math stays in range.
const maxPage = 1 << 30

// New returns a configured validator with the search input rules registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(searchInputStructValidation, SearchInput{})
	return v
}

// searchInputStructValidation checks every rule; nothing short-circuits except
// a type failure skipping its own range check.
func searchInputStructValidation(sl validatorv10.StructLevel) {
	in := sl.Current().Interface().(SearchInput)

	if q, ok := in.Query.(string); !ok {
		sl.ReportError(in.Query, "query", "Query", tagQueryString, "")
	} else if err := sl.Validator().Var(q, "min=3,max=10"); err != nil {
		sl.ReportError(in.Query, "query", "Query", tagQueryLength, "3-10")
	}

	if p, ok := pageNumber(in.Page); !ok {
		sl.ReportError(in.Page, "page", "Page", tagPageNumber, "")
	} else if err := sl.Validator().Var(p, "gte=1"); err != nil {
		sl.ReportError(in.Page, "page", "Page", tagPageMin, "1")
	}
}

// Validate runs the rules and returns the normalized request, or a validation
// error whose message joins every violated rule with a single space.
func Validate(v *validatorv10.Validate, in SearchInput) (SearchRequest, error) {
	if err := v.Struct(in); err != nil {
		var ve validatorv10.ValidationErrors
		if !errors.As(err, &ve) {
			return SearchRequest{}, err
		}
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, ruleMessages[fe.Tag()])
		}
		return SearchRequest{}, apierror.Validation(strings.Join(msgs, " "))
	}

	p, _ := pageNumber(in.Page)
	page := int(math.Min(math.Floor(p), maxPage))
	return SearchRequest{Query: in.Query.(string), Page: page}, nil
}

// pageNumber accepts numeric values and numeric strings. XML bodies only ever
// produce strings.
func pageNumber(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
