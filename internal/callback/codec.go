// Package callback encodes inline-button actions into the compact
// DOMAIN-SUBJECTID-VERB token Telegram echoes back on a press, and decodes
// received tokens into typed actions. Nothing else in the bot touches raw tokens.
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Delimiter separates the three token fields. No field value may contain it.
const Delimiter = "-"

// MaxTokenLen is Telegram's callback_data ceiling in bytes.
const MaxTokenLen = 64

// Domain groups the buttons one handler renders.
type Domain string

const (
	DomainRestaurantMenu        Domain = "RestaurantMenu"
	DomainRestaurantFieldPicker Domain = "RestaurantFieldPicker"
)

func (d Domain) Valid() bool {
	return d == DomainRestaurantMenu || d == DomainRestaurantFieldPicker
}

// Verbs the handlers currently render. The codec does not restrict verbs to
// this list; consumers reject what they do not know.
const (
	VerbUpdate     = "update"
	VerbNewDishes  = "new_dishes"
	VerbListDishes = "list_dishes"
	VerbDelete     = "delete"
	VerbName       = "name"
	VerbAddress    = "address"
)

// Action is a decoded button press.
type Action struct {
	Domain    Domain
	SubjectID int64
	Verb      string
}

func RestaurantMenu(restaurantID int64, verb string) Action {
	return Action{Domain: DomainRestaurantMenu, SubjectID: restaurantID, Verb: verb}
}

func RestaurantFieldPicker(restaurantID int64, field string) Action {
	return Action{Domain: DomainRestaurantFieldPicker, SubjectID: restaurantID, Verb: field}
}

var (
	ErrEncode = errors.New("callback encode")
	ErrDecode = errors.New("callback decode")

	ErrMalformedToken   = errors.New("malformed token")
	ErrUnknownDomain    = errors.New("unknown domain")
	ErrInvalidSubjectID = errors.New("invalid subject id")
	ErrInvalidVerb      = errors.New("invalid verb")
	ErrTokenTooLong     = errors.New("token too long")
)

// codecError carries both the class (ErrEncode/ErrDecode) and the reason, so
// errors.Is works for either.
type codecError struct {
	class  error
	reason error
	token  string
}

func (e *codecError) Error() string {
	return fmt.Sprintf("%v: %v: %q", e.class, e.reason, e.token)
}

func (e *codecError) Is(target error) bool { return target == e.class }

func (e *codecError) Unwrap() error { return e.reason }

// Encode renders a as "domain-subjectID-verb".
func Encode(a Action) (string, error) {
	if !a.Domain.Valid() {
		return "", &codecError{class: ErrEncode, reason: ErrUnknownDomain, token: string(a.Domain)}
	}
	if a.SubjectID < 0 {
		// a leading minus sign would read as an extra field
		return "", &codecError{class: ErrEncode, reason: ErrInvalidSubjectID, token: strconv.FormatInt(a.SubjectID, 10)}
	}
	if a.Verb == "" || strings.Contains(a.Verb, Delimiter) {
		return "", &codecError{class: ErrEncode, reason: ErrInvalidVerb, token: a.Verb}
	}

	token := string(a.Domain) + Delimiter + strconv.FormatInt(a.SubjectID, 10) + Delimiter + a.Verb
	if len(token) > MaxTokenLen {
		return "", &codecError{class: ErrEncode, reason: ErrTokenTooLong, token: token}
	}
	return token, nil
}

// MustEncode is for statically known actions in button builders and tests.
func MustEncode(a Action) string {
	token, err := Encode(a)
	if err != nil {
		panic(err)
	}
	return token
}

// Decode parses a received token. Unknown verbs are passed through.
func Decode(token string) (Action, error) {
	if len(token) > MaxTokenLen {
		return Action{}, &codecError{class: ErrDecode, reason: ErrTokenTooLong, token: token}
	}
	parts := strings.Split(token, Delimiter)
	if len(parts) != 3 {
		return Action{}, &codecError{class: ErrDecode, reason: ErrMalformedToken, token: token}
	}

	domain := Domain(parts[0])
	if !domain.Valid() {
		return Action{}, &codecError{class: ErrDecode, reason: ErrUnknownDomain, token: token}
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Action{}, &codecError{class: ErrDecode, reason: ErrInvalidSubjectID, token: token}
	}
	return Action{Domain: domain, SubjectID: id, Verb: parts[2]}, nil
}

// Reason returns a short label for metrics and logs.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, ErrUnknownDomain):
		return "unknown_domain"
	case errors.Is(err, ErrInvalidSubjectID):
		return "invalid_subject_id"
	case errors.Is(err, ErrInvalidVerb):
		return "invalid_verb"
	case errors.Is(err, ErrTokenTooLong):
		return "token_too_long"
	default:
		return "unknown"
	}
}
