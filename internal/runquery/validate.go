package runquery

import (
	"regexp"

	"github.com/pkg/errors"
)

var codePattern = regexp.MustCompile(`^E[0-9]{3}$`)

// Validate reports the first problem that makes q uncompilable.
func Validate(q Query) error {
	if q.Filter == nil {
		return nil
	}
	return validatePredicate(q.Filter)
}

func validatePredicate(p Predicate) error {
	switch pred := p.(type) {
	case Equals:
		return validateEquals(pred)
	case *Equals:
		return validateEquals(*pred)
	case HasCode:
		return validateCode(pred.Code)
	case *HasCode:
		return validateCode(pred.Code)
	case And:
		return validateAnd(pred)
	case *And:
		return validateAnd(*pred)
	case nil:
		return errors.New("nil predicate")
	default:
		return errors.Errorf("unsupported predicate type: %T", p)
	}
}

func validateEquals(eq Equals) error {
	switch eq.Field {
	case FieldUnit, FieldFingerprint, FieldIRVersion:
		if _, ok := eq.Value.(string); !ok {
			return errors.Errorf("field %s: want string value, got %T", eq.Field, eq.Value)
		}
	case FieldValid:
		if _, ok := eq.Value.(bool); !ok {
			return errors.Errorf("field %s: want bool value, got %T", eq.Field, eq.Value)
		}
	default:
		return errors.Errorf("unknown field %q", eq.Field)
	}
	return nil
}

func validateCode(code string) error {
	if !codePattern.MatchString(code) {
		return errors.Errorf("invalid diagnostic code %q", code)
	}
	return nil
}

func validateAnd(and And) error {
	for i, p := range and.Predicates {
		if err := validatePredicate(p); err != nil {
			return errors.Wrapf(err, "and[%d]", i)
		}
	}
	return nil
}
