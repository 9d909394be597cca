package errs

import (
	"fmt"
)

// Info is the error value passed across every component boundary. It
// always carries a Kind so callers can branch on failure class without
// string matching, plus enough context to find the call site that
// raised it.
type Info struct {
	Kind    Kind
	Message string
	Source  string // file:line or component name that raised this
	Context map[string]string
	cause   error
}

// New builds an Info with no wrapped cause.
func New(kind Kind, source, message string) *Info {
	return &Info{Kind: kind, Message: message, Source: source}
}

// Wrap builds an Info that wraps an existing error, following the
// "%w" wrapping idiom used throughout the ambient stack.
func Wrap(kind Kind, source, message string, cause error) *Info {
	return &Info{Kind: kind, Message: message, Source: source, cause: cause}
}

// WithContext returns a copy of i with a context key/value attached.
func (i *Info) WithContext(key, value string) *Info {
	cp := *i
	cp.Context = make(map[string]string, len(i.Context)+1)
	for k, v := range i.Context {
		cp.Context[k] = v
	}
	cp.Context[key] = value
	return &cp
}

func (i *Info) Error() string {
	if i.Source != "" {
		if i.cause != nil {
			return fmt.Sprintf("%s: %s: %s: %v", i.Source, i.Kind, i.Message, i.cause)
		}
		return fmt.Sprintf("%s: %s: %s", i.Source, i.Kind, i.Message)
	}
	if i.cause != nil {
		return fmt.Sprintf("%s: %s: %v", i.Kind, i.Message, i.cause)
	}
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}

func (i *Info) Unwrap() error { return i.cause }

// Is lets errors.Is match on Kind alone, e.g. errors.Is(err, errs.New(errs.NotFound, "", "")).
func (i *Info) Is(target error) bool {
	other, ok := target.(*Info)
	if !ok {
		return false
	}
	return other.Kind == i.Kind
}
