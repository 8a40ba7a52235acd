package logging

import (
	"fmt"
	"reflect"
)

// sprintf formats like fmt.Sprintf, except that error and fmt.Stringer
// arguments are rendered up front. fmt recovers panics raised by those
// methods and writes them into the output; here they reach the caller.
func sprintf(format string, args ...any) string {
	rendered := make([]any, len(args))
	for i, arg := range args {
		rendered[i] = render(arg)
	}
	return fmt.Sprintf(format, rendered...)
}

func render(arg any) any {
	if isNilPointer(arg) {
		return arg
	}
	switch v := arg.(type) {
	case fmt.Formatter:
		return arg
	case error:
		return renderedArg{orig: arg, text: v.Error()}
	case fmt.Stringer:
		return renderedArg{orig: arg, text: v.String()}
	default:
		return arg
	}
}

func isNilPointer(arg any) bool {
	v := reflect.ValueOf(arg)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// renderedArg carries the text of an argument whose method already ran.
type renderedArg struct {
	orig any
	text string
}

func (r renderedArg) Format(st fmt.State, verb rune) {
	directive := fmt.FormatString(st, verb)
	switch {
	case verb == 'v' && st.Flag('#'):
		_, _ = fmt.Fprintf(st, directive, r.orig)
	case verb == 'v', verb == 's', verb == 'q', verb == 'x', verb == 'X':
		_, _ = fmt.Fprintf(st, directive, r.text)
	default:
		_, _ = fmt.Fprintf(st, directive, r.orig)
	}
}
