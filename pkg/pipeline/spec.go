package pipeline

import (
	"strconv"
	"strings"
)

// Spec is a parsed middleware specifier: "name" or "name:arg1,arg2".
type Spec struct {
	Name string
	Args []string
}

// ParseSpec splits a raw specifier into a name and its arguments.
func ParseSpec(raw string) Spec {
	name, args, found := strings.Cut(strings.TrimSpace(raw), ":")
	s := Spec{Name: strings.TrimSpace(name)}
	if !found || args == "" {
		return s
	}
	for a := range strings.SplitSeq(args, ",") {
		s.Args = append(s.Args, strings.TrimSpace(a))
	}
	return s
}

// String renders the spec back to its raw form.
func (s Spec) String() string {
	if len(s.Args) == 0 {
		return s.Name
	}
	return s.Name + ":" + strings.Join(s.Args, ",")
}

// Values returns the arguments cast to their natural types:
// "true"/"false" become bool, integer strings become int.
func (s Spec) Values() []any {
	if len(s.Args) == 0 {
		return nil
	}
	out := make([]any, len(s.Args))
	for i, a := range s.Args {
		out[i] = castArg(a)
	}
	return out
}

func castArg(a string) any {
	switch strings.ToLower(a) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(a); err == nil {
		return n
	}
	return a
}
