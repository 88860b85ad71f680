package schema

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Binding holds the flag values registered for a schema.
type Binding struct {
	flags  []Flag
	values map[string]any // property -> pointer to the flag value
}

// Register adds one pflag per schema flag to fs.
func Register(fs *pflag.FlagSet, flags []Flag) *Binding {
	b := &Binding{flags: flags, values: make(map[string]any, len(flags))}
	for _, f := range flags {
		switch f.Kind {
		case KindInt:
			def, _ := f.Default.(float64)
			b.values[f.Property] = fs.Int(f.Name, int(def), f.Usage())
		case KindFloat:
			def, _ := f.Default.(float64)
			b.values[f.Property] = fs.Float64(f.Name, def, f.Usage())
		case KindBool:
			def, _ := f.Default.(bool)
			b.values[f.Property] = fs.Bool(f.Name, def, f.Usage())
		case KindStrings:
			b.values[f.Property] = fs.StringSlice(f.Name, nil, f.Usage())
		default:
			def, _ := f.Default.(string)
			b.values[f.Property] = fs.String(f.Name, def, f.Usage())
		}
	}
	return b
}

// Arguments collects the tool arguments from parsed flags. Flags the user did
// not set are omitted unless the schema gives them a default. Enum values are
// checked here so the error names the flag.
func (b *Binding) Arguments(fs *pflag.FlagSet) (map[string]any, error) {
	args := make(map[string]any)
	for _, f := range b.flags {
		if !fs.Changed(f.Name) && f.Default == nil {
			continue
		}
		var v any
		switch p := b.values[f.Property].(type) {
		case *int:
			v = *p
		case *float64:
			v = *p
		case *bool:
			v = *p
		case *[]string:
			v = *p
		case *string:
			v = *p
		}
		if len(f.Enum) > 0 && !contains(f.Enum, fmt.Sprint(v)) {
			return nil, fmt.Errorf("invalid value %q for --%s: must be one of %s", fmt.Sprint(v), f.Name, strings.Join(f.Enum, ", "))
		}
		args[f.Property] = v
	}
	return args, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
