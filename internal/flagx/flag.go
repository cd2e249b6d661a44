// Package flagx lets several std flag sets share one command line. Each set
// parses only the flags it owns, picked out with Pick.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Pick returns the flags of args named in names, each followed by its value
// when the value is a separate argument. Names are given without dashes and
// match both "-n" and "--n". A value is either the "=value" suffix or the
// next argument when that one does not start with a dash. Positional
// arguments and unknown flags are dropped; "--" ends the scan.
func Pick(args []string, names ...string) []string {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.TrimLeft(n, "-")] = true
	}

	picked := []string{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, inline := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !want[name] {
			continue
		}
		picked = append(picked, arg)

		if !inline && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			picked = append(picked, args[i+1])
			i++
		}
	}
	return picked
}

// ConfigPath returns the file named by the last -c or -config flag in args,
// or "" when there is none.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(Pick(args, "c", "config"))

	return path
}
