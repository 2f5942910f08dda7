package common

import "github.com/ValentinKolb/apocrypha/lib/engine"

// ParseRequestFlags strips leading -c/--context and -s/--strict tokens off a
// raw request token list and returns the remaining query tokens plus the
// engine.Options they select. Grounded on apocrypha/server.py's
// _parse_arguments, which consumes these two flags off the front of the
// request before the query proper is dispatched - per SPEC_FULL.md, this is
// a request-parsing-layer concern, not an engine operator, so it lives here
// rather than in lib/engine.
func ParseRequestFlags(tokens []string) ([]string, engine.Options) {
	var opts engine.Options
	i := 0
	for i < len(tokens) {
		switch tokens[i] {
		case "-c", "--context":
			opts.AddContext = true
		case "-s", "--strict":
			opts.Strict = true
		default:
			return tokens[i:], opts
		}
		i++
	}
	return tokens[i:], opts
}

// EncodeRequestFlags prepends the wire tokens for opts to tokens, the
// inverse of ParseRequestFlags. Used by the query client to build a request.
func EncodeRequestFlags(tokens []string, opts engine.Options) []string {
	var flags []string
	if opts.AddContext {
		flags = append(flags, "--context")
	}
	if opts.Strict {
		flags = append(flags, "--strict")
	}
	return append(flags, tokens...)
}
