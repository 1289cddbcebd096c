package shell

import (
	"fmt"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/josephlewis42/sish/core/pipeline"
)

const pipeSeparator = "|"

// IsBlank reports whether line holds nothing to run.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// Tokenize splits a single command into its argument vector.
func Tokenize(command string) ([]string, error) {
	tokens, err := shlex.Split(command, true)
	if err != nil {
		return nil, &SyntaxError{Err: err}
	}
	return tokens, nil
}

// ParseLine splits line into pipeline stages on every "|" and tokenizes each
// stage. A blank line yields a nil Pipeline and no error. Commands holding
// more than argLimit tokens are rejected when argLimit is positive.
func ParseLine(line string, argLimit int) (pipeline.Pipeline, error) {
	if IsBlank(line) {
		return nil, nil
	}

	stages := strings.Split(line, pipeSeparator)
	out := make(pipeline.Pipeline, 0, len(stages))
	for _, stage := range stages {
		args, err := Tokenize(strings.TrimSpace(stage))
		if err != nil {
			return nil, err
		}
		switch {
		case len(args) == 0:
			return nil, &ArgumentError{Cmd: pipeSeparator, Msg: "missing command in pipeline"}
		case argLimit > 0 && len(args) > argLimit:
			return nil, &ArgumentError{Cmd: args[0], Msg: fmt.Sprintf("too many arguments (limit %d)", argLimit)}
		}
		out = append(out, pipeline.Command(args))
	}
	return out, nil
}
