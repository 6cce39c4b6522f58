package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sambigeara/healthperm/pkg/session"
)

const helpText = `commands:
  show                 redraw the screen
  allow <permission>   grant one permission (e.g. allow READ_STEPS)
  deny <permission>    revoke one permission
  all on|off           grant or revoke every permission
  reload               fetch the catalog again
  quit                 leave
`

// repl interprets one line of input at a time. It runs on the control
// goroutine.
type repl struct {
	out    io.Writer
	host   *session.Host
	reload func()
}

func parseLine(line string) (verb string, args []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// exec runs one command and reports whether the user asked to quit.
func (r *repl) exec(line string) (quit bool) {
	verb, args := parseLine(line)

	switch verb {
	case "":
		return false
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprint(r.out, helpText)
		return false
	case "reload":
		r.reload()
		return false
	}

	sess := r.host.Current()
	if sess == nil {
		fmt.Fprintln(r.out, "no catalog loaded yet")
		return false
	}
	scr := sess.Screen()

	switch verb {
	case "show":
		scr.Render(r.out)
		return false
	case "allow", "deny":
		if len(args) == 0 {
			fmt.Fprintf(r.out, "usage: %s <permission>\n", verb)
			return false
		}
		for _, name := range args {
			if err := scr.Press(name, verb == "allow"); err != nil {
				fmt.Fprintln(r.out, err)
			}
		}
	case "all":
		value, err := parseOnOff(args)
		if err != nil {
			fmt.Fprintln(r.out, err)
			return false
		}
		if !scr.PressAll(value) {
			fmt.Fprintln(r.out, "allow all is unavailable: no permissions requested")
		}
	default:
		fmt.Fprintf(r.out, "unknown command %q (try help)\n", verb)
		return false
	}

	if scr.Dirty() {
		scr.Render(r.out)
	}
	return false
}

func parseOnOff(args []string) (bool, error) {
	if len(args) != 1 {
		return false, errors.New("usage: all on|off")
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", args[0])
}
