// shortgroupctl talks to a running ShortGroup instance over its activation
// pipe: bring the window to the front, or launch a shortcut by id without
// touching the UI.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"shortgroup/internal/ipc"
)

const usageText = `Usage: shortgroupctl [-pipe NAME] COMMAND

Commands:
  activate         bring the ShortGroup window to the front (default)
  open SHORTCUT    launch the shortcut with the given id

Flags:
  -pipe NAME       override the activation pipe name
`

func main() {
	logger := log.New(os.Stderr, "[shortgroupctl] ", log.LstdFlags|log.Lmsgprefix)

	flags := flag.NewFlagSet("shortgroupctl", flag.ExitOnError)
	pipeName := flags.String("pipe", "", "activation pipe name override")
	flags.Usage = func() { fmt.Fprint(os.Stderr, usageText) }
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	req, err := buildRequest(flags.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "shortgroupctl: %v\n\n", err)
		flags.Usage()
		os.Exit(2)
	}

	resp, err := ipc.Send(*pipeName, req)
	if err != nil {
		if ipc.IsConnectionError(err) {
			logger.Fatalf("no running ShortGroup instance found: %v", err)
		}
		logger.Fatalf("request failed: %v", err)
	}
	if !resp.OK {
		logger.Fatalf("rejected: %s", resp.Error)
	}
}

// buildRequest maps the command line to an activation request. No arguments
// means activate, matching what a bare second launch of the app sends.
func buildRequest(args []string) (ipc.ActivationRequest, error) {
	if len(args) == 0 {
		return ipc.ActivationRequest{Action: ipc.ActionActivateWindow}, nil
	}
	switch args[0] {
	case "activate":
		if len(args) > 1 {
			return ipc.ActivationRequest{}, errors.New("activate takes no arguments")
		}
		return ipc.ActivationRequest{Action: ipc.ActionActivateWindow}, nil
	case "open":
		if len(args) != 2 || args[1] == "" {
			return ipc.ActivationRequest{}, errors.New("open requires exactly one shortcut id")
		}
		return ipc.ActivationRequest{Action: ipc.ActionOpenShortcut, ShortcutID: args[1]}, nil
	default:
		return ipc.ActivationRequest{}, fmt.Errorf("unknown command %q", args[0])
	}
}
