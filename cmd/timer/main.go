// timer is a small local CLI for the draft-entry timer. State lives in a
// JSON file under the user config dir, so elapsed time survives restarts;
// only the converted hours ever reach the API, at save time.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"timesheet.service/internal/timer"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: timer <command> [draft-key]

Commands:
  start [key]   start (or resume) the timer for a draft
  stop [key]    stop the timer and print the hours to credit
  status [key]  print elapsed time
  watch [key]   tick elapsed time once a second until interrupted
  reset [key]   discard the timer

The draft key defaults to the unsaved-draft sentinel; pass a saved entry id
to track an existing draft.`)
	os.Exit(2)
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}

	command := flag.Arg(0)
	key := timer.DraftKeyNew
	if flag.NArg() > 1 {
		key = flag.Arg(1)
	}

	store, err := timer.OpenStore(storePath())
	if err != nil {
		fmt.Fprintln(os.Stderr, "timer:", err)
		os.Exit(1)
	}

	switch command {
	case "start":
		state, err := store.Start(key)
		exitOn(err)
		fmt.Printf("timer running for %s (%s accrued)\n", key, formatSeconds(state.ElapsedSeconds))
	case "stop":
		state, hours, err := store.Stop(key)
		exitOn(err)
		fmt.Printf("timer stopped for %s: %s accrued, %.1fh to credit\n", key, formatSeconds(state.ElapsedSeconds), hours)
	case "status":
		elapsed, ok := store.Elapsed(key)
		if !ok {
			fmt.Printf("no timer for %s\n", key)
			return
		}
		state, _ := store.Get(key)
		running := "stopped"
		if state.Running {
			running = "running"
		}
		fmt.Printf("%s: %s (%s)\n", key, formatSeconds(elapsed), running)
	case "watch":
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		store.Tick(ctx, func(k string, elapsedSeconds int64) {
			if k == key {
				fmt.Printf("\r%s: %s ", k, formatSeconds(elapsedSeconds))
			}
		})
		fmt.Println()
	case "reset":
		exitOn(store.Reset(key))
		fmt.Printf("timer cleared for %s\n", key)
	default:
		usage()
	}
}

func storePath() string {
	if path := os.Getenv("TIMER_STORE"); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "timesheet", "timers.json")
}

func formatSeconds(s int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "timer:", err)
		os.Exit(1)
	}
}
