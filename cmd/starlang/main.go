package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	starlang "github.com/tefla/StarLang-sub002"
)

const (
	appName     = "starlang"
	historyFile = ".starlang_history"
	promptMain  = ">>> "
	promptCont  = "... "
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(starlang.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`StarLang %s

Usage:
  %s run <file.star> [-config opts.yaml] [-watch] [-fps n]   Run a script.
  %s repl [-config opts.yaml]                                Start the REPL.
  %s version                                                 Print the version.

With -watch, the script keeps running: the engine ticks at -fps frames per
second and hot-reloads the file whenever it changes on disk.
`, starlang.Version, appName, appName, appName)
}

func buildInterp(configPath string) (*starlang.Interp, error) {
	var opts []starlang.Option
	if configPath != "" {
		o, err := starlang.LoadOptions(configPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, starlang.WithOptions(o))
	}
	return starlang.New(opts...), nil
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML options file")
	watch := fs.Bool("watch", false, "tick continuously and hot-reload on change")
	fps := fs.Float64("fps", 30, "tick rate in watch mode")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.star> [-config opts.yaml] [-watch] [-fps n]\n", appName)
		return 2
	}
	file := fs.Arg(0)

	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	in, err := buildInterp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}

	if err := in.Load(string(src), filepath.Base(file)); err != nil {
		fmt.Fprintln(os.Stderr, starlang.WrapErrorWithSource(err, string(src)))
		return 1
	}
	if !*watch {
		return 0
	}
	return watchLoop(in, file, string(src), *fps)
}

// watchLoop ticks the interpreter and reloads the script when its mtime
// changes. Runs until interrupted.
func watchLoop(in *starlang.Interp, file, src string, fps float64) int {
	if fps <= 0 {
		fps = 30
	}
	interval := time.Duration(float64(time.Second) / fps)
	dt := interval.Seconds()

	lastMod := mtime(file)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-sigc:
			return 0
		case <-ticker.C:
			if mod := mtime(file); mod.After(lastMod) {
				lastMod = mod
				raw, err := os.ReadFile(file)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: cannot re-read %s: %v\n", appName, file, err)
					continue
				}
				src = string(raw)
				if err := in.Reload(src, filepath.Base(file)); err != nil {
					fmt.Fprintln(os.Stderr, starlang.WrapErrorWithSource(err, src))
					continue
				}
				fmt.Fprintf(os.Stderr, "%s: reloaded %s\n", appName, file)
			}
			if err := in.Tick(dt); err != nil {
				fmt.Fprintln(os.Stderr, starlang.WrapErrorWithSource(err, src))
			}
		}
	}
}

func mtime(file string) time.Time {
	st, err := os.Stat(file)
	if err != nil {
		return time.Time{}
	}
	return st.ModTime()
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML options file")
	fs.Parse(args)

	fmt.Printf("StarLang %s REPL\nCtrl+D exits. Type :quit to exit.\n", starlang.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	in, err := buildInterp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}

	for {
		code, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if strings.ToLower(trimmed) == ":quit" {
				return 0
			}
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}

		v, err := in.Eval(code, "repl")
		if err != nil {
			fmt.Fprintln(os.Stderr, starlang.WrapErrorWithSource(err, code))
			continue
		}
		if v.Tag != starlang.VTNull {
			fmt.Println(v.String())
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readInput collects lines until the source parses or fails with a real
// error; incomplete parses prompt for a continuation line.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, perr := starlang.Parse(src, "repl"); starlang.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
