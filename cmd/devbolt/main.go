// Package main is the devbolt command-line tool.
//
// Subcommands:
//
//	init      write a starter flags file
//	validate  check a flags file for structural errors
//	list      print the flags in a file with their global state
//	eval      evaluate one flag against a context built from flags
//
// Every subcommand exits non-zero on failure and prints errors to stderr.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ModelRed/devbolt"
	"github.com/ModelRed/devbolt/internal/logging"
)

const starterConfig = `# devbolt feature flags
# Docs: https://github.com/ModelRed/devbolt
new_checkout:
  enabled: true
  description: New checkout flow
  rollout:
    percentage: 25
  targeting:
    - attribute: email
      operator: ends_with
      value: "@example.com"
      enabled: true
      description: Internal users always see it
`

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "eval":
		err = runEval(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `devbolt %s - file-based feature flags

usage:
  devbolt init [-path FILE]
  devbolt validate FILE
  devbolt list FILE
  devbolt eval FILE FLAG [-user ID] [-email EMAIL] [-env ENV] [-attr k=v]...
`, devbolt.Version)
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", ".devbolt/flags.yml", "where to write the starter flags file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := os.Stat(*path); err == nil {
		return fmt.Errorf("%s already exists", *path)
	}
	if dir := filepath.Dir(*path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(*path, []byte(starterConfig), 0o644); err != nil {
		return err
	}
	fmt.Println("wrote", *path)
	return nil
}

func runValidate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: devbolt validate FILE")
	}
	cfg, err := devbolt.ParseFile(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s: OK (%d flags)\n", args[0], len(cfg))
	return nil
}

func runList(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: devbolt list FILE")
	}
	engine, err := devbolt.EngineFromFile(args[0], logging.Discard(), false)
	if err != nil {
		return err
	}
	for _, name := range engine.AllFlagNames() {
		cfg, _ := engine.FlagConfig(name)
		state := "off"
		if cfg.Enabled {
			state = "on"
		}
		if cfg.Description != "" {
			fmt.Printf("%-40s %-3s %s\n", name, state, cfg.Description)
		} else {
			fmt.Printf("%-40s %s\n", name, state)
		}
	}
	return nil
}

type attrFlags map[string]devbolt.Value

func (a attrFlags) String() string { return "" }

func (a attrFlags) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	if !ok || key == "" {
		return fmt.Errorf("attribute must be k=v, got %q", raw)
	}
	a[key] = devbolt.StringValue(value)
	return nil
}

func runEval(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: devbolt eval FILE FLAG [options]")
	}
	file, flagName := args[0], args[1]

	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	user := fs.String("user", "", "userId attribute")
	email := fs.String("email", "", "email attribute")
	env := fs.String("env", "", "environment attribute")
	attrs := attrFlags{}
	fs.Var(attrs, "attr", "custom attribute k=v (repeatable)")
	logLevel := fs.String("log-level", "error", "log level")
	if err := fs.Parse(args[2:]); err != nil {
		return err
	}

	engine, err := devbolt.EngineFromFile(file, logging.New(*logLevel), true)
	if err != nil {
		return err
	}

	ctx := devbolt.EvaluationContext{
		UserID:      *user,
		Email:       *email,
		Environment: *env,
	}
	if len(attrs) > 0 {
		ctx.CustomAttributes = attrs
	}

	result, err := engine.Evaluate(flagName, ctx)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
