// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rsc.io/remap/classfile"
	"rsc.io/remap/diff"
	"rsc.io/remap/hierarchy"
	"rsc.io/remap/remap"
)

func main() {
	log.SetPrefix("remap: ")
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		var u usageError
		if errors.As(err, &u) {
			log.Print(err)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// A command is one invocation of remap.
type command struct {
	opts     options
	inputs   []string
	out      string
	showDiff bool
	dump     bool
	verbose  bool

	Stdout io.Writer
	Stderr io.Writer
}

func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	c, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}
	c.Stdout, c.Stderr = stdout, stderr
	return c.run(ctx)
}

func parseArgs(args []string, stderr io.Writer) (*command, error) {
	c := new(command)
	fs := flag.NewFlagSet("remap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: remap [flags] input...\n")
		fs.PrintDefaults()
	}

	configFile := fs.String("config", "", "read settings from TOML `file`")
	mappingFile := fs.String("mapping", "", "read rename tables from `file` (Tiny or YAML)")
	from := fs.String("from", "", "rename from `namespace` of a Tiny mapping")
	to := fs.String("to", "", "rename to `namespace` of a Tiny mapping")
	reverse := fs.Bool("reverse", false, "apply the mapping backwards")
	checkAccess := fs.Bool("check-access", false, "report package-private references that renaming breaks")
	skipLocals := fs.Bool("skip-locals", false, "do not rename arguments and local variables")
	renameInvalid := fs.Bool("rename-invalid", false, "replace argument and local names that are not valid identifiers")
	strict := fs.Bool("strict", false, "fail on inconsistent method bodies instead of skipping them")
	jobs := fs.Int("jobs", 0, "remap up to `n` classes at once (default all CPUs)")
	fs.StringVar(&c.out, "o", "", "write output to `path`, a directory or .jar/.zip archive")
	fs.BoolVar(&c.showDiff, "diff", false, "show a diff of class listings instead of writing output")
	fs.BoolVar(&c.dump, "dump", false, "print listings of the remapped classes instead of writing output")
	fs.BoolVar(&c.verbose, "v", false, "log progress")

	if err := fs.Parse(args); err != nil {
		return nil, usagef("%v", err)
	}
	if *configFile != "" {
		if err := loadConfig(*configFile, &c.opts); err != nil {
			return nil, err
		}
	}
	// Flags given on the command line override the config file.
	fs.Visit(func(f *flag.Flag) {
		o := &c.opts
		switch f.Name {
		case "mapping":
			o.Mapping.File = *mappingFile
		case "from":
			o.Mapping.From = *from
		case "to":
			o.Mapping.To = *to
		case "reverse":
			o.Mapping.Reverse = *reverse
		case "check-access":
			o.Remap.CheckPackageAccess = *checkAccess
		case "skip-locals":
			o.Remap.SkipLocalMapping = *skipLocals
		case "rename-invalid":
			o.Remap.RenameInvalidLocals = *renameInvalid
		case "strict":
			o.Remap.Strict = *strict
		case "jobs":
			o.Run.Jobs = *jobs
		}
	})

	c.inputs = fs.Args()
	switch {
	case len(c.inputs) == 0:
		return nil, usagef("no inputs")
	case c.showDiff && c.dump:
		return nil, usagef("-diff and -dump are exclusive")
	case c.out == "" && !c.showDiff && !c.dump:
		return nil, usagef("-o is required to write output")
	}
	return c, nil
}

// newLogger returns a console logger writing to w without timestamps,
// at debug level when verbose and warning level otherwise.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.TimeKey = ""
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.AddSync(w), level))
}

func (c *command) run(ctx context.Context) error {
	log := newLogger(c.Stderr, c.verbose)
	defer log.Sync()

	tables, err := c.opts.tables()
	if err != nil {
		return err
	}
	log.Debug("loaded mapping", zap.String("file", c.opts.Mapping.File), zap.Int("entries", tables.Len()))

	var inputs []*input
	var units []*remap.Unit
	var classes []*classfile.Class
	where := make(map[string]string)
	for _, file := range c.inputs {
		in, err := readInput(file)
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
		for _, e := range in.entries {
			if e.unit == nil {
				continue
			}
			units = append(units, e.unit)
			// Multi-release jars carry several versions of one class;
			// the hierarchy sees the base version.
			if strings.HasPrefix(e.name, "META-INF/versions/") {
				continue
			}
			if prev, ok := where[e.orig]; ok {
				return conflictf("class "+e.orig, "defined in both %s and %s", prev, e.unit.Path)
			}
			where[e.orig] = e.unit.Path
			classes = append(classes, e.unit.Class)
		}
	}

	var before []string
	if c.showDiff {
		for _, u := range units {
			before = append(before, classfile.Dump(u.Class))
		}
	}

	g := hierarchy.Build(classes, tables)
	res := remap.NewResolver(g, tables, remap.WithAccessCheck(packageAccess(g, tables)))
	stats, err := remap.Run(ctx, res, c.opts.config(log), units, c.opts.Run.Jobs)
	log.Info("remapped classes", zap.Int64("done", stats.Done), zap.Int64("failed", stats.Failed))
	if err != nil {
		return err
	}

	switch {
	case c.showDiff:
		i := 0
		for _, in := range inputs {
			for _, e := range in.entries {
				if e.unit == nil {
					continue
				}
				d, err := diff.Diff(e.name, []byte(before[i]), e.outName(), []byte(classfile.Dump(e.unit.Class)))
				if err != nil {
					return err
				}
				c.Stdout.Write(d)
				i++
			}
		}
		return nil

	case c.dump:
		for _, u := range units {
			io.WriteString(c.Stdout, classfile.Dump(u.Class))
		}
		return nil
	}
	return writeOutput(c.out, inputs, log)
}
