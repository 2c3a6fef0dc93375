package main

import (
	"context"
	"os"
	"runtime"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/toonketels/jack-compiler/compiler"
)

func main() {
	xmlCmd := &cli.Command{
		Name:        "xml",
		Description: "write the parse tree of each source as .xml",
		Action:      xmlAct,
		Args:        cli.Args{},
		Flags:       flags(),
	}

	vmCmd := &cli.Command{
		Name:        "vm",
		Description: "compile each source into .vm instructions",
		Action:      vmAct,
		Args:        cli.Args{},
		Flags:       flags(),
	}

	app := &cli.Command{
		Name:        "jackc",
		Description: "jackc compiles .jack files or directories of them",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "tlog verbosity topics"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			xmlCmd,
			vmCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func flags() []*cli.Flag {
	return []*cli.Flag{
		cli.NewFlag("out,o", "", "output directory, next to the source if empty"),
		cli.NewFlag("jobs,j", runtime.NumCPU(), "files compiled in parallel"),
	}
}

func before(c *cli.Command) error {
	w := tlog.NewConsoleWriter(os.Stderr, tlog.LstdFlags)

	tlog.DefaultLogger = tlog.New(w)

	if v := c.String("verbosity"); v != "" {
		tlog.SetVerbosity(v)
	}

	return nil
}

func xmlAct(c *cli.Command) error {
	return run(c, compiler.XML)
}

func vmAct(c *cli.Command) error {
	return run(c, compiler.VM)
}

func run(c *cli.Command, target compiler.Target) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) == 0 {
		return errors.New("no sources given")
	}

	files, err := compiler.Sources(c.Args)
	if err != nil {
		return errors.Wrap(err, "sources")
	}

	dir := c.String("out")
	if dir != "" {
		err = os.MkdirAll(dir, 0o755)
		if err != nil {
			return errors.Wrap(err, "output dir")
		}
	}

	for _, f := range files {
		tlog.Printw("file selected", "name", f, "target", target)
	}

	res := compiler.CompileFiles(ctx, files, target, c.Int("jobs"))

	failed := 0

	for _, r := range res {
		if r.Err != nil {
			tlog.Printw("compile failed", "name", r.Name, "err", r.Err)
			failed++

			continue
		}

		out := compiler.OutputName(r.Name, dir, target)

		err = os.WriteFile(out, r.Out, 0o644)
		if err != nil {
			tlog.Printw("write failed", "name", out, "err", err)
			failed++

			continue
		}

		tlog.Printw("created", "name", out, "size", len(r.Out))
	}

	if failed != 0 {
		return errors.New("%d of %d files failed", failed, len(res))
	}

	return nil
}
