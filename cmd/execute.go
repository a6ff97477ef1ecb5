package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ComedicChimera/olive"
	"github.com/xyproto/env/v2"

	"github.com/sanchopanca/for-else/common"
	"github.com/sanchopanca/for-else/mods"
	"github.com/sanchopanca/for-else/report"
	"github.com/sanchopanca/for-else/runner"
	"github.com/sanchopanca/for-else/util"
	"github.com/sanchopanca/for-else/watch"
)

// Execute is the main entry point for the `forelse` CLI utility.  It returns
// the exit code of the process.
func Execute() int {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("forelse", "forelse expands for loops with else clauses into plain Go", true)
	cli.AddSelectorArg("loglevel", "ll", "the log level", false, []string{"silent", "error", "warn", "verbose"})

	expandCmd := cli.AddSubcommand("expand", "expand source files into Go files", true)
	expandCmd.AddPrimaryArg("path", "the source file or directory to expand", true)
	expandCmd.AddFlag("debug", "d", "dump the loops found in each file")
	expandCmd.AddFlag("print", "p", "print expanded files instead of writing them")

	checkCmd := cli.AddSubcommand("check", "report errors without writing any file", true)
	checkCmd.AddPrimaryArg("path", "the source file or directory to check", true)

	runCmd := cli.AddSubcommand("run", "expand and interpret a main package file", true)
	runCmd.AddPrimaryArg("file", "the source file to run", true)

	watchCmd := cli.AddSubcommand("watch", "expand source files whenever they change", true)
	watchCmd.AddPrimaryArg("path", "the directory to watch", true)

	initCmd := cli.AddSubcommand("init", "write a default configuration file", true)
	initCmd.AddPrimaryArg("dir", "the directory to write the configuration to", false)

	cli.AddSubcommand("version", "print the forelse version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.ReportFatal("%s", err)
	}

	// the log level argument takes precedence over the environment
	levelName := env.Str("FORELSE_LOGLEVEL", "verbose")
	if arg, ok := result.Arguments["loglevel"]; ok {
		levelName = arg.(string)
	}

	logLevel, ok := report.LogLevelFromName(levelName)
	if !ok {
		report.ReportFatal("unknown log level `%s`", levelName)
	}
	report.InitReporter(logLevel)

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "expand":
		mode := ModeWrite
		if subResult.HasFlag("print") {
			mode = ModePrint
		}

		return execExpandCommand(subResult, mode, subResult.HasFlag("debug"))
	case "check":
		return execExpandCommand(subResult, ModeCheck, false)
	case "run":
		return execRunCommand(subResult)
	case "watch":
		return execWatchCommand(subResult)
	case "init":
		return execInitCommand(subResult)
	case "version":
		report.ReportInfo("forelse version", common.ForElseVersion)
	}

	return 0
}

// loadProject loads the configuration and source files of the given path.
func loadProject(path string) (*mods.Config, []*mods.SourceFile) {
	finfo, err := os.Stat(path)
	if err != nil {
		report.ReportFatal("%s", err)
	}

	dir := path
	if !finfo.IsDir() {
		dir = filepath.Dir(path)
	}

	cfg, err := mods.LoadConfig(dir)
	if err != nil {
		report.ReportFatal("%s", err)
	}

	sources, err := mods.CollectSources(path, cfg)
	if err != nil {
		report.ReportFatal("%s", err)
	}

	return cfg, sources
}

// execExpandCommand executes the `expand` and `check` subcommands.
func execExpandCommand(result *olive.ArgParseResult, mode int, debug bool) int {
	path, _ := result.PrimaryArg()
	cfg, sources := loadProject(path)

	header := "expand"
	if mode == ModeCheck {
		header = "check"
	}

	// printed output must not be mixed with the banners
	if mode != ModePrint {
		report.ReportHeader(header, len(sources))
	}

	d := NewDriver(cfg, mode, os.Stdout)
	d.Debug = debug

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if mode != ModePrint {
		report.ReportBeginPhase("Expanding")
	}

	written, err := d.Run(ctx, sources)
	report.ReportEndPhase()

	if err != nil {
		report.ReportStdError("expand", err)
	}

	if mode != ModePrint {
		report.ReportFinished(written)
	}

	if report.AnyErrors() {
		return 1
	}

	return 0
}

// execRunCommand executes the `run` subcommand: the file is expanded in
// memory and interpreted.
func execRunCommand(result *olive.ArgParseResult) int {
	path, _ := result.PrimaryArg()

	finfo, err := os.Stat(path)
	if err == nil && finfo.IsDir() {
		report.ReportFatal("`run` expects a single source file")
	}

	cfg, sources := loadProject(path)

	res, ok := NewDriver(cfg, ModeCheck, os.Stdout).ExpandFile(sources[0])
	if !ok {
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := runner.Run(ctx, sources[0].AbsPath, res.Source, runner.Options{}); err != nil {
		report.ReportStdError(sources[0].ReprPath, err)
		return 1
	}

	return 0
}

// execWatchCommand executes the `watch` subcommand.  Every source file is
// expanded once, then again whenever it changes, until interrupted.
func execWatchCommand(result *olive.ArgParseResult) int {
	path, _ := result.PrimaryArg()
	cfg, sources := loadProject(path)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rebuild := func(sources []*mods.SourceFile) {
		report.ResetCounts()
		report.ReportHeader("expand", len(sources))

		written, err := NewDriver(cfg, ModeWrite, os.Stdout).Run(ctx, sources)
		if err != nil && ctx.Err() == nil {
			report.ReportStdError("watch", err)
		}

		report.ReportFinished(written)
	}

	rebuild(sources)

	root, err := filepath.Abs(path)
	if err != nil {
		report.ReportFatal("%s", err)
	}

	if finfo, err := os.Stat(root); err == nil && !finfo.IsDir() {
		root = filepath.Dir(root)
	}

	dirs := []string{root}
	for _, sf := range sources {
		if !util.Contains(dirs, sf.Dir) {
			dirs = append(dirs, sf.Dir)
		}
	}

	w, err := watch.New(dirs, cfg.SourceExt, watch.DefaultDebounce, func(paths []string) {
		var changed []*mods.SourceFile
		for _, p := range paths {
			sfs, err := mods.CollectSources(p, cfg)
			if err != nil {
				report.ReportStdError(p, err)
				continue
			}

			changed = append(changed, sfs...)
		}

		if len(changed) > 0 {
			rebuild(changed)
		}
	})
	if err != nil {
		report.ReportFatal("failed to watch %s: %s", path, err)
	}

	w.Start(ctx)
	report.ReportInfo("Watching", fmt.Sprintf("%d directories (interrupt to stop)", len(dirs)))

	<-ctx.Done()
	if err := w.Close(); err != nil {
		report.ReportStdError("watch", err)
		return 1
	}

	return 0
}

// execInitCommand executes the `init` subcommand.
func execInitCommand(result *olive.ArgParseResult) int {
	dir, ok := result.PrimaryArg()
	if !ok {
		dir = "."
	}

	path, err := mods.InitConfig(dir)
	if err != nil {
		report.ReportFatal("%s", err)
	}

	report.ReportInfo("Created", path)
	return 0
}
