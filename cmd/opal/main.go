package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"opal/internal/analyze"
	"opal/internal/cache"
	"opal/internal/codegen"
	"opal/internal/evaluate"
	"opal/internal/jit"
	"opal/internal/object"
	"opal/internal/repl"
	"opal/internal/runtime"
	"opal/internal/util"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"

	help    bool
	version bool
	// logging
	logLevel string
	logFile  string
	// evaluation config
	target      string
	cachePath   string
	configPath  string
	evalExpr    string
	allowNative bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// evaluator config
	flag.StringVar(&target, "target", "", "Compilation target: native or source")
	flag.StringVar(&cachePath, "cache", "", "Declaration cache path (defaults to in-memory)")
	flag.StringVar(&configPath, "config", "", "Path to a toml configuration file")
	flag.StringVar(&evalExpr, "e", "", "Evaluate the given expression and exit")
	flag.BoolVar(&allowNative, "allow-native-return", false, "Let wrapped native-typed expressions return unboxed values")
	// log config
	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(logLevel),
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(configureLogWriter(), loggerOptions)))

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	cfg, err := util.LoadConfiguration(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg.Version = Version
	cfg.BuildDate = BuildDate
	cfg.Commit = Commit
	if target != "" {
		cfg.Target = target
	}
	if cachePath != "" {
		cfg.CachePath = cachePath
	}
	if allowNative {
		cfg.AllowNativeReturn = true
	}

	os.Exit(run(cfg))
}

func run(cfg util.Configuration) int {
	ctx := runtime.NewContext()
	evaluate.InstallCore(ctx)
	registerHost(ctx)

	if cfg.AllowNativeReturn {
		if v := ctx.FindVar(runtime.CoreNs + "/" + runtime.AllowNativeReturnVar); v != nil {
			v.BindRoot(object.TRUE)
		}
	}

	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open declaration cache: %v\n", err)
		return 1
	}
	defer store.Close()

	session := jit.NewProcessor(ctx, store)
	analyzer := analyze.NewProcessor(ctx)
	eval := evaluate.NewProcessor(ctx, analyzer, session, targetFromString(cfg.Target))

	if evalExpr != "" {
		return evalAndPrint(eval, evalExpr)
	}

	if file := flag.Arg(0); file != "" {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", file, err)
			return 1
		}
		if _, err := eval.EvalString(string(src)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	r := &repl.Repl{Ctx: ctx, Eval: eval, HistoryFile: cfg.HistoryFile}
	if err := r.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func evalAndPrint(eval *evaluate.Processor, src string) int {
	res, err := eval.EvalString(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(res.Inspect())
	return 0
}

// registerHost exposes a small set of host values to the native interop
// forms.
func registerHost(ctx *runtime.Context) {
	ctx.Host.RegisterValue("time-millis", func() int64 {
		return time.Now().UnixMilli()
	})
	ctx.Host.RegisterValue("getenv", os.Getenv)
	ctx.Host.RegisterValue("host-version", Version)
}

func targetFromString(s string) codegen.Target {
	if s == "source" {
		return codegen.TargetSource
	}
	return codegen.TargetNative
}

func configureLogWriter() *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("opal version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: opal [options] [filename]

Options:
  -e <expr>            Evaluate the given expression and exit.
  -target <name>       Compilation target: native or source. Default is 'native'.
  -cache <path>        Declaration cache path. Default keeps the cache in memory.
  -config <path>       Path to a toml configuration file.
  -allow-native-return Let wrapped native-typed expressions return unboxed values.
  -help                Display this help information and exit.
  -version             Display version information and exit.
  -log-level <level>   Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>     Specify a log file to write logs. Default is stderr.

Details:
This is the opal programming language.

Examples:
  opal                          Start the interactive repl
  opal myfile.opal              Execute the provided opal file
  opal -e "(+ 1 2)"             Evaluate an expression and print the result

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
