package cmd

import (
	"bufio"
	"os"

	logging "github.com/inconshreveable/log15"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"boscoin.io/xcb/cmd/xcbtrace/common"
	"boscoin.io/xcb/pkg/rawdb"
	"boscoin.io/xcb/pkg/support/logger"
	"boscoin.io/xcb/pkg/transport/record"
)

const defaultLogLevel logging.Lvl = logging.LvlInfo

var (
	flagDB        string = common.GetENVValue("XCBTRACE_DB", "xcbtrace.db")
	flagArchive   string
	flagLogLevel  string = common.GetENVValue("XCBTRACE_LOG_LEVEL", defaultLogLevel.String())
	flagLogOutput string = common.GetENVValue("XCBTRACE_LOG_OUTPUT", "")
	flagFormat           = common.NewFlagFormat(common.GetENVValue("XCBTRACE_FORMAT", "prettyjson"))
)

var (
	logLevel logging.Lvl
	log      logging.Logger = logging.New("module", "main")
)

var rootCmd = &cobra.Command{
	Use:   "xcbtrace",
	Short: "Inspect recorded X11 client sessions",
	PersistentPreRun: func(c *cobra.Command, args []string) {
		parseFlagsRoot(c)
	},
	Run: func(c *cobra.Command, args []string) {
		if len(args) < 1 {
			c.Usage()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", flagDB, "leveldb directory holding the recorded sessions")
	rootCmd.PersistentFlags().StringVar(&flagArchive, "archive", flagArchive, "read sessions from an exported archive instead of --db")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", flagLogLevel, "log level, {crit, error, warn, info, debug}")
	rootCmd.PersistentFlags().StringVar(&flagLogOutput, "log-output", flagLogOutput, "set log output file")
	rootCmd.PersistentFlags().Var(flagFormat, "format", "output format, {json, prettyjson, yaml}")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		common.PrintFlagsError(rootCmd, "", err)
	}
}

func SetArgs(s []string) {
	rootCmd.SetArgs(s)
}

func parseFlagsRoot(c *cobra.Command) {
	var err error

	if logLevel, err = logging.LvlFromString(flagLogLevel); err != nil {
		common.PrintFlagsError(c, "--log-level", err)
	}

	var formatter logging.Format
	if isatty.IsTerminal(os.Stderr.Fd()) {
		formatter = logging.TerminalFormat()
	} else {
		formatter = logging.JsonFormatEx(false, true)
	}
	logHandler := logging.StreamHandler(os.Stderr, formatter)

	if len(flagLogOutput) > 0 {
		if logHandler, err = logging.FileHandler(flagLogOutput, logging.JsonFormat()); err != nil {
			common.PrintFlagsError(c, "--log-output", err)
		}
	}
	log.SetHandler(logging.LvlFilterHandler(logLevel, logHandler))

	// the library loggers share the level; crit has no counterpart there
	libLevel, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		libLevel = logger.LevelError
	}
	logger.SetLevel(libLevel)
	logger.SetOutput(os.Stderr)

	log.Debug(
		"parsed flags:",
		"\n\tdb", flagDB,
		"\n\tarchive", flagArchive,
		"\n\tformat", flagFormat,
		"\n\tlog-level", flagLogLevel,
		"\n\tlog-output", flagLogOutput,
	)
}

// openStore opens the leveldb at --db, or with --archive an in-memory store
// holding the archived session.
func openStore() (*record.Store, func(), error) {
	if len(flagArchive) > 0 {
		return openArchive(flagArchive)
	}

	db, err := rawdb.NewLevelDb(flagDB)
	if err != nil {
		return nil, nil, err
	}
	return record.NewStore(db), func() { db.Close() }, nil
}

func openArchive(path string) (*record.Store, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	db := rawdb.NewMemoryDb()
	store := record.NewStore(db)
	session, err := store.Import(bufio.NewReader(f))
	if err != nil {
		return nil, nil, err
	}
	log.Debug("loaded archive", "file", path, "session", session.ID)
	return store, func() { db.Close() }, nil
}
