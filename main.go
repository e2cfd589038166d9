package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lsh/config"
	"lsh/internal/audit"
	"lsh/internal/auth"
	"lsh/internal/census"
	"lsh/internal/gate"
	"lsh/internal/network"
	"lsh/internal/shell"
)

var version = "dev"

var (
	flagConfig   string
	flagEnvFile  string
	flagLogLevel string
	flagBcrypt   bool
	flagID       string
)

var rootCmd = &cobra.Command{
	Use:   "lsh",
	Short: "Interactive shell behind an allow-list, session limit and password gate",
	Long: `lsh checks the connecting address from SSH_CLIENT against an allow list,
refuses to start while another instance is running, asks for an id and
password, and only then starts an interactive command loop. Every accepted
or rejected attempt is appended to an audit log.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runShell,
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Read a password and print the value to store in the credential file",
	Args:  cobra.NoArgs,
	RunE:  runEncode,
}

var lastlogCmd = &cobra.Command{
	Use:   "lastlog",
	Short: "Print the recorded last login of every account",
	Args:  cobra.NoArgs,
	RunE:  runLastlog,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lsh %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (optional)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "dotenv file with LSH_* overrides (optional)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (env: LOG_LEVEL)")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging(flagLogLevel)
	}

	encodeCmd.Flags().BoolVar(&flagBcrypt, "bcrypt", false, "Store a bcrypt hash instead of the legacy encoding")
	encodeCmd.Flags().StringVar(&flagID, "id", "", "Print a complete credential line for this id")

	rootCmd.AddCommand(encodeCmd, lastlogCmd, versionCmd)
}

func main() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("lsh %s\n", version))
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		// Keep the interactive session readable unless asked otherwise
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	}

	log.Logger = log.With().Str("session", uuid.NewString()).Logger()
}

func runShell(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(flagConfig, flagEnvFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	raw, ok := os.LookupEnv(settings.EndpointEnv)
	if !ok {
		log.Fatal().Str("env", settings.EndpointEnv).Msg("Remote endpoint not set")
	}
	ep, err := network.ParseEndpoint(raw)
	if err != nil {
		log.Fatal().Err(err).Str("env", settings.EndpointEnv).Msg("Failed to parse remote endpoint")
	}

	log.Debug().
		Str("address", ep.Address).
		Str("client_port", ep.ClientPort).
		Str("server_port", ep.ServerPort).
		Str("dir", settings.Dir).
		Msg("Starting session gate")

	in := bufio.NewReader(os.Stdin)
	auditLog := audit.New(settings.Path(settings.AcceptedLog), settings.Path(settings.RejectedLog))
	g := gate.New(settings, census.NewProcFS(), auditLog, in, int(os.Stdin.Fd()), os.Stdout)

	var store *auth.LastLoginStore
	if settings.LastLoginDB != "" {
		store, err = auth.OpenLastLoginStore(settings.Path(settings.LastLoginDB))
		if err != nil {
			log.Warn().Err(err).Str("db_path", settings.LastLoginDB).Msg("Last-login records disabled")
		} else {
			g.LastLogins = store
		}
	}

	decision, err := g.Authorize(ep)
	if store != nil {
		store.Close()
	}
	if err != nil {
		log.Fatal().Err(err).Str("address", ep.Address).Msg("Session gate failed")
	}
	if !decision.Granted {
		os.Exit(0)
	}

	launcher := &shell.ExecLauncher{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	if err := shell.New(in, os.Stdout, os.Stderr, launcher).Run(); err != nil {
		log.Fatal().Err(err).Msg("Command loop failed")
	}
	return nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	fmt.Fprint(os.Stderr, config.PasswordPrompt)
	pr := auth.NewPasswordReader(bufio.NewReader(os.Stdin), int(os.Stdin.Fd()), config.MaxPasswordLen)
	password, err := pr.ReadPassword()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	value := auth.Encode(password)
	if flagBcrypt {
		value, err = auth.HashPassword(password)
		if err != nil {
			return err
		}
	}

	if flagID != "" {
		fmt.Print(auth.Credential{ID: flagID, Encoded: value}.Line())
		return nil
	}
	fmt.Println(value)
	return nil
}

func runLastlog(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(flagConfig, flagEnvFile)
	if err != nil {
		return err
	}
	if settings.LastLoginDB == "" {
		return errors.New("no last-login database configured (set lastlog_db or LSH_LASTLOG_DB)")
	}

	store, err := auth.OpenLastLoginStore(settings.Path(settings.LastLoginDB))
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.List()
	if err != nil {
		return err
	}
	for _, rec := range recs {
		fmt.Printf("%-16s %-40s %s\n", rec.ID, rec.Address, rec.At.Format(audit.TimeLayout))
	}
	return nil
}
