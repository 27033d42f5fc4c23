// Command sindctl reúne as rotinas de operação do banco do sindicato:
// inspeção, contagens, migração, carga de dados e manutenção de cadastros.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sindicatorest/internal/config"
	"sindicatorest/internal/repositories/sqldb"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	jsonOutput bool
	envFile    string
	timeout    time.Duration

	logger *zap.Logger

	// openDB abre o banco configurado no ambiente; os testes trocam por SQLite
	openDB = func() (*sqldb.Internal, func(), error) {
		db, err := sqldb.NewInternal(sqldb.ConfigFromEnv())
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	}
)

var rootCmd = &cobra.Command{
	Use:   "sindctl",
	Short: "Ferramentas de operação da API do sindicato",
	Long: `sindctl executa rotinas de manutenção sobre o mesmo banco da API.

A conexão usa as variáveis DB_DRIVER, DATABASE_URL e DB_* (lidas também
do arquivo informado em --env-file).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}

		if logger != nil {
			return nil
		}
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Mostra a versão",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sindctl %s\n", config.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log de depuração")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "saída em JSON")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "arquivo .env opcional")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "tempo máximo da operação")

	rootCmd.AddCommand(versionCmd)
	addDBCommands(rootCmd)
	addDataCommands(rootCmd)
}

// withDB abre o banco e executa fn com um contexto que respeita --timeout e Ctrl+C
func withDB(cmd *cobra.Command, fn func(ctx context.Context, db *sqldb.Internal) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, closeDB, err := openDB()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeDB()
	logger.Debug("database connected", zap.String("driver", db.Driver()))

	return fn(ctx, db)
}

// printJSON escreve v indentado quando --json está ligado
func printJSON(cmd *cobra.Command, v interface{}) (bool, error) {
	if !jsonOutput {
		return false, nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
