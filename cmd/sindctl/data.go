package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/elsearch"
	"sindicatorest/internal/repositories/legacy"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/importer"
	"sindicatorest/internal/service/socios"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	seedFile      string
	fixNames      bool
	dryRun        bool
	legacyView    string
	skipIndex     bool
	adminEmail    string
	adminNome     string
	adminPass     string
	resetPassword bool

	// openLegacy abre a view Oracle; os testes servem linhas em memória
	openLegacy = func(view string) (legacy.Source, error) {
		cfg := legacy.ConfigFromEnv()
		if view != "" {
			cfg.View = view
		}
		return legacy.NewOracleSource(cfg)
	}

	// openIndex conecta ao Elasticsearch da busca de sócios
	openIndex = func() (socioIndex, error) {
		return elsearch.NewClient(&elsearch.Config{
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			Timeout:      30 * time.Second,
			IndexName:    envOr("ELASTICSEARCH_INDEX", elsearch.SociosIndex),
		})
	}
)

// socioIndex é a parte do cliente Elasticsearch usada na reindexação
type socioIndex interface {
	elsearch.SocioSearcher
	RecreateSocioIndex(ctx context.Context) error
}

func addDataCommands(root *cobra.Command) {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Grava registros de exemplo a partir de um arquivo YAML",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "arquivo YAML com uma lista por entidade")
	_ = seedCmd.MarkFlagRequired("file")

	namesCmd := &cobra.Command{
		Use:   "check-names",
		Short: "Aponta nomes de sócios fora do padrão e, com --fix, corrige os que podem ser corrigidos",
		Args:  cobra.NoArgs,
		RunE:  runCheckNames,
	}
	namesCmd.Flags().BoolVar(&fixNames, "fix", false, "grava os nomes corrigidos")

	importCmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Importa empresas e sócios da view Oracle do cadastro antigo",
		Long: `Lê a view configurada em ORACLE_VIEW (ou --view) com ORACLE_USER,
ORACLE_PASSWORD e ORACLE_CONNECT_STRING. Empresas são criadas pelo CNPJ e
sócios são atualizados pelo CPF; linhas inválidas são relatadas e puladas.`,
		Args: cobra.NoArgs,
		RunE: runImportLegacy,
	}
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "valida as linhas sem gravar")
	importCmd.Flags().StringVar(&legacyView, "view", "", "view de origem (padrão ORACLE_VIEW)")
	importCmd.Flags().BoolVar(&skipIndex, "skip-index", false, "não atualiza o índice de busca")

	adminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Cria o perfil Administrador e um usuário administrador",
		Args:  cobra.NoArgs,
		RunE:  runCreateAdmin,
	}
	adminCmd.Flags().StringVar(&adminEmail, "email", "", "e-mail do administrador")
	adminCmd.Flags().StringVar(&adminNome, "nome", "Administrador", "nome do administrador")
	adminCmd.Flags().StringVar(&adminPass, "password", "", "senha (padrão SINDCTL_ADMIN_PASSWORD)")
	adminCmd.Flags().BoolVar(&resetPassword, "reset-password", false, "troca a senha quando o usuário já existe")
	_ = adminCmd.MarkFlagRequired("email")

	reindexCmd := &cobra.Command{
		Use:   "reindex-search",
		Short: "Recria o índice de busca de sócios a partir do banco",
		Args:  cobra.NoArgs,
		RunE:  runReindex,
	}

	root.AddCommand(seedCmd, namesCmd, importCmd, adminCmd, reindexCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(seedFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return withDB(cmd, func(ctx context.Context, db *sqldb.Internal) error {
		result, err := importer.Seed(ctx, db, f)
		if err != nil {
			return err
		}
		logger.Info("seed finished", zap.String("file", seedFile), zap.Any("records", result))
		if ok, err := printJSON(cmd, result); ok {
			return err
		}
		for _, entity := range importer.SeedOrder {
			if n := result[entity]; n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", entity, n)
			}
		}
		return nil
	})
}

func runCheckNames(cmd *cobra.Command, args []string) error {
	return withDB(cmd, func(ctx context.Context, db *sqldb.Internal) error {
		found, fixed, err := socios.CheckNames(ctx, db, fixNames)
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, map[string]interface{}{"problems": found, "fixed": fixed}); ok {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNOME\tSUGESTÃO\tPROBLEMAS")
		for _, n := range found {
			sugestao := n.Sugestao
			if !n.Corrigivel {
				sugestao = "-"
			}
			fmt.Fprintf(w, "%s\t%q\t%s\t%s\n", n.ID, n.Nome, sugestao, strings.Join(n.Problemas, ", "))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d nomes com problemas, %d corrigidos\n", len(found), fixed)
		return nil
	})
}

func runImportLegacy(cmd *cobra.Command, args []string) error {
	src, err := openLegacy(legacyView)
	if err != nil {
		return err
	}
	defer src.Close()

	return withDB(cmd, func(ctx context.Context, db *sqldb.Internal) error {
		im := &importer.Importer{DB: db, Logger: zapLogger{logger}, DryRun: dryRun}
		if !skipIndex && !dryRun {
			idx, err := openIndex()
			if err != nil {
				logger.Warn("search index unavailable, importing without it", zap.Error(err))
			} else {
				im.Search = idx
			}
		}

		report, err := im.Run(ctx, src)
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, report); ok {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "linhas: %d\ncriados: %d\natualizados: %d\nempresas novas: %d\nsem CPF: %d\nerros: %d\n",
			report.Rows, report.Created, report.Updated, report.Empresas, report.Skipped, len(report.Errors))
		for _, e := range report.Errors {
			fmt.Fprintf(out, "  linha %d (cpf %s): %s\n", e.Row, e.CPF, e.Error)
		}
		return nil
	})
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	password := adminPass
	if password == "" {
		password = os.Getenv("SINDCTL_ADMIN_PASSWORD")
	}
	if len(password) < 8 {
		return errors.New("password must have at least 8 characters (use --password or SINDCTL_ADMIN_PASSWORD)")
	}

	return withDB(cmd, func(ctx context.Context, db *sqldb.Internal) error {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u, created, err := createAdmin(ctx, db, adminEmail, adminNome, string(hash))
		if err != nil {
			return err
		}
		logger.Info("admin ready", zap.String("email", u.Email), zap.Bool("created", created))
		if ok, err := printJSON(cmd, map[string]interface{}{"id": u.ID, "email": u.Email, "created": created}); ok {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "administrador criado: %s (%s)\n", u.Email, u.ID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "senha redefinida: %s (%s)\n", u.Email, u.ID)
		}
		return nil
	})
}

// createAdmin garante o perfil Administrador e o usuário. Um usuário
// existente só tem a senha trocada com --reset-password.
func createAdmin(ctx context.Context, db *sqldb.Internal, email, nome, hash string) (*entities.Usuario, bool, error) {
	var (
		u       *entities.Usuario
		created bool
	)
	err := db.Transaction(ctx, func(tx *sqldb.Internal) error {
		perfil, err := tx.GetPerfilByNome(ctx, "Administrador")
		switch {
		case errors.Is(err, sqldb.ErrNotFound):
			perfil = &entities.Perfil{Nome: "Administrador", Role: "admin", Descricao: entities.String("Acesso total")}
			if err := sqldb.Insert(ctx, tx, perfil); err != nil {
				return err
			}
		case err != nil:
			return err
		case !perfil.IsAdmin():
			return fmt.Errorf("perfil Administrador has role %q, which is not an admin role", perfil.Role)
		}

		u, err = tx.GetUsuarioByEmail(ctx, email)
		switch {
		case errors.Is(err, sqldb.ErrNotFound):
			u = &entities.Usuario{Nome: nome, Email: email, PasswordHash: &hash, PerfilID: perfil.ID, Ativo: entities.Bool(true)}
			created = true
			return sqldb.Insert(ctx, tx, u)
		case err != nil:
			return err
		case !resetPassword:
			return fmt.Errorf("%w: usuario %s (use --reset-password)", sqldb.ErrConflict, email)
		}
		return tx.UpdatePassword(ctx, u.ID, hash)
	})
	return u, created, err
}

func runReindex(cmd *cobra.Command, args []string) error {
	idx, err := openIndex()
	if err != nil {
		return err
	}
	return withDB(cmd, func(ctx context.Context, db *sqldb.Internal) error {
		n, err := reindex(ctx, db, idx)
		if err != nil {
			return err
		}
		logger.Info("search index rebuilt", zap.Int("socios", n))
		fmt.Fprintf(cmd.OutOrStdout(), "%d sócios indexados\n", n)
		return nil
	})
}

// reindex recria o índice e envia todos os sócios, uma página por vez
func reindex(ctx context.Context, db *sqldb.Internal, idx socioIndex) (int, error) {
	if err := idx.RecreateSocioIndex(ctx); err != nil {
		return 0, err
	}
	total := 0
	q := sqldb.Query{Page: 1, PageSize: sqldb.MaxPageSize, Order: "matricula ASC"}
	for {
		page, _, err := sqldb.FindPage[entities.Socio](ctx, db, q)
		if err != nil {
			return total, err
		}
		for i := range page {
			if err := idx.IndexSocio(ctx, socios.Document(&page[i])); err != nil {
				return total, fmt.Errorf("failed to index socio %s: %w", page[i].ID, err)
			}
			total++
		}
		if len(page) < q.PageSize {
			return total, nil
		}
		q.Page++
	}
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
