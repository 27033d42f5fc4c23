package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"sindicatorest/internal/repositories/sqldb"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func addDBCommands(root *cobra.Command) {
	root.AddCommand(
		&cobra.Command{
			Use:   "inspect [table]",
			Short: "Lista as tabelas ou as colunas e tipos de uma tabela",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runInspect,
		},
		&cobra.Command{
			Use:   "count [table...]",
			Short: "Conta as linhas por tabela, seguindo adiante quando uma tabela falha",
			RunE:  runCount,
		},
		&cobra.Command{
			Use:   "max-matricula",
			Short: "Mostra a maior matrícula de sócio e a próxima livre",
			Args:  cobra.NoArgs,
			RunE:  runMaxMatricula,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Cria ou atualiza o schema e os índices únicos",
			Args:  cobra.NoArgs,
			RunE:  runMigrate,
		},
	)
}

func runInspect(cmd *cobra.Command, args []string) error {
	return withDB(cmd, func(ctx context.Context, db *sqldb.Internal) error {
		if len(args) == 0 {
			tables, err := db.Tables(ctx)
			if err != nil {
				return err
			}
			if ok, err := printJSON(cmd, tables); ok {
				return err
			}
			for _, t := range tables {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		}

		cols, err := db.Columns(ctx, args[0])
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, cols); ok {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "COLUMN\tTYPE\tNULLABLE\tPK")
		for _, c := range cols {
			fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", c.Name, c.DatabaseType, c.Nullable, c.PrimaryKey)
		}
		return w.Flush()
	})
}

// TableCount é uma linha do comando count
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
	Error string `json:"error,omitempty"`
}

func runCount(cmd *cobra.Command, args []string) error {
	return withDB(cmd, func(ctx context.Context, db *sqldb.Internal) error {
		tables := args
		if len(tables) == 0 {
			var err error
			if tables, err = db.Tables(ctx); err != nil {
				return err
			}
		}

		counts := make([]TableCount, 0, len(tables))
		failed := 0
		for _, t := range tables {
			n, err := db.CountRows(ctx, t)
			if err != nil {
				failed++
				logger.Warn("count failed", zap.String("table", t), zap.Error(err))
				counts = append(counts, TableCount{Table: t, Error: err.Error()})
				continue
			}
			counts = append(counts, TableCount{Table: t, Rows: n})
		}

		ok, err := printJSON(cmd, counts)
		if err != nil {
			return err
		}
		if !ok {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TABLE\tROWS")
			for _, c := range counts {
				if c.Error != "" {
					fmt.Fprintf(w, "%s\terror: %s\n", c.Table, c.Error)
					continue
				}
				fmt.Fprintf(w, "%s\t%d\n", c.Table, c.Rows)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d tables could not be counted", failed, len(tables))
		}
		return nil
	})
}

func runMaxMatricula(cmd *cobra.Command, args []string) error {
	return withDB(cmd, func(ctx context.Context, db *sqldb.Internal) error {
		max, err := db.MaxMatricula(ctx)
		if err != nil {
			return err
		}
		out := map[string]int64{"max": max, "next": max + 1}
		if ok, err := printJSON(cmd, out); ok {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "maior matrícula: %d\npróxima: %d\n", max, max+1)
		return nil
	})
}

func runMigrate(cmd *cobra.Command, args []string) error {
	return withDB(cmd, func(ctx context.Context, db *sqldb.Internal) error {
		if err := db.AutoMigrate(ctx); err != nil {
			return err
		}
		created, err := db.ApplyConstraints(ctx)
		if err != nil {
			return err
		}
		logger.Info("schema migrated", zap.Strings("constraints_created", created))
		if ok, err := printJSON(cmd, map[string]interface{}{"constraintsCreated": created}); ok {
			return err
		}
		if len(created) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema atualizado; nenhum índice novo")
			return nil
		}
		for _, c := range created {
			fmt.Fprintf(cmd.OutOrStdout(), "índice criado: %s\n", c)
		}
		return nil
	})
}
