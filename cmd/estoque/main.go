package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/catalog"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/config"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/ledger"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/processor"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/repository"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/repository/postgres"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/staging"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/pkg/logger"
)

// db is opened by the Before hook and shared by the command actions.
var db *sqlx.DB

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func newUserFlag() *cli.Int64Flag {
	return &cli.Int64Flag{
		Name:  "user",
		Usage: "Acting user ID recorded on imports and movements",
		Value: 1,
	}
}

func dbURL(c *cli.Context) string {
	if url := c.String("db-url"); url != "" {
		return url
	}
	return config.Load().Database.DSN()
}

func initDB(c *cli.Context) error {
	var err error
	db, err = sqlx.Connect("pgx", dbURL(c))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

func closeDB(c *cli.Context) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runIngest(c *cli.Context) error {
	ing := staging.NewIngestor(repository.NewImportRepository(db))
	imp, err := ing.CreateStaging(c.Context, c.String("file"), c.Int64("user"))
	if err != nil {
		return err
	}
	return printJSON(imp)
}

func runProcess(c *cli.Context) error {
	catRepo := repository.NewCatalogRepository()
	proc := processor.NewProcessor(
		postgres.Wrap(db),
		repository.NewImportRepository(db),
		catalog.NewService(catRepo),
		catRepo,
		repository.NewStockRepository(),
		ledger.NewPostgresLedger(),
	)

	res, err := proc.Process(c.Context, c.Int64("import-id"), c.Bool("dry-run"), c.Int64("user"))
	if err != nil && res == nil {
		return err
	}
	if pErr := printJSON(res); pErr != nil {
		return pErr
	}
	if !res.Sucesso {
		return cli.Exit("", 1)
	}
	return nil
}

func runMigrate(c *cli.Context) error {
	conn, err := sql.Open("pgx", dbURL(c))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	driver, err := migratepg.WithInstance(conn, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+c.String("dir"), "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info().Msg("migrations applied")
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	logger.SetLevel(config.Load().App.LogLevel)

	app := &cli.App{
		Name:  "estoque",
		Usage: "Ingest and reconcile stock spreadsheets",
		Commands: []*cli.Command{
			{
				Name:  "ingest",
				Usage: "Stage a stock spreadsheet into a new import",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newUserFlag(),
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path to the xlsx file",
						Required: true,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runIngest,
			},
			{
				Name:  "process",
				Usage: "Reconcile a staged import into the catalog and stock",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newUserFlag(),
					&cli.Int64Flag{
						Name:     "import-id",
						Usage:    "Import to process",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Run the full reconciliation and roll it back",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runProcess,
			},
			{
				Name:  "migrate",
				Usage: "Apply pending database migrations",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Migrations directory",
						Value: "./migrations",
					},
				},
				Action: runMigrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
