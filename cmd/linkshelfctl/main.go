// Command linkshelfctl runs operator tasks against a linkshelf database:
// migrations, seeding users for the identity provider's subjects, minting
// development tokens and importing browser bookmarks.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sundayezeilo/linkshelf/internal/app"
	"github.com/sundayezeilo/linkshelf/internal/config"
	"github.com/sundayezeilo/linkshelf/internal/identity"
	"github.com/sundayezeilo/linkshelf/internal/importer"
	"github.com/sundayezeilo/linkshelf/internal/links"
	"github.com/sundayezeilo/linkshelf/internal/postgres"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "linkshelfctl",
		Usage: "operator tasks for the linkshelf service",
		Before: func(*cli.Context) error {
			return app.LoadEnv()
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations",
				Action: migrateAction,
			},
			{
				Name:  "user",
				Usage: "manage the user directory",
				Subcommands: []*cli.Command{
					{
						Name:  "create",
						Usage: "map an identity-provider subject to a new user",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "subject", Required: true, Usage: "identity-provider subject id"},
							&cli.StringFlag{Name: "name", Usage: "display name"},
							&cli.StringFlag{Name: "email", Usage: "contact email"},
						},
						Action: createUserAction,
					},
				},
			},
			{
				Name:  "token",
				Usage: "mint a development session token (jwt provider only)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Required: true, Usage: "identity-provider subject id"},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime"},
				},
				Action: tokenAction,
			},
			{
				Name:      "import",
				Usage:     "import a browser bookmark export as links",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Required: true, Usage: "owner's identity-provider subject id"},
					&cli.StringFlag{Name: "format", Value: importer.FormatChrome, Usage: "export format: chrome|firefox"},
				},
				Action: importAction,
			},
		},
	}
}

type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

func loadEnv() (env, error) {
	cfg, err := config.Load()
	if err != nil {
		return env{}, fmt.Errorf("failed to load config: %w", err)
	}
	return env{cfg: cfg, logger: app.NewLogger(os.Stderr, cfg.App.LogLevel)}, nil
}

// withRepo opens the configured store for the duration of fn.
func withRepo(ctx context.Context, e env, fn func(links.Repository) error) error {
	if e.cfg.App.Storage != config.StoragePostgres {
		return fmt.Errorf("linkshelfctl needs STORAGE_DRIVER=%s", config.StoragePostgres)
	}

	repo, pool, err := app.OpenStorage(ctx, e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(repo)
}

func migrateAction(c *cli.Context) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	if e.cfg.App.Storage != config.StoragePostgres {
		return fmt.Errorf("nothing to migrate for storage driver %q", e.cfg.App.Storage)
	}
	return postgres.Migrate(c.Context, e.cfg.Database.ConnectionString(), e.logger)
}

func createUserAction(c *cli.Context) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	return withRepo(c.Context, e, func(repo links.Repository) error {
		u, err := repo.CreateUser(c.Context, links.User{
			ExternalID: c.String("subject"),
			Name:       c.String("name"),
			Email:      c.String("email"),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "created user %s for subject %s\n", u.ID, u.ExternalID)
		return nil
	})
}

func tokenAction(c *cli.Context) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	if e.cfg.Auth.Provider != config.AuthProviderJWT {
		return fmt.Errorf("tokens can only be minted for the %s provider", config.AuthProviderJWT)
	}

	v := identity.NewJWTVerifier(e.cfg.Auth.JWTSecret, e.cfg.Auth.JWTIssuer)
	token, err := v.Sign(identity.Subject(c.String("subject")), c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}

func importAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("import needs exactly one <file> argument", 2)
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}
	bookmarks, err := importer.Parse(c.String("format"), data)
	if err != nil {
		return err
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}

	return withRepo(c.Context, e, func(repo links.Repository) error {
		res, err := importer.Import(c.Context, links.NewService(repo), identity.Subject(c.String("subject")), bookmarks, e.logger)
		fmt.Fprintf(c.App.Writer, "imported %d, skipped %d of %d bookmarks\n", res.Imported, res.Skipped, len(bookmarks))
		return err
	})
}
