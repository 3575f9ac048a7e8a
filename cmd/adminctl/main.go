// Command adminctl creates accounts directly in the configured credential
// store, for bootstrapping admins when self-registration is disabled.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/portfolio-site/internal/auth"
	"github.com/ayush/portfolio-site/internal/config"
	"github.com/ayush/portfolio-site/internal/logging"
	"github.com/ayush/portfolio-site/internal/models"
	"github.com/ayush/portfolio-site/internal/store"
)

func main() {
	role := flag.String("role", models.RoleAdmin, `role of the new account ("user" or "admin")`)
	username := flag.String("username", "", "username; prompted for when empty")
	flag.Parse()

	if err := run(*username, *role); err != nil {
		log.Fatal().Err(err).Msg("adminctl")
	}
}

func run(username, role string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := logger.WithContext(context.Background())

	users, closeFn, err := openUserStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	defer closeFn()

	return createUser(ctx, users, cfg, username, role, bufio.NewReader(os.Stdin), os.Stdout)
}

// createUser prompts for whatever is missing and registers the account.
func createUser(ctx context.Context, users auth.UserStore, cfg *config.Config, username, role string, in *bufio.Reader, out io.Writer) error {
	var err error
	if username == "" {
		username, err = promptLine(in, "Username", out)
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
	}
	password, err := promptPassword(out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	// local operator: admin creation is always allowed here
	svc := auth.NewService(users, auth.NewSigner([]byte(cfg.JWTSecret), cfg.TokenTTL), nil, auth.Options{
		AllowAdminRegistration: true,
	})
	sess, err := svc.Register(ctx, username, password, role)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(out, "Created %s %q (id %s)\n", sess.User.Role, sess.User.Username, sess.User.ID)
	return nil
}

// openUserStore picks the same credential store the server would. The
// returned func releases the connection.
func openUserStore(ctx context.Context, cfg *config.Config) (auth.UserStore, func(), error) {
	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil
	}
	if cfg.StoreBackend != config.BackendMongo {
		return nil, nil, fmt.Errorf("store backend %q keeps no persistent users", cfg.StoreBackend)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, err
	}
	disconnect := func() { client.Disconnect(context.Background()) }
	ms := store.NewMongoStore(client.Database(cfg.MongoDB))
	if err := ms.EnsureIndexes(ctx); err != nil {
		disconnect()
		return nil, nil, err
	}
	return ms, disconnect, nil
}
