package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/vrakshhq/vraksh/internal/auth"
	"github.com/vrakshhq/vraksh/internal/branch"
	"github.com/vrakshhq/vraksh/internal/server"
	"github.com/vrakshhq/vraksh/internal/storage"
	"github.com/vrakshhq/vraksh/pkg/config"
	"github.com/vrakshhq/vraksh/pkg/email"
	"github.com/vrakshhq/vraksh/pkg/httpserver"
	"github.com/vrakshhq/vraksh/pkg/jwt"
	"github.com/vrakshhq/vraksh/pkg/logger"
	"github.com/vrakshhq/vraksh/pkg/mongodb"
	"github.com/vrakshhq/vraksh/pkg/redis"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ClientURL   string `env:"CLIENT_URL" envDefault:"http://localhost:5173"`
	EmailDevDir string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`

	Server httpserver.Config
	Mongo  mongodb.Config
	Redis  redis.Config
	JWT    jwt.Config
	Email  email.Config
	Google auth.GoogleConfig
	Github auth.GithubConfig
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Environment, "vraksh"))
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	mongoClient, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	db := mongoClient.Database(cfg.Mongo.Database)

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	users := storage.NewUserRepository(db)
	branches := storage.NewBranchRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := branches.EnsureIndexes(ctx); err != nil {
		return err
	}

	var mailer email.EmailSender
	if cfg.Email.PostmarkServerToken != "" {
		mailer, err = email.NewPostmarkSender(cfg.Email)
		if err != nil {
			return err
		}
	} else {
		log.Warn("postmark token not set, writing emails to disk",
			slog.String("dir", cfg.EmailDevDir))
		mailer = email.NewDevSender(cfg.EmailDevDir)
	}

	issuer, err := jwt.NewIssuer(cfg.JWT)
	if err != nil {
		return err
	}

	branchSvc := branch.NewService(branches, branch.WithLogger(log))
	registerSvc := auth.NewRegisterService(users, branchSvc, auth.WithRegisterLogger(log))
	passwordSvc := auth.NewPasswordService(users, users, mailer, cfg.ClientURL,
		auth.WithPasswordLogger(log))
	magicSvc := auth.NewMagicLinkService(users, mailer, cfg.ClientURL,
		auth.WithMagicLinkLogger(log))
	oauthSvc := auth.NewOAuthService(users, storage.NewOAuthStateStore(redisClient),
		[]auth.ProviderAdapter{
			auth.NewGoogleAdapter(cfg.Google),
			auth.NewGithubAdapter(cfg.Github),
		},
		auth.WithOAuthLogger(log))

	authHandler := server.NewAuthHandler(registerSvc, passwordSvc, magicSvc, oauthSvc,
		users, issuer, cfg.ClientURL, log)
	branchHandler := server.NewBranchHandler(branchSvc, cfg.ClientURL, log)

	health := httpserver.HealthCheckHandler(log,
		mongodb.Healthcheck(mongoClient),
		redis.Healthcheck(redisClient),
	)
	router := server.NewRouter(authHandler, branchHandler, issuer, health, log)

	srv := httpserver.New(cfg.Server, httpserver.WithLogger(log))
	return srv.Run(ctx, router)
}
