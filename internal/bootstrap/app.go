package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/employee_directory/internal/auth"
	"github.com/locvowork/employee_directory/internal/config"
	"github.com/locvowork/employee_directory/internal/database"
	"github.com/locvowork/employee_directory/internal/domain"
	"github.com/locvowork/employee_directory/internal/gql"
	"github.com/locvowork/employee_directory/internal/handler"
	"github.com/locvowork/employee_directory/internal/logger"
	"github.com/locvowork/employee_directory/internal/repository"
	"github.com/locvowork/employee_directory/internal/service"
)

type App struct {
	Echo *echo.Echo
	DB   *sql.DB
}

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Employees    domain.EmployeeRepository
	Roles        domain.RoleRepository
	Verifier     auth.Verifier
	Health       handler.Pinger
	GraphQLPath  string
	MaxPageLimit int
	Statuses     handler.StatusMapper
}

func NewApp() *App {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return &App{Echo: e}
}

// InitDatabase loads the configuration, starts logging and opens the pool.
func (a *App) InitDatabase(ctx context.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	return a.openDatabase(ctx, databaseConfig(cfg))
}

func (a *App) Initialize(ctx context.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := a.openDatabase(ctx, databaseConfig(cfg)); err != nil {
		return err
	}

	var verifier auth.Verifier
	switch cfg.AUTH_PROVIDER {
	case config.AuthProviderRemote:
		verifier = auth.NewRemoteVerifier(cfg.AUTH_URL, cfg.AUTH_API_KEY, cfg.AUTH_TIMEOUT)
	default:
		verifier = auth.NewJWTVerifier(cfg.AUTH_JWT_SECRET, cfg.AUTH_JWT_AUDIENCE)
	}
	logger.InfoLog(ctx, "Using %s token verification", cfg.AUTH_PROVIDER)

	return a.Wire(ctx, Deps{
		Employees:    repository.NewEmployeeRepository(a.DB),
		Roles:        repository.NewRoleRepository(a.DB),
		Verifier:     verifier,
		Health:       a.DB,
		GraphQLPath:  cfg.GRAPHQL_PATH,
		MaxPageLimit: cfg.MAX_PAGE_LIMIT,
		Statuses:     handler.StatusMapper{Legacy: cfg.LEGACY_STATUS_CODES},
	})
}

// Wire builds the service and dispatcher on top of deps and registers the routes.
func (a *App) Wire(ctx context.Context, deps Deps) error {
	empSvc := service.NewEmployeeService(deps.Employees, deps.MaxPageLimit)
	dispatcher, err := gql.NewDispatcher(gql.Catalog(empSvc)...)
	if err != nil {
		return fmt.Errorf("failed to build operation catalog: %w", err)
	}
	logger.InfoLog(ctx, "Registered queries %v and mutations %v",
		dispatcher.Operations(gql.KindQuery), dispatcher.Operations(gql.KindMutation))

	resolver := auth.NewResolver(deps.Verifier, auth.RoleLookupFunc(deps.Roles.GetRole))
	gqlHandler := handler.NewGraphQLHandler(resolver, dispatcher, deps.Statuses)
	exportHandler := handler.NewExportHandler(resolver, empSvc, deps.Statuses)
	healthHandler := handler.NewHealthHandler(deps.Health)

	a.RegisterMiddlewares(deps.Statuses)
	a.RegisterRoutes(deps.GraphQLPath, gqlHandler, exportHandler, healthHandler)
	return nil
}

func (a *App) RegisterMiddlewares(statuses handler.StatusMapper) {
	a.Echo.HTTPErrorHandler = handler.ErrorHandler(statuses)
	a.Echo.Pre(middleware.RequestID())
	a.Echo.Pre(handler.RequestLogger())
	a.Echo.Pre(handler.CORS())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.BodyLimit("1M"))
}

func (a *App) RegisterRoutes(path string, gqlHandler *handler.GraphQLHandler, exportHandler *handler.ExportHandler, healthHandler *handler.HealthHandler) {
	if path == "" {
		path = "/graphql"
	}
	a.Echo.POST(path, gqlHandler.ServeGraphQL)
	a.Echo.GET("/health", healthHandler.Health)

	exportGroup := a.Echo.Group("/export")
	exportGroup.GET("/employees.xlsx", exportHandler.ExportEmployees)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	cfg := config.DefaultEnvConfig
	if a.DB != nil {
		defer a.DB.Close()
	}

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.APP_PORT)
		logger.InfoLog(ctx, "Listening on %s%s", addr, cfg.GRAPHQL_PATH)
		if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.InfoLog(ctx, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.SHUTDOWN_TIMEOUT))
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func loadConfig(ctx context.Context) (*config.EnvConfig, error) {
	cfg, err := config.LoadEnvConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}
	logger.InitLogging(cfg.LOG_FILE_PATH, cfg.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")
	return cfg, nil
}

func databaseConfig(cfg *config.EnvConfig) database.Config {
	return database.Config{
		Host:            cfg.DB_HOST,
		Port:            cfg.DB_PORT,
		User:            cfg.DB_USER,
		Password:        cfg.DB_PASSWORD,
		DBName:          cfg.DB_NAME,
		SSLMode:         cfg.DB_SSL_MODE,
		MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
	}
}

func (a *App) openDatabase(ctx context.Context, dbConfig database.Config) error {
	db, err := database.NewPostgresDB(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db
	logger.InfoLog(ctx, "Database connection established successfully")
	return nil
}

func shutdownTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}
