package cmd

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"bookcart/api"
	apibook "bookcart/api/book"
	apicart "bookcart/api/cart"
	"bookcart/api/health"
	cartapp "bookcart/application/cart"
	"bookcart/config"
	domaincart "bookcart/domain/cart"
	"bookcart/domain/catalog"
	"bookcart/domain/identity"
	"bookcart/infrastructure/clients"
	"bookcart/infrastructure/persistence/mocks"
	"bookcart/infrastructure/persistence/mysql"
	"bookcart/infrastructure/persistence/retry"
	"bookcart/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppBuilder wires the application together. Every dependency of the
// cart service is constructed here and nowhere else; alternative
// implementations (mock store, fake sources) can be swapped in before
// Build for tests.
type AppBuilder struct {
	cfg          *config.Config
	repo         domaincart.Repository
	books        catalog.BookSnapshotSource
	customers    identity.IdentitySource
	useDefaultDB bool
}

// NewBuilder creates a new AppBuilder
func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{
		cfg:          cfg,
		useDefaultDB: true,
	}
}

// WithRepository overrides the cart store
func (b *AppBuilder) WithRepository(repo domaincart.Repository) *AppBuilder {
	b.repo = repo
	b.useDefaultDB = false
	return b
}

// WithBookSource overrides the book snapshot source
func (b *AppBuilder) WithBookSource(books catalog.BookSnapshotSource) *AppBuilder {
	b.books = books
	return b
}

// WithIdentitySource overrides the customer identity source
func (b *AppBuilder) WithIdentitySource(customers identity.IdentitySource) *AppBuilder {
	b.customers = customers
	return b
}

// UseMockStore keeps cart state in memory instead of MySQL
func (b *AppBuilder) UseMockStore() *AppBuilder {
	return b.WithRepository(mocks.NewMockCartRepository())
}

// Build creates the App instance
func (b *AppBuilder) Build() *App {
	// Initialize logger
	if err := logger.Init(&b.cfg.Log, b.cfg.App.Env); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Starting application",
		zap.String("app", b.cfg.App.Name),
		zap.String("version", b.cfg.App.Version),
		zap.String("env", b.cfg.App.Env))

	var db *gorm.DB
	if b.repo == nil && b.useDefaultDB {
		db = b.connectDatabase()
		b.repo = mysql.NewCartRepository(db)
	}
	if b.repo == nil {
		b.repo = mocks.NewMockCartRepository()
	}

	if b.books == nil {
		b.books = clients.NewBookClient(b.cfg.Services.BookBaseURL, b.cfg.Services.Timeout)
	}
	if b.customers == nil {
		b.customers = clients.NewCustomerClient(b.cfg.Services.CustomerBaseURL, b.cfg.Services.Timeout)
	}

	cartService := cartapp.NewApplicationService(b.repo, b.books, b.customers, retry.FromAppConfig(b.cfg))

	var healthDB *sql.DB
	if db != nil {
		healthDB, _ = db.DB()
	}

	healthController := health.NewController(b.cfg, healthDB)
	cartController := apicart.NewController(cartService)
	bookController := apibook.NewController(cartService)

	router := api.NewRouter(b.cfg, healthController, cartController, bookController)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + b.cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}

	return &App{
		config: b.cfg,
		router: router,
		server: server,
		db:     db,
	}
}

func (b *AppBuilder) connectDatabase() *gorm.DB {
	logger.Info("Using MySQL/GORM persistence layer")

	mysqlConfig := &mysql.Config{
		Host:            b.cfg.Database.Host,
		Port:            b.cfg.Database.Port,
		Username:        b.cfg.Database.Username,
		Password:        b.cfg.Database.Password,
		Database:        b.cfg.Database.Database,
		MaxOpenConns:    b.cfg.Database.MaxOpenConns,
		MaxIdleConns:    b.cfg.Database.MaxIdleConns,
		ConnMaxLifetime: b.cfg.Database.ConnMaxLifetime,
		LogLevel:        b.cfg.Database.LogLevel,
	}

	db, err := mysqlConfig.Connect()
	if err != nil {
		logger.Fatal("Failed to connect to MySQL", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying sql.DB", zap.Error(err))
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatal("Failed to ping MySQL", zap.Error(err))
	}

	logger.Info("Connected to MySQL successfully")

	// Auto migration in development environment
	if b.cfg.IsDevelopment() {
		if err := mysql.AutoMigrate(db); err != nil {
			logger.Fatal("Failed to auto migrate", zap.Error(err))
		}
	}

	return db
}
