package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/budgettabs/budgettabs/internal/config"
	"github.com/budgettabs/budgettabs/internal/db"
	internalhttp "github.com/budgettabs/budgettabs/internal/http"
	"github.com/budgettabs/budgettabs/internal/http/api/front"
	"github.com/budgettabs/budgettabs/internal/logging"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	logCloser, errLog := setupLogging(configPath)
	if errLog != nil {
		return errLog
	}
	defer func() { _ = logCloser.Close() }()
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	defer closeDB(conn)
	if errMigrate := db.Migrate(conn.WithContext(ctx)); errMigrate != nil {
		return errMigrate
	}
	log.Infof("migrations applied (dialect=%s)", db.DialectName(conn))
	return nil
}

// RunServer migrates the database and serves the API until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, defaultPort int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	logCloser, errLog := setupLogging(configPath)
	if errLog != nil {
		return errLog
	}
	defer func() {
		if errClose := logCloser.Close(); errClose != nil {
			fmt.Printf("close log file: %v\n", errClose)
		}
	}()

	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	jwtConfig, err := config.LoadJWTConfig(configPath)
	if err != nil {
		return err
	}
	serverConfig, err := config.LoadServerConfig(configPath, defaultPort)
	if err != nil {
		return err
	}

	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	defer closeDB(conn)
	if errMigrate := db.Migrate(conn.WithContext(ctx)); errMigrate != nil {
		return errMigrate
	}

	if serverConfig.Mode != "" {
		gin.SetMode(serverConfig.Mode)
	}
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", serverConfig.Port),
		Handler:      NewEngine(conn, jwtConfig),
		ReadTimeout:  serverConfig.ReadTimeout,
		WriteTimeout: serverConfig.WriteTimeout,
	}

	errServe := make(chan error, 1)
	go func() {
		log.Infof("starting budgettabs on %s (config=%s, dialect=%s)", server.Addr, configPath, db.DialectName(conn))
		if errListen := server.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
			errServe <- errListen
		}
		close(errServe)
	}()

	select {
	case errListen, ok := <-errServe:
		if ok {
			return fmt.Errorf("serve: %w", errListen)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
		return fmt.Errorf("shutdown: %w", errShutdown)
	}
	return nil
}

// NewEngine builds the gin engine with middleware and all API routes.
func NewEngine(conn *gorm.DB, jwtCfg config.JWTConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), internalhttp.RequestLogger())
	front.RegisterFrontRoutes(engine, conn, jwtCfg)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "not_found", "message": "route not found"}})
	})
	return engine
}

func setupLogging(configPath string) (io.Closer, error) {
	logConfig, err := config.LoadLogConfig(configPath)
	if err != nil {
		return nil, err
	}
	return logging.Setup(logConfig)
}

func closeDB(conn *gorm.DB) {
	sqlDB, err := conn.DB()
	if err != nil {
		return
	}
	if errClose := sqlDB.Close(); errClose != nil {
		log.Errorf("sql db close error: %v", errClose)
	}
}
