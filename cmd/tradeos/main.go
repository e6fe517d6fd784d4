package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/tradeos/internal/tradeos/application"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
	"github.com/wyfcoding/tradeos/internal/tradeos/infrastructure/adapters"
	"github.com/wyfcoding/tradeos/internal/tradeos/infrastructure/gateways"
	"github.com/wyfcoding/tradeos/internal/tradeos/infrastructure/ledger"
	"github.com/wyfcoding/tradeos/internal/tradeos/infrastructure/persistence/memory"
	"github.com/wyfcoding/tradeos/internal/tradeos/infrastructure/persistence/mysql"
	tradeoshttp "github.com/wyfcoding/tradeos/internal/tradeos/interfaces/http"
	"github.com/wyfcoding/tradeos/pkg/config"
	"github.com/wyfcoding/tradeos/pkg/db"
	"github.com/wyfcoding/tradeos/pkg/logger"
	"github.com/wyfcoding/tradeos/pkg/metrics"
	"github.com/wyfcoding/tradeos/pkg/middleware"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/tradeos/config.toml", "path to config file")
	flag.Parse()

	ctx := context.Background()

	// 1. Config
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config failed: %v", err))
	}

	// 2. Logger
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}
	log := logger.Get()
	log.Info("starting tradeos", "version", cfg.Version, "environment", cfg.Environment)

	// 3. Metrics
	m := metrics.New(cfg.ServiceName)
	if cfg.Metrics.Enabled {
		if err := m.Register(); err != nil {
			logger.Fatal(ctx, "Failed to register metrics", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics server", "error", err)
		}
	}

	// 4. Persistence: DSN 为空时使用内存仓储运行
	var (
		orderRepo      domain.OrderRepository
		blockRepo      domain.BlockRepository
		tradeErrorRepo domain.TradeErrorRepository
		primaryLedger  domain.Ledger
		database       *db.DB
	)
	if cfg.Database.DSN != "" {
		database, err = db.Init(db.Config{
			Driver:             cfg.Database.Driver,
			DSN:                cfg.Database.DSN,
			MaxOpenConns:       cfg.Database.MaxOpenConns,
			MaxIdleConns:       cfg.Database.MaxIdleConns,
			ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
			LogEnabled:         cfg.Database.LogEnabled,
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to connect database", "error", err)
		}
		if err := mysql.AutoMigrate(database.DB); err != nil {
			logger.Fatal(ctx, "Failed to migrate database", "error", err)
		}
		orderRepo = mysql.NewOrderRepository(database.DB)
		blockRepo = mysql.NewBlockRepository(database.DB)
		tradeErrorRepo = mysql.NewTradeErrorRepository(database.DB)
		primaryLedger, err = ledger.NewGormLedger(database.DB)
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize audit ledger", "error", err)
		}
	} else {
		log.Info("database DSN empty, running with in-memory repositories")
		orderRepo = memory.NewOrderRepository()
		blockRepo = memory.NewBlockRepository()
		tradeErrorRepo = memory.NewTradeErrorRepository()
		primaryLedger = ledger.NewMemoryLedger()
	}

	// 5. Audit ledger fanout: Kafka 镜像可选
	var auditLedger domain.Ledger = primaryLedger
	var kafkaMirror *ledger.KafkaMirror
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaMirror = ledger.NewKafkaMirror(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		auditLedger = ledger.NewFanout(primaryLedger, kafkaMirror)
		log.Info("audit ledger kafka mirror enabled",
			"brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.AuditTopic)
	}

	// 6. Gateways
	clientGw := gateways.NewMemoryClientGateway()
	complianceGw := gateways.NewMemoryComplianceGateway()
	custodyGw := gateways.NewMemoryCustodyGateway()
	surveillanceGw := gateways.NewMemorySurveillanceGateway()
	regdeskGw := gateways.NewMemoryRegDeskGateway()
	feesGw := gateways.NewMemoryFeeScheduleGateway()
	seedDemoData(clientGw, custodyGw)

	// 7. Domain engines
	breakpoint, err := decimal.NewFromString(cfg.Engine.BreakpointThreshold)
	if err != nil {
		logger.Fatal(ctx, "Invalid breakpoint threshold", "value", cfg.Engine.BreakpointThreshold)
	}
	pretrade := domain.NewPreTradeChecker(clientGw, complianceGw, surveillanceGw, feesGw, breakpoint)
	bestex := domain.NewBestExecutionEngine()
	routing := domain.NewRoutingEngine(complianceGw,
		adapters.NewEquityAdapter(),
		adapters.NewETFAdapter(),
		adapters.NewOptionsAdapter(),
		adapters.NewBondAdapter(),
		adapters.NewMutualFundAdapter(),
		adapters.NewCryptoAdapter(),
	)
	allocation := domain.NewAllocationEngine(custodyGw)

	// 8. Application
	appService := application.NewTradeOSService(
		orderRepo, blockRepo, tradeErrorRepo, auditLedger,
		pretrade, bestex, routing, allocation,
		complianceGw, regdeskGw,
		m, log,
	)

	// 9. Interfaces
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(), middleware.RequestLogging(), middleware.CORS())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})
	handler := tradeoshttp.NewTradeOSHandler(appService)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	// 10. Start
	go func() {
		log.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server failed", "error", err)
		}
	}()

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown failed", "error", err)
	}
	if kafkaMirror != nil {
		if err := kafkaMirror.Close(); err != nil {
			logger.Error(ctx, "Kafka mirror close failed", "error", err)
		}
	}
	if database != nil {
		if err := database.Close(); err != nil {
			logger.Error(ctx, "Database close failed", "error", err)
		}
	}
	log.Info("server exiting")
}

// seedDemoData 为内存网关准备一个可直接下单的演示账户。
func seedDemoData(clientGw *gateways.MemoryClientGateway, custodyGw *gateways.MemoryCustodyGateway) {
	clientGw.SetGates("ACC-1001", domain.AccountGates{
		KYCVerified:         true,
		AMLCleared:          true,
		SuitabilityApproved: true,
		MarginEnabled:       true,
		OptionsLevel:        3,
	})
	clientGw.WhitelistWallet("ACC-1001", "0xDEMO0000000000000000000000000000000000AA")
	custodyGw.Deposit("ACC-1001", decimal.NewFromInt(1_000_000))
}
