package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "agritrace-backend/internal/adapter/http"
	mw "agritrace-backend/internal/adapter/middleware"
	"agritrace-backend/internal/adapter/ledgerclient"
	"agritrace-backend/internal/adapter/repository/mysql"
	"agritrace-backend/internal/config"
	domain "agritrace-backend/internal/domain/approval"
	"agritrace-backend/internal/infrastructure/cache"
	"agritrace-backend/internal/infrastructure/db"
	approvalUC "agritrace-backend/internal/usecase/approval"
	syncUC "agritrace-backend/internal/usecase/sync"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGormRetry(cfg.MySQLDSN(), 60, 5*time.Second)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	// Additive migration only. The approvals table is the audit trail of
	// every handover and must survive restarts.
	if err := gdb.AutoMigrate(&domain.Approval{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	repo := mysql.NewApprovalRepository(gdb)
	gateway := ledgerclient.New(cfg.LedgerGatewayURL, cfg.LedgerTimeout)
	uc := approvalUC.NewUsecase(repo, gateway)
	poller := syncUC.NewPoller(repo, cfg.PollInterval)

	h := httpadp.NewHandler()
	ah := httpadp.NewApprovalHandler(uc)
	sh := httpadp.NewSyncHandler(poller)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover(), middleware.CORS())

	e.GET("/health", h.Health)

	api := e.Group("/api")
	api.Use(mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	api.POST("/approvals", ah.Submit)
	api.GET("/approvals/pending/:farmerEmail", ah.ListPending)
	api.GET("/approvals/awaiting-ledger/:distributorId", ah.ListAwaitingLedger)
	api.GET("/approvals/approved/:farmerEmail", ah.ListApproved)
	api.POST("/approvals/:approvalId/ledger-confirm", ah.LedgerConfirm)
	api.POST("/approvals/:approvalId/commit", ah.Commit)
	api.POST("/approvals/:approvalId/decision", ah.Decision)
	api.GET("/approvals/pending/:farmerEmail/stream", sh.StreamPending)
	api.GET("/approvals/awaiting-ledger/:distributorId/stream", sh.StreamAwaitingLedger)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
