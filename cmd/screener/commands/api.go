package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/api"
	"github.com/wonny/screener/internal/api/handlers"
	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/s0_data/quality"
	"github.com/wonny/screener/internal/s1_universe"
	"github.com/wonny/screener/internal/selection"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 단일 종목 점수 계산 제공
- 스크리닝 실행 트리거 및 결과 스트리밍

Endpoints:
  GET  /health               - Health check
  GET  /metrics              - Prometheus metrics (METRICS_ENABLED)
  POST /api/score            - 단일 레코드 점수 계산
  GET  /api/screen/latest    - 최근 스크리닝 결과 (?top=N)
  POST /api/screen/run       - 스크리닝 실행
  GET  /api/data/quality     - 품질 스냅샷 (DB, ?date=)
  GET  /api/data/universe    - 최근 유니버스 (DB)
  GET  /ws/screen            - 점수 스트림 (WebSocket)

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort    string
	apiRecords string
	apiFromDB  bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().StringVar(&apiRecords, "records", "", "records JSON (default: RECORDS_PATH)")
	apiCmd.Flags().BoolVar(&apiFromDB, "from-db", false, "load records from PostgreSQL")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Legends v2 API Server ===")

	ctx, cancel := signalContext()
	defer cancel()

	rt, err := newRuntime(ctx, runtimeOptions{database: true})
	if err != nil {
		return err
	}
	defer rt.close()

	// Override port if flag is set
	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	rt.log.WithFields(map[string]interface{}{
		"port": rt.cfg.Port,
		"env":  rt.cfg.Env,
	}).Info("Initializing API server")

	// 1. Pipeline
	source, err := rt.recordSource(apiFromDB, apiRecords)
	if err != nil {
		return err
	}
	screener, err := rt.newScreener(source, "")
	if err != nil {
		return err
	}

	// 2. Stream hub receives every score of every run
	hub := handlers.NewStreamHub(rt.strategy.Report.TopN, rt.log)
	defer hub.Close()
	screener.AddObserver(hub)

	// 3. Handlers
	var (
		runs        contracts.ScoreRepository
		dataHandler *handlers.DataHandler
	)
	if rt.db != nil {
		runs = selection.NewRepository(rt.db.Pool)
		dataHandler = handlers.NewDataHandler(quality.NewRepository(rt.db.Pool), s1_universe.NewRepository(rt.db.Pool), rt.log)
	}
	screenHandler := handlers.NewScreenHandler(rt.engine(), screener, runs, rt.defaultRunConfig(), rt.strategy.Report.TopN, rt.log)

	// 4. Router
	var metricsHandler http.Handler
	if rt.cfg.MetricsEnabled {
		metricsHandler = rt.metrics.Handler()
	}
	router := api.NewRouter(screenHandler, dataHandler, hub, metricsHandler, rt.log)

	// 5. Server with graceful shutdown
	server := api.New(rt.cfg, rt.log, router)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log := rt.log
	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", rt.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	if metricsHandler != nil {
		fmt.Println("  GET  /metrics")
	}
	fmt.Println("  POST /api/score")
	fmt.Println("  GET  /api/screen/latest")
	fmt.Println("  POST /api/screen/run")
	if dataHandler != nil {
		fmt.Println("  GET  /api/data/quality")
		fmt.Println("  GET  /api/data/universe")
	}
	fmt.Println("  GET  /ws/screen")
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
