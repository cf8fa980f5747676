package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/s0_data"
	"github.com/wonny/screener/internal/s0_data/collector"
	"github.com/wonny/screener/internal/scheduler"
	"github.com/wonny/screener/internal/scheduler/jobs"
	"github.com/wonny/screener/internal/selection"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행 (완료까지 대기)
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/screener scheduler start
  go run ./cmd/screener scheduler list
  go run ./cmd/screener scheduler run weekly_screen`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- data_collection: 금요일 오후 5시 (Yahoo 통계 보강, DB 필요)
- weekly_screen: 금요일 오후 6시 (전체 스크리닝)
- run_retention: 일요일 오전 3시 (오래된 실행 삭제, DB 필요)
- cache_cleanup: 30분마다 (매크로 시세 캐시 정리)

METRICS_ENABLED=true면 METRICS_PORT에서 /metrics를 제공합니다.
스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 상태 조회",
		RunE:  showStatus,
	}
)

var (
	schedulerRetention time.Duration
	schedulerRetries   int
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)

	schedulerCmd.PersistentFlags().DurationVar(&schedulerRetention, "retention", 90*24*time.Hour, "keep screen runs for this long")
	schedulerCmd.PersistentFlags().IntVar(&schedulerRetries, "retries", 2, "retries per failed job")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Legends v2 Scheduler ===")

	ctx, cancel := signalContext()
	defer cancel()

	rt, sched, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.close()

	// Metrics endpoint
	var metricsServer *http.Server
	if rt.cfg.MetricsEnabled {
		metricsServer = &http.Server{
			Addr:              ":" + rt.cfg.MetricsPort,
			Handler:           rt.metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				rt.log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	PrintList(sched.GetAllJobs())
	if metricsServer != nil {
		fmt.Printf("\nMetrics on http://localhost:%s/metrics\n", rt.cfg.MetricsPort)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	fmt.Println("Scheduler stopped")
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	rt, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.close()

	fmt.Println("Registered jobs:")
	PrintList(sched.GetAllJobs())
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx, cancel := signalContext()
	defer cancel()

	rt, sched, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.close()

	fmt.Printf("Running job: %s\n", jobName)

	result, err := sched.RunJobNow(jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}
	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %s: %s", jobName, result.Duration.Round(time.Millisecond), result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintSuccess(fmt.Sprintf("%s completed in %s", jobName, result.Duration.Round(time.Millisecond)))
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	rt, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.close()

	stats := sched.GetJobStats()

	fmt.Println("Job Statistics:")
	fmt.Println()

	for _, jobName := range sched.GetAllJobs() {
		stat := stats[jobName]
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}
		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}

// initScheduler wires the runtime and registers every job.
// The caller closes the returned runtime.
func initScheduler(ctx context.Context) (*runtime, *scheduler.Scheduler, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := newRuntime(ctx, runtimeOptions{database: true})
	if err != nil {
		return nil, nil, err
	}

	source, err := rt.recordSource(rt.db != nil, "")
	if err != nil {
		rt.close()
		return nil, nil, err
	}

	screener, err := rt.newScreener(source, "")
	if err != nil {
		rt.close()
		return nil, nil, err
	}

	sched := scheduler.New(rt.log).WithRetry(schedulerRetries, time.Minute)

	register := func(job scheduler.Job) error {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("add job %s: %w", job.Name(), err)
		}
		return nil
	}

	if err := register(jobs.NewWeeklyScreenJob(screener, rt.defaultRunConfig(), rt.log)); err != nil {
		rt.close()
		return nil, nil, err
	}

	if err := register(jobs.NewCacheCleanupJob(rt.resolver().Cache(), rt.log)); err != nil {
		rt.close()
		return nil, nil, err
	}

	if rt.db != nil {
		recordRepo := s0_data.NewRecordRepository(rt.db.Pool)
		col := collector.NewCollector(s0_data.NewEnricher(rt.yahoo, rt.log), recordRepo, rt.log)
		colCfg := collector.Config{Workers: rt.cfg.Workers, Persist: true}

		if err := register(jobs.NewDataCollectionJob(source, col, colCfg, rt.log)); err != nil {
			rt.close()
			return nil, nil, err
		}
		if err := register(jobs.NewRunRetentionJob(selection.NewRepository(rt.db.Pool), schedulerRetention, rt.log)); err != nil {
			rt.close()
			return nil, nil, err
		}
	} else {
		rt.log.Warn("DATABASE_URL not set: data_collection and run_retention disabled")
	}

	return rt, sched, nil
}
