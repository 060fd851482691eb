package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/roadfile/compliance/internal/app"
	"github.com/roadfile/compliance/internal/app/service/lifecycle"
)

// One-shot lifecycle job runner: `jobs <expire-services|expiration-check|autopay>`.
// The cron scheduler in the API process runs the same jobs; this binary is
// for operators and for running a missed day by hand.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <%s|%s|%s>\n", os.Args[0], lifecycle.JobSweep, lifecycle.JobNotifier, lifecycle.JobRenewer)
		os.Exit(2)
	}
	job := os.Args[1]

	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	var (
		svc *lifecycle.Service
		log *zap.SugaredLogger
	)
	a := fx.New(
		app.JobsModule,
		fx.Populate(&svc, &log),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		zap.NewExample().Sugar().Errorf("failed to start job runner: %v", err)
		exitCode = 1
		return
	}

	if err := svc.RunJob(context.Background(), job); err != nil {
		log.Errorw("job failed", "job", job, "err", err)
		exitCode = 1
	} else {
		log.Infow("job finished", "job", job)
	}

	stopCtx, cancel2 := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
	defer cancel2()
	if err := a.Stop(stopCtx); err != nil {
		zap.NewExample().Sugar().Errorf("failed to stop job runner: %v", err)
		exitCode = 1
	}
}
