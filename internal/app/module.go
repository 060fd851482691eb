package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/roadfile/compliance/internal/app/api/server"
	"github.com/roadfile/compliance/internal/app/service/auth"
	"github.com/roadfile/compliance/internal/app/service/lifecycle"
	"github.com/roadfile/compliance/internal/app/service/notification"
	"github.com/roadfile/compliance/internal/app/service/order"
	"github.com/roadfile/compliance/internal/app/service/verification"
	"github.com/roadfile/compliance/internal/platform/db"
	"github.com/roadfile/compliance/internal/platform/docgen"
	"github.com/roadfile/compliance/internal/platform/mail"
	"github.com/roadfile/compliance/internal/platform/payments"
	"github.com/roadfile/compliance/pkg/config"
	"github.com/roadfile/compliance/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// Module wires the full API process: platform, services, scheduler and the
// HTTP server.
var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	payments.Module,
	docgen.Module,
	mail.Module,
	notification.Module,
	lifecycle.Module,
	order.Module,
	verification.Module,
	auth.Module,
	server.Module,
)

// JobsModule wires everything the one-shot job runner needs. No HTTP
// server, no cron scheduler.
var JobsModule = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	payments.Module,
	docgen.Module,
	mail.Module,
	notification.Module,
	lifecycle.JobsModule,
)
