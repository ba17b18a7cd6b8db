package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"fleetwatch/config"
	"fleetwatch/internal/delivery"
	"fleetwatch/internal/delivery/http"
	"fleetwatch/internal/delivery/http/middleware"
	"fleetwatch/internal/delivery/http/router/handler"
	"fleetwatch/internal/delivery/worker"
	workerhandler "fleetwatch/internal/delivery/worker/handler"
	"fleetwatch/internal/domain/service"
	"fleetwatch/internal/infra/ai"
	logs "fleetwatch/internal/infra/log"
	"fleetwatch/internal/infra/notification"
	"fleetwatch/internal/infra/persistence/postgres"
	"fleetwatch/internal/infra/pubsub"
	"fleetwatch/internal/infra/qrcode"
	"fleetwatch/internal/infra/quota"
	"fleetwatch/internal/usecase"
	"fleetwatch/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			registerTrackingShutdown,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			postgres.New,
		),
		pubsub.Module,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewVehicleRepository,
			postgres.NewDriverRepository,
			postgres.NewRouteRepository,
			postgres.NewLiveRouteRepository,
			postgres.NewPositionLogRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newAIConfig,
			ai.NewClient,
			quota.New,
			newFirebaseService,
			newQRCodeService,
		),
	)
}

// newAIConfig exposes the AI section for the provider client and quota guard
func newAIConfig(cfg *config.Config) *config.AIConfig {
	return cfg.AI
}

// newFirebaseService creates a Firebase service with dependency injection.
// Without credentials, maintenance alerts fall back to a no-op sender.
func newFirebaseService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.NotificationService, error) {
	if cfg.Firebase == nil || cfg.Firebase.CredentialsPath == "" {
		return notification.NewNoopService(logger), nil
	}

	svc, err := notification.NewFirebaseService(ctx, cfg.Firebase.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firebase service: %w", err)
	}

	return svc, nil
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M", "")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel, cfg.QRCode.BaseURL)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewFleetService,
			impl.NewFinanceService,
			impl.NewInsightService,
			impl.NewFleetMapService,
			impl.NewTrackingService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewFleetHandler,
			handler.NewFinanceHandler,
			handler.NewInsightHandler,
			handler.NewMapHandler,
			handler.NewTrackingHandler,
			workerhandler.NewPushHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// registerTrackingShutdown releases every live tracking feed before the
// process exits.
func registerTrackingShutdown(lc fx.Lifecycle, trackingUC usecase.TrackingUsecase) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			trackingUC.StopAll()

			return nil
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
