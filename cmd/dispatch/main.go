package main

import (
	"context"
	"log/slog"
	"os"
	_ "time/tzdata"

	"dispatch/config"
	"dispatch/internal/delivery"
	"dispatch/internal/delivery/http"
	"dispatch/internal/delivery/http/router/handler"
	"dispatch/internal/delivery/realtime"
	"dispatch/internal/infra/license"
	logs "dispatch/internal/infra/log"
	"dispatch/internal/infra/persistence/postgres"
	"dispatch/internal/infra/pubsub"
	"dispatch/internal/infra/qrcode"
	"dispatch/internal/infra/routing/directions"
	"dispatch/internal/usecase"
	"dispatch/internal/usecase/impl"

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
		injectRealtime(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			impl.RegisterTrackingSweeper,
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
	return fx.Provide(
		postgres.NewComplianceAuditRepository,
	)
}

func injectService() fx.Option {
	return fx.Provide(
		directions.NewRouteProvider,
		license.NewLicenseRegistry,
		qrcode.NewQRCodeService,
	)
}

func injectUsecase() fx.Option {
	return fx.Provide(
		impl.NewTrackingService,
		impl.NewRoutingService,
		impl.NewComplianceService,
		impl.NewLicenseService,
	)
}

func injectRealtime() fx.Option {
	return fx.Provide(
		realtime.NewAdapter,
		asLocationPublisher,
	)
}

// asLocationPublisher routes REST location updates through the realtime adapter
func asLocationPublisher(adapter *realtime.Adapter) usecase.LocationPublisher {
	return adapter
}

func injectHandler() fx.Option {
	return fx.Provide(
		handler.NewTrackingHandler,
		handler.NewRoutingHandler,
		handler.NewComplianceHandler,
	)
}

func injectDelivery() fx.Option {
	return fx.Provide(
		fx.Annotate(
			http.NewServer,
			fx.ResultTags(`group:"deliveries"`),
		),
	)
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
