package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/imrishuroy/go-product-search/internal/aws"
	"github.com/imrishuroy/go-product-search/internal/config"
	"github.com/imrishuroy/go-product-search/internal/handlers"
	"github.com/imrishuroy/go-product-search/internal/logging"
	"github.com/imrishuroy/go-product-search/internal/products"
)

func main() {
	app := &cli.App{
		Name:  "product-search",
		Usage: "HTTP facade over the external product search API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a config file",
				EnvVars: []string{"PRODUCT_SEARCH_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the local HTTP server",
				Action: func(c *cli.Context) error { return run(c, config.ModeHTTP) },
			},
			{
				Name:   "lambda",
				Usage:  "serve API Gateway proxy events",
				Action: func(c *cli.Context) error { return run(c, config.ModeLambda) },
			},
		},
		Action: func(c *cli.Context) error { return run(c, "") },
	}

	if err := app.Run(os.Args); err != nil {
		logger := logging.New(config.LogConfig{Level: "error"})
		logger.Fatal().Err(err).Msg("product-search exited")
	}
}

// run starts the service; an empty mode defers to the configured server.mode.
func run(c *cli.Context, mode string) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if mode == "" {
		mode = cfg.Server.Mode
	}

	log := logging.New(cfg.Log)
	gin.SetMode(gin.ReleaseMode)

	hcfg := handlers.HandlerConfig{
		Searcher:  products.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, log),
		AccessLog: logging.NewAccessLogger(log),
		Logger:    log,
	}
	if cfg.Metrics.Enabled {
		clients, err := aws.NewAWSClients(c.Context, cfg.AWS.Region)
		if err != nil {
			return err
		}
		hcfg.Metrics = aws.NewMetricsPublisher(clients.CloudWatch, cfg.Metrics.Namespace)
	}

	r := handlers.NewRouter(hcfg)

	if mode == config.ModeLambda {
		// lambda adapter
		adapter := ginadapter.New(r)
		lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
			return adapter.ProxyWithContext(ctx, req)
		})
		return nil
	}

	return serve(c.Context, cfg.Server, r, log)
}

// serve runs the local HTTP server until SIGINT/SIGTERM, then drains.
func serve(ctx context.Context, sc config.ServerConfig, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{Addr: sc.Addr(), Handler: h}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", sc.Addr()).Msg("running local server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
