package main

import (
	"flag"
	"log/slog"

	"zapdesk/ai/gpt"
	"zapdesk/impl/core"
	"zapdesk/internal/config"
	repository "zapdesk/internal/database"
	"zapdesk/internal/http-server/api"
	"zapdesk/internal/lib/logger"
	"zapdesk/internal/lib/sl"
	"zapdesk/internal/pubsub"
	"zapdesk/internal/service/analysis"
	"zapdesk/internal/service/ingest"
	"zapdesk/internal/service/report"
	"zapdesk/internal/service/routing"
	"zapdesk/internal/ws"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	lg.Info("starting zapdesk", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	handler := core.New(lg)
	handler.SetAuthKey(conf.Listen.ApiKey)

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}
	if db != nil {
		if err := db.EnsureIndexes(); err != nil {
			lg.With(
				sl.Err(err),
			).Error("ensure indexes")
		}
		handler.SetRepository(db)
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	}

	hub := ws.NewHub(lg)
	go hub.Run()

	var publisher core.Publisher = hub
	if conf.Rabbit.Enabled {
		broker, err := pubsub.New(conf.Rabbit.URL, conf.Rabbit.Exchange, lg)
		if err != nil {
			lg.With(
				sl.Err(err),
			).Error("rabbit publisher")
		} else {
			defer broker.Close()
			publisher = pubsub.NewFanout(hub, broker)
			lg.With(
				slog.String("exchange", conf.Rabbit.Exchange),
			).Info("rabbit publisher initialized")
		}
	}
	handler.SetPublisher(publisher)

	llm := gpt.NewClient(conf, lg)
	lg.With(
		sl.Secret("openai_key", conf.OpenAI.ApiKey),
		slog.String("model", conf.OpenAI.Model),
	).Info("llm client initialized")

	routingService := routing.NewService(db, llm, lg)
	analysisService := analysis.NewService(db, llm, lg)

	ingestService := ingest.NewService(db, lg)
	ingestService.SetRouter(routingService)
	ingestService.SetPublisher(publisher)

	reportService := report.NewService(db, llm, lg)
	reportService.SetPublisher(publisher)

	handler.SetIngestService(ingestService)
	handler.SetAnalysisService(analysisService)
	handler.SetReportService(reportService)

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler, hub)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("api server stopped")
	}
}
