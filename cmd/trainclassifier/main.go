package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kirianguiller/OpusFilter/internal/cfg"
	"github.com/kirianguiller/OpusFilter/internal/scores"
	"github.com/kirianguiller/OpusFilter/internal/trainer"
)

func main() {
	var (
		logLevel  = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		criterion = flag.String("criterion", "", "Selection criterion: roc_auc, AIC or BIC (overrides config)")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()

	settings, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if *criterion != "" {
		settings.Criterion = *criterion
	}

	crit, err := trainer.ParseCriterion(settings.Criterion)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid criterion")
	}

	train, err := scores.Load(settings.TrainingScores)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load training scores")
	}
	log.Info().
		Int("rows", train.Rows()).
		Strs("features", train.Columns()).
		Msg("training scores loaded")

	var dev *scores.Table
	if settings.DevScores != "" {
		dev, err = scores.Load(settings.DevScores)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load dev scores")
		}
		log.Info().Int("rows", dev.Rows()).Msg("dev scores loaded")
	}

	search, err := trainer.NewSearch(train, dev, settings.DiscardEstimate)
	if err != nil {
		log.Fatal().Err(err).Msg("search setup failed")
	}

	best, err := search.FindBestModel(crit)
	if err != nil {
		log.Fatal().Err(err).Msg("model search failed")
	}

	log.Info().
		Str("criterion", string(crit)).
		Float64("value", best.Value).
		Interface("discards", best.Discards).
		Msg("best model found")
	for _, w := range best.Model.Weights() {
		log.Info().Str("feature", w.Name).Float64("weight", w.Value).Msg("model weight")
	}

	if settings.ClassifyInput == "" {
		return
	}
	if settings.LabelsOutput != "" {
		if err := best.Model.WritePreds(settings.ClassifyInput, settings.LabelsOutput); err != nil {
			log.Fatal().Err(err).Msg("failed to write predicted labels")
		}
	}
	if settings.ProbsOutput != "" {
		if err := best.Model.WriteProbs(settings.ClassifyInput, settings.ProbsOutput); err != nil {
			log.Fatal().Err(err).Msg("failed to write probabilities")
		}
	}
}
