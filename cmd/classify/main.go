package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kirianguiller/OpusFilter/internal/cfg"
	"github.com/kirianguiller/OpusFilter/internal/linear"
	"github.com/kirianguiller/OpusFilter/internal/scores"
)

// classify trains the configured linear model on a labeled scores file
// and writes predicted labels and class-1 probabilities for an input
// scores file. Models are not persisted, so training and classification
// happen in the same run.
func main() {
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	_ = godotenv.Load()

	settings, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if settings.ClassifyInput == "" {
		log.Fatal().Msg("classify input is required")
	}

	train, err := scores.Load(settings.TrainingScores)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load training scores")
	}
	labels, err := train.Pop("label")
	if err != nil {
		log.Fatal().Err(err).Msg("training scores need a label column")
	}

	features := settings.Features
	if len(features) == 0 {
		features = train.Columns()
	}
	model, err := linear.New(settings.ModelClass, settings.ModelParams, features)
	if err != nil {
		log.Fatal().Err(err).Msg("model setup failed")
	}
	if err := model.Train(train, labels); err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}
	for _, w := range model.Weights() {
		log.Info().Str("feature", w.Name).Float64("weight", w.Value).Msg("model weight")
	}

	if settings.LabelsOutput != "" {
		if err := model.WritePreds(settings.ClassifyInput, settings.LabelsOutput); err != nil {
			log.Fatal().Err(err).Msg("failed to write predicted labels")
		}
	}
	if settings.ProbsOutput != "" {
		if err := model.WriteProbs(settings.ClassifyInput, settings.ProbsOutput); err != nil {
			log.Fatal().Err(err).Msg("failed to write probabilities")
		}
	}
}
