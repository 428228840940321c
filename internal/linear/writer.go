package linear

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/kirianguiller/OpusFilter/internal/scores"
)

// WritePreds classifies the rows of a jsonlines scores file and writes
// one predicted class label per line to the output file.
func (c *Classifier) WritePreds(inputPath, outputPath string) error {
	t, err := scores.Load(inputPath)
	if err != nil {
		return err
	}
	labels, err := c.Predict(t)
	if err != nil {
		return fmt.Errorf("predict %s: %w", inputPath, err)
	}
	if err := writeLines(outputPath, labels, func(w *bufio.Writer, v float64) error {
		_, err := fmt.Fprintf(w, "%d\n", int(v))
		return err
	}); err != nil {
		return err
	}
	log.Info().Int("rows", len(labels)).Str("file", outputPath).Msg("wrote predicted labels")
	return nil
}

// WriteProbs writes the class-1 probability for each row of a jsonlines
// scores file, one probability per line with ten-digit precision.
func (c *Classifier) WriteProbs(inputPath, outputPath string) error {
	t, err := scores.Load(inputPath)
	if err != nil {
		return err
	}
	probs, err := c.PredictProba(t)
	if err != nil {
		return fmt.Errorf("predict probabilities %s: %w", inputPath, err)
	}
	if err := writeLines(outputPath, probs, func(w *bufio.Writer, v float64) error {
		_, err := fmt.Fprintf(w, "%.10f\n", v)
		return err
	}); err != nil {
		return err
	}
	log.Info().Int("rows", len(probs)).Str("file", outputPath).Msg("wrote classification probabilities")
	return nil
}

func writeLines(path string, values []float64, write func(*bufio.Writer, float64) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, v := range values {
		if err := write(w, v); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
