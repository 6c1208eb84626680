package probe

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"

	"github.com/glaslos/ssdeep"
	"github.com/root4loot/goutils/log"
)

// DecodeDimensions returns the width and height of a PNG image.
func DecodeDimensions(img Image) (width, height int, err error) {
	if len(img) == 0 {
		return 0, 0, errors.New("empty image")
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	return cfg.Width, cfg.Height, nil
}

// WriteArtifact writes the image to path, creating or truncating the file.
// The parent directory is not created.
func (result *Result) WriteArtifact(path string) error {
	if len(result.Image) == 0 {
		return fmt.Errorf("%w: %s: empty image", ErrWrite, path)
	}

	if previous, err := os.ReadFile(path); err == nil {
		if score, err := Similarity(previous, result.Image); err != nil {
			log.Debugf("No similarity score against previous %s: %v", path, err)
		} else {
			result.PreviousSimilarity = score
			result.HasPreviousScore = true
			log.Debugf("Overwriting %s, similarity to previous capture is %d", path, score)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer file.Close()

	if _, err := file.Write(result.Image); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	result.Path = path
	return nil
}

// Similarity returns the ssdeep score (0-100) between two images.
// Images below ssdeep's minimum input size cannot be scored.
func Similarity(a, b Image) (int, error) {
	hash1, err := ssdeep.FuzzyBytes(a)
	if err != nil {
		return 0, err
	}

	hash2, err := ssdeep.FuzzyBytes(b)
	if err != nil {
		return 0, err
	}

	return ssdeep.Distance(hash1, hash2)
}
