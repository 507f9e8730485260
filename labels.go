package bvision

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bvision/go-bvision/postprocess"
)

// LoadLabels reads the class names the Model was trained with from the given
// text file, one per line in class order, and decodes them into Labels.
// Classes the pipeline does not use decode as LabelUnknown.
func LoadLabels(file string) ([]postprocess.Label, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	var labels []postprocess.Label

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		labels = append(labels, postprocess.ParseLabel(line))
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if len(labels) == 0 {
		return nil, errors.New("labels file is empty")
	}

	return labels, nil
}
