package corpus

import "fmt"

// Combine concatenates the input manifests in argument order into a single
// manifest at outputPath and returns the record count. Input order is
// preserved so repeated runs produce byte-identical output. A supervision ID
// appearing twice is an error: duplicate IDs would silently corrupt later
// per-record processing.
func Combine(outputPath string, inputPaths ...string) (int, error) {
	if len(inputPaths) == 0 {
		return 0, fmt.Errorf("combine: no input manifests")
	}

	seen := make(map[string]string)
	var combined []Supervision
	for _, inputPath := range inputPaths {
		supervisions, err := ReadManifest(inputPath)
		if err != nil {
			return 0, err
		}
		for _, sup := range supervisions {
			if prev, ok := seen[sup.ID]; ok {
				return 0, fmt.Errorf("combine: supervision %q appears in both %s and %s", sup.ID, prev, inputPath)
			}
			seen[sup.ID] = inputPath
		}
		combined = append(combined, supervisions...)
	}

	if err := WriteManifest(outputPath, combined); err != nil {
		return 0, err
	}
	return len(combined), nil
}
