package upload

import "slices"

// Validate checks a candidate file against an allow-list of media types and a
// size ceiling of maxSizeMB megabytes. It returns nil when the file is
// accepted and a *ValidationError otherwise. The media type is checked first.
func Validate(mediaType string, size int64, acceptedTypes []string, maxSizeMB float64) error {
	if !slices.Contains(acceptedTypes, mediaType) {
		return &ValidationError{
			Reason:        UnsupportedType,
			MediaType:     mediaType,
			Size:          size,
			AcceptedTypes: acceptedTypes,
			MaxSizeMB:     maxSizeMB,
		}
	}

	if float64(size) > maxSizeMB*BytesPerMB {
		return &ValidationError{
			Reason:        TooLarge,
			MediaType:     mediaType,
			Size:          size,
			AcceptedTypes: acceptedTypes,
			MaxSizeMB:     maxSizeMB,
		}
	}

	return nil
}
