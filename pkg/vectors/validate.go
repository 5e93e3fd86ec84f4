package vectors

import (
	"fmt"
	"strings"

	"github.com/aetherfy/vectors-go/pkg/apierrors"
)

const maxCollectionNameLen = 255

// invalidNameChars are rejected in collection names. The scope separator is
// reserved for the namespace resolver and must never appear in caller input.
const invalidNameChars = `/\?%*:|"<>`

// validateCollectionName checks the short collection name before any
// network call is made.
func validateCollectionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apierrors.New(apierrors.KindInvalidRequest, "collection name cannot be empty")
	}
	if len(name) > maxCollectionNameLen {
		return apierrors.New(apierrors.KindInvalidRequest,
			fmt.Sprintf("collection name must be %d characters or less", maxCollectionNameLen))
	}
	if strings.ContainsAny(name, invalidNameChars) {
		return apierrors.New(apierrors.KindInvalidRequest,
			fmt.Sprintf("collection name %q contains invalid characters", name))
	}
	return nil
}

// validateVector checks dimensionality. expectedDim 0 skips the dimension
// check.
func validateVector(vector []float32, expectedDim int) error {
	if len(vector) == 0 {
		return apierrors.New(apierrors.KindInvalidRequest, "vector cannot be empty")
	}
	if expectedDim > 0 && len(vector) != expectedDim {
		return apierrors.New(apierrors.KindInvalidRequest,
			fmt.Sprintf("vector dimension mismatch: expected %d, got %d", expectedDim, len(vector)))
	}
	return nil
}

// validatePointID accepts non-empty strings and any integer type.
func validatePointID(id any) error {
	switch v := id.(type) {
	case nil:
		return apierrors.New(apierrors.KindInvalidRequest, "point id cannot be nil")
	case string:
		if strings.TrimSpace(v) == "" {
			return apierrors.New(apierrors.KindInvalidRequest, "point id cannot be an empty string")
		}
		return nil
	case int, int32, int64, uint, uint32, uint64:
		return nil
	}
	return apierrors.New(apierrors.KindInvalidRequest,
		fmt.Sprintf("point id must be a string or an integer, got %T", id))
}

// validatePoints checks a full upsert batch against the collection's vector
// dimensionality.
func validatePoints(points []Point, expectedDim int) error {
	if len(points) == 0 {
		return apierrors.New(apierrors.KindInvalidRequest, "points list cannot be empty")
	}
	for i, p := range points {
		if err := validatePointID(p.ID); err != nil {
			return apierrors.New(apierrors.KindInvalidRequest,
				fmt.Sprintf("point at index %d: %v", i, err))
		}
		if err := validateVector(p.Vector, expectedDim); err != nil {
			return apierrors.New(apierrors.KindInvalidRequest,
				fmt.Sprintf("point at index %d: %v", i, err))
		}
	}
	return nil
}
