package errors_test

import (
	"fmt"

	"github.com/agentstation/wxdata/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := &errors.NotFoundError{
		Resource: "product",
		ID:       "CloudSat_2b_GeoProf",
	}

	if errors.IsNotFound(err) {
		fmt.Println("Product not found")
	}

	// Output: Product not found
}

// Example_rangeError shows how out of range lookups are reported.
func Example_rangeError() {
	var err error = errors.NewRangeError("DardarCloud", 10, 4)

	if errors.IsOutOfRange(err) {
		fmt.Println(err)
	}

	// Output: index 10 out of range for DardarCloud with 4 entries
}
