// Package builtin provides the products wxdata knows out of the box.
package builtin

import (
	"github.com/agentstation/wxdata/internal/readers/cloudsat"
	"github.com/agentstation/wxdata/internal/readers/dardar"
	"github.com/agentstation/wxdata/pkg/products"
)

// Built-in product IDs.
const (
	CloudSat1bCPR     products.ID = "CloudSat_1b_CPR"
	CloudSat2bGeoProf products.ID = "CloudSat_2b_GeoProf"
	CloudSatModisAux  products.ID = "CloudSat_Modis_Aux"
	DardarCloud       products.ID = "DardarCloud"
)

// Registry returns a new registry holding the built-in products in their
// canonical classification order.
func Registry() *products.Registry {
	r := products.NewRegistry()
	Register(r)
	return r
}

// Register adds the built-in products to r.
func Register(r *products.Registry) {
	r.MustRegister(CloudSat1bCPR, cloudsat.Pattern1bCPR, openCloudSat)
	r.MustRegister(CloudSat2bGeoProf, cloudsat.Pattern2bGeoProf, openCloudSat)
	r.MustRegister(CloudSatModisAux, cloudsat.PatternModisAux, openCloudSat)
	r.MustRegister(DardarCloud, dardar.Pattern, openDardar)
}

func openCloudSat(path string) (products.Reader, error) {
	r, err := cloudsat.Open(path)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func openDardar(path string) (products.Reader, error) {
	r, err := dardar.Open(path)
	if err != nil {
		return nil, err
	}
	return r, nil
}
