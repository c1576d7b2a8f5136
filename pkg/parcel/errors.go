package parcel

import "github.com/m-mizutani/goerr/v2"

var (
	ErrUPIRequired     = goerr.New("UPI is required")
	ErrMalformedParcel = goerr.New("malformed parcel response")
	ErrLookupFailed    = goerr.New("parcel lookup failed")
)

const (
	UPIKey      = "upi"
	CategoryKey = "category"
)
