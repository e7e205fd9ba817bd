package catalog

// UpsertInput is a catalog entry keyed by Name. The yaml tags are the seed
// file format.
type UpsertInput struct {
	Name          string  `json:"name" yaml:"name"`
	Category      string  `json:"category" yaml:"category"`
	Description   string  `json:"description" yaml:"description"`
	Required      bool    `json:"required" yaml:"required"`
	HasExpiration bool    `json:"has_expiration" yaml:"has_expiration"`
	RenewalPeriod *int    `json:"renewal_period,omitempty" yaml:"renewal_period,omitempty"`
	RenewalUnit   *string `json:"renewal_unit,omitempty" yaml:"renewal_unit,omitempty"`
}

type ListInput struct {
	Category *string
	Required *bool
}
