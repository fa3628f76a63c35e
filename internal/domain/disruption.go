package domain

// DisruptionStatus is the severity the ferry API reports for a service.
type DisruptionStatus int

// Wire values used by the ferry API.
const (
	StatusUnknown           DisruptionStatus = -99
	StatusInformation       DisruptionStatus = -1
	StatusNormal            DisruptionStatus = 0
	StatusSailingsAffected  DisruptionStatus = 1
	StatusSailingsCancelled DisruptionStatus = 2
)

func (s DisruptionStatus) String() string {
	switch s {
	case StatusInformation:
		return "information"
	case StatusNormal:
		return "normal"
	case StatusSailingsAffected:
		return "sailings_affected"
	case StatusSailingsCancelled:
		return "sailings_cancelled"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s DisruptionStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// DisruptionDetails is the disruption state of one service at fetch time.
type DisruptionDetails struct {
	Status         DisruptionStatus `json:"status"`
	Reason         string           `json:"reason,omitempty"`
	Details        string           `json:"details,omitempty"`
	AdditionalInfo string           `json:"additional_info,omitempty"`
	LastUpdated    string           `json:"last_updated,omitempty"`
}

// HasAdditionalInfo reports whether additional info content is present.
func (d DisruptionDetails) HasAdditionalInfo() bool {
	return d.AdditionalInfo != ""
}

// RouteDetails is route metadata returned alongside disruption details.
type RouteDetails struct {
	RouteID   int    `json:"route_id"`
	Route     string `json:"route"`
	Operator  string `json:"operator,omitempty"`
	RouteType string `json:"route_type,omitempty"`
}

// ServiceStatus identifies a ferry service as listed in the directory.
type ServiceStatus struct {
	ServiceID int    `json:"service_id" yaml:"id"`
	Area      string `json:"area" yaml:"area"`
	Route     string `json:"route" yaml:"route"`
}
