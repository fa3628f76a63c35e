package domain

// DisplayKind is how the disruption section presents a service's status.
type DisplayKind int

const (
	DisplayNoDisruption DisplayKind = iota
	DisplayDisruption
	DisplayError
)

func (k DisplayKind) String() string {
	switch k {
	case DisplayDisruption:
		return "disruption"
	case DisplayError:
		return "error"
	default:
		return "no_disruption"
	}
}

// MarshalText encodes the kind by name.
func (k DisplayKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ActionKind is the user action a row offers.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionShowDisruptionInfo
	ActionShowAdditionalInfo
	ActionShowDepartures
	ActionShowTimetableFile
)

func (k ActionKind) String() string {
	switch k {
	case ActionShowDisruptionInfo:
		return "show_disruption_info"
	case ActionShowAdditionalInfo:
		return "show_additional_info"
	case ActionShowDepartures:
		return "show_departures"
	case ActionShowTimetableFile:
		return "show_timetable_file"
	default:
		return "none"
	}
}

// MarshalText encodes the action by name.
func (k ActionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// AdditionalInfoSeparator is placed between disruption details and additional
// info when both are shown together.
const AdditionalInfoSeparator = "<hr />"

// DisruptionFetchFailedMessage is shown in place of disruption content when the
// fetch failed or returned nothing.
const DisruptionFetchFailedMessage = "There was a problem fetching the disruption status for this service. Pull down to try again."

// Classification is the result of ClassifyDisruption.
type Classification struct {
	Kind    DisplayKind
	Action  ActionKind
	Content string // payload of Action, empty for ActionNone
	Message string // text for DisplayError
}

// ClassifyDisruption maps fetched disruption details to a display kind and the
// action available from it. A nil details value means the fetch failed.
func ClassifyDisruption(details *DisruptionDetails) Classification {
	if details == nil {
		return Classification{Kind: DisplayError, Action: ActionNone, Message: DisruptionFetchFailedMessage}
	}

	switch details.Status {
	case StatusNormal:
		return Classification{Kind: DisplayNoDisruption, Action: ActionNone}
	case StatusInformation:
		if details.HasAdditionalInfo() {
			return Classification{
				Kind:    DisplayNoDisruption,
				Action:  ActionShowAdditionalInfo,
				Content: details.AdditionalInfo,
			}
		}
		return Classification{Kind: DisplayNoDisruption, Action: ActionNone}
	case StatusSailingsAffected, StatusSailingsCancelled:
		content := details.Details
		if details.HasAdditionalInfo() {
			content += AdditionalInfoSeparator + details.AdditionalInfo
		}
		return Classification{
			Kind:    DisplayDisruption,
			Action:  ActionShowDisruptionInfo,
			Content: content,
		}
	}

	// Unrecognised status.
	return Classification{Kind: DisplayNoDisruption, Action: ActionNone}
}
