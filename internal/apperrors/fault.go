package apperrors

import "fmt"

// FaultCategory is the decoded meaning of a UPnP errorCode returned inside
// a SOAP Fault. The numeric values follow the AVTransport specification;
// Sonos reuses the same table across its services.
type FaultCategory int

const (
	// FaultUnknown covers codes outside the documented table. Devices do
	// return undocumented codes, so decoding must never fail on them.
	FaultUnknown FaultCategory = iota
	FaultInvalidAction
	FaultInvalidArgs
	FaultInvalidVar
	FaultActionFailed
	FaultTransitionNotAvailable
	FaultNoContents
	FaultReadError
	FaultFormatNotSupported
	FaultTransportLocked
	FaultWriteError
	FaultMediaNotWriteable
	FaultRecordingFormatNotSupported
	FaultMediaFull
	FaultSeekModeNotSupported
	FaultIllegalSeekTarget
	FaultPlayModeNotSupported
	FaultRecordQualityNotSupported
	FaultIllegalMimeType
	FaultContentBusy
	FaultPlaySpeedNotSupported
	FaultInvalidInstanceID
	FaultNoDNSServer
	FaultBadDomainName
	FaultServerError
)

var faultCategories = map[int]FaultCategory{
	401: FaultInvalidAction,
	402: FaultInvalidArgs,
	404: FaultInvalidVar,
	501: FaultActionFailed,
	701: FaultTransitionNotAvailable,
	702: FaultNoContents,
	703: FaultReadError,
	704: FaultFormatNotSupported,
	705: FaultTransportLocked,
	706: FaultWriteError,
	707: FaultMediaNotWriteable,
	708: FaultRecordingFormatNotSupported,
	709: FaultMediaFull,
	710: FaultSeekModeNotSupported,
	711: FaultIllegalSeekTarget,
	712: FaultPlayModeNotSupported,
	713: FaultRecordQualityNotSupported,
	714: FaultIllegalMimeType,
	715: FaultContentBusy,
	717: FaultPlaySpeedNotSupported,
	718: FaultInvalidInstanceID,
	737: FaultNoDNSServer,
	738: FaultBadDomainName,
	739: FaultServerError,
}

var faultNames = map[FaultCategory]string{
	FaultUnknown:                     "Unknown",
	FaultInvalidAction:               "InvalidAction",
	FaultInvalidArgs:                 "InvalidArgs",
	FaultInvalidVar:                  "InvalidVar",
	FaultActionFailed:                "ActionFailed",
	FaultTransitionNotAvailable:      "TransitionNotAvailable",
	FaultNoContents:                  "NoContents",
	FaultReadError:                   "ReadError",
	FaultFormatNotSupported:          "FormatNotSupported",
	FaultTransportLocked:             "TransportLocked",
	FaultWriteError:                  "WriteError",
	FaultMediaNotWriteable:           "MediaNotWriteable",
	FaultRecordingFormatNotSupported: "RecordingFormatNotSupported",
	FaultMediaFull:                   "MediaFull",
	FaultSeekModeNotSupported:        "SeekModeNotSupported",
	FaultIllegalSeekTarget:           "IllegalSeekTarget",
	FaultPlayModeNotSupported:        "PlayModeNotSupported",
	FaultRecordQualityNotSupported:   "RecordQualityNotSupported",
	FaultIllegalMimeType:             "IllegalMimeType",
	FaultContentBusy:                 "ContentBusy",
	FaultPlaySpeedNotSupported:       "PlaySpeedNotSupported",
	FaultInvalidInstanceID:           "InvalidInstanceId",
	FaultNoDNSServer:                 "NoDnsServer",
	FaultBadDomainName:               "BadDomainName",
	FaultServerError:                 "ServerError",
}

func (c FaultCategory) String() string {
	if name, ok := faultNames[c]; ok {
		return name
	}
	return "Unknown"
}

// FaultCategoryFromCode maps a wire errorCode to its category. Unknown
// codes map to FaultUnknown, never to a parse failure.
func FaultCategoryFromCode(code int) FaultCategory {
	if category, ok := faultCategories[code]; ok {
		return category
	}
	return FaultUnknown
}

// FaultError is a decoded UPnP SOAP fault: the action was delivered and the
// device refused it. Not worth retrying without changing the request.
type FaultError struct {
	Action   string
	Code     int
	Category FaultCategory
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("sonos action %s rejected: %s (code %d)", e.Action, e.Category, e.Code)
}

func NewFault(action string, code int) *FaultError {
	return &FaultError{Action: action, Code: code, Category: FaultCategoryFromCode(code)}
}
