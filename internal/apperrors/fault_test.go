package apperrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaultCategoryFromCode(t *testing.T) {
	tests := []struct {
		code     int
		expected FaultCategory
	}{
		{401, FaultInvalidAction},
		{402, FaultInvalidArgs},
		{404, FaultInvalidVar},
		{501, FaultActionFailed},
		{701, FaultTransitionNotAvailable},
		{702, FaultNoContents},
		{703, FaultReadError},
		{704, FaultFormatNotSupported},
		{705, FaultTransportLocked},
		{706, FaultWriteError},
		{707, FaultMediaNotWriteable},
		{708, FaultRecordingFormatNotSupported},
		{709, FaultMediaFull},
		{710, FaultSeekModeNotSupported},
		{711, FaultIllegalSeekTarget},
		{712, FaultPlayModeNotSupported},
		{713, FaultRecordQualityNotSupported},
		{714, FaultIllegalMimeType},
		{715, FaultContentBusy},
		{717, FaultPlaySpeedNotSupported},
		{718, FaultInvalidInstanceID},
		{737, FaultNoDNSServer},
		{738, FaultBadDomainName},
		{739, FaultServerError},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, FaultCategoryFromCode(tc.code), "code %d", tc.code)
	}
}

func TestFaultCategoryFromCode_UnknownCodes(t *testing.T) {
	// Codes outside the table decode to Unknown rather than failing;
	// 716 and 736 sit inside gaps of the documented range.
	for _, code := range []int{0, 100, 403, 716, 736, 740, 9999} {
		assert.Equal(t, FaultUnknown, FaultCategoryFromCode(code), "code %d", code)
	}
}

func TestFaultError_Message(t *testing.T) {
	err := NewFault("Seek", 711)
	assert.Equal(t, 711, err.Code)
	assert.Equal(t, FaultIllegalSeekTarget, err.Category)
	assert.Contains(t, err.Error(), "Seek")
	assert.Contains(t, err.Error(), "IllegalSeekTarget")
}

func TestErrorTypes_Unwrap(t *testing.T) {
	cause := assert.AnError
	assert.ErrorIs(t, NewUnreachable("http://10.0.0.5:1400/x", cause), cause)
	assert.ErrorIs(t, NewParseWrap("context", cause), cause)
}
