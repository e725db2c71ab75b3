package hci

import "fmt"

// Error is a non-zero HCI status code reported by the controller.
// Core Specification Vol 1, Part F.
type Error uint8

const StatusSuccess uint8 = 0x00

const (
	ErrUnknownCommand                   Error = 0x01
	ErrUnknownConnectionID              Error = 0x02
	ErrHardwareFailure                  Error = 0x03
	ErrPageTimeout                      Error = 0x04
	ErrAuthenticationFailure            Error = 0x05
	ErrPINOrKeyMissing                  Error = 0x06
	ErrMemoryCapacityExceeded           Error = 0x07
	ErrConnectionTimeout                Error = 0x08
	ErrConnectionLimitExceeded          Error = 0x09
	ErrSynchronousConnectionLimit       Error = 0x0A
	ErrConnectionAlreadyExists          Error = 0x0B
	ErrCommandDisallowed                Error = 0x0C
	ErrRejectedLimitedResources         Error = 0x0D
	ErrRejectedSecurity                 Error = 0x0E
	ErrRejectedBDAddr                   Error = 0x0F
	ErrConnectionAcceptTimeout          Error = 0x10
	ErrUnsupportedFeature               Error = 0x11
	ErrInvalidParameters                Error = 0x12
	ErrRemoteUserTerminated             Error = 0x13
	ErrRemoteLowResources               Error = 0x14
	ErrRemotePowerOff                   Error = 0x15
	ErrLocalHostTerminated              Error = 0x16
	ErrRepeatedAttempts                 Error = 0x17
	ErrPairingNotAllowed                Error = 0x18
	ErrUnknownLMPPDU                    Error = 0x19
	ErrUnsupportedRemoteFeature         Error = 0x1A
	ErrSCOOffsetRejected                Error = 0x1B
	ErrSCOIntervalRejected              Error = 0x1C
	ErrSCOAirModeRejected               Error = 0x1D
	ErrInvalidLMPParameters             Error = 0x1E
	ErrUnspecified                      Error = 0x1F
	ErrUnsupportedLMPParameterValue     Error = 0x20
	ErrRoleChangeNotAllowed             Error = 0x21
	ErrLMPResponseTimeout               Error = 0x22
	ErrLMPTransactionCollision          Error = 0x23
	ErrLMPPDUNotAllowed                 Error = 0x24
	ErrEncryptionModeNotAcceptable      Error = 0x25
	ErrLinkKeyCannotBeChanged           Error = 0x26
	ErrRequestedQoSNotSupported         Error = 0x27
	ErrInstantPassed                    Error = 0x28
	ErrPairingWithUnitKeyNotSupported   Error = 0x29
	ErrDifferentTransactionCollision    Error = 0x2A
	ErrQoSUnacceptableParameter         Error = 0x2C
	ErrQoSRejected                      Error = 0x2D
	ErrChannelClassificationUnsupported Error = 0x2E
	ErrInsufficientSecurity             Error = 0x2F
	ErrParameterOutOfRange              Error = 0x30
	ErrRoleSwitchPending                Error = 0x32
	ErrReservedSlotViolation            Error = 0x34
	ErrRoleSwitchFailed                 Error = 0x35
	ErrInquiryResponseTooLarge          Error = 0x36
	ErrSimplePairingNotSupported        Error = 0x37
	ErrHostBusyPairing                  Error = 0x38
	ErrNoSuitableChannel                Error = 0x39
	ErrControllerBusy                   Error = 0x3A
	ErrUnacceptableConnectionParameters Error = 0x3B
	ErrAdvertisingTimeout               Error = 0x3C
	ErrMICFailure                       Error = 0x3D
	ErrConnectionFailedToEstablish      Error = 0x3E
	ErrMACConnectionFailed              Error = 0x3F
	ErrCoarseClockAdjustmentRejected    Error = 0x40
	ErrType0SubmapNotDefined            Error = 0x41
	ErrUnknownAdvertisingIdentifier     Error = 0x42
	ErrLimitReached                     Error = 0x43
	ErrOperationCancelledByHost         Error = 0x44
	ErrPacketTooLong                    Error = 0x45
)

var errorNames = map[Error]string{
	ErrUnknownCommand:                   "unknown HCI command",
	ErrUnknownConnectionID:              "unknown connection identifier",
	ErrHardwareFailure:                  "hardware failure",
	ErrPageTimeout:                      "page timeout",
	ErrAuthenticationFailure:            "authentication failure",
	ErrPINOrKeyMissing:                  "PIN or key missing",
	ErrMemoryCapacityExceeded:           "memory capacity exceeded",
	ErrConnectionTimeout:                "connection timeout",
	ErrConnectionLimitExceeded:          "connection limit exceeded",
	ErrSynchronousConnectionLimit:       "synchronous connection limit to a device exceeded",
	ErrConnectionAlreadyExists:          "connection already exists",
	ErrCommandDisallowed:                "command disallowed",
	ErrRejectedLimitedResources:         "connection rejected due to limited resources",
	ErrRejectedSecurity:                 "connection rejected due to security reasons",
	ErrRejectedBDAddr:                   "connection rejected due to unacceptable BD_ADDR",
	ErrConnectionAcceptTimeout:          "connection accept timeout exceeded",
	ErrUnsupportedFeature:               "unsupported feature or parameter value",
	ErrInvalidParameters:                "invalid HCI command parameters",
	ErrRemoteUserTerminated:             "remote user terminated connection",
	ErrRemoteLowResources:               "remote device terminated connection due to low resources",
	ErrRemotePowerOff:                   "remote device terminated connection due to power off",
	ErrLocalHostTerminated:              "connection terminated by local host",
	ErrRepeatedAttempts:                 "repeated attempts",
	ErrPairingNotAllowed:                "pairing not allowed",
	ErrUnknownLMPPDU:                    "unknown LMP PDU",
	ErrUnsupportedRemoteFeature:         "unsupported remote feature",
	ErrSCOOffsetRejected:                "SCO offset rejected",
	ErrSCOIntervalRejected:              "SCO interval rejected",
	ErrSCOAirModeRejected:               "SCO air mode rejected",
	ErrInvalidLMPParameters:             "invalid LMP or LL parameters",
	ErrUnspecified:                      "unspecified error",
	ErrUnsupportedLMPParameterValue:     "unsupported LMP or LL parameter value",
	ErrRoleChangeNotAllowed:             "role change not allowed",
	ErrLMPResponseTimeout:               "LMP or LL response timeout",
	ErrLMPTransactionCollision:          "LMP error transaction collision",
	ErrLMPPDUNotAllowed:                 "LMP PDU not allowed",
	ErrEncryptionModeNotAcceptable:      "encryption mode not acceptable",
	ErrLinkKeyCannotBeChanged:           "link key cannot be changed",
	ErrRequestedQoSNotSupported:         "requested QoS not supported",
	ErrInstantPassed:                    "instant passed",
	ErrPairingWithUnitKeyNotSupported:   "pairing with unit key not supported",
	ErrDifferentTransactionCollision:    "different transaction collision",
	ErrQoSUnacceptableParameter:         "QoS unacceptable parameter",
	ErrQoSRejected:                      "QoS rejected",
	ErrChannelClassificationUnsupported: "channel classification not supported",
	ErrInsufficientSecurity:             "insufficient security",
	ErrParameterOutOfRange:              "parameter out of mandatory range",
	ErrRoleSwitchPending:                "role switch pending",
	ErrReservedSlotViolation:            "reserved slot violation",
	ErrRoleSwitchFailed:                 "role switch failed",
	ErrInquiryResponseTooLarge:          "extended inquiry response too large",
	ErrSimplePairingNotSupported:        "secure simple pairing not supported by host",
	ErrHostBusyPairing:                  "host busy pairing",
	ErrNoSuitableChannel:                "connection rejected due to no suitable channel found",
	ErrControllerBusy:                   "controller busy",
	ErrUnacceptableConnectionParameters: "unacceptable connection parameters",
	ErrAdvertisingTimeout:               "advertising timeout",
	ErrMICFailure:                       "connection terminated due to MIC failure",
	ErrConnectionFailedToEstablish:      "connection failed to be established",
	ErrMACConnectionFailed:              "MAC connection failed",
	ErrCoarseClockAdjustmentRejected:    "coarse clock adjustment rejected",
	ErrType0SubmapNotDefined:            "type0 submap not defined",
	ErrUnknownAdvertisingIdentifier:     "unknown advertising identifier",
	ErrLimitReached:                     "limit reached",
	ErrOperationCancelledByHost:         "operation cancelled by host",
	ErrPacketTooLong:                    "packet too long",
}

func (e Error) Error() string {
	if name, ok := errorNames[e]; ok {
		return fmt.Sprintf("hci: %s (0x%02X)", name, uint8(e))
	}
	return fmt.Sprintf("hci: status 0x%02X", uint8(e))
}

// StatusError maps a status byte to its error, nil for success.
func StatusError(status uint8) error {
	if status == StatusSuccess {
		return nil
	}
	return Error(status)
}
