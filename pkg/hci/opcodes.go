package hci

import "fmt"

// https://software-dl.ti.com/simplelink/esd/simplelink_cc13x2_sdk/1.60.00.29_new/exports/docs/ble5stack/vendor_specific_guide/BLE_Vendor_Specific_HCI_Guide/hci_interface.html

type PacketType uint8

const (
	PacketTypeCommand         PacketType = 0x01
	PacketTypeACLData         PacketType = 0x02
	PacketTypeSynchronousData PacketType = 0x03
	PacketTypeEvent           PacketType = 0x04
	PacketTypeExtendedCommand PacketType = 0x09
	PacketTypeVendor          PacketType = 0xFF
)

// Opcode is the 16-bit command identifier, OGF in the upper 6 bits and OCF in
// the lower 10.
type Opcode uint16

const (
	OpcodeInquiry                    Opcode = 0x0401
	OpcodeRemoteNameRequest          Opcode = 0x0419
	OpcodeSetEventMask               Opcode = 0x0C01
	OpcodeReset                      Opcode = 0x0C03
	OpcodeReadLocalName              Opcode = 0x0C14
	OpcodeReadBDAddr                 Opcode = 0x1009
	OpcodeLESetEventMask             Opcode = 0x2001
	OpcodeLEReadBufferSize           Opcode = 0x2002
	OpcodeLESetAdvertisingParameters Opcode = 0x2006
	OpcodeSetAdvertisingData         Opcode = 0x2008
	OpcodeLESetAdvertisingEnable     Opcode = 0x200A
	OpcodeLESetScanParameters        Opcode = 0x200B
	OpcodeLESetScanEnable            Opcode = 0x200C
	OpcodeReadFilterAcceptListSize   Opcode = 0x200F
	OpcodeClearFilterAcceptList      Opcode = 0x2010
	OpcodeLEReadSupportedStates      Opcode = 0x201C
)

var opcodeNames = map[Opcode]string{
	OpcodeInquiry:                    "Inquiry",
	OpcodeRemoteNameRequest:          "Remote Name Request",
	OpcodeSetEventMask:               "Set Event Mask",
	OpcodeReset:                      "Reset",
	OpcodeReadLocalName:              "Read Local Name",
	OpcodeReadBDAddr:                 "Read BD_ADDR",
	OpcodeLESetEventMask:             "LE Set Event Mask",
	OpcodeLEReadBufferSize:           "LE Read Buffer Size",
	OpcodeLESetAdvertisingParameters: "LE Set Advertising Parameters",
	OpcodeSetAdvertisingData:         "LE Set Advertising Data",
	OpcodeLESetAdvertisingEnable:     "LE Set Advertising Enable",
	OpcodeLESetScanParameters:        "LE Set Scan Parameters",
	OpcodeLESetScanEnable:            "LE Set Scan Enable",
	OpcodeReadFilterAcceptListSize:   "LE Read Filter Accept List Size",
	OpcodeClearFilterAcceptList:      "LE Clear Filter Accept List",
	OpcodeLEReadSupportedStates:      "LE Read Supported States",
}

// NewOpcode packs an opcode group field and an opcode command field.
func NewOpcode(ogf uint8, ocf uint16) Opcode {
	return Opcode(uint16(ogf&0x3F)<<10 | ocf&0x03FF)
}

// Opcode lets a bare opcode be sent as a command without parameters.
func (o Opcode) Opcode() Opcode {
	return o
}

func (o Opcode) OGF() uint8 {
	return uint8(o >> 10)
}

func (o Opcode) OCF() uint16 {
	return uint16(o) & 0x03FF
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(0x%02X|0x%04X)", o.OGF(), o.OCF())
}

type EventCode uint8

const (
	EventCodeInquiryComplete                      EventCode = 0x01
	EventCodeDisconnectionComplete                EventCode = 0x05
	EventCodeRemoteNameRequestComplete            EventCode = 0x07
	EventCodeEncryptionChange                     EventCode = 0x08
	EventCodeReadRemoteVersionInformationComplete EventCode = 0x0C
	EventCodeCommandComplete                      EventCode = 0x0E
	EventCodeCommandStatus                        EventCode = 0x0F
	EventCodeHardwareError                        EventCode = 0x10
	EventCodeNumberOfCompletedPackets             EventCode = 0x13
	EventCodeDataBufferOverflow                   EventCode = 0x1A
	EventCodeEncryptionKeyRefreshComplete         EventCode = 0x30
	EventCodeLEMeta                               EventCode = 0x3E
	EventCodeAuthenticatedPayloadTimeoutExpired   EventCode = 0x57
	EventCodeVendor                               EventCode = 0xFF
)

var eventCodeNames = map[EventCode]string{
	EventCodeInquiryComplete:                      "Inquiry Complete",
	EventCodeDisconnectionComplete:                "Disconnection Complete",
	EventCodeRemoteNameRequestComplete:            "Remote Name Request Complete",
	EventCodeEncryptionChange:                     "Encryption Change",
	EventCodeReadRemoteVersionInformationComplete: "Read Remote Version Information Complete",
	EventCodeCommandComplete:                      "Command Complete",
	EventCodeCommandStatus:                        "Command Status",
	EventCodeHardwareError:                        "Hardware Error",
	EventCodeNumberOfCompletedPackets:             "Number Of Completed Packets",
	EventCodeDataBufferOverflow:                   "Data Buffer Overflow",
	EventCodeEncryptionKeyRefreshComplete:         "Encryption Key Refresh Complete",
	EventCodeLEMeta:                               "LE Meta",
	EventCodeAuthenticatedPayloadTimeoutExpired:   "Authenticated Payload Timeout Expired",
	EventCodeVendor:                               "Vendor",
}

func (c EventCode) String() string {
	if name, ok := eventCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("EventCode(0x%02X)", uint8(c))
}

type LEMetaSubeventCode uint8

const (
	LEMetaSubeventCodeConnectionComplete             LEMetaSubeventCode = 0x01
	LEMetaSubeventCodeAdvertisingReport              LEMetaSubeventCode = 0x02
	LEMetaSubeventCodeConnectionUpdate               LEMetaSubeventCode = 0x03
	LEMetaSubeventCodeReadRemoteUsedFeaturesComplete LEMetaSubeventCode = 0x04
	LEMetaSubeventCodeLongTermKeyRequest             LEMetaSubeventCode = 0x05
	LEMetaSubeventCodeReadLocalP256PublicKeyComplete LEMetaSubeventCode = 0x08
	LEMetaSubeventCodeGenerateDHKeyComplete          LEMetaSubeventCode = 0x09
	LEMetaSubeventCodeEnhancedConnectionComplete     LEMetaSubeventCode = 0x0A
	LEMetaSubeventCodePHYUpdateComplete              LEMetaSubeventCode = 0x0C
	LEMetaSubeventCodeExtendedAdvertisingReport      LEMetaSubeventCode = 0x0D
)

func (c LEMetaSubeventCode) String() string {
	return fmt.Sprintf("LEMetaSubevent(0x%02X)", uint8(c))
}
